package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"receiptvault/internal/domain"
	"receiptvault/internal/port"
)

// ProfileService reads and updates per-user settings.
type ProfileService struct {
	profiles port.ProfileStore
	logger   *zap.Logger
}

// NewProfileService creates the profile service.
func NewProfileService(profiles port.ProfileStore, logger *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	ctx, span := authTracer.Start(ctx, "ProfileService.Get")
	defer span.End()

	return s.profiles.GetProfile(ctx, userID)
}

// Update patches the editable profile fields. The role is never editable
// through this path.
func (s *ProfileService) Update(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	ctx, span := authTracer.Start(ctx, "ProfileService.Update")
	defer span.End()

	updates := map[string]any{}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.DefaultCategory != "" {
		if !domain.KnownCategory(req.DefaultCategory) {
			return nil, &domain.ErrValidation{Field: "defaultCategory", Message: "unknown category"}
		}
		updates["default_category"] = req.DefaultCategory
	}

	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	profile, err := s.profiles.UpdateProfile(ctx, userID, updates)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("profile updated", zap.String("user_id", userID))
	return profile, nil
}
