package domain

import "time"

// ============================================================
// User profile
// ============================================================

// Roles stored on a profile. Admin and accountant submissions skip the
// pending-review state.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
)

// UserProfile is the per-user settings record kept in the hosted store.
type UserProfile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name,omitempty"`
	Role            string    `json:"role"`
	DefaultCategory string    `json:"default_category,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// UpdateProfileRequest is the body for PUT /v1/profile.
type UpdateProfileRequest struct {
	FullName        string `json:"fullName,omitempty"`
	DefaultCategory string `json:"defaultCategory,omitempty"`
}
