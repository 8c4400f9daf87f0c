package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"receiptvault/internal/domain"
	"receiptvault/internal/infra/observability"
	"receiptvault/internal/port"
)

var tracer = otel.Tracer("service/receipts")

// requestDateFormats are the shapes accepted for a receipt date, tried in
// order. A date that matches none of them is stored as a zero time; such
// records stay valid but drop out of date-dependent report groupings.
var requestDateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
}

func parseRequestDate(s string) time.Time {
	for _, layout := range requestDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ReceiptService owns the receipt CRUD flows: ownership scoping, amount
// sign normalization and the approval status of new submissions.
type ReceiptService struct {
	store    port.ReceiptStore
	profiles port.ProfileStore
	cache    port.Cache[[]domain.Receipt]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewReceiptService creates the receipt service with all dependencies injected.
func NewReceiptService(
	store port.ReceiptStore,
	profiles port.ProfileStore,
	cache port.Cache[[]domain.Receipt],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		store:    store,
		profiles: profiles,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns all receipts owned by a user, newest date first.
func (s *ReceiptService) List(ctx context.Context, userID string) ([]domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "Receipts.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	cacheKey := fmt.Sprintf("receipts:%s", userID)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("receipts")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("receipts")

	receipts, err := s.store.ListReceipts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("receipts fetch: %w", err)
	}
	s.cache.Set(cacheKey, receipts)
	return receipts, nil
}

// ListFiltered narrows the user's receipts by the same filter rules the
// report aggregation uses, then truncates to limit entries. A limit of 0
// means no truncation.
func (s *ReceiptService) ListFiltered(ctx context.Context, userID string, filter domain.ReportFilter, limit int) ([]domain.Receipt, error) {
	receipts, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := applyFilter(receipts, filter)
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// Get returns a single receipt, scoped to its owner.
func (s *ReceiptService) Get(ctx context.Context, userID, receiptID string) (*domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "Receipts.Get")
	defer span.End()

	return s.store.GetReceipt(ctx, userID, receiptID)
}

// Create persists a new receipt. The amount sign is forced to agree with
// the transaction type before validation, and the status depends on the
// submitter's role: admin and accountant submissions are approved
// immediately, everyone else's wait for review.
func (s *ReceiptService) Create(ctx context.Context, userID string, req *domain.ReceiptRequest) (*domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "Receipts.Create")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("receipt_create", time.Since(start))
	}()

	receipt := &domain.Receipt{
		UserID:   userID,
		Date:     parseRequestDate(req.Date),
		Amount:   domain.NormalizeAmount(req.Type, req.Amount),
		Vendor:   req.Vendor,
		Category: req.Category,
		Notes:    req.Notes,
		ImageURL: req.ImageURL,
		Type:     req.Type,
		Status:   s.statusFor(ctx, userID),
	}

	if err := receipt.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.store.CreateReceipt(ctx, receipt)
	if err != nil {
		return nil, err
	}

	s.invalidate(userID)
	s.logger.Info("receipt created",
		zap.String("receipt_id", stored.ID),
		zap.String("user_id", userID),
		zap.String("type", stored.Type),
	)
	return stored, nil
}

// Update edits an existing receipt. Sign normalization runs here too, so
// an edit cannot push a stored record out of the sign/type invariant the
// report breakdowns rely on. The review status is preserved.
func (s *ReceiptService) Update(ctx context.Context, userID, receiptID string, req *domain.ReceiptRequest) (*domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "Receipts.Update")
	defer span.End()

	existing, err := s.store.GetReceipt(ctx, userID, receiptID)
	if err != nil {
		return nil, err
	}

	existing.Date = parseRequestDate(req.Date)
	existing.Amount = domain.NormalizeAmount(req.Type, req.Amount)
	existing.Vendor = req.Vendor
	existing.Category = req.Category
	existing.Notes = req.Notes
	existing.Type = req.Type
	if req.ImageURL != "" {
		existing.ImageURL = req.ImageURL
	}

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateReceipt(ctx, existing)
	if err != nil {
		return nil, err
	}

	s.invalidate(userID)
	return updated, nil
}

// Delete removes a receipt after confirming it exists and belongs to the
// caller.
func (s *ReceiptService) Delete(ctx context.Context, userID, receiptID string) error {
	ctx, span := tracer.Start(ctx, "Receipts.Delete")
	defer span.End()

	if _, err := s.store.GetReceipt(ctx, userID, receiptID); err != nil {
		return err
	}
	if err := s.store.DeleteReceipt(ctx, userID, receiptID); err != nil {
		return err
	}

	s.invalidate(userID)
	s.logger.Info("receipt deleted",
		zap.String("receipt_id", receiptID),
		zap.String("user_id", userID),
	)
	return nil
}

// Summary returns the home-view digest: signed total, record count and the
// five most recent receipts by date.
func (s *ReceiptService) Summary(ctx context.Context, userID string) (*domain.ReceiptSummary, error) {
	ctx, span := tracer.Start(ctx, "Receipts.Summary")
	defer span.End()

	receipts, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, r := range receipts {
		total += r.Amount
	}

	recent := make([]domain.Receipt, len(receipts))
	copy(recent, receipts)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &domain.ReceiptSummary{
		Total:  total,
		Count:  len(receipts),
		Recent: recent,
	}, nil
}

// statusFor resolves the initial review status from the submitter's role.
// A failed profile lookup falls back to pending rather than blocking the
// write.
func (s *ReceiptService) statusFor(ctx context.Context, userID string) string {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Warn("profile lookup failed, defaulting to pending status",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return domain.StatusPending
	}
	if profile.Role == domain.RoleAdmin || profile.Role == domain.RoleAccountant {
		return domain.StatusApproved
	}
	return domain.StatusPending
}

func (s *ReceiptService) invalidate(userID string) {
	s.cache.Delete(fmt.Sprintf("receipts:%s", userID))
}
