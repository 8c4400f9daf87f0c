package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"receiptvault/internal/domain"
	"receiptvault/internal/infra/resilience"
)

// ============================================================
// ReceiptStore implementation — receipts CRUD via PostgREST
// ============================================================

// receiptRow maps Supabase table columns to our domain.
type receiptRow struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Vendor    string  `json:"vendor"`
	Category  string  `json:"category"`
	Notes     string  `json:"notes"`
	ImageURL  string  `json:"image_url"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// parseDate accepts the timestamp formats PostgREST emits. Rows with an
// unparseable date keep a zero time; aggregation treats those as dateless.
func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t
	}
	t, _ = time.Parse("2006-01-02", s)
	return t
}

func (r receiptRow) toDomain() domain.Receipt {
	return domain.Receipt{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      parseDate(r.Date),
		Amount:    r.Amount,
		Vendor:    r.Vendor,
		Category:  r.Category,
		Notes:     r.Notes,
		ImageURL:  r.ImageURL,
		Type:      r.Type,
		Status:    r.Status,
		CreatedAt: parseDate(r.CreatedAt),
	}
}

// ListReceipts fetches all receipts belonging to a user, newest date first.
func (c *Client) ListReceipts(ctx context.Context, userID string) ([]domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListReceipts")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var receipts []domain.Receipt

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("receipts?user_id=eq.%s&order=date.desc", url.QueryEscape(userID))
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				receipts = []domain.Receipt{}
				return nil
			}

			var rows []receiptRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode receipts: %w", err)
			}

			receipts = make([]domain.Receipt, 0, len(rows))
			for _, row := range rows {
				receipts = append(receipts, row.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/receipts", Err: err}
	}

	return receipts, nil
}

// GetReceipt fetches a single receipt, scoped to its owner.
func (c *Client) GetReceipt(ctx context.Context, userID, receiptID string) (*domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetReceipt")
	defer span.End()

	path := fmt.Sprintf("receipts?id=eq.%s&user_id=eq.%s&limit=1",
		url.QueryEscape(receiptID), url.QueryEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/receipts", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "receipt", ID: receiptID}
	}

	var rows []receiptRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode receipts: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "receipt", ID: receiptID}
	}

	receipt := rows[0].toDomain()
	return &receipt, nil
}

// CreateReceipt inserts a new receipt and returns the stored row.
func (c *Client) CreateReceipt(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateReceipt")
	defer span.End()

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	data := map[string]any{
		"id":         r.ID,
		"user_id":    r.UserID,
		"amount":     r.Amount,
		"vendor":     r.Vendor,
		"category":   r.Category,
		"notes":      r.Notes,
		"image_url":  r.ImageURL,
		"type":       r.Type,
		"status":     r.Status,
		"created_at": r.CreatedAt.Format(time.RFC3339),
	}
	if r.HasDate() {
		data["date"] = r.Date.Format("2006-01-02")
	}

	body, err := c.doPost(ctx, "receipts", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/receipts", Err: err}
	}

	var rows []receiptRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		// Insert succeeded but representation was not returned; echo input.
		return r, nil
	}

	stored := rows[0].toDomain()
	return &stored, nil
}

// UpdateReceipt patches an existing receipt and returns the fresh row.
func (c *Client) UpdateReceipt(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateReceipt")
	defer span.End()

	updates := map[string]any{
		"amount":    r.Amount,
		"vendor":    r.Vendor,
		"category":  r.Category,
		"notes":     r.Notes,
		"image_url": r.ImageURL,
		"type":      r.Type,
		"status":    r.Status,
	}
	if r.HasDate() {
		updates["date"] = r.Date.Format("2006-01-02")
	}

	path := fmt.Sprintf("receipts?id=eq.%s&user_id=eq.%s",
		url.QueryEscape(r.ID), url.QueryEscape(r.UserID))
	if err := c.doPatch(ctx, path, updates); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/receipts", Err: err}
	}

	return c.GetReceipt(ctx, r.UserID, r.ID)
}

// DeleteReceipt removes a receipt, scoped to its owner.
func (c *Client) DeleteReceipt(ctx context.Context, userID, receiptID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteReceipt")
	defer span.End()

	path := fmt.Sprintf("receipts?id=eq.%s&user_id=eq.%s",
		url.QueryEscape(receiptID), url.QueryEscape(userID))
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/receipts", Err: err}
	}
	return nil
}
