// Package domain defines the core business entities for the receipt ledger.
// These models are independent of external services and represent the
// canonical data structures used throughout the backend.
package domain

import (
	"strings"
	"time"
)

// ============================================================
// Receipts
// ============================================================

// Transaction types. The amount sign is redundant with the type but both
// are stored: expenses are kept negative, income positive.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Receipt statuses. Submissions from admin/accountant users are approved
// immediately; everyone else's sit in pending until reviewed.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Receipt is a single persisted income or expense entry, optionally backed
// by a scanned image in object storage.
type Receipt struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	Amount    float64   `json:"amount"`
	Vendor    string    `json:"vendor"`
	Category  string    `json:"category,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// HasDate reports whether the receipt carries a usable calendar date.
// Records imported or edited with a malformed date end up with a zero
// time; they are excluded from date-dependent groupings but still count
// in category totals.
func (r Receipt) HasDate() bool {
	return !r.Date.IsZero()
}

// EffectiveCategory returns the stored category, or "other" when empty.
func (r Receipt) EffectiveCategory() string {
	if strings.TrimSpace(r.Category) == "" {
		return CategoryOther
	}
	return r.Category
}

// NormalizeAmount forces the amount sign to agree with the transaction
// type: expense ⇒ ≤ 0, income ⇒ ≥ 0. Services call this on every write,
// not just at creation, so records cannot drift out of the invariant the
// income/expense breakdowns rely on.
func NormalizeAmount(txType string, amount float64) float64 {
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	if txType == TypeExpense {
		return -abs
	}
	return abs
}

// Validate checks the fields a caller must supply before a write.
func (r Receipt) Validate() error {
	if r.UserID == "" {
		return &ErrValidation{Field: "user_id", Message: "required"}
	}
	if strings.TrimSpace(r.Vendor) == "" {
		return &ErrValidation{Field: "vendor", Message: "required"}
	}
	if r.Type != TypeIncome && r.Type != TypeExpense {
		return &ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	if r.Type == TypeExpense && r.Amount > 0 {
		return &ErrValidation{Field: "amount", Message: "expense amount must not be positive"}
	}
	if r.Type == TypeIncome && r.Amount < 0 {
		return &ErrValidation{Field: "amount", Message: "income amount must not be negative"}
	}
	return nil
}

// ============================================================
// Tax categories
// ============================================================

// CategoryOther is the fallback bucket for records without a category.
const CategoryOther = "other"

// categoryLabels is the fixed tax-category set shown in reports. Keys not
// in this map are displayed with their raw stored value.
var categoryLabels = map[string]string{
	"business":      "Business",
	"travel":        "Travel",
	"meals":         "Meals & Entertainment",
	"office":        "Office Supplies",
	"insurance":     "Insurance",
	"subscriptions": "Subscriptions & Software",
	"maintenance":   "Maintenance & Repairs",
	"income":        "Income",
	"loan":          "Loan",
	"interest":      "Interest",
	"other":         "Other",
}

// CategoryLabel maps a category key to its display label. Unknown keys
// pass through unchanged.
func CategoryLabel(key string) string {
	if label, ok := categoryLabels[key]; ok {
		return label
	}
	return key
}

// KnownCategory reports whether key is part of the fixed tax-category set.
func KnownCategory(key string) bool {
	_, ok := categoryLabels[key]
	return ok
}

// ============================================================
// Receipt API types
// ============================================================

// ReceiptRequest is the body for POST /v1/receipts and PUT /v1/receipts/{id}.
type ReceiptRequest struct {
	Date     string  `json:"date"` // YYYY-MM-DD, optional
	Amount   float64 `json:"amount"`
	Vendor   string  `json:"vendor"`
	Category string  `json:"category,omitempty"`
	Notes    string  `json:"notes,omitempty"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Type     string  `json:"type"`
}

// ReceiptSummary is returned by GET /v1/receipts/summary for the home view.
type ReceiptSummary struct {
	Total  float64   `json:"total"`
	Count  int       `json:"count"`
	Recent []Receipt `json:"recent"`
}
