package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"receiptvault/internal/domain"
	"receiptvault/internal/infra/cache"
	"receiptvault/internal/infra/observability"
	"receiptvault/internal/service"
)

// --- Mocks ---

type mockReceiptStore struct {
	receipts  []domain.Receipt
	listCalls int
	err       error
}

func (m *mockReceiptStore) ListReceipts(_ context.Context, userID string) ([]domain.Receipt, error) {
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Receipt{}
	for _, r := range m.receipts {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReceiptStore) GetReceipt(_ context.Context, userID, receiptID string) (*domain.Receipt, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.receipts {
		if r.ID == receiptID && r.UserID == userID {
			found := r
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "receipt", ID: receiptID}
}

func (m *mockReceiptStore) CreateReceipt(_ context.Context, r *domain.Receipt) (*domain.Receipt, error) {
	if m.err != nil {
		return nil, m.err
	}
	if r.ID == "" {
		r.ID = fmt.Sprintf("gen-%d", len(m.receipts)+1)
	}
	m.receipts = append(m.receipts, *r)
	stored := *r
	return &stored, nil
}

func (m *mockReceiptStore) UpdateReceipt(_ context.Context, r *domain.Receipt) (*domain.Receipt, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.receipts {
		if m.receipts[i].ID == r.ID {
			m.receipts[i] = *r
			updated := *r
			return &updated, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "receipt", ID: r.ID}
}

func (m *mockReceiptStore) DeleteReceipt(_ context.Context, userID, receiptID string) error {
	for i, r := range m.receipts {
		if r.ID == receiptID && r.UserID == userID {
			m.receipts = append(m.receipts[:i], m.receipts[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "receipt", ID: receiptID}
}

type mockProfileStore struct {
	profile *domain.UserProfile
	err     error
}

func (m *mockProfileStore) GetProfile(_ context.Context, _ string) (*domain.UserProfile, error) {
	return m.profile, m.err
}

func (m *mockProfileStore) UpdateProfile(_ context.Context, _ string, updates map[string]any) (*domain.UserProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if name, ok := updates["full_name"].(string); ok {
		m.profile.FullName = name
	}
	if cat, ok := updates["default_category"].(string); ok {
		m.profile.DefaultCategory = cat
	}
	return m.profile, nil
}

func newReceiptService(store *mockReceiptStore, profiles *mockProfileStore) *service.ReceiptService {
	return service.NewReceiptService(
		store,
		profiles,
		cache.New[[]domain.Receipt](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func userProfile(role string) *mockProfileStore {
	return &mockProfileStore{profile: &domain.UserProfile{
		ID:    "user-1",
		Email: "sam@example.com",
		Role:  role,
	}}
}

// --- Tests ---

func TestReceipts_Create_NormalizesExpenseSign(t *testing.T) {
	store := &mockReceiptStore{}
	svc := newReceiptService(store, userProfile(domain.RoleUser))

	created, err := svc.Create(context.Background(), "user-1", &domain.ReceiptRequest{
		Date:   "2024-05-10",
		Amount: 42.50, // positive amount on an expense gets flipped
		Vendor: "Office Depot",
		Type:   domain.TypeExpense,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if created.Amount != -42.50 {
		t.Errorf("amount = %v, want -42.50", created.Amount)
	}
	if created.Status != domain.StatusPending {
		t.Errorf("status = %q, want %q", created.Status, domain.StatusPending)
	}
	if created.Date.Format("2006-01-02") != "2024-05-10" {
		t.Errorf("date = %v, want 2024-05-10", created.Date)
	}
}

func TestReceipts_Create_AccountantApprovedImmediately(t *testing.T) {
	store := &mockReceiptStore{}
	svc := newReceiptService(store, userProfile(domain.RoleAccountant))

	created, err := svc.Create(context.Background(), "user-1", &domain.ReceiptRequest{
		Amount: 1200,
		Vendor: "Client Payment",
		Type:   domain.TypeIncome,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if created.Status != domain.StatusApproved {
		t.Errorf("status = %q, want %q", created.Status, domain.StatusApproved)
	}
	if created.Amount != 1200 {
		t.Errorf("amount = %v, want 1200", created.Amount)
	}
}

func TestReceipts_Create_MissingVendor(t *testing.T) {
	svc := newReceiptService(&mockReceiptStore{}, userProfile(domain.RoleUser))

	_, err := svc.Create(context.Background(), "user-1", &domain.ReceiptRequest{
		Amount: 10,
		Type:   domain.TypeIncome,
	})

	var validationErr *domain.ErrValidation
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReceipts_Create_MalformedDateStoredDateless(t *testing.T) {
	store := &mockReceiptStore{}
	svc := newReceiptService(store, userProfile(domain.RoleUser))

	created, err := svc.Create(context.Background(), "user-1", &domain.ReceiptRequest{
		Date:   "not-a-date",
		Amount: 5,
		Vendor: "Kiosk",
		Type:   domain.TypeIncome,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.HasDate() {
		t.Errorf("expected zero date for malformed input, got %v", created.Date)
	}
}

func TestReceipts_Update_NormalizesSign(t *testing.T) {
	store := &mockReceiptStore{receipts: []domain.Receipt{{
		ID:     "r1",
		UserID: "user-1",
		Amount: -30,
		Vendor: "Cafe",
		Type:   domain.TypeExpense,
		Status: domain.StatusApproved,
	}}}
	svc := newReceiptService(store, userProfile(domain.RoleUser))

	updated, err := svc.Update(context.Background(), "user-1", "r1", &domain.ReceiptRequest{
		Amount: 35, // edit sends a positive value
		Vendor: "Cafe",
		Type:   domain.TypeExpense,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.Amount != -35 {
		t.Errorf("amount = %v, want -35", updated.Amount)
	}
	// Review status is preserved across edits.
	if updated.Status != domain.StatusApproved {
		t.Errorf("status = %q, want %q", updated.Status, domain.StatusApproved)
	}
}

func TestReceipts_Update_OtherUsersReceipt(t *testing.T) {
	store := &mockReceiptStore{receipts: []domain.Receipt{{
		ID: "r1", UserID: "someone-else", Amount: -5, Vendor: "Cafe", Type: domain.TypeExpense,
	}}}
	svc := newReceiptService(store, userProfile(domain.RoleUser))

	_, err := svc.Update(context.Background(), "user-1", "r1", &domain.ReceiptRequest{
		Amount: 5, Vendor: "Cafe", Type: domain.TypeExpense,
	})

	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not-found for foreign receipt, got %v", err)
	}
}

func TestReceipts_List_CachesResult(t *testing.T) {
	store := &mockReceiptStore{receipts: []domain.Receipt{
		{ID: "r1", UserID: "user-1", Amount: -10, Vendor: "Cafe", Type: domain.TypeExpense},
	}}
	svc := newReceiptService(store, userProfile(domain.RoleUser))

	if _, err := svc.List(context.Background(), "user-1"); err != nil {
		t.Fatalf("first list: %v", err)
	}
	if _, err := svc.List(context.Background(), "user-1"); err != nil {
		t.Fatalf("second list: %v", err)
	}

	if store.listCalls != 1 {
		t.Errorf("store list calls = %d, want 1 (second call cached)", store.listCalls)
	}
}

func TestReceipts_Create_InvalidatesCache(t *testing.T) {
	store := &mockReceiptStore{}
	svc := newReceiptService(store, userProfile(domain.RoleUser))

	if _, err := svc.List(context.Background(), "user-1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-1", &domain.ReceiptRequest{
		Amount: 10, Vendor: "Kiosk", Type: domain.TypeIncome,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	fresh, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list after create: %v", err)
	}
	if len(fresh) != 1 {
		t.Errorf("list after create = %d receipts, want 1", len(fresh))
	}
}

func TestReceipts_Summary(t *testing.T) {
	store := &mockReceiptStore{}
	for i := 1; i <= 7; i++ {
		store.receipts = append(store.receipts, domain.Receipt{
			ID:     fmt.Sprintf("r%d", i),
			UserID: "user-1",
			Date:   day(fmt.Sprintf("2024-01-%02d", i)),
			Amount: -10,
			Vendor: "Cafe",
			Type:   domain.TypeExpense,
		})
	}
	svc := newReceiptService(store, userProfile(domain.RoleUser))

	summary, err := svc.Summary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if summary.Count != 7 {
		t.Errorf("count = %d, want 7", summary.Count)
	}
	if summary.Total != -70 {
		t.Errorf("total = %v, want -70", summary.Total)
	}
	if len(summary.Recent) != 5 {
		t.Fatalf("recent = %d receipts, want 5", len(summary.Recent))
	}
	if summary.Recent[0].ID != "r7" {
		t.Errorf("most recent = %q, want r7", summary.Recent[0].ID)
	}
}

func TestReceipts_Delete_NotFound(t *testing.T) {
	svc := newReceiptService(&mockReceiptStore{}, userProfile(domain.RoleUser))

	err := svc.Delete(context.Background(), "user-1", "missing")

	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestReceipts_ListFiltered(t *testing.T) {
	store := &mockReceiptStore{receipts: []domain.Receipt{
		{ID: "r1", UserID: "user-1", Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Amount: -10, Vendor: "a", Category: "office", Type: domain.TypeExpense},
		{ID: "r2", UserID: "user-1", Date: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), Amount: -20, Vendor: "b", Category: "travel", Type: domain.TypeExpense},
		{ID: "r3", UserID: "user-1", Date: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), Amount: -30, Vendor: "c", Category: "office", Type: domain.TypeExpense},
	}}
	svc := newReceiptService(store, userProfile(domain.RoleUser))

	got, err := svc.ListFiltered(context.Background(), "user-1",
		domain.ReportFilter{Month: "2024-01"}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("month filter: got %d receipts, want 2", len(got))
	}

	got, err = svc.ListFiltered(context.Background(), "user-1",
		domain.ReportFilter{Category: "office"}, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("category filter with limit: got %d receipts, want 1", len(got))
	}
	if got[0].Category != "office" {
		t.Errorf("category = %q, want office", got[0].Category)
	}
}
