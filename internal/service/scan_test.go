package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"receiptvault/internal/infra/observability"
	"receiptvault/internal/service"
)

// --- Mocks ---

type mockOCRClient struct {
	text string
	err  error
}

func (m *mockOCRClient) DetectText(_ context.Context, _ []byte) (string, error) {
	return m.text, m.err
}

type mockImageStore struct {
	url       string
	err       error
	gotObject string
}

func (m *mockImageStore) Upload(_ context.Context, objectName string, _ []byte, _ string) (string, error) {
	m.gotObject = objectName
	return m.url, m.err
}

// --- Tests ---

func TestScan_Success(t *testing.T) {
	images := &mockImageStore{url: "https://cdn.example.com/receipts/abc.jpg"}
	svc := service.NewScanService(
		&mockOCRClient{text: "STARBUCKS\n01/15/2024\nTotal $4.95"},
		images,
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Scan(context.Background(), "user-1", []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.ImageURL != images.url {
		t.Errorf("image URL = %q, want %q", result.ImageURL, images.url)
	}
	if result.Draft.Vendor != "STARBUCKS" {
		t.Errorf("vendor = %q, want STARBUCKS", result.Draft.Vendor)
	}
	if result.Draft.Amount != "4.95" {
		t.Errorf("amount = %q, want 4.95", result.Draft.Amount)
	}
	if !strings.HasPrefix(images.gotObject, "user-1/") {
		t.Errorf("object name %q not scoped to user", images.gotObject)
	}
	if !strings.HasSuffix(images.gotObject, ".jpg") {
		t.Errorf("object name %q missing extension", images.gotObject)
	}
}

func TestScan_OCRFailureDegradesToEmptyDraft(t *testing.T) {
	svc := service.NewScanService(
		&mockOCRClient{err: errors.New("vision unavailable")},
		&mockImageStore{url: "https://cdn.example.com/receipts/abc.png"},
		observability.NewMetrics(),
		zap.NewNop(),
	)

	result, err := svc.Scan(context.Background(), "user-1", []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("recognition failure must not fail the scan, got %v", err)
	}

	if !result.Draft.Empty() {
		t.Errorf("expected empty draft, got %+v", result.Draft)
	}
	if result.ImageURL == "" {
		t.Error("image URL should still be set when only recognition fails")
	}
}

func TestScan_UploadFailureFailsScan(t *testing.T) {
	svc := service.NewScanService(
		&mockOCRClient{text: "SHOP\n$5.00"},
		&mockImageStore{err: errors.New("bucket unavailable")},
		observability.NewMetrics(),
		zap.NewNop(),
	)

	_, err := svc.Scan(context.Background(), "user-1", []byte("bytes"), "image/jpeg")
	if err == nil {
		t.Fatal("expected error when upload fails")
	}
}

func TestScan_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := service.NewScanService(
		&mockOCRClient{},
		&mockImageStore{},
		observability.NewMetrics(),
		zap.NewNop(),
	)

	if _, err := svc.Scan(ctx, "user-1", []byte("bytes"), "image/jpeg"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
