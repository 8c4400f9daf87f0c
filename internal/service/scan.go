package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"receiptvault/internal/domain"
	"receiptvault/internal/infra/observability"
	"receiptvault/internal/port"
)

// ScanService turns an uploaded receipt image into a stored image URL and
// a draft extraction the user confirms or corrects before saving.
type ScanService struct {
	ocr     port.OCRClient
	images  port.ImageStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewScanService creates the scan service.
func NewScanService(
	ocr port.OCRClient,
	images port.ImageStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ScanService {
	return &ScanService{
		ocr:     ocr,
		images:  images,
		metrics: metrics,
		logger:  logger,
	}
}

// Scan runs text recognition and the image upload concurrently. A failed
// upload fails the whole scan — the stored image is the system of record.
// A failed recognition only degrades the result to an empty draft, since
// the user can always fill the form by hand.
func (s *ScanService) Scan(ctx context.Context, userID string, image []byte, contentType string) (*domain.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Scan.Scan")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("image.bytes", len(image)),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("scan", time.Since(start))
	}()

	var (
		rawText   string
		ocrFailed bool
		imageURL  string
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := s.ocr.DetectText(gCtx, image)
		if err != nil {
			// Tolerated: the form falls back to manual entry.
			s.logger.Warn("text recognition failed, returning empty draft",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			s.metrics.IncrExternalError("vision")
			s.metrics.IncrOCRRequest("error")
			ocrFailed = true
			return nil
		}
		rawText = text
		return nil
	})

	g.Go(func() error {
		objectName := fmt.Sprintf("%s/%s%s", userID, uuid.New().String(), extensionFor(contentType))
		url, err := s.images.Upload(gCtx, objectName, image, contentType)
		if err != nil {
			s.metrics.IncrExternalError("storage")
			return fmt.Errorf("image upload: %w", err)
		}
		imageURL = url
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	draft := ParseReceiptText(rawText)
	if !ocrFailed {
		if draft.Empty() {
			s.metrics.IncrOCRRequest("empty")
		} else {
			s.metrics.IncrOCRRequest("success")
		}
	}

	return &domain.ScanResult{Draft: draft, ImageURL: imageURL}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ""
	}
}
