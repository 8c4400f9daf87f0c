// Package vision provides text recognition for receipt images using the
// Google Cloud Vision API.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	goption "google.golang.org/api/option"
	gvision "google.golang.org/api/vision/v1"

	"receiptvault/internal/domain"
	"receiptvault/internal/infra/resilience"
)

var tracer = otel.Tracer("vision")

// OCRClient calls the Vision API text detection endpoint. Implements
// port.OCRClient.
type OCRClient struct {
	svc *gvision.Service
	cb  *gobreaker.CircuitBreaker
	cfg resilience.Config
}

// NewOCRClient creates a Vision API client authenticated with an API key.
func NewOCRClient(ctx context.Context, apiKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) (*OCRClient, error) {
	svc, err := gvision.NewService(ctx, goption.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	return &OCRClient{svc: svc, cb: cb, cfg: cfg}, nil
}

// DetectText runs text detection over an image and returns the recognized
// full text. An image with no recognizable text yields an empty string,
// not an error.
func (c *OCRClient) DetectText(ctx context.Context, image []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "Vision.DetectText")
	defer span.End()
	span.SetAttributes(attribute.Int("image.bytes", len(image)))

	var text string

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req := &gvision.BatchAnnotateImagesRequest{
				Requests: []*gvision.AnnotateImageRequest{{
					Image: &gvision.Image{
						Content: base64.StdEncoding.EncodeToString(image),
					},
					Features: []*gvision.Feature{
						{Type: "TEXT_DETECTION"},
						{Type: "DOCUMENT_TEXT_DETECTION"},
					},
				}},
			}

			resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
			if err != nil {
				return err
			}
			if len(resp.Responses) == 0 {
				text = ""
				return nil
			}

			r := resp.Responses[0]
			if r.Error != nil {
				return fmt.Errorf("vision API error %d: %s", r.Error.Code, r.Error.Message)
			}

			switch {
			case r.FullTextAnnotation != nil:
				text = r.FullTextAnnotation.Text
			case len(r.TextAnnotations) > 0:
				text = r.TextAnnotations[0].Description
			default:
				text = ""
			}
			return nil
		})
	})

	if err != nil {
		return "", &domain.ErrExternalService{Service: "vision", Err: err}
	}

	return text, nil
}
