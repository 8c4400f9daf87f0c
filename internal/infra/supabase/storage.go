package supabase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"receiptvault/internal/domain"
)

// ============================================================
// Storage — receipt images via Supabase Storage
// ============================================================

// Storage uploads receipt images to a Supabase Storage bucket and returns
// their public URLs. Implements port.ImageStore.
type Storage struct {
	client *Client
	bucket string
}

// NewStorage creates an image store backed by a Supabase Storage bucket.
// The bucket must exist and be configured for public reads.
func NewStorage(client *Client, bucket string) *Storage {
	return &Storage{client: client, bucket: bucket}
}

// Upload stores an object and returns its public URL.
func (s *Storage) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.StorageUpload")
	defer span.End()

	c := s.client
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, s.bucket, objectName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: storage upload failed",
			zap.String("object", objectName),
			zap.Error(err),
		)
		return "", &domain.ErrExternalService{Service: "supabase/storage", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := readBody(resp)
		c.logger.Warn("supabase: storage upload non-2xx",
			zap.String("object", objectName),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return "", &domain.ErrExternalService{
			Service: "supabase/storage",
			Err:     fmt.Errorf("storage upload returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	c.logger.Debug("supabase: storage upload OK",
		zap.String("object", objectName),
		zap.String("bucket", s.bucket),
	)

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, s.bucket, objectName), nil
}
