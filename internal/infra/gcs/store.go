// Package gcs provides a Google Cloud Storage backend for receipt images.
// Selected with IMAGE_BACKEND=gcs; assumes Application Default Credentials.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"receiptvault/internal/domain"
)

// Store uploads receipt images to a GCS bucket. Objects are returned as
// public storage.googleapis.com URLs, so the bucket needs public reads.
// Implements port.ImageStore.
type Store struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewStore creates a GCS-backed image store.
func NewStore(ctx context.Context, bucket string, logger *zap.Logger) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket, logger: logger}, nil
}

// Upload stores an object and returns its public URL.
func (s *Store) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		s.logger.Error("gcs: upload failed",
			zap.String("object", objectName),
			zap.Error(err),
		)
		return "", &domain.ErrExternalService{Service: "gcs", Err: fmt.Errorf("copy to GCS writer: %w", err)}
	}

	if err := w.Close(); err != nil {
		s.logger.Error("gcs: finalize upload failed",
			zap.String("object", objectName),
			zap.Error(err),
		)
		return "", &domain.ErrExternalService{Service: "gcs", Err: fmt.Errorf("finalize upload: %w", err)}
	}

	s.logger.Debug("gcs: upload OK",
		zap.String("object", objectName),
		zap.String("bucket", s.bucket),
	)

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
