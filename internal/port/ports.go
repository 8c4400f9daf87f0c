// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"receiptvault/internal/domain"
)

// ReceiptStore supplies and persists receipt records for a user. The
// Supabase adapter implements it; tests use in-memory fakes.
type ReceiptStore interface {
	ListReceipts(ctx context.Context, userID string) ([]domain.Receipt, error)
	GetReceipt(ctx context.Context, userID, receiptID string) (*domain.Receipt, error)
	CreateReceipt(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error)
	UpdateReceipt(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error)
	DeleteReceipt(ctx context.Context, userID, receiptID string) error
}

// OCRClient converts a receipt image into recognized text. The extraction
// engine consumes only the returned text; how recognition happened is the
// collaborator's concern.
type OCRClient interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// ImageStore persists receipt images and returns a retrievable URL.
type ImageStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// ProfileStore reads and updates user settings.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*domain.UserProfile, error)
}

// AuthStore defines the data operations behind the authentication flows.
type AuthStore interface {
	GetUserByID(ctx context.Context, userID string) (*domain.UserProfile, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	CreateUser(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.UserProfile, error)

	GetCredentials(ctx context.Context, userID string) (*domain.AuthCredential, error)
	UpdateCredentials(ctx context.Context, userID string, updates map[string]any) error

	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
