package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Item is one photo in a provider's portfolio.
type Item struct {
	ID          uuid.UUID
	ProviderID  uuid.UUID
	Title       string
	Description *string
	ImageKey    string
	ImageURL    string
	// TakenAt comes from the photo's EXIF data when present.
	TakenAt   *time.Time
	CreatedAt time.Time
}

// CreateParams adds a portfolio item.
type CreateParams struct {
	ProviderID  uuid.UUID
	Title       string
	Description *string
	ImageKey    string
	ImageURL    string
	TakenAt     *time.Time
}

// Repository provides portfolio persistence.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (Item, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID) ([]Item, error)
	// Delete removes an item scoped to its owner. Returns the deleted item
	// so the caller can clean up the stored object.
	Delete(ctx context.Context, providerID, id uuid.UUID) (Item, error)
}
