package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is a provider's listed offering.
type Service struct {
	ID                 uuid.UUID
	ProviderID         uuid.UUID
	Title              string
	Description        string
	Category           string
	ProjectType        string
	MinimumChargeCents int64
	DailyRateCents     *int64
	Duration           *string
	Location           *string
	Availability       *string
	Includes           []string
	AdditionalInfo     *string
	ImageURL           *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CreateParams contains parameters for creating a service.
type CreateParams struct {
	ProviderID         uuid.UUID
	Title              string
	Description        string
	Category           string
	ProjectType        string
	MinimumChargeCents int64
	DailyRateCents     *int64
	Duration           *string
	Location           *string
	Availability       *string
	Includes           []string
	AdditionalInfo     *string
}

// UpdateParams contains parameters for updating a service. Nil fields keep
// their current value.
type UpdateParams struct {
	ID                 uuid.UUID
	ProviderID         uuid.UUID
	Title              *string
	Description        *string
	Category           *string
	ProjectType        *string
	MinimumChargeCents *int64
	DailyRateCents     *int64
	Duration           *string
	Location           *string
	Availability       *string
	Includes           []string
	AdditionalInfo     *string
}

// ListParams filters the public service listing.
type ListParams struct {
	Category string
	Location string
	Search   string
	Limit    int
	Offset   int
}

// ServiceReader provides read operations for services.
type ServiceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Service, error)
	List(ctx context.Context, params ListParams) ([]Service, int, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]Service, error)
	DistinctCategoriesForProvider(ctx context.Context, providerID uuid.UUID) ([]string, error)
}

// ServiceWriter provides write operations for services.
type ServiceWriter interface {
	Create(ctx context.Context, params CreateParams) (Service, error)
	Update(ctx context.Context, params UpdateParams) (Service, error)
	Delete(ctx context.Context, providerID, id uuid.UUID) error
	SetImageURL(ctx context.Context, providerID, id uuid.UUID, imageURL string) error
}

// Repository combines all service repository operations.
type Repository interface {
	ServiceReader
	ServiceWriter
}
