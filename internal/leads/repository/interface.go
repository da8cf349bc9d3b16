package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/leads/domain"
)

// Lead is a customer inquiry routed to a provider. Contact fields are set
// for anonymous inquiries only; leads from signed-in customers carry the
// account reference instead.
type Lead struct {
	ID            uuid.UUID
	ServiceID     uuid.UUID
	ProviderID    uuid.UUID
	CustomerID    *uuid.UUID
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string
	IsAnonymous   bool
	Status        domain.Status
	ExpiresAt     time.Time
	ConvertedAt   *time.Time
	ConvertedBy   *uuid.UUID
	IsBilled      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LeadWithService is a lead joined with catalog fields for listings.
type LeadWithService struct {
	Lead
	ServiceTitle    string
	ServiceCategory string
}

// CreateParams creates a lead together with its opening message.
type CreateParams struct {
	ServiceID      uuid.UUID
	ProviderID     uuid.UUID
	CustomerID     *uuid.UUID
	CustomerName   string
	CustomerEmail  *string
	CustomerPhone  *string
	IsAnonymous    bool
	ExpiresAt      time.Time
	MessageContent string
}

// ListParams paginates lead listings.
type ListParams struct {
	Limit  int
	Offset int
}

// LeadReader provides read operations for leads.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	ListDirectForProvider(ctx context.Context, providerID uuid.UUID, params ListParams) ([]LeadWithService, int, error)
	ListOpportunities(ctx context.Context, categories []string, params ListParams) ([]LeadWithService, int, error)
}

// LeadWriter provides lifecycle mutations for leads.
type LeadWriter interface {
	// CreateWithMessage inserts the lead and its first message atomically.
	// Returns the created lead and the new message's ID.
	CreateWithMessage(ctx context.Context, params CreateParams) (Lead, uuid.UUID, error)
	// MarkResponded moves a direct or opportunity lead to responded.
	// Returns false when the lead was already responded or converted.
	MarkResponded(ctx context.Context, leadID uuid.UUID) (bool, error)
	// ExpireLead moves a single overdue direct lead to opportunity.
	// Returns false when the lead is not direct or not yet overdue.
	ExpireLead(ctx context.Context, leadID uuid.UUID, now time.Time) (bool, error)
	// ExpireDue promotes every overdue direct lead in one statement and
	// returns how many rows changed.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	// Convert marks the lead converted and billed. The compare-and-swap on
	// status means exactly one caller observes won == true.
	Convert(ctx context.Context, leadID, convertedBy uuid.UUID) (Lead, bool, error)
}

// Repository combines all lead repository operations.
type Repository interface {
	LeadReader
	LeadWriter
}
