package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is a booking's payment state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Booking is a scheduled job with its payment state.
type Booking struct {
	ID              uuid.UUID
	ServiceID       uuid.UUID
	CustomerID      uuid.UUID
	ProviderID      uuid.UUID
	ScheduledFor    time.Time
	AmountCents     int64
	Status          Status
	PaymentIntentID *string
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingWithService is a booking joined with its listing title.
type BookingWithService struct {
	Booking
	ServiceTitle string
}

// CreateParams creates a pending booking.
type CreateParams struct {
	ServiceID    uuid.UUID
	CustomerID   uuid.UUID
	ProviderID   uuid.UUID
	ScheduledFor time.Time
	AmountCents  int64
}

// PaymentMethod is a stored card reference. Only display data is kept; the
// payment flow itself is simulated.
type PaymentMethod struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Brand     string
	Last4     string
	ExpMonth  int
	ExpYear   int
	IsDefault bool
	CreatedAt time.Time
}

// PaymentMethodParams adds a card reference for a user.
type PaymentMethodParams struct {
	UserID    uuid.UUID
	Brand     string
	Last4     string
	ExpMonth  int
	ExpYear   int
	IsDefault bool
}

// BookingStore provides booking persistence.
type BookingStore interface {
	Create(ctx context.Context, params CreateParams) (Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (Booking, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]BookingWithService, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID) ([]BookingWithService, error)
	// SetPaymentIntent attaches the intent reference to a pending booking.
	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error
	// MarkPaid moves a pending booking with the given intent to paid.
	// Returns false when the booking was not pending or the intent mismatched.
	MarkPaid(ctx context.Context, id uuid.UUID, intentID string) (Booking, bool, error)
	// Cancel moves a pending booking to cancelled.
	Cancel(ctx context.Context, id, customerID uuid.UUID) (bool, error)
}

// PaymentMethodStore provides stored card persistence.
type PaymentMethodStore interface {
	AddPaymentMethod(ctx context.Context, params PaymentMethodParams) (PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error
	SetDefaultPaymentMethod(ctx context.Context, userID, id uuid.UUID) error
}

// Repository combines all booking repository operations.
type Repository interface {
	BookingStore
	PaymentMethodStore
}
