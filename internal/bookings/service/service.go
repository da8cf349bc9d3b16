package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/bookings/repository"
	"marketplace_backend/internal/bookings/transport"
	"marketplace_backend/internal/events"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

// PricingInfo is the catalog data needed to price and route a booking.
type PricingInfo struct {
	ProviderID         uuid.UUID
	Title              string
	ProjectType        string
	MinimumChargeCents int64
	DailyRateCents     *int64
}

// Catalog resolves listing pricing for bookings.
type Catalog interface {
	PricingInfo(ctx context.Context, serviceID uuid.UUID) (PricingInfo, error)
}

// Contact is the profile data needed for booking notifications.
type Contact struct {
	Email    string
	FullName string
}

// Contacts resolves a user's notification contact details.
type Contacts interface {
	Contact(ctx context.Context, userID uuid.UUID) (Contact, error)
}

// Service implements bookings with a simulated payment flow. No real money
// moves; intents are opaque references confirmed by the same API.
type Service struct {
	repo     repository.Repository
	catalog  Catalog
	contacts Contacts
	bus      events.Bus
	log      *logger.Logger
}

// New creates a new bookings service.
func New(repo repository.Repository, catalog Catalog, contacts Contacts, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, contacts: contacts, bus: bus, log: log}
}

// Create books a listing for the customer at the listing's current price.
// Daily listings bill the daily rate; everything else bills the minimum
// charge.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req transport.CreateBookingRequest) (transport.BookingResponse, error) {
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return transport.BookingResponse{}, apperr.Validation("invalid service ID")
	}
	if req.ScheduledFor.Before(time.Now()) {
		return transport.BookingResponse{}, apperr.Validation("scheduled time must be in the future")
	}

	pricing, err := s.catalog.PricingInfo(ctx, serviceID)
	if err != nil {
		return transport.BookingResponse{}, apperr.Reference("service not found")
	}
	if pricing.ProviderID == customerID {
		return transport.BookingResponse{}, apperr.Validation("cannot book your own listing")
	}

	amount := pricing.MinimumChargeCents
	if pricing.ProjectType == "daily" && pricing.DailyRateCents != nil {
		amount = *pricing.DailyRateCents
	}

	booking, err := s.repo.Create(ctx, repository.CreateParams{
		ServiceID:    serviceID,
		CustomerID:   customerID,
		ProviderID:   pricing.ProviderID,
		ScheduledFor: req.ScheduledFor,
		AmountCents:  amount,
	})
	if err != nil {
		return transport.BookingResponse{}, apperr.Persistence("create booking", err)
	}

	s.log.Info("booking created", "booking_id", booking.ID, "service_id", serviceID, "amount_cents", amount)
	return toResponse(booking), nil
}

// CreatePaymentIntent issues a simulated payment intent for a pending
// booking. Re-issuing replaces the previous intent.
func (s *Service) CreatePaymentIntent(ctx context.Context, customerID, bookingID uuid.UUID) (transport.PaymentIntentResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return transport.PaymentIntentResponse{}, err
	}
	if booking.CustomerID != customerID {
		return transport.PaymentIntentResponse{}, apperr.Forbidden("booking is not yours")
	}
	if booking.Status != repository.StatusPending {
		return transport.PaymentIntentResponse{}, apperr.Conflict("booking is not pending")
	}

	intentID, err := newPaymentIntentID()
	if err != nil {
		return transport.PaymentIntentResponse{}, apperr.Internal("could not create payment intent")
	}
	if err := s.repo.SetPaymentIntent(ctx, bookingID, intentID); err != nil {
		return transport.PaymentIntentResponse{}, err
	}

	return transport.PaymentIntentResponse{
		PaymentIntentID: intentID,
		AmountCents:     booking.AmountCents,
	}, nil
}

// ConfirmPayment completes the simulated payment. The first confirm with a
// matching intent wins; repeats return the already-paid booking without
// publishing a second billing event.
func (s *Service) ConfirmPayment(ctx context.Context, customerID, bookingID uuid.UUID, req transport.ConfirmPaymentRequest) (transport.BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	if booking.CustomerID != customerID {
		return transport.BookingResponse{}, apperr.Forbidden("booking is not yours")
	}
	if booking.PaymentIntentID == nil || *booking.PaymentIntentID != req.PaymentIntentID {
		return transport.BookingResponse{}, apperr.Validation("unknown payment intent")
	}

	paid, won, err := s.repo.MarkPaid(ctx, bookingID, req.PaymentIntentID)
	if err != nil {
		return transport.BookingResponse{}, err
	}

	if won {
		s.log.Info("booking paid", "booking_id", paid.ID, "amount_cents", paid.AmountCents)

		var customerEmail, customerName, serviceTitle string
		if contact, err := s.contacts.Contact(ctx, paid.CustomerID); err == nil {
			customerEmail = contact.Email
			customerName = contact.FullName
		}
		if pricing, err := s.catalog.PricingInfo(ctx, paid.ServiceID); err == nil {
			serviceTitle = pricing.Title
		}

		s.bus.Publish(ctx, events.BookingPaid{
			BaseEvent:     events.NewBaseEvent(),
			BookingID:     paid.ID,
			CustomerID:    paid.CustomerID,
			CustomerEmail: customerEmail,
			CustomerName:  customerName,
			ServiceTitle:  serviceTitle,
			AmountCents:   paid.AmountCents,
			ScheduledFor:  paid.ScheduledFor,
		})
	}

	return toResponse(paid), nil
}

// Cancel cancels a pending booking.
func (s *Service) Cancel(ctx context.Context, customerID, bookingID uuid.UUID) error {
	cancelled, err := s.repo.Cancel(ctx, bookingID, customerID)
	if err != nil {
		return apperr.Persistence("cancel booking", err)
	}
	if !cancelled {
		return apperr.Conflict("booking cannot be cancelled")
	}
	return nil
}

// GetByID retrieves a booking visible to the caller.
func (s *Service) GetByID(ctx context.Context, userID, bookingID uuid.UUID) (transport.BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	if booking.CustomerID != userID && booking.ProviderID != userID {
		return transport.BookingResponse{}, apperr.Forbidden("booking is not visible to you")
	}
	return toResponse(booking), nil
}

// ListMine lists the customer's bookings.
func (s *Service) ListMine(ctx context.Context, customerID uuid.UUID) (transport.BookingListResponse, error) {
	items, err := s.repo.ListForCustomer(ctx, customerID)
	if err != nil {
		return transport.BookingListResponse{}, apperr.Persistence("list bookings", err)
	}
	return toListResponse(items), nil
}

// ListForProvider lists bookings against the provider's listings.
func (s *Service) ListForProvider(ctx context.Context, providerID uuid.UUID) (transport.BookingListResponse, error) {
	items, err := s.repo.ListForProvider(ctx, providerID)
	if err != nil {
		return transport.BookingListResponse{}, apperr.Persistence("list provider bookings", err)
	}
	return toListResponse(items), nil
}

// CheckInPayload is the content encoded into a booking's QR code. Only paid
// bookings get one.
func (s *Service) CheckInPayload(ctx context.Context, userID, bookingID uuid.UUID) (string, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking.CustomerID != userID && booking.ProviderID != userID {
		return "", apperr.Forbidden("booking is not visible to you")
	}
	if booking.Status != repository.StatusPaid {
		return "", apperr.Conflict("booking is not paid")
	}
	return fmt.Sprintf("booking:%s:%d", booking.ID, booking.ScheduledFor.Unix()), nil
}

// AddPaymentMethod stores a card reference for the user.
func (s *Service) AddPaymentMethod(ctx context.Context, userID uuid.UUID, req transport.AddPaymentMethodRequest) (transport.PaymentMethodResponse, error) {
	method, err := s.repo.AddPaymentMethod(ctx, repository.PaymentMethodParams{
		UserID:    userID,
		Brand:     req.Brand,
		Last4:     req.Last4,
		ExpMonth:  req.ExpMonth,
		ExpYear:   req.ExpYear,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return transport.PaymentMethodResponse{}, apperr.Persistence("add payment method", err)
	}
	return toMethodResponse(method), nil
}

// ListPaymentMethods lists the user's stored cards.
func (s *Service) ListPaymentMethods(ctx context.Context, userID uuid.UUID) (transport.PaymentMethodListResponse, error) {
	methods, err := s.repo.ListPaymentMethods(ctx, userID)
	if err != nil {
		return transport.PaymentMethodListResponse{}, apperr.Persistence("list payment methods", err)
	}
	items := make([]transport.PaymentMethodResponse, len(methods))
	for i, method := range methods {
		items[i] = toMethodResponse(method)
	}
	return transport.PaymentMethodListResponse{Items: items}, nil
}

// DeletePaymentMethod removes a stored card.
func (s *Service) DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeletePaymentMethod(ctx, userID, id)
}

// SetDefaultPaymentMethod makes one stored card the default.
func (s *Service) SetDefaultPaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.SetDefaultPaymentMethod(ctx, userID, id)
}

func newPaymentIntentID() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "pi_" + hex.EncodeToString(buf), nil
}

func toResponse(booking repository.Booking) transport.BookingResponse {
	return transport.BookingResponse{
		ID:              booking.ID.String(),
		ServiceID:       booking.ServiceID.String(),
		CustomerID:      booking.CustomerID.String(),
		ProviderID:      booking.ProviderID.String(),
		ScheduledFor:    booking.ScheduledFor,
		AmountCents:     booking.AmountCents,
		Status:          string(booking.Status),
		PaymentIntentID: booking.PaymentIntentID,
		PaidAt:          booking.PaidAt,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
}

func toListResponse(items []repository.BookingWithService) transport.BookingListResponse {
	responses := make([]transport.BookingListItem, len(items))
	for i, item := range items {
		responses[i] = transport.BookingListItem{
			BookingResponse: toResponse(item.Booking),
			ServiceTitle:    item.ServiceTitle,
		}
	}
	return transport.BookingListResponse{Items: responses}
}

func toMethodResponse(method repository.PaymentMethod) transport.PaymentMethodResponse {
	return transport.PaymentMethodResponse{
		ID:        method.ID.String(),
		Brand:     method.Brand,
		Last4:     method.Last4,
		ExpMonth:  method.ExpMonth,
		ExpYear:   method.ExpYear,
		IsDefault: method.IsDefault,
		CreatedAt: method.CreatedAt,
	}
}
