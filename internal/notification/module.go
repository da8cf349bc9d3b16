// Package notification subscribes to domain events and sends the matching
// emails. Domain modules publish events and never talk to the mailer
// directly.
package notification

import (
	"context"
	"fmt"

	"marketplace_backend/internal/email"
	"marketplace_backend/internal/events"
	"marketplace_backend/platform/logger"
)

// emailTimeLayout renders timestamps in emails.
const emailTimeLayout = "Monday, January 2, 2006 at 3:04 PM"

// Config provides the settings notification links are built from.
type Config interface {
	GetAppBaseURL() string
}

// Module wires event subscriptions to the email sender.
type Module struct {
	sender email.Sender
	cfg    Config
	log    *logger.Logger
}

// NewModule creates the notification module and registers its event
// subscriptions on the bus.
func NewModule(bus events.Bus, sender email.Sender, cfg Config, log *logger.Logger) *Module {
	m := &Module{sender: sender, cfg: cfg, log: log}

	bus.Subscribe(events.UserSignedUp{}.EventName(), events.HandlerFunc(m.onUserSignedUp))
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(m.onLeadCreated))
	bus.Subscribe(events.LeadConverted{}.EventName(), events.HandlerFunc(m.onLeadConverted))
	bus.Subscribe(events.BookingPaid{}.EventName(), events.HandlerFunc(m.onBookingPaid))

	return m
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

func (m *Module) onUserSignedUp(ctx context.Context, event events.Event) error {
	signedUp, ok := event.(events.UserSignedUp)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	if err := m.sender.SendWelcomeEmail(ctx, signedUp.Email, signedUp.FullName); err != nil {
		m.log.Error("send welcome email failed", "user_id", signedUp.UserID, "error", err)
		return err
	}
	return nil
}

func (m *Module) onLeadCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.LeadCreated)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if created.ProviderEmail == "" {
		m.log.Warn("lead created without provider email", "lead_id", created.LeadID)
		return nil
	}

	leadURL := fmt.Sprintf("%s/provider/leads/%s", m.cfg.GetAppBaseURL(), created.LeadID)
	err := m.sender.SendNewLeadEmail(ctx, created.ProviderEmail, created.ProviderName,
		created.CustomerName, created.ServiceTitle, created.ExpiresAt.Format(emailTimeLayout), leadURL)
	if err != nil {
		m.log.Error("send new lead email failed", "lead_id", created.LeadID, "error", err)
		return err
	}
	return nil
}

func (m *Module) onLeadConverted(ctx context.Context, event events.Event) error {
	converted, ok := event.(events.LeadConverted)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if converted.ProviderEmail == "" {
		return nil
	}

	if err := m.sender.SendLeadConvertedEmail(ctx, converted.ProviderEmail, converted.ProviderName, converted.ServiceTitle); err != nil {
		m.log.Error("send lead converted email failed", "lead_id", converted.LeadID, "error", err)
		return err
	}
	return nil
}

func (m *Module) onBookingPaid(ctx context.Context, event events.Event) error {
	paid, ok := event.(events.BookingPaid)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if paid.CustomerEmail == "" {
		m.log.Warn("booking paid without customer email", "booking_id", paid.BookingID)
		return nil
	}

	err := m.sender.SendBookingConfirmationEmail(ctx, paid.CustomerEmail, paid.CustomerName,
		paid.ServiceTitle, paid.ScheduledFor.Format(emailTimeLayout), paid.AmountCents)
	if err != nil {
		m.log.Error("send booking confirmation email failed", "booking_id", paid.BookingID, "error", err)
		return err
	}
	return nil
}
