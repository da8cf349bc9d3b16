// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"marketplace_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	IsProvider bool      `json:"isProvider"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new customer inquiry creates a direct lead.
// Contact fields are denormalized so notification handlers need no extra reads.
type LeadCreated struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	MessageID     uuid.UUID `json:"messageId"`
	ServiceID     uuid.UUID `json:"serviceId"`
	ProviderID    uuid.UUID `json:"providerId"`
	ProviderEmail string    `json:"providerEmail"`
	ProviderName  string    `json:"providerName"`
	ServiceTitle  string    `json:"serviceTitle"`
	CustomerName  string    `json:"customerName"`
	IsAnonymous   bool      `json:"isAnonymous"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadResponded is published when a provider reply moves a lead to responded.
type LeadResponded struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	MessageID uuid.UUID `json:"messageId"`
}

func (e LeadResponded) EventName() string { return "leads.lead.responded" }

// LeadConverted is published exactly once per lead, by the convert call that
// won the compare-and-swap. It is the billing event.
type LeadConverted struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	ConvertedByID uuid.UUID `json:"convertedById"`
	ProviderEmail string    `json:"providerEmail"`
	ProviderName  string    `json:"providerName"`
	ServiceTitle  string    `json:"serviceTitle"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// LeadsExpired is published after an expiry sweep reclassified direct leads
// whose exclusivity window lapsed.
type LeadsExpired struct {
	BaseEvent
	Count int64 `json:"count"`
}

func (e LeadsExpired) EventName() string { return "leads.leads.expired" }

// =============================================================================
// Messaging Domain Events
// =============================================================================

// MessageSent is published when a message is appended to a thread.
type MessageSent struct {
	BaseEvent
	MessageID   uuid.UUID `json:"messageId"`
	SenderID    uuid.UUID `json:"senderId"`
	RecipientID uuid.UUID `json:"recipientId"`
	IsLead      bool      `json:"isLead"`
}

func (e MessageSent) EventName() string { return "messaging.message.sent" }

// =============================================================================
// Bookings Domain Events
// =============================================================================

// BookingPaid is published when a booking's simulated payment completes.
type BookingPaid struct {
	BaseEvent
	BookingID     uuid.UUID `json:"bookingId"`
	CustomerID    uuid.UUID `json:"customerId"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerName  string    `json:"customerName"`
	ServiceTitle  string    `json:"serviceTitle"`
	AmountCents   int64     `json:"amountCents"`
	ScheduledFor  time.Time `json:"scheduledFor"`
}

func (e BookingPaid) EventName() string { return "bookings.booking.paid" }
