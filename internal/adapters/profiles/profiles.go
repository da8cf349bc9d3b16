// Package profiles adapts the auth module's user store to the contact and
// directory ports other modules declare.
package profiles

import (
	"context"

	"github.com/google/uuid"

	authrepo "marketplace_backend/internal/auth/repository"
	bookingsservice "marketplace_backend/internal/bookings/service"
	leadsservice "marketplace_backend/internal/leads/service"
	messagingservice "marketplace_backend/internal/messaging/service"
)

// Adapter resolves user contact details through the auth repository.
type Adapter struct {
	users authrepo.UserStore
}

// New creates a profiles adapter over the auth user store.
func New(users authrepo.UserStore) *Adapter {
	return &Adapter{users: users}
}

// Contact implements the leads contact port.
func (a *Adapter) Contact(ctx context.Context, userID uuid.UUID) (leadsservice.Contact, error) {
	email, name, err := a.lookup(ctx, userID)
	if err != nil {
		return leadsservice.Contact{}, err
	}
	return leadsservice.Contact{Email: email, FullName: name}, nil
}

// BookingContact implements the bookings contact port under its own name so
// both ports can coexist on one adapter value.
type BookingContact struct {
	*Adapter
}

// Contact implements the bookings contact port.
func (a BookingContact) Contact(ctx context.Context, userID uuid.UUID) (bookingsservice.Contact, error) {
	email, name, err := a.lookup(ctx, userID)
	if err != nil {
		return bookingsservice.Contact{}, err
	}
	return bookingsservice.Contact{Email: email, FullName: name}, nil
}

// DisplayName implements the messaging directory port.
func (a *Adapter) DisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := a.users.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.FullName, nil
}

func (a *Adapter) lookup(ctx context.Context, userID uuid.UUID) (email, name string, err error) {
	user, err := a.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	profile, err := a.users.GetProfile(ctx, userID)
	if err != nil {
		return user.Email, "", nil
	}
	return user.Email, profile.FullName, nil
}

// Compile-time checks against the consumer ports.
var (
	_ leadsservice.Contacts      = (*Adapter)(nil)
	_ bookingsservice.Contacts   = BookingContact{}
	_ messagingservice.Directory = (*Adapter)(nil)
)
