// Package catalog adapts the services module's repository to the read-only
// catalog ports other modules declare. Leads and bookings depend on these
// small interfaces instead of the services module itself.
package catalog

import (
	"context"

	"github.com/google/uuid"

	bookingsservice "marketplace_backend/internal/bookings/service"
	leadsservice "marketplace_backend/internal/leads/service"
	servicesrepo "marketplace_backend/internal/services/repository"
)

// Adapter exposes listing data through the consumer-side catalog ports.
type Adapter struct {
	services servicesrepo.ServiceReader
}

// New creates a catalog adapter over the services repository.
func New(services servicesrepo.ServiceReader) *Adapter {
	return &Adapter{services: services}
}

// ServiceInfo implements the leads catalog port.
func (a *Adapter) ServiceInfo(ctx context.Context, serviceID uuid.UUID) (leadsservice.ServiceInfo, error) {
	listing, err := a.services.GetByID(ctx, serviceID)
	if err != nil {
		return leadsservice.ServiceInfo{}, err
	}
	return leadsservice.ServiceInfo{
		ID:         listing.ID,
		ProviderID: listing.ProviderID,
		Title:      listing.Title,
		Category:   listing.Category,
	}, nil
}

// ProviderCategories implements the leads catalog port.
func (a *Adapter) ProviderCategories(ctx context.Context, providerID uuid.UUID) ([]string, error) {
	return a.services.DistinctCategoriesForProvider(ctx, providerID)
}

// PricingInfo implements the bookings catalog port.
func (a *Adapter) PricingInfo(ctx context.Context, serviceID uuid.UUID) (bookingsservice.PricingInfo, error) {
	listing, err := a.services.GetByID(ctx, serviceID)
	if err != nil {
		return bookingsservice.PricingInfo{}, err
	}
	return bookingsservice.PricingInfo{
		ProviderID:         listing.ProviderID,
		Title:              listing.Title,
		ProjectType:        listing.ProjectType,
		MinimumChargeCents: listing.MinimumChargeCents,
		DailyRateCents:     listing.DailyRateCents,
	}, nil
}

// Compile-time checks against the consumer ports.
var (
	_ leadsservice.Catalog    = (*Adapter)(nil)
	_ bookingsservice.Catalog = (*Adapter)(nil)
)
