package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/leads/domain"
	"marketplace_backend/internal/leads/repository"
	"marketplace_backend/internal/leads/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/phone"
	"marketplace_backend/platform/sanitize"
)

// ServiceInfo is the catalog data the leads module needs about a listing.
type ServiceInfo struct {
	ID         uuid.UUID
	ProviderID uuid.UUID
	Title      string
	Category   string
}

// Catalog is the slice of the services module the leads module reads.
type Catalog interface {
	ServiceInfo(ctx context.Context, serviceID uuid.UUID) (ServiceInfo, error)
	ProviderCategories(ctx context.Context, providerID uuid.UUID) ([]string, error)
}

// Contact is the profile data needed for lead notifications.
type Contact struct {
	Email    string
	FullName string
}

// Contacts resolves a user's notification contact details.
type Contacts interface {
	Contact(ctx context.Context, userID uuid.UUID) (Contact, error)
}

// ExpiryScheduler schedules the precise end-of-window task for a direct lead.
// A nil scheduler is allowed; the periodic sweep then handles expiry alone.
type ExpiryScheduler interface {
	ScheduleLeadExpiry(ctx context.Context, leadID uuid.UUID, runAt time.Time) error
}

// CreateLeadParams creates a lead from a customer inquiry.
type CreateLeadParams struct {
	ServiceID     uuid.UUID
	CustomerID    *uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Message       string
}

// Service implements the lead routing lifecycle.
type Service struct {
	repo     repository.Repository
	catalog  Catalog
	contacts Contacts
	expiry   ExpiryScheduler
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new leads service.
func New(repo repository.Repository, catalog Catalog, contacts Contacts, expiry ExpiryScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		contacts: contacts,
		expiry:   expiry,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// CreateLead routes a customer inquiry to the listing's provider as a direct
// lead with a fresh exclusivity window. The lead and its opening message are
// created atomically.
func (s *Service) CreateLead(ctx context.Context, params CreateLeadParams) (transport.LeadResponse, error) {
	info, err := s.catalog.ServiceInfo(ctx, params.ServiceID)
	if err != nil {
		return transport.LeadResponse{}, apperr.Reference("service not found")
	}

	message := sanitize.Text(params.Message)
	if message == "" {
		return transport.LeadResponse{}, apperr.Validation("message must not be empty")
	}

	// A lead is identified either by the customer's account or by the
	// anonymous contact fields, never both. Signed-in inquiries drop any
	// submitted contact details; the profile is the source of truth.
	isAnonymous := params.CustomerID == nil
	name := sanitize.Text(params.CustomerName)
	email := params.CustomerEmail
	rawPhone := params.CustomerPhone
	if isAnonymous {
		if name == "" {
			return transport.LeadResponse{}, apperr.Validation("anonymous inquiries need a name")
		}
		if email == "" && rawPhone == "" {
			return transport.LeadResponse{}, apperr.Validation("anonymous inquiries need an email or phone number")
		}
	} else {
		name, email, rawPhone = "", "", ""
	}

	var customerPhone *string
	if rawPhone != "" {
		if !phone.IsValid(rawPhone) {
			return transport.LeadResponse{}, apperr.Validation("invalid phone number")
		}
		normalized := phone.NormalizeE164(rawPhone)
		customerPhone = &normalized
	}

	var customerEmail *string
	if email != "" {
		customerEmail = &email
	}

	expiresAt := s.now().Add(domain.ExclusivityWindow)
	lead, messageID, err := s.repo.CreateWithMessage(ctx, repository.CreateParams{
		ServiceID:      info.ID,
		ProviderID:     info.ProviderID,
		CustomerID:     params.CustomerID,
		CustomerName:   name,
		CustomerEmail:  customerEmail,
		CustomerPhone:  customerPhone,
		IsAnonymous:    isAnonymous,
		ExpiresAt:      expiresAt,
		MessageContent: message,
	})
	if err != nil {
		return transport.LeadResponse{}, apperr.Persistence("create lead", err)
	}

	s.log.Info("lead created", "lead_id", lead.ID, "service_id", info.ID, "provider_id", info.ProviderID, "anonymous", isAnonymous)

	if s.expiry != nil {
		if err := s.expiry.ScheduleLeadExpiry(ctx, lead.ID, expiresAt); err != nil {
			// The periodic sweep will still pick the lead up.
			s.log.Error("schedule lead expiry failed", "lead_id", lead.ID, "error", err)
		}
	}

	providerContact, err := s.contacts.Contact(ctx, info.ProviderID)
	if err != nil {
		s.log.Error("resolve provider contact failed", "provider_id", info.ProviderID, "error", err)
	}

	customerName := lead.CustomerName
	if !isAnonymous {
		if contact, err := s.contacts.Contact(ctx, *params.CustomerID); err == nil {
			customerName = contact.FullName
		}
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		MessageID:     messageID,
		ServiceID:     info.ID,
		ProviderID:    info.ProviderID,
		ProviderEmail: providerContact.Email,
		ProviderName:  providerContact.FullName,
		ServiceTitle:  info.Title,
		CustomerName:  customerName,
		IsAnonymous:   isAnonymous,
		ExpiresAt:     expiresAt,
	})

	return toResponse(lead), nil
}

// MarkResponded transitions the lead to responded on the provider's first
// reply. Safe to call repeatedly; only the first call changes anything, and
// the return value reports whether this call was the one that did.
func (s *Service) MarkResponded(ctx context.Context, leadID, messageID uuid.UUID) (bool, error) {
	changed, err := s.repo.MarkResponded(ctx, leadID)
	if err != nil {
		return false, apperr.Persistence("mark lead responded", err)
	}
	if !changed {
		return false, nil
	}

	s.log.Info("lead responded", "lead_id", leadID)
	s.bus.Publish(ctx, events.LeadResponded{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		MessageID: messageID,
	})
	return true, nil
}

// RecordProviderReply marks the lead responded when the reply came from its
// provider. Replies from anyone else, and replies on leads that no longer
// exist, are ignored.
func (s *Service) RecordProviderReply(ctx context.Context, leadID, senderID, messageID uuid.UUID) (bool, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	if lead.ProviderID != senderID {
		return false, nil
	}
	return s.MarkResponded(ctx, leadID, messageID)
}

// ExpireLead promotes a single overdue direct lead to opportunity. Returns
// whether the lead actually transitioned.
func (s *Service) ExpireLead(ctx context.Context, leadID uuid.UUID) (bool, error) {
	expired, err := s.repo.ExpireLead(ctx, leadID, s.now())
	if err != nil {
		return false, apperr.Persistence("expire lead", err)
	}
	return expired, nil
}

// ExpireDue promotes every overdue direct lead and returns the count.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, apperr.Persistence("expire due leads", err)
	}
	return count, nil
}

// Convert marks the lead converted and billed. Under concurrent calls exactly
// one caller wins the compare-and-swap; only that call publishes the billing
// event. Losers get the already-converted lead back without error.
func (s *Service) Convert(ctx context.Context, leadID, convertedBy uuid.UUID) (transport.LeadResponse, error) {
	lead, won, err := s.repo.Convert(ctx, leadID, convertedBy)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if won {
		s.log.Info("lead converted", "lead_id", leadID, "converted_by", convertedBy)

		var providerEmail, providerName, serviceTitle string
		if contact, err := s.contacts.Contact(ctx, lead.ProviderID); err == nil {
			providerEmail = contact.Email
			providerName = contact.FullName
		}
		if info, err := s.catalog.ServiceInfo(ctx, lead.ServiceID); err == nil {
			serviceTitle = info.Title
		}

		s.bus.Publish(ctx, events.LeadConverted{
			BaseEvent:     events.NewBaseEvent(),
			LeadID:        lead.ID,
			ConvertedByID: convertedBy,
			ProviderEmail: providerEmail,
			ProviderName:  providerName,
			ServiceTitle:  serviceTitle,
		})
	}

	return toResponse(lead), nil
}

// ListDirect lists the provider's own exclusive leads, newest first. The
// expiry sweep runs first so a lapsed window is never shown as direct.
func (s *Service) ListDirect(ctx context.Context, providerID uuid.UUID, page, pageSize int) (transport.LeadListResponse, error) {
	s.sweep(ctx)
	page, pageSize = normalizePage(page, pageSize)
	items, total, err := s.repo.ListDirectForProvider(ctx, providerID, repository.ListParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return transport.LeadListResponse{}, apperr.Persistence("list direct leads", err)
	}
	return toListResponse(items, total, page, pageSize), nil
}

// ListOpportunities lists open leads in the categories the provider serves.
// A provider with no listings sees an empty board.
func (s *Service) ListOpportunities(ctx context.Context, providerID uuid.UUID, page, pageSize int) (transport.LeadListResponse, error) {
	s.sweep(ctx)
	categories, err := s.catalog.ProviderCategories(ctx, providerID)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	if len(categories) == 0 {
		return toListResponse(nil, 0, 1, 0), nil
	}

	page, pageSize = normalizePage(page, pageSize)
	items, total, err := s.repo.ListOpportunities(ctx, categories, repository.ListParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return transport.LeadListResponse{}, apperr.Persistence("list opportunity leads", err)
	}
	return toListResponse(items, total, page, pageSize), nil
}

// GetByID retrieves a lead visible to the given provider.
func (s *Service) GetByID(ctx context.Context, providerID, leadID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if lead.ProviderID != providerID && lead.Status != domain.StatusOpportunity {
		return transport.LeadResponse{}, apperr.Forbidden("lead is not visible to you")
	}
	return toResponse(lead), nil
}

// sweep applies overdue expiries before a listing is served. A failing sweep
// does not block the read; the scheduled tasks catch up.
func (s *Service) sweep(ctx context.Context) {
	if _, err := s.repo.ExpireDue(ctx, s.now()); err != nil {
		s.log.Error("expiry sweep before listing failed", "error", err)
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func toResponse(lead repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:           lead.ID.String(),
		ServiceID:    lead.ServiceID.String(),
		ProviderID:   lead.ProviderID.String(),
		CustomerName: lead.CustomerName,
		IsAnonymous:  lead.IsAnonymous,
		Status:       string(lead.Status),
		ExpiresAt:    lead.ExpiresAt,
		IsBilled:     lead.IsBilled,
		CreatedAt:    lead.CreatedAt,
		UpdatedAt:    lead.UpdatedAt,
	}
	if lead.CustomerID != nil {
		id := lead.CustomerID.String()
		resp.CustomerID = &id
	}
	resp.CustomerEmail = lead.CustomerEmail
	resp.CustomerPhone = lead.CustomerPhone
	resp.ConvertedAt = lead.ConvertedAt
	if lead.ConvertedBy != nil {
		id := lead.ConvertedBy.String()
		resp.ConvertedBy = &id
	}
	return resp
}

func toListResponse(items []repository.LeadWithService, total, page, pageSize int) transport.LeadListResponse {
	responses := make([]transport.LeadListItem, len(items))
	for i, item := range items {
		responses[i] = transport.LeadListItem{
			LeadResponse:    toResponse(item.Lead),
			ServiceTitle:    item.ServiceTitle,
			ServiceCategory: item.ServiceCategory,
		}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return transport.LeadListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
