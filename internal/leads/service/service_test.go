package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/leads/domain"
	"marketplace_backend/internal/leads/repository"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

type fakeRepo struct {
	mu    sync.Mutex
	leads map[uuid.UUID]repository.Lead
	// serviceCategory maps service IDs to a category for opportunity lookups.
	serviceCategory map[uuid.UUID]string
	messageCount    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		leads:           make(map[uuid.UUID]repository.Lead),
		serviceCategory: make(map[uuid.UUID]string),
	}
}

func (f *fakeRepo) CreateWithMessage(ctx context.Context, params repository.CreateParams) (repository.Lead, uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead := repository.Lead{
		ID:            uuid.New(),
		ServiceID:     params.ServiceID,
		ProviderID:    params.ProviderID,
		CustomerID:    params.CustomerID,
		CustomerName:  params.CustomerName,
		CustomerEmail: params.CustomerEmail,
		CustomerPhone: params.CustomerPhone,
		IsAnonymous:   params.IsAnonymous,
		Status:        domain.StatusDirect,
		ExpiresAt:     params.ExpiresAt,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	f.leads[lead.ID] = lead
	f.messageCount++
	return lead, uuid.New(), nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeRepo) MarkResponded(ctx context.Context, leadID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[leadID]
	if !ok {
		return false, nil
	}
	if lead.Status != domain.StatusDirect && lead.Status != domain.StatusOpportunity {
		return false, nil
	}
	lead.Status = domain.StatusResponded
	f.leads[leadID] = lead
	return true, nil
}

func (f *fakeRepo) ExpireLead(ctx context.Context, leadID uuid.UUID, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[leadID]
	if !ok || lead.Status != domain.StatusDirect || lead.ExpiresAt.After(now) {
		return false, nil
	}
	lead.Status = domain.StatusOpportunity
	f.leads[leadID] = lead
	return true, nil
}

func (f *fakeRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for id, lead := range f.leads {
		if lead.Status == domain.StatusDirect && !lead.ExpiresAt.After(now) {
			lead.Status = domain.StatusOpportunity
			f.leads[id] = lead
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) Convert(ctx context.Context, leadID, convertedBy uuid.UUID) (repository.Lead, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[leadID]
	if !ok {
		return repository.Lead{}, false, apperr.NotFound("lead not found")
	}
	if lead.Status == domain.StatusConverted {
		return lead, false, nil
	}
	now := time.Now()
	lead.Status = domain.StatusConverted
	lead.ConvertedAt = &now
	lead.ConvertedBy = &convertedBy
	lead.IsBilled = true
	f.leads[leadID] = lead
	return lead, true, nil
}

func (f *fakeRepo) ListDirectForProvider(ctx context.Context, providerID uuid.UUID, params repository.ListParams) ([]repository.LeadWithService, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []repository.LeadWithService
	for _, lead := range f.leads {
		if lead.ProviderID == providerID && lead.Status == domain.StatusDirect {
			items = append(items, repository.LeadWithService{Lead: lead})
		}
	}
	return items, len(items), nil
}

func (f *fakeRepo) ListOpportunities(ctx context.Context, categories []string, params repository.ListParams) ([]repository.LeadWithService, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}
	var items []repository.LeadWithService
	for _, lead := range f.leads {
		if lead.Status != domain.StatusOpportunity {
			continue
		}
		category := f.serviceCategory[lead.ServiceID]
		if allowed[category] {
			items = append(items, repository.LeadWithService{Lead: lead, ServiceCategory: category})
		}
	}
	return items, len(items), nil
}

type fakeCatalog struct {
	services   map[uuid.UUID]ServiceInfo
	categories map[uuid.UUID][]string
}

func (f *fakeCatalog) ServiceInfo(ctx context.Context, serviceID uuid.UUID) (ServiceInfo, error) {
	info, ok := f.services[serviceID]
	if !ok {
		return ServiceInfo{}, errors.New("service not found")
	}
	return info, nil
}

func (f *fakeCatalog) ProviderCategories(ctx context.Context, providerID uuid.UUID) ([]string, error) {
	return f.categories[providerID], nil
}

type fakeContacts struct{}

func (fakeContacts) Contact(ctx context.Context, userID uuid.UUID) (Contact, error) {
	return Contact{Email: "provider@example.com", FullName: "Pat Provider"}, nil
}

type fakeExpiry struct {
	mu        sync.Mutex
	scheduled map[uuid.UUID]time.Time
}

func (f *fakeExpiry) ScheduleLeadExpiry(ctx context.Context, leadID uuid.UUID, runAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduled == nil {
		f.scheduled = make(map[uuid.UUID]time.Time)
	}
	f.scheduled[leadID] = runAt
	return nil
}

type captureBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *captureBus) Publish(ctx context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *captureBus) Subscribe(eventName string, handler events.Handler) {}

func (b *captureBus) published() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.events...)
}

type fixture struct {
	svc     *Service
	repo    *fakeRepo
	catalog *fakeCatalog
	expiry  *fakeExpiry
	bus     *captureBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	catalog := &fakeCatalog{
		services:   make(map[uuid.UUID]ServiceInfo),
		categories: make(map[uuid.UUID][]string),
	}
	expiry := &fakeExpiry{}
	bus := &captureBus{}
	svc := New(repo, catalog, fakeContacts{}, expiry, bus, logger.New("test"))
	return &fixture{svc: svc, repo: repo, catalog: catalog, expiry: expiry, bus: bus}
}

func (f *fixture) addService(providerID uuid.UUID, category string) uuid.UUID {
	serviceID := uuid.New()
	f.catalog.services[serviceID] = ServiceInfo{
		ID:         serviceID,
		ProviderID: providerID,
		Title:      "Test Listing",
		Category:   category,
	}
	f.repo.serviceCategory[serviceID] = category
	return serviceID
}

func TestCreateLeadSetsExclusivityWindow(t *testing.T) {
	f := newFixture(t)
	providerID := uuid.New()
	serviceID := f.addService(providerID, "plumbing")

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }

	resp, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:    serviceID,
		CustomerName: "Casey Customer",
		CustomerEmail: "casey@example.com",
		Message:      "Can you fix my sink?",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}

	want := start.Add(domain.ExclusivityWindow)
	if !resp.ExpiresAt.Equal(want) {
		t.Errorf("expiresAt = %v, want %v", resp.ExpiresAt, want)
	}
	if resp.Status != string(domain.StatusDirect) {
		t.Errorf("status = %s, want direct", resp.Status)
	}
	if !resp.IsAnonymous {
		t.Error("lead without a customer ID should be anonymous")
	}
	if f.repo.messageCount != 1 {
		t.Errorf("message count = %d, want 1", f.repo.messageCount)
	}

	leadID := uuid.MustParse(resp.ID)
	if runAt, ok := f.expiry.scheduled[leadID]; !ok || !runAt.Equal(want) {
		t.Errorf("expiry scheduled at %v (ok=%v), want %v", runAt, ok, want)
	}

	published := f.bus.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	created, ok := published[0].(events.LeadCreated)
	if !ok {
		t.Fatalf("published %T, want LeadCreated", published[0])
	}
	if created.ProviderEmail != "provider@example.com" {
		t.Errorf("provider email = %s", created.ProviderEmail)
	}
	if created.MessageID == uuid.Nil {
		t.Error("event should reference the opening message")
	}
}

func TestCreateLeadAuthenticatedUsesAccountIdentity(t *testing.T) {
	f := newFixture(t)
	serviceID := f.addService(uuid.New(), "plumbing")
	customerID := uuid.New()

	resp, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:     serviceID,
		CustomerID:    &customerID,
		CustomerName:  "Casey Customer",
		CustomerEmail: "casey@example.com",
		CustomerPhone: "(212) 555-0123",
		Message:       "hello",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if resp.IsAnonymous {
		t.Error("lead with a customer ID must not be anonymous")
	}
	if resp.CustomerID == nil || *resp.CustomerID != customerID.String() {
		t.Errorf("customerId = %v, want %s", resp.CustomerID, customerID)
	}
	if resp.CustomerName != "" || resp.CustomerEmail != nil || resp.CustomerPhone != nil {
		t.Errorf("contact fields stored alongside an account: name=%q email=%v phone=%v",
			resp.CustomerName, resp.CustomerEmail, resp.CustomerPhone)
	}
}

func TestCreateLeadAnonymousNeedsName(t *testing.T) {
	f := newFixture(t)
	serviceID := f.addService(uuid.New(), "plumbing")

	_, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:     serviceID,
		CustomerEmail: "casey@example.com",
		Message:       "hello",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateLeadAnonymousNeedsContact(t *testing.T) {
	f := newFixture(t)
	serviceID := f.addService(uuid.New(), "plumbing")

	_, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:    serviceID,
		CustomerName: "Casey",
		Message:      "hello",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateLeadNormalizesPhone(t *testing.T) {
	f := newFixture(t)
	serviceID := f.addService(uuid.New(), "plumbing")

	resp, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:     serviceID,
		CustomerName:  "Casey",
		CustomerPhone: "(212) 555-0123",
		Message:       "hello",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if resp.CustomerPhone == nil || *resp.CustomerPhone != "+12125550123" {
		t.Errorf("phone = %v, want +12125550123", resp.CustomerPhone)
	}
}

func TestCreateLeadStripsMarkup(t *testing.T) {
	f := newFixture(t)
	serviceID := f.addService(uuid.New(), "plumbing")

	resp, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:     serviceID,
		CustomerName:  "<b>Casey</b>",
		CustomerEmail: "casey@example.com",
		Message:       "hello",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if resp.CustomerName != "Casey" {
		t.Errorf("name = %q, want markup stripped", resp.CustomerName)
	}

	// A message that is nothing but markup strips to empty and is rejected.
	_, err = f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:     serviceID,
		CustomerName:  "Casey",
		CustomerEmail: "casey@example.com",
		Message:       "<br><hr>",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("markup-only message should fail validation, got %v", err)
	}
}

func TestCreateLeadUnknownService(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:    uuid.New(),
		CustomerName: "Casey",
		Message:      "hello",
	})
	if err == nil {
		t.Fatal("expected error for unknown service")
	}
}

func TestMarkRespondedPublishesOnce(t *testing.T) {
	f := newFixture(t)
	providerID := uuid.New()
	serviceID := f.addService(providerID, "plumbing")

	resp, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:     serviceID,
		CustomerName:  "Casey",
		CustomerEmail: "casey@example.com",
		Message:       "hello",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	leadID := uuid.MustParse(resp.ID)
	messageID := uuid.New()

	changed, err := f.svc.MarkResponded(context.Background(), leadID, messageID)
	if err != nil {
		t.Fatalf("MarkResponded: %v", err)
	}
	if !changed {
		t.Error("first MarkResponded should report the transition")
	}
	changed, err = f.svc.MarkResponded(context.Background(), leadID, uuid.New())
	if err != nil {
		t.Fatalf("second MarkResponded: %v", err)
	}
	if changed {
		t.Error("second MarkResponded should be a no-op")
	}

	var responded int
	for _, event := range f.bus.published() {
		if _, ok := event.(events.LeadResponded); ok {
			responded++
		}
	}
	if responded != 1 {
		t.Errorf("LeadResponded published %d times, want 1", responded)
	}
}

func TestConvertPublishesForWinnerOnly(t *testing.T) {
	f := newFixture(t)
	providerID := uuid.New()
	serviceID := f.addService(providerID, "plumbing")

	resp, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID:     serviceID,
		CustomerName:  "Casey",
		CustomerEmail: "casey@example.com",
		Message:       "hello",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	leadID := uuid.MustParse(resp.ID)

	first, err := f.svc.Convert(context.Background(), leadID, providerID)
	if err != nil {
		t.Fatalf("first Convert: %v", err)
	}
	if first.Status != string(domain.StatusConverted) || !first.IsBilled {
		t.Errorf("first convert status=%s billed=%v", first.Status, first.IsBilled)
	}

	other := uuid.New()
	second, err := f.svc.Convert(context.Background(), leadID, other)
	if err != nil {
		t.Fatalf("second Convert: %v", err)
	}
	if second.ConvertedBy == nil || *second.ConvertedBy != providerID.String() {
		t.Errorf("second convert should return the original winner, got %v", second.ConvertedBy)
	}

	var converted int
	for _, event := range f.bus.published() {
		if _, ok := event.(events.LeadConverted); ok {
			converted++
		}
	}
	if converted != 1 {
		t.Errorf("LeadConverted published %d times, want 1", converted)
	}
}

func TestExpireDuePromotesOnlyOverdueDirect(t *testing.T) {
	f := newFixture(t)
	providerID := uuid.New()
	serviceID := f.addService(providerID, "plumbing")

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return base }

	overdue, _ := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID: serviceID, CustomerName: "A", CustomerEmail: "a@example.com", Message: "hi",
	})

	f.svc.now = func() time.Time { return base.Add(time.Hour) }
	fresh, _ := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID: serviceID, CustomerName: "B", CustomerEmail: "b@example.com", Message: "hi",
	})

	// Advance to just past the first lead's window.
	f.svc.now = func() time.Time { return base.Add(domain.ExclusivityWindow) }
	count, err := f.svc.ExpireDue(context.Background())
	if err != nil {
		t.Fatalf("ExpireDue: %v", err)
	}
	if count != 1 {
		t.Errorf("expired %d leads, want 1", count)
	}

	got, _ := f.repo.GetByID(context.Background(), uuid.MustParse(overdue.ID))
	if got.Status != domain.StatusOpportunity {
		t.Errorf("overdue lead status = %s, want opportunity", got.Status)
	}
	got, _ = f.repo.GetByID(context.Background(), uuid.MustParse(fresh.ID))
	if got.Status != domain.StatusDirect {
		t.Errorf("fresh lead status = %s, want direct", got.Status)
	}
}

func TestListOpportunitiesScopedToProviderCategories(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	plumbingID := f.addService(owner, "plumbing")
	paintingID := f.addService(owner, "painting")

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return base }

	for _, serviceID := range []uuid.UUID{plumbingID, paintingID} {
		_, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
			ServiceID: serviceID, CustomerName: "C", CustomerEmail: "c@example.com", Message: "hi",
		})
		if err != nil {
			t.Fatalf("CreateLead: %v", err)
		}
	}

	// No explicit sweep: the listing itself applies overdue expiries.
	f.svc.now = func() time.Time { return base.Add(domain.ExclusivityWindow) }

	plumber := uuid.New()
	f.catalog.categories[plumber] = []string{"plumbing"}

	result, err := f.svc.ListOpportunities(context.Background(), plumber, 1, 20)
	if err != nil {
		t.Fatalf("ListOpportunities: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("total = %d, want 1", result.Total)
	}
	if result.Items[0].ServiceCategory != "plumbing" {
		t.Errorf("category = %s, want plumbing", result.Items[0].ServiceCategory)
	}

	// A provider with no listings sees nothing.
	empty, err := f.svc.ListOpportunities(context.Background(), uuid.New(), 1, 20)
	if err != nil {
		t.Fatalf("ListOpportunities (no categories): %v", err)
	}
	if empty.Total != 0 || len(empty.Items) != 0 {
		t.Errorf("provider without listings got %d opportunities", empty.Total)
	}
}

func TestGetByIDHidesOtherProvidersDirectLeads(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	serviceID := f.addService(owner, "plumbing")

	resp, err := f.svc.CreateLead(context.Background(), CreateLeadParams{
		ServiceID: serviceID, CustomerName: "C", CustomerEmail: "c@example.com", Message: "hi",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	leadID := uuid.MustParse(resp.ID)

	if _, err := f.svc.GetByID(context.Background(), owner, leadID); err != nil {
		t.Errorf("owner should see the lead: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), uuid.New(), leadID); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("stranger access = %v, want forbidden", err)
	}

	// Once the window lapses the lead is visible to everyone.
	if _, err := f.repo.ExpireLead(context.Background(), leadID, resp.ExpiresAt.Add(time.Second)); err != nil {
		t.Fatalf("ExpireLead: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), uuid.New(), leadID); err != nil {
		t.Errorf("opportunity lead should be visible: %v", err)
	}
}
