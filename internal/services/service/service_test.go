package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/services/repository"
	"marketplace_backend/internal/services/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

type fakeRepo struct {
	services map[uuid.UUID]repository.Service
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{services: make(map[uuid.UUID]repository.Service)}
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return repository.Service{}, apperr.NotFound("service not found")
	}
	return svc, nil
}

func (f *fakeRepo) List(ctx context.Context, params repository.ListParams) ([]repository.Service, int, error) {
	var items []repository.Service
	for _, svc := range f.services {
		if params.Category != "" && svc.Category != params.Category {
			continue
		}
		items = append(items, svc)
	}
	return items, len(items), nil
}

func (f *fakeRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]repository.Service, error) {
	var items []repository.Service
	for _, svc := range f.services {
		if svc.ProviderID == providerID {
			items = append(items, svc)
		}
	}
	return items, nil
}

func (f *fakeRepo) DistinctCategoriesForProvider(ctx context.Context, providerID uuid.UUID) ([]string, error) {
	seen := make(map[string]bool)
	var categories []string
	for _, svc := range f.services {
		if svc.ProviderID == providerID && !seen[svc.Category] {
			seen[svc.Category] = true
			categories = append(categories, svc.Category)
		}
	}
	return categories, nil
}

func (f *fakeRepo) Create(ctx context.Context, params repository.CreateParams) (repository.Service, error) {
	svc := repository.Service{
		ID:                 uuid.New(),
		ProviderID:         params.ProviderID,
		Title:              params.Title,
		Description:        params.Description,
		Category:           params.Category,
		ProjectType:        params.ProjectType,
		MinimumChargeCents: params.MinimumChargeCents,
		DailyRateCents:     params.DailyRateCents,
		Includes:           params.Includes,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	f.services[svc.ID] = svc
	return svc, nil
}

func (f *fakeRepo) Update(ctx context.Context, params repository.UpdateParams) (repository.Service, error) {
	svc, ok := f.services[params.ID]
	if !ok || svc.ProviderID != params.ProviderID {
		return repository.Service{}, apperr.NotFound("service not found")
	}
	if params.Title != nil {
		svc.Title = *params.Title
	}
	if params.Category != nil {
		svc.Category = *params.Category
	}
	f.services[params.ID] = svc
	return svc, nil
}

func (f *fakeRepo) Delete(ctx context.Context, providerID, id uuid.UUID) error {
	svc, ok := f.services[id]
	if !ok || svc.ProviderID != providerID {
		return apperr.NotFound("service not found")
	}
	delete(f.services, id)
	return nil
}

func (f *fakeRepo) SetImageURL(ctx context.Context, providerID, id uuid.UUID, imageURL string) error {
	svc, ok := f.services[id]
	if !ok || svc.ProviderID != providerID {
		return apperr.NotFound("service not found")
	}
	svc.ImageURL = &imageURL
	f.services[id] = svc
	return nil
}

type fakeImages struct {
	uploads []string
}

func (f *fakeImages) UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	key := folder + "/" + fileName
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeImages) PublicURL(bucket, fileKey string) string {
	return fmt.Sprintf("http://storage.local/%s/%s", bucket, fileKey)
}

func (f *fakeImages) ValidateContentType(contentType string) error {
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

func (f *fakeImages) ValidateFileSize(sizeBytes int64) error {
	if sizeBytes > 1024*1024 {
		return fmt.Errorf("too large")
	}
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeImages) {
	repo := newFakeRepo()
	images := &fakeImages{}
	svc := New(repo, images, "service-images", logger.New("test"))
	return svc, repo, images
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateServiceRequest{
		Title:              "Fixing things",
		Description:        "I fix things",
		Category:           "nonsense",
		ProjectType:        "hourly",
		MinimumChargeCents: 5000,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateRequiresDailyRateForDailyProjects(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateServiceRequest{
		Title:              "Day labor",
		Description:        "Full day help",
		Category:           "moving",
		ProjectType:        "daily",
		MinimumChargeCents: 5000,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	rate := int64(20000)
	if _, err := svc.Create(context.Background(), uuid.New(), transport.CreateServiceRequest{
		Title:              "Day labor",
		Description:        "Full day help",
		Category:           "moving",
		ProjectType:        "daily",
		MinimumChargeCents: 5000,
		DailyRateCents:     &rate,
	}); err != nil {
		t.Fatalf("Create with daily rate: %v", err)
	}
}

func TestCreateStripsHTML(t *testing.T) {
	svc, _, _ := newTestService()

	result, err := svc.Create(context.Background(), uuid.New(), transport.CreateServiceRequest{
		Title:              "Cleaning <script>alert(1)</script>",
		Description:        "<b>Deep</b> cleaning",
		Category:           "home-cleaning",
		ProjectType:        "hourly",
		MinimumChargeCents: 5000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if strings.Contains(result.Title, "<") || strings.Contains(result.Description, "<") {
		t.Errorf("HTML not stripped: title=%q description=%q", result.Title, result.Description)
	}
}

func TestUpdateScopedToOwner(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, transport.CreateServiceRequest{
		Title:              "Painting",
		Description:        "Walls and ceilings",
		Category:           "painting",
		ProjectType:        "project",
		MinimumChargeCents: 10000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := uuid.MustParse(created.ID)

	title := "Exterior painting"
	if _, err := svc.Update(context.Background(), uuid.New(), id, transport.UpdateServiceRequest{Title: &title}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("foreign update err = %v, want not found", err)
	}

	if _, err := svc.Update(context.Background(), owner, id, transport.UpdateServiceRequest{Title: &title}); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if repo.services[id].Title != title {
		t.Errorf("title = %q, want %q", repo.services[id].Title, title)
	}
}

func TestUploadImageChecksOwnershipAndType(t *testing.T) {
	svc, repo, images := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, transport.CreateServiceRequest{
		Title:              "Photography",
		Description:        "Portraits",
		Category:           "photography",
		ProjectType:        "project",
		MinimumChargeCents: 15000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := uuid.MustParse(created.ID)
	data := bytes.NewReader([]byte("fake-image"))

	if _, err := svc.UploadImage(context.Background(), uuid.New(), id, "cover.jpg", "image/jpeg", data, 10); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("foreign upload err = %v, want forbidden", err)
	}

	if _, err := svc.UploadImage(context.Background(), owner, id, "cover.pdf", "application/pdf", data, 10); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("bad type err = %v, want validation", err)
	}

	url, err := svc.UploadImage(context.Background(), owner, id, "cover.jpg", "image/jpeg", data, 10)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if len(images.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(images.uploads))
	}
	if got := repo.services[id].ImageURL; got == nil || *got != url {
		t.Errorf("stored image url = %v, want %q", got, url)
	}
}

func TestProviderCategories(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	for _, cat := range []string{"plumbing", "plumbing", "electrical"} {
		if _, err := svc.Create(context.Background(), owner, transport.CreateServiceRequest{
			Title:              "Work",
			Description:        "Good work",
			Category:           cat,
			ProjectType:        "hourly",
			MinimumChargeCents: 5000,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	categories, err := svc.ProviderCategories(context.Background(), owner)
	if err != nil {
		t.Fatalf("ProviderCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Errorf("categories = %v, want 2 distinct", categories)
	}
}
