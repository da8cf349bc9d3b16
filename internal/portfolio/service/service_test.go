package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/portfolio/repository"
	"marketplace_backend/internal/portfolio/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

type fakeRepo struct {
	mu      sync.Mutex
	items   map[uuid.UUID]repository.Item
	failing bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[uuid.UUID]repository.Item)}
}

func (f *fakeRepo) Create(ctx context.Context, params repository.CreateParams) (repository.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return repository.Item{}, errors.New("insert failed")
	}
	item := repository.Item{
		ID:          uuid.New(),
		ProviderID:  params.ProviderID,
		Title:       params.Title,
		Description: params.Description,
		ImageKey:    params.ImageKey,
		ImageURL:    params.ImageURL,
		TakenAt:     params.TakenAt,
		CreatedAt:   time.Now(),
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return repository.Item{}, apperr.NotFound("portfolio item not found")
	}
	return item, nil
}

func (f *fakeRepo) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]repository.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.Item
	for _, item := range f.items {
		if item.ProviderID == providerID {
			results = append(results, item)
		}
	}
	return results, nil
}

func (f *fakeRepo) Delete(ctx context.Context, providerID, id uuid.UUID) (repository.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok || item.ProviderID != providerID {
		return repository.Item{}, apperr.NotFound("portfolio item not found")
	}
	delete(f.items, id)
	return item, nil
}

type fakeImages struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
}

func newFakeImages() *fakeImages {
	return &fakeImages{uploaded: make(map[string][]byte)}
}

func (f *fakeImages) UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := folder + "/" + fileName
	f.uploaded[key] = data
	return key, nil
}

func (f *fakeImages) DeleteObject(ctx context.Context, bucket, fileKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploaded, fileKey)
	f.deleted = append(f.deleted, fileKey)
	return nil
}

func (f *fakeImages) PublicURL(bucket, fileKey string) string {
	return "https://cdn.example.com/" + bucket + "/" + fileKey
}

func (f *fakeImages) ValidateContentType(contentType string) error {
	if !strings.HasPrefix(contentType, "image/") {
		return errors.New("unsupported content type")
	}
	return nil
}

func (f *fakeImages) ValidateFileSize(sizeBytes int64) error {
	if sizeBytes > 1<<20 {
		return errors.New("file too large")
	}
	return nil
}

func TestUploadStoresItemWithoutExif(t *testing.T) {
	repo := newFakeRepo()
	images := newFakeImages()
	svc := New(repo, images, "portfolio", logger.New("test"))

	providerID := uuid.New()
	payload := []byte("not a real jpeg")

	item, err := svc.Upload(context.Background(), providerID, transport.UploadItemRequest{
		Title: "Kitchen remodel",
	}, "kitchen.jpg", "image/jpeg", bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if item.TakenAt != nil {
		t.Errorf("takenAt = %v, want nil for image without EXIF", item.TakenAt)
	}
	if !strings.HasPrefix(item.ImageURL, "https://cdn.example.com/portfolio/portfolio/"+providerID.String()) {
		t.Errorf("imageURL = %s", item.ImageURL)
	}
	if len(images.uploaded) != 1 {
		t.Errorf("uploaded objects = %d, want 1", len(images.uploaded))
	}
}

func TestUploadValidation(t *testing.T) {
	repo := newFakeRepo()
	images := newFakeImages()
	svc := New(repo, images, "portfolio", logger.New("test"))
	providerID := uuid.New()
	payload := []byte("data")

	_, err := svc.Upload(context.Background(), providerID, transport.UploadItemRequest{Title: "x"},
		"doc.pdf", "application/pdf", bytes.NewReader(payload), int64(len(payload)))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("bad content type err = %v, want validation", err)
	}

	_, err = svc.Upload(context.Background(), providerID, transport.UploadItemRequest{Title: "x"},
		"big.jpg", "image/jpeg", bytes.NewReader(payload), 2<<20)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("oversize err = %v, want validation", err)
	}

	_, err = svc.Upload(context.Background(), providerID, transport.UploadItemRequest{Title: "<i></i>"},
		"a.jpg", "image/jpeg", bytes.NewReader(payload), int64(len(payload)))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("empty title err = %v, want validation", err)
	}
}

func TestUploadRollsBackObjectOnInsertFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failing = true
	images := newFakeImages()
	svc := New(repo, images, "portfolio", logger.New("test"))

	payload := []byte("data")
	_, err := svc.Upload(context.Background(), uuid.New(), transport.UploadItemRequest{Title: "x"},
		"a.jpg", "image/jpeg", bytes.NewReader(payload), int64(len(payload)))
	if err == nil {
		t.Fatal("expected error from failing insert")
	}
	if len(images.uploaded) != 0 {
		t.Errorf("uploaded objects = %d, want 0 after rollback", len(images.uploaded))
	}
	if len(images.deleted) != 1 {
		t.Errorf("deleted objects = %d, want 1", len(images.deleted))
	}
}

func TestDeleteRemovesObject(t *testing.T) {
	repo := newFakeRepo()
	images := newFakeImages()
	svc := New(repo, images, "portfolio", logger.New("test"))

	providerID := uuid.New()
	payload := []byte("data")
	item, err := svc.Upload(context.Background(), providerID, transport.UploadItemRequest{Title: "x"},
		"a.jpg", "image/jpeg", bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	itemID := uuid.MustParse(item.ID)

	if err := svc.Delete(context.Background(), uuid.New(), itemID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("stranger delete err = %v, want not found", err)
	}
	if err := svc.Delete(context.Background(), providerID, itemID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(images.uploaded) != 0 {
		t.Errorf("uploaded objects = %d, want 0 after delete", len(images.uploaded))
	}

	items, err := svc.List(context.Background(), providerID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}
