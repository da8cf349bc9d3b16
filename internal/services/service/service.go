package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"marketplace_backend/internal/services/category"
	"marketplace_backend/internal/services/repository"
	"marketplace_backend/internal/services/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

// ImageStore is the slice of object storage the services module uses for
// cover images.
type ImageStore interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	PublicURL(bucket, fileKey string) string
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

// Service provides business logic for provider service listings.
type Service struct {
	repo   repository.Repository
	images ImageStore
	bucket string
	log    *logger.Logger
}

// New creates a new services service. images may be nil when object storage
// is not configured; image uploads then fail with a config error.
func New(repo repository.Repository, images ImageStore, bucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, images: images, bucket: bucket, log: log}
}

// GetByID retrieves a single service listing.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return toResponse(svc), nil
}

// List retrieves service listings with filters and pagination.
func (s *Service) List(ctx context.Context, req transport.ListServicesRequest) (transport.ServiceListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	if req.Category != "" && !category.IsValid(req.Category) {
		return transport.ServiceListResponse{}, apperr.Validation("unknown category")
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Category: req.Category,
		Location: req.Location,
		Search:   req.Search,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return transport.ServiceListResponse{}, err
	}

	return toListResponse(items, total, page, pageSize), nil
}

// ListMine retrieves all listings owned by the provider.
func (s *Service) ListMine(ctx context.Context, providerID uuid.UUID) ([]transport.ServiceResponse, error) {
	items, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.ServiceResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}
	return responses, nil
}

// Categories returns the fixed category catalog.
func (s *Service) Categories() []category.Category {
	return category.All()
}

// ProviderCategories returns the categories a provider currently lists in.
func (s *Service) ProviderCategories(ctx context.Context, providerID uuid.UUID) ([]string, error) {
	return s.repo.DistinctCategoriesForProvider(ctx, providerID)
}

// Create creates a new listing for the provider.
func (s *Service) Create(ctx context.Context, providerID uuid.UUID, req transport.CreateServiceRequest) (transport.ServiceResponse, error) {
	if !category.IsValid(req.Category) {
		return transport.ServiceResponse{}, apperr.Validation("unknown category")
	}
	if req.ProjectType == "daily" && req.DailyRateCents == nil {
		return transport.ServiceResponse{}, apperr.Validation("daily services require a daily rate")
	}

	svc, err := s.repo.Create(ctx, repository.CreateParams{
		ProviderID:         providerID,
		Title:              sanitize.Text(req.Title),
		Description:        sanitize.Text(req.Description),
		Category:           req.Category,
		ProjectType:        req.ProjectType,
		MinimumChargeCents: req.MinimumChargeCents,
		DailyRateCents:     req.DailyRateCents,
		Duration:           sanitize.TextPtr(req.Duration),
		Location:           sanitize.TextPtr(req.Location),
		Availability:       sanitize.TextPtr(req.Availability),
		Includes:           sanitizeSlice(req.Includes),
		AdditionalInfo:     sanitize.TextPtr(req.AdditionalInfo),
	})
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("service created", "id", svc.ID, "provider_id", providerID, "category", svc.Category)
	return toResponse(svc), nil
}

// Update updates a listing the provider owns.
func (s *Service) Update(ctx context.Context, providerID, id uuid.UUID, req transport.UpdateServiceRequest) (transport.ServiceResponse, error) {
	if req.Category != nil && !category.IsValid(*req.Category) {
		return transport.ServiceResponse{}, apperr.Validation("unknown category")
	}

	var title, description *string
	if req.Title != nil {
		clean := sanitize.Text(*req.Title)
		title = &clean
	}
	if req.Description != nil {
		clean := sanitize.Text(*req.Description)
		description = &clean
	}

	svc, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:                 id,
		ProviderID:         providerID,
		Title:              title,
		Description:        description,
		Category:           req.Category,
		ProjectType:        req.ProjectType,
		MinimumChargeCents: req.MinimumChargeCents,
		DailyRateCents:     req.DailyRateCents,
		Duration:           sanitize.TextPtr(req.Duration),
		Location:           sanitize.TextPtr(req.Location),
		Availability:       sanitize.TextPtr(req.Availability),
		Includes:           sanitizeSlice(req.Includes),
		AdditionalInfo:     sanitize.TextPtr(req.AdditionalInfo),
	})
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("service updated", "id", svc.ID, "provider_id", providerID)
	return toResponse(svc), nil
}

// Delete removes a listing the provider owns.
func (s *Service) Delete(ctx context.Context, providerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, providerID, id); err != nil {
		return err
	}
	s.log.Info("service deleted", "id", id, "provider_id", providerID)
	return nil
}

// UploadImage stores the cover image and records its public URL.
func (s *Service) UploadImage(ctx context.Context, providerID, id uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if s.images == nil {
		return "", apperr.Internal("object storage is not configured")
	}

	// Ownership check before touching storage.
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if svc.ProviderID != providerID {
		return "", apperr.Forbidden("not your service")
	}

	if err := s.images.ValidateContentType(contentType); err != nil {
		return "", apperr.Validation(err.Error())
	}
	if err := s.images.ValidateFileSize(size); err != nil {
		return "", apperr.Validation(err.Error())
	}

	folder := fmt.Sprintf("services/%s", id)
	fileKey, err := s.images.UploadFile(ctx, s.bucket, folder, fileName, contentType, reader, size)
	if err != nil {
		return "", apperr.Persistence("upload service image", err)
	}

	imageURL := s.images.PublicURL(s.bucket, fileKey)
	if err := s.repo.SetImageURL(ctx, providerID, id, imageURL); err != nil {
		return "", err
	}

	s.log.Info("service image uploaded", "id", id, "file_key", fileKey)
	return imageURL, nil
}

func toResponse(svc repository.Service) transport.ServiceResponse {
	includes := svc.Includes
	if includes == nil {
		includes = []string{}
	}
	return transport.ServiceResponse{
		ID:                 svc.ID.String(),
		ProviderID:         svc.ProviderID.String(),
		Title:              svc.Title,
		Description:        svc.Description,
		Category:           svc.Category,
		ProjectType:        svc.ProjectType,
		MinimumChargeCents: svc.MinimumChargeCents,
		DailyRateCents:     svc.DailyRateCents,
		Duration:           svc.Duration,
		Location:           svc.Location,
		Availability:       svc.Availability,
		Includes:           includes,
		AdditionalInfo:     svc.AdditionalInfo,
		ImageURL:           svc.ImageURL,
		CreatedAt:          svc.CreatedAt,
		UpdatedAt:          svc.UpdatedAt,
	}
}

func toListResponse(items []repository.Service, total, page, pageSize int) transport.ServiceListResponse {
	responses := make([]transport.ServiceResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return transport.ServiceListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func sanitizeSlice(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if clean := sanitize.Text(v); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
