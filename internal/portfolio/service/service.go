package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"

	"marketplace_backend/internal/portfolio/repository"
	"marketplace_backend/internal/portfolio/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

// ImageStore is the slice of object storage the portfolio module uses.
type ImageStore interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	DeleteObject(ctx context.Context, bucket, fileKey string) error
	PublicURL(bucket, fileKey string) string
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

// Service provides business logic for provider portfolios.
type Service struct {
	repo   repository.Repository
	images ImageStore
	bucket string
	log    *logger.Logger
}

// New creates a new portfolio service.
func New(repo repository.Repository, images ImageStore, bucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, images: images, bucket: bucket, log: log}
}

// Upload stores a portfolio photo and its metadata. The capture timestamp is
// read from EXIF when the photo carries one. If the database insert fails
// after the upload, the stored object is removed again.
func (s *Service) Upload(ctx context.Context, providerID uuid.UUID, req transport.UploadItemRequest, fileName, contentType string, reader io.Reader, size int64) (transport.ItemResponse, error) {
	if s.images == nil {
		return transport.ItemResponse{}, apperr.Internal("object storage is not configured")
	}
	if err := s.images.ValidateContentType(contentType); err != nil {
		return transport.ItemResponse{}, apperr.Validation(err.Error())
	}
	if err := s.images.ValidateFileSize(size); err != nil {
		return transport.ItemResponse{}, apperr.Validation(err.Error())
	}

	title := sanitize.Text(req.Title)
	if title == "" {
		return transport.ItemResponse{}, apperr.Validation("title must not be empty")
	}

	// Buffer the image so it can be scanned for EXIF data and uploaded.
	data, err := io.ReadAll(io.LimitReader(reader, size))
	if err != nil {
		return transport.ItemResponse{}, apperr.BadRequest("could not read image")
	}

	takenAt := extractTakenAt(data)

	folder := "portfolio/" + providerID.String()
	fileKey, err := s.images.UploadFile(ctx, s.bucket, folder, fileName, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return transport.ItemResponse{}, apperr.Internal("could not store image")
	}

	item, err := s.repo.Create(ctx, repository.CreateParams{
		ProviderID:  providerID,
		Title:       title,
		Description: sanitize.TextPtr(req.Description),
		ImageKey:    fileKey,
		ImageURL:    s.images.PublicURL(s.bucket, fileKey),
		TakenAt:     takenAt,
	})
	if err != nil {
		// Don't leave an orphaned object behind.
		if cleanupErr := s.images.DeleteObject(ctx, s.bucket, fileKey); cleanupErr != nil {
			s.log.Error("portfolio upload rollback failed", "file_key", fileKey, "error", cleanupErr)
		}
		return transport.ItemResponse{}, apperr.Persistence("create portfolio item", err)
	}

	s.log.Info("portfolio item added", "item_id", item.ID, "provider_id", providerID, "taken_at", takenAt)
	return toResponse(item), nil
}

// List returns a provider's portfolio, newest first.
func (s *Service) List(ctx context.Context, providerID uuid.UUID) ([]transport.ItemResponse, error) {
	items, err := s.repo.ListForProvider(ctx, providerID)
	if err != nil {
		return nil, apperr.Persistence("list portfolio items", err)
	}
	responses := make([]transport.ItemResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}
	return responses, nil
}

// Delete removes a portfolio item and its stored object.
func (s *Service) Delete(ctx context.Context, providerID, itemID uuid.UUID) error {
	item, err := s.repo.Delete(ctx, providerID, itemID)
	if err != nil {
		return err
	}

	if s.images != nil {
		if err := s.images.DeleteObject(ctx, s.bucket, item.ImageKey); err != nil {
			// The row is gone; the orphaned object only wastes space.
			s.log.Error("delete portfolio object failed", "file_key", item.ImageKey, "error", err)
		}
	}
	return nil
}

// extractTakenAt pulls the capture time out of EXIF data. Photos without
// EXIF, or with an unparsable timestamp, simply have no capture time.
func extractTakenAt(data []byte) *time.Time {
	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	takenAt, err := meta.DateTime()
	if err != nil {
		return nil
	}
	return &takenAt
}

func toResponse(item repository.Item) transport.ItemResponse {
	return transport.ItemResponse{
		ID:          item.ID.String(),
		ProviderID:  item.ProviderID.String(),
		Title:       item.Title,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		TakenAt:     item.TakenAt,
		CreatedAt:   item.CreatedAt,
	}
}
