package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/platform/apperr"
)

const serviceNotFoundMessage = "service not found"

const serviceColumns = `id, provider_id, title, description, category, project_type,
	minimum_charge_cents, daily_rate_cents, duration, location, availability,
	includes, additional_info, image_url, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new services repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a service by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	svc, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Service{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return Service{}, fmt.Errorf("get service by id: %w", err)
	}
	return svc, nil
}

// List retrieves services with optional filters and pagination.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Service, int, error) {
	var categoryParam any
	if params.Category != "" {
		categoryParam = params.Category
	}
	var locationParam any
	if params.Location != "" {
		locationParam = "%" + params.Location + "%"
	}
	var searchParam any
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	countQuery := `
		SELECT COUNT(*)
		FROM services
		WHERE ($1::text IS NULL OR category = $1)
			AND ($2::text IS NULL OR location ILIKE $2)
			AND ($3::text IS NULL OR title ILIKE $3 OR description ILIKE $3)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, categoryParam, locationParam, searchParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count services: %w", err)
	}

	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE ($1::text IS NULL OR category = $1)
			AND ($2::text IS NULL OR location ILIKE $2)
			AND ($3::text IS NULL OR title ILIKE $3 OR description ILIKE $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query, categoryParam, locationParam, searchParam, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	items, err := scanServices(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByProvider retrieves all services owned by a provider.
func (r *Repo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE provider_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list provider services: %w", err)
	}
	defer rows.Close()

	return scanServices(rows)
}

// DistinctCategoriesForProvider returns the categories the provider currently
// lists services in. Opportunity listings are scoped to these.
func (r *Repo) DistinctCategoriesForProvider(ctx context.Context, providerID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM services
		WHERE provider_id = $1
		ORDER BY category
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("provider categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate categories: %w", rows.Err())
	}
	return categories, nil
}

// Create inserts a new service.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Service, error) {
	query := `
		INSERT INTO services (provider_id, title, description, category, project_type,
			minimum_charge_cents, daily_rate_cents, duration, location, availability,
			includes, additional_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + serviceColumns

	svc, err := scanService(r.pool.QueryRow(ctx, query,
		params.ProviderID, params.Title, params.Description, params.Category, params.ProjectType,
		params.MinimumChargeCents, params.DailyRateCents, params.Duration, params.Location,
		params.Availability, params.Includes, params.AdditionalInfo,
	))
	if err != nil {
		return Service{}, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

// Update updates an existing service. The provider scope is part of the WHERE
// clause so owners can only touch their own listings.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Service, error) {
	query := `
		UPDATE services SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			category = COALESCE($5, category),
			project_type = COALESCE($6, project_type),
			minimum_charge_cents = COALESCE($7, minimum_charge_cents),
			daily_rate_cents = COALESCE($8, daily_rate_cents),
			duration = COALESCE($9, duration),
			location = COALESCE($10, location),
			availability = COALESCE($11, availability),
			includes = COALESCE($12, includes),
			additional_info = COALESCE($13, additional_info),
			updated_at = now()
		WHERE id = $1 AND provider_id = $2
		RETURNING ` + serviceColumns

	svc, err := scanService(r.pool.QueryRow(ctx, query,
		params.ID, params.ProviderID, params.Title, params.Description, params.Category,
		params.ProjectType, params.MinimumChargeCents, params.DailyRateCents, params.Duration,
		params.Location, params.Availability, params.Includes, params.AdditionalInfo,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Service{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return Service{}, fmt.Errorf("update service: %w", err)
	}
	return svc, nil
}

// Delete removes a service owned by the provider.
func (r *Repo) Delete(ctx context.Context, providerID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1 AND provider_id = $2`, id, providerID)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// SetImageURL stores the public URL of the uploaded cover image.
func (r *Repo) SetImageURL(ctx context.Context, providerID, id uuid.UUID, imageURL string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE services SET image_url = $3, updated_at = now()
		WHERE id = $1 AND provider_id = $2
	`, id, providerID, imageURL)
	if err != nil {
		return fmt.Errorf("set service image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

func scanService(row pgx.Row) (Service, error) {
	var svc Service
	err := row.Scan(
		&svc.ID, &svc.ProviderID, &svc.Title, &svc.Description, &svc.Category, &svc.ProjectType,
		&svc.MinimumChargeCents, &svc.DailyRateCents, &svc.Duration, &svc.Location,
		&svc.Availability, &svc.Includes, &svc.AdditionalInfo, &svc.ImageURL,
		&svc.CreatedAt, &svc.UpdatedAt,
	)
	return svc, err
}

func scanServices(rows pgx.Rows) ([]Service, error) {
	var results []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		results = append(results, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return results, nil
}
