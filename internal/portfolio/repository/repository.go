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

const itemColumns = `id, provider_id, title, description, image_key, image_url, taken_at, created_at`

const itemNotFoundMessage = "portfolio item not found"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new portfolio repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create adds a portfolio item.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `
		INSERT INTO portfolio_items (provider_id, title, description, image_key, image_url, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+itemColumns,
		params.ProviderID, params.Title, params.Description, params.ImageKey, params.ImageURL, params.TakenAt,
	))
	if err != nil {
		return Item{}, fmt.Errorf("insert portfolio item: %w", err)
	}
	return item, nil
}

// GetByID retrieves a portfolio item.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM portfolio_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("get portfolio item: %w", err)
	}
	return item, nil
}

// ListForProvider lists a provider's portfolio, newest first.
func (r *Repo) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM portfolio_items
		WHERE provider_id = $1
		ORDER BY created_at DESC, id DESC
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("list portfolio items: %w", err)
	}
	defer rows.Close()

	var results []Item
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID, &item.ProviderID, &item.Title, &item.Description,
			&item.ImageKey, &item.ImageURL, &item.TakenAt, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio item: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolio items: %w", err)
	}
	return results, nil
}

// Delete removes an item the provider owns and returns it.
func (r *Repo) Delete(ctx context.Context, providerID, id uuid.UUID) (Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `
		DELETE FROM portfolio_items
		WHERE id = $1 AND provider_id = $2
		RETURNING `+itemColumns,
		id, providerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("delete portfolio item: %w", err)
	}
	return item, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(
		&item.ID, &item.ProviderID, &item.Title, &item.Description,
		&item.ImageKey, &item.ImageURL, &item.TakenAt, &item.CreatedAt,
	)
	return item, err
}
