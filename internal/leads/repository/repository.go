package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/internal/leads/domain"
	"marketplace_backend/platform/apperr"
)

const leadNotFoundMessage = "lead not found"

const leadColumns = `id, service_id, provider_id, customer_id, COALESCE(customer_name, ''), customer_email,
	customer_phone, is_anonymous, status, expires_at, converted_at, converted_by, is_billed,
	created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool  *pgxpool.Pool
	begin func(ctx context.Context) (pgx.Tx, error)
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, begin: pool.Begin}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateWithMessage inserts the lead and its opening message in one
// transaction. Either both rows exist afterwards or neither does.
func (r *Repo) CreateWithMessage(ctx context.Context, params CreateParams) (Lead, uuid.UUID, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return Lead{}, uuid.UUID{}, fmt.Errorf("begin create lead: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var lead Lead
	lead, err = scanLead(tx.QueryRow(ctx, `
		INSERT INTO leads (service_id, provider_id, customer_id, customer_name,
			customer_email, customer_phone, is_anonymous, status, expires_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
		RETURNING `+leadColumns,
		params.ServiceID, params.ProviderID, params.CustomerID, params.CustomerName,
		params.CustomerEmail, params.CustomerPhone, params.IsAnonymous,
		domain.StatusDirect, params.ExpiresAt,
	))
	if err != nil {
		return Lead{}, uuid.UUID{}, fmt.Errorf("insert lead: %w", err)
	}

	// The opening message goes from the customer to the provider. Anonymous
	// inquiries have no sender account, so sender_id stays NULL.
	var messageID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (sender_id, recipient_id, lead_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, params.CustomerID, params.ProviderID, lead.ID, params.MessageContent).Scan(&messageID)
	if err != nil {
		return Lead{}, uuid.UUID{}, fmt.Errorf("insert lead message: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return Lead{}, uuid.UUID{}, fmt.Errorf("commit create lead: %w", err)
	}

	return lead, messageID, nil
}

// GetByID retrieves a lead by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// MarkResponded moves a direct or opportunity lead to responded. The status
// guard in the WHERE clause makes repeated calls harmless.
func (r *Repo) MarkResponded(ctx context.Context, leadID uuid.UUID) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1 AND status IN ($3, $4)
	`, leadID, domain.StatusResponded, domain.StatusDirect, domain.StatusOpportunity)
	if err != nil {
		return false, fmt.Errorf("mark lead responded: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ExpireLead promotes one overdue direct lead to opportunity.
func (r *Repo) ExpireLead(ctx context.Context, leadID uuid.UUID, now time.Time) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3 AND expires_at <= $4
	`, leadID, domain.StatusOpportunity, domain.StatusDirect, now)
	if err != nil {
		return false, fmt.Errorf("expire lead: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ExpireDue promotes every overdue direct lead in a single statement.
func (r *Repo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $1, updated_at = now()
		WHERE status = $2 AND expires_at <= $3
	`, domain.StatusOpportunity, domain.StatusDirect, now)
	if err != nil {
		return 0, fmt.Errorf("expire due leads: %w", err)
	}
	return result.RowsAffected(), nil
}

// Convert marks the lead converted and billed. The compare-and-swap on status
// guarantees exactly one winner under concurrent conversion attempts.
func (r *Repo) Convert(ctx context.Context, leadID, convertedBy uuid.UUID) (Lead, bool, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = $2, converted_at = now(), converted_by = $3, is_billed = true, updated_at = now()
		WHERE id = $1 AND status <> $2
		RETURNING `+leadColumns,
		leadID, domain.StatusConverted, convertedBy,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the lead doesn't exist or it was already converted.
			existing, getErr := r.GetByID(ctx, leadID)
			if getErr != nil {
				return Lead{}, false, getErr
			}
			return existing, false, nil
		}
		return Lead{}, false, fmt.Errorf("convert lead: %w", err)
	}
	return lead, true, nil
}

// ListDirectForProvider lists the provider's own direct leads, newest first.
func (r *Repo) ListDirectForProvider(ctx context.Context, providerID uuid.UUID, params ListParams) ([]LeadWithService, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leads WHERE provider_id = $1 AND status = $2
	`, providerID, domain.StatusDirect).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count direct leads: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.service_id, l.provider_id, l.customer_id, COALESCE(l.customer_name, ''),
			l.customer_email, l.customer_phone, l.is_anonymous, l.status, l.expires_at,
			l.converted_at, l.converted_by, l.is_billed, l.created_at, l.updated_at,
			s.title, s.category
		FROM leads l
		JOIN services s ON s.id = l.service_id
		WHERE l.provider_id = $1 AND l.status = $2
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $3 OFFSET $4
	`, providerID, domain.StatusDirect, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list direct leads: %w", err)
	}
	defer rows.Close()

	items, err := scanLeadsWithService(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListOpportunities lists opportunity leads whose service category is one of
// the given categories, newest first.
func (r *Repo) ListOpportunities(ctx context.Context, categories []string, params ListParams) ([]LeadWithService, int, error) {
	if len(categories) == 0 {
		return []LeadWithService{}, 0, nil
	}

	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM leads l
		JOIN services s ON s.id = l.service_id
		WHERE l.status = $1 AND s.category = ANY($2)
	`, domain.StatusOpportunity, categories).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count opportunity leads: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.service_id, l.provider_id, l.customer_id, COALESCE(l.customer_name, ''),
			l.customer_email, l.customer_phone, l.is_anonymous, l.status, l.expires_at,
			l.converted_at, l.converted_by, l.is_billed, l.created_at, l.updated_at,
			s.title, s.category
		FROM leads l
		JOIN services s ON s.id = l.service_id
		WHERE l.status = $1 AND s.category = ANY($2)
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $3 OFFSET $4
	`, domain.StatusOpportunity, categories, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list opportunity leads: %w", err)
	}
	defer rows.Close()

	items, err := scanLeadsWithService(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.ServiceID, &lead.ProviderID, &lead.CustomerID, &lead.CustomerName,
		&lead.CustomerEmail, &lead.CustomerPhone, &lead.IsAnonymous, &lead.Status,
		&lead.ExpiresAt, &lead.ConvertedAt, &lead.ConvertedBy, &lead.IsBilled,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func scanLeadsWithService(rows pgx.Rows) ([]LeadWithService, error) {
	var results []LeadWithService
	for rows.Next() {
		var item LeadWithService
		err := rows.Scan(
			&item.ID, &item.ServiceID, &item.ProviderID, &item.CustomerID, &item.CustomerName,
			&item.CustomerEmail, &item.CustomerPhone, &item.IsAnonymous, &item.Status,
			&item.ExpiresAt, &item.ConvertedAt, &item.ConvertedBy, &item.IsBilled,
			&item.CreatedAt, &item.UpdatedAt,
			&item.ServiceTitle, &item.ServiceCategory,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return results, nil
}
