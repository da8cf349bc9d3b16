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

const bookingColumns = `id, service_id, customer_id, provider_id, scheduled_for, amount_cents,
	status, payment_intent_id, paid_at, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new bookings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a pending booking.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Booking, error) {
	booking, err := scanBooking(r.pool.QueryRow(ctx, `
		INSERT INTO bookings (service_id, customer_id, provider_id, scheduled_for, amount_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+bookingColumns,
		params.ServiceID, params.CustomerID, params.ProviderID, params.ScheduledFor, params.AmountCents,
	))
	if err != nil {
		return Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	return booking, nil
}

// GetByID retrieves a booking.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Booking, error) {
	booking, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, apperr.NotFound("booking not found")
		}
		return Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

// ListForCustomer lists the customer's bookings, newest first.
func (r *Repo) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]BookingWithService, error) {
	return r.list(ctx, "b.customer_id", customerID)
}

// ListForProvider lists the provider's bookings, newest first.
func (r *Repo) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]BookingWithService, error) {
	return r.list(ctx, "b.provider_id", providerID)
}

func (r *Repo) list(ctx context.Context, column string, userID uuid.UUID) ([]BookingWithService, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.service_id, b.customer_id, b.provider_id, b.scheduled_for,
			b.amount_cents, b.status, b.payment_intent_id, b.paid_at, b.created_at, b.updated_at,
			s.title
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE `+column+` = $1
		ORDER BY b.created_at DESC, b.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var results []BookingWithService
	for rows.Next() {
		var item BookingWithService
		err := rows.Scan(
			&item.ID, &item.ServiceID, &item.CustomerID, &item.ProviderID, &item.ScheduledFor,
			&item.AmountCents, &item.Status, &item.PaymentIntentID, &item.PaidAt,
			&item.CreatedAt, &item.UpdatedAt, &item.ServiceTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return results, nil
}

// SetPaymentIntent attaches the intent reference to a pending booking.
func (r *Repo) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE bookings SET payment_intent_id = $2, updated_at = now()
		WHERE id = $1 AND status = $3
	`, id, intentID, StatusPending)
	if err != nil {
		return fmt.Errorf("set payment intent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("booking is not pending")
	}
	return nil
}

// MarkPaid moves a pending booking with a matching intent to paid. The
// status guard makes a double confirm a no-op for the second caller.
func (r *Repo) MarkPaid(ctx context.Context, id uuid.UUID, intentID string) (Booking, bool, error) {
	booking, err := scanBooking(r.pool.QueryRow(ctx, `
		UPDATE bookings SET status = $3, paid_at = now(), updated_at = now()
		WHERE id = $1 AND payment_intent_id = $2 AND status = $4
		RETURNING `+bookingColumns,
		id, intentID, StatusPaid, StatusPending,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, getErr := r.GetByID(ctx, id)
			if getErr != nil {
				return Booking{}, false, getErr
			}
			return existing, false, nil
		}
		return Booking{}, false, fmt.Errorf("mark booking paid: %w", err)
	}
	return booking, true, nil
}

// Cancel moves a pending booking to cancelled, scoped to its customer.
func (r *Repo) Cancel(ctx context.Context, id, customerID uuid.UUID) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE bookings SET status = $3, updated_at = now()
		WHERE id = $1 AND customer_id = $2 AND status = $4
	`, id, customerID, StatusCancelled, StatusPending)
	if err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// AddPaymentMethod stores a card reference. Marking it default clears the
// previous default in the same transaction.
func (r *Repo) AddPaymentMethod(ctx context.Context, params PaymentMethodParams) (PaymentMethod, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return PaymentMethod{}, fmt.Errorf("begin add payment method: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if params.IsDefault {
		if _, err = tx.Exec(ctx, `UPDATE payment_methods SET is_default = false WHERE user_id = $1`, params.UserID); err != nil {
			return PaymentMethod{}, fmt.Errorf("clear default payment method: %w", err)
		}
	}

	var method PaymentMethod
	err = tx.QueryRow(ctx, `
		INSERT INTO payment_methods (user_id, brand, last4, exp_month, exp_year, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, brand, last4, exp_month, exp_year, is_default, created_at
	`, params.UserID, params.Brand, params.Last4, params.ExpMonth, params.ExpYear, params.IsDefault).Scan(
		&method.ID, &method.UserID, &method.Brand, &method.Last4,
		&method.ExpMonth, &method.ExpYear, &method.IsDefault, &method.CreatedAt,
	)
	if err != nil {
		return PaymentMethod{}, fmt.Errorf("insert payment method: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return PaymentMethod{}, fmt.Errorf("commit add payment method: %w", err)
	}
	return method, nil
}

// ListPaymentMethods lists the user's stored cards, default first.
func (r *Repo) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, brand, last4, exp_month, exp_year, is_default, created_at
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var results []PaymentMethod
	for rows.Next() {
		var method PaymentMethod
		err := rows.Scan(
			&method.ID, &method.UserID, &method.Brand, &method.Last4,
			&method.ExpMonth, &method.ExpYear, &method.IsDefault, &method.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		results = append(results, method)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment methods: %w", err)
	}
	return results, nil
}

// DeletePaymentMethod removes a stored card the user owns.
func (r *Repo) DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("payment method not found")
	}
	return nil
}

// SetDefaultPaymentMethod makes one card the default, clearing the rest.
func (r *Repo) SetDefaultPaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin set default payment method: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `UPDATE payment_methods SET is_default = false WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear default payment method: %w", err)
	}

	result, err := tx.Exec(ctx, `UPDATE payment_methods SET is_default = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("set default payment method: %w", err)
	}
	if result.RowsAffected() == 0 {
		err = apperr.NotFound("payment method not found")
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit set default payment method: %w", err)
	}
	return nil
}

func scanBooking(row pgx.Row) (Booking, error) {
	var booking Booking
	err := row.Scan(
		&booking.ID, &booking.ServiceID, &booking.CustomerID, &booking.ProviderID,
		&booking.ScheduledFor, &booking.AmountCents, &booking.Status,
		&booking.PaymentIntentID, &booking.PaidAt, &booking.CreatedAt, &booking.UpdatedAt,
	)
	return booking, err
}
