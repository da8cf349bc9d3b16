package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reads join the lead so thread views can show the current lead status
// without a second round trip.
const messageColumns = `m.id, m.sender_id, m.recipient_id, m.lead_id, m.content, m.read_at, m.responded_at, m.created_at, l.status`

const messageFrom = ` FROM messages m LEFT JOIN leads l ON l.id = m.lead_id`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new messaging repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create appends a message to a thread.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Message, error) {
	row := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO messages (sender_id, recipient_id, lead_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT m.id, m.sender_id, m.recipient_id, m.lead_id, m.content, m.read_at, m.responded_at, m.created_at, l.status
		FROM inserted m LEFT JOIN leads l ON l.id = m.lead_id`,
		params.SenderID, params.RecipientID, params.LeadID, params.Content,
	)
	message, err := scanMessage(row)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return message, nil
}

// ListSentBy returns every message the user sent, newest first.
func (r *Repo) ListSentBy(ctx context.Context, userID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+messageFrom+`
		WHERE m.sender_id = $1
		ORDER BY m.created_at DESC, m.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// ListReceivedBy returns every message the user received, newest first.
func (r *Repo) ListReceivedBy(ctx context.Context, userID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+messageFrom+`
		WHERE m.recipient_id = $1
		ORDER BY m.created_at DESC, m.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list received messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// Thread returns the full exchange between two users, oldest first.
func (r *Repo) Thread(ctx context.Context, userID, otherID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+messageFrom+`
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
		   OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at ASC, m.id ASC
	`, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// LeadThread returns every message attached to a lead, oldest first.
func (r *Repo) LeadThread(ctx context.Context, leadID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+messageFrom+`
		WHERE m.lead_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("load lead thread: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// CountUnread counts incoming messages without a read timestamp. Backed by
// the partial index on unread recipients.
func (r *Repo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND read_at IS NULL
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

// MarkThreadRead marks every unread message from otherID to userID as read.
func (r *Repo) MarkThreadRead(ctx context.Context, userID, otherID uuid.UUID) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE messages SET read_at = now()
		WHERE recipient_id = $1 AND sender_id = $2 AND read_at IS NULL
	`, userID, otherID)
	if err != nil {
		return 0, fmt.Errorf("mark thread read: %w", err)
	}
	return result.RowsAffected(), nil
}

// MarkLeadThreadRead marks the user's unread messages on a lead thread as
// read. Keyed on the recipient alone so anonymous inquiries, which carry a
// NULL sender, are covered.
func (r *Repo) MarkLeadThreadRead(ctx context.Context, userID, leadID uuid.UUID) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE messages SET read_at = now()
		WHERE recipient_id = $1 AND lead_id = $2 AND read_at IS NULL
	`, userID, leadID)
	if err != nil {
		return 0, fmt.Errorf("mark lead thread read: %w", err)
	}
	return result.RowsAffected(), nil
}

// MarkResponded stamps the reply that answered its lead. The NULL guard keeps
// the stamp on the first answering reply only.
func (r *Repo) MarkResponded(ctx context.Context, messageID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET responded_at = now()
		WHERE id = $1 AND responded_at IS NULL
	`, messageID)
	if err != nil {
		return fmt.Errorf("mark message responded: %w", err)
	}
	return nil
}

func scanMessage(row pgx.Row) (Message, error) {
	var message Message
	err := row.Scan(
		&message.ID, &message.SenderID, &message.RecipientID, &message.LeadID,
		&message.Content, &message.ReadAt, &message.RespondedAt, &message.CreatedAt,
		&message.LeadStatus,
	)
	return message, err
}

func scanMessages(rows pgx.Rows) ([]Message, error) {
	var results []Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		results = append(results, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return results, nil
}
