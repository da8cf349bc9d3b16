package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a conversation between two users. A nil SenderID
// means the message came in with an anonymous lead inquiry. RespondedAt is
// set on the provider reply that answered a lead. LeadStatus carries the
// lead's current status when the message belongs to a lead thread.
type Message struct {
	ID          uuid.UUID
	SenderID    *uuid.UUID
	RecipientID uuid.UUID
	LeadID      *uuid.UUID
	Content     string
	ReadAt      *time.Time
	RespondedAt *time.Time
	LeadStatus  *string
	CreatedAt   time.Time
}

// CreateParams appends a message to a thread.
type CreateParams struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	LeadID      *uuid.UUID
	Content     string
}

// MessageReader provides read operations for messages.
type MessageReader interface {
	// ListSentBy returns every message the user sent, newest first.
	ListSentBy(ctx context.Context, userID uuid.UUID) ([]Message, error)
	// ListReceivedBy returns every message the user received, newest first.
	ListReceivedBy(ctx context.Context, userID uuid.UUID) ([]Message, error)
	// Thread returns the full exchange between two users, oldest first.
	Thread(ctx context.Context, userID, otherID uuid.UUID) ([]Message, error)
	// LeadThread returns every message attached to a lead, oldest first.
	LeadThread(ctx context.Context, leadID uuid.UUID) ([]Message, error)
	// CountUnread returns how many incoming messages are still unread.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// MessageWriter provides write operations for messages.
type MessageWriter interface {
	Create(ctx context.Context, params CreateParams) (Message, error)
	// MarkThreadRead marks every unread message from otherID to userID as
	// read and returns how many rows changed.
	MarkThreadRead(ctx context.Context, userID, otherID uuid.UUID) (int64, error)
	// MarkLeadThreadRead marks the user's unread messages on a lead thread
	// as read. It keys on the recipient alone, so messages from anonymous
	// inquiries, which have no sender account, are covered too.
	MarkLeadThreadRead(ctx context.Context, userID, leadID uuid.UUID) (int64, error)
	// MarkResponded stamps the message as the reply that answered its lead.
	MarkResponded(ctx context.Context, messageID uuid.UUID) error
}

// Repository combines all message repository operations.
type Repository interface {
	MessageReader
	MessageWriter
}
