package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/messaging/repository"
	"marketplace_backend/internal/messaging/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

// Directory resolves display names for conversation counterparts.
type Directory interface {
	DisplayName(ctx context.Context, userID uuid.UUID) (string, error)
}

// LeadResponder reacts to a message sent on a lead thread. The leads module
// uses it to move the lead to responded on the provider's first reply; the
// return value reports whether this reply caused the transition.
type LeadResponder interface {
	RecordProviderReply(ctx context.Context, leadID, senderID, messageID uuid.UUID) (bool, error)
}

// Service implements messaging between customers and providers.
type Service struct {
	repo      repository.Repository
	directory Directory
	responder LeadResponder
	cache     *UnreadCache
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new messaging service. responder and cache may be nil.
func New(repo repository.Repository, directory Directory, responder LeadResponder, cache *UnreadCache, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		responder: responder,
		cache:     cache,
		bus:       bus,
		log:       log,
	}
}

// Send appends a message to the thread with the recipient. Messages sent on
// a lead thread notify the lead lifecycle so a provider reply counts as a
// response.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, req transport.SendMessageRequest) (transport.MessageResponse, error) {
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return transport.MessageResponse{}, apperr.Validation("invalid recipient ID")
	}
	if recipientID == senderID {
		return transport.MessageResponse{}, apperr.Validation("cannot message yourself")
	}

	content := sanitize.Text(req.Content)
	if content == "" {
		return transport.MessageResponse{}, apperr.Validation("message must not be empty")
	}

	var leadID *uuid.UUID
	if req.LeadID != nil {
		parsed, err := uuid.Parse(*req.LeadID)
		if err != nil {
			return transport.MessageResponse{}, apperr.Validation("invalid lead ID")
		}
		leadID = &parsed
	}

	message, err := s.repo.Create(ctx, repository.CreateParams{
		SenderID:    senderID,
		RecipientID: recipientID,
		LeadID:      leadID,
		Content:     content,
	})
	if err != nil {
		return transport.MessageResponse{}, apperr.Persistence("send message", err)
	}

	s.cache.Invalidate(ctx, recipientID)

	if leadID != nil && s.responder != nil {
		responded, err := s.responder.RecordProviderReply(ctx, *leadID, senderID, message.ID)
		if err != nil {
			s.log.Error("record provider reply failed", "lead_id", *leadID, "message_id", message.ID, "error", err)
		} else if responded {
			if err := s.repo.MarkResponded(ctx, message.ID); err != nil {
				s.log.Error("stamp answering reply failed", "message_id", message.ID, "error", err)
			}
		}
	}

	s.bus.Publish(ctx, events.MessageSent{
		BaseEvent:   events.NewBaseEvent(),
		MessageID:   message.ID,
		SenderID:    senderID,
		RecipientID: recipientID,
		IsLead:      leadID != nil,
	})

	return toResponse(message), nil
}

// Conversations builds the user's inbox: one row per counterpart with the
// latest message and an unread count. Sent and received messages load
// concurrently and merge in memory.
func (s *Service) Conversations(ctx context.Context, userID uuid.UUID) (transport.ConversationListResponse, error) {
	var sent, received []repository.Message
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		sent, err = s.repo.ListSentBy(groupCtx, userID)
		return err
	})
	group.Go(func() error {
		var err error
		received, err = s.repo.ListReceivedBy(groupCtx, userID)
		return err
	})
	if err := group.Wait(); err != nil {
		return transport.ConversationListResponse{}, apperr.Persistence("load conversations", err)
	}

	type bucket struct {
		counterpartID *uuid.UUID
		leadID        *uuid.UUID
		leadStatus    *string
		isAnonymous   bool
		last          repository.Message
		unread        int
	}
	buckets := make(map[string]*bucket)

	upsert := func(key string, counterpartID, leadID *uuid.UUID, anonymous bool, message repository.Message) *bucket {
		b, ok := buckets[key]
		if !ok {
			b = &bucket{counterpartID: counterpartID, leadID: leadID, isAnonymous: anonymous, last: message}
			buckets[key] = b
		} else if messageAfter(message, b.last) {
			b.last = message
		}
		// Surface the lead state from the most recent lead message in the
		// thread, regardless of which message ends up as the preview.
		if message.LeadStatus != nil && (b.leadStatus == nil || !message.CreatedAt.Before(b.last.CreatedAt)) {
			b.leadStatus = message.LeadStatus
			if b.leadID == nil {
				b.leadID = message.LeadID
			}
		}
		return b
	}

	for _, message := range sent {
		id := message.RecipientID
		upsert(id.String(), &id, message.LeadID, false, message)
	}
	for _, message := range received {
		var b *bucket
		if message.SenderID != nil {
			id := *message.SenderID
			b = upsert(id.String(), &id, message.LeadID, false, message)
		} else if message.LeadID != nil {
			// Anonymous inquiry: no account on the other side, key by lead.
			b = upsert("lead:"+message.LeadID.String(), nil, message.LeadID, true, message)
		} else {
			continue
		}
		if message.ReadAt == nil {
			b.unread++
		}
	}

	items := make([]transport.ConversationResponse, 0, len(buckets))
	for _, b := range buckets {
		item := transport.ConversationResponse{
			IsAnonymous: b.isAnonymous,
			LastMessage: toResponse(b.last),
			UnreadCount: b.unread,
		}
		if b.counterpartID != nil {
			id := b.counterpartID.String()
			item.CounterpartID = &id
			if name, err := s.directory.DisplayName(ctx, *b.counterpartID); err == nil {
				item.CounterpartName = name
			}
		}
		if b.leadID != nil {
			id := b.leadID.String()
			item.LeadID = &id
		}
		item.LeadStatus = b.leadStatus
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].LastMessage, items[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	return transport.ConversationListResponse{Items: items}, nil
}

// messageAfter orders messages by creation time with the ID as tiebreak,
// mirroring the repository's listing order.
func messageAfter(a, b repository.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

// Thread returns the full exchange between the user and another user.
func (s *Service) Thread(ctx context.Context, userID, otherID uuid.UUID) (transport.ThreadResponse, error) {
	messages, err := s.repo.Thread(ctx, userID, otherID)
	if err != nil {
		return transport.ThreadResponse{}, apperr.Persistence("load thread", err)
	}
	return transport.ThreadResponse{Messages: toResponses(messages)}, nil
}

// LeadThread returns the messages on a lead. Only a participant of the
// thread may read it.
func (s *Service) LeadThread(ctx context.Context, userID, leadID uuid.UUID) (transport.ThreadResponse, error) {
	messages, err := s.repo.LeadThread(ctx, leadID)
	if err != nil {
		return transport.ThreadResponse{}, apperr.Persistence("load lead thread", err)
	}
	if len(messages) == 0 {
		return transport.ThreadResponse{}, apperr.NotFound("thread not found")
	}

	participant := false
	for _, message := range messages {
		if message.RecipientID == userID || (message.SenderID != nil && *message.SenderID == userID) {
			participant = true
			break
		}
	}
	if !participant {
		return transport.ThreadResponse{}, apperr.Forbidden("thread is not visible to you")
	}

	return transport.ThreadResponse{Messages: toResponses(messages)}, nil
}

// MarkThreadRead marks everything the other user sent as read.
func (s *Service) MarkThreadRead(ctx context.Context, userID, otherID uuid.UUID) (transport.MarkReadResponse, error) {
	count, err := s.repo.MarkThreadRead(ctx, userID, otherID)
	if err != nil {
		return transport.MarkReadResponse{}, apperr.Persistence("mark thread read", err)
	}
	if count > 0 {
		s.cache.Invalidate(ctx, userID)
	}
	return transport.MarkReadResponse{MarkedRead: count}, nil
}

// MarkLeadThreadRead marks everything addressed to the user on a lead thread
// as read. This is the read path for anonymous inquiries, whose messages have
// no sender account for MarkThreadRead to key on.
func (s *Service) MarkLeadThreadRead(ctx context.Context, userID, leadID uuid.UUID) (transport.MarkReadResponse, error) {
	count, err := s.repo.MarkLeadThreadRead(ctx, userID, leadID)
	if err != nil {
		return transport.MarkReadResponse{}, apperr.Persistence("mark lead thread read", err)
	}
	if count > 0 {
		s.cache.Invalidate(ctx, userID)
	}
	return transport.MarkReadResponse{MarkedRead: count}, nil
}

// UnreadCount returns the user's unread message count, served from the
// Redis cache when fresh.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (transport.UnreadCountResponse, error) {
	if count, ok := s.cache.Get(ctx, userID); ok {
		return transport.UnreadCountResponse{Count: count}, nil
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return transport.UnreadCountResponse{}, apperr.Persistence("count unread messages", err)
	}
	s.cache.Set(ctx, userID, count)
	return transport.UnreadCountResponse{Count: count}, nil
}

func toResponse(message repository.Message) transport.MessageResponse {
	resp := transport.MessageResponse{
		ID:          message.ID.String(),
		RecipientID: message.RecipientID.String(),
		Content:     message.Content,
		ReadAt:      message.ReadAt,
		RespondedAt: message.RespondedAt,
		LeadStatus:  message.LeadStatus,
		CreatedAt:   message.CreatedAt,
	}
	if message.SenderID != nil {
		id := message.SenderID.String()
		resp.SenderID = &id
	}
	if message.LeadID != nil {
		id := message.LeadID.String()
		resp.LeadID = &id
	}
	return resp
}

func toResponses(messages []repository.Message) []transport.MessageResponse {
	responses := make([]transport.MessageResponse, len(messages))
	for i, message := range messages {
		responses[i] = toResponse(message)
	}
	return responses
}
