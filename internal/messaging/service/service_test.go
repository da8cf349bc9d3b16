package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/messaging/repository"
	"marketplace_backend/internal/messaging/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

type fakeRepo struct {
	mu       sync.Mutex
	messages []repository.Message
}

func (f *fakeRepo) Create(ctx context.Context, params repository.CreateParams) (repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	senderID := params.SenderID
	message := repository.Message{
		ID:          uuid.New(),
		SenderID:    &senderID,
		RecipientID: params.RecipientID,
		LeadID:      params.LeadID,
		Content:     params.Content,
		CreatedAt:   time.Now(),
	}
	f.messages = append(f.messages, message)
	return message, nil
}

// addIncoming seeds a received message directly, bypassing the service.
func (f *fakeRepo) addIncoming(sender *uuid.UUID, recipient uuid.UUID, leadID *uuid.UUID, content string, at time.Time) repository.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	message := repository.Message{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		LeadID:      leadID,
		Content:     content,
		CreatedAt:   at,
	}
	if leadID != nil {
		status := "direct"
		message.LeadStatus = &status
	}
	f.messages = append(f.messages, message)
	return message
}

func (f *fakeRepo) ListSentBy(ctx context.Context, userID uuid.UUID) ([]repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.Message
	for _, m := range f.messages {
		if m.SenderID != nil && *m.SenderID == userID {
			results = append(results, m)
		}
	}
	return results, nil
}

func (f *fakeRepo) ListReceivedBy(ctx context.Context, userID uuid.UUID) ([]repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.Message
	for _, m := range f.messages {
		if m.RecipientID == userID {
			results = append(results, m)
		}
	}
	return results, nil
}

func (f *fakeRepo) Thread(ctx context.Context, userID, otherID uuid.UUID) ([]repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.Message
	for _, m := range f.messages {
		if m.SenderID == nil {
			continue
		}
		if (*m.SenderID == userID && m.RecipientID == otherID) || (*m.SenderID == otherID && m.RecipientID == userID) {
			results = append(results, m)
		}
	}
	return results, nil
}

func (f *fakeRepo) LeadThread(ctx context.Context, leadID uuid.UUID) ([]repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []repository.Message
	for _, m := range f.messages {
		if m.LeadID != nil && *m.LeadID == leadID {
			results = append(results, m)
		}
	}
	return results, nil
}

func (f *fakeRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, m := range f.messages {
		if m.RecipientID == userID && m.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkThreadRead(ctx context.Context, userID, otherID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var count int64
	for i, m := range f.messages {
		if m.RecipientID == userID && m.SenderID != nil && *m.SenderID == otherID && m.ReadAt == nil {
			f.messages[i].ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkLeadThreadRead(ctx context.Context, userID, leadID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var count int64
	for i, m := range f.messages {
		if m.RecipientID == userID && m.LeadID != nil && *m.LeadID == leadID && m.ReadAt == nil {
			f.messages[i].ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkResponded(ctx context.Context, messageID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for i, m := range f.messages {
		if m.ID == messageID && m.RespondedAt == nil {
			f.messages[i].RespondedAt = &now
		}
	}
	return nil
}

func (f *fakeRepo) byID(messageID uuid.UUID) (repository.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == messageID {
			return m, true
		}
	}
	return repository.Message{}, false
}

type fakeDirectory struct {
	names map[uuid.UUID]string
}

func (f *fakeDirectory) DisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	return f.names[userID], nil
}

type fakeResponder struct {
	mu        sync.Mutex
	calls     []uuid.UUID
	responded bool
}

func (f *fakeResponder) RecordProviderReply(ctx context.Context, leadID, senderID, messageID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, leadID)
	return f.responded, nil
}

type captureBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *captureBus) Publish(ctx context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *captureBus) Subscribe(eventName string, handler events.Handler) {}

func newService(t *testing.T, repo *fakeRepo, responder LeadResponder, cache *UnreadCache) *Service {
	t.Helper()
	return New(repo, &fakeDirectory{names: map[uuid.UUID]string{}}, responder, cache, &captureBus{}, logger.New("test"))
}

func TestSendOnLeadThreadNotifiesResponder(t *testing.T) {
	repo := &fakeRepo{}
	responder := &fakeResponder{}
	svc := newService(t, repo, responder, nil)

	sender := uuid.New()
	recipient := uuid.New()
	leadID := uuid.New().String()

	_, err := svc.Send(context.Background(), sender, transport.SendMessageRequest{
		RecipientID: recipient.String(),
		LeadID:      &leadID,
		Content:     "I can come by tomorrow",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(responder.calls) != 1 || responder.calls[0].String() != leadID {
		t.Errorf("responder calls = %v, want one for %s", responder.calls, leadID)
	}
}

func TestSendStampsAnsweringReply(t *testing.T) {
	repo := &fakeRepo{}
	responder := &fakeResponder{responded: true}
	svc := newService(t, repo, responder, nil)

	leadID := uuid.New().String()
	resp, err := svc.Send(context.Background(), uuid.New(), transport.SendMessageRequest{
		RecipientID: uuid.New().String(),
		LeadID:      &leadID,
		Content:     "on my way",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	stored, ok := repo.byID(uuid.MustParse(resp.ID))
	if !ok {
		t.Fatal("message not stored")
	}
	if stored.RespondedAt == nil {
		t.Error("the reply that answered the lead should carry a responded stamp")
	}

	// A later reply does not cause a second transition and stays unstamped.
	responder.responded = false
	resp, err = svc.Send(context.Background(), uuid.New(), transport.SendMessageRequest{
		RecipientID: uuid.New().String(),
		LeadID:      &leadID,
		Content:     "following up",
	})
	if err != nil {
		t.Fatalf("second Send: %v", err)
	}
	stored, _ = repo.byID(uuid.MustParse(resp.ID))
	if stored.RespondedAt != nil {
		t.Error("follow-up replies must not be stamped")
	}
}

func TestSendValidation(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, nil, nil)
	sender := uuid.New()

	_, err := svc.Send(context.Background(), sender, transport.SendMessageRequest{
		RecipientID: sender.String(),
		Content:     "hi",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("self-send err = %v, want validation", err)
	}

	_, err = svc.Send(context.Background(), sender, transport.SendMessageRequest{
		RecipientID: uuid.New().String(),
		Content:     "<p></p>",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("empty content err = %v, want validation", err)
	}
}

func TestConversationsMergeAndUnread(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, nil, nil)

	me := uuid.New()
	alice := uuid.New()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// Exchange with alice: I wrote first, she replied twice, unread.
	sent := repo.addIncoming(&me, alice, nil, "hello alice", base)
	repo.addIncoming(&alice, me, nil, "hi there", base.Add(time.Minute))
	repo.addIncoming(&alice, me, nil, "are you around?", base.Add(2*time.Minute))

	// Anonymous lead inquiry, keyed by lead instead of a user.
	leadID := uuid.New()
	repo.addIncoming(nil, me, &leadID, "need a quote", base.Add(3*time.Minute))

	_ = sent

	result, err := svc.Conversations(context.Background(), me)
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("got %d conversations, want 2", len(result.Items))
	}

	// Newest activity first: the anonymous inquiry tops the inbox.
	first := result.Items[0]
	if !first.IsAnonymous || first.LeadID == nil || *first.LeadID != leadID.String() {
		t.Errorf("first conversation = %+v, want anonymous lead thread", first)
	}
	if first.UnreadCount != 1 {
		t.Errorf("anonymous unread = %d, want 1", first.UnreadCount)
	}
	if first.LeadStatus == nil || *first.LeadStatus != "direct" {
		t.Errorf("lead status = %v, want direct", first.LeadStatus)
	}

	second := result.Items[1]
	if second.CounterpartID == nil || *second.CounterpartID != alice.String() {
		t.Errorf("second counterpart = %v, want %s", second.CounterpartID, alice)
	}
	if second.UnreadCount != 2 {
		t.Errorf("alice unread = %d, want 2", second.UnreadCount)
	}
	if second.LastMessage.Content != "are you around?" {
		t.Errorf("last message = %q", second.LastMessage.Content)
	}
}

func TestConversationsKeepDormantThreads(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, nil, nil)

	me := uuid.New()
	alice := uuid.New()
	bob := uuid.New()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// One old unread message from alice, then a long busy exchange with bob.
	repo.addIncoming(&alice, me, nil, "still waiting on that quote", base)
	for i := 0; i < 250; i++ {
		repo.addIncoming(&bob, me, nil, "busy thread", base.Add(time.Duration(i+1)*time.Minute))
	}

	result, err := svc.Conversations(context.Background(), me)
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("got %d conversations, want 2", len(result.Items))
	}

	// The dormant thread survives however much newer traffic exists.
	last := result.Items[len(result.Items)-1]
	if last.CounterpartID == nil || *last.CounterpartID != alice.String() {
		t.Fatalf("oldest conversation = %v, want %s", last.CounterpartID, alice)
	}
	if last.UnreadCount != 1 {
		t.Errorf("dormant unread = %d, want 1", last.UnreadCount)
	}
}

func TestConversationsPreviewTiebreakOnEqualTimes(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, nil, nil)

	me := uuid.New()
	alice := uuid.New()
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	first := repo.addIncoming(&alice, me, nil, "first", at)
	second := repo.addIncoming(&alice, me, nil, "second", at)

	want := first
	if second.ID.String() > first.ID.String() {
		want = second
	}

	result, err := svc.Conversations(context.Background(), me)
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("got %d conversations, want 1", len(result.Items))
	}
	if result.Items[0].LastMessage.ID != want.ID.String() {
		t.Errorf("preview = %q, want the higher ID at equal times", result.Items[0].LastMessage.Content)
	}
}

func TestLeadThreadVisibility(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, nil, nil)

	provider := uuid.New()
	leadID := uuid.New()
	repo.addIncoming(nil, provider, &leadID, "need a quote", time.Now())

	if _, err := svc.LeadThread(context.Background(), provider, leadID); err != nil {
		t.Errorf("participant should read the thread: %v", err)
	}
	if _, err := svc.LeadThread(context.Background(), uuid.New(), leadID); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("stranger err = %v, want forbidden", err)
	}
	if _, err := svc.LeadThread(context.Background(), provider, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing thread err = %v, want not found", err)
	}
}

func TestMarkLeadThreadReadClearsAnonymousUnread(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewUnreadCache(client)

	repo := &fakeRepo{}
	svc := newService(t, repo, nil, cache)

	provider := uuid.New()
	leadID := uuid.New()
	repo.addIncoming(nil, provider, &leadID, "need a quote", time.Now())

	result, err := svc.UnreadCount(context.Background(), provider)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("count = %d, want 1", result.Count)
	}

	// The anonymous inquiry has no sender account, so the lead is the only
	// handle for marking it read.
	marked, err := svc.MarkLeadThreadRead(context.Background(), provider, leadID)
	if err != nil {
		t.Fatalf("MarkLeadThreadRead: %v", err)
	}
	if marked.MarkedRead != 1 {
		t.Errorf("marked = %d, want 1", marked.MarkedRead)
	}

	result, err = svc.UnreadCount(context.Background(), provider)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("count after read = %d, want 0", result.Count)
	}
}

func TestUnreadCountUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewUnreadCache(client)

	repo := &fakeRepo{}
	svc := newService(t, repo, nil, cache)

	me := uuid.New()
	other := uuid.New()
	repo.addIncoming(&other, me, nil, "one", time.Now())
	repo.addIncoming(&other, me, nil, "two", time.Now())

	result, err := svc.UnreadCount(context.Background(), me)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("count = %d, want 2", result.Count)
	}

	// A new message bypassing the cache is invisible until invalidation.
	repo.addIncoming(&other, me, nil, "three", time.Now())
	result, err = svc.UnreadCount(context.Background(), me)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if result.Count != 2 {
		t.Errorf("cached count = %d, want stale 2", result.Count)
	}

	// Reading the thread invalidates; the next poll sees the truth.
	if _, err := svc.MarkThreadRead(context.Background(), me, other); err != nil {
		t.Fatalf("MarkThreadRead: %v", err)
	}
	result, err = svc.UnreadCount(context.Background(), me)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("count after read = %d, want 0", result.Count)
	}
}

func TestSendInvalidatesRecipientCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewUnreadCache(client)

	repo := &fakeRepo{}
	svc := newService(t, repo, nil, cache)

	sender := uuid.New()
	recipient := uuid.New()

	// Prime the recipient's cached zero.
	if result, err := svc.UnreadCount(context.Background(), recipient); err != nil || result.Count != 0 {
		t.Fatalf("prime cache: count=%v err=%v", result.Count, err)
	}

	if _, err := svc.Send(context.Background(), sender, transport.SendMessageRequest{
		RecipientID: recipient.String(),
		Content:     "ping",
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	result, err := svc.UnreadCount(context.Background(), recipient)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if result.Count != 1 {
		t.Errorf("count after send = %d, want 1", result.Count)
	}
}
