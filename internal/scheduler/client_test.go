package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type stubConfig struct {
	redisURL    string
	tlsInsecure bool
	queue       string
	concurrency int
	sweep       time.Duration
}

func (c stubConfig) GetRedisURL() string                { return c.redisURL }
func (c stubConfig) GetRedisTLSInsecure() bool          { return c.tlsInsecure }
func (c stubConfig) GetAsynqQueueName() string          { return c.queue }
func (c stubConfig) GetAsynqConcurrency() int           { return c.concurrency }
func (c stubConfig) GetLeadSweepInterval() time.Duration { return c.sweep }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(stubConfig{}); err == nil {
		t.Fatal("expected error for missing redis url")
	}
}

func TestNewClientRejectsInvalidRedisURL(t *testing.T) {
	if _, err := NewClient(stubConfig{redisURL: "not-a-url"}); err == nil {
		t.Fatal("expected error for invalid redis url")
	}
}

func TestScheduleLeadExpiry(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(stubConfig{redisURL: "redis://" + srv.Addr(), queue: "test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	payload := LeadExpirePayload{LeadID: uuid.New().String()}
	runAt := time.Now().Add(3 * time.Hour)
	if err := client.ScheduleLeadExpiry(context.Background(), payload, runAt); err != nil {
		t.Fatalf("ScheduleLeadExpiry: %v", err)
	}

	// asynq stores scheduled tasks in a per-queue sorted set.
	if !srv.Exists("asynq:{test}:scheduled") {
		t.Error("expected task in scheduled set")
	}
}

func TestEnqueueLeadSweep(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(stubConfig{redisURL: "redis://" + srv.Addr(), queue: "test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueLeadSweep(context.Background()); err != nil {
		t.Fatalf("EnqueueLeadSweep: %v", err)
	}

	if !srv.Exists("asynq:{test}:pending") {
		t.Error("expected task in pending list")
	}
}

func TestLeadExpirePayloadRoundTrip(t *testing.T) {
	id := uuid.New().String()
	task, err := NewLeadExpireTask(LeadExpirePayload{LeadID: id})
	if err != nil {
		t.Fatalf("NewLeadExpireTask: %v", err)
	}
	if task.Type() != TaskLeadExpire {
		t.Errorf("task type = %q, want %q", task.Type(), TaskLeadExpire)
	}

	parsed, err := ParseLeadExpirePayload(task)
	if err != nil {
		t.Fatalf("ParseLeadExpirePayload: %v", err)
	}
	if parsed.LeadID != id {
		t.Errorf("lead id = %q, want %q", parsed.LeadID, id)
	}
}

func TestRedisClientOptTLSInsecure(t *testing.T) {
	opt, err := redisClientOpt("rediss://localhost:6379", true)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Error("expected insecure TLS config")
	}
}
