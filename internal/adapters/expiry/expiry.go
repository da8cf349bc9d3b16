// Package expiry adapts the task queue client to the lead expiry scheduling
// port.
package expiry

import (
	"context"
	"time"

	"github.com/google/uuid"

	leadsservice "marketplace_backend/internal/leads/service"
	"marketplace_backend/internal/scheduler"
)

// Adapter schedules lead expiry tasks on the queue.
type Adapter struct {
	client *scheduler.Client
}

// New creates an expiry adapter over the scheduler client.
func New(client *scheduler.Client) *Adapter {
	return &Adapter{client: client}
}

// ScheduleLeadExpiry enqueues the precise end-of-window task for a lead.
func (a *Adapter) ScheduleLeadExpiry(ctx context.Context, leadID uuid.UUID, runAt time.Time) error {
	return a.client.ScheduleLeadExpiry(ctx, scheduler.LeadExpirePayload{LeadID: leadID.String()}, runAt)
}

var _ leadsservice.ExpiryScheduler = (*Adapter)(nil)
