package scheduler

import (
	"context"
	"fmt"
	"time"

	"marketplace_backend/internal/events"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// LeadExpirer is the slice of the leads module the worker needs: expire a
// single lead by ID, or every overdue direct lead in one pass.
type LeadExpirer interface {
	ExpireLead(ctx context.Context, leadID uuid.UUID) (bool, error)
	ExpireDue(ctx context.Context) (int64, error)
}

type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	expirer       LeadExpirer
	bus           events.Bus
	log           *logger.Logger
	sweepInterval time.Duration
}

func NewWorker(cfg config.SchedulerConfig, expirer LeadExpirer, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:        server,
		mux:           mux,
		expirer:       expirer,
		bus:           bus,
		log:           log,
		sweepInterval: cfg.GetLeadSweepInterval(),
	}

	mux.HandleFunc(TaskLeadExpire, w.handleLeadExpire)
	mux.HandleFunc(TaskLeadExpireSweep, w.handleLeadSweep)

	return w, nil
}

func (w *Worker) handleLeadExpire(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadExpirePayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	expired, err := w.expirer.ExpireLead(ctx, leadID)
	if err != nil {
		return err
	}

	// Not expired means the provider responded in time, or the lead was
	// already promoted by a sweep. Either way the task is done.
	if expired {
		w.log.Info("lead exclusivity window expired", "lead_id", leadID)
		w.publishExpired(ctx, 1)
	}
	return nil
}

func (w *Worker) handleLeadSweep(ctx context.Context, _ *asynq.Task) error {
	count, err := w.expirer.ExpireDue(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		w.log.Info("expired overdue direct leads", "count", count)
		w.publishExpired(ctx, count)
	}
	return nil
}

func (w *Worker) publishExpired(ctx context.Context, count int64) {
	if w.bus == nil {
		return
	}
	w.bus.Publish(ctx, events.LeadsExpired{
		BaseEvent: events.NewBaseEvent(),
		Count:     count,
	})
}

// Run processes tasks until ctx is cancelled. A periodic sweep runs alongside
// the task handlers so leads never stay overdue longer than the interval.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	interval := w.sweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.handleLeadSweep(ctx, nil); err != nil {
					w.log.Error("lead sweep failed", "error", err)
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
