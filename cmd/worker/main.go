package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	catalogadapter "marketplace_backend/internal/adapters/catalog"
	profilesadapter "marketplace_backend/internal/adapters/profiles"
	authrepo "marketplace_backend/internal/auth/repository"
	"marketplace_backend/internal/events"
	leadsrepo "marketplace_backend/internal/leads/repository"
	leadsservice "marketplace_backend/internal/leads/service"
	"marketplace_backend/internal/scheduler"
	servicesrepo "marketplace_backend/internal/services/repository"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/db"
	"marketplace_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	// The worker only drives lead expiry, so the leads service runs without a
	// task scheduler of its own. Catalog and contact lookups go straight to
	// the repositories.
	catalogAdapter := catalogadapter.New(servicesrepo.New(pool))
	profilesAdapter := profilesadapter.New(authrepo.New(pool))
	expirer := leadsservice.New(leadsrepo.New(pool), catalogAdapter, profilesAdapter, nil, eventBus, log)

	worker, err := scheduler.NewWorker(cfg, expirer, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
