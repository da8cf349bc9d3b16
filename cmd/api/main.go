package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	catalogadapter "marketplace_backend/internal/adapters/catalog"
	expiryadapter "marketplace_backend/internal/adapters/expiry"
	profilesadapter "marketplace_backend/internal/adapters/profiles"
	"marketplace_backend/internal/adapters/storage"
	"marketplace_backend/internal/auth"
	authrepo "marketplace_backend/internal/auth/repository"
	"marketplace_backend/internal/bookings"
	"marketplace_backend/internal/email"
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/http/router"
	"marketplace_backend/internal/leads"
	leadsservice "marketplace_backend/internal/leads/service"
	"marketplace_backend/internal/messaging"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/portfolio"
	"marketplace_backend/internal/scheduler"
	"marketplace_backend/internal/services"
	servicesrepo "marketplace_backend/internal/services/repository"
	"marketplace_backend/migrations"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/db"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, migrations.Dir)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	schedClient, closeScheduler := initLeadScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	cacheClient := initCacheClient(cfg, log)
	if cacheClient != nil {
		defer cacheClient.Close()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Object storage for listing cover images and portfolio uploads (MinIO).
	// When not configured, uploads fail with a config error but the rest of
	// the API stays up.
	var storageSvc *storage.MinIOService
	if cfg.IsMinIOEnabled() {
		storageSvc, err = storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, storageSvc, "service-images", cfg.GetMinioBucketServiceImages())
		ensureBucket(ctx, log, storageSvc, "portfolio", cfg.GetMinioBucketPortfolio())
		log.Info(
			"storage service initialized",
			"serviceImagesBucket", cfg.GetMinioBucketServiceImages(),
			"portfolioBucket", cfg.GetMinioBucketPortfolio(),
		)
	} else {
		log.Warn("MinIO not configured; image uploads disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notification.NewModule(eventBus, sender, cfg, log)

	authModule := auth.NewModule(pool, cfg, val, eventBus, log)

	var servicesModule *services.Module
	var portfolioModule *portfolio.Module
	if storageSvc != nil {
		servicesModule = services.NewModule(pool, storageSvc, cfg.GetMinioBucketServiceImages(), val, log)
		portfolioModule = portfolio.NewModule(pool, storageSvc, cfg.GetMinioBucketPortfolio(), val, log)
	} else {
		servicesModule = services.NewModule(pool, nil, "", val, log)
		portfolioModule = portfolio.NewModule(pool, nil, "", val, log)
	}

	// Anti-corruption adapters: leads, bookings, and messaging depend on
	// their own narrow ports, not on the modules behind them.
	catalogAdapter := catalogadapter.New(servicesrepo.New(pool))
	profilesAdapter := profilesadapter.New(authrepo.New(pool))

	var leadExpiry leadsservice.ExpiryScheduler
	if schedClient != nil {
		leadExpiry = expiryadapter.New(schedClient)
	}

	leadsModule := leads.NewModule(pool, catalogAdapter, profilesAdapter, leadExpiry, eventBus, val, log)
	messagingModule := messaging.NewModule(pool, cacheClient, profilesAdapter, leadsModule.Service(), eventBus, val, log)
	bookingsModule := bookings.NewModule(pool, catalogAdapter, profilesadapter.BookingContact{Adapter: profilesAdapter}, eventBus, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			servicesModule,
			leadsModule,
			messagingModule,
			bookingsModule,
			portfolioModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initLeadScheduler builds the task queue client used to schedule precise
// end-of-window lead expiry. Without Redis the periodic sweep in the worker
// is the only expiry path.
func initLeadScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; scheduled lead expiry disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initCacheClient builds the Redis client backing the unread-count cache.
// Messaging works without it; counts are then always read from the database.
func initCacheClient(cfg config.CacheConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; unread-count cache disabled", "error", err)
		return nil
	}
	if opt.TLSConfig != nil && cfg.GetRedisTLSInsecure() {
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
