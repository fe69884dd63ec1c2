package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	analyticsrepo "lead_outcomes_backend/internal/analytics/repository"
	analyticsservice "lead_outcomes_backend/internal/analytics/service"
	"lead_outcomes_backend/internal/jobs"
	nudgerepo "lead_outcomes_backend/internal/nudges/repository"
	nudgeservice "lead_outcomes_backend/internal/nudges/service"
	"lead_outcomes_backend/internal/scheduler"
	"lead_outcomes_backend/internal/tenants"
	"lead_outcomes_backend/platform/config"
	"lead_outcomes_backend/platform/db"
	"lead_outcomes_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

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

	tenantRepo := tenants.NewRepository(pool)
	jobRepo := jobs.New(pool)
	aggregator := analyticsservice.NewAggregator(analyticsrepo.New(pool), log)
	detector := nudgeservice.NewDetector(nudgerepo.New(pool), log, cfg.GetStaleLeadWindow())

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic trigger", "error", err)
		panic("failed to initialize periodic trigger: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, tenantRepo, jobRepo, aggregator, detector, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return periodic.Run(groupCtx) })
	group.Go(func() error { return worker.Run(groupCtx) })

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("scheduler stopped", "error", err)
		panic("scheduler stopped: " + err.Error())
	}
	log.Info("scheduler shut down")
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
