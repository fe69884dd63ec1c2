package scheduler

import (
	"context"
	"errors"
	"time"

	analyticsservice "lead_outcomes_backend/internal/analytics/service"
	"lead_outcomes_backend/internal/jobs"
	nudgeservice "lead_outcomes_backend/internal/nudges/service"
	"lead_outcomes_backend/internal/tenants"
	"lead_outcomes_backend/platform/config"
	"lead_outcomes_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes the scheduled tasks and fans each one out across all
// tenants, bracketing every per-tenant run with a job_runs row.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	tenantRepo *tenants.Repository
	jobRepo    *jobs.Repository
	aggregator *analyticsservice.Aggregator
	detector   *nudgeservice.Detector
	log        *logger.Logger
}

// NewWorker creates the asynq worker with both task handlers registered.
func NewWorker(
	cfg config.SchedulerConfig,
	tenantRepo *tenants.Repository,
	jobRepo *jobs.Repository,
	aggregator *analyticsservice.Aggregator,
	detector *nudgeservice.Detector,
	log *logger.Logger,
) (*Worker, error) {
	opt, err := redisOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:     server,
		mux:        asynq.NewServeMux(),
		tenantRepo: tenantRepo,
		jobRepo:    jobRepo,
		aggregator: aggregator,
		detector:   detector,
		log:        log,
	}
	w.mux.HandleFunc(TaskWeeklyAggregation, w.handleWeeklyAggregation)
	w.mux.HandleFunc(TaskDailyNudge, w.handleDailyNudge)

	return w, nil
}

// Run blocks serving tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
		return err
	}
	return nil
}

func (w *Worker) handleWeeklyAggregation(ctx context.Context, _ *asynq.Task) error {
	return w.forEachTenant(ctx, JobNameWeeklyAggregation, func(ctx context.Context, tenant tenants.Tenant) (int, error) {
		return w.aggregator.RunPreviousWeek(ctx, tenant.ID, time.Now())
	})
}

func (w *Worker) handleDailyNudge(ctx context.Context, _ *asynq.Task) error {
	return w.forEachTenant(ctx, JobNameDailyNudge, func(ctx context.Context, tenant tenants.Tenant) (int, error) {
		return w.detector.Run(ctx, tenant.ID, time.Now())
	})
}

// forEachTenant runs fn once per tenant. One tenant failing does not stop
// the others; the joined error is returned so asynq retries the task (the
// per-day dedup and idempotent aggregation make retries safe).
func (w *Worker) forEachTenant(ctx context.Context, jobName string, fn func(ctx context.Context, tenant tenants.Tenant) (int, error)) error {
	tenantList, err := w.tenantRepo.List(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, tenant := range tenantList {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		tenantID := tenant.ID
		run, err := w.jobRepo.StartRun(ctx, &tenantID, jobName)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		w.log.JobStarted(jobName, tenant.Slug)

		processed, err := fn(ctx, tenant)
		if err != nil {
			_ = w.jobRepo.FailRun(ctx, run.ID, processed, err)
			w.log.JobFinished(jobName, tenant.Slug, processed, err)
			errs = append(errs, err)
			continue
		}

		if err := w.jobRepo.FinishRun(ctx, run.ID, processed); err != nil {
			errs = append(errs, err)
		}
		w.log.JobFinished(jobName, tenant.Slug, processed, nil)
	}

	return errors.Join(errs...)
}
