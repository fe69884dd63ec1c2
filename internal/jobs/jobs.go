// Package jobs records scheduled-job runs for operational history. Every
// scheduled handler brackets its work with a running row that is finished
// or failed on completion.
package jobs

import (
	"context"
	"fmt"
	"time"

	"lead_outcomes_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

const startRunQuery = `
	INSERT INTO job_runs (tenant_id, job_name, status, started_at)
	VALUES ($1, $2, 'running', now())
	RETURNING id, started_at
`

const finishRunQuery = `
	UPDATE job_runs
	SET status = 'success', records_processed = $2, finished_at = now()
	WHERE id = $1 AND status = 'running'
`

const failRunQuery = `
	UPDATE job_runs
	SET status = 'failed', records_processed = $2, error_message = $3, finished_at = now()
	WHERE id = $1 AND status = 'running'
`

// Run is one job_runs row.
type Run struct {
	ID        uuid.UUID
	TenantID  *uuid.UUID
	JobName   string
	StartedAt time.Time
}

// Repository persists job runs.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the jobs repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StartRun opens a running row. tenantID is nil for cross-tenant runs.
func (r *Repository) StartRun(ctx context.Context, tenantID *uuid.UUID, jobName string) (Run, error) {
	run := Run{TenantID: tenantID, JobName: jobName}
	err := r.pool.QueryRow(ctx, startRunQuery, tenantID, jobName).Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return Run{}, apperr.Internal(fmt.Sprintf("start job run failed: %v", err))
	}
	return run, nil
}

// FinishRun marks the run successful with its processed count.
func (r *Repository) FinishRun(ctx context.Context, runID uuid.UUID, recordsProcessed int) error {
	if _, err := r.pool.Exec(ctx, finishRunQuery, runID, recordsProcessed); err != nil {
		return apperr.Internal(fmt.Sprintf("finish job run failed: %v", err))
	}
	return nil
}

// FailRun marks the run failed, keeping whatever count was reached.
func (r *Repository) FailRun(ctx context.Context, runID uuid.UUID, recordsProcessed int, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	if _, err := r.pool.Exec(ctx, failRunQuery, runID, recordsProcessed, message); err != nil {
		return apperr.Internal(fmt.Sprintf("fail job run failed: %v", err))
	}
	return nil
}
