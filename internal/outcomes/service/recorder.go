// Package service orchestrates outcome recording: validation, attribution
// capture, the ledger append, and the derived state upsert.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead_outcomes_backend/internal/outcomes/domain"
	"lead_outcomes_backend/internal/outcomes/repository"
	"lead_outcomes_backend/platform/apperr"
	"lead_outcomes_backend/platform/logger"

	"github.com/google/uuid"
)

// maxOccurredAtAge is a sanity guard against fat-fingered dates, not a
// hard domain rule.
const maxOccurredAtAge = 5 * 365 * 24 * time.Hour

// writeAttempts bounds the optimistic-concurrency retry loop.
const writeAttempts = 3

// Store is the persistence surface the recorder needs.
type Store interface {
	GetAttribution(ctx context.Context, tenantID, leadID uuid.UUID) (domain.Attribution, error)
	GetLeadState(ctx context.Context, tenantID, leadID uuid.UUID) (*domain.LeadState, error)
	AppendOutcome(ctx context.Context, p repository.AppendOutcomeParams) (repository.Outcome, error)
	ListOutcomes(ctx context.Context, tenantID, leadID uuid.UUID, limit int) ([]repository.Outcome, error)
}

// Recorder records outcomes against the append-only ledger.
type Recorder struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// NewRecorder creates the outcome recorder.
func NewRecorder(store Store, log *logger.Logger) *Recorder {
	return &Recorder{store: store, log: log, now: time.Now}
}

// RecordParams is one outcome submission.
type RecordParams struct {
	LeadID     uuid.UUID
	Outcome    string
	OccurredAt *time.Time
	Notes      *string
	Override   bool
	RecordedBy uuid.UUID
}

// Record validates and persists one outcome. On success exactly one ledger
// row is appended and the lead state upserted; on any error nothing is
// written. There is no submission-level idempotency key: re-submitting the
// identical outcome appends a second ledger row.
func (r *Recorder) Record(ctx context.Context, tenantID uuid.UUID, p RecordParams) (repository.Outcome, error) {
	outcomeType, ok := domain.ParseOutcomeType(p.Outcome)
	if !ok {
		return repository.Outcome{}, apperr.InvalidOutcomeType(p.Outcome)
	}

	occurredAt, err := r.resolveOccurredAt(p.OccurredAt)
	if err != nil {
		return repository.Outcome{}, err
	}

	// Attribution must exist before an outcome can be recorded; this read
	// also resolves the lead within the tenant.
	attribution, err := r.store.GetAttribution(ctx, tenantID, p.LeadID)
	if err != nil {
		return repository.Outcome{}, err
	}

	// Validate against a state snapshot, write with the snapshot's version
	// asserted. A lost race re-runs the whole cycle so validation never
	// acts on stale state.
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		state, err := r.store.GetLeadState(ctx, tenantID, p.LeadID)
		if err != nil {
			return repository.Outcome{}, err
		}

		result := domain.ValidateSequence(state, outcomeType, p.Override)
		if !result.CanProceed {
			return repository.Outcome{}, apperr.SequenceBlocked(result.Blocks)
		}

		base := domain.LeadState{LeadID: p.LeadID, TenantID: tenantID}
		expectedVersion := 0
		if state != nil {
			base = *state
			expectedVersion = state.Version
		}

		row, err := r.store.AppendOutcome(ctx, repository.AppendOutcomeParams{
			TenantID:   tenantID,
			LeadID:     p.LeadID,
			Outcome:    outcomeType,
			OccurredAt: occurredAt,
			RecordedBy: p.RecordedBy,
			Notes:      p.Notes,
			Metadata: repository.OutcomeMetadata{
				Attribution: attribution,
				Warnings:    result.Warnings,
			},
			NewState:        base.Apply(outcomeType, occurredAt),
			ExpectedVersion: expectedVersion,
		})
		if errors.Is(err, repository.ErrStateVersionConflict) {
			r.log.Warn("lead state version conflict, retrying",
				"leadId", p.LeadID, "attempt", attempt)
			continue
		}
		if err != nil {
			return repository.Outcome{}, err
		}
		return row, nil
	}

	return repository.Outcome{}, apperr.Conflict("concurrent outcome submissions for lead, retry")
}

// BulkParams applies one outcome to many leads.
type BulkParams struct {
	LeadIDs    []uuid.UUID
	Outcome    string
	OccurredAt *time.Time
	Notes      *string
	Override   bool
	RecordedBy uuid.UUID
}

// BulkResult collects per-lead successes and failures.
type BulkResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// RecordBulk applies Record independently across the lead list. Each
// lead's success or failure is isolated; a bad lead never aborts the batch.
func (r *Recorder) RecordBulk(ctx context.Context, tenantID uuid.UUID, p BulkParams) BulkResult {
	var result BulkResult
	for _, leadID := range p.LeadIDs {
		_, err := r.Record(ctx, tenantID, RecordParams{
			LeadID:     leadID,
			Outcome:    p.Outcome,
			OccurredAt: p.OccurredAt,
			Notes:      p.Notes,
			Override:   p.Override,
			RecordedBy: p.RecordedBy,
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", leadID, err.Error()))
			continue
		}
		result.Successful++
	}
	return result
}

// History returns a lead's outcome history, newest business timestamp
// first.
func (r *Recorder) History(ctx context.Context, tenantID, leadID uuid.UUID, limit int) ([]repository.Outcome, error) {
	return r.store.ListOutcomes(ctx, tenantID, leadID, limit)
}

func (r *Recorder) resolveOccurredAt(supplied *time.Time) (time.Time, error) {
	now := r.now().UTC()
	if supplied == nil {
		return now, nil
	}

	occurredAt := supplied.UTC()
	if occurredAt.After(now) {
		return time.Time{}, apperr.InvalidTimestamp("occurredAt cannot be in the future")
	}
	if now.Sub(occurredAt) > maxOccurredAtAge {
		return time.Time{}, apperr.InvalidTimestamp("occurredAt is more than 5 years in the past")
	}
	return occurredAt, nil
}
