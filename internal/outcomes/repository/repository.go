// Package repository persists the outcome ledger and the derived lead
// state. Ledger rows are append-only; the state row is the only mutable
// record and is guarded by an optimistic version column.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lead_outcomes_backend/internal/outcomes/domain"
	"lead_outcomes_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStateVersionConflict reports a lost optimistic-concurrency race on the
// lead state upsert. The caller re-reads state and retries the full
// validate-then-write cycle.
var ErrStateVersionConflict = errors.New("lead state version conflict")

const getAttributionQuery = `
	SELECT source_key, geo_key, intent_type, timeline_bucket,
		assigned_partner, price_band, budget_band
	FROM leads
	WHERE id = $1 AND tenant_id = $2
`

const getLeadStateQuery = `
	SELECT lead_id, tenant_id, current_stage, last_outcome_type,
		last_outcome_at, won_flag, lost_flag, invalid_flag, version
	FROM lead_states
	WHERE lead_id = $1 AND tenant_id = $2
`

const insertOutcomeQuery = `
	INSERT INTO lead_outcomes (
		tenant_id, lead_id, outcome_type, outcome_stage,
		occurred_at, recorded_by, notes, metadata
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at
`

// The upsert enforces the monotonic flag merge in SQL (old OR incoming) and
// bumps the version. The WHERE clause asserts the version observed during
// validation; zero rows affected means another writer won the race.
const upsertLeadStateQuery = `
	INSERT INTO lead_states (
		lead_id, tenant_id, current_stage, last_outcome_type,
		last_outcome_at, won_flag, lost_flag, invalid_flag, version, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, now())
	ON CONFLICT (lead_id) DO UPDATE SET
		current_stage = EXCLUDED.current_stage,
		last_outcome_type = EXCLUDED.last_outcome_type,
		last_outcome_at = EXCLUDED.last_outcome_at,
		won_flag = lead_states.won_flag OR EXCLUDED.won_flag,
		lost_flag = lead_states.lost_flag OR EXCLUDED.lost_flag,
		invalid_flag = lead_states.invalid_flag OR EXCLUDED.invalid_flag,
		version = lead_states.version + 1,
		updated_at = now()
	WHERE lead_states.tenant_id = EXCLUDED.tenant_id
		AND lead_states.version = $9
`

const listOutcomesQuery = `
	SELECT id, tenant_id, lead_id, outcome_type, outcome_stage,
		occurred_at, recorded_by, notes, metadata, created_at
	FROM lead_outcomes
	WHERE lead_id = $1 AND tenant_id = $2
	ORDER BY occurred_at DESC
	LIMIT $3
`

// OutcomeMetadata is the JSONB payload frozen onto every ledger row.
type OutcomeMetadata struct {
	Attribution domain.Attribution `json:"attribution"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// Outcome is one immutable ledger row.
type Outcome struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	LeadID       uuid.UUID
	OutcomeType  domain.OutcomeType
	OutcomeStage domain.Stage
	OccurredAt   time.Time
	RecordedBy   uuid.UUID
	Notes        *string
	Metadata     OutcomeMetadata
	CreatedAt    time.Time
}

// AppendOutcomeParams carries one validated outcome write.
type AppendOutcomeParams struct {
	TenantID   uuid.UUID
	LeadID     uuid.UUID
	Outcome    domain.OutcomeType
	OccurredAt time.Time
	RecordedBy uuid.UUID
	Notes      *string
	Metadata   OutcomeMetadata
	// NewState is the already-merged state to upsert.
	NewState domain.LeadState
	// ExpectedVersion is the state version observed during validation
	// (zero when no state row existed).
	ExpectedVersion int
}

// Repository provides ledger and state persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the outcomes repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetAttribution reads the lead row scoped to the tenant and freezes its
// current marketing/geo/intent attributes into a snapshot. Pure read.
func (r *Repository) GetAttribution(ctx context.Context, tenantID, leadID uuid.UUID) (domain.Attribution, error) {
	var attr domain.Attribution
	var intent *string
	err := r.pool.QueryRow(ctx, getAttributionQuery, leadID, tenantID).Scan(
		&attr.SourceKey,
		&attr.GeoKey,
		&intent,
		&attr.TimelineBucket,
		&attr.AssignedPartner,
		&attr.PriceBand,
		&attr.BudgetBand,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Attribution{}, apperr.LeadNotFound()
		}
		return domain.Attribution{}, apperr.Internal(fmt.Sprintf("read attribution failed: %v", err))
	}

	if intent != nil {
		it := domain.IntentType(*intent)
		attr.IntentType = &it
	}
	return attr.Normalize(), nil
}

// GetLeadState returns the derived state for a lead, or nil when the lead
// has no recorded outcome yet.
func (r *Repository) GetLeadState(ctx context.Context, tenantID, leadID uuid.UUID) (*domain.LeadState, error) {
	var state domain.LeadState
	err := r.pool.QueryRow(ctx, getLeadStateQuery, leadID, tenantID).Scan(
		&state.LeadID,
		&state.TenantID,
		&state.CurrentStage,
		&state.LastOutcomeType,
		&state.LastOutcomeAt,
		&state.WonFlag,
		&state.LostFlag,
		&state.InvalidFlag,
		&state.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Internal(fmt.Sprintf("read lead state failed: %v", err))
	}
	return &state, nil
}

// AppendOutcome writes one ledger row and the merged state upsert in a
// single transaction. Returns ErrStateVersionConflict when a concurrent
// writer bumped the state version first; nothing is written in that case.
func (r *Repository) AppendOutcome(ctx context.Context, p AppendOutcomeParams) (Outcome, error) {
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return Outcome{}, apperr.Internal(fmt.Sprintf("marshal outcome metadata failed: %v", err))
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Outcome{}, apperr.Internal(fmt.Sprintf("begin outcome tx failed: %v", err))
	}
	defer tx.Rollback(ctx)

	row := Outcome{
		TenantID:     p.TenantID,
		LeadID:       p.LeadID,
		OutcomeType:  p.Outcome,
		OutcomeStage: domain.StageOf(p.Outcome),
		OccurredAt:   p.OccurredAt,
		RecordedBy:   p.RecordedBy,
		Notes:        p.Notes,
		Metadata:     p.Metadata,
	}
	err = tx.QueryRow(ctx, insertOutcomeQuery,
		p.TenantID, p.LeadID, p.Outcome, row.OutcomeStage,
		p.OccurredAt, p.RecordedBy, p.Notes, metadataJSON,
	).Scan(&row.ID, &row.CreatedAt)
	if err != nil {
		return Outcome{}, apperr.Internal(fmt.Sprintf("append outcome failed: %v", err))
	}

	tag, err := tx.Exec(ctx, upsertLeadStateQuery,
		p.LeadID, p.TenantID,
		p.NewState.CurrentStage, p.NewState.LastOutcomeType, p.NewState.LastOutcomeAt,
		p.NewState.WonFlag, p.NewState.LostFlag, p.NewState.InvalidFlag,
		p.ExpectedVersion,
	)
	if err != nil {
		return Outcome{}, apperr.Internal(fmt.Sprintf("upsert lead state failed: %v", err))
	}
	if tag.RowsAffected() == 0 {
		return Outcome{}, ErrStateVersionConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return Outcome{}, apperr.Internal(fmt.Sprintf("commit outcome tx failed: %v", err))
	}
	return row, nil
}

// ListOutcomes returns a lead's outcome history ordered by occurred_at
// descending.
func (r *Repository) ListOutcomes(ctx context.Context, tenantID, leadID uuid.UUID, limit int) ([]Outcome, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, listOutcomesQuery, leadID, tenantID, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list outcomes failed: %v", err))
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var metadataJSON []byte
		if err := rows.Scan(
			&o.ID, &o.TenantID, &o.LeadID, &o.OutcomeType, &o.OutcomeStage,
			&o.OccurredAt, &o.RecordedBy, &o.Notes, &metadataJSON, &o.CreatedAt,
		); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan outcome failed: %v", err))
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &o.Metadata); err != nil {
				return nil, apperr.Internal(fmt.Sprintf("decode outcome metadata failed: %v", err))
			}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
