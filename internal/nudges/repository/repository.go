// Package repository persists admin alerts and reads the stale-lead view
// they are detected from.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lead_outcomes_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Stale leads are high-intent (tier A/B, near-term timeline) leads still
// at the top of the funnel, or with no recorded outcome at all, whose last
// touch is older than the cutoff. The LEFT JOIN covers the no-state case.
const listStaleLeadsQuery = `
	SELECT l.id, l.tier, l.timeline_bucket, s.current_stage,
		GREATEST(l.last_activity_at, l.last_sms_reply_at) AS last_touch_at
	FROM leads l
	LEFT JOIN lead_states s ON s.lead_id = l.id AND s.tenant_id = l.tenant_id
	WHERE l.tenant_id = $1
		AND l.tier IN ('A', 'B')
		AND l.timeline_bucket IN ('0-30', '31-90')
		AND (s.lead_id IS NULL OR s.current_stage = 'top_of_funnel')
		AND COALESCE(GREATEST(l.last_activity_at, l.last_sms_reply_at), 'epoch'::timestamptz) < $2
	ORDER BY last_touch_at ASC NULLS FIRST
	LIMIT $3
`

const hasAlertForDayQuery = `
	SELECT EXISTS (
		SELECT 1 FROM admin_alerts
		WHERE tenant_id = $1 AND code = $2
			AND dismissed_at IS NULL
			AND created_at >= $3 AND created_at < $4
	)
`

const insertAlertQuery = `
	INSERT INTO admin_alerts (tenant_id, code, severity, evidence)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
`

const listAlertsQuery = `
	SELECT id, tenant_id, code, severity, evidence,
		created_at, dismissed_at, dismissed_by
	FROM admin_alerts
	WHERE tenant_id = $1 AND ($2 = false OR dismissed_at IS NULL)
	ORDER BY created_at DESC
	LIMIT $3
`

const dismissAlertQuery = `
	UPDATE admin_alerts
	SET dismissed_at = now(), dismissed_by = $3
	WHERE id = $1 AND tenant_id = $2 AND dismissed_at IS NULL
`

// StaleLead is one row of the missing-outcomes view.
type StaleLead struct {
	LeadID         uuid.UUID
	Tier           string
	TimelineBucket string
	CurrentStage   *string
	LastTouchAt    *time.Time
}

// Alert is one stored admin alert.
type Alert struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Code        string
	Severity    string
	Evidence    json.RawMessage
	CreatedAt   time.Time
	DismissedAt *time.Time
	DismissedBy *uuid.UUID
}

// Repository provides alert persistence and the stale-lead read.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the nudges repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListStaleLeads returns high-intent leads with no touch since the cutoff,
// oldest first.
func (r *Repository) ListStaleLeads(ctx context.Context, tenantID uuid.UUID, cutoff time.Time, limit int) ([]StaleLead, error) {
	if limit < 1 || limit > 1000 {
		limit = 200
	}

	rows, err := r.pool.Query(ctx, listStaleLeadsQuery, tenantID, cutoff, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list stale leads failed: %v", err))
	}
	defer rows.Close()

	var out []StaleLead
	for rows.Next() {
		var lead StaleLead
		if err := rows.Scan(&lead.LeadID, &lead.Tier, &lead.TimelineBucket, &lead.CurrentStage, &lead.LastTouchAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan stale lead failed: %v", err))
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

// HasAlertForDay reports whether an undismissed alert with the code was
// created inside [dayStart, dayEnd).
func (r *Repository) HasAlertForDay(ctx context.Context, tenantID uuid.UUID, code string, dayStart, dayEnd time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, hasAlertForDayQuery, tenantID, code, dayStart, dayEnd).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("check alert dedup failed: %v", err))
	}
	return exists, nil
}

// CreateAlert stores one alert with its evidence payload.
func (r *Repository) CreateAlert(ctx context.Context, tenantID uuid.UUID, code, severity string, evidence any) (Alert, error) {
	evidenceJSON, err := json.Marshal(evidence)
	if err != nil {
		return Alert{}, apperr.Internal(fmt.Sprintf("marshal alert evidence failed: %v", err))
	}

	alert := Alert{
		TenantID: tenantID,
		Code:     code,
		Severity: severity,
		Evidence: evidenceJSON,
	}
	err = r.pool.QueryRow(ctx, insertAlertQuery, tenantID, code, severity, evidenceJSON).
		Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return Alert{}, apperr.Internal(fmt.Sprintf("insert alert failed: %v", err))
	}
	return alert, nil
}

// ListAlerts returns the tenant's alerts, newest first. When undismissedOnly
// is set, dismissed alerts are filtered out.
func (r *Repository) ListAlerts(ctx context.Context, tenantID uuid.UUID, undismissedOnly bool, limit int) ([]Alert, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, listAlertsQuery, tenantID, undismissedOnly, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list alerts failed: %v", err))
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var alert Alert
		if err := rows.Scan(
			&alert.ID, &alert.TenantID, &alert.Code, &alert.Severity,
			&alert.Evidence, &alert.CreatedAt, &alert.DismissedAt, &alert.DismissedBy,
		); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan alert failed: %v", err))
		}
		out = append(out, alert)
	}
	return out, rows.Err()
}

// DismissAlert marks an undismissed alert as dismissed by the principal.
// Dismissing an already-dismissed or unknown alert returns NotFound.
func (r *Repository) DismissAlert(ctx context.Context, tenantID, alertID, dismissedBy uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, dismissAlertQuery, alertID, tenantID, dismissedBy)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("dismiss alert failed: %v", err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("alert not found")
	}
	return nil
}
