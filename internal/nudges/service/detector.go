// Package service contains the stale-lead nudge detection logic.
package service

import (
	"context"
	"time"

	"lead_outcomes_backend/internal/nudges/repository"
	"lead_outcomes_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	// AlertCodeStaleLeads identifies the stale high-value lead nudge.
	AlertCodeStaleLeads = "stale_high_value_leads"

	SeverityWarning = "warning"

	// detectionLimit caps how many leads one alert enumerates.
	detectionLimit = 200
)

// Store is the persistence surface the detector depends on.
type Store interface {
	ListStaleLeads(ctx context.Context, tenantID uuid.UUID, cutoff time.Time, limit int) ([]repository.StaleLead, error)
	HasAlertForDay(ctx context.Context, tenantID uuid.UUID, code string, dayStart, dayEnd time.Time) (bool, error)
	CreateAlert(ctx context.Context, tenantID uuid.UUID, code, severity string, evidence any) (repository.Alert, error)
	ListAlerts(ctx context.Context, tenantID uuid.UUID, undismissedOnly bool, limit int) ([]repository.Alert, error)
	DismissAlert(ctx context.Context, tenantID, alertID, dismissedBy uuid.UUID) error
}

// StaleLeadEvidence is the alert's evidence payload.
type StaleLeadEvidence struct {
	LeadIDs          []uuid.UUID `json:"leadIds"`
	Count            int         `json:"count"`
	OldestActivityAt *time.Time  `json:"oldestActivityAt"`
	Cutoff           time.Time   `json:"cutoff"`
}

// Detector finds high-intent leads going stale and raises at most one
// alert per tenant per UTC calendar day.
type Detector struct {
	store       Store
	log         *logger.Logger
	staleWindow time.Duration
}

// NewDetector creates the nudge detector. staleWindow is how long a lead
// may go untouched before it counts as stale.
func NewDetector(store Store, log *logger.Logger, staleWindow time.Duration) *Detector {
	if staleWindow <= 0 {
		staleWindow = 7 * 24 * time.Hour
	}
	return &Detector{store: store, log: log, staleWindow: staleWindow}
}

// Run executes one detection pass for a tenant. Returns the number of
// stale leads found; zero when nothing is stale or today's alert already
// exists.
func (d *Detector) Run(ctx context.Context, tenantID uuid.UUID, now time.Time) (int, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	exists, err := d.store.HasAlertForDay(ctx, tenantID, AlertCodeStaleLeads, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	if exists {
		d.log.Debug("nudge already raised today", "tenantId", tenantID)
		return 0, nil
	}

	cutoff := now.Add(-d.staleWindow)
	stale, err := d.store.ListStaleLeads(ctx, tenantID, cutoff, detectionLimit)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	evidence := StaleLeadEvidence{
		LeadIDs: make([]uuid.UUID, len(stale)),
		Count:   len(stale),
		Cutoff:  cutoff,
	}
	for i, lead := range stale {
		evidence.LeadIDs[i] = lead.LeadID
		if lead.LastTouchAt != nil &&
			(evidence.OldestActivityAt == nil || lead.LastTouchAt.Before(*evidence.OldestActivityAt)) {
			evidence.OldestActivityAt = lead.LastTouchAt
		}
	}

	alert, err := d.store.CreateAlert(ctx, tenantID, AlertCodeStaleLeads, SeverityWarning, evidence)
	if err != nil {
		return 0, err
	}

	d.log.Info("stale lead nudge raised",
		"tenantId", tenantID,
		"alertId", alert.ID,
		"staleLeads", len(stale),
	)
	return len(stale), nil
}

// MissingOutcomes returns the operator view of stale high-intent leads,
// using the same criteria as the scheduled detection.
func (d *Detector) MissingOutcomes(ctx context.Context, tenantID uuid.UUID, now time.Time, limit int) ([]repository.StaleLead, error) {
	return d.store.ListStaleLeads(ctx, tenantID, now.UTC().Add(-d.staleWindow), limit)
}

// Alerts lists the tenant's alerts, newest first.
func (d *Detector) Alerts(ctx context.Context, tenantID uuid.UUID, undismissedOnly bool, limit int) ([]repository.Alert, error) {
	return d.store.ListAlerts(ctx, tenantID, undismissedOnly, limit)
}

// Dismiss marks an alert dismissed by the principal.
func (d *Detector) Dismiss(ctx context.Context, tenantID, alertID, dismissedBy uuid.UUID) error {
	return d.store.DismissAlert(ctx, tenantID, alertID, dismissedBy)
}
