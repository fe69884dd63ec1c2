package service

import (
	"context"
	"testing"
	"time"

	"lead_outcomes_backend/internal/nudges/repository"
	"lead_outcomes_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	stale        []repository.StaleLead
	alerts       []repository.Alert
	listedCutoff time.Time
	lastEvidence any
}

func (f *fakeStore) ListStaleLeads(_ context.Context, _ uuid.UUID, cutoff time.Time, _ int) ([]repository.StaleLead, error) {
	f.listedCutoff = cutoff
	return f.stale, nil
}

func (f *fakeStore) HasAlertForDay(_ context.Context, tenantID uuid.UUID, code string, dayStart, dayEnd time.Time) (bool, error) {
	for _, alert := range f.alerts {
		if alert.TenantID == tenantID && alert.Code == code && alert.DismissedAt == nil &&
			!alert.CreatedAt.Before(dayStart) && alert.CreatedAt.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateAlert(_ context.Context, tenantID uuid.UUID, code, severity string, evidence any) (repository.Alert, error) {
	f.lastEvidence = evidence
	alert := repository.Alert{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Code:      code,
		Severity:  severity,
		CreatedAt: f.listedCutoff.Add(7 * 24 * time.Hour),
	}
	f.alerts = append(f.alerts, alert)
	return alert, nil
}

func (f *fakeStore) ListAlerts(_ context.Context, _ uuid.UUID, _ bool, _ int) ([]repository.Alert, error) {
	return f.alerts, nil
}

func (f *fakeStore) DismissAlert(_ context.Context, _, alertID, dismissedBy uuid.UUID) error {
	for i := range f.alerts {
		if f.alerts[i].ID == alertID {
			now := time.Now()
			f.alerts[i].DismissedAt = &now
			f.alerts[i].DismissedBy = &dismissedBy
		}
	}
	return nil
}

func staleLead(lastTouch *time.Time) repository.StaleLead {
	stage := "top_of_funnel"
	return repository.StaleLead{
		LeadID:         uuid.New(),
		Tier:           "A",
		TimelineBucket: "0-30",
		CurrentStage:   &stage,
		LastTouchAt:    lastTouch,
	}
}

func TestRunRaisesAlertWithEvidence(t *testing.T) {
	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{stale: []repository.StaleLead{
		staleLead(&older),
		staleLead(&newer),
		staleLead(nil), // never touched
	}}
	detector := NewDetector(store, logger.New("test"), 7*24*time.Hour)

	now := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	found, err := detector.Run(context.Background(), uuid.New(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if found != 3 {
		t.Errorf("found = %d, want 3", found)
	}

	wantCutoff := now.Add(-7 * 24 * time.Hour)
	if !store.listedCutoff.Equal(wantCutoff) {
		t.Errorf("cutoff = %v, want %v", store.listedCutoff, wantCutoff)
	}

	if len(store.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(store.alerts))
	}
	alert := store.alerts[0]
	if alert.Code != AlertCodeStaleLeads {
		t.Errorf("code = %q, want %q", alert.Code, AlertCodeStaleLeads)
	}
	if alert.Severity != SeverityWarning {
		t.Errorf("severity = %q, want %q", alert.Severity, SeverityWarning)
	}

	evidence, ok := store.lastEvidence.(StaleLeadEvidence)
	if !ok {
		t.Fatalf("evidence type = %T, want StaleLeadEvidence", store.lastEvidence)
	}
	if evidence.Count != 3 || len(evidence.LeadIDs) != 3 {
		t.Errorf("evidence count = %d with %d ids, want 3/3", evidence.Count, len(evidence.LeadIDs))
	}
	if evidence.OldestActivityAt == nil || !evidence.OldestActivityAt.Equal(older) {
		t.Errorf("oldestActivityAt = %v, want %v", evidence.OldestActivityAt, older)
	}
}

func TestRunDedupsSameDay(t *testing.T) {
	touch := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{stale: []repository.StaleLead{staleLead(&touch)}}
	detector := NewDetector(store, logger.New("test"), 7*24*time.Hour)
	tenantID := uuid.New()

	morning := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	if _, err := detector.Run(context.Background(), tenantID, morning); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// Pin today's alert so the fake's creation time is inside the day.
	store.alerts[0].CreatedAt = morning

	evening := time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC)
	found, err := detector.Run(context.Background(), tenantID, evening)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if found != 0 {
		t.Errorf("second run found = %d, want 0", found)
	}
	if len(store.alerts) != 1 {
		t.Errorf("alerts = %d, want 1 after same-day rerun", len(store.alerts))
	}

	// A dismissed alert no longer suppresses detection.
	if err := detector.Dismiss(context.Background(), tenantID, store.alerts[0].ID, uuid.New()); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	found, err = detector.Run(context.Background(), tenantID, evening)
	if err != nil {
		t.Fatalf("run after dismissal: %v", err)
	}
	if found != 1 {
		t.Errorf("run after dismissal found = %d, want 1", found)
	}
}

func TestRunNoStaleLeadsNoAlert(t *testing.T) {
	store := &fakeStore{}
	detector := NewDetector(store, logger.New("test"), 7*24*time.Hour)

	found, err := detector.Run(context.Background(), uuid.New(), time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if found != 0 || len(store.alerts) != 0 {
		t.Errorf("found = %d, alerts = %d, want no alert when nothing is stale", found, len(store.alerts))
	}
}
