package service

import (
	"context"
	"time"

	"lead_outcomes_backend/internal/analytics/repository"
	"lead_outcomes_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the analytics services depend on.
type Store interface {
	ListWeekEntries(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]repository.WeekEntry, error)
	ReplaceSourceWeek(ctx context.Context, tenantID uuid.UUID, weekStart time.Time, rows []repository.AggregateRow) error
	ReplaceGeoWeek(ctx context.Context, tenantID uuid.UUID, weekStart time.Time, rows []repository.AggregateRow) error
	QuerySourceWinRates(ctx context.Context, tenantID uuid.UUID, f repository.WinRateFilter) ([]repository.WinRateRow, error)
	QueryGeoWinRates(ctx context.Context, tenantID uuid.UUID, f repository.WinRateFilter) ([]repository.WinRateRow, error)
}

// Aggregator rebuilds the weekly win-rate aggregates from the ledger.
// Rebuilding the same week twice yields identical tables, so the scheduled
// job can safely re-run or backfill.
type Aggregator struct {
	store Store
	log   *logger.Logger
}

// NewAggregator creates the weekly aggregator.
func NewAggregator(store Store, log *logger.Logger) *Aggregator {
	return &Aggregator{store: store, log: log}
}

// RunWeek recomputes both aggregate tables for the week containing ref.
// Returns the number of ledger entries processed.
func (a *Aggregator) RunWeek(ctx context.Context, tenantID uuid.UUID, ref time.Time) (int, error) {
	weekStart := WeekStartOf(ref)
	weekEnd := weekStart.AddDate(0, 0, 7)

	entries, err := a.store.ListWeekEntries(ctx, tenantID, weekStart, weekEnd)
	if err != nil {
		return 0, err
	}

	if err := a.store.ReplaceSourceWeek(ctx, tenantID, weekStart, ComputeBySource(entries)); err != nil {
		return 0, err
	}
	if err := a.store.ReplaceGeoWeek(ctx, tenantID, weekStart, ComputeByGeo(entries)); err != nil {
		return 0, err
	}

	a.log.Info("week aggregated",
		"tenantId", tenantID,
		"week", WeekLabel(weekStart),
		"entries", len(entries),
	)
	return len(entries), nil
}

// RunPreviousWeek aggregates the most recently completed week, which is
// what the weekly schedule targets.
func (a *Aggregator) RunPreviousWeek(ctx context.Context, tenantID uuid.UUID, now time.Time) (int, error) {
	return a.RunWeek(ctx, tenantID, WeekStartOf(now).AddDate(0, 0, -7))
}
