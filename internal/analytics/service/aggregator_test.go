package service

import (
	"context"
	"testing"
	"time"

	"lead_outcomes_backend/internal/analytics/repository"
	"lead_outcomes_backend/internal/outcomes/domain"
	"lead_outcomes_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	entries    []repository.WeekEntry
	sourceRows map[string][]repository.AggregateRow // keyed by week start date
	geoRows    map[string][]repository.AggregateRow
	listedFrom time.Time
	listedTo   time.Time
}

func newFakeStore(entries []repository.WeekEntry) *fakeStore {
	return &fakeStore{
		entries:    entries,
		sourceRows: make(map[string][]repository.AggregateRow),
		geoRows:    make(map[string][]repository.AggregateRow),
	}
}

func (f *fakeStore) ListWeekEntries(_ context.Context, _ uuid.UUID, from, to time.Time) ([]repository.WeekEntry, error) {
	f.listedFrom = from
	f.listedTo = to
	return f.entries, nil
}

func (f *fakeStore) ReplaceSourceWeek(_ context.Context, _ uuid.UUID, weekStart time.Time, rows []repository.AggregateRow) error {
	f.sourceRows[weekStart.Format("2006-01-02")] = rows
	return nil
}

func (f *fakeStore) ReplaceGeoWeek(_ context.Context, _ uuid.UUID, weekStart time.Time, rows []repository.AggregateRow) error {
	f.geoRows[weekStart.Format("2006-01-02")] = rows
	return nil
}

func (f *fakeStore) QuerySourceWinRates(_ context.Context, _ uuid.UUID, _ repository.WinRateFilter) ([]repository.WinRateRow, error) {
	return nil, nil
}

func (f *fakeStore) QueryGeoWinRates(_ context.Context, _ uuid.UUID, _ repository.WinRateFilter) ([]repository.WinRateRow, error) {
	return nil, nil
}

func entry(leadID uuid.UUID, outcome domain.OutcomeType, source, geo, intent string) repository.WeekEntry {
	return repository.WeekEntry{
		LeadID:       leadID,
		OutcomeType:  outcome,
		SourceKey:    source,
		GeoKey:       geo,
		IntentBucket: intent,
	}
}

func TestRunWeekJourneyCountsOnce(t *testing.T) {
	// One lead walks the whole funnel inside the week: it must count once
	// per counter, and win rate is 1/1.
	leadID := uuid.New()
	store := newFakeStore([]repository.WeekEntry{
		entry(leadID, domain.OutcomeContacted, "google_ads", "dublin_oh", "seller"),
		entry(leadID, domain.OutcomeAppointmentSet, "google_ads", "dublin_oh", "seller"),
		entry(leadID, domain.OutcomeListingSigned, "google_ads", "dublin_oh", "seller"),
		entry(leadID, domain.OutcomeClosedWon, "google_ads", "dublin_oh", "seller"),
	})
	agg := NewAggregator(store, logger.New("test"))

	processed, err := agg.RunWeek(context.Background(), uuid.New(), time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RunWeek: %v", err)
	}
	if processed != 4 {
		t.Errorf("processed = %d, want 4", processed)
	}

	wantStart := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	if !store.listedFrom.Equal(wantStart) || !store.listedTo.Equal(wantStart.AddDate(0, 0, 7)) {
		t.Errorf("listed window [%v, %v), want [%v, %v)", store.listedFrom, store.listedTo, wantStart, wantStart.AddDate(0, 0, 7))
	}

	rows := store.sourceRows["2026-08-17"]
	if len(rows) != 1 {
		t.Fatalf("source rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.DimensionKey != "google_ads" || row.IntentBucket != "seller" {
		t.Errorf("bucket = %s/%s, want google_ads/seller", row.DimensionKey, row.IntentBucket)
	}
	if row.LeadsEntered != 1 || row.Appointments != 1 || row.Won != 1 || row.Lost != 0 {
		t.Errorf("counts = %+v, want 1/1/1/0", row)
	}
	if row.WinRate == nil || *row.WinRate != 1.0 {
		t.Errorf("winRate = %v, want 1.0", row.WinRate)
	}

	geoRows := store.geoRows["2026-08-17"]
	if len(geoRows) != 1 || geoRows[0].DimensionKey != "dublin_oh" {
		t.Fatalf("geo rows = %+v, want one dublin_oh bucket", geoRows)
	}
}

func TestRunWeekDistinctLeadsAcrossBuckets(t *testing.T) {
	leadA := uuid.New()
	leadB := uuid.New()
	leadC := uuid.New()
	store := newFakeStore([]repository.WeekEntry{
		entry(leadA, domain.OutcomeContacted, "google_ads", "dublin_oh", "buyer"),
		entry(leadA, domain.OutcomeClosedLost, "google_ads", "dublin_oh", "buyer"),
		entry(leadB, domain.OutcomeContacted, "google_ads", "dublin_oh", "buyer"),
		entry(leadB, domain.OutcomeClosedWon, "google_ads", "dublin_oh", "buyer"),
		entry(leadC, domain.OutcomeContacted, "referral", "columbus_oh", "unknown"),
	})
	agg := NewAggregator(store, logger.New("test"))

	if _, err := agg.RunWeek(context.Background(), uuid.New(), time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RunWeek: %v", err)
	}

	rows := store.sourceRows["2026-08-17"]
	if len(rows) != 2 {
		t.Fatalf("source rows = %d, want 2", len(rows))
	}

	// Sorted by dimension key: google_ads before referral.
	ads := rows[0]
	if ads.DimensionKey != "google_ads" || ads.LeadsEntered != 2 || ads.Won != 1 || ads.Lost != 1 {
		t.Errorf("google_ads bucket = %+v, want 2 leads, 1 won, 1 lost", ads)
	}
	if ads.WinRate == nil || *ads.WinRate != 0.5 {
		t.Errorf("google_ads winRate = %v, want 0.5", ads.WinRate)
	}

	referral := rows[1]
	if referral.IntentBucket != "unknown" || referral.LeadsEntered != 1 {
		t.Errorf("referral bucket = %+v, want unknown intent with 1 lead", referral)
	}
	// No closed outcome: win rate is undefined, not zero.
	if referral.WinRate != nil {
		t.Errorf("referral winRate = %v, want nil", *referral.WinRate)
	}
}

func TestRunWeekIdempotent(t *testing.T) {
	leadID := uuid.New()
	store := newFakeStore([]repository.WeekEntry{
		entry(leadID, domain.OutcomeClosedWon, "zillow", "dublin_oh", "seller"),
	})
	agg := NewAggregator(store, logger.New("test"))
	ref := time.Date(2026, 8, 19, 6, 0, 0, 0, time.UTC)
	tenantID := uuid.New()

	if _, err := agg.RunWeek(context.Background(), tenantID, ref); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := store.sourceRows["2026-08-17"]

	if _, err := agg.RunWeek(context.Background(), tenantID, ref); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := store.sourceRows["2026-08-17"]

	if len(first) != len(second) {
		t.Fatalf("row count changed across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].DimensionKey != second[i].DimensionKey ||
			first[i].LeadsEntered != second[i].LeadsEntered ||
			first[i].Won != second[i].Won ||
			first[i].Lost != second[i].Lost {
			t.Errorf("row %d changed across runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRunPreviousWeekTargetsCompletedWeek(t *testing.T) {
	store := newFakeStore(nil)
	agg := NewAggregator(store, logger.New("test"))

	// Monday 2026-08-24: the completed week is the one starting 08-17.
	now := time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC)
	if _, err := agg.RunPreviousWeek(context.Background(), uuid.New(), now); err != nil {
		t.Fatalf("RunPreviousWeek: %v", err)
	}

	wantStart := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	if !store.listedFrom.Equal(wantStart) {
		t.Errorf("listed from %v, want %v", store.listedFrom, wantStart)
	}
}

func TestComputeSkipsEmptyDimension(t *testing.T) {
	rows := ComputeBySource([]repository.WeekEntry{
		entry(uuid.New(), domain.OutcomeContacted, "", "dublin_oh", "buyer"),
	})
	if len(rows) != 0 {
		t.Errorf("rows = %+v, want none for empty source key", rows)
	}
}
