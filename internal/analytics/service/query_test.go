package service

import (
	"context"
	"testing"
	"time"

	"lead_outcomes_backend/internal/analytics/repository"
	"lead_outcomes_backend/platform/apperr"

	"github.com/google/uuid"
)

type captureStore struct {
	fakeStore
	filter repository.WinRateFilter
}

func (c *captureStore) QuerySourceWinRates(_ context.Context, _ uuid.UUID, f repository.WinRateFilter) ([]repository.WinRateRow, error) {
	c.filter = f
	return nil, nil
}

func (c *captureStore) QueryGeoWinRates(_ context.Context, _ uuid.UUID, f repository.WinRateFilter) ([]repository.WinRateRow, error) {
	c.filter = f
	return nil, nil
}

func newTestQuerier(store Store) *Querier {
	q := NewQuerier(store)
	// Thursday 2026-08-20; the current week starts 08-17.
	q.now = func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) }
	return q
}

func TestWinRatesDefaults(t *testing.T) {
	store := &captureStore{}
	q := newTestQuerier(store)

	if _, err := q.WinRates(context.Background(), uuid.New(), DimensionSource, QueryParams{}); err != nil {
		t.Fatalf("WinRates: %v", err)
	}

	// Default range ends at the last completed week and spans 12 weeks.
	wantTo := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	wantFrom := wantTo.AddDate(0, 0, -7*11)
	if !store.filter.ToWeek.Equal(wantTo) {
		t.Errorf("toWeek = %v, want %v", store.filter.ToWeek, wantTo)
	}
	if !store.filter.FromWeek.Equal(wantFrom) {
		t.Errorf("fromWeek = %v, want %v", store.filter.FromWeek, wantFrom)
	}
	if store.filter.Intent != "all" {
		t.Errorf("intent = %q, want all", store.filter.Intent)
	}
	if store.filter.MinDenominator != 5 {
		t.Errorf("minDenominator = %d, want 5", store.filter.MinDenominator)
	}
	if store.filter.Limit != 50 || store.filter.Offset != 0 {
		t.Errorf("limit/offset = %d/%d, want 50/0", store.filter.Limit, store.filter.Offset)
	}
}

func TestWinRatesExplicitFilters(t *testing.T) {
	store := &captureStore{}
	q := newTestQuerier(store)

	minDen := 0
	_, err := q.WinRates(context.Background(), uuid.New(), DimensionGeo, QueryParams{
		FromWeek:       "2026-W30",
		ToWeek:         "2026-W33",
		Intent:         "seller",
		MinDenominator: &minDen,
		Page:           3,
		PageSize:       25,
	})
	if err != nil {
		t.Fatalf("WinRates: %v", err)
	}

	if got := WeekLabel(store.filter.FromWeek); got != "2026-W30" {
		t.Errorf("fromWeek = %s, want 2026-W30", got)
	}
	if got := WeekLabel(store.filter.ToWeek); got != "2026-W33" {
		t.Errorf("toWeek = %s, want 2026-W33", got)
	}
	if store.filter.Intent != "seller" {
		t.Errorf("intent = %q, want seller", store.filter.Intent)
	}
	if store.filter.MinDenominator != 0 {
		t.Errorf("minDenominator = %d, want 0", store.filter.MinDenominator)
	}
	if store.filter.Limit != 25 || store.filter.Offset != 50 {
		t.Errorf("limit/offset = %d/%d, want 25/50", store.filter.Limit, store.filter.Offset)
	}
}

func TestWinRatesRejectsBadFilters(t *testing.T) {
	q := newTestQuerier(&captureStore{})

	tests := []struct {
		name   string
		params QueryParams
	}{
		{"bad week label", QueryParams{FromWeek: "nonsense"}},
		{"inverted range", QueryParams{FromWeek: "2026-W33", ToWeek: "2026-W30"}},
		{"range too wide", QueryParams{FromWeek: "2025-W01", ToWeek: "2026-W30"}},
		{"unknown intent", QueryParams{Intent: "landlord"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := q.WinRates(context.Background(), uuid.New(), DimensionSource, tt.params)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}
