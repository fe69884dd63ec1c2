package service

import (
	"context"
	"fmt"
	"time"

	"lead_outcomes_backend/internal/analytics/repository"
	"lead_outcomes_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	defaultRangeWeeks     = 12
	maxRangeWeeks         = 26
	defaultMinDenominator = 5
	defaultPageSize       = 50
	maxPageSize           = 500
)

// Dimension selects which aggregate table a query reads.
type Dimension string

const (
	DimensionSource Dimension = "source"
	DimensionGeo    Dimension = "geo"
)

// QueryParams are the raw, caller-supplied query filters. Zero values get
// defaults; invalid values get a validation error.
type QueryParams struct {
	FromWeek       string // ISO week label, e.g. "2026-W30"
	ToWeek         string
	Intent         string // buyer, seller or all
	MinDenominator *int
	Page           int
	PageSize       int
}

// Querier serves the win-rate read endpoints from the aggregate tables.
type Querier struct {
	store Store
	now   func() time.Time
}

// NewQuerier creates the win-rate query service.
func NewQuerier(store Store) *Querier {
	return &Querier{store: store, now: time.Now}
}

// WinRates returns stored aggregates for the dimension, filtered and
// ordered by win rate descending.
func (q *Querier) WinRates(ctx context.Context, tenantID uuid.UUID, dim Dimension, params QueryParams) ([]repository.WinRateRow, error) {
	filter, err := q.buildFilter(params)
	if err != nil {
		return nil, err
	}

	switch dim {
	case DimensionSource:
		return q.store.QuerySourceWinRates(ctx, tenantID, filter)
	case DimensionGeo:
		return q.store.QueryGeoWinRates(ctx, tenantID, filter)
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown dimension %q", dim))
	}
}

func (q *Querier) buildFilter(params QueryParams) (repository.WinRateFilter, error) {
	var zero repository.WinRateFilter

	toWeek := WeekStartOf(q.now()).AddDate(0, 0, -7)
	if params.ToWeek != "" {
		parsed, err := ParseWeekLabel(params.ToWeek)
		if err != nil {
			return zero, apperr.Validation(err.Error())
		}
		toWeek = parsed
	}

	fromWeek := toWeek.AddDate(0, 0, -7*(defaultRangeWeeks-1))
	if params.FromWeek != "" {
		parsed, err := ParseWeekLabel(params.FromWeek)
		if err != nil {
			return zero, apperr.Validation(err.Error())
		}
		fromWeek = parsed
	}

	if toWeek.Before(fromWeek) {
		return zero, apperr.Validation("toWeek is before fromWeek")
	}
	if toWeek.Sub(fromWeek) > maxRangeWeeks*7*24*time.Hour {
		return zero, apperr.Validation(fmt.Sprintf("week range exceeds %d weeks", maxRangeWeeks))
	}

	intent := params.Intent
	switch intent {
	case "":
		intent = "all"
	case "buyer", "seller", "all":
	default:
		return zero, apperr.Validation(fmt.Sprintf("unknown intent %q", params.Intent))
	}

	minDenominator := defaultMinDenominator
	if params.MinDenominator != nil {
		if *params.MinDenominator < 0 {
			return zero, apperr.Validation("minDenominator must not be negative")
		}
		minDenominator = *params.MinDenominator
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	return repository.WinRateFilter{
		FromWeek:       fromWeek,
		ToWeek:         toWeek,
		Intent:         intent,
		MinDenominator: minDenominator,
		Limit:          pageSize,
		Offset:         (page - 1) * pageSize,
	}, nil
}
