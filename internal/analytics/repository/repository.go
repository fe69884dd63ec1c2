// Package repository persists the weekly win-rate aggregates and reads the
// ledger slices they are computed from. Dimension keys always come out of
// the frozen attribution snapshot on the ledger row.
package repository

import (
	"context"
	"fmt"
	"time"

	"lead_outcomes_backend/internal/outcomes/domain"
	"lead_outcomes_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const intentUnknown = "unknown"

const listWeekEntriesQuery = `
	SELECT lead_id, outcome_type,
		COALESCE(metadata->'attribution'->>'sourceKey', ''),
		COALESCE(metadata->'attribution'->>'geoKey', ''),
		COALESCE(metadata->'attribution'->>'intentType', 'unknown')
	FROM lead_outcomes
	WHERE tenant_id = $1 AND occurred_at >= $2 AND occurred_at < $3
`

const upsertSourceRowQuery = `
	INSERT INTO agg_source_win_rates (
		tenant_id, week_start, source_key, intent_type,
		leads_entered, appointments, won, lost, win_rate, computed_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	ON CONFLICT (tenant_id, week_start, source_key, intent_type) DO UPDATE SET
		leads_entered = EXCLUDED.leads_entered,
		appointments = EXCLUDED.appointments,
		won = EXCLUDED.won,
		lost = EXCLUDED.lost,
		win_rate = EXCLUDED.win_rate,
		computed_at = now()
`

const deleteStaleSourceRowsQuery = `
	DELETE FROM agg_source_win_rates
	WHERE tenant_id = $1 AND week_start = $2
		AND NOT ((source_key || ':' || intent_type) = ANY($3))
`

const upsertGeoRowQuery = `
	INSERT INTO agg_local_win_rates (
		tenant_id, week_start, geo_key, intent_type,
		leads_entered, appointments, won, lost, win_rate, computed_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	ON CONFLICT (tenant_id, week_start, geo_key, intent_type) DO UPDATE SET
		leads_entered = EXCLUDED.leads_entered,
		appointments = EXCLUDED.appointments,
		won = EXCLUDED.won,
		lost = EXCLUDED.lost,
		win_rate = EXCLUDED.win_rate,
		computed_at = now()
`

const deleteStaleGeoRowsQuery = `
	DELETE FROM agg_local_win_rates
	WHERE tenant_id = $1 AND week_start = $2
		AND NOT ((geo_key || ':' || intent_type) = ANY($3))
`

const querySourceWinRatesQuery = `
	SELECT week_start, source_key, intent_type,
		leads_entered, appointments, won, lost, win_rate
	FROM agg_source_win_rates
	WHERE tenant_id = $1
		AND week_start >= $2 AND week_start <= $3
		AND ($4 = 'all' OR intent_type = $4)
		AND (won + lost) >= $5
	ORDER BY win_rate DESC NULLS LAST, week_start DESC, source_key
	LIMIT $6 OFFSET $7
`

const queryGeoWinRatesQuery = `
	SELECT week_start, geo_key, intent_type,
		leads_entered, appointments, won, lost, win_rate
	FROM agg_local_win_rates
	WHERE tenant_id = $1
		AND week_start >= $2 AND week_start <= $3
		AND ($4 = 'all' OR intent_type = $4)
		AND (won + lost) >= $5
	ORDER BY win_rate DESC NULLS LAST, week_start DESC, geo_key
	LIMIT $6 OFFSET $7
`

// WeekEntry is one ledger row projected for aggregation.
type WeekEntry struct {
	LeadID       uuid.UUID
	OutcomeType  domain.OutcomeType
	SourceKey    string
	GeoKey       string
	IntentBucket string
}

// AggregateRow is one computed (dimension, intent) bucket for a week.
type AggregateRow struct {
	DimensionKey string
	IntentBucket string
	LeadsEntered int
	Appointments int
	Won          int
	Lost         int
	// WinRate is nil when won+lost is zero.
	WinRate *float64
}

// WinRateRow is one stored aggregate row returned by the query endpoints.
type WinRateRow struct {
	WeekStart    time.Time
	DimensionKey string
	IntentBucket string
	LeadsEntered int
	Appointments int
	Won          int
	Lost         int
	WinRate      *float64
}

// WinRateFilter narrows a win-rate query. All fields are required; the
// service layer applies defaults before calling.
type WinRateFilter struct {
	FromWeek       time.Time
	ToWeek         time.Time
	Intent         string // buyer, seller or all
	MinDenominator int
	Limit          int
	Offset         int
}

// Repository provides aggregate persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the analytics repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListWeekEntries reads every ledger row whose occurred_at falls in
// [from, to) for the tenant.
func (r *Repository) ListWeekEntries(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]WeekEntry, error) {
	rows, err := r.pool.Query(ctx, listWeekEntriesQuery, tenantID, from, to)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list week entries failed: %v", err))
	}
	defer rows.Close()

	var out []WeekEntry
	for rows.Next() {
		var e WeekEntry
		if err := rows.Scan(&e.LeadID, &e.OutcomeType, &e.SourceKey, &e.GeoKey, &e.IntentBucket); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan week entry failed: %v", err))
		}
		if e.IntentBucket == "" {
			e.IntentBucket = intentUnknown
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ReplaceSourceWeek upserts the computed source rows for one week and
// removes buckets that no longer exist, in a single transaction.
func (r *Repository) ReplaceSourceWeek(ctx context.Context, tenantID uuid.UUID, weekStart time.Time, aggRows []AggregateRow) error {
	return r.replaceWeek(ctx, tenantID, weekStart, aggRows, upsertSourceRowQuery, deleteStaleSourceRowsQuery)
}

// ReplaceGeoWeek is ReplaceSourceWeek for the geo aggregate table.
func (r *Repository) ReplaceGeoWeek(ctx context.Context, tenantID uuid.UUID, weekStart time.Time, aggRows []AggregateRow) error {
	return r.replaceWeek(ctx, tenantID, weekStart, aggRows, upsertGeoRowQuery, deleteStaleGeoRowsQuery)
}

func (r *Repository) replaceWeek(ctx context.Context, tenantID uuid.UUID, weekStart time.Time, aggRows []AggregateRow, upsertQuery, deleteQuery string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("begin aggregate tx failed: %v", err))
	}
	defer tx.Rollback(ctx)

	keep := make([]string, 0, len(aggRows))
	for _, row := range aggRows {
		keep = append(keep, row.DimensionKey+":"+row.IntentBucket)
		_, err := tx.Exec(ctx, upsertQuery,
			tenantID, weekStart, row.DimensionKey, row.IntentBucket,
			row.LeadsEntered, row.Appointments, row.Won, row.Lost, row.WinRate,
		)
		if err != nil {
			return apperr.Internal(fmt.Sprintf("upsert aggregate row failed: %v", err))
		}
	}

	// Rebuilding a week must also drop buckets whose source rows were
	// re-attributed since the last run.
	if _, err := tx.Exec(ctx, deleteQuery, tenantID, weekStart, keep); err != nil {
		return apperr.Internal(fmt.Sprintf("delete stale aggregate rows failed: %v", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal(fmt.Sprintf("commit aggregate tx failed: %v", err))
	}
	return nil
}

// QuerySourceWinRates returns stored source aggregates matching the filter,
// ordered by win rate descending with empty-denominator rows last.
func (r *Repository) QuerySourceWinRates(ctx context.Context, tenantID uuid.UUID, f WinRateFilter) ([]WinRateRow, error) {
	return r.queryWinRates(ctx, tenantID, f, querySourceWinRatesQuery)
}

// QueryGeoWinRates is QuerySourceWinRates for the geo aggregate table.
func (r *Repository) QueryGeoWinRates(ctx context.Context, tenantID uuid.UUID, f WinRateFilter) ([]WinRateRow, error) {
	return r.queryWinRates(ctx, tenantID, f, queryGeoWinRatesQuery)
}

func (r *Repository) queryWinRates(ctx context.Context, tenantID uuid.UUID, f WinRateFilter, query string) ([]WinRateRow, error) {
	rows, err := r.pool.Query(ctx, query,
		tenantID, f.FromWeek, f.ToWeek, f.Intent, f.MinDenominator, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("query win rates failed: %v", err))
	}
	defer rows.Close()

	var out []WinRateRow
	for rows.Next() {
		var row WinRateRow
		if err := rows.Scan(
			&row.WeekStart, &row.DimensionKey, &row.IntentBucket,
			&row.LeadsEntered, &row.Appointments, &row.Won, &row.Lost, &row.WinRate,
		); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan win rate row failed: %v", err))
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
