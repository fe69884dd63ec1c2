package repository

import (
	"strings"
	"testing"
)

// Every query in this package must be tenant-scoped. These tests pin the
// scoping fragments so a refactor cannot silently drop them.

func TestWeekEntriesQueryReadsFrozenSnapshot(t *testing.T) {
	query := strings.ToLower(listWeekEntriesQuery)

	if !strings.Contains(query, "tenant_id = $1") {
		t.Fatal("week entries query must be tenant-scoped")
	}
	if !strings.Contains(query, "occurred_at >= $2") || !strings.Contains(query, "occurred_at < $3") {
		t.Fatal("week entries query must use a half-open occurred_at window")
	}
	// Dimension keys must come from the snapshot, never a join to leads.
	for _, fragment := range []string{
		"metadata->'attribution'->>'sourcekey'",
		"metadata->'attribution'->>'geokey'",
		"metadata->'attribution'->>'intenttype'",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected snapshot fragment %q", fragment)
		}
	}
	if strings.Contains(query, "join") {
		t.Fatal("week entries query must not join the live leads table")
	}
}

func TestReplaceWeekQueriesAreTenantScoped(t *testing.T) {
	for name, query := range map[string]string{
		"upsert source": upsertSourceRowQuery,
		"upsert geo":    upsertGeoRowQuery,
	} {
		lowered := strings.ToLower(query)
		if !strings.Contains(lowered, "on conflict (tenant_id, week_start,") {
			t.Errorf("%s query must upsert on the tenant-scoped week key", name)
		}
	}

	for name, query := range map[string]string{
		"delete source": deleteStaleSourceRowsQuery,
		"delete geo":    deleteStaleGeoRowsQuery,
	} {
		lowered := strings.ToLower(query)
		if !strings.Contains(lowered, "tenant_id = $1") || !strings.Contains(lowered, "week_start = $2") {
			t.Errorf("%s query must be scoped to tenant and week", name)
		}
	}
}

func TestWinRateQueriesFilterAndOrder(t *testing.T) {
	for name, query := range map[string]string{
		"source": querySourceWinRatesQuery,
		"geo":    queryGeoWinRatesQuery,
	} {
		lowered := strings.ToLower(query)
		if !strings.Contains(lowered, "tenant_id = $1") {
			t.Errorf("%s win-rate query must be tenant-scoped", name)
		}
		if !strings.Contains(lowered, "($4 = 'all' or intent_type = $4)") {
			t.Errorf("%s win-rate query must support the all-intents filter", name)
		}
		if !strings.Contains(lowered, "(won + lost) >= $5") {
			t.Errorf("%s win-rate query must apply the denominator floor", name)
		}
		if !strings.Contains(lowered, "order by win_rate desc nulls last") {
			t.Errorf("%s win-rate query must rank by win rate with null rates last", name)
		}
	}
}
