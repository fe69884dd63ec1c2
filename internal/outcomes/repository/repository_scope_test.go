package repository

import (
	"strings"
	"testing"
)

// Every query in this package must be tenant-scoped. These tests pin the
// scoping fragments so a refactor cannot silently drop them.

func TestAttributionQueryIsTenantScoped(t *testing.T) {
	query := strings.ToLower(getAttributionQuery)

	for _, fragment := range []string{"from leads", "id = $1", "tenant_id = $2"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected tenant-scoped query fragment %q to be present", fragment)
		}
	}
}

func TestLeadStateQueryIsTenantScoped(t *testing.T) {
	query := strings.ToLower(getLeadStateQuery)

	if !strings.Contains(query, "lead_id = $1") || !strings.Contains(query, "tenant_id = $2") {
		t.Fatal("lead state query must filter by lead and tenant")
	}
}

func TestListOutcomesQueryIsTenantScopedAndOrdered(t *testing.T) {
	query := strings.ToLower(listOutcomesQuery)

	if !strings.Contains(query, "lead_id = $1") || !strings.Contains(query, "tenant_id = $2") {
		t.Fatal("outcome history query must filter by lead and tenant")
	}
	if !strings.Contains(query, "order by occurred_at desc") {
		t.Fatal("outcome history must be ordered by occurred_at descending")
	}
}

func TestUpsertLeadStateMergesFlagsMonotonically(t *testing.T) {
	query := strings.ToLower(upsertLeadStateQuery)

	for _, fragment := range []string{
		"won_flag = lead_states.won_flag or excluded.won_flag",
		"lost_flag = lead_states.lost_flag or excluded.lost_flag",
		"invalid_flag = lead_states.invalid_flag or excluded.invalid_flag",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected monotonic merge fragment %q", fragment)
		}
	}

	if !strings.Contains(query, "lead_states.version = $9") {
		t.Fatal("state upsert must assert the observed version")
	}
	if !strings.Contains(query, "lead_states.tenant_id = excluded.tenant_id") {
		t.Fatal("state upsert must not cross tenants")
	}
}
