package tenants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lead_outcomes_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resolveBySlugQuery = `
	SELECT id, slug, name, created_at
	FROM tenants
	WHERE slug = $1
`

const listTenantsQuery = `
	SELECT id, slug, name, created_at
	FROM tenants
	ORDER BY slug
`

// Repository provides read access to the tenant registry.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tenant repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ResolveBySlug returns the tenant for a human-facing slug.
func (r *Repository) ResolveBySlug(ctx context.Context, slug string) (Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return Tenant{}, apperr.NotFound("unknown tenant")
	}

	var t Tenant
	err := r.pool.QueryRow(ctx, resolveBySlugQuery, slug).Scan(&t.ID, &t.Slug, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, apperr.NotFound("unknown tenant")
		}
		return Tenant{}, apperr.Internal(fmt.Sprintf("resolve tenant failed: %v", err))
	}
	return t, nil
}

// List returns every registered tenant. Used by the scheduled jobs to fan
// out per-tenant runs.
func (r *Repository) List(ctx context.Context) ([]Tenant, error) {
	rows, err := r.pool.Query(ctx, listTenantsQuery)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list tenants failed: %v", err))
	}
	defer rows.Close()

	var out []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.CreatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan tenant failed: %v", err))
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
