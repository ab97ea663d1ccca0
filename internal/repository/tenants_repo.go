package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"roomserve/internal/domain"
)

// TenantsRepo is platform-level data; only admins reach it.
type TenantsRepo interface {
	GetTenant(ctx context.Context, id string) (*domain.Tenant, error)
	ListTenants(ctx context.Context, status domain.TenantStatus) ([]*domain.Tenant, error)
	CreateTenant(ctx context.Context, t *domain.Tenant) error
	SetTenantStatus(ctx context.Context, id string, status domain.TenantStatus, at time.Time) (*domain.Tenant, error)
}

// ============================================
// Memory
// ============================================

type MemoryTenantsRepo struct {
	mu      sync.RWMutex
	tenants map[string]*domain.Tenant
}

func NewMemoryTenantsRepo() *MemoryTenantsRepo {
	return &MemoryTenantsRepo{tenants: map[string]*domain.Tenant{}}
}

var _ TenantsRepo = (*MemoryTenantsRepo)(nil)

func (r *MemoryTenantsRepo) GetTenant(_ context.Context, id string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
	}
	return t.Clone(), nil
}

func (r *MemoryTenantsRepo) ListTenants(_ context.Context, status domain.TenantStatus) ([]*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryTenantsRepo) CreateTenant(_ context.Context, t *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[t.ID]; ok {
		return domain.Invalid("tenant %s already exists", t.ID)
	}
	r.tenants[t.ID] = t.Clone()
	return nil
}

func (r *MemoryTenantsRepo) SetTenantStatus(_ context.Context, id string, status domain.TenantStatus, at time.Time) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
	}
	t.Status = status
	t.UpdatedAt = at
	return t.Clone(), nil
}

// ============================================
// Postgres
// ============================================

type PostgresTenantsRepo struct {
	db *sql.DB
}

func NewPostgresTenantsRepo(db *sql.DB) *PostgresTenantsRepo {
	return &PostgresTenantsRepo{db: db}
}

var _ TenantsRepo = (*PostgresTenantsRepo)(nil)

const tenantColumns = `id, name, COALESCE(owner_name, '') AS owner_name, status, created_at, updated_at`

func scanTenant(r rowScanner) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := r.Scan(&t.ID, &t.Name, &t.OwnerName, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTenantsRepo) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	t, err := scanTenant(r.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

func (r *PostgresTenantsRepo) ListTenants(ctx context.Context, status domain.TenantStatus) ([]*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	out := []*domain.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresTenantsRepo) CreateTenant(ctx context.Context, t *domain.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, owner_name, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Name, nullString(t.OwnerName), string(t.Status), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", mapCommonPQError(err))
	}
	return nil
}

func (r *PostgresTenantsRepo) SetTenantStatus(ctx context.Context, id string, status domain.TenantStatus, at time.Time) (*domain.Tenant, error) {
	t, err := scanTenant(r.db.QueryRowContext(ctx,
		`UPDATE tenants SET status = $1, updated_at = $2 WHERE id = $3 RETURNING `+tenantColumns,
		string(status), at, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update tenant status: %w", err)
	}
	return t, nil
}
