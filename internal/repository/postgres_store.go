package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"roomserve/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Mapper describes how one entity type maps onto a table. Columns[0] is the
// primary key and "tenant_id" must be one of the columns.
type Mapper[E domain.TenantOwned] struct {
	Table   string
	Columns []string
	// Immutable columns are written on insert only.
	Immutable []string
	// Filters lists the columns accepted as ListFilter.Equals keys.
	Filters []string
	OrderBy string
	Scan    func(rowScanner) (E, error)
	// Values returns column values aligned with Columns.
	Values func(E) []any
	// MapError translates driver errors (constraint names etc.) into domain errors.
	MapError func(error) error
}

// PostgresStore is a Store over database/sql with lib/pq placeholders.
type PostgresStore[E domain.TenantOwned] struct {
	db *sql.DB
	m  Mapper[E]
}

func NewPostgresStore[E domain.TenantOwned](db *sql.DB, m Mapper[E]) *PostgresStore[E] {
	return &PostgresStore[E]{db: db, m: m}
}

func (s *PostgresStore[E]) mapErr(err error) error {
	if err != nil && s.m.MapError != nil {
		return s.m.MapError(err)
	}
	return err
}

func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

func (s *PostgresStore[E]) Insert(ctx context.Context, e E) error {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.m.Table, strings.Join(s.m.Columns, ", "), placeholders(1, len(s.m.Columns)))
	if _, err := s.db.ExecContext(ctx, query, s.m.Values(e)...); err != nil {
		return fmt.Errorf("insert into %s: %w", s.m.Table, s.mapErr(err))
	}
	return nil
}

func (s *PostgresStore[E]) FindByID(ctx context.Context, id string) (E, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		strings.Join(s.m.Columns, ", "), s.m.Table, s.m.Columns[0])
	e, err := s.m.Scan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		var zero E
		if errors.Is(err, sql.ErrNoRows) {
			return zero, domain.ErrNotFound
		}
		return zero, fmt.Errorf("select from %s: %w", s.m.Table, err)
	}
	return e, nil
}

func (s *PostgresStore[E]) Find(ctx context.Context, f ListFilter) ([]E, error) {
	where := []string{}
	args := []any{}

	if f.TenantScoped {
		if f.TenantID == nil {
			where = append(where, "tenant_id IS NULL")
		} else {
			args = append(args, *f.TenantID)
			where = append(where, fmt.Sprintf("tenant_id = $%d", len(args)))
		}
	}

	keys := make([]string, 0, len(f.Equals))
	for k := range f.Equals {
		if !contains(s.m.Filters, k) {
			return nil, domain.Invalid("unknown filter %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, f.Equals[k])
		where = append(where, fmt.Sprintf("%s = $%d", k, len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(s.m.Columns, ", "), s.m.Table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if s.m.OrderBy != "" {
		query += " ORDER BY " + s.m.OrderBy
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.m.Table, err)
	}
	defer rows.Close()

	out := []E{}
	for rows.Next() {
		e, err := s.m.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.m.Table, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update sets every mutable column. The tenant predicate makes the write a
// no-op (reported as not found) if the row changed owner since it was checked.
func (s *PostgresStore[E]) Update(ctx context.Context, e E, owner *string) error {
	n, err := s.update(ctx, e, owner)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type predicate struct {
	column string
	value  any
}

func (s *PostgresStore[E]) update(ctx context.Context, e E, owner *string, extra ...predicate) (int64, error) {
	values := s.m.Values(e)
	sets := []string{}
	args := []any{}
	for i, col := range s.m.Columns[1:] {
		if contains(s.m.Immutable, col) {
			continue
		}
		args = append(args, values[i+1])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	args = append(args, values[0], owner)
	where := fmt.Sprintf("%s = $%d AND tenant_id IS NOT DISTINCT FROM $%d", s.m.Columns[0], len(args)-1, len(args))
	for _, p := range extra {
		args = append(args, p.value)
		where += fmt.Sprintf(" AND %s = $%d", p.column, len(args))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", s.m.Table, strings.Join(sets, ", "), where)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", s.m.Table, s.mapErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", s.m.Table, err)
	}
	return n, nil
}

func (s *PostgresStore[E]) Delete(ctx context.Context, id string, owner *string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND tenant_id IS NOT DISTINCT FROM $2",
		s.m.Table, s.m.Columns[0])
	res, err := s.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", s.m.Table, s.mapErr(err))
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var _ Store[*domain.Dish] = (*PostgresStore[*domain.Dish])(nil)
