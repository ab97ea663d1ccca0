package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"roomserve/internal/domain"
)

// PostgresOrderStore keeps status out of ordinary updates; status only moves
// through CompareAndSetStatus.
type PostgresOrderStore struct {
	*PostgresStore[*domain.Order]
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{PostgresStore: NewPostgresStore(db, orderMapper)}
}

var _ OrderStore = (*PostgresOrderStore)(nil)

// Update writes every column but status, and only while the stored status is
// still o.Status. A lost race yields domain.ErrStaleState.
func (s *PostgresOrderStore) Update(ctx context.Context, o *domain.Order, owner *string) error {
	n, err := s.update(ctx, o, owner, predicate{column: "status", value: string(o.Status)})
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := s.FindByID(ctx, o.ID); err != nil {
		return err
	}
	return fmt.Errorf("order %s left %s: %w", o.ID, o.Status, domain.ErrStaleState)
}

// CompareAndSetStatus is a single predicate-qualified UPDATE; no read precedes it.
func (s *PostgresOrderStore) CompareAndSetStatus(ctx context.Context, id string, owner *string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
		  AND status = $4
		  AND tenant_id IS NOT DISTINCT FROM $5
	`
	res, err := s.db.ExecContext(ctx, query, string(to), at, id, string(from), nullableTenant(owner))
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return n == 1, nil
}
