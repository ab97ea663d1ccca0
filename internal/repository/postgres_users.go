package repository

import (
	"context"
	"database/sql"
	"fmt"

	"roomserve/internal/domain"
)

// PostgresUserStore relies on the users_single_admin_idx partial unique index
// so two concurrent admin writes cannot both succeed.
type PostgresUserStore struct {
	*PostgresStore[*domain.User]
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{PostgresStore: NewPostgresStore(db, userMapper)}
}

var _ UserStore = (*PostgresUserStore)(nil)

func (s *PostgresUserStore) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}
