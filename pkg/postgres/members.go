package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/opencourt/playday/pkg/db"
)

// GetMember returns a member by id or db.ErrNotFound
func (d *DB) GetMember(ctx context.Context, id string) (*db.Member, error) {
	var m db.Member
	err := d.pool.QueryRow(ctx, `
		SELECT id, name, email, role, notify_opt_in, created_at
		FROM members WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.NotifyOptIn, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &m, nil
}
