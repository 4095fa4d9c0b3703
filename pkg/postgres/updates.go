package postgres

import (
	"context"
	"fmt"

	"github.com/opencourt/playday/pkg/db"
)

// InsertUpdate appends a note to an event. Updates are never edited; the
// deletion cascade is the only thing that removes them.
func (d *DB) InsertUpdate(ctx context.Context, update *db.Update) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO updates (id, event_id, content, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, update.ID, update.EventID, update.Content, update.CreatedBy, update.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert update: %w", err)
	}
	return nil
}

// ListUpdates returns an event's updates, newest first
func (d *DB) ListUpdates(ctx context.Context, eventID string) ([]db.Update, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, event_id, content, created_by, created_at
		FROM updates
		WHERE event_id = $1
		ORDER BY created_at DESC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query updates: %w", err)
	}
	defer rows.Close()

	var updates []db.Update
	for rows.Next() {
		var u db.Update
		if err := rows.Scan(&u.ID, &u.EventID, &u.Content, &u.CreatedBy, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan update: %w", err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating updates: %w", err)
	}
	return updates, nil
}
