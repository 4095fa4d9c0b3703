package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opencourt/playday/pkg/db"
)

// ToggleAttendance flips the member's RSVP for an event: removes the row
// if present, inserts one otherwise. The unique (event_id, member_id)
// constraint keeps concurrent inserts from duplicating.
func (d *DB) ToggleAttendance(ctx context.Context, eventID, memberID string) (db.ToggleOutcome, error) {
	var outcome db.ToggleOutcome
	err := d.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM attendance WHERE event_id = $1 AND member_id = $2
		)`, eventID, memberID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check attendance: %w", err)
		}

		if exists {
			if _, err := tx.Exec(ctx,
				`DELETE FROM attendance WHERE event_id = $1 AND member_id = $2`,
				eventID, memberID); err != nil {
				return fmt.Errorf("failed to delete attendance: %w", err)
			}
			outcome = db.ToggleLeft
			return nil
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO attendance (id, event_id, member_id) VALUES ($1, $2, $3)`,
			uuid.New().String(), eventID, memberID); err != nil {
			return fmt.Errorf("failed to insert attendance: %w", err)
		}
		outcome = db.ToggleJoined
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// ToggleClinicAttendance flips the member's RSVP for a clinic. Joining is
// capacity-gated: the clinic row is locked with SELECT ... FOR UPDATE so
// the count and the insert happen atomically with respect to concurrent
// callers, which is what prevents two members from both taking the last
// place.
func (d *DB) ToggleClinicAttendance(ctx context.Context, clinicID, memberID string) (db.ToggleOutcome, error) {
	var outcome db.ToggleOutcome
	err := d.withTx(ctx, func(tx pgx.Tx) error {
		var maxParticipants int
		err := tx.QueryRow(ctx,
			`SELECT max_participants FROM clinics WHERE id = $1 FOR UPDATE`,
			clinicID).Scan(&maxParticipants)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return db.ErrNotFound
			}
			return fmt.Errorf("failed to lock clinic row: %w", err)
		}

		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM clinic_attendance WHERE clinic_id = $1 AND member_id = $2
		)`, clinicID, memberID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check clinic attendance: %w", err)
		}

		var count int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM clinic_attendance WHERE clinic_id = $1`,
			clinicID).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count clinic attendance: %w", err)
		}

		switch db.DecideClinicToggle(exists, count, maxParticipants) {
		case db.ToggleLeft:
			if _, err := tx.Exec(ctx,
				`DELETE FROM clinic_attendance WHERE clinic_id = $1 AND member_id = $2`,
				clinicID, memberID); err != nil {
				return fmt.Errorf("failed to delete clinic attendance: %w", err)
			}
			outcome = db.ToggleLeft
		case db.ToggleFull:
			return db.ErrClinicFull
		case db.ToggleJoined:
			if _, err := tx.Exec(ctx,
				`INSERT INTO clinic_attendance (id, clinic_id, member_id) VALUES ($1, $2, $3)`,
				uuid.New().String(), clinicID, memberID); err != nil {
				return fmt.Errorf("failed to insert clinic attendance: %w", err)
			}
			outcome = db.ToggleJoined
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// ListEventAttendees returns the members with an attendance row for the event
func (d *DB) ListEventAttendees(ctx context.Context, eventID string) ([]db.Member, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT m.id, m.name, m.email, m.role, m.notify_opt_in, m.created_at
		FROM members m
		JOIN attendance a ON a.member_id = m.id
		WHERE a.event_id = $1
		ORDER BY m.name
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendees: %w", err)
	}
	defer rows.Close()

	var members []db.Member
	for rows.Next() {
		var m db.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.NotifyOptIn, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendees: %w", err)
	}
	return members, nil
}
