package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/opencourt/playday/pkg/db"
)

const eventColumns = `id, title, description, event_date, start_time, end_time, courts,
	sponsor_id, main_volunteer_id, helper_volunteer_id, created_by,
	is_cancelled, cancellation_reason, cancelled_by, cancelled_at`

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*db.Event, error) {
	var e db.Event
	var sponsorID, mainID, helperID, cancelledBy *string
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.EventDate, &e.StartTime, &e.EndTime, &e.Courts,
		&sponsorID, &mainID, &helperID, &e.CreatedBy,
		&e.IsCancelled, &e.CancellationReason, &cancelledBy, &e.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	if sponsorID != nil {
		e.SponsorID = *sponsorID
	}
	if mainID != nil {
		e.MainVolunteerID = *mainID
	}
	if helperID != nil {
		e.HelperVolunteerID = *helperID
	}
	if cancelledBy != nil {
		e.CancelledBy = *cancelledBy
	}
	return &e, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateEvent inserts a new event and, when clinic is non-nil, its clinic
// in the same transaction
func (d *DB) CreateEvent(ctx context.Context, event *db.Event, clinic *db.Clinic) error {
	return d.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO events (id, title, description, event_date, start_time, end_time, courts,
				sponsor_id, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, event.ID, event.Title, event.Description, event.EventDate, event.StartTime,
			event.EndTime, event.Courts, nullable(event.SponsorID), event.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		if clinic != nil {
			if err := insertClinic(ctx, tx, clinic); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateEvent rewrites the event's mutable fields and reconciles the clinic:
// a clinic appearing creates a row, a clinic disappearing removes its
// attendance first and then the row itself.
func (d *DB) UpdateEvent(ctx context.Context, event *db.Event, clinic *db.Clinic) error {
	return d.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE events
			SET title = $2, description = $3, event_date = $4, start_time = $5,
				end_time = $6, courts = $7, sponsor_id = $8
			WHERE id = $1
		`, event.ID, event.Title, event.Description, event.EventDate, event.StartTime,
			event.EndTime, event.Courts, nullable(event.SponsorID))
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return db.ErrNotFound
		}

		var existingID string
		err = tx.QueryRow(ctx, `SELECT id FROM clinics WHERE event_id = $1`, event.ID).Scan(&existingID)
		hasExisting := err == nil
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to query clinic: %w", err)
		}

		switch {
		case clinic != nil && hasExisting:
			_, err = tx.Exec(ctx, `
				UPDATE clinics
				SET description = $2, start_time = $3, end_time = $4, courts = $5, max_participants = $6
				WHERE id = $1
			`, existingID, clinic.Description, clinic.StartTime, clinic.EndTime,
				clinic.Courts, clinic.MaxParticipants)
			if err != nil {
				return fmt.Errorf("failed to update clinic: %w", err)
			}
		case clinic != nil && !hasExisting:
			if err := insertClinic(ctx, tx, clinic); err != nil {
				return err
			}
		case clinic == nil && hasExisting:
			if err := removeClinic(ctx, tx, existingID); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetEvent returns a single event or db.ErrNotFound
func (d *DB) GetEvent(ctx context.Context, id string) (*db.Event, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListEventSummaries returns events with their derived projections, soonest first
func (d *DB) ListEventSummaries(ctx context.Context, includeCancelled bool) ([]db.EventSummary, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	if !includeCancelled {
		query += ` WHERE NOT is_cancelled`
	}
	query += ` ORDER BY event_date ASC`

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var summaries []db.EventSummary
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		summaries = append(summaries, db.EventSummary{Event: *event})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	for i := range summaries {
		if err := d.fillProjections(ctx, &summaries[i]); err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

func (d *DB) fillProjections(ctx context.Context, s *db.EventSummary) error {
	err := d.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendance WHERE event_id = $1`, s.Event.ID,
	).Scan(&s.AttendeeCount)
	if err != nil {
		return fmt.Errorf("failed to count attendance: %w", err)
	}

	err = d.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM volunteer_requests WHERE event_id = $1 AND status = $2`,
		s.Event.ID, db.StatusPending,
	).Scan(&s.PendingRequests)
	if err != nil {
		return fmt.Errorf("failed to count volunteer requests: %w", err)
	}

	clinic, err := d.GetClinicByEvent(ctx, s.Event.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		return err
	}
	s.Clinic = clinic

	err = d.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM clinic_attendance WHERE clinic_id = $1`, clinic.ID,
	).Scan(&s.ClinicCount)
	if err != nil {
		return fmt.Errorf("failed to count clinic attendance: %w", err)
	}
	return nil
}

// MarkEventCancelled flips the cancellation flag and records who and why.
// Attendance and volunteer data are left untouched.
func (d *DB) MarkEventCancelled(ctx context.Context, id, reason, cancelledBy string) (*db.Event, error) {
	tag, err := d.pool.Exec(ctx, `
		UPDATE events
		SET is_cancelled = TRUE, cancellation_reason = $2, cancelled_by = $3, cancelled_at = $4
		WHERE id = $1
	`, id, reason, cancelledBy, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, db.ErrNotFound
	}
	return d.GetEvent(ctx, id)
}

// DeleteEventCascade removes the event and every dependent row in one
// transaction, children before parent: clinic attendance, clinic,
// attendance, updates, volunteer requests, then the event itself.
func (d *DB) DeleteEventCascade(ctx context.Context, id string) error {
	return d.withTx(ctx, func(tx pgx.Tx) error {
		var clinicID string
		err := tx.QueryRow(ctx, `SELECT id FROM clinics WHERE event_id = $1`, id).Scan(&clinicID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to query clinic: %w", err)
		}
		if clinicID != "" {
			if err := removeClinic(ctx, tx, clinicID); err != nil {
				return err
			}
		}

		for _, table := range []string{"attendance", "updates", "volunteer_requests"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE event_id = $1`, id); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return db.ErrNotFound
		}
		return nil
	})
}
