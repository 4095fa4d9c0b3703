package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/opencourt/playday/pkg/db"
)

const clinicColumns = `id, event_id, description, start_time, end_time, courts, max_participants`

func scanClinic(row rowScanner) (*db.Clinic, error) {
	var c db.Clinic
	err := row.Scan(&c.ID, &c.EventID, &c.Description, &c.StartTime, &c.EndTime,
		&c.Courts, &c.MaxParticipants)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// insertClinic adds a clinic row within an existing transaction
func insertClinic(ctx context.Context, tx pgx.Tx, clinic *db.Clinic) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO clinics (id, event_id, description, start_time, end_time, courts, max_participants)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, clinic.ID, clinic.EventID, clinic.Description, clinic.StartTime, clinic.EndTime,
		clinic.Courts, clinic.MaxParticipants)
	if err != nil {
		return fmt.Errorf("failed to insert clinic: %w", err)
	}
	return nil
}

// removeClinic deletes a clinic and its attendance, attendance first
func removeClinic(ctx context.Context, tx pgx.Tx, clinicID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM clinic_attendance WHERE clinic_id = $1`, clinicID); err != nil {
		return fmt.Errorf("failed to delete clinic attendance: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM clinics WHERE id = $1`, clinicID); err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}
	return nil
}

// GetClinic returns a clinic by id or db.ErrNotFound
func (d *DB) GetClinic(ctx context.Context, id string) (*db.Clinic, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+clinicColumns+` FROM clinics WHERE id = $1`, id)
	clinic, err := scanClinic(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

// GetClinicByEvent returns the event's clinic or db.ErrNotFound
func (d *DB) GetClinicByEvent(ctx context.Context, eventID string) (*db.Clinic, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+clinicColumns+` FROM clinics WHERE event_id = $1`, eventID)
	clinic, err := scanClinic(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinic by event: %w", err)
	}
	return clinic, nil
}
