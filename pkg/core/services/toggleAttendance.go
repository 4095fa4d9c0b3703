package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

// ToggleAttendanceStore defines the database operations the attendance
// toggles need
type ToggleAttendanceStore interface {
	GetEvent(ctx context.Context, id string) (*db.Event, error)
	GetClinic(ctx context.Context, id string) (*db.Clinic, error)
	ToggleAttendance(ctx context.Context, eventID, memberID string) (db.ToggleOutcome, error)
	ToggleClinicAttendance(ctx context.Context, clinicID, memberID string) (db.ToggleOutcome, error)
}

// ToggleResult is the outcome of an attendance toggle
type ToggleResult struct {
	model.Result
	Outcome db.ToggleOutcome
}

// ToggleAttendance flips the acting member's RSVP for an event: attending
// members are removed, everyone else is added.
func ToggleAttendance(ctx context.Context, store ToggleAttendanceStore, logger *zap.Logger, actor model.Actor, eventID string) (*ToggleResult, error) {
	if actor.ID == "" {
		return &ToggleResult{Result: *model.Declined("you must be signed in to RSVP")}, nil
	}
	if eventID == "" {
		return &ToggleResult{Result: *model.Declined("event id is required")}, nil
	}

	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ToggleResult{Result: *model.Declined("event not found")}, nil
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	outcome, err := store.ToggleAttendance(ctx, eventID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle attendance: %w", err)
	}

	logger.Info("Attendance toggled",
		zap.String("event_id", eventID),
		zap.String("member_id", actor.ID),
		zap.Bool("joined", outcome == db.ToggleJoined))

	message := fmt.Sprintf("you are no longer attending %s", event.Title)
	if outcome == db.ToggleJoined {
		message = fmt.Sprintf("you are attending %s", event.Title)
	}
	return &ToggleResult{Result: *model.OK(message), Outcome: outcome}, nil
}

// ToggleClinicAttendance flips the acting member's RSVP for a clinic.
// Joining is refused with a distinct "full" decline once the clinic's
// participant ceiling is reached; the store performs the capacity check
// and the write atomically.
func ToggleClinicAttendance(ctx context.Context, store ToggleAttendanceStore, logger *zap.Logger, actor model.Actor, clinicID string) (*ToggleResult, error) {
	if actor.ID == "" {
		return &ToggleResult{Result: *model.Declined("you must be signed in to RSVP")}, nil
	}
	if clinicID == "" {
		return &ToggleResult{Result: *model.Declined("clinic id is required")}, nil
	}

	if _, err := store.GetClinic(ctx, clinicID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ToggleResult{Result: *model.Declined("clinic not found")}, nil
		}
		return nil, fmt.Errorf("failed to load clinic: %w", err)
	}

	outcome, err := store.ToggleClinicAttendance(ctx, clinicID, actor.ID)
	if err != nil {
		if errors.Is(err, db.ErrClinicFull) {
			logger.Debug("Clinic join refused, at capacity",
				zap.String("clinic_id", clinicID),
				zap.String("member_id", actor.ID))
			return &ToggleResult{
				Result:  *model.Declined("the clinic is full"),
				Outcome: db.ToggleFull,
			}, nil
		}
		if errors.Is(err, db.ErrNotFound) {
			return &ToggleResult{Result: *model.Declined("clinic not found")}, nil
		}
		return nil, fmt.Errorf("failed to toggle clinic attendance: %w", err)
	}

	logger.Info("Clinic attendance toggled",
		zap.String("clinic_id", clinicID),
		zap.String("member_id", actor.ID),
		zap.Bool("joined", outcome == db.ToggleJoined))

	message := "you have left the clinic"
	if outcome == db.ToggleJoined {
		message = "you are signed up for the clinic"
	}
	return &ToggleResult{Result: *model.OK(message), Outcome: outcome}, nil
}
