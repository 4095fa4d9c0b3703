package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

// UpdateEventStore defines the database operations UpdateEvent needs
type UpdateEventStore interface {
	GetEvent(ctx context.Context, id string) (*db.Event, error)
	UpdateEvent(ctx context.Context, event *db.Event, clinic *db.Clinic) error
}

// UpdateEventResult is the outcome of updating an event
type UpdateEventResult struct {
	model.Result
	Event *db.Event
}

// canManageEvent reports whether the actor may modify this event:
// administrators and the event's creator.
func canManageEvent(actor model.Actor, event *db.Event) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == event.CreatedBy)
}

// UpdateEvent rewrites an event's mutable fields. Toggling the clinic off
// removes its attendance together with the clinic row; toggling it on
// creates the row.
func UpdateEvent(ctx context.Context, store UpdateEventStore, logger *zap.Logger, actor model.Actor, eventID string, spec db.EventSpec) (*UpdateEventResult, error) {
	if eventID == "" {
		return &UpdateEventResult{Result: *model.Declined("event id is required")}, nil
	}

	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &UpdateEventResult{Result: *model.Declined("event not found")}, nil
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if !canManageEvent(actor, event) {
		return &UpdateEventResult{Result: *model.Declined("only the event organizer can edit this event")}, nil
	}

	if err := validate.Struct(spec); err != nil {
		return &UpdateEventResult{Result: *model.Declined(fmt.Sprintf("invalid event: %v", err))}, nil
	}

	eventDate, err := time.Parse("2006-01-02", spec.EventDate)
	if err != nil {
		return &UpdateEventResult{Result: *model.Declined("event date must be in YYYY-MM-DD format")}, nil
	}

	event.Title = spec.Title
	event.Description = spec.Description
	event.EventDate = eventDate
	event.StartTime = spec.StartTime
	event.EndTime = spec.EndTime
	event.Courts = spec.Courts
	event.SponsorID = spec.SponsorID

	var clinic *db.Clinic
	if spec.Clinic != nil {
		clinic = &db.Clinic{
			ID:              uuid.New().String(),
			EventID:         event.ID,
			Description:     spec.Clinic.Description,
			StartTime:       spec.Clinic.StartTime,
			EndTime:         spec.Clinic.EndTime,
			Courts:          spec.Clinic.Courts,
			MaxParticipants: spec.Clinic.MaxParticipants,
		}
	}

	if err := store.UpdateEvent(ctx, event, clinic); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &UpdateEventResult{Result: *model.Declined("event not found")}, nil
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	logger.Info("Event updated",
		zap.String("event_id", event.ID),
		zap.Bool("has_clinic", clinic != nil))

	return &UpdateEventResult{Result: *model.OK("event updated"), Event: event}, nil
}
