package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

var validate = validator.New()

// CreateEventStore defines the database operations CreateEvent needs
type CreateEventStore interface {
	CreateEvent(ctx context.Context, event *db.Event, clinic *db.Clinic) error
}

// CreateEventResult is the outcome of creating an event
type CreateEventResult struct {
	model.Result
	Event  *db.Event
	Clinic *db.Clinic
}

// CreateEvent persists a new play day and, when one is requested, its
// clinic in the same unit of work. Only organizers may create events.
func CreateEvent(ctx context.Context, store CreateEventStore, logger *zap.Logger, actor model.Actor, spec db.EventSpec) (*CreateEventResult, error) {
	if actor.ID == "" {
		return &CreateEventResult{Result: *model.Declined("you must be signed in to create an event")}, nil
	}
	if !actor.CanOrganize() {
		logger.Debug("Create event refused", zap.String("actor", actor.ID), zap.String("role", string(actor.Role)))
		return &CreateEventResult{Result: *model.Declined("only organizers can create events")}, nil
	}

	if err := validate.Struct(spec); err != nil {
		return &CreateEventResult{Result: *model.Declined(fmt.Sprintf("invalid event: %v", err))}, nil
	}

	eventDate, err := time.Parse("2006-01-02", spec.EventDate)
	if err != nil {
		return &CreateEventResult{Result: *model.Declined("event date must be in YYYY-MM-DD format")}, nil
	}

	event := &db.Event{
		ID:          uuid.New().String(),
		Title:       spec.Title,
		Description: spec.Description,
		EventDate:   eventDate,
		StartTime:   spec.StartTime,
		EndTime:     spec.EndTime,
		Courts:      spec.Courts,
		SponsorID:   spec.SponsorID,
		CreatedBy:   actor.ID,
	}

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

	if err := store.CreateEvent(ctx, event, clinic); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	logger.Info("Event created",
		zap.String("event_id", event.ID),
		zap.String("title", event.Title),
		zap.Bool("has_clinic", clinic != nil))

	return &CreateEventResult{
		Result: *model.OK("event created"),
		Event:  event,
		Clinic: clinic,
	}, nil
}
