package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

// DeleteEventStore defines the database operations DeleteEvent needs
type DeleteEventStore interface {
	GetEvent(ctx context.Context, id string) (*db.Event, error)
	DeleteEventCascade(ctx context.Context, id string) error
}

// DeleteEvent removes an event and every dependent row. The cascade is a
// single transaction in the store, so a failure midway leaves the database
// untouched. Administrators only; cancellation is the non-destructive
// alternative.
func DeleteEvent(ctx context.Context, store DeleteEventStore, logger *zap.Logger, actor model.Actor, eventID string) (*model.Result, error) {
	if eventID == "" {
		return model.Declined("event id is required"), nil
	}
	if !actor.IsAdmin() {
		return model.Declined("only administrators can delete events"), nil
	}

	if _, err := store.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return model.Declined("event not found"), nil
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if err := store.DeleteEventCascade(ctx, eventID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return model.Declined("event not found"), nil
		}
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}

	logger.Info("Event deleted", zap.String("event_id", eventID), zap.String("deleted_by", actor.ID))
	return model.OK("event and all related records deleted"), nil
}
