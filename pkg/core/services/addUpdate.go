package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

// AddUpdateStore defines the database operations AddUpdate needs
type AddUpdateStore interface {
	GetEvent(ctx context.Context, id string) (*db.Event, error)
	InsertUpdate(ctx context.Context, update *db.Update) error
}

// AddUpdateResult is the outcome of posting an update
type AddUpdateResult struct {
	model.Result
	Update *db.Update
}

// AddUpdate appends a note to an event. Only the event's creator, its
// assigned main volunteer, or an administrator may post; updates are never
// edited afterwards.
func AddUpdate(ctx context.Context, store AddUpdateStore, logger *zap.Logger, actor model.Actor, eventID, content string) (*AddUpdateResult, error) {
	if actor.ID == "" {
		return &AddUpdateResult{Result: *model.Declined("you must be signed in to post an update")}, nil
	}
	if eventID == "" {
		return &AddUpdateResult{Result: *model.Declined("event id is required")}, nil
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return &AddUpdateResult{Result: *model.Declined("update content is required")}, nil
	}

	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &AddUpdateResult{Result: *model.Declined("event not found")}, nil
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	allowed := actor.IsAdmin() || actor.ID == event.CreatedBy || actor.ID == event.MainVolunteerID
	if !allowed {
		return &AddUpdateResult{Result: *model.Declined("only the organizer or main volunteer can post updates")}, nil
	}

	update := &db.Update{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Content:   content,
		CreatedBy: actor.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.InsertUpdate(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to insert update: %w", err)
	}

	logger.Info("Update posted",
		zap.String("event_id", eventID),
		zap.String("update_id", update.ID),
		zap.String("created_by", actor.ID))

	return &AddUpdateResult{Result: *model.OK("update posted"), Update: update}, nil
}
