package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

// CancelEventStore defines the database operations CancelEvent needs
type CancelEventStore interface {
	GetEvent(ctx context.Context, id string) (*db.Event, error)
	MarkEventCancelled(ctx context.Context, id, reason, cancelledBy string) (*db.Event, error)
	ListEventAttendees(ctx context.Context, eventID string) ([]db.Member, error)
}

// CancelEventResult is the outcome of cancelling an event
type CancelEventResult struct {
	model.Result
	Event *db.Event
	Stats BatchStats
}

// CancelEvent flags an event as cancelled without touching its attendance
// or volunteer records, then fans out a notice to opted-in attendees. The
// notification runs after the flag has committed; a delivery failure only
// dents the result's NotifySent flag.
func CancelEvent(ctx context.Context, store CancelEventStore, dispatcher Dispatcher, logger *zap.Logger, actor model.Actor, eventID, reason string) (*CancelEventResult, error) {
	if eventID == "" {
		return &CancelEventResult{Result: *model.Declined("event id is required")}, nil
	}
	if reason == "" {
		return &CancelEventResult{Result: *model.Declined("a cancellation reason is required")}, nil
	}

	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &CancelEventResult{Result: *model.Declined("event not found")}, nil
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if !canManageEvent(actor, event) {
		return &CancelEventResult{Result: *model.Declined("only the event organizer can cancel this event")}, nil
	}
	if event.IsCancelled {
		return &CancelEventResult{Result: *model.Declined("event is already cancelled")}, nil
	}

	cancelled, err := store.MarkEventCancelled(ctx, eventID, reason, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}

	logger.Info("Event cancelled",
		zap.String("event_id", eventID),
		zap.String("reason", reason),
		zap.String("cancelled_by", actor.ID))

	result := &CancelEventResult{Result: *model.OK("event cancelled"), Event: cancelled}

	attendees, err := store.ListEventAttendees(ctx, eventID)
	if err != nil {
		logger.Warn("Could not load attendees for cancellation notice",
			zap.String("event_id", eventID), zap.Error(err))
		result.NotifySent = false
		return result, nil
	}

	var recipients []string
	for _, m := range attendees {
		if m.NotifyOptIn {
			recipients = append(recipients, m.Email)
		}
	}
	if len(recipients) == 0 || dispatcher == nil {
		return result, nil
	}

	data := map[string]string{
		"title":    cancelled.Title,
		"date":     cancelled.EventDate.Format("Monday, January 2 2006"),
		"schedule": fmt.Sprintf("%s - %s", cancelled.StartTime, cancelled.EndTime),
		"reason":   reason,
	}
	stats, err := dispatcher.SendBatch(ctx, TemplateEventCancelled, data, recipients)
	result.Stats = stats
	if err != nil || stats.Failed > 0 {
		logger.Warn("Cancellation notice delivery incomplete",
			zap.String("event_id", eventID),
			zap.Int("sent", stats.Sent),
			zap.Int("failed", stats.Failed),
			zap.Error(err))
		result.NotifySent = false
	}
	return result, nil
}
