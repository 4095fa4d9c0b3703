package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

// RequestVolunteerStore defines the database operations RequestToVolunteer
// and CancelVolunteerRequest need
type RequestVolunteerStore interface {
	GetEvent(ctx context.Context, id string) (*db.Event, error)
	UpsertVolunteerRequest(ctx context.Context, eventID, memberID string) (*db.VolunteerRequest, error)
	DeletePendingRequest(ctx context.Context, eventID, memberID string) error
}

// RequestResult is the outcome of a volunteer request operation
type RequestResult struct {
	model.Result
	Request *db.VolunteerRequest
}

// RequestToVolunteer files the acting member's application for one of the
// event's two volunteer slots. A previously rejected request is
// resurrected to pending rather than duplicated; members already holding
// an active request or a slot are refused.
func RequestToVolunteer(ctx context.Context, store RequestVolunteerStore, logger *zap.Logger, actor model.Actor, eventID string) (*RequestResult, error) {
	if actor.ID == "" {
		return &RequestResult{Result: *model.Declined("you must be signed in to volunteer")}, nil
	}
	if !actor.CanVolunteer() {
		return &RequestResult{Result: *model.Declined("your membership is not volunteer-eligible")}, nil
	}
	if eventID == "" {
		return &RequestResult{Result: *model.Declined("event id is required")}, nil
	}

	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &RequestResult{Result: *model.Declined("event not found")}, nil
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event.HasVolunteer(actor.ID) {
		return &RequestResult{Result: *model.Declined("you already hold a volunteer position for this event")}, nil
	}

	request, err := store.UpsertVolunteerRequest(ctx, eventID, actor.ID)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateRequest) {
			return &RequestResult{Result: *model.Declined("you already have a volunteer request for this event")}, nil
		}
		return nil, fmt.Errorf("failed to create volunteer request: %w", err)
	}

	logger.Info("Volunteer request filed",
		zap.String("event_id", eventID),
		zap.String("member_id", actor.ID),
		zap.String("request_id", request.ID))

	return &RequestResult{
		Result:  *model.OK("volunteer request submitted"),
		Request: request,
	}, nil
}

// CancelVolunteerRequest withdraws the acting member's own request. Only
// pending requests can be withdrawn; an approved assignment is undone by
// an administrator editing the event, not through this path.
func CancelVolunteerRequest(ctx context.Context, store RequestVolunteerStore, logger *zap.Logger, actor model.Actor, eventID string) (*model.Result, error) {
	if actor.ID == "" {
		return model.Declined("you must be signed in"), nil
	}
	if eventID == "" {
		return model.Declined("event id is required"), nil
	}

	if err := store.DeletePendingRequest(ctx, eventID, actor.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return model.Declined("no pending volunteer request to withdraw"), nil
		}
		return nil, fmt.Errorf("failed to withdraw volunteer request: %w", err)
	}

	logger.Info("Volunteer request withdrawn",
		zap.String("event_id", eventID),
		zap.String("member_id", actor.ID))

	return model.OK("volunteer request withdrawn"), nil
}
