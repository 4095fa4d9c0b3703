package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

// RejectRequestStore defines the database operations RejectVolunteerRequest needs
type RejectRequestStore interface {
	SetRequestStatus(ctx context.Context, requestID string, status db.RequestStatus) (*db.VolunteerRequest, error)
	GetEvent(ctx context.Context, id string) (*db.Event, error)
	GetMember(ctx context.Context, id string) (*db.Member, error)
}

// RejectVolunteerRequest turns a pending request down without touching the
// event's slots, then notifies the member.
func RejectVolunteerRequest(ctx context.Context, store RejectRequestStore, dispatcher Dispatcher, logger *zap.Logger, actor model.Actor, requestID string) (*RequestResult, error) {
	if !actor.IsAdmin() {
		return &RequestResult{Result: *model.Declined("only administrators can reject volunteer requests")}, nil
	}
	if requestID == "" {
		return &RequestResult{Result: *model.Declined("request id is required")}, nil
	}

	request, err := store.SetRequestStatus(ctx, requestID, db.StatusRejected)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &RequestResult{Result: *model.Declined("volunteer request not found")}, nil
		}
		if errors.Is(err, db.ErrNotPending) {
			return &RequestResult{Result: *model.Declined("request has already been resolved")}, nil
		}
		return nil, fmt.Errorf("failed to reject volunteer request: %w", err)
	}

	logger.Info("Volunteer request rejected",
		zap.String("request_id", requestID),
		zap.String("member_id", request.MemberID))

	result := &RequestResult{Result: *model.OK("volunteer request rejected"), Request: request}

	member, err := store.GetMember(ctx, request.MemberID)
	if err != nil {
		logger.Warn("Could not load member for rejection notice",
			zap.String("member_id", request.MemberID), zap.Error(err))
		result.NotifySent = false
		return result, nil
	}

	data := map[string]string{"name": member.Name}
	if event, err := store.GetEvent(ctx, request.EventID); err == nil {
		data["title"] = event.Title
		data["date"] = event.EventDate.Format("Monday, January 2 2006")
	}
	result.NotifySent = notify(ctx, dispatcher, logger, TemplateVolunteerRejected, data, member.Email)
	return result, nil
}
