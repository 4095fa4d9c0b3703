package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

// ApproveRequestStore defines the database operations ApproveVolunteerRequest needs
type ApproveRequestStore interface {
	ApproveVolunteerRequest(ctx context.Context, requestID string) (*db.ApprovalResult, error)
	GetMember(ctx context.Context, id string) (*db.Member, error)
}

// ApproveResult is the outcome of an approval
type ApproveResult struct {
	model.Result
	Slot    db.VolunteerSlot
	Request *db.VolunteerRequest
}

// ApproveVolunteerRequest grants a pending request the first vacant slot,
// main before helper. When both slots are already filled the request is
// rejected instead and the caller gets a distinct decline. The slot write
// and the status change are one transaction in the store; the member is
// notified afterwards.
func ApproveVolunteerRequest(ctx context.Context, store ApproveRequestStore, dispatcher Dispatcher, logger *zap.Logger, actor model.Actor, requestID string) (*ApproveResult, error) {
	if !actor.IsAdmin() {
		return &ApproveResult{Result: *model.Declined("only administrators can approve volunteer requests")}, nil
	}
	if requestID == "" {
		return &ApproveResult{Result: *model.Declined("request id is required")}, nil
	}

	approval, err := store.ApproveVolunteerRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ApproveResult{Result: *model.Declined("volunteer request not found")}, nil
		}
		if errors.Is(err, db.ErrNotPending) {
			return &ApproveResult{Result: *model.Declined("request has already been resolved")}, nil
		}
		return nil, fmt.Errorf("failed to approve volunteer request: %w", err)
	}

	if approval.Filled {
		logger.Info("Approval refused, both slots filled",
			zap.String("request_id", requestID),
			zap.String("event_id", approval.Event.ID))
		return &ApproveResult{
			Result:  *model.Declined("both volunteer positions are already filled"),
			Request: &approval.Request,
		}, nil
	}

	logger.Info("Volunteer request approved",
		zap.String("request_id", requestID),
		zap.String("event_id", approval.Event.ID),
		zap.String("member_id", approval.Request.MemberID),
		zap.String("slot", string(approval.Slot)))

	result := &ApproveResult{
		Result:  *model.OK(fmt.Sprintf("approved as %s volunteer", approval.Slot)),
		Slot:    approval.Slot,
		Request: &approval.Request,
	}

	member, err := store.GetMember(ctx, approval.Request.MemberID)
	if err != nil {
		logger.Warn("Could not load member for approval notice",
			zap.String("member_id", approval.Request.MemberID), zap.Error(err))
		result.NotifySent = false
		return result, nil
	}

	data := map[string]string{
		"name":  member.Name,
		"slot":  string(approval.Slot),
		"title": approval.Event.Title,
		"date":  approval.Event.EventDate.Format("Monday, January 2 2006"),
	}
	result.NotifySent = notify(ctx, dispatcher, logger, TemplateVolunteerApproved, data, member.Email)
	return result, nil
}
