package services

import (
	"context"

	"go.uber.org/zap"
)

// Notification template names. The dispatcher owns rendering; services
// only supply the name and the data payload.
const (
	TemplateEventCancelled    = "event_cancelled"
	TemplateVolunteerApproved = "volunteer_approved"
	TemplateVolunteerRejected = "volunteer_rejected"
)

// BatchStats summarises a batch dispatch
type BatchStats struct {
	Sent   int
	Failed int
}

// Dispatcher delivers templated notifications to members. Implementations
// render the template themselves; failures are reported, never fatal.
type Dispatcher interface {
	Send(ctx context.Context, template string, data map[string]string, recipient string) error
	SendBatch(ctx context.Context, template string, data map[string]string, recipients []string) (BatchStats, error)
}

// notify sends a single notification after the state change has committed.
// A delivery failure is logged and reported to the caller through the
// return value; it never unwinds the committed mutation.
func notify(ctx context.Context, dispatcher Dispatcher, logger *zap.Logger, template string, data map[string]string, recipient string) bool {
	if dispatcher == nil || recipient == "" {
		return false
	}
	if err := dispatcher.Send(ctx, template, data, recipient); err != nil {
		logger.Warn("Notification delivery failed",
			zap.String("template", template),
			zap.String("recipient", recipient),
			zap.Error(err))
		return false
	}
	return true
}
