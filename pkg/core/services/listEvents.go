package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/db"
)

// ListEventsStore defines the database operations ListEvents needs
type ListEventsStore interface {
	ListEventSummaries(ctx context.Context, includeCancelled bool) ([]db.EventSummary, error)
}

// ListEvents returns every event with its derived projections: attendee
// count, clinic occupancy and pending volunteer requests. Cancelled events
// are included only when asked for.
func ListEvents(ctx context.Context, store ListEventsStore, logger *zap.Logger, includeCancelled bool) ([]db.EventSummary, error) {
	summaries, err := store.ListEventSummaries(ctx, includeCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	logger.Debug("Listed events",
		zap.Int("count", len(summaries)),
		zap.Bool("include_cancelled", includeCancelled))
	return summaries, nil
}
