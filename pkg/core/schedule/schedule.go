// Package schedule turns the league's recurrence rules into concrete play
// days on the calendar.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/db"
)

// Rule describes one recurring play day pattern
type Rule struct {
	RRule       string
	Title       string
	Description string
	StartTime   string
	EndTime     string
	Courts      int
}

// Store defines the database operations schedule generation needs
type Store interface {
	ListEventSummaries(ctx context.Context, includeCancelled bool) ([]db.EventSummary, error)
	CreateEvent(ctx context.Context, event *db.Event, clinic *db.Clinic) error
}

// Generate expands the rule into the next count play days after the latest
// event already on the calendar, creating an event for each date. With an
// empty calendar generation starts from today.
func Generate(ctx context.Context, store Store, logger *zap.Logger, rule Rule, createdBy string, count int) ([]db.Event, error) {
	if count <= 0 {
		return nil, fmt.Errorf("event count must be positive, got %d", count)
	}

	r, err := rrule.StrToRRule(rule.RRule)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule: %w", err)
	}

	logger.Debug("Generating schedule", zap.String("rrule", rule.RRule), zap.Int("count", count))

	summaries, err := store.ListEventSummaries(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing events: %w", err)
	}

	after := startOfDay(time.Now().UTC())
	if latest := latestEventDate(summaries); latest.After(after) {
		after = latest
	}
	// Anchor the rule before the search window so After can reach every
	// occurrence regardless of the rule's own DTSTART
	r.DTStart(after.AddDate(-1, 0, 0))

	logger.Debug("Expanding recurrence", zap.Time("after", after))

	var events []db.Event
	next := after
	for i := 0; i < count; i++ {
		next = r.After(next, false)
		if next.IsZero() {
			break
		}
		event := db.Event{
			ID:          uuid.New().String(),
			Title:       rule.Title,
			Description: rule.Description,
			EventDate:   startOfDay(next),
			StartTime:   rule.StartTime,
			EndTime:     rule.EndTime,
			Courts:      rule.Courts,
			CreatedBy:   createdBy,
		}
		if err := store.CreateEvent(ctx, &event, nil); err != nil {
			return nil, fmt.Errorf("failed to create event for %s: %w", event.EventDate.Format("2006-01-02"), err)
		}
		events = append(events, event)
	}

	if len(events) > 0 {
		logger.Info("Schedule generated",
			zap.Int("count", len(events)),
			zap.String("first", events[0].EventDate.Format("2006-01-02")),
			zap.String("last", events[len(events)-1].EventDate.Format("2006-01-02")))
	}
	return events, nil
}

func latestEventDate(summaries []db.EventSummary) time.Time {
	var latest time.Time
	for _, s := range summaries {
		if s.Event.EventDate.After(latest) {
			latest = s.Event.EventDate
		}
	}
	return latest
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
