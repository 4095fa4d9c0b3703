package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opencourt/playday/pkg/db"
)

const requestColumns = `id, event_id, member_id, status, created_at`

func scanRequest(row rowScanner) (*db.VolunteerRequest, error) {
	var r db.VolunteerRequest
	if err := row.Scan(&r.ID, &r.EventID, &r.MemberID, &r.Status, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetVolunteerRequest returns a request by id or db.ErrNotFound
func (d *DB) GetVolunteerRequest(ctx context.Context, id string) (*db.VolunteerRequest, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM volunteer_requests WHERE id = $1`, id)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get volunteer request: %w", err)
	}
	return request, nil
}

// FindVolunteerRequest returns the request for (event, member) or db.ErrNotFound
func (d *DB) FindVolunteerRequest(ctx context.Context, eventID, memberID string) (*db.VolunteerRequest, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM volunteer_requests WHERE event_id = $1 AND member_id = $2`,
		eventID, memberID)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find volunteer request: %w", err)
	}
	return request, nil
}

// UpsertVolunteerRequest creates a pending request for (event, member).
// A prior rejected request is resurrected to pending with a fresh
// timestamp instead of creating a second row; an active request returns
// db.ErrDuplicateRequest. The unique constraint backs the whole thing.
func (d *DB) UpsertVolunteerRequest(ctx context.Context, eventID, memberID string) (*db.VolunteerRequest, error) {
	var request *db.VolunteerRequest
	err := d.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+requestColumns+` FROM volunteer_requests
			 WHERE event_id = $1 AND member_id = $2 FOR UPDATE`,
			eventID, memberID)
		existing, err := scanRequest(row)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to query volunteer request: %w", err)
		}

		now := time.Now().UTC()
		if existing != nil {
			if existing.Status.Active() {
				return db.ErrDuplicateRequest
			}
			if _, err := tx.Exec(ctx,
				`UPDATE volunteer_requests SET status = $2, created_at = $3 WHERE id = $1`,
				existing.ID, db.StatusPending, now); err != nil {
				return fmt.Errorf("failed to resurrect volunteer request: %w", err)
			}
			existing.Status = db.StatusPending
			existing.CreatedAt = now
			request = existing
			return nil
		}

		request = &db.VolunteerRequest{
			ID:        uuid.New().String(),
			EventID:   eventID,
			MemberID:  memberID,
			Status:    db.StatusPending,
			CreatedAt: now,
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO volunteer_requests (id, event_id, member_id, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, request.ID, request.EventID, request.MemberID, request.Status, request.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert volunteer request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ApproveVolunteerRequest assigns the requester to the first vacant slot
// (main before helper) and marks the request approved, both in one
// transaction. The event row is locked so two concurrent approvals cannot
// observe the same vacancy. When both slots are already filled the request
// flips to rejected and the result carries Filled=true.
func (d *DB) ApproveVolunteerRequest(ctx context.Context, requestID string) (*db.ApprovalResult, error) {
	var result db.ApprovalResult
	err := d.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+requestColumns+` FROM volunteer_requests WHERE id = $1 FOR UPDATE`,
			requestID)
		request, err := scanRequest(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return db.ErrNotFound
			}
			return fmt.Errorf("failed to lock volunteer request: %w", err)
		}
		if request.Status != db.StatusPending {
			return db.ErrNotPending
		}

		eventRow := tx.QueryRow(ctx,
			`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`,
			request.EventID)
		event, err := scanEvent(eventRow)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return db.ErrNotFound
			}
			return fmt.Errorf("failed to lock event row: %w", err)
		}

		slot, vacant := db.NextVacantSlot(event.MainVolunteerID, event.HelperVolunteerID)
		if !vacant {
			if _, err := tx.Exec(ctx,
				`UPDATE volunteer_requests SET status = $2 WHERE id = $1`,
				request.ID, db.StatusRejected); err != nil {
				return fmt.Errorf("failed to reject volunteer request: %w", err)
			}
			request.Status = db.StatusRejected
			result = db.ApprovalResult{Request: *request, Event: *event, Filled: true}
			return nil
		}

		column := "main_volunteer_id"
		if slot == db.SlotHelper {
			column = "helper_volunteer_id"
		}
		if _, err := tx.Exec(ctx,
			`UPDATE events SET `+column+` = $2 WHERE id = $1`,
			event.ID, request.MemberID); err != nil {
			return fmt.Errorf("failed to assign volunteer slot: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE volunteer_requests SET status = $2 WHERE id = $1`,
			request.ID, db.StatusApproved); err != nil {
			return fmt.Errorf("failed to approve volunteer request: %w", err)
		}

		request.Status = db.StatusApproved
		if slot == db.SlotMain {
			event.MainVolunteerID = request.MemberID
		} else {
			event.HelperVolunteerID = request.MemberID
		}
		result = db.ApprovalResult{Request: *request, Event: *event, Slot: slot}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetRequestStatus moves a request to the given status, enforcing the
// state machine's allowed transitions
func (d *DB) SetRequestStatus(ctx context.Context, requestID string, status db.RequestStatus) (*db.VolunteerRequest, error) {
	var request *db.VolunteerRequest
	err := d.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+requestColumns+` FROM volunteer_requests WHERE id = $1 FOR UPDATE`,
			requestID)
		existing, err := scanRequest(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return db.ErrNotFound
			}
			return fmt.Errorf("failed to lock volunteer request: %w", err)
		}
		if !existing.Status.CanTransitionTo(status) {
			return db.ErrNotPending
		}
		if _, err := tx.Exec(ctx,
			`UPDATE volunteer_requests SET status = $2 WHERE id = $1`,
			requestID, status); err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}
		existing.Status = status
		request = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// DeletePendingRequest removes the member's request for the event, but
// only while it is still pending
func (d *DB) DeletePendingRequest(ctx context.Context, eventID, memberID string) error {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM volunteer_requests
		WHERE event_id = $1 AND member_id = $2 AND status = $3
	`, eventID, memberID, db.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to delete volunteer request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
