package db

import "context"

// EventSpec carries the writable fields for creating or updating an event
type EventSpec struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	EventDate   string      `json:"event_date" validate:"required,datetime=2006-01-02"`
	StartTime   string      `json:"start_time" validate:"required"`
	EndTime     string      `json:"end_time" validate:"required"`
	Courts      int         `json:"courts" validate:"min=0"`
	SponsorID   string      `json:"sponsor_id,omitempty"`
	Clinic      *ClinicSpec `json:"clinic,omitempty"`
}

// ClinicSpec carries the writable fields for an event's clinic
type ClinicSpec struct {
	Description     string `json:"description"`
	StartTime       string `json:"start_time" validate:"required"`
	EndTime         string `json:"end_time" validate:"required"`
	Courts          int    `json:"courts" validate:"min=0"`
	MaxParticipants int    `json:"max_participants" validate:"required,min=1"`
}

// ApprovalResult reports what an approval transaction decided
type ApprovalResult struct {
	Request VolunteerRequest
	Event   Event
	Slot    VolunteerSlot
	// Filled is true when both slots were taken and the request was
	// rejected instead of assigned
	Filled bool
}

// Store defines every database operation the services need.
// postgres.DB is the production implementation.
type Store interface {
	// Events
	CreateEvent(ctx context.Context, event *Event, clinic *Clinic) error
	UpdateEvent(ctx context.Context, event *Event, clinic *Clinic) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEventSummaries(ctx context.Context, includeCancelled bool) ([]EventSummary, error)
	MarkEventCancelled(ctx context.Context, id, reason, cancelledBy string) (*Event, error)
	DeleteEventCascade(ctx context.Context, id string) error

	// Clinics
	GetClinic(ctx context.Context, id string) (*Clinic, error)
	GetClinicByEvent(ctx context.Context, eventID string) (*Clinic, error)

	// Attendance
	ToggleAttendance(ctx context.Context, eventID, memberID string) (ToggleOutcome, error)
	ToggleClinicAttendance(ctx context.Context, clinicID, memberID string) (ToggleOutcome, error)
	ListEventAttendees(ctx context.Context, eventID string) ([]Member, error)

	// Volunteer requests
	GetVolunteerRequest(ctx context.Context, id string) (*VolunteerRequest, error)
	FindVolunteerRequest(ctx context.Context, eventID, memberID string) (*VolunteerRequest, error)
	UpsertVolunteerRequest(ctx context.Context, eventID, memberID string) (*VolunteerRequest, error)
	ApproveVolunteerRequest(ctx context.Context, requestID string) (*ApprovalResult, error)
	SetRequestStatus(ctx context.Context, requestID string, status RequestStatus) (*VolunteerRequest, error)
	DeletePendingRequest(ctx context.Context, eventID, memberID string) error

	// Updates
	InsertUpdate(ctx context.Context, update *Update) error
	ListUpdates(ctx context.Context, eventID string) ([]Update, error)

	// Members
	GetMember(ctx context.Context, id string) (*Member, error)
}
