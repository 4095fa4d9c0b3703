package db

import "time"

// Event represents a scheduled play day members can attend
type Event struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	EventDate          time.Time  `json:"event_date"`
	StartTime          string     `json:"start_time"`
	EndTime            string     `json:"end_time"`
	Courts             int        `json:"courts,omitempty"`
	SponsorID          string     `json:"sponsor_id,omitempty"`
	MainVolunteerID    string     `json:"main_volunteer_id,omitempty"`
	HelperVolunteerID  string     `json:"helper_volunteer_id,omitempty"`
	CreatedBy          string     `json:"created_by"`
	IsCancelled        bool       `json:"is_cancelled"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

// HasVolunteer reports whether the member occupies either volunteer slot
func (e *Event) HasVolunteer(memberID string) bool {
	return memberID != "" && (e.MainVolunteerID == memberID || e.HelperVolunteerID == memberID)
}

// SlotsFilled reports whether both volunteer positions are taken
func (e *Event) SlotsFilled() bool {
	return e.MainVolunteerID != "" && e.HelperVolunteerID != ""
}

// Clinic is an optional capacity-limited sub-session of an event (at most one per event)
type Clinic struct {
	ID              string `json:"id"`
	EventID         string `json:"event_id"`
	Description     string `json:"description,omitempty"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Courts          int    `json:"courts,omitempty"`
	MaxParticipants int    `json:"max_participants"`
}

// Attendance links a member to an event they plan to attend
type Attendance struct {
	ID       string `json:"id"`
	EventID  string `json:"event_id"`
	MemberID string `json:"member_id"`
}

// ClinicAttendance links a member to a clinic, bounded by the clinic's ceiling
type ClinicAttendance struct {
	ID       string `json:"id"`
	ClinicID string `json:"clinic_id"`
	MemberID string `json:"member_id"`
}

// VolunteerRequest is a member's application for one of the event's two volunteer slots
type VolunteerRequest struct {
	ID        string        `json:"id"`
	EventID   string        `json:"event_id"`
	MemberID  string        `json:"member_id"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Update is an append-only note attached to an event
type Update struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is a league member known to the identity directory
type Member struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	NotifyOptIn bool      `json:"notify_opt_in"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventSummary is the listing projection: an event with derived counts
type EventSummary struct {
	Event           Event   `json:"event"`
	AttendeeCount   int     `json:"attendee_count"`
	Clinic          *Clinic `json:"clinic,omitempty"`
	ClinicCount     int     `json:"clinic_count"`
	PendingRequests int     `json:"pending_requests"`
}
