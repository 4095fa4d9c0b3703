package db

// RequestStatus is the closed set of volunteer request states
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Valid reports whether s is one of the known states
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Active reports whether the request still counts against the
// one-active-request-per-member rule
func (s RequestStatus) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// CanTransitionTo reports whether the state machine permits moving to next.
// Approved is terminal within the request workflow; a rejected request may
// be resurrected to pending by re-requesting.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusRejected:
		return next == StatusPending
	case StatusApproved:
		return false
	}
	return false
}

// VolunteerSlot names one of the two staffing positions on an event
type VolunteerSlot string

const (
	SlotMain   VolunteerSlot = "main"
	SlotHelper VolunteerSlot = "helper"
)

// NextVacantSlot picks the slot an approved volunteer should fill.
// Main is always preferred over helper so assignment order is deterministic.
func NextVacantSlot(mainID, helperID string) (VolunteerSlot, bool) {
	if mainID == "" {
		return SlotMain, true
	}
	if helperID == "" {
		return SlotHelper, true
	}
	return "", false
}

// ToggleOutcome describes the effect of an attendance toggle
type ToggleOutcome int

const (
	// ToggleJoined means a new attendance row was inserted
	ToggleJoined ToggleOutcome = iota
	// ToggleLeft means an existing attendance row was removed
	ToggleLeft
	// ToggleFull means the clinic was at capacity and nothing changed
	ToggleFull
)

// DecideClinicToggle is the pure capacity decision for a clinic toggle.
// The caller must evaluate it and apply the write inside one transaction.
func DecideClinicToggle(exists bool, count, maxParticipants int) ToggleOutcome {
	if exists {
		return ToggleLeft
	}
	if count >= maxParticipants {
		return ToggleFull
	}
	return ToggleJoined
}
