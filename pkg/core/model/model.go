// Package model holds the types shared between the service operations and
// the surfaces that invoke them.
package model

// Role is the acting member's authorization level
type Role string

const (
	RoleMember    Role = "member"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// Actor is the resolved identity performing an operation
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor holds the administrator role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanVolunteer reports whether the actor may apply for volunteer slots
func (a Actor) CanVolunteer() bool {
	return a.Role == RoleVolunteer || a.Role == RoleAdmin
}

// CanOrganize reports whether the actor may create and manage events
func (a Actor) CanOrganize() bool {
	return a.Role == RoleAdmin
}

// Result is the structured outcome every operation returns. Expected
// declines (authorization, capacity, not-found, conflicts) come back as
// Success=false with a message; only infrastructure faults surface as
// errors.
type Result struct {
	Success bool
	Message string
	// NotifySent is false when the state change committed but the
	// follow-up notification could not be delivered
	NotifySent bool
}

// Declined builds a failed result with the given message
func Declined(message string) *Result {
	return &Result{Success: false, Message: message}
}

// OK builds a successful result with the given message
func OK(message string) *Result {
	return &Result{Success: true, Message: message, NotifySent: true}
}
