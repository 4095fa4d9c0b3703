package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opencourt/playday/pkg/db"
)

// fakeStore is an in-memory stand-in for postgres.DB. It applies the same
// pure decisions (db.DecideClinicToggle, db.NextVacantSlot) the real store
// runs inside its transactions, so scenario tests exercise the genuine
// capacity and slot rules.
type fakeStore struct {
	events           map[string]*db.Event
	clinics          map[string]*db.Clinic
	attendance       map[string]map[string]bool // event id -> member id
	clinicAttendance map[string]map[string]bool // clinic id -> member id
	requests         map[string]*db.VolunteerRequest
	updates          []db.Update
	members          map[string]*db.Member

	nextID int

	// error injection
	createEventErr error
	updateEventErr error
	cascadeErr     error
	attendeesErr   error
	memberErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:           make(map[string]*db.Event),
		clinics:          make(map[string]*db.Clinic),
		attendance:       make(map[string]map[string]bool),
		clinicAttendance: make(map[string]map[string]bool),
		requests:         make(map[string]*db.VolunteerRequest),
		members:          make(map[string]*db.Member),
	}
}

func (f *fakeStore) genID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) addMember(id, role string) *db.Member {
	m := &db.Member{
		ID:          id,
		Name:        "Member " + id,
		Email:       id + "@example.com",
		Role:        role,
		NotifyOptIn: true,
	}
	f.members[id] = m
	return m
}

func (f *fakeStore) addEvent(id string) *db.Event {
	e := &db.Event{
		ID:        id,
		Title:     "Play Day " + id,
		EventDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "12:00",
		Courts:    4,
		CreatedBy: "organizer",
	}
	f.events[id] = e
	return e
}

func (f *fakeStore) addClinic(id, eventID string, maxParticipants int) *db.Clinic {
	c := &db.Clinic{ID: id, EventID: eventID, MaxParticipants: maxParticipants,
		StartTime: "09:00", EndTime: "10:00"}
	f.clinics[id] = c
	return c
}

func (f *fakeStore) CreateEvent(ctx context.Context, event *db.Event, clinic *db.Clinic) error {
	if f.createEventErr != nil {
		return f.createEventErr
	}
	f.events[event.ID] = event
	if clinic != nil {
		f.clinics[clinic.ID] = clinic
	}
	return nil
}

func (f *fakeStore) UpdateEvent(ctx context.Context, event *db.Event, clinic *db.Clinic) error {
	if f.updateEventErr != nil {
		return f.updateEventErr
	}
	if _, ok := f.events[event.ID]; !ok {
		return db.ErrNotFound
	}
	f.events[event.ID] = event

	var existing *db.Clinic
	for _, c := range f.clinics {
		if c.EventID == event.ID {
			existing = c
		}
	}
	switch {
	case clinic != nil && existing != nil:
		clinic.ID = existing.ID
		f.clinics[existing.ID] = clinic
	case clinic != nil && existing == nil:
		f.clinics[clinic.ID] = clinic
	case clinic == nil && existing != nil:
		delete(f.clinicAttendance, existing.ID)
		delete(f.clinics, existing.ID)
	}
	return nil
}

func (f *fakeStore) GetEvent(ctx context.Context, id string) (*db.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeStore) ListEventSummaries(ctx context.Context, includeCancelled bool) ([]db.EventSummary, error) {
	var summaries []db.EventSummary
	for _, e := range f.events {
		if e.IsCancelled && !includeCancelled {
			continue
		}
		s := db.EventSummary{Event: *e, AttendeeCount: len(f.attendance[e.ID])}
		for _, c := range f.clinics {
			if c.EventID == e.ID {
				copied := *c
				s.Clinic = &copied
				s.ClinicCount = len(f.clinicAttendance[c.ID])
			}
		}
		for _, r := range f.requests {
			if r.EventID == e.ID && r.Status == db.StatusPending {
				s.PendingRequests++
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (f *fakeStore) MarkEventCancelled(ctx context.Context, id, reason, cancelledBy string) (*db.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	now := time.Now().UTC()
	e.IsCancelled = true
	e.CancellationReason = reason
	e.CancelledBy = cancelledBy
	e.CancelledAt = &now
	copied := *e
	return &copied, nil
}

func (f *fakeStore) DeleteEventCascade(ctx context.Context, id string) error {
	if f.cascadeErr != nil {
		// Simulates a rollback: nothing below runs, nothing changes
		return f.cascadeErr
	}
	if _, ok := f.events[id]; !ok {
		return db.ErrNotFound
	}
	for cid, c := range f.clinics {
		if c.EventID == id {
			delete(f.clinicAttendance, cid)
			delete(f.clinics, cid)
		}
	}
	delete(f.attendance, id)
	var kept []db.Update
	for _, u := range f.updates {
		if u.EventID != id {
			kept = append(kept, u)
		}
	}
	f.updates = kept
	for rid, r := range f.requests {
		if r.EventID == id {
			delete(f.requests, rid)
		}
	}
	delete(f.events, id)
	return nil
}

func (f *fakeStore) GetClinic(ctx context.Context, id string) (*db.Clinic, error) {
	c, ok := f.clinics[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) GetClinicByEvent(ctx context.Context, eventID string) (*db.Clinic, error) {
	for _, c := range f.clinics {
		if c.EventID == eventID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) ToggleAttendance(ctx context.Context, eventID, memberID string) (db.ToggleOutcome, error) {
	if f.attendance[eventID] == nil {
		f.attendance[eventID] = make(map[string]bool)
	}
	if f.attendance[eventID][memberID] {
		delete(f.attendance[eventID], memberID)
		return db.ToggleLeft, nil
	}
	f.attendance[eventID][memberID] = true
	return db.ToggleJoined, nil
}

func (f *fakeStore) ToggleClinicAttendance(ctx context.Context, clinicID, memberID string) (db.ToggleOutcome, error) {
	clinic, ok := f.clinics[clinicID]
	if !ok {
		return 0, db.ErrNotFound
	}
	if f.clinicAttendance[clinicID] == nil {
		f.clinicAttendance[clinicID] = make(map[string]bool)
	}
	exists := f.clinicAttendance[clinicID][memberID]
	count := len(f.clinicAttendance[clinicID])
	switch db.DecideClinicToggle(exists, count, clinic.MaxParticipants) {
	case db.ToggleLeft:
		delete(f.clinicAttendance[clinicID], memberID)
		return db.ToggleLeft, nil
	case db.ToggleFull:
		return 0, db.ErrClinicFull
	default:
		f.clinicAttendance[clinicID][memberID] = true
		return db.ToggleJoined, nil
	}
}

func (f *fakeStore) ListEventAttendees(ctx context.Context, eventID string) ([]db.Member, error) {
	if f.attendeesErr != nil {
		return nil, f.attendeesErr
	}
	var members []db.Member
	for memberID := range f.attendance[eventID] {
		if m, ok := f.members[memberID]; ok {
			members = append(members, *m)
		}
	}
	return members, nil
}

func (f *fakeStore) GetVolunteerRequest(ctx context.Context, id string) (*db.VolunteerRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeStore) FindVolunteerRequest(ctx context.Context, eventID, memberID string) (*db.VolunteerRequest, error) {
	for _, r := range f.requests {
		if r.EventID == eventID && r.MemberID == memberID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) UpsertVolunteerRequest(ctx context.Context, eventID, memberID string) (*db.VolunteerRequest, error) {
	for _, r := range f.requests {
		if r.EventID == eventID && r.MemberID == memberID {
			if r.Status.Active() {
				return nil, db.ErrDuplicateRequest
			}
			r.Status = db.StatusPending
			r.CreatedAt = time.Now().UTC()
			copied := *r
			return &copied, nil
		}
	}
	r := &db.VolunteerRequest{
		ID:        f.genID("request"),
		EventID:   eventID,
		MemberID:  memberID,
		Status:    db.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	f.requests[r.ID] = r
	copied := *r
	return &copied, nil
}

func (f *fakeStore) ApproveVolunteerRequest(ctx context.Context, requestID string) (*db.ApprovalResult, error) {
	r, ok := f.requests[requestID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if r.Status != db.StatusPending {
		return nil, db.ErrNotPending
	}
	event, ok := f.events[r.EventID]
	if !ok {
		return nil, db.ErrNotFound
	}

	slot, vacant := db.NextVacantSlot(event.MainVolunteerID, event.HelperVolunteerID)
	if !vacant {
		r.Status = db.StatusRejected
		return &db.ApprovalResult{Request: *r, Event: *event, Filled: true}, nil
	}
	if slot == db.SlotMain {
		event.MainVolunteerID = r.MemberID
	} else {
		event.HelperVolunteerID = r.MemberID
	}
	r.Status = db.StatusApproved
	return &db.ApprovalResult{Request: *r, Event: *event, Slot: slot}, nil
}

func (f *fakeStore) SetRequestStatus(ctx context.Context, requestID string, status db.RequestStatus) (*db.VolunteerRequest, error) {
	r, ok := f.requests[requestID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if !r.Status.CanTransitionTo(status) {
		return nil, db.ErrNotPending
	}
	r.Status = status
	copied := *r
	return &copied, nil
}

func (f *fakeStore) DeletePendingRequest(ctx context.Context, eventID, memberID string) error {
	for id, r := range f.requests {
		if r.EventID == eventID && r.MemberID == memberID && r.Status == db.StatusPending {
			delete(f.requests, id)
			return nil
		}
	}
	return db.ErrNotFound
}

func (f *fakeStore) InsertUpdate(ctx context.Context, update *db.Update) error {
	f.updates = append(f.updates, *update)
	return nil
}

func (f *fakeStore) ListUpdates(ctx context.Context, eventID string) ([]db.Update, error) {
	var updates []db.Update
	for _, u := range f.updates {
		if u.EventID == eventID {
			updates = append(updates, u)
		}
	}
	return updates, nil
}

func (f *fakeStore) GetMember(ctx context.Context, id string) (*db.Member, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	m, ok := f.members[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

// sentMessage records one dispatched notification
type sentMessage struct {
	Template   string
	Data       map[string]string
	Recipients []string
}

// mockDispatcher records notifications and can be told to fail
type mockDispatcher struct {
	sent    []sentMessage
	sendErr error
}

func (m *mockDispatcher) Send(ctx context.Context, template string, data map[string]string, recipient string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{Template: template, Data: data, Recipients: []string{recipient}})
	return nil
}

func (m *mockDispatcher) SendBatch(ctx context.Context, template string, data map[string]string, recipients []string) (BatchStats, error) {
	if m.sendErr != nil {
		return BatchStats{Failed: len(recipients)}, m.sendErr
	}
	m.sent = append(m.sent, sentMessage{Template: template, Data: data, Recipients: recipients})
	return BatchStats{Sent: len(recipients)}, nil
}

var errDatabase = errors.New("database unavailable")
