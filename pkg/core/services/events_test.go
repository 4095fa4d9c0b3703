package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/db"
)

func validSpec() db.EventSpec {
	return db.EventSpec{
		Title:     "Saturday Play Day",
		EventDate: "2026-09-12",
		StartTime: "09:00",
		EndTime:   "12:00",
		Courts:    4,
	}
}

func TestCreateEvent_RequiresOrganizer(t *testing.T) {
	store := newFakeStore()
	member := model.Actor{ID: "member-1", Role: model.RoleMember}

	result, err := CreateEvent(context.Background(), store, zap.NewNop(), member, validSpec())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, store.events)
}

func TestCreateEvent_RequiresActor(t *testing.T) {
	store := newFakeStore()

	result, err := CreateEvent(context.Background(), store, zap.NewNop(), model.Actor{}, validSpec())
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestCreateEvent_PersistsEventAndClinic(t *testing.T) {
	store := newFakeStore()
	spec := validSpec()
	spec.Clinic = &db.ClinicSpec{
		Description:     "Beginner clinic",
		StartTime:       "09:00",
		EndTime:         "10:00",
		Courts:          1,
		MaxParticipants: 8,
	}

	result, err := CreateEvent(context.Background(), store, zap.NewNop(), admin, spec)
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Event)
	require.NotNil(t, result.Clinic)
	assert.Equal(t, result.Event.ID, result.Clinic.EventID)
	assert.Equal(t, 8, result.Clinic.MaxParticipants)
	assert.Len(t, store.events, 1)
	assert.Len(t, store.clinics, 1)
}

func TestCreateEvent_RejectsInvalidSpec(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*db.EventSpec)
	}{
		{"missing title", func(s *db.EventSpec) { s.Title = "" }},
		{"missing date", func(s *db.EventSpec) { s.EventDate = "" }},
		{"malformed date", func(s *db.EventSpec) { s.EventDate = "12/09/2026" }},
		{"missing start time", func(s *db.EventSpec) { s.StartTime = "" }},
		{"zero clinic capacity", func(s *db.EventSpec) {
			s.Clinic = &db.ClinicSpec{StartTime: "09:00", EndTime: "10:00"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			spec := validSpec()
			tt.mutate(&spec)

			result, err := CreateEvent(context.Background(), store, zap.NewNop(), admin, spec)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Empty(t, store.events)
		})
	}
}

func TestUpdateEvent_RewritesFields(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	spec := validSpec()
	spec.Title = "Rescheduled Play Day"

	result, err := UpdateEvent(context.Background(), store, zap.NewNop(), admin, "event-1", spec)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Rescheduled Play Day", store.events["event-1"].Title)
}

func TestUpdateEvent_CreatorMayEdit(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1") // created by "organizer"
	creator := model.Actor{ID: "organizer", Role: model.RoleMember}

	result, err := UpdateEvent(context.Background(), store, zap.NewNop(), creator, "event-1", validSpec())
	require.NoError(t, err)
	assert.True(t, result.Success)

	stranger := model.Actor{ID: "someone-else", Role: model.RoleMember}
	result, err = UpdateEvent(context.Background(), store, zap.NewNop(), stranger, "event-1", validSpec())
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestUpdateEvent_AddsClinic(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	spec := validSpec()
	spec.Clinic = &db.ClinicSpec{StartTime: "09:00", EndTime: "10:00", MaxParticipants: 6}

	result, err := UpdateEvent(context.Background(), store, zap.NewNop(), admin, "event-1", spec)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, store.clinics, 1)
}

func TestUpdateEvent_RemovingClinicClearsItsAttendance(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	store.addClinic("clinic-1", "event-1", 4)
	store.clinicAttendance["clinic-1"] = map[string]bool{"member-a": true, "member-b": true}

	result, err := UpdateEvent(context.Background(), store, zap.NewNop(), admin, "event-1", validSpec())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, store.clinics)
	assert.Empty(t, store.clinicAttendance["clinic-1"])
}

func TestUpdateEvent_NotFound(t *testing.T) {
	store := newFakeStore()
	result, err := UpdateEvent(context.Background(), store, zap.NewNop(), admin, "missing", validSpec())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "event not found", result.Message)
}

func TestCancelEvent_FlagsAndNotifies(t *testing.T) {
	// Cancelling flips the flag, leaves attendance alone, and sends the
	// batch notice to opted-in attendees only.
	store := newFakeStore()
	store.addEvent("event-1")
	store.addMember("member-a", "member")
	store.addMember("member-b", "member")
	optedOut := store.addMember("member-c", "member")
	optedOut.NotifyOptIn = false
	store.attendance["event-1"] = map[string]bool{
		"member-a": true, "member-b": true, "member-c": true,
	}
	dispatcher := &mockDispatcher{}

	result, err := CancelEvent(context.Background(), store, dispatcher, zap.NewNop(), admin, "event-1", "rain")
	require.NoError(t, err)
	assert.True(t, result.Success)

	event := store.events["event-1"]
	assert.True(t, event.IsCancelled)
	assert.Equal(t, "rain", event.CancellationReason)
	assert.Equal(t, admin.ID, event.CancelledBy)
	assert.NotNil(t, event.CancelledAt)

	// Attendance rows untouched
	assert.Len(t, store.attendance["event-1"], 3)

	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, TemplateEventCancelled, dispatcher.sent[0].Template)
	assert.Equal(t, "rain", dispatcher.sent[0].Data["reason"])
	assert.Len(t, dispatcher.sent[0].Recipients, 2)
	assert.NotContains(t, dispatcher.sent[0].Recipients, "member-c@example.com")
	assert.Equal(t, 2, result.Stats.Sent)
}

func TestCancelEvent_RequiresReason(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")

	result, err := CancelEvent(context.Background(), store, nil, zap.NewNop(), admin, "event-1", "")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, store.events["event-1"].IsCancelled)
}

func TestCancelEvent_AlreadyCancelled(t *testing.T) {
	store := newFakeStore()
	event := store.addEvent("event-1")
	event.IsCancelled = true

	result, err := CancelEvent(context.Background(), store, nil, zap.NewNop(), admin, "event-1", "rain")
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestCancelEvent_DispatchFailureIsPartialSuccess(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	store.addMember("member-a", "member")
	store.attendance["event-1"] = map[string]bool{"member-a": true}
	dispatcher := &mockDispatcher{sendErr: errDatabase}

	result, err := CancelEvent(context.Background(), store, dispatcher, zap.NewNop(), admin, "event-1", "rain")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.NotifySent)
	// The flag committed regardless of the failed fan-out
	assert.True(t, store.events["event-1"].IsCancelled)
}

func TestDeleteEvent_CascadesEverything(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	store.addClinic("clinic-1", "event-1", 4)
	store.clinicAttendance["clinic-1"] = map[string]bool{
		"member-a": true, "member-b": true, "member-c": true,
	}
	store.attendance["event-1"] = map[string]bool{"member-a": true}
	store.updates = append(store.updates, db.Update{ID: "update-1", EventID: "event-1"})
	store.requests["request-1"] = &db.VolunteerRequest{
		ID: "request-1", EventID: "event-1", MemberID: "vol-1", Status: db.StatusPending,
	}

	result, err := DeleteEvent(context.Background(), store, zap.NewNop(), admin, "event-1")
	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.Empty(t, store.events)
	assert.Empty(t, store.clinics)
	assert.Empty(t, store.clinicAttendance["clinic-1"])
	assert.Empty(t, store.attendance["event-1"])
	assert.Empty(t, store.updates)
	assert.Empty(t, store.requests)
}

func TestDeleteEvent_FailureLeavesEverythingInPlace(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	store.addClinic("clinic-1", "event-1", 4)
	store.attendance["event-1"] = map[string]bool{"member-a": true}
	store.cascadeErr = errDatabase

	_, err := DeleteEvent(context.Background(), store, zap.NewNop(), admin, "event-1")
	require.Error(t, err)

	assert.Len(t, store.events, 1)
	assert.Len(t, store.clinics, 1)
	assert.Len(t, store.attendance["event-1"], 1)
}

func TestDeleteEvent_RequiresAdmin(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	creator := model.Actor{ID: "organizer", Role: model.RoleMember}

	result, err := DeleteEvent(context.Background(), store, zap.NewNop(), creator, "event-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, store.events, 1)
}

func TestListEvents_Projections(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	store.addClinic("clinic-1", "event-1", 8)
	store.attendance["event-1"] = map[string]bool{"member-a": true, "member-b": true}
	store.clinicAttendance["clinic-1"] = map[string]bool{"member-a": true}
	store.requests["request-1"] = &db.VolunteerRequest{
		ID: "request-1", EventID: "event-1", MemberID: "vol-1", Status: db.StatusPending,
	}
	cancelled := store.addEvent("event-2")
	cancelled.IsCancelled = true

	summaries, err := ListEvents(context.Background(), store, zap.NewNop(), false)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, 2, s.AttendeeCount)
	require.NotNil(t, s.Clinic)
	assert.Equal(t, 1, s.ClinicCount)
	assert.Equal(t, 1, s.PendingRequests)

	summaries, err = ListEvents(context.Background(), store, zap.NewNop(), true)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}
