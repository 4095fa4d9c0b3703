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

func TestToggleAttendance_JoinThenLeave(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	actor := model.Actor{ID: "member-1", Role: model.RoleMember}

	result, err := ToggleAttendance(context.Background(), store, zap.NewNop(), actor, "event-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, db.ToggleJoined, result.Outcome)
	assert.True(t, store.attendance["event-1"]["member-1"])

	result, err = ToggleAttendance(context.Background(), store, zap.NewNop(), actor, "event-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, db.ToggleLeft, result.Outcome)
	assert.False(t, store.attendance["event-1"]["member-1"])

	// A third toggle returns to the joined state: the operation is its own inverse
	result, err = ToggleAttendance(context.Background(), store, zap.NewNop(), actor, "event-1")
	require.NoError(t, err)
	assert.Equal(t, db.ToggleJoined, result.Outcome)
}

func TestToggleAttendance_RequiresActor(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")

	result, err := ToggleAttendance(context.Background(), store, zap.NewNop(), model.Actor{}, "event-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, store.attendance["event-1"])
}

func TestToggleAttendance_EventNotFound(t *testing.T) {
	store := newFakeStore()
	actor := model.Actor{ID: "member-1", Role: model.RoleMember}

	result, err := ToggleAttendance(context.Background(), store, zap.NewNop(), actor, "missing")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "event not found", result.Message)
}

func TestToggleClinicAttendance_CapacityScenario(t *testing.T) {
	// Clinic with two places: A and B get in, C is refused and the
	// count stays at two.
	store := newFakeStore()
	store.addEvent("event-1")
	store.addClinic("clinic-1", "event-1", 2)

	for _, memberID := range []string{"member-a", "member-b"} {
		actor := model.Actor{ID: memberID, Role: model.RoleMember}
		result, err := ToggleClinicAttendance(context.Background(), store, zap.NewNop(), actor, "clinic-1")
		require.NoError(t, err)
		assert.True(t, result.Success, "member %s should get a place", memberID)
	}
	require.Len(t, store.clinicAttendance["clinic-1"], 2)

	actorC := model.Actor{ID: "member-c", Role: model.RoleMember}
	result, err := ToggleClinicAttendance(context.Background(), store, zap.NewNop(), actorC, "clinic-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, db.ToggleFull, result.Outcome)
	assert.Equal(t, "the clinic is full", result.Message)
	assert.Len(t, store.clinicAttendance["clinic-1"], 2)
	assert.False(t, store.clinicAttendance["clinic-1"]["member-c"])
}

func TestToggleClinicAttendance_LeavingFreesAPlace(t *testing.T) {
	store := newFakeStore()
	store.addEvent("event-1")
	store.addClinic("clinic-1", "event-1", 1)

	actorA := model.Actor{ID: "member-a", Role: model.RoleMember}
	actorB := model.Actor{ID: "member-b", Role: model.RoleMember}

	_, err := ToggleClinicAttendance(context.Background(), store, zap.NewNop(), actorA, "clinic-1")
	require.NoError(t, err)

	result, err := ToggleClinicAttendance(context.Background(), store, zap.NewNop(), actorB, "clinic-1")
	require.NoError(t, err)
	assert.False(t, result.Success)

	// Member A leaves, which admits member B
	result, err = ToggleClinicAttendance(context.Background(), store, zap.NewNop(), actorA, "clinic-1")
	require.NoError(t, err)
	assert.Equal(t, db.ToggleLeft, result.Outcome)

	result, err = ToggleClinicAttendance(context.Background(), store, zap.NewNop(), actorB, "clinic-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, db.ToggleJoined, result.Outcome)
}

func TestToggleClinicAttendance_ClinicNotFound(t *testing.T) {
	store := newFakeStore()
	actor := model.Actor{ID: "member-1", Role: model.RoleMember}

	result, err := ToggleClinicAttendance(context.Background(), store, zap.NewNop(), actor, "missing")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "clinic not found", result.Message)
}
