package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/db"
)

// stubStore overrides just the methods a test needs; anything else panics
// through the embedded nil interface, which would flag an unexpected call.
type stubStore struct {
	db.Store
	events  map[string]*db.Event
	clinics map[string]*db.Clinic
	members map[string]*db.Member
	toggle  db.ToggleOutcome
	fullErr bool
}

func (s *stubStore) GetEvent(ctx context.Context, id string) (*db.Event, error) {
	if e, ok := s.events[id]; ok {
		return e, nil
	}
	return nil, db.ErrNotFound
}

func (s *stubStore) GetClinic(ctx context.Context, id string) (*db.Clinic, error) {
	if c, ok := s.clinics[id]; ok {
		return c, nil
	}
	return nil, db.ErrNotFound
}

func (s *stubStore) GetMember(ctx context.Context, id string) (*db.Member, error) {
	if m, ok := s.members[id]; ok {
		return m, nil
	}
	return nil, db.ErrNotFound
}

func (s *stubStore) ToggleAttendance(ctx context.Context, eventID, memberID string) (db.ToggleOutcome, error) {
	return s.toggle, nil
}

func (s *stubStore) ToggleClinicAttendance(ctx context.Context, clinicID, memberID string) (db.ToggleOutcome, error) {
	if s.fullErr {
		return 0, db.ErrClinicFull
	}
	return s.toggle, nil
}

func (s *stubStore) ListEventSummaries(ctx context.Context, includeCancelled bool) ([]db.EventSummary, error) {
	return nil, nil
}

func newTestServer(store *stubStore) *httptest.Server {
	h := NewHandler(store, nil, NewDirectoryIdentity(store), zap.NewNop())
	return httptest.NewServer(NewRouter(h))
}

func doRequest(t *testing.T, server *httptest.Server, method, path, memberID, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if memberID != "" {
		req.Header.Set(memberHeader, memberID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(&stubStore{})
	defer server.Close()

	resp, payload := doRequest(t, server, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", payload["status"])
}

func TestToggleAttendance_OK(t *testing.T) {
	store := &stubStore{
		events:  map[string]*db.Event{"event-1": {ID: "event-1", Title: "Play Day"}},
		members: map[string]*db.Member{"member-1": {ID: "member-1", Role: "member"}},
		toggle:  db.ToggleJoined,
	}
	server := newTestServer(store)
	defer server.Close()

	resp, payload := doRequest(t, server, http.MethodPost, "/events/event-1/attendance", "member-1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
}

func TestToggleAttendance_AnonymousDeclined(t *testing.T) {
	store := &stubStore{
		events: map[string]*db.Event{"event-1": {ID: "event-1"}},
	}
	server := newTestServer(store)
	defer server.Close()

	resp, payload := doRequest(t, server, http.MethodPost, "/events/event-1/attendance", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
}

func TestToggleClinicAttendance_FullDeclined(t *testing.T) {
	store := &stubStore{
		clinics: map[string]*db.Clinic{"clinic-1": {ID: "clinic-1", MaxParticipants: 2}},
		members: map[string]*db.Member{"member-1": {ID: "member-1", Role: "member"}},
		fullErr: true,
	}
	server := newTestServer(store)
	defer server.Close()

	resp, payload := doRequest(t, server, http.MethodPost, "/clinics/clinic-1/attendance", "member-1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "the clinic is full", payload["message"])
}

func TestListEvents_EmptyArray(t *testing.T) {
	server := newTestServer(&stubStore{})
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, payload)
}

func TestCreateEvent_BadJSON(t *testing.T) {
	store := &stubStore{
		members: map[string]*db.Member{"admin-1": {ID: "admin-1", Role: "admin"}},
	}
	server := newTestServer(store)
	defer server.Close()

	resp, _ := doRequest(t, server, http.MethodPost, "/events", "admin-1", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateEvent_NonOrganizerDeclined(t *testing.T) {
	store := &stubStore{
		members: map[string]*db.Member{"member-1": {ID: "member-1", Role: "member"}},
	}
	server := newTestServer(store)
	defer server.Close()

	body := `{"title":"Play Day","event_date":"2026-09-12","start_time":"09:00","end_time":"12:00"}`
	resp, payload := doRequest(t, server, http.MethodPost, "/events", "member-1", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
}
