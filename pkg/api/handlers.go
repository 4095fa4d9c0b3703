// Package api contains the chi HTTP handlers that translate requests and
// responses to and from the service operations.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/opencourt/playday/pkg/core/model"
	"github.com/opencourt/playday/pkg/core/services"
	"github.com/opencourt/playday/pkg/db"
)

// Handler holds the HTTP handlers for the league API
type Handler struct {
	store      db.Store
	dispatcher services.Dispatcher
	identity   IdentityProvider
	logger     *zap.Logger
}

// NewHandler constructs a Handler
func NewHandler(store db.Store, dispatcher services.Dispatcher, identity IdentityProvider, logger *zap.Logger) *Handler {
	return &Handler{store: store, dispatcher: dispatcher, identity: identity, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

type actionResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	NotifySent bool   `json:"notify_sent"`
	Data       any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeResult maps a structured operation result to a response: declined
// operations come back as 422 with the reason, successes as 200.
func writeResult(w http.ResponseWriter, result model.Result, data any) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, actionResponse{
		Success:    result.Success,
		Message:    result.Message,
		NotifySent: result.NotifySent,
		Data:       data,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// actor resolves the acting member, reporting infrastructure failures
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	actor, err := h.identity.ResolveActor(r)
	if err != nil {
		h.logger.Error("Failed to resolve actor", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not resolve member identity")
		return model.Actor{}, false
	}
	return actor, true
}

// ListEvents handles GET /events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	includeCancelled := r.URL.Query().Get("include_cancelled") == "true"

	summaries, err := services.ListEvents(r.Context(), h.store, h.logger, includeCancelled)
	if err != nil {
		h.logger.Error("Failed to list events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if summaries == nil {
		summaries = []db.EventSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

type eventDetail struct {
	Event     *db.Event            `json:"event"`
	Clinic    *db.Clinic           `json:"clinic,omitempty"`
	Attendees []db.Member          `json:"attendees"`
	MyRequest *db.VolunteerRequest `json:"my_request,omitempty"`
}

// GetEvent handles GET /events/{id}. The detail view carries the clinic,
// the attendee list and, for a signed-in member, their own volunteer
// request.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	eventID := chi.URLParam(r, "id")

	event, err := h.store.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		h.logger.Error("Failed to load event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}

	detail := eventDetail{Event: event, Attendees: []db.Member{}}

	clinic, err := h.store.GetClinicByEvent(r.Context(), eventID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.logger.Error("Failed to load clinic", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	detail.Clinic = clinic

	attendees, err := h.store.ListEventAttendees(r.Context(), eventID)
	if err != nil {
		h.logger.Error("Failed to load attendees", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if attendees != nil {
		detail.Attendees = attendees
	}

	if actor.ID != "" {
		request, err := h.store.FindVolunteerRequest(r.Context(), eventID, actor.ID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			h.logger.Error("Failed to load volunteer request", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load event")
			return
		}
		detail.MyRequest = request
	}

	writeJSON(w, http.StatusOK, detail)
}

// CreateEvent handles POST /events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var spec db.EventSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := services.CreateEvent(r.Context(), h.store, h.logger, actor, spec)
	if err != nil {
		h.logger.Error("Failed to create event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}
	writeResult(w, result.Result, result.Event)
}

// UpdateEvent handles PUT /events/{id}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var spec db.EventSpec
	if err := decodeJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := services.UpdateEvent(r.Context(), h.store, h.logger, actor, chi.URLParam(r, "id"), spec)
	if err != nil {
		h.logger.Error("Failed to update event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}
	writeResult(w, result.Result, result.Event)
}

// CancelEvent handles POST /events/{id}/cancel
func (h *Handler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := services.CancelEvent(r.Context(), h.store, h.dispatcher, h.logger, actor, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.logger.Error("Failed to cancel event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to cancel event")
		return
	}
	writeResult(w, result.Result, result.Event)
}

// DeleteEvent handles DELETE /events/{id}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	result, err := services.DeleteEvent(r.Context(), h.store, h.logger, actor, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("Failed to delete event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	writeResult(w, *result, nil)
}

// ToggleAttendance handles POST /events/{id}/attendance
func (h *Handler) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	result, err := services.ToggleAttendance(r.Context(), h.store, h.logger, actor, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("Failed to toggle attendance", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to toggle attendance")
		return
	}
	writeResult(w, result.Result, nil)
}

// ToggleClinicAttendance handles POST /clinics/{id}/attendance
func (h *Handler) ToggleClinicAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	result, err := services.ToggleClinicAttendance(r.Context(), h.store, h.logger, actor, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("Failed to toggle clinic attendance", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to toggle clinic attendance")
		return
	}
	writeResult(w, result.Result, nil)
}

// RequestToVolunteer handles POST /events/{id}/volunteer-requests
func (h *Handler) RequestToVolunteer(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	result, err := services.RequestToVolunteer(r.Context(), h.store, h.logger, actor, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("Failed to file volunteer request", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to file volunteer request")
		return
	}
	writeResult(w, result.Result, result.Request)
}

// CancelVolunteerRequest handles DELETE /events/{id}/volunteer-requests
func (h *Handler) CancelVolunteerRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	result, err := services.CancelVolunteerRequest(r.Context(), h.store, h.logger, actor, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("Failed to withdraw volunteer request", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to withdraw volunteer request")
		return
	}
	writeResult(w, *result, nil)
}

// ApproveVolunteerRequest handles POST /volunteer-requests/{id}/approve
func (h *Handler) ApproveVolunteerRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	result, err := services.ApproveVolunteerRequest(r.Context(), h.store, h.dispatcher, h.logger, actor, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("Failed to approve volunteer request", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to approve volunteer request")
		return
	}
	writeResult(w, result.Result, result.Request)
}

// GetVolunteerRequest handles GET /volunteer-requests/{id}
func (h *Handler) GetVolunteerRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	request, err := h.store.GetVolunteerRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "volunteer request not found")
			return
		}
		h.logger.Error("Failed to load volunteer request", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load volunteer request")
		return
	}

	// Requests are visible to administrators and their own author
	if !actor.IsAdmin() && actor.ID != request.MemberID {
		writeError(w, http.StatusForbidden, "not allowed to view this request")
		return
	}

	writeJSON(w, http.StatusOK, request)
}

// RejectVolunteerRequest handles POST /volunteer-requests/{id}/reject
func (h *Handler) RejectVolunteerRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	result, err := services.RejectVolunteerRequest(r.Context(), h.store, h.dispatcher, h.logger, actor, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("Failed to reject volunteer request", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to reject volunteer request")
		return
	}
	writeResult(w, result.Result, result.Request)
}

// AddUpdate handles POST /events/{id}/updates
func (h *Handler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := services.AddUpdate(r.Context(), h.store, h.logger, actor, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		h.logger.Error("Failed to post update", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to post update")
		return
	}
	writeResult(w, result.Result, result.Update)
}

// ListUpdates handles GET /events/{id}/updates
func (h *Handler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	updates, err := h.store.ListUpdates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("Failed to list updates", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list updates")
		return
	}
	if updates == nil {
		updates = []db.Update{}
	}
	writeJSON(w, http.StatusOK, updates)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
