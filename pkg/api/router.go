package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router with one command route per state
// transition and a listing query
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/health", HealthCheck)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/{id}", h.GetEvent)
		r.Put("/{id}", h.UpdateEvent)
		r.Delete("/{id}", h.DeleteEvent)
		r.Post("/{id}/cancel", h.CancelEvent)
		r.Post("/{id}/attendance", h.ToggleAttendance)
		r.Post("/{id}/volunteer-requests", h.RequestToVolunteer)
		r.Delete("/{id}/volunteer-requests", h.CancelVolunteerRequest)
		r.Post("/{id}/updates", h.AddUpdate)
		r.Get("/{id}/updates", h.ListUpdates)
	})

	r.Post("/clinics/{id}/attendance", h.ToggleClinicAttendance)

	r.Route("/volunteer-requests", func(r chi.Router) {
		r.Get("/{id}", h.GetVolunteerRequest)
		r.Post("/{id}/approve", h.ApproveVolunteerRequest)
		r.Post("/{id}/reject", h.RejectVolunteerRequest)
	})

	return r
}
