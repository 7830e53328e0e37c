package handler

import (
	"errors"
	"net/http"

	"github.com/everydog-league/api/internal/model"
	"github.com/everydog-league/api/internal/repository"
	"github.com/everydog-league/api/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	msgEventNotFound       = "Event not found"
	msgWaiverRequired      = "You must agree to the safety waiver to register."
	msgSoldOut             = "Sorry, this event is sold out!"
	msgAlreadyRegistered   = "You're already registered for this event!"
	msgRegistrationSuccess = "Registration successful! See you there!"
)

// EventHandler serves the event listing, detail and registration routes.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ListEvents handles GET /api/events?skill_level=&sort=
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort := service.SortSoonest
	if _, ok := q["sort"]; ok {
		sort = q.Get("sort")
	}
	events, err := h.svc.ListEvents(r.Context(), q.Get("skill_level"), sort)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.EventListResponse{Events: events})
}

// GetEvent handles GET /api/events/{event_id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "event_id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgEventNotFound)
			return
		}
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Register handles POST /api/events/{event_id}/register
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !bind(w, r, &req) {
		return
	}

	reg, err := h.svc.Register(r.Context(), chi.URLParam(r, "event_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWaiverRequired):
			writeError(w, http.StatusBadRequest, msgWaiverRequired)
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, msgEventNotFound)
		case errors.Is(err, repository.ErrEventFull):
			writeError(w, http.StatusBadRequest, msgSoldOut)
		case errors.Is(err, repository.ErrAlreadyRegistered):
			writeError(w, http.StatusBadRequest, msgAlreadyRegistered)
		default:
			writeInternal(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, model.RegistrationResponse{
		Message:        msgRegistrationSuccess,
		RegistrationID: reg.ID,
	})
}
