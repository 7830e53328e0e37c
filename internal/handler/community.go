package handler

import (
	"errors"
	"net/http"

	"github.com/everydog-league/api/internal/model"
	"github.com/everydog-league/api/internal/repository"
	"github.com/everydog-league/api/internal/service"
)

const (
	msgRoot              = "EveryDog League API"
	msgAlreadySubscribed = "You're already subscribed!"
	msgSubscribed        = "Welcome to the pack! You're now subscribed."
	msgContactReceived   = "Thanks for reaching out! We'll get back to you soon."
)

// Root handles GET /api/
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msgRoot})
}

// CommunityHandler serves the newsletter and contact form routes.
type CommunityHandler struct {
	newsletter *service.NewsletterService
	contact    *service.ContactService
}

func NewCommunityHandler(newsletter *service.NewsletterService, contact *service.ContactService) *CommunityHandler {
	return &CommunityHandler{newsletter: newsletter, contact: contact}
}

// Subscribe handles POST /api/newsletter
func (h *CommunityHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req model.NewsletterRequest
	if !bind(w, r, &req) {
		return
	}

	if _, err := h.newsletter.Subscribe(r.Context(), req.Email); err != nil {
		if errors.Is(err, repository.ErrAlreadySubscribed) {
			writeError(w, http.StatusBadRequest, msgAlreadySubscribed)
			return
		}
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msgSubscribed})
}

// Contact handles POST /api/contact
func (h *CommunityHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if !bind(w, r, &req) {
		return
	}

	if _, err := h.contact.Submit(r.Context(), req); err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msgContactReceived})
}
