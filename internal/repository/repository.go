// Package repository implements persistence for events, registrations,
// newsletter subscribers and contact messages.
//
// Three interchangeable backends share the Store contract: PostgreSQL via
// pgx, MongoDB via the official driver, and an in-memory store used by tests
// and local demos.
package repository

import (
	"context"
	"errors"

	"github.com/everydog-league/api/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrEventFull is returned when an event has no remaining capacity.
var ErrEventFull = errors.New("event is fully booked")

// ErrAlreadyRegistered is returned when the same email registers twice for one event.
var ErrAlreadyRegistered = errors.New("email already registered for this event")

// ErrAlreadySubscribed is returned when an email is already on the newsletter.
var ErrAlreadySubscribed = errors.New("email already subscribed")

// MaxListLimit caps every event listing.
const MaxListLimit = 100

// Store is the full persistence contract every backend satisfies.
type Store interface {
	CountEvents(ctx context.Context) (int64, error)
	InsertEvents(ctx context.Context, events []model.Event) error
	ListEvents(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)

	FindRegistration(ctx context.Context, eventID, email string) (*model.Registration, error)
	// CreateRegistration stores reg and increments the event's registered
	// count in one guarded step. It returns ErrEventFull when the increment
	// would exceed capacity and ErrAlreadyRegistered on a (event_id, email)
	// collision; in both cases nothing is persisted.
	CreateRegistration(ctx context.Context, reg model.Registration) error

	FindSubscriber(ctx context.Context, email string) (*model.NewsletterSubscriber, error)
	CreateSubscriber(ctx context.Context, sub model.NewsletterSubscriber) error

	CreateContactMessage(ctx context.Context, msg model.ContactMessage) error

	// EnsureIndexes creates the uniqueness and lookup indexes. Idempotent.
	EnsureIndexes(ctx context.Context) error
	Ping(ctx context.Context) error
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
