package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/everydog-league/api/internal/metrics"
	"github.com/everydog-league/api/internal/model"
	"github.com/everydog-league/api/internal/repository"
	"github.com/everydog-league/api/internal/sanitize"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// SortSoonest orders events by ascending date. Any other sort value lists
// the latest events first.
const SortSoonest = "soonest"

// EventService orchestrates event listing and registration.
type EventService struct {
	store EventStore
	stamper
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(store EventStore) *EventService {
	return &EventService{store: store, stamper: defaultStamper()}
}

// ListEvents returns up to 100 events. skillLevel filters by exact match
// unless it is empty or "All". sort "soonest" orders by ascending date and
// any other value, including "", by descending date. Callers pass
// SortSoonest when the client sent no sort at all.
func (s *EventService) ListEvents(ctx context.Context, skillLevel, sort string) ([]model.Event, error) {
	ctx, span := startSpan(ctx, "EventService.ListEvents")
	filter := model.EventFilter{
		Ascending: sort == SortSoonest,
		Limit:     repository.MaxListLimit,
	}
	if skillLevel != "" && skillLevel != model.SkillAll {
		filter.SkillLevel = model.SkillLevel(skillLevel)
	}
	span.SetAttributes(
		attribute.String("filter.skill_level", string(filter.SkillLevel)),
		attribute.Bool("filter.ascending", filter.Ascending),
	)

	events, err := s.store.ListEvents(ctx, filter)
	endSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	ctx, span := startSpan(ctx, "EventService.GetEvent")
	span.SetAttributes(attribute.String("event.id", id))

	event, err := s.store.GetEvent(ctx, id)
	endSpan(span, err, repository.ErrNotFound)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// Register signs an attendee up for an event. Checks run in a fixed order
// and the first failure wins: waiver, event existence, capacity, duplicate.
// The store then commits the registration and the capacity increment as one
// guarded step, so a race lost after the checks still reports sold out or
// duplicate instead of overbooking.
func (s *EventService) Register(ctx context.Context, eventID string, req model.RegisterRequest) (reg *model.Registration, err error) {
	ctx, span := startSpan(ctx, "EventService.Register")
	span.SetAttributes(attribute.String("event.id", eventID))
	defer func() {
		endSpan(span, err, ErrWaiverRequired, repository.ErrNotFound, repository.ErrEventFull, repository.ErrAlreadyRegistered)
		metrics.RegistrationsTotal.WithLabelValues(registrationOutcome(err)).Inc()
	}()

	if req.WaiverSigned == nil || !*req.WaiverSigned {
		return nil, ErrWaiverRequired
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.IsFull() {
		return nil, repository.ErrEventFull
	}

	_, err = s.store.FindRegistration(ctx, eventID, *req.Email)
	switch {
	case err == nil:
		return nil, repository.ErrAlreadyRegistered
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("find registration: %w", err)
	}

	reg = &model.Registration{
		ID:              s.newID(),
		EventID:         eventID,
		Name:            sanitize.Text(*req.Name),
		Email:           *req.Email,
		DogName:         sanitize.Text(*req.DogName),
		DogBreed:        sanitize.Text(*req.DogBreed),
		DogSize:         req.DogSize,
		ExperienceLevel: req.ExperienceLevel,
		WaiverSigned:    true,
		CreatedAt:       s.timestamp(),
	}
	if err = s.store.CreateRegistration(ctx, *reg); err != nil {
		if errors.Is(err, repository.ErrEventFull) || errors.Is(err, repository.ErrAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("event_id", eventID).
		Str("registration_id", reg.ID).
		Msg("registration created")
	return reg, nil
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrWaiverRequired):
		return "waiver_required"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrEventFull):
		return "sold_out"
	case errors.Is(err, repository.ErrAlreadyRegistered):
		return "duplicate"
	default:
		return "error"
	}
}
