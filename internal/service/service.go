// Package service implements business logic and orchestration between HTTP
// handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/everydog-league/api/internal/model"
	"github.com/everydog-league/api/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/everydog-league/api/internal/service"

// ErrWaiverRequired is returned when a registration arrives without the
// safety waiver accepted. It is checked before any store access.
var ErrWaiverRequired = errors.New("safety waiver not signed")

// timestampLayout renders UTC times with an explicit +00:00 offset.
const timestampLayout = "2006-01-02T15:04:05.000000-07:00"

// EventStore is the persistence needed by EventService.
type EventStore interface {
	ListEvents(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	FindRegistration(ctx context.Context, eventID, email string) (*model.Registration, error)
	CreateRegistration(ctx context.Context, reg model.Registration) error
}

// NewsletterStore is the persistence needed by NewsletterService.
type NewsletterStore interface {
	FindSubscriber(ctx context.Context, email string) (*model.NewsletterSubscriber, error)
	CreateSubscriber(ctx context.Context, sub model.NewsletterSubscriber) error
}

// ContactStore is the persistence needed by ContactService.
type ContactStore interface {
	CreateContactMessage(ctx context.Context, msg model.ContactMessage) error
}

// clock and id generation are swapped out in tests.
type stamper struct {
	now   func() time.Time
	newID func() string
}

func defaultStamper() stamper {
	return stamper{now: time.Now, newID: uuid.NewString}
}

func (s stamper) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return telemetry.Tracer(tracerName).Start(ctx, name)
}

// endSpan marks unexpected failures on the span. Business rejections are
// expected outcomes and leave the span status unset.
func endSpan(span trace.Span, err error, expected ...error) {
	defer span.End()
	if err == nil {
		return
	}
	for _, e := range expected {
		if errors.Is(err, e) {
			return
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
