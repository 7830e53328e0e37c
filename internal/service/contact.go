package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/everydog-league/api/internal/metrics"
	"github.com/everydog-league/api/internal/model"
	"github.com/everydog-league/api/internal/sanitize"
	"github.com/rs/zerolog"
)

// ContactService stores messages sent through the contact form.
type ContactService struct {
	store ContactStore
	stamper
}

func NewContactService(store ContactStore) *ContactService {
	return &ContactService{store: store, stamper: defaultStamper()}
}

// Submit always stores a new message; there are no uniqueness rules.
func (s *ContactService) Submit(ctx context.Context, req model.ContactRequest) (msg *model.ContactMessage, err error) {
	ctx, span := startSpan(ctx, "ContactService.Submit")
	defer func() { endSpan(span, err) }()

	msg = &model.ContactMessage{
		ID:                s.newID(),
		Name:              sanitize.Text(*req.Name),
		Email:             *req.Email,
		Message:           sanitize.Text(*req.Message),
		VolunteerInterest: req.VolunteerInterest,
		CreatedAt:         s.timestamp(),
	}
	if err = s.store.CreateContactMessage(ctx, *msg); err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}

	metrics.ContactMessagesTotal.WithLabelValues(strconv.FormatBool(msg.VolunteerInterest)).Inc()
	zerolog.Ctx(ctx).Info().
		Str("message_id", msg.ID).
		Bool("volunteer_interest", msg.VolunteerInterest).
		Msg("contact message received")
	return msg, nil
}
