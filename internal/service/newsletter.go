package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/everydog-league/api/internal/metrics"
	"github.com/everydog-league/api/internal/model"
	"github.com/everydog-league/api/internal/repository"
	"github.com/rs/zerolog"
)

// NewsletterService manages newsletter signups.
type NewsletterService struct {
	store NewsletterStore
	stamper
}

func NewNewsletterService(store NewsletterStore) *NewsletterService {
	return &NewsletterService{store: store, stamper: defaultStamper()}
}

// Subscribe adds email to the newsletter. It returns
// repository.ErrAlreadySubscribed when the address is already present,
// including when a concurrent signup wins the unique index.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (sub *model.NewsletterSubscriber, err error) {
	ctx, span := startSpan(ctx, "NewsletterService.Subscribe")
	defer func() {
		endSpan(span, err, repository.ErrAlreadySubscribed)
		metrics.NewsletterSubscriptionsTotal.WithLabelValues(subscriptionOutcome(err)).Inc()
	}()

	_, err = s.store.FindSubscriber(ctx, email)
	switch {
	case err == nil:
		return nil, repository.ErrAlreadySubscribed
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("find subscriber: %w", err)
	}

	sub = &model.NewsletterSubscriber{
		ID:        s.newID(),
		Email:     email,
		CreatedAt: s.timestamp(),
	}
	if err = s.store.CreateSubscriber(ctx, *sub); err != nil {
		if errors.Is(err, repository.ErrAlreadySubscribed) {
			return nil, err
		}
		return nil, fmt.Errorf("create subscriber: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("subscriber_id", sub.ID).Msg("newsletter subscriber added")
	return sub, nil
}

func subscriptionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, repository.ErrAlreadySubscribed):
		return "duplicate"
	default:
		return "error"
	}
}
