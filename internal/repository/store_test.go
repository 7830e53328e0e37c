package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/everydog-league/api/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory returns an empty store with indexes in place.
type storeFactory func(t *testing.T) Store

func testEvents() []model.Event {
	return []model.Event{
		{ID: "evt-a", Title: "A", Date: "2025-08-15", Time: "9:00 AM - 12:00 PM", SkillLevel: model.SkillBeginner, Capacity: 3, RegisteredCount: 0, WhatToBring: []string{"Leash"}, CreatedAt: "2025-06-01T00:00:00+00:00"},
		{ID: "evt-b", Title: "B", Date: "2025-09-20", SkillLevel: model.SkillAdvanced, Capacity: 1, RegisteredCount: 1, WhatToBring: []string{}, CreatedAt: "2025-06-01T00:00:00+00:00"},
		{ID: "evt-c", Title: "C", Date: "2025-08-29", SkillLevel: model.SkillBeginner, Capacity: 10, RegisteredCount: 2, WhatToBring: []string{"Water", "Treats"}, CreatedAt: "2025-06-01T00:00:00+00:00"},
		{ID: "evt-d", Title: "D", Date: "2025-09-05", SkillLevel: model.SkillOpen, Capacity: 5, RegisteredCount: 0, WhatToBring: []string{}, CreatedAt: "2025-06-01T00:00:00+00:00"},
	}
}

func newRegistration(eventID, email string) model.Registration {
	return model.Registration{
		ID:              uuid.NewString(),
		EventID:         eventID,
		Name:            "Alex",
		Email:           email,
		DogName:         "Rex",
		DogBreed:        "Border Collie",
		DogSize:         model.DogMedium,
		ExperienceLevel: model.ExperienceBeginner,
		WaiverSigned:    true,
		CreatedAt:       "2025-07-01T10:00:00+00:00",
	}
}

func seeded(t *testing.T, newStore storeFactory) Store {
	t.Helper()
	s := newStore(t)
	require.NoError(t, s.InsertEvents(context.Background(), testEvents()))
	return s
}

func dates(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Date
	}
	return out
}

func runStoreTests(t *testing.T, newStore storeFactory) {
	t.Run("CountAndInsert", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		n, err := s.CountEvents(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, s.InsertEvents(ctx, testEvents()))
		n, err = s.CountEvents(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 4, n)
	})

	t.Run("ListSortsAscending", func(t *testing.T) {
		s := seeded(t, newStore)
		events, err := s.ListEvents(context.Background(), model.EventFilter{Ascending: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-08-15", "2025-08-29", "2025-09-05", "2025-09-20"}, dates(events))
	})

	t.Run("ListSortsDescending", func(t *testing.T) {
		s := seeded(t, newStore)
		events, err := s.ListEvents(context.Background(), model.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-09-20", "2025-09-05", "2025-08-29", "2025-08-15"}, dates(events))
	})

	t.Run("ListFiltersBySkillLevel", func(t *testing.T) {
		s := seeded(t, newStore)
		events, err := s.ListEvents(context.Background(), model.EventFilter{SkillLevel: model.SkillBeginner, Ascending: true})
		require.NoError(t, err)
		require.Len(t, events, 2)
		for _, e := range events {
			assert.Equal(t, model.SkillBeginner, e.SkillLevel)
		}
		assert.Equal(t, []string{"Leash"}, events[0].WhatToBring)
	})

	t.Run("ListUnknownSkillLevelIsEmpty", func(t *testing.T) {
		s := seeded(t, newStore)
		events, err := s.ListEvents(context.Background(), model.EventFilter{SkillLevel: "Expert"})
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("ListCapsAtLimit", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		many := make([]model.Event, MaxListLimit+5)
		for i := range many {
			many[i] = model.Event{
				ID:          fmt.Sprintf("evt-%03d", i),
				Date:        fmt.Sprintf("2025-%02d-%02d", i%12+1, i%28+1),
				SkillLevel:  model.SkillOpen,
				Capacity:    1,
				WhatToBring: []string{},
				CreatedAt:   "2025-06-01T00:00:00+00:00",
			}
		}
		require.NoError(t, s.InsertEvents(ctx, many))

		events, err := s.ListEvents(ctx, model.EventFilter{Ascending: true, Limit: MaxListLimit})
		require.NoError(t, err)
		assert.Len(t, events, MaxListLimit)
	})

	t.Run("GetEvent", func(t *testing.T) {
		s := seeded(t, newStore)
		e, err := s.GetEvent(context.Background(), "evt-c")
		require.NoError(t, err)
		assert.Equal(t, "C", e.Title)
		assert.Equal(t, []string{"Water", "Treats"}, e.WhatToBring)

		_, err = s.GetEvent(context.Background(), "evt-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CreateRegistrationIncrementsCount", func(t *testing.T) {
		ctx := context.Background()
		s := seeded(t, newStore)

		reg := newRegistration("evt-a", "alex@example.com")
		require.NoError(t, s.CreateRegistration(ctx, reg))

		e, err := s.GetEvent(ctx, "evt-a")
		require.NoError(t, err)
		assert.Equal(t, 1, e.RegisteredCount)

		found, err := s.FindRegistration(ctx, "evt-a", "alex@example.com")
		require.NoError(t, err)
		assert.Equal(t, reg.ID, found.ID)
		assert.Equal(t, model.DogMedium, found.DogSize)

		_, err = s.FindRegistration(ctx, "evt-a", "other@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CreateRegistrationDuplicate", func(t *testing.T) {
		ctx := context.Background()
		s := seeded(t, newStore)

		require.NoError(t, s.CreateRegistration(ctx, newRegistration("evt-a", "alex@example.com")))
		err := s.CreateRegistration(ctx, newRegistration("evt-a", "alex@example.com"))
		assert.ErrorIs(t, err, ErrAlreadyRegistered)

		e, err := s.GetEvent(ctx, "evt-a")
		require.NoError(t, err)
		assert.Equal(t, 1, e.RegisteredCount)

		// Same email on another event is fine.
		require.NoError(t, s.CreateRegistration(ctx, newRegistration("evt-c", "alex@example.com")))
	})

	t.Run("CreateRegistrationFull", func(t *testing.T) {
		ctx := context.Background()
		s := seeded(t, newStore)

		err := s.CreateRegistration(ctx, newRegistration("evt-b", "late@example.com"))
		assert.ErrorIs(t, err, ErrEventFull)

		_, err = s.FindRegistration(ctx, "evt-b", "late@example.com")
		assert.ErrorIs(t, err, ErrNotFound)

		e, err := s.GetEvent(ctx, "evt-b")
		require.NoError(t, err)
		assert.Equal(t, 1, e.RegisteredCount)
	})

	t.Run("ConcurrentRegistrationsNeverExceedCapacity", func(t *testing.T) {
		ctx := context.Background()
		s := seeded(t, newStore)

		const attempts = 12
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			full      int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := s.CreateRegistration(ctx, newRegistration("evt-a", fmt.Sprintf("dog%d@example.com", i)))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, ErrEventFull):
					full++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 3, succeeded)
		assert.Equal(t, attempts-3, full)

		e, err := s.GetEvent(ctx, "evt-a")
		require.NoError(t, err)
		assert.Equal(t, e.Capacity, e.RegisteredCount)
	})

	t.Run("Subscribers", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.FindSubscriber(ctx, "pack@example.com")
		assert.ErrorIs(t, err, ErrNotFound)

		sub := model.NewsletterSubscriber{ID: uuid.NewString(), Email: "pack@example.com", CreatedAt: "2025-07-01T10:00:00+00:00"}
		require.NoError(t, s.CreateSubscriber(ctx, sub))

		found, err := s.FindSubscriber(ctx, "pack@example.com")
		require.NoError(t, err)
		assert.Equal(t, sub.ID, found.ID)

		sub.ID = uuid.NewString()
		assert.ErrorIs(t, s.CreateSubscriber(ctx, sub), ErrAlreadySubscribed)
	})

	t.Run("ContactMessagesHaveNoUniqueness", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for i := 0; i < 2; i++ {
			require.NoError(t, s.CreateContactMessage(ctx, model.ContactMessage{
				ID:        uuid.NewString(),
				Name:      "Sam",
				Email:     "sam@example.com",
				Message:   "Hello",
				CreatedAt: "2025-07-01T10:00:00+00:00",
			}))
		}
	})

	t.Run("EnsureIndexesIsIdempotent", func(t *testing.T) {
		s := seeded(t, newStore)
		require.NoError(t, s.EnsureIndexes(context.Background()))
		require.NoError(t, s.EnsureIndexes(context.Background()))
		require.NoError(t, s.Ping(context.Background()))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		return NewMemory()
	})
}

func TestMemoryContactMessages(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.CreateContactMessage(context.Background(), model.ContactMessage{ID: "1", Message: "hi"}))
	msgs := m.ContactMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Message)
	assert.False(t, msgs[0].VolunteerInterest)
}

func TestMemoryReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.InsertEvents(ctx, testEvents()))

	e, err := m.GetEvent(ctx, "evt-c")
	require.NoError(t, err)
	e.WhatToBring[0] = "changed"

	listed, err := m.ListEvents(ctx, model.EventFilter{Ascending: true})
	require.NoError(t, err)
	for i := range listed {
		for j := range listed[i].WhatToBring {
			listed[i].WhatToBring[j] = "changed"
		}
	}

	e, err = m.GetEvent(ctx, "evt-c")
	require.NoError(t, err)
	assert.Equal(t, []string{"Water", "Treats"}, e.WhatToBring)
}

func TestUndoContextSurvivesCancellation(t *testing.T) {
	type key struct{}
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "req-1"))
	cancel()

	ctx, undoCancel := undoContext(parent)
	defer undoCancel()

	assert.NoError(t, ctx.Err())
	assert.Equal(t, "req-1", ctx.Value(key{}))
	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
}
