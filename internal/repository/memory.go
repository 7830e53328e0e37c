package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/everydog-league/api/internal/model"
)

type regKey struct {
	eventID string
	email   string
}

// Memory keeps every collection in process memory. It enforces the same
// uniqueness rules as the database backends and is safe for concurrent use.
type Memory struct {
	mu            sync.RWMutex
	events        map[string]model.Event
	registrations map[regKey]model.Registration
	subscribers   map[string]model.NewsletterSubscriber
	contacts      []model.ContactMessage
}

func NewMemory() *Memory {
	return &Memory{
		events:        make(map[string]model.Event),
		registrations: make(map[regKey]model.Registration),
		subscribers:   make(map[string]model.NewsletterSubscriber),
	}
}

func (m *Memory) EnsureIndexes(context.Context) error { return nil }

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) CountEvents(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.events)), nil
}

func (m *Memory) InsertEvents(_ context.Context, events []model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		m.events[e.ID] = cloneEvent(e)
	}
	return nil
}

func (m *Memory) ListEvents(_ context.Context, filter model.EventFilter) ([]model.Event, error) {
	m.mu.RLock()
	events := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		if filter.SkillLevel != "" && e.SkillLevel != filter.SkillLevel {
			continue
		}
		events = append(events, cloneEvent(e))
	}
	m.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			if filter.Ascending {
				return events[i].Date < events[j].Date
			}
			return events[i].Date > events[j].Date
		}
		return events[i].ID < events[j].ID
	})
	if limit := clampLimit(filter.Limit); len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *Memory) GetEvent(_ context.Context, id string) (*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	e = cloneEvent(e)
	return &e, nil
}

func (m *Memory) FindRegistration(_ context.Context, eventID, email string) (*model.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.registrations[regKey{eventID, email}]
	if !ok {
		return nil, ErrNotFound
	}
	return &reg, nil
}

func (m *Memory) CreateRegistration(_ context.Context, reg model.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := regKey{reg.EventID, reg.Email}
	if _, exists := m.registrations[key]; exists {
		return ErrAlreadyRegistered
	}
	e, ok := m.events[reg.EventID]
	if !ok || e.IsFull() {
		return ErrEventFull
	}
	e.RegisteredCount++
	m.events[reg.EventID] = e
	m.registrations[key] = reg
	return nil
}

func (m *Memory) FindSubscriber(_ context.Context, email string) (*model.NewsletterSubscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subscribers[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (m *Memory) CreateSubscriber(_ context.Context, sub model.NewsletterSubscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.subscribers[sub.Email]; exists {
		return ErrAlreadySubscribed
	}
	m.subscribers[sub.Email] = sub
	return nil
}

func (m *Memory) CreateContactMessage(_ context.Context, msg model.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, msg)
	return nil
}

// cloneEvent copies e so callers never share WhatToBring with the store.
func cloneEvent(e model.Event) model.Event {
	e.WhatToBring = append([]string{}, e.WhatToBring...)
	return e
}

// ContactMessages returns a copy of every stored contact message.
func (m *Memory) ContactMessages() []model.ContactMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ContactMessage(nil), m.contacts...)
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
	_ Store = (*Mongo)(nil)
)
