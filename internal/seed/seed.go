// Package seed loads the fixture events and prepares a fresh store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/everydog-league/api/internal/model"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed events.yaml
var defaultEvents []byte

// Store is the subset of the repository used during bootstrap.
type Store interface {
	CountEvents(ctx context.Context) (int64, error)
	InsertEvents(ctx context.Context, events []model.Event) error
	EnsureIndexes(ctx context.Context) error
}

type fixture struct {
	Events []model.Event `yaml:"events"`
}

// Load returns the fixture events. An empty path selects the embedded set.
func Load(path string) ([]model.Event, error) {
	data := defaultEvents
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		data = b
	}
	return parse(data)
}

func parse(data []byte) ([]model.Event, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if len(f.Events) == 0 {
		return nil, errors.New("seed file contains no events")
	}

	seen := make(map[string]struct{}, len(f.Events))
	for i, e := range f.Events {
		switch {
		case e.ID == "":
			return nil, fmt.Errorf("event %d: missing id", i)
		case !e.SkillLevel.Valid():
			return nil, fmt.Errorf("event %s: unknown skill_level %q", e.ID, e.SkillLevel)
		case e.Capacity < 0 || e.RegisteredCount < 0 || e.RegisteredCount > e.Capacity:
			return nil, fmt.Errorf("event %s: registered_count %d out of range for capacity %d", e.ID, e.RegisteredCount, e.Capacity)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("event %s: duplicate id", e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.WhatToBring == nil {
			f.Events[i].WhatToBring = []string{}
		}
	}
	return f.Events, nil
}

// Bootstrap inserts events when the store holds none, then ensures indexes.
// It returns how many events were inserted. Running it again against a
// populated store changes nothing.
func Bootstrap(ctx context.Context, store Store, events []model.Event, logger zerolog.Logger) (int, error) {
	count, err := store.CountEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}

	inserted := 0
	if count == 0 {
		if err := store.InsertEvents(ctx, events); err != nil {
			return 0, fmt.Errorf("seed events: %w", err)
		}
		inserted = len(events)
		logger.Info().Int("events", inserted).Msg("seeded events")
	} else {
		logger.Info().Int64("existing", count).Msg("events already present, skipping seed")
	}

	if err := store.EnsureIndexes(ctx); err != nil {
		return inserted, fmt.Errorf("ensure indexes: %w", err)
	}
	return inserted, nil
}
