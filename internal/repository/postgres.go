package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/everydog-league/api/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/tables.sql
var tablesSQL string

//go:embed sql/indexes.sql
var indexesSQL string

const uniqueViolation = "23505"

const eventColumns = `id, title, date, time, location, description, skill_level,
	capacity, registered_count, what_to_bring, image_url, created_at`

// Postgres stores every collection as a table in one PostgreSQL database.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a Postgres store and makes sure its tables exist.
func NewPostgres(ctx context.Context, db *pgxpool.Pool) (*Postgres, error) {
	if _, err := db.Exec(ctx, tablesSQL); err != nil {
		return nil, fmt.Errorf("ensure tables: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (r *Postgres) EnsureIndexes(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, indexesSQL); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}

func (r *Postgres) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *Postgres) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// InsertEvents inserts all events in a single batch.
func (r *Postgres) InsertEvents(ctx context.Context, events []model.Event) error {
	batch := &pgx.Batch{}
	for _, e := range events {
		whatToBring := e.WhatToBring
		if whatToBring == nil {
			whatToBring = []string{}
		}
		batch.Queue(
			`INSERT INTO events (`+eventColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			e.ID, e.Title, e.Date, e.Time, e.Location, e.Description, string(e.SkillLevel),
			e.Capacity, e.RegisteredCount, whatToBring, e.ImageURL, e.CreatedAt,
		)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}

// ListEvents returns up to MaxListLimit events ordered by date.
func (r *Postgres) ListEvents(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var args []any
	if filter.SkillLevel != "" {
		query += ` WHERE skill_level = $1`
		args = append(args, string(filter.SkillLevel))
	}
	if filter.Ascending {
		query += ` ORDER BY date ASC, id ASC`
	} else {
		query += ` ORDER BY date DESC, id ASC`
	}
	query += fmt.Sprintf(` LIMIT %d`, clampLimit(filter.Limit))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEvent returns a single event or ErrNotFound.
func (r *Postgres) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

func scanEvent(row pgx.Row) (model.Event, error) {
	var (
		e     model.Event
		level string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.Location, &e.Description, &level,
		&e.Capacity, &e.RegisteredCount, &e.WhatToBring, &e.ImageURL, &e.CreatedAt)
	e.SkillLevel = model.SkillLevel(level)
	if e.WhatToBring == nil {
		e.WhatToBring = []string{}
	}
	return e, err
}

func (r *Postgres) FindRegistration(ctx context.Context, eventID, email string) (*model.Registration, error) {
	var (
		reg       model.Registration
		size, exp string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, name, email, dog_name, dog_breed, dog_size,
		        experience_level, waiver_signed, created_at
		 FROM registrations
		 WHERE event_id = $1 AND email = $2`,
		eventID, email,
	).Scan(&reg.ID, &reg.EventID, &reg.Name, &reg.Email, &reg.DogName, &reg.DogBreed,
		&size, &exp, &reg.WaiverSigned, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	reg.DogSize = model.DogSize(size)
	reg.ExperienceLevel = model.ExperienceLevel(exp)
	return &reg, nil
}

// CreateRegistration inserts the registration and bumps registered_count in
// one transaction. The increment only applies while registered_count is
// below capacity, so concurrent registrations cannot overbook the event.
func (r *Postgres) CreateRegistration(ctx context.Context, reg model.Registration) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (id, event_id, name, email, dog_name, dog_breed,
		                            dog_size, experience_level, waiver_signed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		reg.ID, reg.EventID, reg.Name, reg.Email, reg.DogName, reg.DogBreed,
		string(reg.DogSize), string(reg.ExperienceLevel), reg.WaiverSigned, reg.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrAlreadyRegistered
			return err
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE events
		 SET registered_count = registered_count + 1
		 WHERE id = $1 AND registered_count < capacity`,
		reg.EventID,
	)
	if err != nil {
		return fmt.Errorf("increment registered_count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrEventFull
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Postgres) FindSubscriber(ctx context.Context, email string) (*model.NewsletterSubscriber, error) {
	var sub model.NewsletterSubscriber
	err := r.db.QueryRow(ctx,
		`SELECT id, email, created_at FROM newsletter_subscribers WHERE email = $1`, email,
	).Scan(&sub.ID, &sub.Email, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find subscriber: %w", err)
	}
	return &sub, nil
}

func (r *Postgres) CreateSubscriber(ctx context.Context, sub model.NewsletterSubscriber) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO newsletter_subscribers (id, email, created_at) VALUES ($1, $2, $3)`,
		sub.ID, sub.Email, sub.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadySubscribed
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *Postgres) CreateContactMessage(ctx context.Context, msg model.ContactMessage) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO contact_messages (id, name, email, message, volunteer_interest, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.Name, msg.Email, msg.Message, msg.VolunteerInterest, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
