package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/everydog-league/api/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	eventsCollection        = "events"
	registrationsCollection = "registrations"
	subscribersCollection   = "newsletter_subscribers"
	contactCollection       = "contact_messages"
)

// noID keeps Mongo's internal _id out of every decoded document.
var noID = bson.M{"_id": 0}

// Mongo stores each record type in its own collection.
type Mongo struct {
	db            *mongo.Database
	events        *mongo.Collection
	registrations *mongo.Collection
	subscribers   *mongo.Collection
	contacts      *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		db:            db,
		events:        db.Collection(eventsCollection),
		registrations: db.Collection(registrationsCollection),
		subscribers:   db.Collection(subscribersCollection),
		contacts:      db.Collection(contactCollection),
	}
}

func (r *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{r.events, mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{r.events, mongo.IndexModel{Keys: bson.D{{Key: "skill_level", Value: 1}}}},
		{r.events, mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}}},
		{r.registrations, mongo.IndexModel{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{r.subscribers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (r *Mongo) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

func (r *Mongo) CountEvents(ctx context.Context) (int64, error) {
	n, err := r.events.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r *Mongo) InsertEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, len(events))
	for i, e := range events {
		if e.WhatToBring == nil {
			e.WhatToBring = []string{}
		}
		docs[i] = e
	}
	if _, err := r.events.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}

func (r *Mongo) ListEvents(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	query := bson.M{}
	if filter.SkillLevel != "" {
		query["skill_level"] = string(filter.SkillLevel)
	}
	dir := -1
	if filter.Ascending {
		dir = 1
	}
	opts := options.Find().
		SetProjection(noID).
		SetSort(bson.D{{Key: "date", Value: dir}, {Key: "id", Value: 1}}).
		SetLimit(int64(clampLimit(filter.Limit)))

	cur, err := r.events.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	var events []model.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

func (r *Mongo) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := r.events.FindOne(ctx, bson.M{"id": id}, options.FindOne().SetProjection(noID)).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

func (r *Mongo) FindRegistration(ctx context.Context, eventID, email string) (*model.Registration, error) {
	var reg model.Registration
	err := r.registrations.FindOne(ctx,
		bson.M{"event_id": eventID, "email": email},
		options.FindOne().SetProjection(noID),
	).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

// CreateRegistration inserts the registration, then increments
// registered_count only while it is below capacity. When the increment
// matches nothing the registration is removed again.
func (r *Mongo) CreateRegistration(ctx context.Context, reg model.Registration) error {
	if _, err := r.registrations.InsertOne(ctx, reg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	res, err := r.events.UpdateOne(ctx,
		bson.M{
			"id":    reg.EventID,
			"$expr": bson.M{"$lt": bson.A{"$registered_count", "$capacity"}},
		},
		bson.M{"$inc": bson.M{"registered_count": 1}},
	)
	if err == nil && res.MatchedCount > 0 {
		return nil
	}

	undoCtx, cancel := undoContext(ctx)
	defer cancel()
	if _, delErr := r.registrations.DeleteOne(undoCtx, bson.M{"id": reg.ID}); delErr != nil {
		return fmt.Errorf("undo registration %s: %w", reg.ID, delErr)
	}
	if err != nil {
		return fmt.Errorf("increment registered_count: %w", err)
	}
	return ErrEventFull
}

const undoTimeout = 5 * time.Second

// undoContext keeps ctx values but not its cancellation, so a compensating
// write still runs after the request has gone away.
func undoContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), undoTimeout)
}

func (r *Mongo) FindSubscriber(ctx context.Context, email string) (*model.NewsletterSubscriber, error) {
	var sub model.NewsletterSubscriber
	err := r.subscribers.FindOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(noID)).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find subscriber: %w", err)
	}
	return &sub, nil
}

func (r *Mongo) CreateSubscriber(ctx context.Context, sub model.NewsletterSubscriber) error {
	if _, err := r.subscribers.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadySubscribed
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *Mongo) CreateContactMessage(ctx context.Context, msg model.ContactMessage) error {
	if _, err := r.contacts.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}
