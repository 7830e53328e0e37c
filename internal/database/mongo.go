package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongo connects to MongoDB and returns the named database.
// The caller owns the client and must Disconnect it on shutdown.
func NewMongo(ctx context.Context, uri, dbName string, logger zerolog.Logger) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetServerSelectionTimeout(5 * time.Second)

	var (
		client *mongo.Client
		err    error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err = mongo.Connect(ctx, opts)
		if err == nil {
			if err = client.Ping(ctx, readpref.Primary()); err == nil {
				break
			}
			_ = client.Disconnect(context.Background())
		}
		logger.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", connectAttempts).
			Msg("mongo connect failed, retrying")
		if attempt == connectAttempts {
			break
		}
		if err := sleep(ctx, retryDelay); err != nil {
			return nil, nil, err
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}

	return client, client.Database(dbName), nil
}
