package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	pgOnce    sync.Once
	pgPool    *pgxpool.Pool
	pgInitErr error

	mongoOnce    sync.Once
	mongoClient  *mongo.Client
	mongoInitErr error
)

func skipIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func sharedPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pgOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("everydog_league"),
			postgres.WithUsername("everydog"),
			postgres.WithPassword("everydog"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			),
		)
		if err != nil {
			pgInitErr = err
			return
		}
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			pgInitErr = err
			return
		}
		pgPool, pgInitErr = pgxpool.New(ctx, dsn)
	})
	require.NoError(t, pgInitErr)
	return pgPool
}

func sharedMongo(t *testing.T) *mongo.Client {
	t.Helper()
	mongoOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo:7",
				ExposedPorts: []string{"27017/tcp"},
				WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(time.Minute),
			},
			Started: true,
		})
		if err != nil {
			mongoInitErr = err
			return
		}
		uri, err := container.PortEndpoint(ctx, "27017/tcp", "mongodb")
		if err != nil {
			mongoInitErr = err
			return
		}
		mongoClient, mongoInitErr = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	})
	require.NoError(t, mongoInitErr)
	return mongoClient
}

func TestPostgresStore(t *testing.T) {
	skipIntegration(t)

	runStoreTests(t, func(t *testing.T) Store {
		ctx := context.Background()
		pool := sharedPostgres(t)

		s, err := NewPostgres(ctx, pool)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `TRUNCATE events, registrations, newsletter_subscribers, contact_messages`)
		require.NoError(t, err)
		require.NoError(t, s.EnsureIndexes(ctx))
		return s
	})
}

func TestMongoStore(t *testing.T) {
	skipIntegration(t)

	runStoreTests(t, func(t *testing.T) Store {
		ctx := context.Background()
		client := sharedMongo(t)

		db := client.Database("everydog_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
		t.Cleanup(func() { _ = db.Drop(context.Background()) })

		s := NewMongo(db)
		require.NoError(t, s.EnsureIndexes(ctx))
		return s
	})
}
