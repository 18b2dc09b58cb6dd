package testutils

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	accountevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/accounts"
	chatevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/chat"
	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	lobbyevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/lobby"
	statsevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/stats"
	eventbusmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/eventbus"
	"github.com/Five-Stack-Club/rift-bot/config"
	"github.com/Five-Stack-Club/rift-bot/db/bundb"
	"github.com/Five-Stack-Club/rift-bot/integration_tests/containers"
)

// StandardStreamNames lists every JetStream stream the backend uses.
var StandardStreamNames = []string{
	discordevents.StreamName,
	lobbyevents.StreamName,
	statsevents.StreamName,
	accountevents.StreamName,
	chatevents.StreamName,
}

// TestEnvironment holds the containers and connections shared by a test
// package. One environment serves many tests; Reset clears state between
// them.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	EventBus      eventbus.EventBus
	NatsConn      *nats.Conn
	JetStream     jetstream.JetStream
	Config        *config.Config
	T             *testing.T
}

// NewTestEnvironment creates a new test environment with Postgres and NATS containers
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())

	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		T:             t,
	}

	if err := env.setupContainers(ctx); err != nil {
		cancel()
		return nil, err
	}

	return env, nil
}

// setupContainers initializes all containers and connections
func (env *TestEnvironment) setupContainers(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		pgContainer.Terminate(ctx)
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	db, err := bundb.NewDB(ctx, config.PostgresConfig{DSN: pgConnStr})
	if err != nil {
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	env.DB = db

	if err := runMigrationsWithConnStr(db, pgConnStr); err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	natsConn, err := nats.Connect(natsURL, nats.Timeout(10*time.Second))
	if err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	env.NatsConn = natsConn

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	env.JetStream = js

	// Test config mirrors the defaults the config loader would apply.
	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL},
		HTTP:     config.HTTPConfig{Addr: ":0"},
		Riot: config.RiotConfig{
			Platform:       "na1",
			RequestTimeout: 10 * time.Second,
			RatePerSecond:  20,
			RateBurst:      20,
		},
		LLM: config.LLMConfig{
			Model:          "gpt-4o-mini",
			HistoryWindow:  30,
			RequestTimeout: 60 * time.Second,
		},
		Lobby: config.LobbyConfig{
			TTL:           6 * time.Hour,
			RatingTimeout: 5 * time.Second,
		},
		Stats: config.StatsConfig{LogRetention: 7 * 24 * time.Hour},
	}

	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eventBus, err := eventbus.NewEventBus(
		ctx,
		natsURL,
		discardLogger,
		"backend",
		eventbusmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
	)
	if err != nil {
		natsConn.Close()
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to create EventBus: %w", err)
	}
	env.EventBus = eventBus

	for _, streamName := range StandardStreamNames {
		if err := eventBus.CreateStream(ctx, streamName); err != nil {
			eventBus.Close()
			natsConn.Close()
			db.Close()
			cleanupContainers(ctx, pgContainer, natsContainer)
			return fmt.Errorf("failed to create stream %q: %w", streamName, err)
		}
	}

	return nil
}

// Reset clears stream and table state so the next test starts clean.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	if err := env.ResetJetStreamState(ctx, StandardStreamNames...); err != nil {
		return fmt.Errorf("failed to reset JetStream: %w", err)
	}
	if err := CleanupDatabase(ctx, env.DB); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	return nil
}

// CheckContainerHealth verifies that containers are running and responsive
func (env *TestEnvironment) CheckContainerHealth() error {
	ctx, cancel := context.WithTimeout(env.Ctx, 10*time.Second)
	defer cancel()

	if env.NatsContainer != nil {
		state, err := env.NatsContainer.State(ctx)
		if err != nil || !state.Running {
			return fmt.Errorf("NATS container not healthy: running=%v, err=%v", state.Running, err)
		}
	}

	if env.PgContainer != nil {
		state, err := env.PgContainer.State(ctx)
		if err != nil || !state.Running {
			return fmt.Errorf("PostgreSQL container not healthy: running=%v, err=%v", state.Running, err)
		}
	}

	if env.DB != nil {
		var result int
		if err := env.DB.NewSelect().ColumnExpr("1").Scan(ctx, &result); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
	}

	if env.NatsConn != nil && !env.NatsConn.IsConnected() {
		return fmt.Errorf("NATS connection not healthy")
	}

	return nil
}

// Cleanup tears down all resources created for testing
func (env *TestEnvironment) Cleanup() {
	log.Println("Cleaning up test environment...")
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.NatsConn != nil {
		env.NatsConn.Close()
	}
	if env.DB != nil {
		env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
	log.Println("Cleanup complete.")
}

func cleanupContainers(ctx context.Context, pg *postgres.PostgresContainer, nats testcontainers.Container) {
	if pg != nil {
		pg.Terminate(ctx)
	}
	if nats != nil {
		nats.Terminate(ctx)
	}
}
