package lobbyhandler_integration_tests

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	lobbymodule "github.com/Five-Stack-Club/rift-bot/app/modules/lobby"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability"
	eventbusmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/eventbus"
	lobbymetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/lobby"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/integration_tests/testutils"
)

var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// ratingStore lets tests script the ratings the lobby pool resolves.
// Unscripted users return an error, so the pool falls back to its default.
type ratingStore struct {
	mu      sync.Mutex
	ratings map[sharedtypes.DiscordID]int
}

func newRatingStore() *ratingStore {
	return &ratingStore{ratings: make(map[sharedtypes.DiscordID]int)}
}

func (s *ratingStore) Set(id sharedtypes.DiscordID, rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[id] = rating
}

func (s *ratingStore) LookupRating(_ context.Context, id sharedtypes.DiscordID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.ratings[id]; ok {
		return r, nil
	}
	return 0, errors.New("no rating recorded")
}

type HandlerTestDeps struct {
	*testutils.TestEnvironment
	LobbyModule *lobbymodule.Module
	Router      *message.Router
	EventBus    eventbus.EventBus
	TestHelpers utils.Helpers
	Ratings     *ratingStore
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing lobby handler test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
		} else {
			log.Println("Lobby handler test environment initialized successfully.")
			testEnv = env
		}
	})

	if testEnvErr != nil {
		t.Fatalf("Lobby handler test environment initialization failed: %v", testEnvErr)
	}

	if testEnv == nil {
		t.Fatalf("Lobby handler test environment not initialized")
	}

	return testEnv
}

func SetupTestLobbyHandler(t *testing.T) (HandlerTestDeps, func()) {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer resetCancel()
	if err := env.Reset(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	watermillLogger := watermill.NopLogger{}
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	eventBusCtx, eventBusCancel := context.WithCancel(env.Ctx)
	routerRunCtx, routerRunCancel := context.WithCancel(env.Ctx)

	eventBusImpl, err := eventbus.NewEventBus(
		eventBusCtx,
		env.Config.NATS.URL,
		discardLogger,
		"backend",
		eventbusmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
	)
	if err != nil {
		eventBusCancel()
		routerRunCancel()
		t.Fatalf("Failed to create EventBus: %v", err)
	}

	for _, streamName := range testutils.StandardStreamNames {
		if err := eventBusImpl.CreateStream(env.Ctx, streamName); err != nil {
			eventBusImpl.Close()
			eventBusCancel()
			routerRunCancel()
			t.Fatalf("Failed to create required NATS stream %q: %v", streamName, err)
		}
	}

	routerConfig := message.RouterConfig{CloseTimeout: 2 * time.Second}
	watermillRouter, err := message.NewRouter(routerConfig, watermillLogger)
	if err != nil {
		eventBusImpl.Close()
		eventBusCancel()
		routerRunCancel()
		t.Fatalf("Failed to create Watermill router: %v", err)
	}

	realHelpers := utils.NewHelper(discardLogger)
	ratings := newRatingStore()

	lobbyModule, err := lobbymodule.NewLobbyModule(
		env.Ctx,
		observability.Observability{
			Provider: &observability.Provider{
				Logger: discardLogger,
			},
			Registry: &observability.Registry{
				LobbyMetrics: lobbymetrics.NewNoop(),
				Tracer:       noop.NewTracerProvider().Tracer("test"),
			},
		},
		eventBusImpl,
		watermillRouter,
		realHelpers,
		routerRunCtx,
		env.DB,
		env.Config,
		ratings,
	)
	if err != nil {
		eventBusImpl.Close()
		eventBusCancel()
		routerRunCancel()
		t.Fatalf("Failed to create lobby module: %v", err)
	}

	routerWg := &sync.WaitGroup{}
	routerWg.Add(1)
	go func() {
		defer routerWg.Done()
		if runErr := watermillRouter.Run(routerRunCtx); runErr != nil && runErr != context.Canceled {
			t.Errorf("Watermill router stopped with error: %v", runErr)
		}
	}()

	time.Sleep(500 * time.Millisecond)

	cleanup := func() {
		log.Println("Cleaning up lobby handler test environment...")
		routerRunCancel()

		if lobbyModule != nil {
			lobbyModule.Close()
		}

		if watermillRouter != nil {
			if err := watermillRouter.Close(); err != nil {
				t.Logf("Warning: Failed to close Watermill router: %v", err)
			}
		}

		eventBusCancel()

		if eventBusImpl != nil {
			eventBusImpl.Close()
		}

		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer waitCancel()

		waitCh := make(chan struct{})
		go func() {
			routerWg.Wait()
			close(waitCh)
		}()

		select {
		case <-waitCh:
			log.Println("Router goroutine finished")
		case <-waitCtx.Done():
			log.Println("WARNING: Router goroutine did not finish within timeout")
		}
	}

	t.Cleanup(cleanup)

	return HandlerTestDeps{
		TestEnvironment: env,
		LobbyModule:     lobbyModule,
		Router:          watermillRouter,
		EventBus:        eventBusImpl,
		TestHelpers:     realHelpers,
		Ratings:         ratings,
	}, cleanup
}
