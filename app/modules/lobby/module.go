package lobby

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	lobbyservice "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/application"
	lobbydomain "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/domain"
	lobbyhandlers "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/handlers"
	lobbyqueue "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/queue"
	lobbydb "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/repositories"
	lobbyrouter "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/router"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/config"
)

// Module represents the lobby module.
type Module struct {
	LobbyService  lobbyservice.Service
	LobbyRouter   *lobbyrouter.LobbyRouter
	QueueService  *lobbyqueue.Service
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewLobbyModule creates and initializes a new lobby module. ratings is
// how candidate skill is resolved; the accounts and stats modules provide
// it at bootstrap.
func NewLobbyModule(
	ctx context.Context,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	routerCtx context.Context,
	db *bun.DB,
	cfg *config.Config,
	ratings lobbydomain.RatingSource,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer
	metrics := obs.Registry.LobbyMetrics

	logger.InfoContext(ctx, "lobby.NewLobbyModule initializing")

	// 1. Initialize Repository
	repo := lobbydb.NewRepository(db)

	// 2. Initialize the expiry queue
	queueService, err := lobbyqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, metrics, eventBus, helpers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lobby queue service: %w", err)
	}

	// 3. Initialize Service
	service := lobbyservice.NewLobbyService(
		repo,
		queueService,
		ratings,
		logger,
		metrics,
		tracer,
		db,
		cfg.Lobby.TTL,
		cfg.Lobby.RatingTimeout,
	)

	// 4. Reload open lobbies so board messages resolve after a restart
	restored, err := service.RestoreOpenLobbies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore open lobbies: %w", err)
	}
	logger.InfoContext(ctx, "Restored open lobby sessions", "count", restored)

	// 5. Initialize Handlers
	handlers := lobbyhandlers.NewLobbyHandlers(service, logger, tracer)

	// 6. Initialize Router
	lobbyRouter := lobbyrouter.NewLobbyRouter(
		logger,
		router,
		eventBus,
		eventBus,
		helpers,
		tracer,
	)

	// 7. Configure the router with handlers
	if err := lobbyRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure lobby router: %w", err)
	}

	return &Module{
		LobbyService:  service,
		LobbyRouter:   lobbyRouter,
		QueueService:  queueService,
		observability: obs,
	}, nil
}

// Run starts the lobby module and its expiry queue.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting lobby module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.QueueService.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to start lobby queue service", "error", err)
	} else {
		defer func() {
			if err := m.QueueService.Stop(context.Background()); err != nil {
				logger.Error("Error stopping lobby queue service", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Lobby module goroutine stopped")
}

// Close shuts down the lobby module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping lobby module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.LobbyRouter != nil {
		if err := m.LobbyRouter.Close(); err != nil {
			logger.Error("Error closing LobbyRouter from module", "error", err)
			return fmt.Errorf("error closing LobbyRouter: %w", err)
		}
	}

	logger.Info("Lobby module stopped")
	return nil
}
