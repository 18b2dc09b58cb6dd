package accounts

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	accountsservice "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/application"
	accounthandlers "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/handlers"
	accountsdb "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/repositories"
	accountsrouter "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/router"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/config"
)

// Module represents the accounts module.
type Module struct {
	AccountService accountsservice.Service
	AccountsRouter *accountsrouter.AccountsRouter
	cancelFunc     context.CancelFunc
	observability  observability.Observability
}

// NewAccountsModule creates and initializes a new accounts module. The
// verifier is the bootstrap's Riot client adapter; the stats and lobby
// modules resolve summoner identities through AccountService.
func NewAccountsModule(
	ctx context.Context,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	routerCtx context.Context,
	db *bun.DB,
	cfg *config.Config,
	verifier accountsservice.RiotVerifier,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer
	metrics := obs.Registry.AccountMetrics

	logger.InfoContext(ctx, "accounts.NewAccountsModule initializing")

	// 1. Initialize Repository
	repo := accountsdb.NewRepository(db)

	// 2. Initialize Service
	service := accountsservice.NewAccountService(
		repo,
		verifier,
		logger,
		metrics,
		tracer,
		db,
		cfg.Riot.Platform,
	)

	// 3. Initialize Handlers
	handlers := accounthandlers.NewAccountHandlers(service, logger, tracer)

	// 4. Initialize Router
	accountsRouter := accountsrouter.NewAccountsRouter(
		logger,
		router,
		eventBus,
		eventBus,
		helpers,
		tracer,
	)

	// 5. Configure the router with handlers
	if err := accountsRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure accounts router: %w", err)
	}

	return &Module{
		AccountService: service,
		AccountsRouter: accountsRouter,
		observability:  obs,
	}, nil
}

// Run starts the accounts module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting accounts module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Accounts module goroutine stopped")
}

// Close shuts down the accounts module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping accounts module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.AccountsRouter != nil {
		if err := m.AccountsRouter.Close(); err != nil {
			logger.Error("Error closing AccountsRouter from module", "error", err)
			return fmt.Errorf("error closing AccountsRouter: %w", err)
		}
	}

	logger.Info("Accounts module stopped")
	return nil
}
