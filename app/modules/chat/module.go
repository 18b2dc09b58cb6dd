package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	chatservice "github.com/Five-Stack-Club/rift-bot/app/modules/chat/application"
	chathandlers "github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/handlers"
	"github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/llmapi"
	chatdb "github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/repositories"
	chatrouter "github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/router"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/config"
)

// Module represents the chat module.
type Module struct {
	ChatService   chatservice.Service
	ChatRouter    *chatrouter.ChatRouter
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewChatModule creates and initializes a new chat module. The stats and
// accounts services back the model's toolset.
func NewChatModule(
	ctx context.Context,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	routerCtx context.Context,
	db *bun.DB,
	cfg *config.Config,
	stats chatservice.StatsReader,
	accounts chatservice.AccountsReader,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer
	metrics := obs.Registry.ChatMetrics

	logger.InfoContext(ctx, "chat.NewChatModule initializing")

	// 1. Initialize Repository
	repo := chatdb.NewRepository(db)

	// 2. Initialize Completion Client
	client := llmapi.New(llmapi.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.RequestTimeout,
	})

	// 3. Initialize Service
	service := chatservice.NewChatService(
		repo,
		client,
		stats,
		accounts,
		logger,
		metrics,
		tracer,
		db,
		cfg.LLM.SystemPrompt,
		cfg.LLM.HistoryWindow,
	)

	// 4. Initialize Handlers
	handlers := chathandlers.NewChatHandlers(service, logger, tracer)

	// 5. Initialize Router
	chatRouter := chatrouter.NewChatRouter(
		logger,
		router,
		eventBus,
		eventBus,
		helpers,
		tracer,
	)

	// 6. Configure the router with handlers
	if err := chatRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure chat router: %w", err)
	}

	return &Module{
		ChatService:   service,
		ChatRouter:    chatRouter,
		observability: obs,
	}, nil
}

// Run starts the chat module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting chat module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Chat module goroutine stopped")
}

// Close shuts down the chat module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping chat module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.ChatRouter != nil {
		if err := m.ChatRouter.Close(); err != nil {
			logger.Error("Error closing ChatRouter from module", "error", err)
			return fmt.Errorf("error closing ChatRouter: %w", err)
		}
	}

	logger.Info("Chat module stopped")
	return nil
}
