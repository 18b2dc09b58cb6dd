package accountsrouter

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	accounthandlers "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/handlers"
	accountevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/accounts"
	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// AccountsRouter handles Watermill handler registration for account events.
type AccountsRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	helper     utils.Helpers
	tracer     trace.Tracer
}

// NewAccountsRouter creates a new AccountsRouter.
func NewAccountsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	helper utils.Helpers,
	tracer trace.Tracer,
) *AccountsRouter {
	return &AccountsRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		helper:     helper,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *AccountsRouter) Configure(_ context.Context, handlers accounthandlers.Handlers) error {
	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	helper     utils.Helpers
}

// registerHandlers wires NATS topics to handler methods.
func (r *AccountsRouter) registerHandlers(handlers accounthandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		helper:     r.helper,
	}

	r.logger.Info("Registering accounts module handlers",
		slog.String("link_subject", accountevents.LinkRequestedV1),
		slog.String("message_subject", discordevents.MessageCreatedV1),
	)

	registerHandler(deps, accountevents.LinkRequestedV1, handlers.HandleLinkRequested)
	registerHandler(deps, accountevents.UnlinkRequestedV1, handlers.HandleUnlinkRequested)
	registerHandler(deps, accountevents.ListRequestedV1, handlers.HandleListRequested)
	registerHandler(deps, discordevents.MessageCreatedV1, handlers.HandleMessageCreated)

	r.logger.Info("Accounts module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "accounts." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.helper,
			nil,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *AccountsRouter) Close() error {
	return r.router.Close()
}
