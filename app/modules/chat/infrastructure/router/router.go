package chatrouter

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	chathandlers "github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/handlers"
	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// ChatRouter handles Watermill handler registration for chat events.
type ChatRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	helper     utils.Helpers
	tracer     trace.Tracer
}

// NewChatRouter creates a new ChatRouter.
func NewChatRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	helper utils.Helpers,
	tracer trace.Tracer,
) *ChatRouter {
	return &ChatRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		helper:     helper,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *ChatRouter) Configure(_ context.Context, handlers chathandlers.Handlers) error {
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
func (r *ChatRouter) registerHandlers(handlers chathandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		helper:     r.helper,
	}

	r.logger.Info("Registering chat module handlers",
		slog.String("message_subject", discordevents.MessageCreatedV1),
	)

	registerHandler(deps, discordevents.MessageCreatedV1, handlers.HandleMessageCreated)

	r.logger.Info("Chat module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "chat." + topic

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
func (r *ChatRouter) Close() error {
	return r.router.Close()
}
