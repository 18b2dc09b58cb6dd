package lobbyrouter

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	lobbyhandlers "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/handlers"
	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	lobbyevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/lobby"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// LobbyRouter handles Watermill handler registration for lobby events.
type LobbyRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	helper     utils.Helpers
	tracer     trace.Tracer
}

// NewLobbyRouter creates a new LobbyRouter.
func NewLobbyRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	helper utils.Helpers,
	tracer trace.Tracer,
) *LobbyRouter {
	return &LobbyRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		helper:     helper,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *LobbyRouter) Configure(_ context.Context, handlers lobbyhandlers.Handlers) error {
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
func (r *LobbyRouter) registerHandlers(handlers lobbyhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		helper:     r.helper,
	}

	r.logger.Info("Registering lobby module handlers",
		slog.String("open_command_subject", discordevents.LobbyOpenCommandV1),
		slog.String("reaction_added_subject", discordevents.ReactionAddedV1),
	)

	registerHandler(deps, discordevents.LobbyOpenCommandV1, handlers.HandleLobbyOpenCommand)
	registerHandler(deps, discordevents.LobbyCloseCommandV1, handlers.HandleLobbyCloseCommand)
	registerHandler(deps, lobbyevents.LobbyBoardLinkedV1, handlers.HandleBoardLinked)
	registerHandler(deps, discordevents.ReactionAddedV1, handlers.HandleReactionAdded)
	registerHandler(deps, discordevents.ReactionRemovedV1, handlers.HandleReactionRemoved)
	registerHandler(deps, lobbyevents.LobbyExpireDueV1, handlers.HandleExpireDue)

	r.logger.Info("Lobby module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "lobby." + topic

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
func (r *LobbyRouter) Close() error {
	return r.router.Close()
}
