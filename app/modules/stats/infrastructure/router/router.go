package statsrouter

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	statshandlers "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/handlers"
	statsevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/stats"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// StatsRouter handles Watermill handler registration for stats events.
type StatsRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	helper     utils.Helpers
	tracer     trace.Tracer
}

// NewStatsRouter creates a new StatsRouter.
func NewStatsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	helper utils.Helpers,
	tracer trace.Tracer,
) *StatsRouter {
	return &StatsRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		helper:     helper,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *StatsRouter) Configure(_ context.Context, handlers statshandlers.Handlers) error {
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
func (r *StatsRouter) registerHandlers(handlers statshandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		helper:     r.helper,
	}

	r.logger.Info("Registering stats module handlers",
		slog.String("profile_subject", statsevents.ProfileRequestedV1),
		slog.String("sync_subject", statsevents.MatchSyncRequestedV1),
	)

	registerHandler(deps, statsevents.ProfileRequestedV1, handlers.HandleProfileRequested)
	registerHandler(deps, statsevents.MatchesRequestedV1, handlers.HandleMatchesRequested)
	registerHandler(deps, statsevents.ChartRequestedV1, handlers.HandleChartRequested)
	registerHandler(deps, statsevents.ExportRequestedV1, handlers.HandleExportRequested)
	registerHandler(deps, statsevents.MatchSyncRequestedV1, handlers.HandleMatchSyncRequested)

	r.logger.Info("Stats module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "stats." + topic

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
func (r *StatsRouter) Close() error {
	return r.router.Close()
}
