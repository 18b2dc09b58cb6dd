package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	statsservice "github.com/Five-Stack-Club/rift-bot/app/modules/stats/application"
	statshandlers "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/handlers"
	statsdb "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/riotapi"
	statsrouter "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/router"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability"
	statsmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/stats"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/config"
)

// pruneInterval is how often the request log janitor runs.
const pruneInterval = time.Hour

// Module represents the stats module.
type Module struct {
	StatsService  statsservice.Service
	StatsRouter   *statsrouter.StatsRouter
	cancelFunc    context.CancelFunc
	observability observability.Observability
	logRetention  time.Duration
}

// NewRequestObserver records every Riot API request in metrics and the
// request log table.
func NewRequestObserver(logger *slog.Logger, metrics statsmetrics.StatsMetrics, repo statsdb.Repository, db *bun.DB) riotapi.RequestObserver {
	return func(ctx context.Context, route string, statusCode int, duration time.Duration) {
		metrics.RecordRiotAPICall(ctx, route, statusCode, duration)
		entry := &statsdb.APIRequestLog{
			Route:       route,
			StatusCode:  statusCode,
			DurationMS:  duration.Milliseconds(),
			RequestedAt: time.Now().UTC(),
		}
		if err := repo.LogRequest(ctx, db, entry); err != nil {
			logger.WarnContext(ctx, "Failed to record api request log", "error", err)
		}
	}
}

// NewStatsModule creates and initializes a new stats module. The riot client
// is built at bootstrap so the accounts module can share it; links is the
// accounts module's primary-link lookup.
func NewStatsModule(
	ctx context.Context,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	routerCtx context.Context,
	db *bun.DB,
	cfg *config.Config,
	riot riotapi.Client,
	links statsservice.LinkResolver,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer
	metrics := obs.Registry.StatsMetrics

	logger.InfoContext(ctx, "stats.NewStatsModule initializing")

	// 1. Initialize Repository
	repo := statsdb.NewRepository(db)

	// 2. Initialize Service
	service := statsservice.NewStatsService(
		repo,
		riot,
		links,
		logger,
		metrics,
		tracer,
		db,
		riotapi.NormalizePlatform(cfg.Riot.Platform),
	)

	// 3. Initialize Handlers
	handlers := statshandlers.NewStatsHandlers(service, logger, tracer)

	// 4. Initialize Router
	statsRouter := statsrouter.NewStatsRouter(
		logger,
		router,
		eventBus,
		eventBus,
		helpers,
		tracer,
	)

	// 5. Configure the router with handlers
	if err := statsRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure stats router: %w", err)
	}

	return &Module{
		StatsService:  service,
		StatsRouter:   statsRouter,
		observability: obs,
		logRetention:  cfg.Stats.LogRetention,
	}, nil
}

// Run starts the stats module and its request log janitor.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting stats module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "Stats module goroutine stopped")
			return
		case <-ticker.C:
			removed, err := m.StatsService.PruneRequestLogs(ctx, m.logRetention)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to prune request logs", "error", err)
				continue
			}
			if removed > 0 {
				logger.InfoContext(ctx, "Pruned request logs", "removed", removed)
			}
		}
	}
}

// Close shuts down the stats module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping stats module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.StatsRouter != nil {
		if err := m.StatsRouter.Close(); err != nil {
			logger.Error("Error closing StatsRouter from module", "error", err)
			return fmt.Errorf("error closing StatsRouter: %w", err)
		}
	}

	logger.Info("Stats module stopped")
	return nil
}
