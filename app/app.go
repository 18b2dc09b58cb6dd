// Package app assembles the backend: configuration, storage, the event
// bus, the Watermill router, and the domain modules, plus the HTTP
// listener serving health and metrics.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"

	"github.com/Five-Stack-Club/rift-bot/app/adapters"
	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	"github.com/Five-Stack-Club/rift-bot/app/modules/accounts"
	"github.com/Five-Stack-Club/rift-bot/app/modules/chat"
	"github.com/Five-Stack-Club/rift-bot/app/modules/lobby"
	"github.com/Five-Stack-Club/rift-bot/app/modules/stats"
	statsdb "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/riotapi"
	accountevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/accounts"
	chatevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/chat"
	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	lobbyevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/lobby"
	statsevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/stats"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/Five-Stack-Club/rift-bot/config"
	"github.com/Five-Stack-Club/rift-bot/db/bundb"
)

// healthCheckTimeout bounds the readiness probes against the database and
// the event bus.
const healthCheckTimeout = 5 * time.Second

// App holds the assembled backend.
type App struct {
	Config          *config.Config
	Observability   observability.Observability
	DB              *bun.DB
	EventBus        eventbus.EventBus
	WatermillRouter *message.Router

	AccountsModule *accounts.Module
	StatsModule    *stats.Module
	LobbyModule    *lobby.Module
	ChatModule     *chat.Module

	httpServer         *http.Server
	prometheusRegistry *prometheus.Registry
	helpers            utils.Helpers
	cancelFunc         context.CancelFunc
}

// Initialize builds every component and wires the modules together. The
// accounts module comes first because stats, lobby, and chat all resolve
// identities through it.
func (app *App) Initialize(ctx context.Context, cfg *config.Config) error {
	app.Config = cfg

	obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	app.Observability = obs
	logger := obs.Provider.Logger

	logger.InfoContext(ctx, "App initializing",
		"environment", cfg.Observability.Environment,
		"http_addr", cfg.HTTP.Addr,
	)

	db, err := bundb.NewDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db

	eventBus, err := eventbus.NewEventBus(
		ctx,
		cfg.NATS.URL,
		logger,
		"backend",
		obs.Registry.EventBusMetrics,
		obs.Registry.Tracer,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	app.EventBus = eventBus

	streams := []string{
		discordevents.StreamName,
		lobbyevents.StreamName,
		statsevents.StreamName,
		accountevents.StreamName,
		chatevents.StreamName,
	}
	for _, stream := range streams {
		if err := eventBus.CreateStream(ctx, stream); err != nil {
			return fmt.Errorf("failed to create stream %q: %w", stream, err)
		}
	}

	app.prometheusRegistry = prometheus.NewRegistry()
	app.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	watermillLogger := watermill.NewSlogLogger(logger)
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return fmt.Errorf("failed to create watermill router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)
	metricsBuilder := wmmetrics.NewPrometheusMetricsBuilder(app.prometheusRegistry, "", "")
	metricsBuilder.AddPrometheusRouterMetrics(router)
	app.WatermillRouter = router

	app.helpers = utils.NewHelper(logger)

	// The Riot client is shared: stats reads match data through it and the
	// accounts module verifies links with it. Every request lands in the
	// stats request log.
	statsRepo := statsdb.NewRepository(db)
	riotClient := riotapi.New(riotapi.Config{
		APIKey:        cfg.Riot.APIKey,
		Platform:      cfg.Riot.Platform,
		Timeout:       cfg.Riot.RequestTimeout,
		RatePerSecond: cfg.Riot.RatePerSecond,
		RateBurst:     cfg.Riot.RateBurst,
	}, stats.NewRequestObserver(logger, obs.Registry.StatsMetrics, statsRepo, db))

	accountsModule, err := accounts.NewAccountsModule(
		ctx, obs, eventBus, router, app.helpers, ctx, db, cfg,
		adapters.NewRiotVerifier(riotClient),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize accounts module: %w", err)
	}
	app.AccountsModule = accountsModule

	statsModule, err := stats.NewStatsModule(
		ctx, obs, eventBus, router, app.helpers, ctx, db, cfg,
		riotClient,
		adapters.NewPrimaryLinkResolver(accountsModule.AccountService),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize stats module: %w", err)
	}
	app.StatsModule = statsModule

	lobbyModule, err := lobby.NewLobbyModule(
		ctx, obs, eventBus, router, app.helpers, ctx, db, cfg,
		adapters.NewLinkedRatingSource(accountsModule.AccountService, statsModule.StatsService),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize lobby module: %w", err)
	}
	app.LobbyModule = lobbyModule

	// The chat module's toolset reads the stats and accounts services
	// directly; their interfaces already satisfy the reader ports.
	chatModule, err := chat.NewChatModule(
		ctx, obs, eventBus, router, app.helpers, ctx, db, cfg,
		statsModule.StatsService,
		accountsModule.AccountService,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize chat module: %w", err)
	}
	app.ChatModule = chatModule

	app.httpServer = &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: app.routes(),
	}

	logger.InfoContext(ctx, "App initialized successfully")
	return nil
}

// routes builds the health and metrics listener.
func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", app.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.prometheusRegistry, promhttp.HandlerOpts{}))
	return r
}

// handleReady answers 200 only when the database and the event bus both
// respond.
func (app *App) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := app.DB.PingContext(ctx); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := app.EventBus.HealthCheck(ctx); err != nil {
		http.Error(w, "event bus unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Run starts the router, the modules, and the HTTP listener, then blocks
// until ctx is canceled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	app.cancelFunc = cancel
	defer cancel()

	logger := app.Observability.Provider.Logger
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.WatermillRouter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorContext(ctx, "Watermill router stopped", "error", err)
			cancel()
		}
	}()

	modules := []interface {
		Run(ctx context.Context, wg *sync.WaitGroup)
	}{
		app.AccountsModule,
		app.StatsModule,
		app.LobbyModule,
		app.ChatModule,
	}
	for _, m := range modules {
		wg.Add(1)
		go m.Run(ctx, &wg)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.InfoContext(ctx, "HTTP listener starting", "addr", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "HTTP listener stopped", "error", err)
			cancel()
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		defer shutdownCancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP listener shutdown failed", "error", err)
		}
	}()

	logger.InfoContext(ctx, "App running")
	<-ctx.Done()
	logger.Info("App context canceled, waiting for goroutines")
	wg.Wait()
	return nil
}

// Close shuts everything down in reverse construction order.
func (app *App) Close() error {
	logger := app.Observability.Provider.Logger
	logger.Info("App shutting down")

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	var errs []error
	closers := []func() error{}
	if app.ChatModule != nil {
		closers = append(closers, app.ChatModule.Close)
	}
	if app.LobbyModule != nil {
		closers = append(closers, app.LobbyModule.Close)
	}
	if app.StatsModule != nil {
		closers = append(closers, app.StatsModule.Close)
	}
	if app.AccountsModule != nil {
		closers = append(closers, app.AccountsModule.Close)
	}
	for _, close := range closers {
		if err := close(); err != nil {
			errs = append(errs, err)
		}
	}

	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	if err := app.Observability.Provider.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down observability: %w", err))
	}

	logger.Info("App shutdown complete")
	return errors.Join(errs...)
}
