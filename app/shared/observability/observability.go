// Package observability wires structured logging, tracing, and metrics
// for the backend. Init builds the full provider/registry pair once at
// startup; modules receive the Observability value and pick what they need.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	accountmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/accounts"
	chatmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/chat"
	eventbusmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/eventbus"
	lobbymetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/lobby"
	statsmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/stats"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Config holds the settings Init needs to build providers.
type Config struct {
	ServiceName     string
	Environment     string
	Version         string
	OTLPEndpoint    string // empty disables exporting; providers become no-ops
	OTLPInsecure    bool
	TraceSampleRate float64
}

// Provider holds the raw telemetry providers.
type Provider struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	shutdownFuncs []func(context.Context) error
}

// Registry holds the per-module metric recorders plus the shared tracer.
type Registry struct {
	LobbyMetrics    lobbymetrics.LobbyMetrics
	StatsMetrics    statsmetrics.StatsMetrics
	AccountMetrics  accountmetrics.AccountMetrics
	ChatMetrics     chatmetrics.ChatMetrics
	EventBusMetrics eventbusmetrics.EventBusMetrics
	Tracer          trace.Tracer
}

// Observability bundles the provider and registry for injection into modules.
type Observability struct {
	Provider *Provider
	Registry *Registry
}

// Init builds logging, tracing, and metrics for the service. When no OTLP
// endpoint is configured the tracer and meter providers are no-ops, so the
// rest of the app can record telemetry unconditionally.
func Init(ctx context.Context, cfg Config) (Observability, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)

	provider := &Provider{Logger: logger}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		return Observability{}, fmt.Errorf("failed to build resource: %w", err)
	}

	if cfg.OTLPEndpoint != "" {
		traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
			metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		}

		traceExp, err := otlptracegrpc.New(ctx, traceOpts...)
		if err != nil {
			return Observability{}, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExp),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceSampleRate))),
		)
		provider.TracerProvider = tp
		provider.shutdownFuncs = append(provider.shutdownFuncs, tp.Shutdown)

		metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
		if err != nil {
			return Observability{}, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
		)
		provider.MeterProvider = mp
		provider.shutdownFuncs = append(provider.shutdownFuncs, mp.Shutdown)
	} else {
		provider.TracerProvider = tracenoop.NewTracerProvider()
		provider.MeterProvider = metricnoop.NewMeterProvider()
	}

	otel.SetTracerProvider(provider.TracerProvider)
	otel.SetMeterProvider(provider.MeterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	registry, err := buildRegistry(provider, cfg.ServiceName)
	if err != nil {
		return Observability{}, err
	}

	return Observability{Provider: provider, Registry: registry}, nil
}

func buildRegistry(provider *Provider, serviceName string) (*Registry, error) {
	meter := provider.MeterProvider.Meter(serviceName)

	lobby, err := lobbymetrics.NewLobbyMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create lobby metrics: %w", err)
	}
	stats, err := statsmetrics.NewStatsMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats metrics: %w", err)
	}
	accounts, err := accountmetrics.NewAccountMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create account metrics: %w", err)
	}
	chat, err := chatmetrics.NewChatMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat metrics: %w", err)
	}
	bus, err := eventbusmetrics.NewEventBusMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus metrics: %w", err)
	}

	return &Registry{
		LobbyMetrics:    lobby,
		StatsMetrics:    stats,
		AccountMetrics:  accounts,
		ChatMetrics:     chat,
		EventBusMetrics: bus,
		Tracer:          provider.TracerProvider.Tracer(serviceName),
	}, nil
}

// Shutdown flushes and stops the telemetry providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(p.shutdownFuncs) - 1; i >= 0; i-- {
		if err := p.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
