package statsmetrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StatsMetrics records stats module operational metrics, including upstream
// Riot API call outcomes and match cache effectiveness.
type StatsMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordRiotAPICall(ctx context.Context, route string, statusCode int, duration time.Duration)
	RecordCacheOutcome(ctx context.Context, kind string, hit bool)
}

type otelMetrics struct {
	attempts     metric.Int64Counter
	successes    metric.Int64Counter
	failures     metric.Int64Counter
	durations    metric.Float64Histogram
	riotCalls    metric.Int64Counter
	riotLatency  metric.Float64Histogram
	cacheOutcome metric.Int64Counter
}

// NewStatsMetrics creates otel-backed stats metrics on the given meter.
func NewStatsMetrics(meter metric.Meter) (StatsMetrics, error) {
	m := &otelMetrics{}
	var err error

	if m.attempts, err = meter.Int64Counter("stats_operation_attempts_total"); err != nil {
		return nil, err
	}
	if m.successes, err = meter.Int64Counter("stats_operation_success_total"); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter("stats_operation_failure_total"); err != nil {
		return nil, err
	}
	if m.durations, err = meter.Float64Histogram("stats_operation_duration_seconds"); err != nil {
		return nil, err
	}
	if m.riotCalls, err = meter.Int64Counter("stats_riot_api_calls_total"); err != nil {
		return nil, err
	}
	if m.riotLatency, err = meter.Float64Histogram("stats_riot_api_duration_seconds"); err != nil {
		return nil, err
	}
	if m.cacheOutcome, err = meter.Int64Counter("stats_cache_outcomes_total"); err != nil {
		return nil, err
	}

	return m, nil
}

func opAttrs(operation, service string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("service", service),
	)
}

func (m *otelMetrics) RecordOperationAttempt(ctx context.Context, operation, service string) {
	m.attempts.Add(ctx, 1, opAttrs(operation, service))
}

func (m *otelMetrics) RecordOperationSuccess(ctx context.Context, operation, service string) {
	m.successes.Add(ctx, 1, opAttrs(operation, service))
}

func (m *otelMetrics) RecordOperationFailure(ctx context.Context, operation, service string) {
	m.failures.Add(ctx, 1, opAttrs(operation, service))
}

func (m *otelMetrics) RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration) {
	m.durations.Record(ctx, duration.Seconds(), opAttrs(operation, service))
}

func (m *otelMetrics) RecordRiotAPICall(ctx context.Context, route string, statusCode int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status_code", statusCode),
	)
	m.riotCalls.Add(ctx, 1, attrs)
	m.riotLatency.Record(ctx, duration.Seconds(), attrs)
}

func (m *otelMetrics) RecordCacheOutcome(ctx context.Context, kind string, hit bool) {
	m.cacheOutcome.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("hit", hit),
	))
}
