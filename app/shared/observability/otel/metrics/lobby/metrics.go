package lobbymetrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LobbyMetrics records lobby module operational metrics.
type LobbyMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordIntentEvent(ctx context.Context, role string, active bool)
	RecordRatingLookup(ctx context.Context, outcome string)
	RecordTeamsFormed(ctx context.Context, ratingGap, violations int)
}

type otelMetrics struct {
	attempts      metric.Int64Counter
	successes     metric.Int64Counter
	failures      metric.Int64Counter
	durations     metric.Float64Histogram
	intents       metric.Int64Counter
	ratingLookups metric.Int64Counter
	teamsFormed   metric.Int64Counter
	ratingGaps    metric.Int64Histogram
}

// NewLobbyMetrics creates otel-backed lobby metrics on the given meter.
func NewLobbyMetrics(meter metric.Meter) (LobbyMetrics, error) {
	m := &otelMetrics{}
	var err error

	if m.attempts, err = meter.Int64Counter("lobby_operation_attempts_total"); err != nil {
		return nil, err
	}
	if m.successes, err = meter.Int64Counter("lobby_operation_success_total"); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter("lobby_operation_failure_total"); err != nil {
		return nil, err
	}
	if m.durations, err = meter.Float64Histogram("lobby_operation_duration_seconds"); err != nil {
		return nil, err
	}
	if m.intents, err = meter.Int64Counter("lobby_intent_events_total"); err != nil {
		return nil, err
	}
	if m.ratingLookups, err = meter.Int64Counter("lobby_rating_lookups_total"); err != nil {
		return nil, err
	}
	if m.teamsFormed, err = meter.Int64Counter("lobby_teams_formed_total"); err != nil {
		return nil, err
	}
	if m.ratingGaps, err = meter.Int64Histogram("lobby_team_rating_gap"); err != nil {
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

func (m *otelMetrics) RecordIntentEvent(ctx context.Context, role string, active bool) {
	m.intents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.Bool("active", active),
	))
}

func (m *otelMetrics) RecordRatingLookup(ctx context.Context, outcome string) {
	m.ratingLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *otelMetrics) RecordTeamsFormed(ctx context.Context, ratingGap, violations int) {
	m.teamsFormed.Add(ctx, 1, metric.WithAttributes(attribute.Int("violations", violations)))
	m.ratingGaps.Record(ctx, int64(ratingGap))
}
