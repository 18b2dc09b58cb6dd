package accountmetrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AccountMetrics records accounts module operational metrics.
type AccountMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordLinkChange(ctx context.Context, action string)
}

type otelMetrics struct {
	attempts    metric.Int64Counter
	successes   metric.Int64Counter
	failures    metric.Int64Counter
	durations   metric.Float64Histogram
	linkChanges metric.Int64Counter
}

// NewAccountMetrics creates otel-backed account metrics on the given meter.
func NewAccountMetrics(meter metric.Meter) (AccountMetrics, error) {
	m := &otelMetrics{}
	var err error

	if m.attempts, err = meter.Int64Counter("accounts_operation_attempts_total"); err != nil {
		return nil, err
	}
	if m.successes, err = meter.Int64Counter("accounts_operation_success_total"); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter("accounts_operation_failure_total"); err != nil {
		return nil, err
	}
	if m.durations, err = meter.Float64Histogram("accounts_operation_duration_seconds"); err != nil {
		return nil, err
	}
	if m.linkChanges, err = meter.Int64Counter("accounts_link_changes_total"); err != nil {
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

func (m *otelMetrics) RecordLinkChange(ctx context.Context, action string) {
	m.linkChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}
