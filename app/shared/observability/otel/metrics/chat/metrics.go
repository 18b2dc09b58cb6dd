package chatmetrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ChatMetrics records chat module operational metrics, including completion
// rounds and tool invocations.
type ChatMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordCompletion(ctx context.Context, toolCalls int, duration time.Duration)
	RecordToolInvocation(ctx context.Context, tool string, success bool)
}

type otelMetrics struct {
	attempts        metric.Int64Counter
	successes       metric.Int64Counter
	failures        metric.Int64Counter
	durations       metric.Float64Histogram
	completions     metric.Int64Counter
	completionTimes metric.Float64Histogram
	toolCalls       metric.Int64Counter
}

// NewChatMetrics creates otel-backed chat metrics on the given meter.
func NewChatMetrics(meter metric.Meter) (ChatMetrics, error) {
	m := &otelMetrics{}
	var err error

	if m.attempts, err = meter.Int64Counter("chat_operation_attempts_total"); err != nil {
		return nil, err
	}
	if m.successes, err = meter.Int64Counter("chat_operation_success_total"); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter("chat_operation_failure_total"); err != nil {
		return nil, err
	}
	if m.durations, err = meter.Float64Histogram("chat_operation_duration_seconds"); err != nil {
		return nil, err
	}
	if m.completions, err = meter.Int64Counter("chat_completions_total"); err != nil {
		return nil, err
	}
	if m.completionTimes, err = meter.Float64Histogram("chat_completion_duration_seconds"); err != nil {
		return nil, err
	}
	if m.toolCalls, err = meter.Int64Counter("chat_tool_invocations_total"); err != nil {
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

func (m *otelMetrics) RecordCompletion(ctx context.Context, toolCalls int, duration time.Duration) {
	m.completions.Add(ctx, 1, metric.WithAttributes(attribute.Int("tool_calls", toolCalls)))
	m.completionTimes.Record(ctx, duration.Seconds())
}

func (m *otelMetrics) RecordToolInvocation(ctx context.Context, tool string, success bool) {
	m.toolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.Bool("success", success),
	))
}
