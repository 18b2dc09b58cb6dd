package eventbusmetrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EventBusMetrics records publish/subscribe activity on the NATS event bus.
type EventBusMetrics interface {
	RecordPublishAttempt(ctx context.Context, subject string)
	RecordPublishSuccess(ctx context.Context, subject string)
	RecordPublishFailure(ctx context.Context, subject string)
	RecordPublishDuration(ctx context.Context, subject string, duration time.Duration)
	RecordStreamCreated(ctx context.Context, stream string)
}

type otelMetrics struct {
	attempts  metric.Int64Counter
	successes metric.Int64Counter
	failures  metric.Int64Counter
	durations metric.Float64Histogram
	streams   metric.Int64Counter
}

// NewEventBusMetrics creates otel-backed event bus metrics on the given meter.
func NewEventBusMetrics(meter metric.Meter) (EventBusMetrics, error) {
	m := &otelMetrics{}
	var err error

	if m.attempts, err = meter.Int64Counter("eventbus_publish_attempts_total"); err != nil {
		return nil, err
	}
	if m.successes, err = meter.Int64Counter("eventbus_publish_success_total"); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter("eventbus_publish_failure_total"); err != nil {
		return nil, err
	}
	if m.durations, err = meter.Float64Histogram("eventbus_publish_duration_seconds"); err != nil {
		return nil, err
	}
	if m.streams, err = meter.Int64Counter("eventbus_streams_created_total"); err != nil {
		return nil, err
	}

	return m, nil
}

func subjectAttr(subject string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("subject", subject))
}

func (m *otelMetrics) RecordPublishAttempt(ctx context.Context, subject string) {
	m.attempts.Add(ctx, 1, subjectAttr(subject))
}

func (m *otelMetrics) RecordPublishSuccess(ctx context.Context, subject string) {
	m.successes.Add(ctx, 1, subjectAttr(subject))
}

func (m *otelMetrics) RecordPublishFailure(ctx context.Context, subject string) {
	m.failures.Add(ctx, 1, subjectAttr(subject))
}

func (m *otelMetrics) RecordPublishDuration(ctx context.Context, subject string, duration time.Duration) {
	m.durations.Record(ctx, duration.Seconds(), subjectAttr(subject))
}

func (m *otelMetrics) RecordStreamCreated(ctx context.Context, stream string) {
	m.streams.Add(ctx, 1, metric.WithAttributes(attribute.String("stream", stream)))
}
