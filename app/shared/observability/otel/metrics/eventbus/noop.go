package eventbusmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards all measurements.
type NoOpMetrics struct{}

// NewNoop returns a no-op EventBusMetrics.
func NewNoop() EventBusMetrics { return &NoOpMetrics{} }

func (NoOpMetrics) RecordPublishAttempt(context.Context, string)                 {}
func (NoOpMetrics) RecordPublishSuccess(context.Context, string)                 {}
func (NoOpMetrics) RecordPublishFailure(context.Context, string)                 {}
func (NoOpMetrics) RecordPublishDuration(context.Context, string, time.Duration) {}
func (NoOpMetrics) RecordStreamCreated(context.Context, string)                  {}

var _ EventBusMetrics = (*NoOpMetrics)(nil)
