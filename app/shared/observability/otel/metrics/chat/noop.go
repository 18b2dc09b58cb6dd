package chatmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards all measurements.
type NoOpMetrics struct{}

// NewNoop returns a no-op ChatMetrics.
func NewNoop() ChatMetrics { return &NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordCompletion(context.Context, int, time.Duration)                   {}
func (NoOpMetrics) RecordToolInvocation(context.Context, string, bool)                     {}

var _ ChatMetrics = (*NoOpMetrics)(nil)
