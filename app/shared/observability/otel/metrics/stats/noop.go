package statsmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards all measurements.
type NoOpMetrics struct{}

// NewNoop returns a no-op StatsMetrics.
func NewNoop() StatsMetrics { return &NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordRiotAPICall(context.Context, string, int, time.Duration)          {}
func (NoOpMetrics) RecordCacheOutcome(context.Context, string, bool)                       {}

var _ StatsMetrics = (*NoOpMetrics)(nil)
