package accountmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards all measurements.
type NoOpMetrics struct{}

// NewNoop returns a no-op AccountMetrics.
func NewNoop() AccountMetrics { return &NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordLinkChange(context.Context, string)                               {}

var _ AccountMetrics = (*NoOpMetrics)(nil)
