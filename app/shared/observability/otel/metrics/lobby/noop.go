package lobbymetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards all measurements. Used in tests and before the meter
// provider is ready.
type NoOpMetrics struct{}

// NewNoop returns a no-op LobbyMetrics.
func NewNoop() LobbyMetrics { return &NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordIntentEvent(context.Context, string, bool)                       {}
func (NoOpMetrics) RecordRatingLookup(context.Context, string)                            {}
func (NoOpMetrics) RecordTeamsFormed(context.Context, int, int)                           {}

var _ LobbyMetrics = (*NoOpMetrics)(nil)
