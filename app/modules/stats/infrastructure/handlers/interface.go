package statshandlers

import (
	"context"

	statsevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/stats"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// Handlers defines the interface for stats event handlers.
type Handlers interface {
	// HandleProfileRequested answers a profile request.
	HandleProfileRequested(ctx context.Context, payload *statsevents.ProfileRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleMatchesRequested answers a recent-matches request.
	HandleMatchesRequested(ctx context.Context, payload *statsevents.MatchesRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleChartRequested renders a performance chart.
	HandleChartRequested(ctx context.Context, payload *statsevents.ChartRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleExportRequested renders a match history spreadsheet.
	HandleExportRequested(ctx context.Context, payload *statsevents.ExportRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleMatchSyncRequested pulls a player's matches into the local store.
	HandleMatchSyncRequested(ctx context.Context, payload *statsevents.MatchSyncRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
