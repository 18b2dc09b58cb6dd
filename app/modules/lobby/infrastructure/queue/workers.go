package lobbyqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/Five-Stack-Club/rift-bot/app/eventbus"
	lobbyevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/lobby"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
)

// lobbyExpiryWorker publishes the expire.due event when a lobby's TTL job
// fires. It does not touch lobby state itself; the module's own handler
// consumes the event so expiry flows through the same path as every other
// lobby mutation.
type lobbyExpiryWorker struct {
	river.WorkerDefaults[LobbyExpiryJob]
	logger   *slog.Logger
	eventBus eventbus.EventBus
	helpers  utils.Helpers
}

// NewLobbyExpiryWorker creates the worker for lobby expiry jobs.
func NewLobbyExpiryWorker(logger *slog.Logger, eventBus eventbus.EventBus, helpers utils.Helpers) river.Worker[LobbyExpiryJob] {
	return &lobbyExpiryWorker{
		logger:   logger,
		eventBus: eventBus,
		helpers:  helpers,
	}
}

func (w *lobbyExpiryWorker) Work(ctx context.Context, job *river.Job[LobbyExpiryJob]) error {
	w.logger.InfoContext(ctx, "Lobby expiry job fired",
		attr.String("lobby_id", job.Args.LobbyID),
		attr.Int64("job_id", job.ID),
	)

	lobbyID, err := sharedtypes.ParseLobbyID(job.Args.LobbyID)
	if err != nil {
		// A malformed ID will never parse on retry either.
		w.logger.ErrorContext(ctx, "Discarding expiry job with invalid lobby ID",
			attr.String("lobby_id", job.Args.LobbyID),
			attr.Error(err),
		)
		return nil
	}

	payload := lobbyevents.LobbyExpireDuePayloadV1{LobbyID: lobbyID}
	msg, err := w.helpers.CreateNewMessage(payload, lobbyevents.LobbyExpireDueV1)
	if err != nil {
		return fmt.Errorf("failed to create expire.due message: %w", err)
	}

	if err := w.eventBus.Publish(lobbyevents.LobbyExpireDueV1, msg); err != nil {
		return fmt.Errorf("failed to publish expire.due event: %w", err)
	}

	return nil
}
