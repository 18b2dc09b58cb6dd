package lobbyhandlers

import (
	"context"

	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	lobbyevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/lobby"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// Handlers defines the interface for lobby event handlers.
type Handlers interface {
	// HandleLobbyOpenCommand handles the open-lobby slash command.
	HandleLobbyOpenCommand(ctx context.Context, payload *discordevents.LobbyOpenCommandPayloadV1) ([]handlerwrapper.Result, error)

	// HandleLobbyCloseCommand handles the close-lobby slash command.
	HandleLobbyCloseCommand(ctx context.Context, payload *discordevents.LobbyCloseCommandPayloadV1) ([]handlerwrapper.Result, error)

	// HandleBoardLinked ties the gateway's board message back to its lobby.
	HandleBoardLinked(ctx context.Context, payload *lobbyevents.LobbyBoardLinkedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleReactionAdded handles a reaction added to any guild message.
	HandleReactionAdded(ctx context.Context, payload *discordevents.ReactionPayloadV1) ([]handlerwrapper.Result, error)

	// HandleReactionRemoved handles a reaction removed from any guild message.
	HandleReactionRemoved(ctx context.Context, payload *discordevents.ReactionPayloadV1) ([]handlerwrapper.Result, error)

	// HandleExpireDue handles the scheduler's TTL event for a lobby.
	HandleExpireDue(ctx context.Context, payload *lobbyevents.LobbyExpireDuePayloadV1) ([]handlerwrapper.Result, error)
}
