package lobbyservice

import (
	"context"
	"time"

	lobbydomain "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/domain"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// LobbyInfo describes one open lobby session.
type LobbyInfo struct {
	ID        sharedtypes.LobbyID
	GuildID   sharedtypes.GuildID
	ChannelID sharedtypes.ChannelID
	MessageID sharedtypes.MessageID
	OpenedBy  sharedtypes.DiscordID
	ExpiresAt time.Time
}

// LobbyStatus pairs a lobby with its current queue projection.
type LobbyStatus struct {
	Lobby LobbyInfo
	Pool  lobbydomain.PoolStatus
}

// ReactionOutcome is what one processed reaction changed. Assignment is
// non-nil only when the pool was full after the mutation.
type ReactionOutcome struct {
	Lobby      LobbyInfo
	Pool       lobbydomain.PoolStatus
	Assignment *lobbydomain.TeamAssignment
}

// ExpiryScheduler schedules and cancels lobby expiry jobs.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, lobbyID sharedtypes.LobbyID, at time.Time) error
	CancelExpiry(ctx context.Context, lobbyID sharedtypes.LobbyID) error
}

// Service is the lobby module's application surface.
type Service interface {
	OpenLobby(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID, openedBy sharedtypes.DiscordID, text string) (*LobbyInfo, error)
	LinkBoard(ctx context.Context, lobbyID sharedtypes.LobbyID, messageID sharedtypes.MessageID) error
	HandleReaction(ctx context.Context, messageID sharedtypes.MessageID, userID sharedtypes.DiscordID, emoji string, added bool) (*ReactionOutcome, error)
	Status(ctx context.Context, channelID sharedtypes.ChannelID) (*LobbyStatus, error)
	CloseLobby(ctx context.Context, channelID sharedtypes.ChannelID) (*LobbyInfo, error)
	ExpireLobby(ctx context.Context, lobbyID sharedtypes.LobbyID) (*LobbyInfo, error)
	RestoreOpenLobbies(ctx context.Context) (int, error)
}
