// Package lobbyevents defines the lobby module's NATS subjects and payloads.
package lobbyevents

import (
	"time"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// StreamName is the JetStream stream carrying lobby events.
const StreamName = "lobby"

const (
	LobbyOpenedV1        = "lobby.opened"
	LobbyBoardLinkedV1   = "lobby.board.linked"
	LobbyStatusUpdatedV1 = "lobby.status.updated"
	LobbyTeamsFormedV1   = "lobby.teams.formed"
	LobbyClosedV1        = "lobby.closed"
	LobbyOpenFailedV1    = "lobby.open.failed"
	LobbyExpireDueV1     = "lobby.expire.due"
)

// LobbyOpenedPayloadV1 announces a new lobby; the gateway responds by
// posting the board message and publishing LobbyBoardLinkedV1.
type LobbyOpenedPayloadV1 struct {
	LobbyID   sharedtypes.LobbyID   `json:"lobby_id"`
	GuildID   sharedtypes.GuildID   `json:"guild_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	OpenedBy  sharedtypes.DiscordID `json:"opened_by"`
	ExpiresAt time.Time             `json:"expires_at"`
}

// LobbyBoardLinkedPayloadV1 ties a posted board message back to its lobby.
type LobbyBoardLinkedPayloadV1 struct {
	LobbyID   sharedtypes.LobbyID   `json:"lobby_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	MessageID sharedtypes.MessageID `json:"message_id"`
}

// CandidateStatusV1 is one queue entry in a status update.
type CandidateStatusV1 struct {
	UserID sharedtypes.DiscordID `json:"user_id"`
	Roles  []string              `json:"roles"`
	Rating int                   `json:"rating"`
}

// LobbyStatusUpdatedPayloadV1 is published after every mutation while the
// lobby is still filling.
type LobbyStatusUpdatedPayloadV1 struct {
	LobbyID   sharedtypes.LobbyID   `json:"lobby_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	MessageID sharedtypes.MessageID `json:"message_id"`
	State     string                `json:"state"`
	Active    []CandidateStatusV1   `json:"active"`
	Waitlist  []CandidateStatusV1   `json:"waitlist"`
}

// TeamSlotV1 is one role assignment inside a formed team.
type TeamSlotV1 struct {
	Role   string                `json:"role"`
	UserID sharedtypes.DiscordID `json:"user_id"`
	Rating int                   `json:"rating"`
}

// LobbyTeamsFormedPayloadV1 is published whenever a full lobby has a fresh
// team split. Both teams list slots in fixed role order.
type LobbyTeamsFormedPayloadV1 struct {
	LobbyID              sharedtypes.LobbyID   `json:"lobby_id"`
	ChannelID            sharedtypes.ChannelID `json:"channel_id"`
	MessageID            sharedtypes.MessageID `json:"message_id"`
	TeamA                []TeamSlotV1          `json:"team_a"`
	TeamB                []TeamSlotV1          `json:"team_b"`
	RatingGap            int                   `json:"rating_gap"`
	PreferenceViolations int                   `json:"preference_violations"`
}

// LobbyClosedPayloadV1 reports a lobby leaving the registry. Reason is
// "closed" for explicit closes and "expired" for TTL expiry.
type LobbyClosedPayloadV1 struct {
	LobbyID   sharedtypes.LobbyID   `json:"lobby_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	MessageID sharedtypes.MessageID `json:"message_id"`
	Reason    string                `json:"reason"`
}

// LobbyOpenFailedPayloadV1 reports why an open command was rejected.
type LobbyOpenFailedPayloadV1 struct {
	GuildID   sharedtypes.GuildID   `json:"guild_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	Reason    string                `json:"reason"`
}

// LobbyExpireDuePayloadV1 is fired by the scheduler when a lobby's TTL
// elapses. The lobby handlers consume it and run the expiry.
type LobbyExpireDuePayloadV1 struct {
	LobbyID sharedtypes.LobbyID `json:"lobby_id"`
}
