package sharedtypes

import "github.com/google/uuid"

// DiscordID is a Discord snowflake identifying a user.
type DiscordID string

func (d DiscordID) String() string { return string(d) }

// GuildID is a Discord snowflake identifying a guild.
type GuildID string

func (g GuildID) String() string { return string(g) }

// ChannelID is a Discord snowflake identifying a channel.
type ChannelID string

func (c ChannelID) String() string { return string(c) }

// MessageID is a Discord snowflake identifying a message.
type MessageID string

func (m MessageID) String() string { return string(m) }

// LobbyID identifies one custom game lobby session.
type LobbyID uuid.UUID

func (l LobbyID) String() string { return uuid.UUID(l).String() }

// NewLobbyID returns a fresh random lobby ID.
func NewLobbyID() LobbyID { return LobbyID(uuid.New()) }

// ParseLobbyID parses the string form of a lobby ID.
func ParseLobbyID(s string) (LobbyID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return LobbyID{}, err
	}
	return LobbyID(id), nil
}

// PUUID is Riot's globally unique, region-independent player identifier.
type PUUID string

func (p PUUID) String() string { return string(p) }
