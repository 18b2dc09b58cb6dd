// Package discordevents defines the inbound NATS subjects the gateway
// process publishes and their payloads.
package discordevents

import (
	"time"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// StreamName is the JetStream stream carrying gateway traffic.
const StreamName = "discord"

const (
	MessageCreatedV1    = "discord.message.created"
	ReactionAddedV1     = "discord.reaction.added"
	ReactionRemovedV1   = "discord.reaction.removed"
	LobbyOpenCommandV1  = "discord.command.lobby.open"
	LobbyCloseCommandV1 = "discord.command.lobby.close"
)

// MessageCreatedPayloadV1 mirrors a guild text message observed by the gateway.
type MessageCreatedPayloadV1 struct {
	GuildID      sharedtypes.GuildID   `json:"guild_id"`
	ChannelID    sharedtypes.ChannelID `json:"channel_id"`
	MessageID    sharedtypes.MessageID `json:"message_id"`
	AuthorID     sharedtypes.DiscordID `json:"author_id"`
	AuthorName   string                `json:"author_name"`
	Content      string                `json:"content"`
	FromBot      bool                  `json:"from_bot"`
	BotMentioned bool                  `json:"bot_mentioned"`
	Timestamp    time.Time             `json:"timestamp"`
}

// ReactionPayloadV1 is shared by the added and removed subjects.
type ReactionPayloadV1 struct {
	GuildID   sharedtypes.GuildID   `json:"guild_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	MessageID sharedtypes.MessageID `json:"message_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	Emoji     string                `json:"emoji"`
}

// LobbyOpenCommandPayloadV1 carries the open-lobby slash command. Text is
// the raw option string and may name a close time ("until 9pm").
type LobbyOpenCommandPayloadV1 struct {
	GuildID     sharedtypes.GuildID   `json:"guild_id"`
	ChannelID   sharedtypes.ChannelID `json:"channel_id"`
	RequestedBy sharedtypes.DiscordID `json:"requested_by"`
	Text        string                `json:"text"`
}

// LobbyCloseCommandPayloadV1 closes the channel's open lobby.
type LobbyCloseCommandPayloadV1 struct {
	GuildID     sharedtypes.GuildID   `json:"guild_id"`
	ChannelID   sharedtypes.ChannelID `json:"channel_id"`
	RequestedBy sharedtypes.DiscordID `json:"requested_by"`
}
