// Package accountevents defines the accounts module's NATS subjects and payloads.
package accountevents

import (
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// StreamName is the JetStream stream carrying account events.
const StreamName = "accounts"

const (
	LinkRequestedV1   = "accounts.link.requested"
	LinkResultV1      = "accounts.link.result"
	UnlinkRequestedV1 = "accounts.unlink.requested"
	UnlinkResultV1    = "accounts.unlink.result"
	ListRequestedV1   = "accounts.list.requested"
	ListResultV1      = "accounts.list.result"
)

// LinkRequestedPayloadV1 asks to link a Riot account to a Discord user.
type LinkRequestedPayloadV1 struct {
	ChannelID  sharedtypes.ChannelID `json:"channel_id"`
	UserID     sharedtypes.DiscordID `json:"user_id"`
	AuthorName string                `json:"author_name"`
	GameName   string                `json:"game_name"`
	TagLine    string                `json:"tag_line"`
	Region     string                `json:"region"`
}

// LinkResultPayloadV1 answers a link request with the verified identity.
type LinkResultPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	GameName  string                `json:"game_name"`
	TagLine   string                `json:"tag_line"`
	PUUID     sharedtypes.PUUID     `json:"puuid,omitempty"`
	Success   bool                  `json:"success"`
	Error     string                `json:"error,omitempty"`
}

// UnlinkRequestedPayloadV1 asks to remove one linked Riot account.
type UnlinkRequestedPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	GameName  string                `json:"game_name"`
	TagLine   string                `json:"tag_line"`
}

// UnlinkResultPayloadV1 answers an unlink request.
type UnlinkResultPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	Removed   bool                  `json:"removed"`
	Error     string                `json:"error,omitempty"`
}

// ListRequestedPayloadV1 asks for a user's linked accounts.
type ListRequestedPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
}

// LinkedAccountV1 is one linked Riot account in a list result.
type LinkedAccountV1 struct {
	GameName string            `json:"game_name"`
	TagLine  string            `json:"tag_line"`
	Region   string            `json:"region"`
	PUUID    sharedtypes.PUUID `json:"puuid"`
	Primary  bool              `json:"primary"`
}

// ListResultPayloadV1 answers a list request.
type ListResultPayloadV1 struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	UserID    sharedtypes.DiscordID `json:"user_id"`
	Accounts  []LinkedAccountV1     `json:"accounts"`
}
