package chatservice

import (
	"context"
	"time"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// IncomingMessage is one gateway message as the chat module sees it.
type IncomingMessage struct {
	GuildID    sharedtypes.GuildID
	ChannelID  sharedtypes.ChannelID
	MessageID  sharedtypes.MessageID
	AuthorID   sharedtypes.DiscordID
	AuthorName string
	Content    string
	FromBot    bool
	Timestamp  time.Time
}

// Service handles chat operations: archiving gateway traffic and generating
// model replies over it.
type Service interface {
	// ArchiveMessage stores a gateway message in the channel archive. Bot
	// messages are archived too; they become assistant turns in history.
	ArchiveMessage(ctx context.Context, msg *IncomingMessage) error

	// Respond generates a model reply to msg from the channel's recent
	// history, running at most one tool round.
	Respond(ctx context.Context, msg *IncomingMessage) (string, error)
}
