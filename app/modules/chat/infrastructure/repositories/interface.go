package chatdb

import (
	"context"

	"github.com/uptrace/bun"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// Repository handles chat message archive operations.
type Repository interface {
	// InsertMessage archives one gateway message. Redelivered messages are
	// deduplicated on message_id.
	InsertMessage(ctx context.Context, db bun.IDB, msg *Message) error

	// ListRecent returns the channel's newest messages, newest first.
	ListRecent(ctx context.Context, db bun.IDB, channelID sharedtypes.ChannelID, limit int) ([]Message, error)
}
