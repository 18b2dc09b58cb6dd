package chatdb

import (
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// Message is one archived gateway message. CreatedAt is the Discord
// timestamp, not the insert time, so history reads follow message order.
type Message struct {
	bun.BaseModel `bun:"table:chat_messages,alias:cm"`

	ID         int64                 `bun:"id,pk,autoincrement"`
	GuildID    sharedtypes.GuildID   `bun:"guild_id,notnull"`
	ChannelID  sharedtypes.ChannelID `bun:"channel_id,notnull"`
	MessageID  sharedtypes.MessageID `bun:"message_id,notnull,unique"`
	AuthorID   sharedtypes.DiscordID `bun:"author_id,notnull"`
	AuthorName string                `bun:"author_name,notnull"`
	Content    string                `bun:"content,notnull"`
	FromBot    bool                  `bun:"from_bot,notnull,default:false"`
	CreatedAt  time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
