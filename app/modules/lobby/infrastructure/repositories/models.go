package lobbydb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Lobby lifecycle states as stored in the state column.
const (
	StateOpen    = "OPEN"
	StateClosed  = "CLOSED"
	StateExpired = "EXPIRED"
)

// Lobby is one custom game lobby session. Queue membership lives in
// memory only; the row exists so the board message can be mapped back
// to its lobby after a restart.
type Lobby struct {
	bun.BaseModel `bun:"table:lobbies,alias:lb"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	GuildID   string     `bun:"guild_id,notnull"`
	ChannelID string     `bun:"channel_id,notnull"`
	MessageID string     `bun:"message_id,nullzero"`
	State     string     `bun:"state,notnull,default:'OPEN'"`
	OpenedBy  string     `bun:"opened_by,notnull"`
	ExpiresAt time.Time  `bun:"expires_at,notnull"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	ClosedAt  *time.Time `bun:"closed_at"`
}
