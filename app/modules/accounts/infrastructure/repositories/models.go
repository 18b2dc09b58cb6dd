package accountsdb

import (
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// User is a Discord identity observed by the backend. Rows are upserted
// from gateway traffic, so Username tracks the latest display name seen.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID    sharedtypes.DiscordID `bun:"discord_id,pk" json:"discord_id"`
	Username  string                `bun:"username,notnull" json:"username"`
	CreatedAt time.Time             `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time             `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// SummonerLink ties a Discord user to a verified Riot account. A user may
// hold several links; the oldest one is their primary.
type SummonerLink struct {
	bun.BaseModel `bun:"table:summoner_links,alias:sl"`

	ID        int64                 `bun:"id,pk,autoincrement" json:"id"`
	UserID    sharedtypes.DiscordID `bun:"discord_id,notnull" json:"discord_id"`
	PUUID     sharedtypes.PUUID     `bun:"puuid,notnull" json:"puuid"`
	GameName  string                `bun:"game_name,notnull" json:"game_name"`
	TagLine   string                `bun:"tag_line,notnull" json:"tag_line"`
	Region    string                `bun:"region,notnull" json:"region"`
	CreatedAt time.Time             `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
