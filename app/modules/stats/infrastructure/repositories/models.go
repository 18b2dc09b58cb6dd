package statsdb

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Match is a cached match-v5 payload. Finished matches never change, so
// rows are written once and read forever.
type Match struct {
	bun.BaseModel `bun:"table:lol_matches,alias:lm"`

	MatchID      string          `bun:"match_id,pk"`
	Region       string          `bun:"region,notnull"`
	APIVersion   string          `bun:"api_version,notnull"`
	Players      []string        `bun:"players,array,notnull"`
	GameCreation int64           `bun:"game_creation,notnull"`
	MatchData    json.RawMessage `bun:"match_data,type:jsonb,notnull"`
	FetchedAt    time.Time       `bun:"fetched_at,nullzero,notnull,default:current_timestamp"`
}

// APIRequestLog is one upstream Riot API request, kept for quota forensics.
type APIRequestLog struct {
	bun.BaseModel `bun:"table:api_request_logs,alias:arl"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Route       string    `bun:"route,notnull"`
	StatusCode  int       `bun:"status_code,notnull"`
	DurationMS  int64     `bun:"duration_ms,notnull"`
	RequestedAt time.Time `bun:"requested_at,nullzero,notnull,default:current_timestamp"`
}
