package statsdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository handles match cache and API request log persistence.
type Repository interface {
	UpsertMatch(ctx context.Context, db bun.IDB, match *Match) error
	GetMatch(ctx context.Context, db bun.IDB, matchID string) (*Match, error)
	HasMatch(ctx context.Context, db bun.IDB, matchID string) (bool, error)
	ListRecentByPlayer(ctx context.Context, db bun.IDB, puuid string, limit int) ([]Match, error)
	LogRequest(ctx context.Context, db bun.IDB, entry *APIRequestLog) error
	PruneRequestLogs(ctx context.Context, db bun.IDB, olderThan time.Time) (int64, error)
}
