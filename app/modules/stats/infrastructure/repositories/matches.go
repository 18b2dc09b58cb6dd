package statsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a cached match is not found.
var ErrNotFound = errors.New("match not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new stats repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// UpsertMatch stores a fetched match, ignoring rows already cached.
func (r *Impl) UpsertMatch(ctx context.Context, db bun.IDB, match *Match) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(match).
		On("CONFLICT (match_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	return nil
}

// GetMatch retrieves one cached match by ID.
func (r *Impl) GetMatch(ctx context.Context, db bun.IDB, matchID string) (*Match, error) {
	db = r.resolveDB(db)
	match := new(Match)
	err := db.NewSelect().
		Model(match).
		Where("match_id = ?", matchID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

// HasMatch reports whether a match is already cached.
func (r *Impl) HasMatch(ctx context.Context, db bun.IDB, matchID string) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Match)(nil)).
		Where("match_id = ?", matchID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check match existence: %w", err)
	}
	return exists, nil
}

// ListRecentByPlayer retrieves the newest cached matches containing the
// given PUUID.
func (r *Impl) ListRecentByPlayer(ctx context.Context, db bun.IDB, puuid string, limit int) ([]Match, error) {
	db = r.resolveDB(db)
	var matches []Match
	err := db.NewSelect().
		Model(&matches).
		Where("? = ANY(players)", puuid).
		OrderExpr("game_creation DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches by player: %w", err)
	}
	return matches, nil
}

// LogRequest records one upstream API request.
func (r *Impl) LogRequest(ctx context.Context, db bun.IDB, entry *APIRequestLog) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(entry).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to log api request: %w", err)
	}
	return nil
}

// PruneRequestLogs deletes request log rows older than the given time and
// returns how many were removed.
func (r *Impl) PruneRequestLogs(ctx context.Context, db bun.IDB, olderThan time.Time) (int64, error) {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*APIRequestLog)(nil)).
		Where("requested_at < ?", olderThan).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune request logs: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
