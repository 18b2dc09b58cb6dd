package accountsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

var (
	// ErrNotFound is returned when a user or link is not found.
	ErrNotFound = errors.New("account record not found")

	// ErrDuplicateLink is returned when the user already linked this PUUID.
	ErrDuplicateLink = errors.New("summoner already linked")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new accounts repository.
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

// UpsertUser inserts the user or refreshes its username and updated_at.
func (r *Impl) UpsertUser(ctx context.Context, db bun.IDB, user *User) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(user).
		On("CONFLICT (discord_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("updated_at = ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by Discord ID.
func (r *Impl) GetUser(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	err := db.NewSelect().
		Model(user).
		Where("discord_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateLink stores a new summoner link. The (discord_id, puuid) unique
// constraint makes the duplicate check race-safe.
func (r *Impl) CreateLink(ctx context.Context, db bun.IDB, link *SummonerLink) error {
	db = r.resolveDB(db)
	result, err := db.NewInsert().
		Model(link).
		On("CONFLICT (discord_id, puuid) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create summoner link: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDuplicateLink
	}
	return nil
}

// DeleteLink removes the link matching the Riot ID, ignoring case.
func (r *Impl) DeleteLink(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID, gameName, tagLine string) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*SummonerLink)(nil)).
		Where("discord_id = ?", userID).
		Where("lower(game_name) = lower(?)", gameName).
		Where("lower(tag_line) = lower(?)", tagLine).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete summoner link: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLinks returns a user's links oldest first.
func (r *Impl) ListLinks(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) ([]SummonerLink, error) {
	db = r.resolveDB(db)
	var links []SummonerLink
	err := db.NewSelect().
		Model(&links).
		Where("discord_id = ?", userID).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list summoner links: %w", err)
	}
	return links, nil
}

// FirstLink returns the user's oldest link.
func (r *Impl) FirstLink(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*SummonerLink, error) {
	db = r.resolveDB(db)
	link := new(SummonerLink)
	err := db.NewSelect().
		Model(link).
		Where("discord_id = ?", userID).
		OrderExpr("created_at ASC, id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get first summoner link: %w", err)
	}
	return link, nil
}
