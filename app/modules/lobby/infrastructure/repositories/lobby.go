package lobbydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a lobby is not found.
var ErrNotFound = errors.New("lobby not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new lobby repository.
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

// Create inserts a new lobby row.
func (r *Impl) Create(ctx context.Context, db bun.IDB, lobby *Lobby) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(lobby).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create lobby: %w", err)
	}
	return nil
}

// SetMessageID records the Discord board message for a lobby.
func (r *Impl) SetMessageID(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, messageID string) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Lobby)(nil)).
		Set("message_id = ?", messageID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", lobbyID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set lobby message ID: %w", err)
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

// Close marks a lobby closed with the given terminal state.
func (r *Impl) Close(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, state string) error {
	db = r.resolveDB(db)
	now := time.Now()
	result, err := db.NewUpdate().
		Model((*Lobby)(nil)).
		Set("state = ?", state).
		Set("closed_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", lobbyID).
		Where("state = ?", StateOpen).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to close lobby: %w", err)
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

// GetByID retrieves a lobby by its ID.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, lobbyID uuid.UUID) (*Lobby, error) {
	db = r.resolveDB(db)
	lobby := new(Lobby)
	err := db.NewSelect().
		Model(lobby).
		Where("id = ?", lobbyID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lobby by ID: %w", err)
	}
	return lobby, nil
}

// ListOpen retrieves every lobby still in the OPEN state.
func (r *Impl) ListOpen(ctx context.Context, db bun.IDB) ([]Lobby, error) {
	db = r.resolveDB(db)
	var lobbies []Lobby
	err := db.NewSelect().
		Model(&lobbies).
		Where("state = ?", StateOpen).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open lobbies: %w", err)
	}
	return lobbies, nil
}
