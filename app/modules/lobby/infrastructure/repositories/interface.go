package lobbydb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for lobby persistence.
type Repository interface {
	// Create inserts a new lobby row.
	Create(ctx context.Context, db bun.IDB, lobby *Lobby) error

	// SetMessageID records the Discord board message for a lobby.
	SetMessageID(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, messageID string) error

	// Close marks a lobby closed with the given terminal state.
	Close(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, state string) error

	// GetByID retrieves a lobby by its ID.
	GetByID(ctx context.Context, db bun.IDB, lobbyID uuid.UUID) (*Lobby, error)

	// ListOpen retrieves every lobby still in the OPEN state.
	ListOpen(ctx context.Context, db bun.IDB) ([]Lobby, error)
}
