package accountsdb

import (
	"context"

	"github.com/uptrace/bun"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// Repository handles database operations for users and summoner links.
type Repository interface {
	// UpsertUser inserts the user or refreshes its username and updated_at.
	UpsertUser(ctx context.Context, db bun.IDB, user *User) error

	// GetUser retrieves a user by Discord ID.
	GetUser(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*User, error)

	// CreateLink stores a new summoner link. Linking the same PUUID twice
	// for one user fails with ErrDuplicateLink.
	CreateLink(ctx context.Context, db bun.IDB, link *SummonerLink) error

	// DeleteLink removes the link matching the Riot ID, ignoring case.
	DeleteLink(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID, gameName, tagLine string) error

	// ListLinks returns a user's links oldest first.
	ListLinks(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) ([]SummonerLink, error)

	// FirstLink returns the user's oldest link.
	FirstLink(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*SummonerLink, error)
}
