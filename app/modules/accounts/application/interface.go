package accountsservice

import (
	"context"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// LinkedAccount is one Riot account linked to a Discord user.
type LinkedAccount struct {
	GameName string
	TagLine  string
	Region   string
	PUUID    sharedtypes.PUUID
	Primary  bool
}

// Service handles account operations: the Discord identity registry and
// Riot account links.
type Service interface {
	// ObserveUser upserts the identity registry from gateway traffic.
	ObserveUser(ctx context.Context, userID sharedtypes.DiscordID, username string) error

	// LinkAccount verifies a Riot ID upstream and stores the link. Unknown
	// IDs fail with ErrAccountNotFound, repeats with ErrAlreadyLinked.
	LinkAccount(ctx context.Context, userID sharedtypes.DiscordID, username, gameName, tagLine, region string) (*LinkedAccount, error)

	// UnlinkAccount removes one linked Riot account, matching the Riot ID
	// case-insensitively. Fails with ErrNotLinked when no link matches.
	UnlinkAccount(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) error

	// ListLinks returns the user's linked accounts, primary first.
	ListLinks(ctx context.Context, userID sharedtypes.DiscordID) ([]LinkedAccount, error)

	// PrimaryLink returns the user's oldest link, failing with ErrNotLinked
	// when the user has none.
	PrimaryLink(ctx context.Context, userID sharedtypes.DiscordID) (*LinkedAccount, error)
}
