package statsservice

import (
	"context"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// SummonerLink is the minimal view of a linked account the stats module
// needs when a request names no explicit Riot ID.
type SummonerLink struct {
	PUUID    sharedtypes.PUUID
	GameName string
	TagLine  string
	Region   string
}

// LinkResolver resolves a Discord user's primary linked account.
// Implementations may hit a database directly or call another module's
// service; the adapter is wired at application assembly.
type LinkResolver interface {
	PrimaryLink(ctx context.Context, userID sharedtypes.DiscordID) (*SummonerLink, error)
}
