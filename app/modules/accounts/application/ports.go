package accountsservice

import (
	"context"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// VerifiedAccount is a Riot identity confirmed upstream, with the canonical
// casing Riot reports.
type VerifiedAccount struct {
	PUUID    sharedtypes.PUUID
	GameName string
	TagLine  string
}

// RiotVerifier confirms that a GameName#TagLine pair exists before it is
// linked. Implementations return ErrAccountNotFound for unknown pairs; the
// bootstrap wires the shared Riot client in.
type RiotVerifier interface {
	VerifyRiotID(ctx context.Context, gameName, tagLine string) (*VerifiedAccount, error)
}
