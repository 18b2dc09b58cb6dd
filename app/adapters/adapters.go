// Package adapters bridges the module ports at application assembly. Each
// module declares the narrow interface it consumes; the bootstrap builds
// these adapters over the concrete services so no module imports another
// module's infrastructure.
package adapters

import (
	"context"
	"errors"
	"fmt"

	lobbydomain "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/domain"

	accountsservice "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/application"
	statsservice "github.com/Five-Stack-Club/rift-bot/app/modules/stats/application"
	"github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/riotapi"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// RiotVerifier adapts the shared Riot client to the accounts module's
// verification port.
type RiotVerifier struct {
	riot riotapi.Client
}

// NewRiotVerifier creates a verifier backed by the shared Riot client.
func NewRiotVerifier(riot riotapi.Client) *RiotVerifier {
	return &RiotVerifier{riot: riot}
}

var _ accountsservice.RiotVerifier = (*RiotVerifier)(nil)

// VerifyRiotID confirms a GameName#TagLine pair upstream. Unknown pairs map
// to the accounts module's ErrAccountNotFound sentinel.
func (v *RiotVerifier) VerifyRiotID(ctx context.Context, gameName, tagLine string) (*accountsservice.VerifiedAccount, error) {
	account, err := v.riot.AccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		if riotapi.IsNotFound(err) {
			return nil, accountsservice.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to verify riot id: %w", err)
	}
	return &accountsservice.VerifiedAccount{
		PUUID:    sharedtypes.PUUID(account.PUUID),
		GameName: account.GameName,
		TagLine:  account.TagLine,
	}, nil
}

// PrimaryLinkResolver adapts the accounts service to the stats module's
// link resolution port.
type PrimaryLinkResolver struct {
	accounts accountsservice.Service
}

// NewPrimaryLinkResolver creates a resolver backed by the accounts service.
func NewPrimaryLinkResolver(accounts accountsservice.Service) *PrimaryLinkResolver {
	return &PrimaryLinkResolver{accounts: accounts}
}

var _ statsservice.LinkResolver = (*PrimaryLinkResolver)(nil)

// PrimaryLink looks up the user's primary linked account. The accounts
// module's ErrNotLinked maps to the stats module's ErrNoLink so the stats
// handlers keep their friendly-error behavior.
func (r *PrimaryLinkResolver) PrimaryLink(ctx context.Context, userID sharedtypes.DiscordID) (*statsservice.SummonerLink, error) {
	link, err := r.accounts.PrimaryLink(ctx, userID)
	if err != nil {
		if errors.Is(err, accountsservice.ErrNotLinked) {
			return nil, statsservice.ErrNoLink
		}
		return nil, err
	}
	return &statsservice.SummonerLink{
		PUUID:    link.PUUID,
		GameName: link.GameName,
		TagLine:  link.TagLine,
		Region:   link.Region,
	}, nil
}

// LinkedRatingSource resolves a lobby candidate's rating through the
// accounts and stats services: primary link first, then the ranked-standing
// conversion. Errors surface to the pool, which substitutes its default
// rating.
type LinkedRatingSource struct {
	accounts accountsservice.Service
	stats    statsservice.Service
}

// NewLinkedRatingSource creates a rating source over the two services.
func NewLinkedRatingSource(accounts accountsservice.Service, stats statsservice.Service) *LinkedRatingSource {
	return &LinkedRatingSource{accounts: accounts, stats: stats}
}

var _ lobbydomain.RatingSource = (*LinkedRatingSource)(nil)

// LookupRating resolves the user's rating via their primary linked account.
func (s *LinkedRatingSource) LookupRating(ctx context.Context, id sharedtypes.DiscordID) (int, error) {
	link, err := s.accounts.PrimaryLink(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.stats.RatingByPUUID(ctx, link.PUUID)
}
