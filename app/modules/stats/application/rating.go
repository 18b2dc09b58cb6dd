package statsservice

import (
	"context"
	"strings"

	"github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/riotapi"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

// tierBases maps each ranked tier to the base of its 400-point band.
var tierBases = map[string]int{
	"IRON":        0,
	"BRONZE":      400,
	"SILVER":      800,
	"GOLD":        1200,
	"PLATINUM":    1600,
	"EMERALD":     2000,
	"DIAMOND":     2400,
	"MASTER":      2800,
	"GRANDMASTER": 3200,
	"CHALLENGER":  3600,
}

// divisionOffsets maps divisions within a tier. Apex tiers have none; their
// league points span the whole band.
var divisionOffsets = map[string]int{
	"IV":  0,
	"III": 100,
	"II":  200,
	"I":   300,
}

var apexTiers = map[string]bool{
	"MASTER":      true,
	"GRANDMASTER": true,
	"CHALLENGER":  true,
}

// ratingFromEntry flattens a tier/division/LP standing onto the continuous
// internal scale. Unknown tiers report false.
func ratingFromEntry(entry riotapi.LeagueEntry) (int, bool) {
	tier := strings.ToUpper(entry.Tier)
	base, ok := tierBases[tier]
	if !ok {
		return 0, false
	}
	if apexTiers[tier] {
		return base + entry.LeaguePoints, true
	}
	return base + divisionOffsets[strings.ToUpper(entry.Rank)] + entry.LeaguePoints, true
}

// pickRankedEntry prefers the solo queue standing, falling back to flex.
func pickRankedEntry(entries []riotapi.LeagueEntry) (riotapi.LeagueEntry, bool) {
	for _, e := range entries {
		if e.QueueType == riotapi.QueueSolo {
			return e, true
		}
	}
	for _, e := range entries {
		if e.QueueType == riotapi.QueueFlex {
			return e, true
		}
	}
	return riotapi.LeagueEntry{}, false
}

// RatingByPUUID converts the account's ranked standing to the internal
// rating scale. Unranked accounts fail with ErrNoRankedEntries.
func (s *StatsService) RatingByPUUID(ctx context.Context, puuid sharedtypes.PUUID) (int, error) {
	result, err := withTelemetry(s, ctx, "RatingByPUUID", string(puuid), func(ctx context.Context) (results.OperationResult[int, error], error) {
		summoner, err := s.riot.SummonerByPUUID(ctx, string(puuid))
		if err != nil {
			if riotapi.IsNotFound(err) {
				return results.FailureResult[int, error](ErrAccountNotFound), nil
			}
			return results.OperationResult[int, error]{}, err
		}

		entries, err := s.riot.LeagueEntriesBySummoner(ctx, summoner.ID)
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}

		entry, ok := pickRankedEntry(entries)
		if !ok {
			return results.FailureResult[int, error](ErrNoRankedEntries), nil
		}
		rating, ok := ratingFromEntry(entry)
		if !ok {
			return results.FailureResult[int, error](ErrNoRankedEntries), nil
		}
		return results.SuccessResult[int, error](rating), nil
	})
	if err != nil {
		return 0, err
	}
	if result.IsFailure() {
		return 0, *result.Failure
	}
	return *result.Success, nil
}

// ResolveRiotID verifies a GameName#TagLine pair and returns the canonical
// identity with the casing Riot has on record.
func (s *StatsService) ResolveRiotID(ctx context.Context, gameName, tagLine string) (*RiotIdentity, error) {
	identifier := gameName + "#" + tagLine
	result, err := withTelemetry(s, ctx, "ResolveRiotID", identifier, func(ctx context.Context) (results.OperationResult[*RiotIdentity, error], error) {
		account, err := s.riot.AccountByRiotID(ctx, gameName, tagLine)
		if err != nil {
			if riotapi.IsNotFound(err) {
				return results.FailureResult[*RiotIdentity, error](ErrAccountNotFound), nil
			}
			return results.OperationResult[*RiotIdentity, error]{}, err
		}
		return results.SuccessResult[*RiotIdentity, error](&RiotIdentity{
			PUUID:    sharedtypes.PUUID(account.PUUID),
			GameName: account.GameName,
			TagLine:  account.TagLine,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}
