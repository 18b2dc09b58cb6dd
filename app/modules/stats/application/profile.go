package statsservice

import (
	"context"
	"errors"
	"sort"

	"github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/riotapi"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

// topMasteries is how many champion mastery lines a profile shows.
const topMasteries = 3

// Profile assembles summoner, ranked, and mastery data for a player.
func (s *StatsService) Profile(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*ProfileView, error) {
	result, err := withTelemetry(s, ctx, "Profile", string(userID), func(ctx context.Context) (results.OperationResult[*ProfileView, error], error) {
		identity, err := s.resolveTarget(ctx, userID, gameName, tagLine)
		if err != nil {
			if errors.Is(err, ErrNoLink) || errors.Is(err, ErrAccountNotFound) {
				return results.FailureResult[*ProfileView, error](err), nil
			}
			return results.OperationResult[*ProfileView, error]{}, err
		}

		summoner, err := s.riot.SummonerByPUUID(ctx, string(identity.PUUID))
		if err != nil {
			return results.OperationResult[*ProfileView, error]{}, err
		}

		entries, err := s.riot.LeagueEntriesBySummoner(ctx, summoner.ID)
		if err != nil {
			return results.OperationResult[*ProfileView, error]{}, err
		}

		masteries, err := s.riot.ChampionMasteriesByPUUID(ctx, string(identity.PUUID))
		if err != nil {
			return results.OperationResult[*ProfileView, error]{}, err
		}

		view := &ProfileView{
			GameName:      identity.GameName,
			TagLine:       identity.TagLine,
			SummonerLevel: summoner.SummonerLevel,
		}
		if entry, ok := pickRankedEntry(entries); ok {
			if rating, ok := ratingFromEntry(entry); ok {
				view.Rating = rating
			}
		}
		for _, e := range entries {
			view.Entries = append(view.Entries, RankedStanding{
				Queue:        e.QueueType,
				Tier:         e.Tier,
				Division:     e.Rank,
				LeaguePoints: e.LeaguePoints,
				Wins:         e.Wins,
				Losses:       e.Losses,
			})
		}

		sort.Slice(masteries, func(i, j int) bool {
			return masteries[i].ChampionPoints > masteries[j].ChampionPoints
		})
		if len(masteries) > topMasteries {
			masteries = masteries[:topMasteries]
		}
		for _, m := range masteries {
			name, err := s.riot.ChampionName(ctx, m.ChampionID)
			if err != nil {
				// The profile is still useful without champion names.
				s.logger.WarnContext(ctx, "Failed to resolve champion name",
					attr.ExtractCorrelationID(ctx),
					attr.Int64("champion_id", m.ChampionID),
					attr.Error(err),
				)
				continue
			}
			view.Masteries = append(view.Masteries, MasteryStanding{
				Champion: name,
				Level:    m.ChampionLevel,
				Points:   m.ChampionPoints,
			})
		}

		return results.SuccessResult[*ProfileView, error](view), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// ActiveGame returns the user's live game via the spectator endpoint.
func (s *StatsService) ActiveGame(ctx context.Context, userID sharedtypes.DiscordID) (*ActiveGameView, error) {
	result, err := withTelemetry(s, ctx, "ActiveGame", string(userID), func(ctx context.Context) (results.OperationResult[*ActiveGameView, error], error) {
		identity, err := s.resolveTarget(ctx, userID, "", "")
		if err != nil {
			if errors.Is(err, ErrNoLink) {
				return results.FailureResult[*ActiveGameView, error](err), nil
			}
			return results.OperationResult[*ActiveGameView, error]{}, err
		}

		summoner, err := s.riot.SummonerByPUUID(ctx, string(identity.PUUID))
		if err != nil {
			return results.OperationResult[*ActiveGameView, error]{}, err
		}

		game, err := s.riot.ActiveGameBySummoner(ctx, summoner.ID)
		if err != nil {
			if riotapi.IsNotFound(err) {
				return results.FailureResult[*ActiveGameView, error](ErrNoActiveGame), nil
			}
			return results.OperationResult[*ActiveGameView, error]{}, err
		}

		view := &ActiveGameView{
			GameMode:  game.GameMode,
			QueueID:   game.GameQueueConfigID,
			LengthSec: game.GameLength,
		}
		for _, p := range game.Participants {
			name, err := s.riot.ChampionName(ctx, p.ChampionID)
			if err != nil {
				name = ""
			}
			view.Players = append(view.Players, ActiveGamePlayer{
				RiotID:   p.RiotID,
				Champion: name,
				TeamID:   p.TeamID,
			})
		}
		return results.SuccessResult[*ActiveGameView, error](view), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}
