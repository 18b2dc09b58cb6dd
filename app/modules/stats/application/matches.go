package statsservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/riotapi"
	statsdb "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/repositories"
	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

const (
	// defaultMatchCount is how many matches a request gets when it does not say.
	defaultMatchCount = 10
	// maxMatchCount bounds one request's upstream fetch fan-out.
	maxMatchCount = 20
)

func clampMatchCount(count int) int {
	if count <= 0 {
		return defaultMatchCount
	}
	if count > maxMatchCount {
		return maxMatchCount
	}
	return count
}

// matchRow converts a fetched match into its cache row.
func matchRow(match *riotapi.Match, region string) (*statsdb.Match, error) {
	data, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match: %w", err)
	}
	return &statsdb.Match{
		MatchID:      match.Metadata.MatchID,
		Region:       region,
		APIVersion:   match.Info.GameVersion,
		Players:      match.Metadata.Participants,
		GameCreation: match.Info.GameCreation,
		MatchData:    data,
	}, nil
}

func decodeMatch(row *statsdb.Match) (*riotapi.Match, error) {
	var match riotapi.Match
	if err := json.Unmarshal(row.MatchData, &match); err != nil {
		return nil, fmt.Errorf("failed to decode cached match %s: %w", row.MatchID, err)
	}
	return &match, nil
}

// summaryFor extracts the target player's line from a match.
func summaryFor(match *riotapi.Match, puuid sharedtypes.PUUID) (MatchSummary, bool) {
	for _, p := range match.Info.Participants {
		if p.PUUID != string(puuid) {
			continue
		}
		return MatchSummary{
			MatchID:      match.Metadata.MatchID,
			Champion:     p.ChampionName,
			Win:          p.Win,
			Kills:        p.Kills,
			Deaths:       p.Deaths,
			Assists:      p.Assists,
			CS:           p.CS(),
			DurationSec:  int(match.Info.GameDuration),
			QueueID:      match.Info.QueueID,
			GameCreation: match.Info.GameCreation,
		}, true
	}
	return MatchSummary{}, false
}

// fetchMatch reads one match cache-first, fetching and storing it on a miss.
func (s *StatsService) fetchMatch(ctx context.Context, db bun.IDB, matchID string) (*riotapi.Match, error) {
	row, err := s.repo.GetMatch(ctx, db, matchID)
	if err == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheOutcome(ctx, "match", true)
		}
		return decodeMatch(row)
	}
	if !errors.Is(err, statsdb.ErrNotFound) {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOutcome(ctx, "match", false)
	}

	match, err := s.riot.MatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	newRow, err := matchRow(match, s.region)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertMatch(ctx, db, newRow); err != nil {
		return nil, err
	}
	return match, nil
}

// recentHistory assembles the user's newest matches. It returns ErrNoLink
// unwrapped so every operation built on it can classify the failure itself.
func (s *StatsService) recentHistory(ctx context.Context, userID sharedtypes.DiscordID, count int) (*MatchHistory, error) {
	identity, err := s.resolveTarget(ctx, userID, "", "")
	if err != nil {
		return nil, err
	}

	ids, err := s.riot.MatchIDsByPUUID(ctx, string(identity.PUUID), 0, count)
	if err != nil {
		return nil, err
	}

	history := &MatchHistory{
		PUUID:    identity.PUUID,
		GameName: identity.GameName,
	}
	for _, id := range ids {
		match, err := s.fetchMatch(ctx, nil, id)
		if err != nil {
			return nil, err
		}
		if summary, ok := summaryFor(match, identity.PUUID); ok {
			history.Matches = append(history.Matches, summary)
		}
	}
	return history, nil
}

// RecentMatches returns the user's newest matches, reading the local cache
// before fetching match detail upstream.
func (s *StatsService) RecentMatches(ctx context.Context, userID sharedtypes.DiscordID, count int) (*MatchHistory, error) {
	count = clampMatchCount(count)
	result, err := withTelemetry(s, ctx, "RecentMatches", string(userID), func(ctx context.Context) (results.OperationResult[*MatchHistory, error], error) {
		history, err := s.recentHistory(ctx, userID, count)
		if err != nil {
			if errors.Is(err, ErrNoLink) {
				return results.FailureResult[*MatchHistory, error](err), nil
			}
			return results.OperationResult[*MatchHistory, error]{}, err
		}
		return results.SuccessResult[*MatchHistory, error](history), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// SyncMatches pulls a player's recent matches into the cache and returns how
// many were newly stored. Already-cached matches cost no upstream calls.
func (s *StatsService) SyncMatches(ctx context.Context, puuid sharedtypes.PUUID, count int) (int, error) {
	count = clampMatchCount(count)
	result, err := withTelemetry(s, ctx, "SyncMatches", string(puuid), func(ctx context.Context) (results.OperationResult[int, error], error) {
		ids, err := s.riot.MatchIDsByPUUID(ctx, string(puuid), 0, count)
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}

		stored := 0
		for _, id := range ids {
			cached, err := s.repo.HasMatch(ctx, nil, id)
			if err != nil {
				return results.OperationResult[int, error]{}, err
			}
			if cached {
				continue
			}
			match, err := s.riot.MatchByID(ctx, id)
			if err != nil {
				// A sync is best-effort; keep what we already have.
				s.logger.WarnContext(ctx, "Failed to fetch match during sync",
					attr.ExtractCorrelationID(ctx),
					attr.String("match_id", id),
					attr.Error(err),
				)
				continue
			}
			row, err := matchRow(match, s.region)
			if err != nil {
				return results.OperationResult[int, error]{}, err
			}
			if err := s.repo.UpsertMatch(ctx, nil, row); err != nil {
				return results.OperationResult[int, error]{}, err
			}
			stored++
		}
		return results.SuccessResult[int, error](stored), nil
	})
	if err != nil {
		return 0, err
	}
	if result.IsFailure() {
		return 0, *result.Failure
	}
	return *result.Success, nil
}
