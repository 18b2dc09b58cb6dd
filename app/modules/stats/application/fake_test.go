package statsservice

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/riotapi"
	statsdb "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/repositories"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// ------------------------
// Fake Stats Repo
// ------------------------

type FakeStatsRepo struct {
	trace []string

	// matches is the in-memory cache backing the default behavior.
	matches map[string]*statsdb.Match

	UpsertMatchFunc        func(ctx context.Context, db bun.IDB, match *statsdb.Match) error
	GetMatchFunc           func(ctx context.Context, db bun.IDB, matchID string) (*statsdb.Match, error)
	HasMatchFunc           func(ctx context.Context, db bun.IDB, matchID string) (bool, error)
	ListRecentByPlayerFunc func(ctx context.Context, db bun.IDB, puuid string, limit int) ([]statsdb.Match, error)
	LogRequestFunc         func(ctx context.Context, db bun.IDB, entry *statsdb.APIRequestLog) error
	PruneRequestLogsFunc   func(ctx context.Context, db bun.IDB, olderThan time.Time) (int64, error)
}

func NewFakeStatsRepo() *FakeStatsRepo {
	return &FakeStatsRepo{
		trace:   []string{},
		matches: map[string]*statsdb.Match{},
	}
}

func (f *FakeStatsRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeStatsRepo) UpsertMatch(ctx context.Context, db bun.IDB, match *statsdb.Match) error {
	f.record("UpsertMatch")
	if f.UpsertMatchFunc != nil {
		return f.UpsertMatchFunc(ctx, db, match)
	}
	if _, exists := f.matches[match.MatchID]; !exists {
		f.matches[match.MatchID] = match
	}
	return nil
}

func (f *FakeStatsRepo) GetMatch(ctx context.Context, db bun.IDB, matchID string) (*statsdb.Match, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, db, matchID)
	}
	if m, ok := f.matches[matchID]; ok {
		return m, nil
	}
	return nil, statsdb.ErrNotFound
}

func (f *FakeStatsRepo) HasMatch(ctx context.Context, db bun.IDB, matchID string) (bool, error) {
	f.record("HasMatch")
	if f.HasMatchFunc != nil {
		return f.HasMatchFunc(ctx, db, matchID)
	}
	_, ok := f.matches[matchID]
	return ok, nil
}

func (f *FakeStatsRepo) ListRecentByPlayer(ctx context.Context, db bun.IDB, puuid string, limit int) ([]statsdb.Match, error) {
	f.record("ListRecentByPlayer")
	if f.ListRecentByPlayerFunc != nil {
		return f.ListRecentByPlayerFunc(ctx, db, puuid, limit)
	}
	return nil, nil
}

func (f *FakeStatsRepo) LogRequest(ctx context.Context, db bun.IDB, entry *statsdb.APIRequestLog) error {
	f.record("LogRequest")
	if f.LogRequestFunc != nil {
		return f.LogRequestFunc(ctx, db, entry)
	}
	return nil
}

func (f *FakeStatsRepo) PruneRequestLogs(ctx context.Context, db bun.IDB, olderThan time.Time) (int64, error) {
	f.record("PruneRequestLogs")
	if f.PruneRequestLogsFunc != nil {
		return f.PruneRequestLogsFunc(ctx, db, olderThan)
	}
	return 0, nil
}

// --- Accessors for assertions ---

func (f *FakeStatsRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ statsdb.Repository = (*FakeStatsRepo)(nil)

// ------------------------
// Fake Riot Client
// ------------------------

type FakeRiotClient struct {
	trace []string

	AccountByRiotIDFunc          func(ctx context.Context, gameName, tagLine string) (*riotapi.Account, error)
	AccountByPUUIDFunc           func(ctx context.Context, puuid string) (*riotapi.Account, error)
	SummonerByPUUIDFunc          func(ctx context.Context, puuid string) (*riotapi.Summoner, error)
	LeagueEntriesBySummonerFunc  func(ctx context.Context, summonerID string) ([]riotapi.LeagueEntry, error)
	MatchIDsByPUUIDFunc          func(ctx context.Context, puuid string, start, count int) ([]string, error)
	MatchByIDFunc                func(ctx context.Context, matchID string) (*riotapi.Match, error)
	ActiveGameBySummonerFunc     func(ctx context.Context, summonerID string) (*riotapi.ActiveGame, error)
	ChampionMasteriesByPUUIDFunc func(ctx context.Context, puuid string) ([]riotapi.ChampionMastery, error)
	ChampionNameFunc             func(ctx context.Context, championID int64) (string, error)
}

func NewFakeRiotClient() *FakeRiotClient {
	return &FakeRiotClient{
		trace: []string{},
	}
}

func (f *FakeRiotClient) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRiotClient) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*riotapi.Account, error) {
	f.record("AccountByRiotID")
	if f.AccountByRiotIDFunc != nil {
		return f.AccountByRiotIDFunc(ctx, gameName, tagLine)
	}
	return &riotapi.Account{PUUID: "puuid-" + gameName, GameName: gameName, TagLine: tagLine}, nil
}

func (f *FakeRiotClient) AccountByPUUID(ctx context.Context, puuid string) (*riotapi.Account, error) {
	f.record("AccountByPUUID")
	if f.AccountByPUUIDFunc != nil {
		return f.AccountByPUUIDFunc(ctx, puuid)
	}
	return &riotapi.Account{PUUID: puuid, GameName: "Player", TagLine: "NA1"}, nil
}

func (f *FakeRiotClient) SummonerByPUUID(ctx context.Context, puuid string) (*riotapi.Summoner, error) {
	f.record("SummonerByPUUID")
	if f.SummonerByPUUIDFunc != nil {
		return f.SummonerByPUUIDFunc(ctx, puuid)
	}
	return &riotapi.Summoner{ID: "summ-" + puuid, PUUID: puuid, SummonerLevel: 100}, nil
}

func (f *FakeRiotClient) LeagueEntriesBySummoner(ctx context.Context, summonerID string) ([]riotapi.LeagueEntry, error) {
	f.record("LeagueEntriesBySummoner")
	if f.LeagueEntriesBySummonerFunc != nil {
		return f.LeagueEntriesBySummonerFunc(ctx, summonerID)
	}
	return nil, nil
}

func (f *FakeRiotClient) MatchIDsByPUUID(ctx context.Context, puuid string, start, count int) ([]string, error) {
	f.record("MatchIDsByPUUID")
	if f.MatchIDsByPUUIDFunc != nil {
		return f.MatchIDsByPUUIDFunc(ctx, puuid, start, count)
	}
	return nil, nil
}

func (f *FakeRiotClient) MatchByID(ctx context.Context, matchID string) (*riotapi.Match, error) {
	f.record("MatchByID")
	if f.MatchByIDFunc != nil {
		return f.MatchByIDFunc(ctx, matchID)
	}
	return nil, &riotapi.APIError{StatusCode: 404, Body: "match not found"}
}

func (f *FakeRiotClient) ActiveGameBySummoner(ctx context.Context, summonerID string) (*riotapi.ActiveGame, error) {
	f.record("ActiveGameBySummoner")
	if f.ActiveGameBySummonerFunc != nil {
		return f.ActiveGameBySummonerFunc(ctx, summonerID)
	}
	return nil, &riotapi.APIError{StatusCode: 404, Body: "not in game"}
}

func (f *FakeRiotClient) ChampionMasteriesByPUUID(ctx context.Context, puuid string) ([]riotapi.ChampionMastery, error) {
	f.record("ChampionMasteriesByPUUID")
	if f.ChampionMasteriesByPUUIDFunc != nil {
		return f.ChampionMasteriesByPUUIDFunc(ctx, puuid)
	}
	return nil, nil
}

func (f *FakeRiotClient) ChampionName(ctx context.Context, championID int64) (string, error) {
	f.record("ChampionName")
	if f.ChampionNameFunc != nil {
		return f.ChampionNameFunc(ctx, championID)
	}
	return "Champion", nil
}

func (f *FakeRiotClient) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ riotapi.Client = (*FakeRiotClient)(nil)

// ------------------------
// Fake Link Resolver
// ------------------------

type FakeLinkResolver struct {
	PrimaryLinkFunc func(ctx context.Context, userID sharedtypes.DiscordID) (*SummonerLink, error)
}

func (f *FakeLinkResolver) PrimaryLink(ctx context.Context, userID sharedtypes.DiscordID) (*SummonerLink, error) {
	if f.PrimaryLinkFunc != nil {
		return f.PrimaryLinkFunc(ctx, userID)
	}
	return nil, nil
}

var _ LinkResolver = (*FakeLinkResolver)(nil)
