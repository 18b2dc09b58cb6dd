package statshandlers

import (
	"context"
	"time"

	statsservice "github.com/Five-Stack-Club/rift-bot/app/modules/stats/application"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// ------------------------
// Fake Stats Service
// ------------------------

type FakeStatsService struct {
	trace []string

	ResolveRiotIDFunc    func(ctx context.Context, gameName, tagLine string) (*statsservice.RiotIdentity, error)
	RatingByPUUIDFunc    func(ctx context.Context, puuid sharedtypes.PUUID) (int, error)
	ProfileFunc          func(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*statsservice.ProfileView, error)
	RecentMatchesFunc    func(ctx context.Context, userID sharedtypes.DiscordID, count int) (*statsservice.MatchHistory, error)
	SyncMatchesFunc      func(ctx context.Context, puuid sharedtypes.PUUID, count int) (int, error)
	PerformanceChartFunc func(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error)
	ExportMatchesFunc    func(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error)
	ActiveGameFunc       func(ctx context.Context, userID sharedtypes.DiscordID) (*statsservice.ActiveGameView, error)
	PruneRequestLogsFunc func(ctx context.Context, olderThan time.Duration) (int64, error)
}

func NewFakeStatsService() *FakeStatsService {
	return &FakeStatsService{
		trace: []string{},
	}
}

func (f *FakeStatsService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeStatsService) ResolveRiotID(ctx context.Context, gameName, tagLine string) (*statsservice.RiotIdentity, error) {
	f.record("ResolveRiotID")
	if f.ResolveRiotIDFunc != nil {
		return f.ResolveRiotIDFunc(ctx, gameName, tagLine)
	}
	return nil, nil
}

func (f *FakeStatsService) RatingByPUUID(ctx context.Context, puuid sharedtypes.PUUID) (int, error) {
	f.record("RatingByPUUID")
	if f.RatingByPUUIDFunc != nil {
		return f.RatingByPUUIDFunc(ctx, puuid)
	}
	return 0, nil
}

func (f *FakeStatsService) Profile(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*statsservice.ProfileView, error) {
	f.record("Profile")
	if f.ProfileFunc != nil {
		return f.ProfileFunc(ctx, userID, gameName, tagLine)
	}
	return nil, nil
}

func (f *FakeStatsService) RecentMatches(ctx context.Context, userID sharedtypes.DiscordID, count int) (*statsservice.MatchHistory, error) {
	f.record("RecentMatches")
	if f.RecentMatchesFunc != nil {
		return f.RecentMatchesFunc(ctx, userID, count)
	}
	return nil, nil
}

func (f *FakeStatsService) SyncMatches(ctx context.Context, puuid sharedtypes.PUUID, count int) (int, error) {
	f.record("SyncMatches")
	if f.SyncMatchesFunc != nil {
		return f.SyncMatchesFunc(ctx, puuid, count)
	}
	return 0, nil
}

func (f *FakeStatsService) PerformanceChart(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error) {
	f.record("PerformanceChart")
	if f.PerformanceChartFunc != nil {
		return f.PerformanceChartFunc(ctx, userID, count)
	}
	return nil, "", nil
}

func (f *FakeStatsService) ExportMatches(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error) {
	f.record("ExportMatches")
	if f.ExportMatchesFunc != nil {
		return f.ExportMatchesFunc(ctx, userID, count)
	}
	return nil, "", nil
}

func (f *FakeStatsService) ActiveGame(ctx context.Context, userID sharedtypes.DiscordID) (*statsservice.ActiveGameView, error) {
	f.record("ActiveGame")
	if f.ActiveGameFunc != nil {
		return f.ActiveGameFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeStatsService) PruneRequestLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.record("PruneRequestLogs")
	if f.PruneRequestLogsFunc != nil {
		return f.PruneRequestLogsFunc(ctx, olderThan)
	}
	return 0, nil
}

// --- Accessors for assertions ---

func (f *FakeStatsService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ statsservice.Service = (*FakeStatsService)(nil)
