package chatservice

import (
	"context"

	"github.com/uptrace/bun"

	accountsservice "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/application"
	statsservice "github.com/Five-Stack-Club/rift-bot/app/modules/stats/application"
	chatdb "github.com/Five-Stack-Club/rift-bot/app/modules/chat/infrastructure/repositories"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// ------------------------
// Fake Chat Repository
// ------------------------

type FakeChatRepo struct {
	trace    []string
	messages []chatdb.Message
	nextID   int64

	InsertMessageFunc func(ctx context.Context, db bun.IDB, msg *chatdb.Message) error
	ListRecentFunc    func(ctx context.Context, db bun.IDB, channelID sharedtypes.ChannelID, limit int) ([]chatdb.Message, error)
}

func NewFakeChatRepo() *FakeChatRepo {
	return &FakeChatRepo{
		trace: []string{},
	}
}

func (f *FakeChatRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeChatRepo) InsertMessage(ctx context.Context, db bun.IDB, msg *chatdb.Message) error {
	f.record("InsertMessage")
	if f.InsertMessageFunc != nil {
		return f.InsertMessageFunc(ctx, db, msg)
	}
	for _, m := range f.messages {
		if m.MessageID == msg.MessageID {
			return nil
		}
	}
	f.nextID++
	stored := *msg
	stored.ID = f.nextID
	f.messages = append(f.messages, stored)
	return nil
}

func (f *FakeChatRepo) ListRecent(ctx context.Context, db bun.IDB, channelID sharedtypes.ChannelID, limit int) ([]chatdb.Message, error) {
	f.record("ListRecent")
	if f.ListRecentFunc != nil {
		return f.ListRecentFunc(ctx, db, channelID, limit)
	}
	var out []chatdb.Message
	for i := len(f.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if f.messages[i].ChannelID == channelID {
			out = append(out, f.messages[i])
		}
	}
	return out, nil
}

// --- Accessors for assertions ---

func (f *FakeChatRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ chatdb.Repository = (*FakeChatRepo)(nil)

// ------------------------
// Fake Completion Client
// ------------------------

type FakeCompletionClient struct {
	// Requests records every completion call for transcript assertions.
	Requests []CompletionRequest

	CompleteFunc func(ctx context.Context, req CompletionRequest) (*Completion, error)
}

func (f *FakeCompletionClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	f.Requests = append(f.Requests, req)
	if f.CompleteFunc != nil {
		return f.CompleteFunc(ctx, req)
	}
	return &Completion{Content: "ok"}, nil
}

var _ CompletionClient = (*FakeCompletionClient)(nil)

// ------------------------
// Fake Tool Backends
// ------------------------

type FakeStatsReader struct {
	trace []string

	ProfileFunc       func(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*statsservice.ProfileView, error)
	RecentMatchesFunc func(ctx context.Context, userID sharedtypes.DiscordID, count int) (*statsservice.MatchHistory, error)
	ActiveGameFunc    func(ctx context.Context, userID sharedtypes.DiscordID) (*statsservice.ActiveGameView, error)
}

func (f *FakeStatsReader) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeStatsReader) Profile(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*statsservice.ProfileView, error) {
	f.record("Profile")
	if f.ProfileFunc != nil {
		return f.ProfileFunc(ctx, userID, gameName, tagLine)
	}
	return &statsservice.ProfileView{GameName: "Hero", TagLine: "NA1", SummonerLevel: 120, Rating: 1440}, nil
}

func (f *FakeStatsReader) RecentMatches(ctx context.Context, userID sharedtypes.DiscordID, count int) (*statsservice.MatchHistory, error) {
	f.record("RecentMatches")
	if f.RecentMatchesFunc != nil {
		return f.RecentMatchesFunc(ctx, userID, count)
	}
	return &statsservice.MatchHistory{GameName: "Hero"}, nil
}

func (f *FakeStatsReader) ActiveGame(ctx context.Context, userID sharedtypes.DiscordID) (*statsservice.ActiveGameView, error) {
	f.record("ActiveGame")
	if f.ActiveGameFunc != nil {
		return f.ActiveGameFunc(ctx, userID)
	}
	return &statsservice.ActiveGameView{GameMode: "CLASSIC"}, nil
}

func (f *FakeStatsReader) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ StatsReader = (*FakeStatsReader)(nil)

type FakeAccountsReader struct {
	trace []string

	LinkAccountFunc func(ctx context.Context, userID sharedtypes.DiscordID, username, gameName, tagLine, region string) (*accountsservice.LinkedAccount, error)
	ListLinksFunc   func(ctx context.Context, userID sharedtypes.DiscordID) ([]accountsservice.LinkedAccount, error)
}

func (f *FakeAccountsReader) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeAccountsReader) LinkAccount(ctx context.Context, userID sharedtypes.DiscordID, username, gameName, tagLine, region string) (*accountsservice.LinkedAccount, error) {
	f.record("LinkAccount")
	if f.LinkAccountFunc != nil {
		return f.LinkAccountFunc(ctx, userID, username, gameName, tagLine, region)
	}
	return &accountsservice.LinkedAccount{GameName: gameName, TagLine: tagLine, Region: region, Primary: true}, nil
}

func (f *FakeAccountsReader) ListLinks(ctx context.Context, userID sharedtypes.DiscordID) ([]accountsservice.LinkedAccount, error) {
	f.record("ListLinks")
	if f.ListLinksFunc != nil {
		return f.ListLinksFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeAccountsReader) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ AccountsReader = (*FakeAccountsReader)(nil)
