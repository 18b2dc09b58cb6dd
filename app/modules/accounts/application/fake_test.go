package accountsservice

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	accountsdb "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/repositories"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// ------------------------
// Fake Accounts Repository
// ------------------------

// FakeAccountsRepo keeps users and links in memory so tests exercise the
// real duplicate/ordering rules without a database.
type FakeAccountsRepo struct {
	trace  []string
	users  map[sharedtypes.DiscordID]*accountsdb.User
	links  []accountsdb.SummonerLink
	nextID int64

	UpsertUserFunc func(ctx context.Context, db bun.IDB, user *accountsdb.User) error
	GetUserFunc    func(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*accountsdb.User, error)
	CreateLinkFunc func(ctx context.Context, db bun.IDB, link *accountsdb.SummonerLink) error
	DeleteLinkFunc func(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID, gameName, tagLine string) error
	ListLinksFunc  func(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) ([]accountsdb.SummonerLink, error)
	FirstLinkFunc  func(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*accountsdb.SummonerLink, error)
}

func NewFakeAccountsRepo() *FakeAccountsRepo {
	return &FakeAccountsRepo{
		trace: []string{},
		users: make(map[sharedtypes.DiscordID]*accountsdb.User),
	}
}

func (f *FakeAccountsRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeAccountsRepo) UpsertUser(ctx context.Context, db bun.IDB, user *accountsdb.User) error {
	f.record("UpsertUser")
	if f.UpsertUserFunc != nil {
		return f.UpsertUserFunc(ctx, db, user)
	}
	f.users[user.UserID] = user
	return nil
}

func (f *FakeAccountsRepo) GetUser(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*accountsdb.User, error) {
	f.record("GetUser")
	if f.GetUserFunc != nil {
		return f.GetUserFunc(ctx, db, userID)
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, accountsdb.ErrNotFound
	}
	return user, nil
}

func (f *FakeAccountsRepo) CreateLink(ctx context.Context, db bun.IDB, link *accountsdb.SummonerLink) error {
	f.record("CreateLink")
	if f.CreateLinkFunc != nil {
		return f.CreateLinkFunc(ctx, db, link)
	}
	for _, existing := range f.links {
		if existing.UserID == link.UserID && existing.PUUID == link.PUUID {
			return accountsdb.ErrDuplicateLink
		}
	}
	f.nextID++
	link.ID = f.nextID
	f.links = append(f.links, *link)
	return nil
}

func (f *FakeAccountsRepo) DeleteLink(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID, gameName, tagLine string) error {
	f.record("DeleteLink")
	if f.DeleteLinkFunc != nil {
		return f.DeleteLinkFunc(ctx, db, userID, gameName, tagLine)
	}
	for i, link := range f.links {
		if link.UserID == userID &&
			strings.EqualFold(link.GameName, gameName) &&
			strings.EqualFold(link.TagLine, tagLine) {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return nil
		}
	}
	return accountsdb.ErrNotFound
}

func (f *FakeAccountsRepo) ListLinks(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) ([]accountsdb.SummonerLink, error) {
	f.record("ListLinks")
	if f.ListLinksFunc != nil {
		return f.ListLinksFunc(ctx, db, userID)
	}
	var out []accountsdb.SummonerLink
	for _, link := range f.links {
		if link.UserID == userID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (f *FakeAccountsRepo) FirstLink(ctx context.Context, db bun.IDB, userID sharedtypes.DiscordID) (*accountsdb.SummonerLink, error) {
	f.record("FirstLink")
	if f.FirstLinkFunc != nil {
		return f.FirstLinkFunc(ctx, db, userID)
	}
	for _, link := range f.links {
		if link.UserID == userID {
			found := link
			return &found, nil
		}
	}
	return nil, accountsdb.ErrNotFound
}

// --- Accessors for assertions ---

func (f *FakeAccountsRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ accountsdb.Repository = (*FakeAccountsRepo)(nil)

// ------------------------
// Fake Riot Verifier
// ------------------------

type FakeRiotVerifier struct {
	VerifyRiotIDFunc func(ctx context.Context, gameName, tagLine string) (*VerifiedAccount, error)
}

func (f *FakeRiotVerifier) VerifyRiotID(ctx context.Context, gameName, tagLine string) (*VerifiedAccount, error) {
	if f.VerifyRiotIDFunc != nil {
		return f.VerifyRiotIDFunc(ctx, gameName, tagLine)
	}
	return &VerifiedAccount{
		PUUID:    sharedtypes.PUUID("puuid-" + gameName),
		GameName: gameName,
		TagLine:  tagLine,
	}, nil
}

var _ RiotVerifier = (*FakeRiotVerifier)(nil)
