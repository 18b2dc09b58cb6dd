package accounthandlers

import (
	"context"

	accountsservice "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/application"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// ------------------------
// Fake Account Service
// ------------------------

type FakeAccountService struct {
	trace []string

	ObserveUserFunc   func(ctx context.Context, userID sharedtypes.DiscordID, username string) error
	LinkAccountFunc   func(ctx context.Context, userID sharedtypes.DiscordID, username, gameName, tagLine, region string) (*accountsservice.LinkedAccount, error)
	UnlinkAccountFunc func(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) error
	ListLinksFunc     func(ctx context.Context, userID sharedtypes.DiscordID) ([]accountsservice.LinkedAccount, error)
	PrimaryLinkFunc   func(ctx context.Context, userID sharedtypes.DiscordID) (*accountsservice.LinkedAccount, error)
}

func NewFakeAccountService() *FakeAccountService {
	return &FakeAccountService{
		trace: []string{},
	}
}

func (f *FakeAccountService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeAccountService) ObserveUser(ctx context.Context, userID sharedtypes.DiscordID, username string) error {
	f.record("ObserveUser")
	if f.ObserveUserFunc != nil {
		return f.ObserveUserFunc(ctx, userID, username)
	}
	return nil
}

func (f *FakeAccountService) LinkAccount(ctx context.Context, userID sharedtypes.DiscordID, username, gameName, tagLine, region string) (*accountsservice.LinkedAccount, error) {
	f.record("LinkAccount")
	if f.LinkAccountFunc != nil {
		return f.LinkAccountFunc(ctx, userID, username, gameName, tagLine, region)
	}
	return nil, nil
}

func (f *FakeAccountService) UnlinkAccount(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) error {
	f.record("UnlinkAccount")
	if f.UnlinkAccountFunc != nil {
		return f.UnlinkAccountFunc(ctx, userID, gameName, tagLine)
	}
	return nil
}

func (f *FakeAccountService) ListLinks(ctx context.Context, userID sharedtypes.DiscordID) ([]accountsservice.LinkedAccount, error) {
	f.record("ListLinks")
	if f.ListLinksFunc != nil {
		return f.ListLinksFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeAccountService) PrimaryLink(ctx context.Context, userID sharedtypes.DiscordID) (*accountsservice.LinkedAccount, error) {
	f.record("PrimaryLink")
	if f.PrimaryLinkFunc != nil {
		return f.PrimaryLinkFunc(ctx, userID)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeAccountService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ accountsservice.Service = (*FakeAccountService)(nil)
