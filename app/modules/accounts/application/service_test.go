package accountsservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/accounts"
)

func newTestService(repo *FakeAccountsRepo, verifier RiotVerifier) *AccountService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAccountService(repo, verifier, logger, accountmetrics.NewNoop(), nil, nil, "na1")
}

func TestLinkAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("first link is primary and uses canonical casing", func(t *testing.T) {
		repo := NewFakeAccountsRepo()
		verifier := &FakeRiotVerifier{
			VerifyRiotIDFunc: func(ctx context.Context, gameName, tagLine string) (*VerifiedAccount, error) {
				return &VerifiedAccount{PUUID: "puuid-1", GameName: "Hero", TagLine: "NA1"}, nil
			},
		}
		svc := newTestService(repo, verifier)

		account, err := svc.LinkAccount(ctx, "user-1", "hero_main", "hero", "na1", "")
		require.NoError(t, err)
		assert.Equal(t, "Hero", account.GameName)
		assert.Equal(t, "NA1", account.TagLine)
		assert.True(t, account.Primary)
		assert.Equal(t, "na1", account.Region, "empty region falls back to the default")

		user, err := repo.GetUser(ctx, nil, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "hero_main", user.Username)
	})

	t.Run("second link is not primary", func(t *testing.T) {
		repo := NewFakeAccountsRepo()
		svc := newTestService(repo, &FakeRiotVerifier{})

		_, err := svc.LinkAccount(ctx, "user-1", "hero", "Main", "NA1", "na1")
		require.NoError(t, err)

		account, err := svc.LinkAccount(ctx, "user-1", "hero", "Smurf", "NA1", "euw1")
		require.NoError(t, err)
		assert.False(t, account.Primary)
		assert.Equal(t, "euw1", account.Region)
	})

	t.Run("duplicate link", func(t *testing.T) {
		repo := NewFakeAccountsRepo()
		svc := newTestService(repo, &FakeRiotVerifier{})

		_, err := svc.LinkAccount(ctx, "user-1", "hero", "Main", "NA1", "na1")
		require.NoError(t, err)

		_, err = svc.LinkAccount(ctx, "user-1", "hero", "Main", "NA1", "na1")
		assert.ErrorIs(t, err, ErrAlreadyLinked)
	})

	t.Run("unknown riot id", func(t *testing.T) {
		verifier := &FakeRiotVerifier{
			VerifyRiotIDFunc: func(ctx context.Context, gameName, tagLine string) (*VerifiedAccount, error) {
				return nil, ErrAccountNotFound
			},
		}
		svc := newTestService(NewFakeAccountsRepo(), verifier)

		_, err := svc.LinkAccount(ctx, "user-1", "hero", "Nobody", "NA1", "")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("verifier outage is an infrastructure error", func(t *testing.T) {
		verifier := &FakeRiotVerifier{
			VerifyRiotIDFunc: func(ctx context.Context, gameName, tagLine string) (*VerifiedAccount, error) {
				return nil, errors.New("riot api down")
			},
		}
		repo := NewFakeAccountsRepo()
		svc := newTestService(repo, verifier)

		_, err := svc.LinkAccount(ctx, "user-1", "hero", "Main", "NA1", "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrAccountNotFound)
		assert.Empty(t, repo.Trace(), "nothing is written when verification fails")
	})
}

func TestUnlinkAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("removes a link ignoring case", func(t *testing.T) {
		repo := NewFakeAccountsRepo()
		svc := newTestService(repo, &FakeRiotVerifier{})

		_, err := svc.LinkAccount(ctx, "user-1", "hero", "Main", "NA1", "na1")
		require.NoError(t, err)

		err = svc.UnlinkAccount(ctx, "user-1", "MAIN", "na1")
		require.NoError(t, err)

		links, err := svc.ListLinks(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("nothing to unlink", func(t *testing.T) {
		svc := newTestService(NewFakeAccountsRepo(), &FakeRiotVerifier{})

		err := svc.UnlinkAccount(ctx, "user-1", "Main", "NA1")
		assert.ErrorIs(t, err, ErrNotLinked)
	})
}

func TestListLinks(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeAccountsRepo()
	svc := newTestService(repo, &FakeRiotVerifier{})

	_, err := svc.LinkAccount(ctx, "user-1", "hero", "Main", "NA1", "na1")
	require.NoError(t, err)
	_, err = svc.LinkAccount(ctx, "user-1", "hero", "Smurf", "NA1", "na1")
	require.NoError(t, err)
	_, err = svc.LinkAccount(ctx, "user-2", "other", "Other", "NA1", "na1")
	require.NoError(t, err)

	links, err := svc.ListLinks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, links, 2)

	assert.Equal(t, "Main", links[0].GameName)
	assert.True(t, links[0].Primary)
	assert.Equal(t, "Smurf", links[1].GameName)
	assert.False(t, links[1].Primary)
}

func TestPrimaryLink(t *testing.T) {
	ctx := context.Background()

	t.Run("oldest link wins", func(t *testing.T) {
		repo := NewFakeAccountsRepo()
		svc := newTestService(repo, &FakeRiotVerifier{})

		_, err := svc.LinkAccount(ctx, "user-1", "hero", "Main", "NA1", "na1")
		require.NoError(t, err)
		_, err = svc.LinkAccount(ctx, "user-1", "hero", "Smurf", "NA1", "na1")
		require.NoError(t, err)

		link, err := svc.PrimaryLink(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Main", link.GameName)
		assert.True(t, link.Primary)
	})

	t.Run("no links", func(t *testing.T) {
		svc := newTestService(NewFakeAccountsRepo(), &FakeRiotVerifier{})

		_, err := svc.PrimaryLink(ctx, "user-1")
		assert.ErrorIs(t, err, ErrNotLinked)
	})
}

func TestObserveUser(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts the identity registry", func(t *testing.T) {
		repo := NewFakeAccountsRepo()
		svc := newTestService(repo, &FakeRiotVerifier{})

		require.NoError(t, svc.ObserveUser(ctx, "user-1", "hero"))
		require.NoError(t, svc.ObserveUser(ctx, "user-1", "hero_renamed"))

		user, err := repo.GetUser(ctx, nil, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "hero_renamed", user.Username)
	})

	t.Run("empty user id is a silent no-op", func(t *testing.T) {
		repo := NewFakeAccountsRepo()
		svc := newTestService(repo, &FakeRiotVerifier{})

		require.NoError(t, svc.ObserveUser(ctx, "", "ghost"))
		assert.Empty(t, repo.Trace())
	})
}
