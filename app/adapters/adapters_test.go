package adapters

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountsservice "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/application"
	statsservice "github.com/Five-Stack-Club/rift-bot/app/modules/stats/application"
	"github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/riotapi"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// The fakes embed the service interfaces so only the methods an adapter
// touches need stubbing.

type fakeRiot struct {
	riotapi.Client
	accountByRiotID func(ctx context.Context, gameName, tagLine string) (*riotapi.Account, error)
}

func (f *fakeRiot) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*riotapi.Account, error) {
	return f.accountByRiotID(ctx, gameName, tagLine)
}

type fakeAccounts struct {
	accountsservice.Service
	primaryLink func(ctx context.Context, id sharedtypes.DiscordID) (*accountsservice.LinkedAccount, error)
}

func (f *fakeAccounts) PrimaryLink(ctx context.Context, id sharedtypes.DiscordID) (*accountsservice.LinkedAccount, error) {
	return f.primaryLink(ctx, id)
}

type fakeStats struct {
	statsservice.Service
	ratingByPUUID func(ctx context.Context, puuid sharedtypes.PUUID) (int, error)
}

func (f *fakeStats) RatingByPUUID(ctx context.Context, puuid sharedtypes.PUUID) (int, error) {
	return f.ratingByPUUID(ctx, puuid)
}

func TestVerifyRiotID(t *testing.T) {
	ctx := context.Background()

	t.Run("maps the upstream account", func(t *testing.T) {
		verifier := NewRiotVerifier(&fakeRiot{
			accountByRiotID: func(ctx context.Context, gameName, tagLine string) (*riotapi.Account, error) {
				assert.Equal(t, "Hero", gameName)
				assert.Equal(t, "NA1", tagLine)
				return &riotapi.Account{PUUID: "puuid-1", GameName: "Hero", TagLine: "NA1"}, nil
			},
		})

		got, err := verifier.VerifyRiotID(ctx, "Hero", "NA1")
		require.NoError(t, err)
		assert.Equal(t, sharedtypes.PUUID("puuid-1"), got.PUUID)
		assert.Equal(t, "Hero", got.GameName)
	})

	t.Run("maps upstream 404 to the accounts sentinel", func(t *testing.T) {
		verifier := NewRiotVerifier(&fakeRiot{
			accountByRiotID: func(ctx context.Context, gameName, tagLine string) (*riotapi.Account, error) {
				return nil, &riotapi.APIError{StatusCode: http.StatusNotFound, Body: "not found"}
			},
		})

		_, err := verifier.VerifyRiotID(ctx, "Ghost", "NA1")
		require.ErrorIs(t, err, accountsservice.ErrAccountNotFound)
	})

	t.Run("wraps other upstream failures", func(t *testing.T) {
		verifier := NewRiotVerifier(&fakeRiot{
			accountByRiotID: func(ctx context.Context, gameName, tagLine string) (*riotapi.Account, error) {
				return nil, &riotapi.APIError{StatusCode: http.StatusInternalServerError, Body: "boom"}
			},
		})

		_, err := verifier.VerifyRiotID(ctx, "Hero", "NA1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, accountsservice.ErrAccountNotFound)
	})
}

func TestPrimaryLink(t *testing.T) {
	ctx := context.Background()

	t.Run("maps the linked account view", func(t *testing.T) {
		resolver := NewPrimaryLinkResolver(&fakeAccounts{
			primaryLink: func(ctx context.Context, id sharedtypes.DiscordID) (*accountsservice.LinkedAccount, error) {
				return &accountsservice.LinkedAccount{
					PUUID:    "puuid-1",
					GameName: "Hero",
					TagLine:  "NA1",
					Region:   "na1",
					Primary:  true,
				}, nil
			},
		})

		got, err := resolver.PrimaryLink(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, sharedtypes.PUUID("puuid-1"), got.PUUID)
		assert.Equal(t, "na1", got.Region)
	})

	t.Run("maps not-linked to the stats sentinel", func(t *testing.T) {
		resolver := NewPrimaryLinkResolver(&fakeAccounts{
			primaryLink: func(ctx context.Context, id sharedtypes.DiscordID) (*accountsservice.LinkedAccount, error) {
				return nil, accountsservice.ErrNotLinked
			},
		})

		_, err := resolver.PrimaryLink(ctx, "user-1")
		require.ErrorIs(t, err, statsservice.ErrNoLink)
	})

	t.Run("passes other failures through", func(t *testing.T) {
		dbErr := errors.New("db down")
		resolver := NewPrimaryLinkResolver(&fakeAccounts{
			primaryLink: func(ctx context.Context, id sharedtypes.DiscordID) (*accountsservice.LinkedAccount, error) {
				return nil, dbErr
			},
		})

		_, err := resolver.PrimaryLink(ctx, "user-1")
		require.ErrorIs(t, err, dbErr)
	})
}

func TestLookupRating(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves through the primary link", func(t *testing.T) {
		source := NewLinkedRatingSource(
			&fakeAccounts{
				primaryLink: func(ctx context.Context, id sharedtypes.DiscordID) (*accountsservice.LinkedAccount, error) {
					assert.Equal(t, sharedtypes.DiscordID("user-1"), id)
					return &accountsservice.LinkedAccount{PUUID: "puuid-1"}, nil
				},
			},
			&fakeStats{
				ratingByPUUID: func(ctx context.Context, puuid sharedtypes.PUUID) (int, error) {
					assert.Equal(t, sharedtypes.PUUID("puuid-1"), puuid)
					return 1480, nil
				},
			},
		)

		rating, err := source.LookupRating(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1480, rating)
	})

	t.Run("surfaces a missing link", func(t *testing.T) {
		source := NewLinkedRatingSource(
			&fakeAccounts{
				primaryLink: func(ctx context.Context, id sharedtypes.DiscordID) (*accountsservice.LinkedAccount, error) {
					return nil, accountsservice.ErrNotLinked
				},
			},
			&fakeStats{},
		)

		_, err := source.LookupRating(ctx, "user-1")
		require.ErrorIs(t, err, accountsservice.ErrNotLinked)
	})
}
