package lobbyservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	lobbydomain "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/domain"
	lobbydb "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/infrastructure/repositories"
	lobbymetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/lobby"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

var testBase = time.Date(2026, time.August, 23, 10, 0, 0, 0, time.UTC)

func flatRatings(rating int) lobbydomain.RatingSource {
	return lobbydomain.RatingSourceFunc(func(ctx context.Context, id sharedtypes.DiscordID) (int, error) {
		return rating, nil
	})
}

func newTestService(repo *FakeLobbyRepo, sched *FakeScheduler, source lobbydomain.RatingSource) *LobbyService {
	svc := NewLobbyService(
		repo,
		sched,
		source,
		slog.Default(),
		lobbymetrics.NewNoop(),
		nil,
		nil,
		6*time.Hour,
		time.Second,
	)
	svc.clock = fixedClock{now: testBase}
	return svc
}

// openLinkedLobby opens a lobby in the channel and links a board message
// named after the channel.
func openLinkedLobby(t *testing.T, svc *LobbyService, channelID sharedtypes.ChannelID) *LobbyInfo {
	t.Helper()
	info, err := svc.OpenLobby(context.Background(), "guild-1", channelID, "opener", "")
	require.NoError(t, err)
	require.NotNil(t, info)
	require.NoError(t, svc.LinkBoard(context.Background(), info.ID, sharedtypes.MessageID("board-"+channelID)))
	return info
}

func TestOpenLobby(t *testing.T) {
	t.Run("default TTL applies without a named close time", func(t *testing.T) {
		repo := NewFakeLobbyRepo()
		sched := NewFakeScheduler()
		svc := newTestService(repo, sched, flatRatings(1500))

		info, err := svc.OpenLobby(context.Background(), "guild-1", "chan-1", "opener", "")

		require.NoError(t, err)
		require.NotNil(t, info)
		assert.True(t, info.ExpiresAt.Equal(testBase.Add(6*time.Hour)))
		assert.Contains(t, repo.Trace(), "Create")
		assert.Contains(t, sched.Trace(), "ScheduleExpiry")
	})

	t.Run("close time parsed from command text", func(t *testing.T) {
		repo := NewFakeLobbyRepo()
		sched := NewFakeScheduler()
		svc := newTestService(repo, sched, flatRatings(1500))

		info, err := svc.OpenLobby(context.Background(), "guild-1", "chan-1", "opener", "until 9pm")

		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, 21, info.ExpiresAt.Hour())
		assert.Equal(t, testBase.Day(), info.ExpiresAt.Day())
	})

	t.Run("second open in the same channel is rejected", func(t *testing.T) {
		repo := NewFakeLobbyRepo()
		svc := newTestService(repo, NewFakeScheduler(), flatRatings(1500))

		_, err := svc.OpenLobby(context.Background(), "guild-1", "chan-1", "opener", "")
		require.NoError(t, err)

		_, err = svc.OpenLobby(context.Background(), "guild-1", "chan-1", "someone-else", "")
		assert.ErrorIs(t, err, ErrChannelBusy)

		// The rejected open never reached the repository.
		assert.Equal(t, []string{"Create"}, repo.Trace())
	})

	t.Run("repository failure leaves no session behind", func(t *testing.T) {
		repo := NewFakeLobbyRepo()
		repo.CreateFunc = func(ctx context.Context, db bun.IDB, lobby *lobbydb.Lobby) error {
			return errors.New("connection refused")
		}
		svc := newTestService(repo, NewFakeScheduler(), flatRatings(1500))

		_, err := svc.OpenLobby(context.Background(), "guild-1", "chan-1", "opener", "")
		require.Error(t, err)

		_, err = svc.Status(context.Background(), "chan-1")
		assert.ErrorIs(t, err, ErrNoOpenLobby)
	})

	t.Run("scheduler failure does not fail the open", func(t *testing.T) {
		sched := NewFakeScheduler()
		sched.ScheduleExpiryFunc = func(ctx context.Context, lobbyID sharedtypes.LobbyID, at time.Time) error {
			return errors.New("queue unavailable")
		}
		svc := newTestService(NewFakeLobbyRepo(), sched, flatRatings(1500))

		info, err := svc.OpenLobby(context.Background(), "guild-1", "chan-1", "opener", "")
		require.NoError(t, err)
		assert.NotNil(t, info)
	})
}

func TestLinkBoard(t *testing.T) {
	t.Run("reactions route through the linked message", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))
		info := openLinkedLobby(t, svc, "chan-1")

		outcome, err := svc.HandleReaction(context.Background(), "board-chan-1", "user-1", "TOP", true)
		require.NoError(t, err)
		require.NotNil(t, outcome)
		assert.Equal(t, info.ID, outcome.Lobby.ID)
		assert.Len(t, outcome.Pool.Active, 1)
	})

	t.Run("unknown lobby returns not found", func(t *testing.T) {
		repo := NewFakeLobbyRepo()
		repo.SetMessageIDFunc = func(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, messageID string) error {
			return lobbydb.ErrNotFound
		}
		svc := newTestService(repo, NewFakeScheduler(), flatRatings(1500))

		err := svc.LinkBoard(context.Background(), sharedtypes.NewLobbyID(), "board-1")
		assert.ErrorIs(t, err, ErrLobbyNotFound)
	})

	t.Run("relinking moves reaction routing to the new message", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))
		info, err := svc.OpenLobby(context.Background(), "guild-1", "chan-1", "opener", "")
		require.NoError(t, err)

		require.NoError(t, svc.LinkBoard(context.Background(), info.ID, "board-old"))
		require.NoError(t, svc.LinkBoard(context.Background(), info.ID, "board-new"))

		outcome, err := svc.HandleReaction(context.Background(), "board-old", "user-1", "TOP", true)
		require.NoError(t, err)
		assert.Nil(t, outcome)

		outcome, err = svc.HandleReaction(context.Background(), "board-new", "user-1", "TOP", true)
		require.NoError(t, err)
		assert.NotNil(t, outcome)
	})
}

func TestHandleReaction(t *testing.T) {
	t.Run("non-role emoji is silently ignored", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))
		openLinkedLobby(t, svc, "chan-1")

		outcome, err := svc.HandleReaction(context.Background(), "board-chan-1", "user-1", "thumbsup", true)
		assert.NoError(t, err)
		assert.Nil(t, outcome)
	})

	t.Run("reaction on an unrelated message is silently ignored", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))
		openLinkedLobby(t, svc, "chan-1")

		outcome, err := svc.HandleReaction(context.Background(), "some-other-message", "user-1", "TOP", true)
		assert.NoError(t, err)
		assert.Nil(t, outcome)
	})

	t.Run("join and leave update the pool projection", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))
		openLinkedLobby(t, svc, "chan-1")
		ctx := context.Background()

		outcome, err := svc.HandleReaction(ctx, "board-chan-1", "user-1", "TOP", true)
		require.NoError(t, err)
		require.NotNil(t, outcome)
		assert.Equal(t, lobbydomain.StateFilling, outcome.Pool.State)
		require.Len(t, outcome.Pool.Active, 1)
		assert.Equal(t, []lobbydomain.Role{lobbydomain.RoleTop}, outcome.Pool.Active[0].Roles.Roles())
		assert.Nil(t, outcome.Assignment)

		outcome, err = svc.HandleReaction(ctx, "board-chan-1", "user-1", "JUNGLE", true)
		require.NoError(t, err)
		assert.Equal(t, []lobbydomain.Role{lobbydomain.RoleTop, lobbydomain.RoleJungle}, outcome.Pool.Active[0].Roles.Roles())

		outcome, err = svc.HandleReaction(ctx, "board-chan-1", "user-1", "TOP", false)
		require.NoError(t, err)
		assert.Equal(t, []lobbydomain.Role{lobbydomain.RoleJungle}, outcome.Pool.Active[0].Roles.Roles())

		outcome, err = svc.HandleReaction(ctx, "board-chan-1", "user-1", "JUNGLE", false)
		require.NoError(t, err)
		assert.Empty(t, outcome.Pool.Active)
	})

	t.Run("ratings come from the configured source", func(t *testing.T) {
		source := lobbydomain.RatingSourceFunc(func(ctx context.Context, id sharedtypes.DiscordID) (int, error) {
			return 1875, nil
		})
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), source)
		openLinkedLobby(t, svc, "chan-1")

		outcome, err := svc.HandleReaction(context.Background(), "board-chan-1", "user-1", "MID", true)
		require.NoError(t, err)
		require.Len(t, outcome.Pool.Active, 1)
		assert.Equal(t, 1875, outcome.Pool.Active[0].Rating)
	})

	t.Run("tenth join forms teams", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))
		openLinkedLobby(t, svc, "chan-1")
		ctx := context.Background()

		var outcome *ReactionOutcome
		var err error
		for i := 0; i < 10; i++ {
			user := sharedtypes.DiscordID(fmt.Sprintf("user-%d", i))
			emoji := lobbydomain.AllRoles[i%lobbydomain.NumRoles].String()
			outcome, err = svc.HandleReaction(ctx, "board-chan-1", user, emoji, true)
			require.NoError(t, err)
			require.NotNil(t, outcome)
			if i < 9 {
				assert.Nil(t, outcome.Assignment)
			}
		}

		assert.Equal(t, lobbydomain.StateReady, outcome.Pool.State)
		require.NotNil(t, outcome.Assignment)
		assert.Zero(t, outcome.Assignment.PreferenceViolations)
		for _, role := range lobbydomain.AllRoles {
			assert.NotEmpty(t, outcome.Assignment.TeamA[role].ID)
			assert.NotEmpty(t, outcome.Assignment.TeamB[role].ID)
		}
	})

	t.Run("eleventh join waits without unforming teams", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))
		openLinkedLobby(t, svc, "chan-1")
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			user := sharedtypes.DiscordID(fmt.Sprintf("user-%d", i))
			emoji := lobbydomain.AllRoles[i%lobbydomain.NumRoles].String()
			_, err := svc.HandleReaction(ctx, "board-chan-1", user, emoji, true)
			require.NoError(t, err)
		}

		outcome, err := svc.HandleReaction(ctx, "board-chan-1", "user-10", "SUPPORT", true)
		require.NoError(t, err)
		assert.Len(t, outcome.Pool.Active, 10)
		require.Len(t, outcome.Pool.Waitlist, 1)
		assert.Equal(t, sharedtypes.DiscordID("user-10"), outcome.Pool.Waitlist[0].ID)
		assert.NotNil(t, outcome.Assignment)
	})
}

func TestStatus(t *testing.T) {
	t.Run("reports the open lobby", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))
		info := openLinkedLobby(t, svc, "chan-1")

		status, err := svc.Status(context.Background(), "chan-1")
		require.NoError(t, err)
		assert.Equal(t, info.ID, status.Lobby.ID)
		assert.Equal(t, lobbydomain.StateFilling, status.Pool.State)
	})

	t.Run("no open lobby", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))

		_, err := svc.Status(context.Background(), "chan-1")
		assert.ErrorIs(t, err, ErrNoOpenLobby)
	})
}

func TestCloseLobby(t *testing.T) {
	t.Run("close tears the session down", func(t *testing.T) {
		repo := NewFakeLobbyRepo()
		var closedState string
		repo.CloseFunc = func(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, state string) error {
			closedState = state
			return nil
		}
		sched := NewFakeScheduler()
		svc := newTestService(repo, sched, flatRatings(1500))
		info := openLinkedLobby(t, svc, "chan-1")

		closed, err := svc.CloseLobby(context.Background(), "chan-1")
		require.NoError(t, err)
		assert.Equal(t, info.ID, closed.ID)
		assert.Equal(t, lobbydb.StateClosed, closedState)
		assert.Contains(t, sched.Trace(), "CancelExpiry")

		_, err = svc.Status(context.Background(), "chan-1")
		assert.ErrorIs(t, err, ErrNoOpenLobby)

		outcome, err := svc.HandleReaction(context.Background(), "board-chan-1", "user-1", "TOP", true)
		assert.NoError(t, err)
		assert.Nil(t, outcome)
	})

	t.Run("no open lobby", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))

		_, err := svc.CloseLobby(context.Background(), "chan-1")
		assert.ErrorIs(t, err, ErrNoOpenLobby)
	})
}

func TestExpireLobby(t *testing.T) {
	t.Run("expires an open lobby", func(t *testing.T) {
		repo := NewFakeLobbyRepo()
		var closedState string
		repo.CloseFunc = func(ctx context.Context, db bun.IDB, lobbyID uuid.UUID, state string) error {
			closedState = state
			return nil
		}
		svc := newTestService(repo, NewFakeScheduler(), flatRatings(1500))
		info := openLinkedLobby(t, svc, "chan-1")

		expired, err := svc.ExpireLobby(context.Background(), info.ID)
		require.NoError(t, err)
		require.NotNil(t, expired)
		assert.Equal(t, info.ID, expired.ID)
		assert.Equal(t, lobbydb.StateExpired, closedState)

		_, err = svc.Status(context.Background(), "chan-1")
		assert.ErrorIs(t, err, ErrNoOpenLobby)
	})

	t.Run("expiry after a normal close is a no-op", func(t *testing.T) {
		svc := newTestService(NewFakeLobbyRepo(), NewFakeScheduler(), flatRatings(1500))

		expired, err := svc.ExpireLobby(context.Background(), sharedtypes.NewLobbyID())
		assert.NoError(t, err)
		assert.Nil(t, expired)
	})
}

func TestRestoreOpenLobbies(t *testing.T) {
	t.Run("restores sessions and reaction routing", func(t *testing.T) {
		repo := NewFakeLobbyRepo()
		repo.ListOpenFunc = func(ctx context.Context, db bun.IDB) ([]lobbydb.Lobby, error) {
			return []lobbydb.Lobby{
				{
					ID:        uuid.New(),
					GuildID:   "guild-1",
					ChannelID: "chan-1",
					MessageID: "board-1",
					State:     lobbydb.StateOpen,
					OpenedBy:  "opener",
					ExpiresAt: testBase.Add(time.Hour),
				},
				{
					ID:        uuid.New(),
					GuildID:   "guild-1",
					ChannelID: "chan-2",
					State:     lobbydb.StateOpen,
					OpenedBy:  "opener",
					ExpiresAt: testBase.Add(2 * time.Hour),
				},
			}, nil
		}
		svc := newTestService(repo, NewFakeScheduler(), flatRatings(1500))

		count, err := svc.RestoreOpenLobbies(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		status, err := svc.Status(context.Background(), "chan-1")
		require.NoError(t, err)
		assert.Empty(t, status.Pool.Active)

		outcome, err := svc.HandleReaction(context.Background(), "board-1", "user-1", "TOP", true)
		require.NoError(t, err)
		assert.NotNil(t, outcome)

		_, err = svc.Status(context.Background(), "chan-2")
		assert.NoError(t, err)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		repo := NewFakeLobbyRepo()
		repo.ListOpenFunc = func(ctx context.Context, db bun.IDB) ([]lobbydb.Lobby, error) {
			return nil, errors.New("connection refused")
		}
		svc := newTestService(repo, NewFakeScheduler(), flatRatings(1500))

		_, err := svc.RestoreOpenLobbies(context.Background())
		assert.Error(t, err)
	})
}

func TestParseCloseTime(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantOK   bool
		wantHour int
	}{
		{name: "empty text", text: "", wantOK: false},
		{name: "no time phrase", text: "casuals only please", wantOK: false},
		{name: "evening close", text: "until 9pm", wantOK: true, wantHour: 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCloseTime(tt.text, testBase)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantHour, got.Hour())
				assert.True(t, got.After(testBase))
			}
		})
	}

	t.Run("relative duration", func(t *testing.T) {
		got, ok := parseCloseTime("in 2 hours", testBase)
		require.True(t, ok)
		assert.True(t, got.Equal(testBase.Add(2*time.Hour)))
	})

	t.Run("past phrase is rejected", func(t *testing.T) {
		_, ok := parseCloseTime("yesterday at 9pm", testBase)
		assert.False(t, ok)
	})
}
