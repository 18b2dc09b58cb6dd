package statshandlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"

	statsservice "github.com/Five-Stack-Club/rift-bot/app/modules/stats/application"
	statsevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/stats"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

func newTestHandlers(service *FakeStatsService) Handlers {
	return NewStatsHandlers(
		service,
		slog.Default(),
		noop.NewTracerProvider().Tracer("test"),
	)
}

func TestHandleProfileRequested(t *testing.T) {
	profile := &statsservice.ProfileView{
		GameName:      "Hero",
		TagLine:       "NA1",
		SummonerLevel: 120,
		Rating:        1850,
		Entries: []statsservice.RankedStanding{
			{Queue: "RANKED_SOLO_5x5", Tier: "PLATINUM", Division: "II", LeaguePoints: 50},
		},
		Masteries: []statsservice.MasteryStanding{
			{Champion: "Ahri", Level: 7, Points: 120000},
		},
	}

	tests := []struct {
		name         string
		setupService func(*FakeStatsService)
		payload      *statsevents.ProfileRequestedPayloadV1
		wantResults  int
		wantErr      bool
		wantErrText  string
	}{
		{
			name: "happy path - profile found",
			setupService: func(f *FakeStatsService) {
				f.ProfileFunc = func(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*statsservice.ProfileView, error) {
					return profile, nil
				}
			},
			payload: &statsevents.ProfileRequestedPayloadV1{
				ChannelID: "chan-1",
				UserID:    "user-1",
				GameName:  "Hero",
				TagLine:   "NA1",
			},
			wantResults: 1,
		},
		{
			name: "no linked account",
			setupService: func(f *FakeStatsService) {
				f.ProfileFunc = func(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*statsservice.ProfileView, error) {
					return nil, statsservice.ErrNoLink
				}
			},
			payload: &statsevents.ProfileRequestedPayloadV1{
				ChannelID: "chan-1",
				UserID:    "user-1",
			},
			wantResults: 1,
			wantErrText: statsservice.ErrNoLink.Error(),
		},
		{
			name: "unknown riot id",
			setupService: func(f *FakeStatsService) {
				f.ProfileFunc = func(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*statsservice.ProfileView, error) {
					return nil, statsservice.ErrAccountNotFound
				}
			},
			payload: &statsevents.ProfileRequestedPayloadV1{
				ChannelID: "chan-1",
				UserID:    "user-1",
				GameName:  "Nobody",
				TagLine:   "NA1",
			},
			wantResults: 1,
			wantErrText: statsservice.ErrAccountNotFound.Error(),
		},
		{
			name: "service error",
			setupService: func(f *FakeStatsService) {
				f.ProfileFunc = func(ctx context.Context, userID sharedtypes.DiscordID, gameName, tagLine string) (*statsservice.ProfileView, error) {
					return nil, errors.New("riot api down")
				}
			},
			payload: &statsevents.ProfileRequestedPayloadV1{
				ChannelID: "chan-1",
				UserID:    "user-1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeService := NewFakeStatsService()
			tt.setupService(fakeService)

			handler := newTestHandlers(fakeService)

			results, err := handler.HandleProfileRequested(context.Background(), tt.payload)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, results, tt.wantResults)
			if tt.wantResults == 0 {
				return
			}

			assert.Equal(t, statsevents.ProfileResultV1, results[0].Topic)
			resultPayload, ok := results[0].Payload.(*statsevents.ProfileResultPayloadV1)
			assert.True(t, ok, "payload should be ProfileResultPayloadV1")
			assert.Equal(t, tt.payload.ChannelID, resultPayload.ChannelID)
			assert.Equal(t, tt.payload.UserID, resultPayload.UserID)
			assert.Equal(t, tt.wantErrText, resultPayload.Error)

			if tt.wantErrText == "" {
				assert.Equal(t, "Hero", resultPayload.GameName)
				assert.Equal(t, 1850, resultPayload.Rating)
				assert.Len(t, resultPayload.Entries, 1)
				assert.Equal(t, "PLATINUM", resultPayload.Entries[0].Tier)
				assert.Len(t, resultPayload.Masteries, 1)
				assert.Equal(t, "Ahri", resultPayload.Masteries[0].Champion)
			}
		})
	}
}

func TestHandleMatchesRequested(t *testing.T) {
	history := &statsservice.MatchHistory{
		GameName: "Hero",
		Matches: []statsservice.MatchSummary{
			{MatchID: "NA1_2", Champion: "Ahri", Win: true, Kills: 8, Deaths: 1, Assists: 9},
			{MatchID: "NA1_1", Champion: "Jinx", Win: false},
		},
	}

	tests := []struct {
		name         string
		setupService func(*FakeStatsService)
		wantResults  int
		wantErr      bool
		wantErrText  string
		wantMatches  int
	}{
		{
			name: "happy path",
			setupService: func(f *FakeStatsService) {
				f.RecentMatchesFunc = func(ctx context.Context, userID sharedtypes.DiscordID, count int) (*statsservice.MatchHistory, error) {
					return history, nil
				}
			},
			wantResults: 1,
			wantMatches: 2,
		},
		{
			name: "no linked account",
			setupService: func(f *FakeStatsService) {
				f.RecentMatchesFunc = func(ctx context.Context, userID sharedtypes.DiscordID, count int) (*statsservice.MatchHistory, error) {
					return nil, statsservice.ErrNoLink
				}
			},
			wantResults: 1,
			wantErrText: statsservice.ErrNoLink.Error(),
		},
		{
			name: "service error",
			setupService: func(f *FakeStatsService) {
				f.RecentMatchesFunc = func(ctx context.Context, userID sharedtypes.DiscordID, count int) (*statsservice.MatchHistory, error) {
					return nil, errors.New("riot api down")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeService := NewFakeStatsService()
			tt.setupService(fakeService)

			handler := newTestHandlers(fakeService)

			results, err := handler.HandleMatchesRequested(context.Background(), &statsevents.MatchesRequestedPayloadV1{
				ChannelID: "chan-1",
				UserID:    "user-1",
				Count:     5,
			})

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, results, tt.wantResults)

			assert.Equal(t, statsevents.MatchesResultV1, results[0].Topic)
			resultPayload, ok := results[0].Payload.(*statsevents.MatchesResultPayloadV1)
			assert.True(t, ok, "payload should be MatchesResultPayloadV1")
			assert.Equal(t, tt.wantErrText, resultPayload.Error)
			assert.Len(t, resultPayload.Matches, tt.wantMatches)
		})
	}
}

func TestHandleChartRequested(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}

	t.Run("happy path", func(t *testing.T) {
		fakeService := NewFakeStatsService()
		fakeService.PerformanceChartFunc = func(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error) {
			return png, "performance.png", nil
		}

		handler := newTestHandlers(fakeService)

		results, err := handler.HandleChartRequested(context.Background(), &statsevents.ChartRequestedPayloadV1{
			ChannelID: "chan-1",
			UserID:    "user-1",
			Count:     10,
		})

		assert.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, statsevents.ChartReadyV1, results[0].Topic)

		resultPayload, ok := results[0].Payload.(*statsevents.ChartReadyPayloadV1)
		assert.True(t, ok, "payload should be ChartReadyPayloadV1")
		assert.Equal(t, "performance.png", resultPayload.Filename)
		assert.Equal(t, png, resultPayload.PNG)
		assert.Empty(t, resultPayload.Error)
	})

	t.Run("no linked account", func(t *testing.T) {
		fakeService := NewFakeStatsService()
		fakeService.PerformanceChartFunc = func(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error) {
			return nil, "", statsservice.ErrNoLink
		}

		handler := newTestHandlers(fakeService)

		results, err := handler.HandleChartRequested(context.Background(), &statsevents.ChartRequestedPayloadV1{
			ChannelID: "chan-1",
			UserID:    "user-1",
		})

		assert.NoError(t, err)
		assert.Len(t, results, 1)

		resultPayload, ok := results[0].Payload.(*statsevents.ChartReadyPayloadV1)
		assert.True(t, ok)
		assert.Equal(t, statsservice.ErrNoLink.Error(), resultPayload.Error)
		assert.Empty(t, resultPayload.PNG)
	})
}

func TestHandleExportRequested(t *testing.T) {
	fakeService := NewFakeStatsService()
	fakeService.ExportMatchesFunc = func(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error) {
		return []byte("xlsx-bytes"), "match_history.xlsx", nil
	}

	handler := newTestHandlers(fakeService)

	results, err := handler.HandleExportRequested(context.Background(), &statsevents.ExportRequestedPayloadV1{
		ChannelID: "chan-1",
		UserID:    "user-1",
		Count:     10,
	})

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, statsevents.ExportReadyV1, results[0].Topic)

	resultPayload, ok := results[0].Payload.(*statsevents.ExportReadyPayloadV1)
	assert.True(t, ok, "payload should be ExportReadyPayloadV1")
	assert.Equal(t, "match_history.xlsx", resultPayload.Filename)
	assert.Equal(t, []byte("xlsx-bytes"), resultPayload.File)
}

func TestHandleMatchSyncRequested(t *testing.T) {
	t.Run("sync publishes nothing", func(t *testing.T) {
		fakeService := NewFakeStatsService()
		var gotPUUID sharedtypes.PUUID
		fakeService.SyncMatchesFunc = func(ctx context.Context, puuid sharedtypes.PUUID, count int) (int, error) {
			gotPUUID = puuid
			return 3, nil
		}

		handler := newTestHandlers(fakeService)

		results, err := handler.HandleMatchSyncRequested(context.Background(), &statsevents.MatchSyncRequestedPayloadV1{
			PUUID:  "puuid-1",
			Region: "na1",
			Count:  10,
		})

		assert.NoError(t, err)
		assert.Empty(t, results)
		assert.Equal(t, sharedtypes.PUUID("puuid-1"), gotPUUID)
		assert.Equal(t, []string{"SyncMatches"}, fakeService.Trace())
	})

	t.Run("sync failure redelivers", func(t *testing.T) {
		fakeService := NewFakeStatsService()
		fakeService.SyncMatchesFunc = func(ctx context.Context, puuid sharedtypes.PUUID, count int) (int, error) {
			return 0, errors.New("riot api down")
		}

		handler := newTestHandlers(fakeService)

		_, err := handler.HandleMatchSyncRequested(context.Background(), &statsevents.MatchSyncRequestedPayloadV1{
			PUUID: "puuid-1",
			Count: 10,
		})

		assert.Error(t, err)
	})
}
