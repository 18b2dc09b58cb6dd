package statshandlers

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	statsservice "github.com/Five-Stack-Club/rift-bot/app/modules/stats/application"
	statsevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/stats"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// StatsHandlers implements the Handlers interface.
type StatsHandlers struct {
	service statsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewStatsHandlers creates a new StatsHandlers instance.
func NewStatsHandlers(
	service statsservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &StatsHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// userFacing reports whether err should be surfaced to the requesting user
// instead of failing the message. Anything else is an infrastructure error
// and the broker redelivers.
func userFacing(err error) (string, bool) {
	for _, sentinel := range []error{
		statsservice.ErrNoLink,
		statsservice.ErrAccountNotFound,
		statsservice.ErrNoRankedEntries,
		statsservice.ErrNoActiveGame,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

// HandleProfileRequested answers a profile request.
func (h *StatsHandlers) HandleProfileRequested(ctx context.Context, payload *statsevents.ProfileRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleProfileRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Profile requested",
		slog.String("user_id", string(payload.UserID)),
		slog.String("game_name", payload.GameName),
	)

	profile, err := h.service.Profile(ctx, payload.UserID, payload.GameName, payload.TagLine)
	if err != nil {
		if msg, ok := userFacing(err); ok {
			return []handlerwrapper.Result{{
				Topic: statsevents.ProfileResultV1,
				Payload: &statsevents.ProfileResultPayloadV1{
					ChannelID: payload.ChannelID,
					UserID:    payload.UserID,
					Error:     msg,
				},
			}}, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic: statsevents.ProfileResultV1,
		Payload: &statsevents.ProfileResultPayloadV1{
			ChannelID:     payload.ChannelID,
			UserID:        payload.UserID,
			GameName:      profile.GameName,
			TagLine:       profile.TagLine,
			SummonerLevel: profile.SummonerLevel,
			Rating:        profile.Rating,
			Entries:       rankedEntries(profile.Entries),
			Masteries:     masteries(profile.Masteries),
		},
	}}, nil
}

// HandleMatchesRequested answers a recent-matches request.
func (h *StatsHandlers) HandleMatchesRequested(ctx context.Context, payload *statsevents.MatchesRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleMatchesRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Recent matches requested",
		slog.String("user_id", string(payload.UserID)),
		slog.Int("count", payload.Count),
	)

	history, err := h.service.RecentMatches(ctx, payload.UserID, payload.Count)
	if err != nil {
		if msg, ok := userFacing(err); ok {
			return []handlerwrapper.Result{{
				Topic: statsevents.MatchesResultV1,
				Payload: &statsevents.MatchesResultPayloadV1{
					ChannelID: payload.ChannelID,
					UserID:    payload.UserID,
					Error:     msg,
				},
			}}, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic: statsevents.MatchesResultV1,
		Payload: &statsevents.MatchesResultPayloadV1{
			ChannelID: payload.ChannelID,
			UserID:    payload.UserID,
			GameName:  history.GameName,
			Matches:   matchSummaries(history.Matches),
		},
	}}, nil
}

// HandleChartRequested renders a performance chart.
func (h *StatsHandlers) HandleChartRequested(ctx context.Context, payload *statsevents.ChartRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleChartRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Performance chart requested",
		slog.String("user_id", string(payload.UserID)),
		slog.Int("count", payload.Count),
	)

	png, filename, err := h.service.PerformanceChart(ctx, payload.UserID, payload.Count)
	if err != nil {
		if msg, ok := userFacing(err); ok {
			return []handlerwrapper.Result{{
				Topic: statsevents.ChartReadyV1,
				Payload: &statsevents.ChartReadyPayloadV1{
					ChannelID: payload.ChannelID,
					UserID:    payload.UserID,
					Error:     msg,
				},
			}}, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic: statsevents.ChartReadyV1,
		Payload: &statsevents.ChartReadyPayloadV1{
			ChannelID: payload.ChannelID,
			UserID:    payload.UserID,
			Filename:  filename,
			PNG:       png,
		},
	}}, nil
}

// HandleExportRequested renders a match history spreadsheet.
func (h *StatsHandlers) HandleExportRequested(ctx context.Context, payload *statsevents.ExportRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleExportRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Match export requested",
		slog.String("user_id", string(payload.UserID)),
		slog.Int("count", payload.Count),
	)

	file, filename, err := h.service.ExportMatches(ctx, payload.UserID, payload.Count)
	if err != nil {
		if msg, ok := userFacing(err); ok {
			return []handlerwrapper.Result{{
				Topic: statsevents.ExportReadyV1,
				Payload: &statsevents.ExportReadyPayloadV1{
					ChannelID: payload.ChannelID,
					UserID:    payload.UserID,
					Error:     msg,
				},
			}}, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic: statsevents.ExportReadyV1,
		Payload: &statsevents.ExportReadyPayloadV1{
			ChannelID: payload.ChannelID,
			UserID:    payload.UserID,
			Filename:  filename,
			File:      file,
		},
	}}, nil
}

// HandleMatchSyncRequested pulls a player's matches into the local store.
// Nothing is published back; the sync is a background warm-up.
func (h *StatsHandlers) HandleMatchSyncRequested(ctx context.Context, payload *statsevents.MatchSyncRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleMatchSyncRequested")
	defer span.End()

	stored, err := h.service.SyncMatches(ctx, payload.PUUID, payload.Count)
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "Match sync completed",
		slog.String("puuid", string(payload.PUUID)),
		slog.Int("stored", stored),
	)
	return nil, nil
}

func rankedEntries(entries []statsservice.RankedStanding) []statsevents.RankedEntryV1 {
	out := make([]statsevents.RankedEntryV1, len(entries))
	for i, e := range entries {
		out[i] = statsevents.RankedEntryV1{
			QueueType:    e.Queue,
			Tier:         e.Tier,
			Division:     e.Division,
			LeaguePoints: e.LeaguePoints,
			Wins:         e.Wins,
			Losses:       e.Losses,
		}
	}
	return out
}

func masteries(standings []statsservice.MasteryStanding) []statsevents.MasteryV1 {
	out := make([]statsevents.MasteryV1, len(standings))
	for i, m := range standings {
		out[i] = statsevents.MasteryV1{
			Champion: m.Champion,
			Level:    m.Level,
			Points:   m.Points,
		}
	}
	return out
}

func matchSummaries(matches []statsservice.MatchSummary) []statsevents.MatchSummaryV1 {
	out := make([]statsevents.MatchSummaryV1, len(matches))
	for i, m := range matches {
		out[i] = statsevents.MatchSummaryV1{
			MatchID:      m.MatchID,
			Champion:     m.Champion,
			Win:          m.Win,
			Kills:        m.Kills,
			Deaths:       m.Deaths,
			Assists:      m.Assists,
			CS:           m.CS,
			DurationSec:  m.DurationSec,
			QueueID:      m.QueueID,
			GameCreation: m.GameCreation,
		}
	}
	return out
}
