package lobbyhandlers

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	lobbyservice "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/application"
	lobbydomain "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/domain"
	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	lobbyevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/lobby"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// LobbyHandlers implements the Handlers interface.
type LobbyHandlers struct {
	service lobbyservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewLobbyHandlers creates a new LobbyHandlers instance.
func NewLobbyHandlers(
	service lobbyservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &LobbyHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleLobbyOpenCommand handles the open-lobby slash command.
func (h *LobbyHandlers) HandleLobbyOpenCommand(ctx context.Context, payload *discordevents.LobbyOpenCommandPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "LobbyHandlers.HandleLobbyOpenCommand")
	defer span.End()

	h.logger.InfoContext(ctx, "Lobby open command received",
		slog.String("guild_id", string(payload.GuildID)),
		slog.String("channel_id", string(payload.ChannelID)),
		slog.String("requested_by", string(payload.RequestedBy)),
	)

	info, err := h.service.OpenLobby(ctx, payload.GuildID, payload.ChannelID, payload.RequestedBy, payload.Text)
	if err != nil {
		if errors.Is(err, lobbyservice.ErrChannelBusy) {
			return []handlerwrapper.Result{{
				Topic: lobbyevents.LobbyOpenFailedV1,
				Payload: &lobbyevents.LobbyOpenFailedPayloadV1{
					GuildID:   payload.GuildID,
					ChannelID: payload.ChannelID,
					Reason:    "a lobby is already open in this channel",
				},
			}}, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic: lobbyevents.LobbyOpenedV1,
		Payload: &lobbyevents.LobbyOpenedPayloadV1{
			LobbyID:   info.ID,
			GuildID:   info.GuildID,
			ChannelID: info.ChannelID,
			OpenedBy:  info.OpenedBy,
			ExpiresAt: info.ExpiresAt,
		},
	}}, nil
}

// HandleLobbyCloseCommand handles the close-lobby slash command.
func (h *LobbyHandlers) HandleLobbyCloseCommand(ctx context.Context, payload *discordevents.LobbyCloseCommandPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "LobbyHandlers.HandleLobbyCloseCommand")
	defer span.End()

	h.logger.InfoContext(ctx, "Lobby close command received",
		slog.String("channel_id", string(payload.ChannelID)),
		slog.String("requested_by", string(payload.RequestedBy)),
	)

	info, err := h.service.CloseLobby(ctx, payload.ChannelID)
	if err != nil {
		if errors.Is(err, lobbyservice.ErrNoOpenLobby) {
			h.logger.InfoContext(ctx, "Close command for channel without an open lobby",
				slog.String("channel_id", string(payload.ChannelID)),
			)
			return nil, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic: lobbyevents.LobbyClosedV1,
		Payload: &lobbyevents.LobbyClosedPayloadV1{
			LobbyID:   info.ID,
			ChannelID: info.ChannelID,
			MessageID: info.MessageID,
			Reason:    "closed",
		},
	}}, nil
}

// HandleBoardLinked ties the gateway's board message back to its lobby and
// emits the initial empty-queue status so the board renders.
func (h *LobbyHandlers) HandleBoardLinked(ctx context.Context, payload *lobbyevents.LobbyBoardLinkedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "LobbyHandlers.HandleBoardLinked")
	defer span.End()

	h.logger.InfoContext(ctx, "Lobby board linked",
		slog.String("lobby_id", payload.LobbyID.String()),
		slog.String("message_id", string(payload.MessageID)),
	)

	if err := h.service.LinkBoard(ctx, payload.LobbyID, payload.MessageID); err != nil {
		if errors.Is(err, lobbyservice.ErrLobbyNotFound) {
			h.logger.WarnContext(ctx, "Board linked to unknown lobby",
				slog.String("lobby_id", payload.LobbyID.String()),
			)
			return nil, nil
		}
		return nil, err
	}

	status, err := h.service.Status(ctx, payload.ChannelID)
	if err != nil {
		// The link succeeded; the first reaction will render the board.
		return nil, nil
	}

	return []handlerwrapper.Result{{
		Topic:   lobbyevents.LobbyStatusUpdatedV1,
		Payload: statusPayload(status.Lobby, status.Pool),
	}}, nil
}

// HandleReactionAdded handles a reaction added to any guild message.
func (h *LobbyHandlers) HandleReactionAdded(ctx context.Context, payload *discordevents.ReactionPayloadV1) ([]handlerwrapper.Result, error) {
	return h.handleReaction(ctx, "LobbyHandlers.HandleReactionAdded", payload, true)
}

// HandleReactionRemoved handles a reaction removed from any guild message.
func (h *LobbyHandlers) HandleReactionRemoved(ctx context.Context, payload *discordevents.ReactionPayloadV1) ([]handlerwrapper.Result, error) {
	return h.handleReaction(ctx, "LobbyHandlers.HandleReactionRemoved", payload, false)
}

func (h *LobbyHandlers) handleReaction(ctx context.Context, spanName string, payload *discordevents.ReactionPayloadV1, added bool) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, spanName)
	defer span.End()

	outcome, err := h.service.HandleReaction(ctx, payload.MessageID, payload.UserID, payload.Emoji, added)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		// Not a role emoji, or not a lobby board.
		return nil, nil
	}

	results := []handlerwrapper.Result{{
		Topic:   lobbyevents.LobbyStatusUpdatedV1,
		Payload: statusPayload(outcome.Lobby, outcome.Pool),
	}}

	if outcome.Assignment != nil {
		results = append(results, handlerwrapper.Result{
			Topic:   lobbyevents.LobbyTeamsFormedV1,
			Payload: teamsPayload(outcome.Lobby, outcome.Assignment),
		})
	}

	return results, nil
}

// HandleExpireDue handles the scheduler's TTL event for a lobby.
func (h *LobbyHandlers) HandleExpireDue(ctx context.Context, payload *lobbyevents.LobbyExpireDuePayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "LobbyHandlers.HandleExpireDue")
	defer span.End()

	h.logger.InfoContext(ctx, "Lobby expiry due",
		slog.String("lobby_id", payload.LobbyID.String()),
	)

	info, err := h.service.ExpireLobby(ctx, payload.LobbyID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		// Already closed normally.
		return nil, nil
	}

	return []handlerwrapper.Result{{
		Topic: lobbyevents.LobbyClosedV1,
		Payload: &lobbyevents.LobbyClosedPayloadV1{
			LobbyID:   info.ID,
			ChannelID: info.ChannelID,
			MessageID: info.MessageID,
			Reason:    "expired",
		},
	}}, nil
}

func candidateStatuses(candidates []lobbydomain.Candidate) []lobbyevents.CandidateStatusV1 {
	out := make([]lobbyevents.CandidateStatusV1, len(candidates))
	for i, c := range candidates {
		out[i] = lobbyevents.CandidateStatusV1{
			UserID: c.ID,
			Roles:  c.Roles.Strings(),
			Rating: c.Rating,
		}
	}
	return out
}

func statusPayload(lobby lobbyservice.LobbyInfo, pool lobbydomain.PoolStatus) *lobbyevents.LobbyStatusUpdatedPayloadV1 {
	return &lobbyevents.LobbyStatusUpdatedPayloadV1{
		LobbyID:   lobby.ID,
		ChannelID: lobby.ChannelID,
		MessageID: lobby.MessageID,
		State:     string(pool.State),
		Active:    candidateStatuses(pool.Active),
		Waitlist:  candidateStatuses(pool.Waitlist),
	}
}

func lineupSlots(lineup lobbydomain.TeamLineup) []lobbyevents.TeamSlotV1 {
	out := make([]lobbyevents.TeamSlotV1, 0, lobbydomain.NumRoles)
	for _, role := range lobbydomain.AllRoles {
		out = append(out, lobbyevents.TeamSlotV1{
			Role:   role.String(),
			UserID: lineup[role].ID,
			Rating: lineup[role].Rating,
		})
	}
	return out
}

func teamsPayload(lobby lobbyservice.LobbyInfo, assignment *lobbydomain.TeamAssignment) *lobbyevents.LobbyTeamsFormedPayloadV1 {
	return &lobbyevents.LobbyTeamsFormedPayloadV1{
		LobbyID:              lobby.ID,
		ChannelID:            lobby.ChannelID,
		MessageID:            lobby.MessageID,
		TeamA:                lineupSlots(assignment.TeamA),
		TeamB:                lineupSlots(assignment.TeamB),
		RatingGap:            assignment.RatingGap,
		PreferenceViolations: assignment.PreferenceViolations,
	}
}
