package accounthandlers

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	accountsservice "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/application"
	accountevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/accounts"
	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	statsevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/stats"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// initialSyncCount is how many matches a fresh link warms the cache with.
const initialSyncCount = 10

// AccountHandlers implements the Handlers interface.
type AccountHandlers struct {
	service accountsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewAccountHandlers creates a new AccountHandlers instance.
func NewAccountHandlers(
	service accountsservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &AccountHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleLinkRequested verifies and stores a new summoner link. A successful
// link also asks the stats module to warm its match cache for the account.
func (h *AccountHandlers) HandleLinkRequested(ctx context.Context, payload *accountevents.LinkRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "AccountHandlers.HandleLinkRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Account link requested",
		slog.String("user_id", string(payload.UserID)),
		slog.String("game_name", payload.GameName),
		slog.String("tag_line", payload.TagLine),
	)

	account, err := h.service.LinkAccount(ctx, payload.UserID, payload.AuthorName, payload.GameName, payload.TagLine, payload.Region)
	if err != nil {
		if errors.Is(err, accountsservice.ErrAccountNotFound) || errors.Is(err, accountsservice.ErrAlreadyLinked) {
			return []handlerwrapper.Result{{
				Topic: accountevents.LinkResultV1,
				Payload: &accountevents.LinkResultPayloadV1{
					ChannelID: payload.ChannelID,
					UserID:    payload.UserID,
					GameName:  payload.GameName,
					TagLine:   payload.TagLine,
					Success:   false,
					Error:     err.Error(),
				},
			}}, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{
		{
			Topic: accountevents.LinkResultV1,
			Payload: &accountevents.LinkResultPayloadV1{
				ChannelID: payload.ChannelID,
				UserID:    payload.UserID,
				GameName:  account.GameName,
				TagLine:   account.TagLine,
				PUUID:     account.PUUID,
				Success:   true,
			},
		},
		{
			Topic: statsevents.MatchSyncRequestedV1,
			Payload: &statsevents.MatchSyncRequestedPayloadV1{
				PUUID:  account.PUUID,
				Region: account.Region,
				Count:  initialSyncCount,
			},
		},
	}, nil
}

// HandleUnlinkRequested removes a summoner link.
func (h *AccountHandlers) HandleUnlinkRequested(ctx context.Context, payload *accountevents.UnlinkRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "AccountHandlers.HandleUnlinkRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Account unlink requested",
		slog.String("user_id", string(payload.UserID)),
		slog.String("game_name", payload.GameName),
	)

	err := h.service.UnlinkAccount(ctx, payload.UserID, payload.GameName, payload.TagLine)
	if err != nil {
		if errors.Is(err, accountsservice.ErrNotLinked) {
			return []handlerwrapper.Result{{
				Topic: accountevents.UnlinkResultV1,
				Payload: &accountevents.UnlinkResultPayloadV1{
					ChannelID: payload.ChannelID,
					UserID:    payload.UserID,
					Removed:   false,
					Error:     err.Error(),
				},
			}}, nil
		}
		return nil, err
	}

	return []handlerwrapper.Result{{
		Topic: accountevents.UnlinkResultV1,
		Payload: &accountevents.UnlinkResultPayloadV1{
			ChannelID: payload.ChannelID,
			UserID:    payload.UserID,
			Removed:   true,
		},
	}}, nil
}

// HandleListRequested answers with the user's linked accounts.
func (h *AccountHandlers) HandleListRequested(ctx context.Context, payload *accountevents.ListRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "AccountHandlers.HandleListRequested")
	defer span.End()

	links, err := h.service.ListLinks(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}

	accounts := make([]accountevents.LinkedAccountV1, len(links))
	for i, link := range links {
		accounts[i] = accountevents.LinkedAccountV1{
			GameName: link.GameName,
			TagLine:  link.TagLine,
			Region:   link.Region,
			PUUID:    link.PUUID,
			Primary:  link.Primary,
		}
	}

	return []handlerwrapper.Result{{
		Topic: accountevents.ListResultV1,
		Payload: &accountevents.ListResultPayloadV1{
			ChannelID: payload.ChannelID,
			UserID:    payload.UserID,
			Accounts:  accounts,
		},
	}}, nil
}

// HandleMessageCreated keeps the identity registry current. Bot traffic is
// ignored.
func (h *AccountHandlers) HandleMessageCreated(ctx context.Context, payload *discordevents.MessageCreatedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "AccountHandlers.HandleMessageCreated")
	defer span.End()

	if payload.FromBot {
		return nil, nil
	}

	if err := h.service.ObserveUser(ctx, payload.AuthorID, payload.AuthorName); err != nil {
		return nil, err
	}
	return nil, nil
}
