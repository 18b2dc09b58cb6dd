package chathandlers

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	chatservice "github.com/Five-Stack-Club/rift-bot/app/modules/chat/application"
	chatevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/chat"
	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// ChatHandlers implements the Handlers interface.
type ChatHandlers struct {
	service chatservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(
	service chatservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &ChatHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleMessageCreated archives every gateway message and, when the bot is
// mentioned by a human, publishes a model-generated reply.
func (h *ChatHandlers) HandleMessageCreated(ctx context.Context, payload *discordevents.MessageCreatedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ChatHandlers.HandleMessageCreated")
	defer span.End()

	msg := &chatservice.IncomingMessage{
		GuildID:    payload.GuildID,
		ChannelID:  payload.ChannelID,
		MessageID:  payload.MessageID,
		AuthorID:   payload.AuthorID,
		AuthorName: payload.AuthorName,
		Content:    payload.Content,
		FromBot:    payload.FromBot,
		Timestamp:  payload.Timestamp,
	}

	if err := h.service.ArchiveMessage(ctx, msg); err != nil {
		return nil, err
	}

	if payload.FromBot || !payload.BotMentioned {
		return nil, nil
	}

	h.logger.InfoContext(ctx, "Generating chat reply",
		slog.String("channel_id", string(payload.ChannelID)),
		slog.String("author_id", string(payload.AuthorID)),
	)

	reply, err := h.service.Respond(ctx, msg)
	if err != nil {
		return nil, err
	}
	if reply == "" {
		h.logger.InfoContext(ctx, "Empty completion, skipping reply",
			slog.String("channel_id", string(payload.ChannelID)),
		)
		return nil, nil
	}

	return []handlerwrapper.Result{{
		Topic: chatevents.ResponseV1,
		Payload: &chatevents.ResponsePayloadV1{
			ChannelID:        payload.ChannelID,
			ReplyToMessageID: payload.MessageID,
			Content:          reply,
		},
	}}, nil
}
