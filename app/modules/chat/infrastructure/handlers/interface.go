package chathandlers

import (
	"context"

	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// Handlers defines the interface for chat module event handlers.
type Handlers interface {
	HandleMessageCreated(ctx context.Context, payload *discordevents.MessageCreatedPayloadV1) ([]handlerwrapper.Result, error)
}
