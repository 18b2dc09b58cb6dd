package accounthandlers

import (
	"context"

	accountevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/accounts"
	discordevents "github.com/Five-Stack-Club/rift-bot/app/shared/events/discord"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/handlerwrapper"
)

// Handlers defines the interface for account event handlers.
type Handlers interface {
	// HandleLinkRequested verifies and stores a new summoner link.
	HandleLinkRequested(ctx context.Context, payload *accountevents.LinkRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleUnlinkRequested removes a summoner link.
	HandleUnlinkRequested(ctx context.Context, payload *accountevents.UnlinkRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleListRequested answers with the user's linked accounts.
	HandleListRequested(ctx context.Context, payload *accountevents.ListRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleMessageCreated keeps the identity registry current.
	HandleMessageCreated(ctx context.Context, payload *discordevents.MessageCreatedPayloadV1) ([]handlerwrapper.Result, error)
}
