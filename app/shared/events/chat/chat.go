// Package chatevents defines the chat module's NATS subjects and payloads.
package chatevents

import (
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// StreamName is the JetStream stream carrying chat events.
const StreamName = "chat"

const (
	ResponseV1 = "chat.response"
)

// ResponsePayloadV1 is a model-generated reply for the gateway to send.
type ResponsePayloadV1 struct {
	ChannelID        sharedtypes.ChannelID `json:"channel_id"`
	ReplyToMessageID sharedtypes.MessageID `json:"reply_to_message_id"`
	Content          string                `json:"content"`
}
