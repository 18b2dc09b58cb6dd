package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Helpers creates outbound Watermill messages with the metadata the event
// bus needs for routing.
type Helpers interface {
	CreateResultMessage(originalMsg *message.Message, payload interface{}, topic string) (*message.Message, error)
	CreateNewMessage(payload interface{}, topic string) (*message.Message, error)
	UnmarshalPayload(msg *message.Message, payload interface{}) error
}

// Helper is the default Helpers implementation.
type Helper struct {
	Logger *slog.Logger
}

// NewHelper creates a new Helper.
func NewHelper(logger *slog.Logger) *Helper {
	return &Helper{Logger: logger}
}

// CreateResultMessage builds a message that responds to originalMsg,
// carrying its correlation ID forward. The topic is stored in the
// "subject" metadata so the event bus can route it.
func (h *Helper) CreateResultMessage(originalMsg *message.Message, payload interface{}, topic string) (*message.Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for topic %s: %w", topic, err)
	}

	newMsg := message.NewMessage(watermill.NewUUID(), payloadBytes)
	newMsg.Metadata.Set("subject", topic)

	correlationID := ""
	if originalMsg != nil {
		correlationID = middleware.MessageCorrelationID(originalMsg)
	}
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, newMsg)

	return newMsg, nil
}

// CreateNewMessage builds a message that starts a new flow, with a fresh
// correlation ID.
func (h *Helper) CreateNewMessage(payload interface{}, topic string) (*message.Message, error) {
	return h.CreateResultMessage(nil, payload, topic)
}

// UnmarshalPayload decodes a message body into payload.
func (h *Helper) UnmarshalPayload(msg *message.Message, payload interface{}) error {
	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return fmt.Errorf("failed to unmarshal message %s: %w", msg.UUID, err)
	}
	return nil
}
