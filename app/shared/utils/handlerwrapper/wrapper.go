// Package handlerwrapper adapts typed event handlers into Watermill
// handler funcs. Handlers work with decoded payloads and declare their
// outbound events as Results; the wrapper owns unmarshaling, tracing,
// correlation, and message construction.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Five-Stack-Club/rift-bot/app/shared/observability/attr"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

// CtxKeyReplyTo carries the dynamic reply subject of the consumed message,
// when the producer requested one.
const CtxKeyReplyTo ctxKey = "reply_to"

// Result is one outbound event produced by a typed handler.
type Result struct {
	Topic   string
	Payload interface{}
}

// ReturningMetrics records wrapper-level handler outcomes. A nil value
// disables recording.
type ReturningMetrics interface {
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}

// WrapTransformingTyped wraps a typed handler into a message.HandlerFunc.
// The consumed payload is decoded into T; returned Results become outbound
// messages via the helper, inheriting the consumed message's correlation ID.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	helper utils.Helpers,
	metrics ReturningMetrics,
	handler func(ctx context.Context, payload *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		start := time.Now()

		ctx := msg.Context()
		if correlationID := middleware.MessageCorrelationID(msg); correlationID != "" {
			ctx = attr.WithCorrelationID(ctx, correlationID)
		}
		if replyTo := msg.Metadata.Get("reply_to"); replyTo != "" {
			ctx = context.WithValue(ctx, CtxKeyReplyTo, replyTo)
		}

		ctx, span := tracer.Start(ctx, handlerName,
			trace.WithAttributes(attribute.String("message.uuid", msg.UUID)),
		)
		defer span.End()

		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, handlerName)
			defer func() {
				metrics.RecordHandlerDuration(ctx, handlerName, time.Since(start))
			}()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			// Redelivery cannot fix a malformed payload; drop it.
			logger.ErrorContext(ctx, "Failed to unmarshal message payload",
				slog.String("handler", handlerName),
				slog.String("message_id", msg.UUID),
				attr.Error(err),
			)
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler returned error",
				slog.String("handler", handlerName),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, err
		}

		var outgoing []*message.Message
		for _, result := range results {
			outMsg, createErr := helper.CreateResultMessage(msg, result.Payload, result.Topic)
			if createErr != nil {
				logger.ErrorContext(ctx, "Failed to create result message",
					slog.String("handler", handlerName),
					slog.String("topic", result.Topic),
					attr.Error(createErr),
				)
				if metrics != nil {
					metrics.RecordHandlerFailure(ctx, handlerName)
				}
				return nil, createErr
			}
			outMsg.SetContext(ctx)
			outgoing = append(outgoing, outMsg)
		}

		if metrics != nil {
			metrics.RecordHandlerSuccess(ctx, handlerName)
		}
		return outgoing, nil
	}
}
