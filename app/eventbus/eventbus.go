// Package eventbus provides the NATS JetStream event bus backing all
// inter-module and gateway communication. It satisfies Watermill's
// Publisher and Subscriber so the message router can drive it directly.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	eventbusmetrics "github.com/Five-Stack-Club/rift-bot/app/shared/observability/otel/metrics/eventbus"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EventBus is the messaging surface modules depend on. Publish with an
// empty topic routes by the message's "subject" metadata, which is how
// handler results reach their declared topics.
type EventBus interface {
	message.Publisher
	message.Subscriber
	CreateStream(ctx context.Context, streamName string) error
	HealthCheck(ctx context.Context) error
}

type eventBus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	js             jetstream.JetStream
	natsConn       *nc.Conn
	logger         *slog.Logger
	appType        string
	metrics        eventbusmetrics.EventBusMetrics
	tracer         trace.Tracer
	createdStreams map[string]bool
	streamMutex    sync.Mutex
}

// NewEventBus connects to NATS JetStream and builds the Watermill
// publisher/subscriber pair. appType names the consumer side ("backend",
// "gateway") and prefixes queue groups so instances of the same app
// load-balance a subscription.
func NewEventBus(
	ctx context.Context,
	natsURL string,
	logger *slog.Logger,
	appType string,
	metrics eventbusmetrics.EventBusMetrics,
	tracer trace.Tracer,
) (EventBus, error) {
	natsConn, err := nc.Connect(natsURL, nc.RetryOnFailedConnect(true))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.ErrorContext(ctx, "Failed to initialize JetStream", slog.Any("error", err))
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaller := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:       natsURL,
			Marshaler: marshaller,
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
			},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.ErrorContext(ctx, "Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              natsURL,
			Unmarshaler:      marshaller,
			QueueGroupPrefix: appType,
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
			},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		logger.ErrorContext(ctx, "Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &eventBus{
		publisher:      publisher,
		subscriber:     subscriber,
		js:             js,
		natsConn:       natsConn,
		logger:         logger,
		appType:        appType,
		metrics:        metrics,
		tracer:         tracer,
		createdStreams: make(map[string]bool),
	}, nil
}

// Publish sends messages to topic, or to each message's "subject"
// metadata when topic is empty. The router publishes handler results
// with an empty topic for exactly this fallback.
func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}

		subject := topic
		if subject == "" {
			subject = msg.Metadata.Get("subject")
		}
		if subject == "" {
			return fmt.Errorf("message %s has no destination: empty topic and no subject metadata", msg.UUID)
		}

		ctx := msg.Context()
		eb.metrics.RecordPublishAttempt(ctx, subject)
		start := time.Now()

		_, span := eb.tracer.Start(ctx, "eventbus.publish",
			trace.WithAttributes(attribute.String("messaging.destination", subject)),
		)
		err := eb.publisher.Publish(subject, msg)
		span.End()

		eb.metrics.RecordPublishDuration(ctx, subject, time.Since(start))
		if err != nil {
			eb.metrics.RecordPublishFailure(ctx, subject)
			eb.logger.ErrorContext(ctx, "Failed to publish message",
				slog.String("subject", subject),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish to %s: %w", subject, err)
		}

		eb.metrics.RecordPublishSuccess(ctx, subject)
		eb.logger.DebugContext(ctx, "Message published",
			slog.String("subject", subject),
			slog.String("message_id", msg.UUID),
		)
	}
	return nil
}

// Subscribe returns the message channel for a subject. Wildcards are
// allowed ("lobby.>").
func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.InfoContext(ctx, "Subscribing to subject",
		slog.String("subject", topic),
		slog.String("app_type", eb.appType),
	)

	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", topic, err)
	}
	return messages, nil
}

// CreateStream ensures a JetStream stream exists covering every subject
// under the stream's name ("lobby" owns "lobby.>"). Safe to call more
// than once.
func (eb *eventBus) CreateStream(ctx context.Context, streamName string) error {
	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	if eb.createdStreams[streamName] {
		return nil
	}

	_, err := eb.js.Stream(ctx, streamName)
	if err != nil && err != jetstream.ErrStreamNotFound {
		return fmt.Errorf("failed to check if stream %s exists: %w", streamName, err)
	}

	if err == jetstream.ErrStreamNotFound {
		_, err = eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:      streamName,
			Subjects:  []string{streamName + ".>"},
			Retention: jetstream.LimitsPolicy,
			Storage:   jetstream.FileStorage,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}
		eb.metrics.RecordStreamCreated(ctx, streamName)
		eb.logger.InfoContext(ctx, "Stream created", slog.String("stream_name", streamName))
	}

	eb.createdStreams[streamName] = true
	return nil
}

// HealthCheck reports whether the NATS connection is usable.
func (eb *eventBus) HealthCheck(ctx context.Context) error {
	if !eb.natsConn.IsConnected() {
		return fmt.Errorf("NATS connection is not established")
	}
	if _, err := eb.js.AccountInfo(ctx); err != nil {
		return fmt.Errorf("JetStream account info failed: %w", err)
	}
	return nil
}

// Close shuts down the publisher, subscriber, and NATS connection.
func (eb *eventBus) Close() error {
	var firstErr error
	if err := eb.publisher.Close(); err != nil {
		firstErr = err
	}
	if err := eb.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	eb.natsConn.Close()
	return firstErr
}
