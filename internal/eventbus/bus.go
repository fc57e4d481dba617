// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/metrics"
)

// ErrUnrecoverable marks a handler error that retrying cannot fix. The
// message is acknowledged after logging.
var ErrUnrecoverable = errors.New("unrecoverable message")

// Config configures the bus router.
type Config struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64

	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		OutputBuffer:         256,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
	}
}

// InteractionHandler consumes an InteractionRecorded message.
type InteractionHandler func(ctx context.Context, evt *InteractionRecorded) error

// Bus is an in-process publisher and consumer router.
type Bus struct {
	pubsub  *gochannel.GoChannel
	router  *message.Router
	logger  zerolog.Logger
	running atomic.Bool
}

// New creates a bus. Handlers must be added before Run.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (*Bus, error) {
	logger = logger.With().Str("component", "eventbus").Logger()
	wmLogger := NewLoggerAdapter(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputBuffer,
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      2.0,
		Logger:          wmLogger,
	}
	router.AddMiddleware(retry.Middleware)

	return &Bus{pubsub: pubsub, router: router, logger: logger}, nil
}

// PublishInteraction publishes evt on TopicInteractionRecorded.
func (b *Bus) PublishInteraction(ctx context.Context, evt *InteractionRecorded) error {
	if err := evt.Validate(); err != nil {
		return err
	}
	if evt.RequestID == "" {
		evt.RequestID = logging.RequestIDFromContext(ctx)
	}
	payload, err := marshalInteraction(evt)
	if err != nil {
		return err
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("user_id", evt.UserID)
	if evt.RequestID != "" {
		msg.Metadata.Set("request_id", evt.RequestID)
	}

	if err := b.pubsub.Publish(TopicInteractionRecorded, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicInteractionRecorded, err)
	}
	metrics.BusMessages.WithLabelValues(TopicInteractionRecorded, "published").Inc()
	return nil
}

// AddInteractionHandler subscribes handler to TopicInteractionRecorded.
func (b *Bus) AddInteractionHandler(name string, handler InteractionHandler) {
	b.router.AddConsumerHandler(name, TopicInteractionRecorded, b.pubsub, func(msg *message.Message) error {
		evt, err := unmarshalInteraction(msg.Payload)
		if err != nil {
			b.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed message")
			metrics.BusMessages.WithLabelValues(TopicInteractionRecorded, "failed").Inc()
			return nil
		}

		err = handler(msg.Context(), evt)
		switch {
		case err == nil:
			metrics.BusMessages.WithLabelValues(TopicInteractionRecorded, "handled").Inc()
			return nil
		case errors.Is(err, ErrUnrecoverable):
			b.logger.Warn().Err(err).
				Str("handler", name).
				Str("user_id", evt.UserID).
				Msg("Handler gave up on message")
			metrics.BusMessages.WithLabelValues(TopicInteractionRecorded, "failed").Inc()
			return nil
		default:
			return err
		}
	})
}

// Run runs the router until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) error {
	b.running.Store(true)
	defer b.running.Store(false)
	return b.router.Run(ctx)
}

// Running is closed once all handlers are subscribed.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// IsRunning reports whether Run is active.
func (b *Bus) IsRunning() bool {
	return b.running.Load()
}

// Close stops the router and the underlying pub/sub.
func (b *Bus) Close() error {
	var errs []error
	if err := b.router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close router: %w", err))
	}
	if err := b.pubsub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pubsub: %w", err))
	}
	return errors.Join(errs...)
}

var _ watermill.LoggerAdapter = (*zerologAdapter)(nil)
