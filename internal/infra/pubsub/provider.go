// Package pubsub wires the realtime position channel used by the live
// tracking feed.
package pubsub

import (
	"context"
	"log/slog"

	"fleetwatch/config"
	"fleetwatch/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Supported pubsub providers.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// noopPublisher is a no-op implementation when Pub/Sub is disabled
type noopPublisher struct {
	logger *slog.Logger
}

func (p *noopPublisher) PublishPosition(_ context.Context, event *service.PositionEvent) error {
	p.logger.Debug("[NoopPubSub] Position publishing disabled, skipping",
		slog.String("route_id", event.RouteID),
	)

	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}

// noopSubscriber is a no-op implementation when Pub/Sub is disabled.
// Trackers then rely on the polling fallback alone.
type noopSubscriber struct{}

func (s *noopSubscriber) Subscribe(_ context.Context, _ string, _ func(*service.PositionEvent), _ func(error)) (func(), error) {
	return func() {}, nil
}

func (s *noopSubscriber) Close() error {
	return nil
}

// PublisherParams holds dependencies for PositionPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewPositionPublisher creates a PositionPublisher based on configuration
func NewPositionPublisher(params PublisherParams) (service.PositionPublisher, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	// If PubSub is not configured, return a no-op publisher
	if cfg == nil || cfg.Provider == "" {
		logger.Info("PubSub not configured, using no-op position publisher")

		return &noopPublisher{logger: logger}, nil
	}

	var publisher service.PositionPublisher
	var err error

	switch cfg.Provider {
	case ProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Using local HTTP publisher for Pub/Sub",
			slog.String("endpoint", cfg.LocalEndpoint),
		)

		publisher = NewLocalHTTPPublisher(cfg.LocalEndpoint, logger)

	case ProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("Using Google Pub/Sub position publisher",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)

		publisher, err = NewGooglePositionPublisher(params.Ctx, cfg.ProjectID, cfg.TopicID, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}

	// Register lifecycle hook to close publisher on shutdown
	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing PositionPublisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

// SubscriberParams holds dependencies for PositionSubscriber, injected by Fx
type SubscriberParams struct {
	fx.In

	Lc         fx.Lifecycle
	Ctx        context.Context
	Config     *config.Config
	Logger     *slog.Logger
	Dispatcher *LocalDispatcher
}

// NewPositionSubscriber creates a PositionSubscriber based on configuration.
// The local provider consumes through the push receiver's dispatcher and the
// google provider through a streaming pull; disabled setups get a no-op
// subscriber and trackers fall back to polling.
func NewPositionSubscriber(params SubscriberParams) (service.PositionSubscriber, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		logger.Info("PubSub consuming not configured, trackers will poll only")

		return &noopSubscriber{}, nil
	}

	if cfg.Provider == ProviderLocal {
		logger.Info("Using local push dispatcher for Pub/Sub consuming")

		params.Lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return params.Dispatcher.Close()
			},
		})

		return params.Dispatcher, nil
	}

	if cfg.SubscriptionID == "" {
		logger.Info("PubSub subscription not configured, trackers will poll only")

		return &noopSubscriber{}, nil
	}

	subscriber, err := NewGooglePositionSubscriber(params.Ctx, cfg.ProjectID, cfg.SubscriptionID, logger)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing PositionSubscriber")

			return subscriber.Close()
		},
	})

	return subscriber, nil
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewLocalDispatcher),
	fx.Provide(NewPositionPublisher),
	fx.Provide(NewPositionSubscriber),
)
