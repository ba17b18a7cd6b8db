package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"fleetwatch/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	"github.com/pkg/errors"
)

// routeHandlers is the set of callbacks registered for one route.
type routeHandlers struct {
	onEvent func(*service.PositionEvent)
	onError func(error)
}

// googlePositionSubscriber implements PositionSubscriber over a single
// Google Pub/Sub streaming pull. One Receive loop serves every tracked
// route; messages are dispatched by their route_id attribute.
type googlePositionSubscriber struct {
	client     *pubsub.Client
	subscriber *pubsub.Subscriber
	logger     *slog.Logger

	mu            sync.Mutex
	handlers      map[string]*routeHandlers
	started       bool
	cancelReceive context.CancelFunc
}

// NewGooglePositionSubscriber creates a new Google Pub/Sub position subscriber
func NewGooglePositionSubscriber(ctx context.Context, projectID, subscriptionID string, logger *slog.Logger) (service.PositionSubscriber, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.Info("Google Pub/Sub position subscriber initialized",
		slog.String("project_id", projectID),
		slog.String("subscription_id", subscriptionID),
	)

	return &googlePositionSubscriber{
		client:     client,
		subscriber: client.Subscriber(subscriptionID),
		logger:     logger,
		handlers:   make(map[string]*routeHandlers),
	}, nil
}

// Subscribe registers handlers for one route. The streaming pull starts
// lazily with the first registration.
func (s *googlePositionSubscriber) Subscribe(ctx context.Context, routeID string, onEvent func(*service.PositionEvent), onError func(error)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.handlers[routeID]; exists {
		return nil, errors.Errorf("route %s already subscribed", routeID)
	}
	s.handlers[routeID] = &routeHandlers{onEvent: onEvent, onError: onError}

	if !s.started {
		receiveCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.cancelReceive = cancel
		s.started = true

		go s.receive(receiveCtx)
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, routeID)
	}, nil
}

// receive runs the streaming pull and dispatches messages to the route
// handlers. A terminal Receive error is fanned out once to every
// registered error handler.
func (s *googlePositionSubscriber) receive(ctx context.Context) {
	err := s.subscriber.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
		event := new(service.PositionEvent)
		if err := json.Unmarshal(msg.Data, event); err != nil {
			s.logger.Warn("[GooglePubSub] Dropping malformed position message",
				slog.Any("error", err),
			)
			msg.Ack()

			return
		}

		s.mu.Lock()
		handler, ok := s.handlers[event.RouteID]
		s.mu.Unlock()

		if ok {
			handler.onEvent(event)
		}
		msg.Ack()
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("[GooglePubSub] Receive stopped",
			slog.Any("error", err),
		)

		s.mu.Lock()
		registered := make([]*routeHandlers, 0, len(s.handlers))
		for _, handler := range s.handlers {
			registered = append(registered, handler)
		}
		s.started = false
		s.mu.Unlock()

		for _, handler := range registered {
			handler.onError(err)
		}
	}
}

// Close stops the streaming pull and releases the client.
func (s *googlePositionSubscriber) Close() error {
	s.mu.Lock()
	if s.cancelReceive != nil {
		s.cancelReceive()
	}
	s.mu.Unlock()

	return errors.WithStack(s.client.Close())
}
