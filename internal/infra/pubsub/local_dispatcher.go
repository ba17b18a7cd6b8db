package pubsub

import (
	"context"
	"log/slog"
	"sync"

	"fleetwatch/internal/domain/service"
)

// LocalDispatcher is the consuming side of the local provider. Position
// events arrive over the push receiver endpoint and are fanned out to the
// trackers subscribed per route, mirroring what the google subscriber does
// with a streaming pull.
type LocalDispatcher struct {
	logger *slog.Logger

	mu       sync.RWMutex
	closed   bool
	handlers map[string]*localRouteHandlers
}

type localRouteHandlers struct {
	onEvent func(*service.PositionEvent)
	onError func(error)
}

// NewLocalDispatcher creates a dispatcher with no subscribers.
func NewLocalDispatcher(logger *slog.Logger) *LocalDispatcher {
	return &LocalDispatcher{
		logger:   logger,
		handlers: make(map[string]*localRouteHandlers),
	}
}

// Subscribe registers handlers for one route. The returned cancel removes
// the registration; events for routes without a registration are dropped.
func (d *LocalDispatcher) Subscribe(_ context.Context, routeID string, onEvent func(*service.PositionEvent), onError func(error)) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[routeID] = &localRouteHandlers{
		onEvent: onEvent,
		onError: onError,
	}

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers, routeID)
	}, nil
}

// Dispatch routes a pushed event to the handler subscribed to its route.
func (d *LocalDispatcher) Dispatch(event *service.PositionEvent) {
	d.mu.RLock()
	handler, ok := d.handlers[event.RouteID]
	closed := d.closed
	d.mu.RUnlock()

	if closed {
		return
	}

	if !ok {
		d.logger.Debug("[LocalPubSub] No subscriber for route, dropping event",
			slog.String("route_id", event.RouteID),
		)

		return
	}

	handler.onEvent(event)
}

// Close drops all registrations and stops dispatching.
func (d *LocalDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.handlers = make(map[string]*localRouteHandlers)

	return nil
}
