package service

import (
	"context"
	"time"

	"fleetwatch/internal/domain/entity"
)

// PositionEvent represents one position update flowing through the push channel
type PositionEvent struct {
	RequestID string   `json:"request_id,omitempty"` // For distributed tracing
	RouteID   string   `json:"route_id"`
	VehicleID string   `json:"vehicle_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Heading   *float64 `json:"heading,omitempty"`
	SpeedKmh  *float64 `json:"speed_kmh,omitempty"`
	Status    string   `json:"status"`
	Recorded  int64    `json:"recorded_at"` // Unix milliseconds
}

// Location converts the wire event into a normalized domain location.
func (e *PositionEvent) Location() entity.VehicleLocation {
	return entity.VehicleLocation{
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		Heading:    e.Heading,
		SpeedKmh:   e.SpeedKmh,
		RecordedAt: time.UnixMilli(e.Recorded),
	}
}

// PositionPublisher defines the interface for publishing position updates
// to the realtime push channel.
type PositionPublisher interface {
	// PublishPosition publishes one position event for fan-out to trackers
	PublishPosition(ctx context.Context, event *PositionEvent) error

	// Close releases any resources held by the publisher
	Close() error
}

// PositionSubscriber defines the interface for receiving position updates.
// Subscribe delivers events on the handler until the returned cancel func is
// called or the context ends; channel failures go to the error handler once.
type PositionSubscriber interface {
	Subscribe(ctx context.Context, routeID string, onEvent func(*PositionEvent), onError func(error)) (cancel func(), err error)

	// Close releases any resources held by the subscriber
	Close() error
}
