package usecase

import (
	"context"
	"time"

	"fleetwatch/internal/domain/entity"

	"github.com/google/uuid"
)

// IngestPositionInput is one GPS point reported for a running route.
type IngestPositionInput struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Heading    *float64  `json:"heading,omitempty"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TrackingSnapshot is the current best-known state of one tracked route.
type TrackingSnapshot struct {
	RouteID   uuid.UUID               `json:"route_id"`
	VehicleID uuid.UUID               `json:"vehicle_id"`
	Location  *entity.VehicleLocation `json:"location,omitempty"`
	Status    entity.RouteStatus      `json:"status"`
	FeedError string                  `json:"feed_error,omitempty"` // non-fatal feed failure, empty when healthy
	UpdatedAt time.Time               `json:"updated_at"`
}

// TrackingUsecase maintains live position state per route, combining the
// realtime push channel with a polling fallback over the position log.
type TrackingUsecase interface {
	// IngestPosition appends a point to the log, refreshes the live row
	// and publishes the update on the push channel.
	IngestPosition(ctx context.Context, routeID uuid.UUID, input *IngestPositionInput) error

	// Snapshot returns the tracker state for a route, starting the feed on
	// first use. The initial load may fail; thereafter feed errors are
	// reported out-of-band on the snapshot.
	Snapshot(ctx context.Context, routeID uuid.UUID) (*TrackingSnapshot, error)

	// History returns the route's logged points in recorded order, up to
	// limit points (0 means all).
	History(ctx context.Context, routeID uuid.UUID, limit int) ([]*entity.RoutePosition, error)

	// StopTracking releases the subscription and poll timer for a route.
	// Completed routes keep their feed until the caller stops them.
	StopTracking(routeID uuid.UUID)

	// StopAll releases every running feed. Used on shutdown.
	StopAll()
}
