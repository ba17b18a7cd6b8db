package repository

import (
	"context"

	"fleetwatch/internal/domain/entity"
	"fleetwatch/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for tracking persistence.
var (
	// ErrLiveRouteNotFound is returned when no live row exists for a route.
	ErrLiveRouteNotFound = errors.New("live route not found")
	// ErrNoPositions is returned when the position log holds no point for a route.
	ErrNoPositions = errors.New("no positions logged for route")
)

// LiveRouteRepository defines the interface for the live_routes table,
// which holds one current-position row per running route.
type LiveRouteRepository interface {
	// UpsertLiveRoute inserts or replaces the live row for a route.
	UpsertLiveRoute(ctx context.Context, live *entity.LiveRoute) error

	// FindLiveRouteByRoute retrieves the live row for a route.
	// Returns ErrLiveRouteNotFound when tracking has not started.
	FindLiveRouteByRoute(ctx context.Context, routeID uuid.UUID) (*entity.LiveRoute, error)

	// UpdateLiveRouteStatus updates only the status of the live row.
	UpdateLiveRouteStatus(ctx context.Context, routeID uuid.UUID, status entity.RouteStatus) error
}

// PositionLogRepository defines the interface for the raw GPS point log.
type PositionLogRepository interface {
	// AppendPosition appends one raw point to the log.
	AppendPosition(ctx context.Context, position *entity.RoutePosition) error

	// FindLatestPosition retrieves the most recent point for a route by
	// recorded timestamp. Returns ErrNoPositions when the log is empty.
	FindLatestPosition(ctx context.Context, routeID uuid.UUID) (*entity.RoutePosition, error)

	// ListPositions retrieves the full ordered trace for a route, oldest first.
	ListPositions(ctx context.Context, routeID uuid.UUID, limit int) ([]*entity.RoutePosition, error)
}
