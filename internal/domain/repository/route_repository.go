package repository

import (
	"context"

	"fleetwatch/internal/domain/entity"
	"fleetwatch/internal/errors"

	"github.com/google/uuid"
)

// ErrRouteNotFound is returned when a route is not found.
var ErrRouteNotFound = errors.New("route not found")

// RouteRepository defines the interface for route-related database operations.
type RouteRepository interface {
	// CreateRoute persists a new route.
	CreateRoute(ctx context.Context, route *entity.Route) error

	// FindRouteByID retrieves a route by its unique ID.
	FindRouteByID(ctx context.Context, id uuid.UUID) (*entity.Route, error)

	// ListRoutes retrieves all routes, most recently created first.
	ListRoutes(ctx context.Context) ([]*entity.Route, error)

	// ListRoutesByStatus retrieves routes filtered to a single status.
	ListRoutesByStatus(ctx context.Context, status entity.RouteStatus) ([]*entity.Route, error)

	// UpdateRoute updates an existing route record.
	UpdateRoute(ctx context.Context, route *entity.Route) error
}
