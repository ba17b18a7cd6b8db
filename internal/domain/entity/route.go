package entity

import (
	"time"

	"github.com/google/uuid"
)

// RouteStatus describes the progress of a route.
type RouteStatus string

const (
	RouteStatusPlanned    RouteStatus = "planned"
	RouteStatusInProgress RouteStatus = "in_progress"
	RouteStatusCompleted  RouteStatus = "completed"
	RouteStatusCancelled  RouteStatus = "cancelled"
)

// Route is the core entity for a planned or running delivery route.
type Route struct {
	ID          uuid.UUID
	Name        string
	Origin      string // Human-readable origin, e.g. "Almaty".
	Destination string // Human-readable destination, e.g. "Astana".
	DistanceKm  float64
	CargoDesc   string // Free-text cargo description, used for AI quoting.
	Status      RouteStatus
	VehicleID   *uuid.UUID
	DriverID    *uuid.UUID
	ClientQuote float64 // Agreed client price for the route, 0 when not quoted.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsTerminal reports whether the route no longer produces meaningful updates.
func (r *Route) IsTerminal() bool {
	return r.Status == RouteStatusCompleted || r.Status == RouteStatusCancelled
}
