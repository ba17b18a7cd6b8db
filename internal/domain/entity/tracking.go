package entity

import (
	"time"

	"github.com/google/uuid"
)

// VehicleLocation is a normalized GPS fix for a vehicle.
// Latitude is bounded to [-90, 90], longitude to [-180, 180] and heading,
// when present, to [0, 360).
type VehicleLocation struct {
	Latitude   float64
	Longitude  float64
	Heading    *float64 // Compass heading in degrees, nil when the device did not report one.
	SpeedKmh   *float64 // Ground speed, nil when the device did not report one.
	RecordedAt time.Time
}

// Valid reports whether the coordinates fall inside the WGS84 bounds.
func (l *VehicleLocation) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// LiveRoute is the current best-known position and status of a running route.
// One row per route, upserted on each position update.
type LiveRoute struct {
	RouteID   uuid.UUID
	VehicleID uuid.UUID
	Location  VehicleLocation
	Status    RouteStatus
	UpdatedAt time.Time
}

// RoutePosition is one raw point in the GPS position log.
type RoutePosition struct {
	ID       uuid.UUID
	RouteID  uuid.UUID
	Location VehicleLocation
}
