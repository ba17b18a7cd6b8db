// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// VehicleStatus describes the operational state of a vehicle.
type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusIdle        VehicleStatus = "idle"
)

// Vehicle is the core entity for a fleet vehicle.
type Vehicle struct {
	ID          uuid.UUID     // The unique identifier for the vehicle.
	PlateNumber string        // The registration plate, unique per fleet.
	Model       string        // Manufacturer model, e.g. "Volvo FH16".
	Status      VehicleStatus // Operational state used by the fleet map filters.
	MileageKm   float64       // Total odometer reading in kilometers.
	Location    *VehicleLocation
	NextService *time.Time // Scheduled date of the next maintenance service.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasLocation reports whether the vehicle has a usable last-known position.
func (v *Vehicle) HasLocation() bool {
	return v.Location != nil
}
