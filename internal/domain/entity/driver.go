package entity

import (
	"time"

	"github.com/google/uuid"
)

// DriverStatus describes the availability of a driver.
type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusOnRoute   DriverStatus = "on_route"
	DriverStatusOffDuty   DriverStatus = "off_duty"
)

// Driver is the core entity for a fleet driver.
type Driver struct {
	ID            uuid.UUID
	Name          string
	LicenseNumber string     // Driving license number, unique per fleet.
	LicenseExpiry *time.Time // Compliance: license expiry date, nil when unknown.
	Phone         string
	Status        DriverStatus
	VehicleID     *uuid.UUID // Currently assigned vehicle, nil when unassigned.
	DeviceTokens  []string   // Push notification tokens for the driver's devices.
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
