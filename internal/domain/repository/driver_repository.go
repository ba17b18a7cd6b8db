package repository

import (
	"context"

	"fleetwatch/internal/domain/entity"
	"fleetwatch/internal/errors"

	"github.com/google/uuid"
)

// ErrDriverNotFound is returned when a driver is not found.
var ErrDriverNotFound = errors.New("driver not found")

// DriverRepository defines the interface for driver-related database operations.
type DriverRepository interface {
	// CreateDriver persists a new driver.
	CreateDriver(ctx context.Context, driver *entity.Driver) error

	// FindDriverByID retrieves a driver by its unique ID.
	FindDriverByID(ctx context.Context, id uuid.UUID) (*entity.Driver, error)

	// ListDrivers retrieves all drivers in the fleet.
	ListDrivers(ctx context.Context) ([]*entity.Driver, error)

	// UpdateDriver updates an existing driver record.
	UpdateDriver(ctx context.Context, driver *entity.Driver) error

	// FindDriverByVehicle retrieves the driver currently assigned to a vehicle.
	// Returns ErrDriverNotFound when the vehicle has no assigned driver.
	FindDriverByVehicle(ctx context.Context, vehicleID uuid.UUID) (*entity.Driver, error)
}
