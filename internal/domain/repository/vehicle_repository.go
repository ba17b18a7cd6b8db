// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"fleetwatch/internal/domain/entity"
	"fleetwatch/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for vehicle persistence.
var (
	// ErrVehicleNotFound is returned when a vehicle is not found.
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrPlateNumberConflict is returned when a plate number is already registered.
	ErrPlateNumberConflict = errors.New("plate number already registered")
)

// VehicleRepository defines the interface for vehicle-related database operations.
type VehicleRepository interface {
	// CreateVehicle persists a new vehicle.
	CreateVehicle(ctx context.Context, vehicle *entity.Vehicle) error

	// FindVehicleByID retrieves a vehicle by its unique ID.
	FindVehicleByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error)

	// ListVehicles retrieves all vehicles in the fleet, including their
	// last-known locations when present.
	ListVehicles(ctx context.Context) ([]*entity.Vehicle, error)

	// UpdateVehicle updates an existing vehicle record.
	UpdateVehicle(ctx context.Context, vehicle *entity.Vehicle) error

	// UpdateVehicleLocation updates only the last-known location of a vehicle.
	UpdateVehicleLocation(ctx context.Context, id uuid.UUID, location *entity.VehicleLocation) error
}
