package usecase

import (
	"context"
	"time"

	"fleetwatch/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateVehicleInput represents the input for registering a vehicle.
type CreateVehicleInput struct {
	PlateNumber string  `json:"plate_number"`
	Model       string  `json:"model"`
	MileageKm   float64 `json:"mileage_km"`
}

// UpdateVehicleInput represents a partial vehicle update.
type UpdateVehicleInput struct {
	Model       *string               `json:"model,omitempty"`
	Status      *entity.VehicleStatus `json:"status,omitempty"`
	MileageKm   *float64              `json:"mileage_km,omitempty"`
	NextService *time.Time            `json:"next_service,omitempty"`
}

// CreateDriverInput represents the input for registering a driver.
type CreateDriverInput struct {
	Name          string     `json:"name"`
	LicenseNumber string     `json:"license_number"`
	LicenseExpiry *time.Time `json:"license_expiry,omitempty"`
	Phone         string     `json:"phone"`
}

// UpdateDriverInput represents a partial driver update.
type UpdateDriverInput struct {
	Name          *string              `json:"name,omitempty"`
	Phone         *string              `json:"phone,omitempty"`
	Status        *entity.DriverStatus `json:"status,omitempty"`
	LicenseExpiry *time.Time           `json:"license_expiry,omitempty"`
	VehicleID     *uuid.UUID           `json:"vehicle_id,omitempty"`
	DeviceTokens  []string             `json:"device_tokens,omitempty"`
}

// CreateRouteInput represents the input for planning a route.
type CreateRouteInput struct {
	Name        string     `json:"name"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	DistanceKm  float64    `json:"distance_km"`
	CargoDesc   string     `json:"cargo_description"`
	VehicleID   *uuid.UUID `json:"vehicle_id,omitempty"`
	DriverID    *uuid.UUID `json:"driver_id,omitempty"`
	ClientQuote float64    `json:"client_quote"`
}

// UpdateRouteInput represents a partial route update.
type UpdateRouteInput struct {
	Status      *entity.RouteStatus `json:"status,omitempty"`
	VehicleID   *uuid.UUID          `json:"vehicle_id,omitempty"`
	DriverID    *uuid.UUID          `json:"driver_id,omitempty"`
	ClientQuote *float64            `json:"client_quote,omitempty"`
}

// FleetUsecase defines the CRUD surface behind the dashboard's vehicle,
// driver and route tables.
type FleetUsecase interface {
	ListVehicles(ctx context.Context) ([]*entity.Vehicle, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error)
	CreateVehicle(ctx context.Context, input *CreateVehicleInput) (*entity.Vehicle, error)
	UpdateVehicle(ctx context.Context, id uuid.UUID, input *UpdateVehicleInput) (*entity.Vehicle, error)

	ListDrivers(ctx context.Context) ([]*entity.Driver, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*entity.Driver, error)
	CreateDriver(ctx context.Context, input *CreateDriverInput) (*entity.Driver, error)
	UpdateDriver(ctx context.Context, id uuid.UUID, input *UpdateDriverInput) (*entity.Driver, error)

	ListRoutes(ctx context.Context) ([]*entity.Route, error)
	ListRoutesByStatus(ctx context.Context, status entity.RouteStatus) ([]*entity.Route, error)
	GetRoute(ctx context.Context, id uuid.UUID) (*entity.Route, error)
	CreateRoute(ctx context.Context, input *CreateRouteInput) (*entity.Route, error)
	UpdateRoute(ctx context.Context, id uuid.UUID, input *UpdateRouteInput) (*entity.Route, error)
}
