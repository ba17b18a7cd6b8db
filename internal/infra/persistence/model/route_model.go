package model

import (
	"time"

	"github.com/google/uuid"
)

// RouteModel is the GORM-specific struct for the 'routes' table.
type RouteModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name        string     `gorm:"type:varchar(255);not null"`
	Origin      string     `gorm:"type:varchar(255);not null"`
	Destination string     `gorm:"type:varchar(255);not null"`
	DistanceKm  float64    `gorm:"not null;default:0"`
	CargoDesc   string     `gorm:"type:text"`
	Status      string     `gorm:"type:varchar(20);not null;index:idx_routes_on_status"`
	VehicleID   *uuid.UUID `gorm:"type:uuid;index:idx_routes_on_vehicle"`
	DriverID    *uuid.UUID `gorm:"type:uuid;index:idx_routes_on_driver"`
	ClientQuote float64    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (RouteModel) TableName() string {
	return "routes"
}
