package model

import (
	"time"

	"github.com/google/uuid"
)

// LiveRouteModel is the GORM-specific struct for the 'live_routes' table.
// One row per route, replaced on every position update.
type LiveRouteModel struct {
	RouteID    uuid.UUID `gorm:"type:uuid;primary_key"`
	VehicleID  uuid.UUID `gorm:"type:uuid;index:idx_live_routes_on_vehicle"`
	Latitude   float64   `gorm:"type:decimal(10,8);not null"`
	Longitude  float64   `gorm:"type:decimal(11,8);not null"`
	Heading    *float64  `gorm:"type:decimal(5,2)"`
	SpeedKmh   *float64  `gorm:"type:decimal(6,2)"`
	Status     string    `gorm:"type:varchar(20);not null"`
	RecordedAt time.Time `gorm:"not null"`
	UpdatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (LiveRouteModel) TableName() string {
	return "live_routes"
}

// RoutePositionModel is the GORM-specific struct for the 'route_positions'
// table, the append-only GPS point log.
type RoutePositionModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	RouteID    uuid.UUID `gorm:"type:uuid;not null;index:idx_route_positions_on_route_recorded,priority:1"`
	Latitude   float64   `gorm:"type:decimal(10,8);not null"`
	Longitude  float64   `gorm:"type:decimal(11,8);not null"`
	Heading    *float64  `gorm:"type:decimal(5,2)"`
	SpeedKmh   *float64  `gorm:"type:decimal(6,2)"`
	RecordedAt time.Time `gorm:"not null;index:idx_route_positions_on_route_recorded,priority:2"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (RoutePositionModel) TableName() string {
	return "route_positions"
}
