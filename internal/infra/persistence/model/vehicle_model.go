package model

import (
	"time"

	"github.com/google/uuid"
)

// VehicleModel is the GORM-specific struct for the 'vehicles' table.
// The last-known location is denormalized into nullable columns so the fleet
// map can load every position in a single scan.
type VehicleModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	PlateNumber    string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_vehicles_on_plate_number"`
	Model          string    `gorm:"type:varchar(100);not null"`
	Status         string    `gorm:"type:varchar(20);not null;index:idx_vehicles_on_status"`
	MileageKm      float64   `gorm:"not null;default:0"`
	LastLatitude   *float64  `gorm:"type:decimal(10,8)"`
	LastLongitude  *float64  `gorm:"type:decimal(11,8)"`
	LastHeading    *float64  `gorm:"type:decimal(5,2)"`
	LastSpeedKmh   *float64  `gorm:"type:decimal(6,2)"`
	LastRecordedAt *time.Time
	NextService    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (VehicleModel) TableName() string {
	return "vehicles"
}
