package model

import (
	"time"

	"github.com/google/uuid"
)

// DriverModel is the GORM-specific struct for the 'drivers' table.
type DriverModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name          string     `gorm:"type:varchar(255);not null"`
	LicenseNumber string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_drivers_on_license_number"`
	LicenseExpiry *time.Time
	Phone         string     `gorm:"type:varchar(50)"`
	Status        string     `gorm:"type:varchar(20);not null;index:idx_drivers_on_status"`
	VehicleID     *uuid.UUID `gorm:"type:uuid;index:idx_drivers_on_vehicle"`
	DeviceTokens  []string   `gorm:"type:jsonb;serializer:json"` // FCM tokens for the driver's devices.
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (DriverModel) TableName() string {
	return "drivers"
}
