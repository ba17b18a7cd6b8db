package service

import (
	"github.com/google/uuid"
)

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GenerateTrackingQR generates a QR code encoding a live-tracking share link
	GenerateTrackingQR(routeID uuid.UUID) ([]byte, error)

	// ParseTrackingQR parses QR code data and returns the route ID
	ParseTrackingQR(qrData string) (uuid.UUID, error)
}
