package qrcode

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel, "")
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateTrackingQR(t *testing.T) {
	service := NewQRCodeService(256, "M", "https://fleet.example.com")
	routeID := uuid.New()

	qrBytes, err := service.GenerateTrackingQR(routeID)
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)

	// Verify it's a valid PNG (starts with PNG magic number)
	assert.Equal(t, byte(0x89), qrBytes[0])
	assert.Equal(t, byte(0x50), qrBytes[1])
	assert.Equal(t, byte(0x4E), qrBytes[2])
	assert.Equal(t, byte(0x47), qrBytes[3])
}

func TestQRCodeService_GenerateTrackingQR_DifferentSizes(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Small QR", 128},
		{"Medium QR", 256},
		{"Large QR", 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, "M", "")
			routeID := uuid.New()

			qrBytes, err := service.GenerateTrackingQR(routeID)
			require.NoError(t, err)
			assert.NotEmpty(t, qrBytes)
		})
	}
}

func TestQRCodeService_ParseTrackingQR(t *testing.T) {
	service := NewQRCodeService(256, "M", "")
	routeID := uuid.New()

	// Create valid QR data
	data := QRCodeData{
		RouteID: routeID.String(),
		Type:    "tracking",
	}
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	parsed, err := service.ParseTrackingQR(string(jsonData))
	require.NoError(t, err)
	assert.Equal(t, routeID, parsed)
}

func TestQRCodeService_ParseTrackingQR_InvalidType(t *testing.T) {
	service := NewQRCodeService(256, "M", "")

	data := QRCodeData{
		RouteID: uuid.New().String(),
		Type:    "subscription",
	}
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	_, err = service.ParseTrackingQR(string(jsonData))
	assert.ErrorContains(t, err, "invalid QR code type")
}

func TestQRCodeService_ParseTrackingQR_MalformedInput(t *testing.T) {
	service := NewQRCodeService(256, "M", "")

	_, err := service.ParseTrackingQR("not json at all")
	assert.Error(t, err)

	_, err = service.ParseTrackingQR(`{"route_id":"not-a-uuid","type":"tracking"}`)
	assert.Error(t, err)
}
