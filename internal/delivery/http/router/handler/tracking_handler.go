package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fleetwatch/internal/delivery/http/response"
	domainerrors "fleetwatch/internal/domain/errors"
	"fleetwatch/internal/domain/service"
	"fleetwatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// TrackingHandlerParams holds dependencies for TrackingHandler, injected by Fx.
type TrackingHandlerParams struct {
	fx.In

	TrackingUC usecase.TrackingUsecase
	QRCode     service.QRCodeService
	Logger     *slog.Logger
}

// TrackingHandler holds dependencies for the live tracking endpoints
type TrackingHandler struct {
	trackingUC usecase.TrackingUsecase
	qrcode     service.QRCodeService
	logger     *slog.Logger
}

// NewTrackingHandler is the constructor for TrackingHandler
func NewTrackingHandler(params TrackingHandlerParams) *TrackingHandler {
	return &TrackingHandler{
		trackingUC: params.TrackingUC,
		qrcode:     params.QRCode,
		logger:     params.Logger,
	}
}

// IngestPositionRequest represents one GPS point reported for a route
type IngestPositionRequest struct {
	Latitude   float64   `json:"latitude" validate:"min=-90,max=90"`
	Longitude  float64   `json:"longitude" validate:"min=-180,max=180"`
	Heading    *float64  `json:"heading,omitempty" validate:"omitempty,min=0,max=360"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty" validate:"omitempty,min=0"`
	RecordedAt time.Time `json:"recorded_at" validate:"required"`
}

// Snapshot handles retrieving the current tracker state for a route,
// starting the live feed on first use
func (h *TrackingHandler) Snapshot(c echo.Context) error {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid route ID")
	}

	snapshot, err := h.trackingUC.Snapshot(c.Request().Context(), routeID)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, snapshot, "Tracking snapshot retrieved successfully")
}

// IngestPosition handles appending a GPS point to a route's position log
func (h *TrackingHandler) IngestPosition(c echo.Context) error {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid route ID")
	}

	var req IngestPositionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid position input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.IngestPositionInput{
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Heading:    req.Heading,
		SpeedKmh:   req.SpeedKmh,
		RecordedAt: req.RecordedAt,
	}

	if err := h.trackingUC.IngestPosition(c.Request().Context(), routeID, input); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusAccepted, map[string]string{"route_id": routeID.String()}, "Position ingested successfully")
}

// History handles retrieving the logged trail of a route
func (h *TrackingHandler) History(c echo.Context) error {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid route ID")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, convErr := strconv.Atoi(raw)
		if convErr != nil || parsed < 0 {
			return response.BadRequest(c, "INVALID_LIMIT", "Invalid position limit")
		}
		limit = parsed
	}

	positions, err := h.trackingUC.History(c.Request().Context(), routeID, limit)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, positions, "Route positions retrieved successfully")
}

// StopTracking handles releasing the live feed for a route
func (h *TrackingHandler) StopTracking(c echo.Context) error {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid route ID")
	}

	h.trackingUC.StopTracking(routeID)

	return response.Success(c, http.StatusOK, map[string]string{"route_id": routeID.String()}, "Tracking stopped successfully")
}

// TrackingQR handles generating a share-link QR code for a route as PNG
func (h *TrackingHandler) TrackingQR(c echo.Context) error {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid route ID")
	}

	png, err := h.qrcode.GenerateTrackingQR(routeID)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// handleAppError handles application errors
func (h *TrackingHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
