package handler

import (
	"log/slog"
	"net/http"
	"time"

	"fleetwatch/internal/delivery/http/response"
	"fleetwatch/internal/domain/entity"
	domainerrors "fleetwatch/internal/domain/errors"
	"fleetwatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// FleetHandlerParams holds dependencies for FleetHandler, injected by Fx.
type FleetHandlerParams struct {
	fx.In

	FleetUC usecase.FleetUsecase
	Logger  *slog.Logger
}

// FleetHandler holds dependencies for vehicle, driver and route handlers
type FleetHandler struct {
	fleetUC usecase.FleetUsecase
	logger  *slog.Logger
}

// NewFleetHandler is the constructor for FleetHandler
func NewFleetHandler(params FleetHandlerParams) *FleetHandler {
	return &FleetHandler{
		fleetUC: params.FleetUC,
		logger:  params.Logger,
	}
}

// CreateVehicleRequest represents the request body for registering a vehicle
type CreateVehicleRequest struct {
	PlateNumber string  `json:"plate_number" validate:"required"`
	Model       string  `json:"model" validate:"required"`
	MileageKm   float64 `json:"mileage_km" validate:"min=0"`
}

// UpdateVehicleRequest represents the request body for updating a vehicle
type UpdateVehicleRequest struct {
	Model       *string    `json:"model,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=active idle maintenance"`
	MileageKm   *float64   `json:"mileage_km,omitempty" validate:"omitempty,min=0"`
	NextService *time.Time `json:"next_service,omitempty"`
}

// CreateDriverRequest represents the request body for registering a driver
type CreateDriverRequest struct {
	Name          string     `json:"name" validate:"required"`
	LicenseNumber string     `json:"license_number" validate:"required"`
	LicenseExpiry *time.Time `json:"license_expiry,omitempty"`
	Phone         string     `json:"phone"`
}

// UpdateDriverRequest represents the request body for updating a driver
type UpdateDriverRequest struct {
	Name          *string    `json:"name,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Status        *string    `json:"status,omitempty" validate:"omitempty,oneof=available on_route off_duty"`
	LicenseExpiry *time.Time `json:"license_expiry,omitempty"`
	VehicleID     *uuid.UUID `json:"vehicle_id,omitempty"`
	DeviceTokens  []string   `json:"device_tokens,omitempty"`
}

// CreateRouteRequest represents the request body for planning a route
type CreateRouteRequest struct {
	Name        string     `json:"name" validate:"required"`
	Origin      string     `json:"origin" validate:"required"`
	Destination string     `json:"destination" validate:"required"`
	DistanceKm  float64    `json:"distance_km" validate:"required,min=0"`
	CargoDesc   string     `json:"cargo_description"`
	VehicleID   *uuid.UUID `json:"vehicle_id,omitempty"`
	DriverID    *uuid.UUID `json:"driver_id,omitempty"`
	ClientQuote float64    `json:"client_quote" validate:"min=0"`
}

// UpdateRouteRequest represents the request body for updating a route
type UpdateRouteRequest struct {
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=planned in_progress completed cancelled"`
	VehicleID   *uuid.UUID `json:"vehicle_id,omitempty"`
	DriverID    *uuid.UUID `json:"driver_id,omitempty"`
	ClientQuote *float64   `json:"client_quote,omitempty" validate:"omitempty,min=0"`
}

// ListVehicles handles retrieving all vehicles
func (h *FleetHandler) ListVehicles(c echo.Context) error {
	vehicles, err := h.fleetUC.ListVehicles(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, vehicles, "Vehicles retrieved successfully")
}

// GetVehicle handles retrieving a single vehicle
func (h *FleetHandler) GetVehicle(c echo.Context) error {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid vehicle ID")
	}

	vehicle, err := h.fleetUC.GetVehicle(c.Request().Context(), vehicleID)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, vehicle, "Vehicle retrieved successfully")
}

// CreateVehicle handles registering a new vehicle
func (h *FleetHandler) CreateVehicle(c echo.Context) error {
	var req CreateVehicleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid vehicle input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.CreateVehicleInput{
		PlateNumber: req.PlateNumber,
		Model:       req.Model,
		MileageKm:   req.MileageKm,
	}

	vehicle, err := h.fleetUC.CreateVehicle(c.Request().Context(), input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, vehicle, "Vehicle created successfully")
}

// UpdateVehicle handles a partial vehicle update
func (h *FleetHandler) UpdateVehicle(c echo.Context) error {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid vehicle ID")
	}

	var req UpdateVehicleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid vehicle input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.UpdateVehicleInput{
		Model:       req.Model,
		Status:      vehicleStatusPtr(req.Status),
		MileageKm:   req.MileageKm,
		NextService: req.NextService,
	}

	vehicle, err := h.fleetUC.UpdateVehicle(c.Request().Context(), vehicleID, input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, vehicle, "Vehicle updated successfully")
}

// ListDrivers handles retrieving all drivers
func (h *FleetHandler) ListDrivers(c echo.Context) error {
	drivers, err := h.fleetUC.ListDrivers(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, drivers, "Drivers retrieved successfully")
}

// GetDriver handles retrieving a single driver
func (h *FleetHandler) GetDriver(c echo.Context) error {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid driver ID")
	}

	driver, err := h.fleetUC.GetDriver(c.Request().Context(), driverID)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, driver, "Driver retrieved successfully")
}

// CreateDriver handles registering a new driver
func (h *FleetHandler) CreateDriver(c echo.Context) error {
	var req CreateDriverRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid driver input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.CreateDriverInput{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: req.LicenseExpiry,
		Phone:         req.Phone,
	}

	driver, err := h.fleetUC.CreateDriver(c.Request().Context(), input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, driver, "Driver created successfully")
}

// UpdateDriver handles a partial driver update
func (h *FleetHandler) UpdateDriver(c echo.Context) error {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid driver ID")
	}

	var req UpdateDriverRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid driver input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.UpdateDriverInput{
		Name:          req.Name,
		Phone:         req.Phone,
		Status:        driverStatusPtr(req.Status),
		LicenseExpiry: req.LicenseExpiry,
		VehicleID:     req.VehicleID,
		DeviceTokens:  req.DeviceTokens,
	}

	driver, err := h.fleetUC.UpdateDriver(c.Request().Context(), driverID, input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, driver, "Driver updated successfully")
}

// ListRoutes handles retrieving routes, optionally filtered by status
func (h *FleetHandler) ListRoutes(c echo.Context) error {
	var routes []*entity.Route
	var err error

	if status := c.QueryParam("status"); status != "" {
		routes, err = h.fleetUC.ListRoutesByStatus(c.Request().Context(), entity.RouteStatus(status))
	} else {
		routes, err = h.fleetUC.ListRoutes(c.Request().Context())
	}
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, routes, "Routes retrieved successfully")
}

// GetRoute handles retrieving a single route
func (h *FleetHandler) GetRoute(c echo.Context) error {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid route ID")
	}

	route, err := h.fleetUC.GetRoute(c.Request().Context(), routeID)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, route, "Route retrieved successfully")
}

// CreateRoute handles planning a new route
func (h *FleetHandler) CreateRoute(c echo.Context) error {
	var req CreateRouteRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid route input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.CreateRouteInput{
		Name:        req.Name,
		Origin:      req.Origin,
		Destination: req.Destination,
		DistanceKm:  req.DistanceKm,
		CargoDesc:   req.CargoDesc,
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		ClientQuote: req.ClientQuote,
	}

	route, err := h.fleetUC.CreateRoute(c.Request().Context(), input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, route, "Route created successfully")
}

// UpdateRoute handles a partial route update
func (h *FleetHandler) UpdateRoute(c echo.Context) error {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid route ID")
	}

	var req UpdateRouteRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid route input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.UpdateRouteInput{
		Status:      routeStatusPtr(req.Status),
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		ClientQuote: req.ClientQuote,
	}

	route, err := h.fleetUC.UpdateRoute(c.Request().Context(), routeID, input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, route, "Route updated successfully")
}

// handleAppError handles application errors
func (h *FleetHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}

func vehicleStatusPtr(s *string) *entity.VehicleStatus {
	if s == nil {
		return nil
	}
	status := entity.VehicleStatus(*s)

	return &status
}

func driverStatusPtr(s *string) *entity.DriverStatus {
	if s == nil {
		return nil
	}
	status := entity.DriverStatus(*s)

	return &status
}

func routeStatusPtr(s *string) *entity.RouteStatus {
	if s == nil {
		return nil
	}
	status := entity.RouteStatus(*s)

	return &status
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
