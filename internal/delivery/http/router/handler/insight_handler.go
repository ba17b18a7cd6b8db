package handler

import (
	"log/slog"
	"net/http"

	"fleetwatch/internal/delivery/http/response"
	domainerrors "fleetwatch/internal/domain/errors"
	"fleetwatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// InsightHandlerParams holds dependencies for InsightHandler, injected by Fx.
type InsightHandlerParams struct {
	fx.In

	InsightUC usecase.InsightUsecase
	FleetUC   usecase.FleetUsecase
	FinanceUC usecase.FinanceUsecase
	Logger    *slog.Logger
}

// InsightHandler holds dependencies for the AI insight endpoints. The
// vehicle and route scoped prompts load their subjects through the fleet
// usecase so callers only pass IDs.
type InsightHandler struct {
	insightUC usecase.InsightUsecase
	fleetUC   usecase.FleetUsecase
	financeUC usecase.FinanceUsecase
	logger    *slog.Logger
}

// NewInsightHandler is the constructor for InsightHandler
func NewInsightHandler(params InsightHandlerParams) *InsightHandler {
	return &InsightHandler{
		insightUC: params.InsightUC,
		fleetUC:   params.FleetUC,
		financeUC: params.FinanceUC,
		logger:    params.Logger,
	}
}

// QuoteEstimateRequest represents the request body for an AI quote estimate
type QuoteEstimateRequest struct {
	CargoDescription string  `json:"cargo_description" validate:"required"`
	RouteDescription string  `json:"route_description" validate:"required"`
	DistanceKm       float64 `json:"distance_km" validate:"min=0"`
}

// RouteRiskRequest represents the request body for a route risk assessment
type RouteRiskRequest struct {
	RouteID uuid.UUID `json:"route_id" validate:"required"`
}

// MaintenancePredictionRequest represents the request body for a
// maintenance prediction
type MaintenancePredictionRequest struct {
	VehicleID uuid.UUID `json:"vehicle_id" validate:"required"`
}

// FinancialSummaryRequest represents the request body for an AI commentary
// on a route's financials
type FinancialSummaryRequest struct {
	RouteName       string  `json:"route_name" validate:"required"`
	DistanceKm      float64 `json:"distance_km" validate:"min=0"`
	FuelCostPerKm   float64 `json:"fuel_cost_per_km" validate:"min=0"`
	TollCosts       float64 `json:"toll_costs" validate:"min=0"`
	DriverWage      float64 `json:"driver_wage" validate:"min=0"`
	InsuranceCost   float64 `json:"insurance_cost" validate:"min=0"`
	MaintenanceCost float64 `json:"maintenance_cost" validate:"min=0"`
	ClientQuote     float64 `json:"client_quote" validate:"min=0"`
}

// QuoteEstimate handles estimating a client quote for a cargo/route pair
func (h *InsightHandler) QuoteEstimate(c echo.Context) error {
	var req QuoteEstimateRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid quote input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.QuoteInput{
		CargoDescription: req.CargoDescription,
		RouteDescription: req.RouteDescription,
		DistanceKm:       req.DistanceKm,
	}

	result := h.insightUC.QuoteEstimate(c.Request().Context(), input)

	return response.Success(c, http.StatusOK, result, "Quote estimate produced successfully")
}

// FleetHealth handles generating a fleet-wide condition report
func (h *InsightHandler) FleetHealth(c echo.Context) error {
	vehicles, err := h.fleetUC.ListVehicles(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	result := h.insightUC.FleetHealth(c.Request().Context(), &usecase.FleetHealthInput{
		Vehicles: vehicles,
	})

	return response.Success(c, http.StatusOK, result, "Fleet health report produced successfully")
}

// RouteRisk handles assessing the operational risk of a route
func (h *InsightHandler) RouteRisk(c echo.Context) error {
	var req RouteRiskRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid risk input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	route, err := h.fleetUC.GetRoute(c.Request().Context(), req.RouteID)
	if err != nil {
		return h.handleAppError(c, err)
	}

	input := &usecase.RouteRiskInput{
		Origin:           route.Origin,
		Destination:      route.Destination,
		DistanceKm:       route.DistanceKm,
		CargoDescription: route.CargoDesc,
	}

	if route.VehicleID != nil {
		vehicle, err := h.fleetUC.GetVehicle(c.Request().Context(), *route.VehicleID)
		if err == nil {
			input.VehicleModel = vehicle.Model
		}
	}

	result := h.insightUC.RouteRisk(c.Request().Context(), input)

	return response.Success(c, http.StatusOK, result, "Route risk assessed successfully")
}

// MaintenancePrediction handles predicting upcoming maintenance for a vehicle
func (h *InsightHandler) MaintenancePrediction(c echo.Context) error {
	var req MaintenancePredictionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid maintenance input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	vehicle, err := h.fleetUC.GetVehicle(c.Request().Context(), req.VehicleID)
	if err != nil {
		return h.handleAppError(c, err)
	}

	result := h.insightUC.MaintenancePrediction(c.Request().Context(), &usecase.MaintenanceInput{
		Vehicle: vehicle,
	})

	return response.Success(c, http.StatusOK, result, "Maintenance prediction produced successfully")
}

// FinancialSummary handles generating AI commentary on a route's financials.
// The breakdown is computed server-side from the submitted cost figures.
func (h *InsightHandler) FinancialSummary(c echo.Context) error {
	var req FinancialSummaryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid summary input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	financials := h.financeUC.Analyze(&usecase.RouteCostInput{
		DistanceKm:      req.DistanceKm,
		FuelCostPerKm:   req.FuelCostPerKm,
		TollCosts:       req.TollCosts,
		DriverWage:      req.DriverWage,
		InsuranceCost:   req.InsuranceCost,
		MaintenanceCost: req.MaintenanceCost,
		ClientQuote:     req.ClientQuote,
	})

	result := h.insightUC.FinancialSummary(c.Request().Context(), &usecase.FinancialSummaryInput{
		RouteName:  req.RouteName,
		Financials: financials,
	})

	return response.Success(c, http.StatusOK, result, "Financial summary produced successfully")
}

// handleAppError handles application errors
func (h *InsightHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
