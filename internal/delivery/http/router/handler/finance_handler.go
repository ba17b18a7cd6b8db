package handler

import (
	"log/slog"
	"net/http"

	"fleetwatch/internal/delivery/http/response"
	"fleetwatch/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// FinanceHandlerParams holds dependencies for FinanceHandler, injected by Fx.
type FinanceHandlerParams struct {
	fx.In

	FinanceUC usecase.FinanceUsecase
	Logger    *slog.Logger
}

// FinanceHandler holds dependencies for route profitability handlers
type FinanceHandler struct {
	financeUC usecase.FinanceUsecase
	logger    *slog.Logger
}

// NewFinanceHandler is the constructor for FinanceHandler
func NewFinanceHandler(params FinanceHandlerParams) *FinanceHandler {
	return &FinanceHandler{
		financeUC: params.FinanceUC,
		logger:    params.Logger,
	}
}

// AnalyzeRouteRequest represents the request body for a profitability analysis
type AnalyzeRouteRequest struct {
	DistanceKm      float64 `json:"distance_km" validate:"min=0"`
	FuelCostPerKm   float64 `json:"fuel_cost_per_km" validate:"min=0"`
	TollCosts       float64 `json:"toll_costs" validate:"min=0"`
	DriverWage      float64 `json:"driver_wage" validate:"min=0"`
	InsuranceCost   float64 `json:"insurance_cost" validate:"min=0"`
	MaintenanceCost float64 `json:"maintenance_cost" validate:"min=0"`
	ClientQuote     float64 `json:"client_quote" validate:"min=0"`
}

// Analyze handles computing the financial breakdown for a set of route costs
func (h *FinanceHandler) Analyze(c echo.Context) error {
	var req AnalyzeRouteRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid analysis input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.RouteCostInput{
		DistanceKm:      req.DistanceKm,
		FuelCostPerKm:   req.FuelCostPerKm,
		TollCosts:       req.TollCosts,
		DriverWage:      req.DriverWage,
		InsuranceCost:   req.InsuranceCost,
		MaintenanceCost: req.MaintenanceCost,
		ClientQuote:     req.ClientQuote,
	}

	financials := h.financeUC.Analyze(input)

	return response.Success(c, http.StatusOK, financials, "Route financials computed successfully")
}
