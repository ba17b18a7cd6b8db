// Package impl contains the concrete use case services.
package impl

import (
	"math"

	"fleetwatch/internal/usecase"
)

type financeService struct{}

// NewFinanceService creates the route profitability calculator.
func NewFinanceService() usecase.FinanceUsecase {
	return &financeService{}
}

// Analyze derives the cost breakdown, profit and margin for a route.
// All arithmetic is exact; only the margin percentage is rounded, to two
// decimals. A zero client quote yields a margin of 0 instead of NaN.
func (s *financeService) Analyze(input *usecase.RouteCostInput) *usecase.RouteFinancials {
	fuelCost := input.DistanceKm * input.FuelCostPerKm

	breakdown := usecase.CostBreakdown{
		Fuel:        fuelCost,
		Tolls:       input.TollCosts,
		DriverWage:  input.DriverWage,
		Insurance:   input.InsuranceCost,
		Maintenance: input.MaintenanceCost,
	}

	totalCosts := fuelCost + input.TollCosts + input.DriverWage + input.InsuranceCost + input.MaintenanceCost
	profit := input.ClientQuote - totalCosts

	var margin float64
	if input.ClientQuote != 0 {
		margin = roundTwoDecimals(profit / input.ClientQuote * 100)
	}

	return &usecase.RouteFinancials{
		Breakdown:    breakdown,
		TotalCosts:   totalCosts,
		Revenue:      input.ClientQuote,
		Profit:       profit,
		ProfitMargin: margin,
	}
}

func roundTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}
