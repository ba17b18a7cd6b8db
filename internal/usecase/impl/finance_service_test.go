package impl

import (
	"math"
	"testing"

	"fleetwatch/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinanceService_AnalyzeScenario(t *testing.T) {
	service := NewFinanceService()

	result := service.Analyze(&usecase.RouteCostInput{
		DistanceKm:    120,
		FuelCostPerKm: 450,
		ClientQuote:   100000,
	})

	assert.Equal(t, 54000.0, result.Breakdown.Fuel)
	assert.Equal(t, 54000.0, result.TotalCosts)
	assert.Equal(t, 100000.0, result.Revenue)
	assert.Equal(t, 46000.0, result.Profit)
	assert.Equal(t, 46.00, result.ProfitMargin)
}

func TestFinanceService_TotalIsSumOfComponents(t *testing.T) {
	service := NewFinanceService()

	input := &usecase.RouteCostInput{
		DistanceKm:      333.3,
		FuelCostPerKm:   412.7,
		TollCosts:       1250,
		DriverWage:      18000,
		InsuranceCost:   4200,
		MaintenanceCost: 1800,
		ClientQuote:     250000,
	}
	result := service.Analyze(input)

	wantFuel := input.DistanceKm * input.FuelCostPerKm
	assert.Equal(t, wantFuel, result.Breakdown.Fuel)

	wantTotal := wantFuel + input.TollCosts + input.DriverWage + input.InsuranceCost + input.MaintenanceCost
	assert.Equal(t, wantTotal, result.TotalCosts)
	assert.Equal(t, input.ClientQuote-wantTotal, result.Profit)
}

func TestFinanceService_MarginRoundsToTwoDecimals(t *testing.T) {
	service := NewFinanceService()

	// profit/quote = 1/3, margin should round to 33.33
	result := service.Analyze(&usecase.RouteCostInput{
		TollCosts:   200,
		ClientQuote: 300,
	})

	assert.Equal(t, 33.33, result.ProfitMargin)
}

func TestFinanceService_ZeroQuoteYieldsZeroMargin(t *testing.T) {
	service := NewFinanceService()

	result := service.Analyze(&usecase.RouteCostInput{
		DistanceKm:    100,
		FuelCostPerKm: 500,
		ClientQuote:   0,
	})

	require.False(t, math.IsNaN(result.ProfitMargin))
	require.False(t, math.IsInf(result.ProfitMargin, 0))
	assert.Equal(t, 0.0, result.ProfitMargin)
	assert.Equal(t, -50000.0, result.Profit)
}

func TestFinanceService_NegativeMargin(t *testing.T) {
	service := NewFinanceService()

	result := service.Analyze(&usecase.RouteCostInput{
		DriverWage:  1500,
		ClientQuote: 1000,
	})

	assert.Equal(t, -500.0, result.Profit)
	assert.Equal(t, -50.0, result.ProfitMargin)
}
