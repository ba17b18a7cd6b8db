package usecase

// RouteCostInput holds the raw route and cost figures entered for a
// profitability analysis.
type RouteCostInput struct {
	DistanceKm      float64 `json:"distance_km"`
	FuelCostPerKm   float64 `json:"fuel_cost_per_km"`
	TollCosts       float64 `json:"toll_costs"`
	DriverWage      float64 `json:"driver_wage"`
	InsuranceCost   float64 `json:"insurance_cost"`
	MaintenanceCost float64 `json:"maintenance_cost"`
	ClientQuote     float64 `json:"client_quote"`
}

// CostBreakdown itemizes the five cost components of a route.
type CostBreakdown struct {
	Fuel        float64 `json:"fuel"`
	Tolls       float64 `json:"tolls"`
	DriverWage  float64 `json:"driver_wage"`
	Insurance   float64 `json:"insurance"`
	Maintenance float64 `json:"maintenance"`
}

// RouteFinancials is the derived profitability picture for a route.
// ProfitMargin is a percentage rounded to two decimals; when the client
// quote is zero the margin is reported as 0 rather than NaN.
type RouteFinancials struct {
	Breakdown    CostBreakdown `json:"breakdown"`
	TotalCosts   float64       `json:"total_costs"`
	Revenue      float64       `json:"revenue"`
	Profit       float64       `json:"profit"`
	ProfitMargin float64       `json:"profit_margin"`
}

// FinanceUsecase defines the route profitability calculator. The transform
// is pure and synchronous; there are no error conditions.
type FinanceUsecase interface {
	Analyze(input *RouteCostInput) *RouteFinancials
}
