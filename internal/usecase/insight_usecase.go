package usecase

import (
	"context"

	"fleetwatch/internal/domain/entity"
)

// DegradeReason discriminates the failure sub-cases that turn an insight
// into a placeholder result. Machine-readable so callers and tests can tell
// them apart.
type DegradeReason string

const (
	DegradeNone              DegradeReason = ""
	DegradeNoCredential      DegradeReason = "no_credential"
	DegradeRateLimited       DegradeReason = "rate_limited"
	DegradeCoolingDown       DegradeReason = "cooling_down"
	DegradeProviderError     DegradeReason = "provider_error"
	DegradeMalformedResponse DegradeReason = "malformed_response"
)

// InsightMeta describes how an insight result was produced. Degraded results
// carry a reason tag and a human-readable notice instead of an error; the
// gateway never propagates failures to its callers.
type InsightMeta struct {
	Degraded bool          `json:"degraded"`
	Reason   DegradeReason `json:"reason,omitempty"`
	Cached   bool          `json:"cached"`
	Notice   string        `json:"notice,omitempty"`
}

// QuoteInput describes a cargo/route pair to estimate a client quote for.
type QuoteInput struct {
	CargoDescription string  `json:"cargo_description"`
	RouteDescription string  `json:"route_description"`
	DistanceKm       float64 `json:"distance_km"`
}

// QuoteInsight is the provider-shaped quote estimate.
type QuoteInsight struct {
	EstimatedCostRange string   `json:"estimated_cost_range"` // e.g. "$1,200 - $1,500"
	ConfidenceScore    float64  `json:"confidence_score"`     // 0..1, 0 on degraded results
	Factors            []string `json:"factors"`
	Recommendation     string   `json:"recommendation"`
}

// QuoteResult wraps a quote insight with its production metadata.
type QuoteResult struct {
	Meta    InsightMeta  `json:"meta"`
	Insight QuoteInsight `json:"insight"`
}

// FleetHealthInput carries the vehicle snapshot summarized for the report.
type FleetHealthInput struct {
	Vehicles []*entity.Vehicle
}

// FleetHealthInsight is a fleet-wide condition report.
type FleetHealthInsight struct {
	Summary  string   `json:"summary"`
	Concerns []string `json:"concerns"`
}

// FleetHealthResult wraps a fleet health insight with its metadata.
type FleetHealthResult struct {
	Meta    InsightMeta        `json:"meta"`
	Insight FleetHealthInsight `json:"insight"`
}

// RouteRiskInput describes a route to assess for operational risk.
type RouteRiskInput struct {
	Origin           string  `json:"origin"`
	Destination      string  `json:"destination"`
	DistanceKm       float64 `json:"distance_km"`
	CargoDescription string  `json:"cargo_description"`
	VehicleModel     string  `json:"vehicle_model"`
}

// RouteRiskInsight is the provider-shaped risk assessment.
type RouteRiskInsight struct {
	RiskLevel   string   `json:"risk_level"` // low / medium / high
	Summary     string   `json:"summary"`
	Mitigations []string `json:"mitigations"`
}

// RouteRiskResult wraps a route risk insight with its metadata.
type RouteRiskResult struct {
	Meta    InsightMeta      `json:"meta"`
	Insight RouteRiskInsight `json:"insight"`
}

// MaintenanceInput names the vehicle to predict maintenance for.
type MaintenanceInput struct {
	Vehicle *entity.Vehicle
}

// MaintenanceInsight is the provider-shaped maintenance prediction.
type MaintenanceInsight struct {
	Urgency         string   `json:"urgency"` // routine / soon / urgent
	PredictedIssues []string `json:"predicted_issues"`
	RecommendedDate string   `json:"recommended_date"`
}

// MaintenanceResult wraps a maintenance prediction with its metadata.
type MaintenanceResult struct {
	Meta    InsightMeta        `json:"meta"`
	Insight MaintenanceInsight `json:"insight"`
}

// FinancialSummaryInput pairs computed financials with route context.
type FinancialSummaryInput struct {
	RouteName  string
	Financials *RouteFinancials
}

// FinancialSummaryInsight is the provider-shaped financial commentary.
type FinancialSummaryInsight struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// FinancialSummaryResult wraps a financial summary with its metadata.
type FinancialSummaryResult struct {
	Meta    InsightMeta             `json:"meta"`
	Insight FinancialSummaryInsight `json:"insight"`
}

// InsightUsecase is the gateway to the external text-generation provider.
// Every method always returns a well-typed result: on any failure the result
// is a placeholder tagged with a DegradeReason, never an error.
type InsightUsecase interface {
	QuoteEstimate(ctx context.Context, input *QuoteInput) *QuoteResult
	FleetHealth(ctx context.Context, input *FleetHealthInput) *FleetHealthResult
	RouteRisk(ctx context.Context, input *RouteRiskInput) *RouteRiskResult
	MaintenancePrediction(ctx context.Context, input *MaintenanceInput) *MaintenanceResult
	FinancialSummary(ctx context.Context, input *FinancialSummaryInput) *FinancialSummaryResult
}
