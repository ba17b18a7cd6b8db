package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"fleetwatch/internal/domain/repository"
	"fleetwatch/internal/domain/service"
	"fleetwatch/internal/infra/ai"
	"fleetwatch/internal/infra/quota"
	"fleetwatch/internal/usecase"
)

// User-facing notices for each degraded sub-case.
const (
	noticeNoCredential = "AI insights are not configured. Add a provider API key to enable them."
	noticeRateLimited  = "Too many AI requests right now. Try again in a minute."
	noticeCoolingDown  = "The AI provider reported a rate limit. Insights are paused briefly."
	noticeProvider     = "The AI provider could not be reached. Showing a placeholder instead."
	noticeMalformed    = "The AI provider returned an unreadable response. Showing a placeholder instead."
)

const placeholderCostRange = "$0 - $0"

type insightService struct {
	generator  service.TextGenerator
	guard      *quota.Guard
	notifier   service.NotificationService
	driverRepo repository.DriverRepository
	logger     *slog.Logger
}

// NewInsightService creates the gateway to the external text-generation
// provider. notifier may be nil; urgent maintenance predictions are then
// not pushed anywhere.
func NewInsightService(
	generator service.TextGenerator,
	guard *quota.Guard,
	notifier service.NotificationService,
	driverRepo repository.DriverRepository,
	logger *slog.Logger,
) usecase.InsightUsecase {
	return &insightService{
		generator:  generator,
		guard:      guard,
		notifier:   notifier,
		driverRepo: driverRepo,
		logger:     logger,
	}
}

// degradeMeta maps a failure sub-case to result metadata.
func degradeMeta(reason usecase.DegradeReason, notice string) usecase.InsightMeta {
	return usecase.InsightMeta{Degraded: true, Reason: reason, Notice: notice}
}

// gate runs the local admission checks shared by every insight. It returns
// a degraded meta and false when the provider must not be contacted.
func (s *insightService) gate() (usecase.InsightMeta, bool) {
	if !s.guard.HasCredential() {
		return degradeMeta(usecase.DegradeNoCredential, noticeNoCredential), false
	}
	if s.guard.CoolingDown() {
		return degradeMeta(usecase.DegradeCoolingDown, noticeCoolingDown), false
	}
	if !s.guard.Admit() {
		return degradeMeta(usecase.DegradeRateLimited, noticeRateLimited), false
	}

	return usecase.InsightMeta{}, true
}

// generate calls the provider and decodes the schema-shaped JSON answer
// into out. The returned meta reflects cache state and any degradation;
// errors never escape.
func generate[T any](ctx context.Context, s *insightService, key, prompt string, schema map[string]any, out *T) usecase.InsightMeta {
	if cached, ok := s.guard.Cached(key); ok {
		if insight, ok := cached.(T); ok {
			*out = insight

			return usecase.InsightMeta{Cached: true}
		}
	}

	meta, ok := s.gate()
	if !ok {
		return meta
	}

	text, err := s.generator.Generate(ctx, &service.GenerateRequest{Prompt: prompt, Schema: schema})
	if err != nil {
		if ai.IsRateLimited(err) {
			s.guard.RecordProviderLimit()
		}
		s.logger.Warn("provider call failed",
			slog.String("key", key),
			slog.Any("error", err),
		)

		return degradeMeta(usecase.DegradeProviderError, noticeProvider)
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		s.logger.Warn("provider response did not match schema",
			slog.String("key", key),
			slog.Any("error", err),
		)

		return degradeMeta(usecase.DegradeMalformedResponse, noticeMalformed)
	}

	s.guard.Store(key, *out)

	return usecase.InsightMeta{}
}

// QuoteEstimate asks the provider for a client quote range for a cargo on
// a route. Identical cargo/route/distance triples within the cache TTL are
// served from cache without a provider call.
func (s *insightService) QuoteEstimate(ctx context.Context, input *usecase.QuoteInput) *usecase.QuoteResult {
	key := quota.Key("quote", input.CargoDescription, input.RouteDescription, fmt.Sprintf("%.1f", input.DistanceKm))

	prompt := fmt.Sprintf(
		"You are a freight pricing analyst. Estimate a client quote range in USD for transporting %s along %s (%.0f km). "+
			"List the main pricing factors and one recommendation.",
		input.CargoDescription, input.RouteDescription, input.DistanceKm,
	)
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"estimated_cost_range": map[string]any{"type": "string"},
			"confidence_score":     map[string]any{"type": "number"},
			"factors":              map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"recommendation":       map[string]any{"type": "string"},
		},
		"required": []string{"estimated_cost_range", "confidence_score"},
	}

	result := &usecase.QuoteResult{}
	result.Meta = generate(ctx, s, key, prompt, schema, &result.Insight)
	if result.Meta.Degraded {
		result.Insight = usecase.QuoteInsight{
			EstimatedCostRange: placeholderCostRange,
			ConfidenceScore:    0,
			Recommendation:     result.Meta.Notice,
		}
	}

	return result
}

// FleetHealth summarizes the condition of the whole fleet.
func (s *insightService) FleetHealth(ctx context.Context, input *usecase.FleetHealthInput) *usecase.FleetHealthResult {
	var lines []string
	for _, v := range input.Vehicles {
		lines = append(lines, fmt.Sprintf("%s %s: status %s, %.0f km", v.PlateNumber, v.Model, v.Status, v.MileageKm))
	}
	key := quota.Key("fleet-health", fmt.Sprintf("%d", len(input.Vehicles)), strings.Join(lines, ";"))

	prompt := fmt.Sprintf(
		"You are a fleet operations analyst. Given these vehicles:\n%s\n"+
			"Write a short fleet health summary and list concrete concerns.",
		strings.Join(lines, "\n"),
	)
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":  map[string]any{"type": "string"},
			"concerns": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"summary"},
	}

	result := &usecase.FleetHealthResult{}
	result.Meta = generate(ctx, s, key, prompt, schema, &result.Insight)
	if result.Meta.Degraded {
		result.Insight = usecase.FleetHealthInsight{Summary: result.Meta.Notice}
	}

	return result
}

// RouteRisk assesses the operational risk of one route.
func (s *insightService) RouteRisk(ctx context.Context, input *usecase.RouteRiskInput) *usecase.RouteRiskResult {
	key := quota.Key("route-risk", input.Origin, input.Destination, input.CargoDescription, fmt.Sprintf("%.1f", input.DistanceKm))

	prompt := fmt.Sprintf(
		"You are a logistics risk analyst. Assess the risk of transporting %s from %s to %s (%.0f km) with a %s. "+
			"Classify the risk as low, medium or high and list mitigations.",
		input.CargoDescription, input.Origin, input.Destination, input.DistanceKm, input.VehicleModel,
	)
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"risk_level":  map[string]any{"type": "string"},
			"summary":     map[string]any{"type": "string"},
			"mitigations": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"risk_level", "summary"},
	}

	result := &usecase.RouteRiskResult{}
	result.Meta = generate(ctx, s, key, prompt, schema, &result.Insight)
	if result.Meta.Degraded {
		result.Insight = usecase.RouteRiskInsight{RiskLevel: "unknown", Summary: result.Meta.Notice}
	}

	return result
}

// MaintenancePrediction predicts upcoming maintenance for one vehicle and
// pushes an alert to the assigned driver when the prediction is urgent.
func (s *insightService) MaintenancePrediction(ctx context.Context, input *usecase.MaintenanceInput) *usecase.MaintenanceResult {
	v := input.Vehicle
	key := quota.Key("maintenance", v.ID.String(), fmt.Sprintf("%.0f", v.MileageKm))

	prompt := fmt.Sprintf(
		"You are a fleet maintenance planner. Vehicle %s (%s) has %.0f km on the odometer and status %s. "+
			"Predict likely maintenance issues, classify urgency as routine, soon or urgent, and recommend a service date.",
		v.PlateNumber, v.Model, v.MileageKm, v.Status,
	)
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"urgency":          map[string]any{"type": "string"},
			"predicted_issues": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"recommended_date": map[string]any{"type": "string"},
		},
		"required": []string{"urgency"},
	}

	result := &usecase.MaintenanceResult{}
	result.Meta = generate(ctx, s, key, prompt, schema, &result.Insight)
	if result.Meta.Degraded {
		result.Insight = usecase.MaintenanceInsight{Urgency: "unknown", RecommendedDate: result.Meta.Notice}

		return result
	}

	if !result.Meta.Cached && strings.EqualFold(result.Insight.Urgency, "urgent") {
		s.alertUrgentMaintenance(ctx, input, &result.Insight)
	}

	return result
}

// FinancialSummary turns computed route financials into advisory text.
func (s *insightService) FinancialSummary(ctx context.Context, input *usecase.FinancialSummaryInput) *usecase.FinancialSummaryResult {
	fin := input.Financials
	key := quota.Key("financial-summary", input.RouteName, fmt.Sprintf("%.2f", fin.Profit), fmt.Sprintf("%.2f", fin.ProfitMargin))

	prompt := fmt.Sprintf(
		"You are a logistics financial advisor. Route %q costs %.2f, earns %.2f, profit %.2f at a %.2f%% margin "+
			"(fuel %.2f, tolls %.2f, wages %.2f, insurance %.2f, maintenance %.2f). "+
			"Summarize the result and suggest improvements.",
		input.RouteName, fin.TotalCosts, fin.Revenue, fin.Profit, fin.ProfitMargin,
		fin.Breakdown.Fuel, fin.Breakdown.Tolls, fin.Breakdown.DriverWage, fin.Breakdown.Insurance, fin.Breakdown.Maintenance,
	)
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":     map[string]any{"type": "string"},
			"suggestions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"summary"},
	}

	result := &usecase.FinancialSummaryResult{}
	result.Meta = generate(ctx, s, key, prompt, schema, &result.Insight)
	if result.Meta.Degraded {
		result.Insight = usecase.FinancialSummaryInsight{Summary: result.Meta.Notice}
	}

	return result
}

// alertUrgentMaintenance pushes an urgent prediction to the devices of the
// driver assigned to the vehicle. Failures are logged, never surfaced.
func (s *insightService) alertUrgentMaintenance(ctx context.Context, input *usecase.MaintenanceInput, insight *usecase.MaintenanceInsight) {
	if s.notifier == nil {
		return
	}

	driver, err := s.driverRepo.FindDriverByVehicle(ctx, input.Vehicle.ID)
	if err != nil || len(driver.DeviceTokens) == 0 {
		return
	}

	title := fmt.Sprintf("Urgent maintenance: %s", input.Vehicle.PlateNumber)
	body := strings.Join(insight.PredictedIssues, ", ")
	if body == "" {
		body = "Schedule a service check as soon as possible."
	}

	if _, _, _, err := s.notifier.SendBatchNotification(ctx, driver.DeviceTokens, title, body, map[string]string{
		"vehicle_id": input.Vehicle.ID.String(),
		"urgency":    insight.Urgency,
	}); err != nil {
		s.logger.Warn("maintenance alert push failed",
			slog.String("vehicle_id", input.Vehicle.ID.String()),
			slog.Any("error", err),
		)
	}
}
