package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"fleetwatch/config"
	"fleetwatch/internal/domain/entity"
	"fleetwatch/internal/infra/ai"
	"fleetwatch/internal/infra/quota"
	"fleetwatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type insightFixture struct {
	service   usecase.InsightUsecase
	generator *fakeGenerator
	notifier  *fakeNotifier
	drivers   *fakeDriverRepo
	clock     *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newInsightFixture(apiKey string, maxPerMinute int) *insightFixture {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	guard := quota.NewWithClock(&config.AIConfig{
		APIKey:               apiKey,
		CacheTTL:             5 * time.Minute,
		MaxRequestsPerMinute: maxPerMinute,
		Cooldown:             time.Minute,
	}, clock.Now)

	generator := &fakeGenerator{}
	notifier := &fakeNotifier{}
	drivers := &fakeDriverRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &insightFixture{
		service:   NewInsightService(generator, guard, notifier, drivers, logger),
		generator: generator,
		notifier:  notifier,
		drivers:   drivers,
		clock:     clock,
	}
}

func quoteInput() *usecase.QuoteInput {
	return &usecase.QuoteInput{
		CargoDescription: "40t steel coils",
		RouteDescription: "Almaty - Astana",
		DistanceKm:       1200,
	}
}

func TestInsightService_QuoteEstimateSuccess(t *testing.T) {
	f := newInsightFixture("key", 5)
	f.generator.responses = []string{`{"estimated_cost_range":"$1,200 - $1,500","confidence_score":0.8,"factors":["distance"],"recommendation":"quote high"}`}

	result := f.service.QuoteEstimate(context.Background(), quoteInput())

	require.False(t, result.Meta.Degraded)
	assert.Equal(t, usecase.DegradeNone, result.Meta.Reason)
	assert.Equal(t, "$1,200 - $1,500", result.Insight.EstimatedCostRange)
	assert.Equal(t, 0.8, result.Insight.ConfidenceScore)
	assert.Equal(t, 1, f.generator.callCount())
}

func TestInsightService_IdenticalQuoteServedFromCache(t *testing.T) {
	f := newInsightFixture("key", 5)
	f.generator.responses = []string{`{"estimated_cost_range":"$900 - $1,100","confidence_score":0.7}`}

	first := f.service.QuoteEstimate(context.Background(), quoteInput())
	second := f.service.QuoteEstimate(context.Background(), quoteInput())

	assert.Equal(t, 1, f.generator.callCount(), "second identical request must not re-invoke the provider")
	assert.False(t, first.Meta.Cached)
	assert.True(t, second.Meta.Cached)
	assert.Equal(t, first.Insight, second.Insight)
}

func TestInsightService_CacheExpiresAfterTTL(t *testing.T) {
	f := newInsightFixture("key", 5)
	f.generator.responses = []string{`{"estimated_cost_range":"$900 - $1,100","confidence_score":0.7}`}

	f.service.QuoteEstimate(context.Background(), quoteInput())
	f.clock.Advance(5*time.Minute + time.Second)
	third := f.service.QuoteEstimate(context.Background(), quoteInput())

	assert.Equal(t, 2, f.generator.callCount(), "expired cache entry must trigger a fresh provider call")
	assert.False(t, third.Meta.Cached)
}

func TestInsightService_NoCredentialDegrades(t *testing.T) {
	f := newInsightFixture("", 5)

	result := f.service.QuoteEstimate(context.Background(), quoteInput())

	require.True(t, result.Meta.Degraded)
	assert.Equal(t, usecase.DegradeNoCredential, result.Meta.Reason)
	assert.Equal(t, "$0 - $0", result.Insight.EstimatedCostRange)
	assert.Equal(t, 0.0, result.Insight.ConfidenceScore)
	assert.Equal(t, 0, f.generator.callCount(), "provider must not be contacted without a credential")
}

func TestInsightService_LocalRateLimitDegrades(t *testing.T) {
	f := newInsightFixture("key", 1)
	f.generator.responses = []string{`{"estimated_cost_range":"$1 - $2","confidence_score":0.5}`}

	first := f.service.QuoteEstimate(context.Background(), quoteInput())
	require.False(t, first.Meta.Degraded)

	other := quoteInput()
	other.CargoDescription = "fresh produce"
	second := f.service.QuoteEstimate(context.Background(), other)

	require.True(t, second.Meta.Degraded)
	assert.Equal(t, usecase.DegradeRateLimited, second.Meta.Reason)
	assert.Equal(t, 1, f.generator.callCount())
}

func TestInsightService_ProviderRateLimitStartsCooldown(t *testing.T) {
	f := newInsightFixture("key", 5)
	f.generator.err = &ai.StatusError{Code: 429, Body: "quota exceeded"}

	first := f.service.QuoteEstimate(context.Background(), quoteInput())
	require.True(t, first.Meta.Degraded)
	assert.Equal(t, usecase.DegradeProviderError, first.Meta.Reason)

	// Every call in the next minute is rejected locally, without
	// contacting the provider again.
	other := quoteInput()
	other.CargoDescription = "different cargo"
	second := f.service.QuoteEstimate(context.Background(), other)

	require.True(t, second.Meta.Degraded)
	assert.Equal(t, usecase.DegradeCoolingDown, second.Meta.Reason)
	assert.Equal(t, 1, f.generator.callCount())

	f.clock.Advance(61 * time.Second)
	f.generator.err = nil
	f.generator.responses = []string{`{"estimated_cost_range":"$5 - $6","confidence_score":0.4}`}

	third := f.service.QuoteEstimate(context.Background(), other)
	assert.False(t, third.Meta.Degraded)
}

func TestInsightService_NetworkErrorDegradesWithoutCooldown(t *testing.T) {
	f := newInsightFixture("key", 5)
	f.generator.err = errors.New("connection refused")

	first := f.service.QuoteEstimate(context.Background(), quoteInput())
	require.True(t, first.Meta.Degraded)
	assert.Equal(t, usecase.DegradeProviderError, first.Meta.Reason)

	// A plain network failure must not start a cooldown.
	f.generator.err = nil
	f.generator.responses = []string{`{"estimated_cost_range":"$5 - $6","confidence_score":0.4}`}
	second := f.service.QuoteEstimate(context.Background(), quoteInput())
	assert.False(t, second.Meta.Degraded)
}

func TestInsightService_MalformedResponseDegrades(t *testing.T) {
	f := newInsightFixture("key", 5)
	f.generator.responses = []string{`not json at all`}

	result := f.service.QuoteEstimate(context.Background(), quoteInput())

	require.True(t, result.Meta.Degraded)
	assert.Equal(t, usecase.DegradeMalformedResponse, result.Meta.Reason)
	assert.Equal(t, "$0 - $0", result.Insight.EstimatedCostRange)
}

func TestInsightService_RouteRiskDegradedPlaceholder(t *testing.T) {
	f := newInsightFixture("", 5)

	result := f.service.RouteRisk(context.Background(), &usecase.RouteRiskInput{
		Origin:      "Almaty",
		Destination: "Astana",
	})

	require.True(t, result.Meta.Degraded)
	assert.Equal(t, "unknown", result.Insight.RiskLevel)
	assert.NotEmpty(t, result.Insight.Summary)
}

func TestInsightService_UrgentMaintenanceTriggersAlert(t *testing.T) {
	f := newInsightFixture("key", 5)
	f.generator.responses = []string{`{"urgency":"urgent","predicted_issues":["brake wear"],"recommended_date":"2025-06-10"}`}

	vehicle := &entity.Vehicle{ID: uuid.New(), PlateNumber: "KZ 123 ABC", Model: "Volvo FH16", MileageKm: 250000}
	vehicleID := vehicle.ID
	f.drivers.drivers = []*entity.Driver{{
		ID:           uuid.New(),
		VehicleID:    &vehicleID,
		DeviceTokens: []string{"token-1", "token-2"},
	}}

	result := f.service.MaintenancePrediction(context.Background(), &usecase.MaintenanceInput{Vehicle: vehicle})

	require.False(t, result.Meta.Degraded)
	assert.Equal(t, "urgent", result.Insight.Urgency)
	require.Len(t, f.notifier.titles, 1)
	assert.Contains(t, f.notifier.titles[0], "KZ 123 ABC")
	assert.Equal(t, []string{"token-1", "token-2"}, f.notifier.tokens[0])
}

func TestInsightService_RoutineMaintenanceDoesNotAlert(t *testing.T) {
	f := newInsightFixture("key", 5)
	f.generator.responses = []string{`{"urgency":"routine","recommended_date":"2025-09-01"}`}

	vehicle := &entity.Vehicle{ID: uuid.New(), PlateNumber: "KZ 456 DEF"}
	result := f.service.MaintenancePrediction(context.Background(), &usecase.MaintenanceInput{Vehicle: vehicle})

	require.False(t, result.Meta.Degraded)
	assert.Empty(t, f.notifier.titles)
}
