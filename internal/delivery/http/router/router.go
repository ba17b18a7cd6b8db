// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"fleetwatch/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	FleetHandler    *handler.FleetHandler
	FinanceHandler  *handler.FinanceHandler
	InsightHandler  *handler.InsightHandler
	MapHandler      *handler.MapHandler
	TrackingHandler *handler.TrackingHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	fleetHandler    *handler.FleetHandler
	financeHandler  *handler.FinanceHandler
	insightHandler  *handler.InsightHandler
	mapHandler      *handler.MapHandler
	trackingHandler *handler.TrackingHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		fleetHandler:    params.FleetHandler,
		financeHandler:  params.FinanceHandler,
		insightHandler:  params.InsightHandler,
		mapHandler:      params.MapHandler,
		trackingHandler: params.TrackingHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")

	vehicleGroup := api.Group("/vehicles")
	{
		vehicleGroup.GET("", r.fleetHandler.ListVehicles)
		vehicleGroup.POST("", r.fleetHandler.CreateVehicle)
		vehicleGroup.GET("/:id", r.fleetHandler.GetVehicle)
		vehicleGroup.PATCH("/:id", r.fleetHandler.UpdateVehicle)
	}

	driverGroup := api.Group("/drivers")
	{
		driverGroup.GET("", r.fleetHandler.ListDrivers)
		driverGroup.POST("", r.fleetHandler.CreateDriver)
		driverGroup.GET("/:id", r.fleetHandler.GetDriver)
		driverGroup.PATCH("/:id", r.fleetHandler.UpdateDriver)
	}

	routeGroup := api.Group("/routes")
	{
		routeGroup.GET("", r.fleetHandler.ListRoutes)
		routeGroup.POST("", r.fleetHandler.CreateRoute)
		routeGroup.GET("/:id", r.fleetHandler.GetRoute)
		routeGroup.PATCH("/:id", r.fleetHandler.UpdateRoute)

		// Live tracking per route
		routeGroup.POST("/:id/positions", r.trackingHandler.IngestPosition)
		routeGroup.GET("/:id/positions", r.trackingHandler.History)
		routeGroup.GET("/:id/tracking", r.trackingHandler.Snapshot)
		routeGroup.DELETE("/:id/tracking", r.trackingHandler.StopTracking)
		routeGroup.GET("/:id/tracking/qr", r.trackingHandler.TrackingQR)
	}

	api.POST("/finance/analyze", r.financeHandler.Analyze)

	insightGroup := api.Group("/insights")
	{
		insightGroup.POST("/quote", r.insightHandler.QuoteEstimate)
		insightGroup.POST("/fleet-health", r.insightHandler.FleetHealth)
		insightGroup.POST("/route-risk", r.insightHandler.RouteRisk)
		insightGroup.POST("/maintenance", r.insightHandler.MaintenancePrediction)
		insightGroup.POST("/financial-summary", r.insightHandler.FinancialSummary)
	}

	api.GET("/fleet/map", r.mapHandler.Clusters)
}
