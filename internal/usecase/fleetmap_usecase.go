package usecase

import (
	"context"

	"fleetwatch/internal/domain/entity"

	"github.com/paulmach/orb"
)

// StatusFilter selects which vehicle statuses appear on the fleet map.
type StatusFilter struct {
	ShowActive      bool
	ShowMaintenance bool
	ShowIdle        bool
}

// Allows reports whether a vehicle with the given status passes the filter.
func (f StatusFilter) Allows(status entity.VehicleStatus) bool {
	switch status {
	case entity.VehicleStatusActive:
		return f.ShowActive
	case entity.VehicleStatusMaintenance:
		return f.ShowMaintenance
	case entity.VehicleStatusIdle:
		return f.ShowIdle
	default:
		return false
	}
}

// MapCluster is one marker on the fleet map: either a single vehicle or a
// group merged at their mean position. Clusters are formed per request and
// never persisted.
type MapCluster struct {
	Position  orb.Point         `json:"position"` // [lng, lat] centroid
	Vehicles  []*entity.Vehicle `json:"vehicles"`
	IsCluster bool              `json:"is_cluster"`
}

// FleetMapUsecase groups the current vehicle set into map markers for a
// given zoom level.
type FleetMapUsecase interface {
	Clusters(ctx context.Context, zoom int, filter StatusFilter) ([]*MapCluster, error)
}
