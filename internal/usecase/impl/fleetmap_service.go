package impl

import (
	"context"

	"fleetwatch/internal/domain/entity"
	"fleetwatch/internal/domain/repository"
	"fleetwatch/internal/usecase"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// Clustering only applies below this zoom; at or above it every vehicle
// gets its own marker.
const clusterMaxZoom = 12

type fleetMapService struct {
	vehicleRepo repository.VehicleRepository
}

// NewFleetMapService creates the fleet map clustering service.
func NewFleetMapService(vehicleRepo repository.VehicleRepository) usecase.FleetMapUsecase {
	return &fleetMapService{vehicleRepo: vehicleRepo}
}

// Clusters loads the current vehicle set and groups it into map markers.
// Vehicles filtered out by status, or without a known location, are
// excluded entirely.
func (s *fleetMapService) Clusters(ctx context.Context, zoom int, filter usecase.StatusFilter) ([]*usecase.MapCluster, error) {
	vehicles, err := s.vehicleRepo.ListVehicles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vehicles")
	}

	visible := make([]*entity.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if !filter.Allows(v.Status) || !v.HasLocation() {
			continue
		}
		visible = append(visible, v)
	}

	return clusterVehicles(visible, zoom), nil
}

// clusterRadius maps a zoom level to a grouping radius in degree space.
func clusterRadius(zoom int) float64 {
	switch {
	case zoom >= 10:
		return 0.01
	case zoom >= 8:
		return 0.03
	default:
		return 0.05
	}
}

// clusterVehicles greedily groups vehicles in input order: each unprocessed
// vehicle claims every unprocessed neighbor within the radius. The grouping
// is order-dependent by design; it is a cheap visual approximation, not a
// stable partition.
func clusterVehicles(vehicles []*entity.Vehicle, zoom int) []*usecase.MapCluster {
	clusters := make([]*usecase.MapCluster, 0, len(vehicles))

	if zoom >= clusterMaxZoom {
		for _, v := range vehicles {
			clusters = append(clusters, &usecase.MapCluster{
				Position:  vehiclePoint(v),
				Vehicles:  []*entity.Vehicle{v},
				IsCluster: false,
			})
		}

		return clusters
	}

	radius := clusterRadius(zoom)
	processed := make([]bool, len(vehicles))

	for i, v := range vehicles {
		if processed[i] {
			continue
		}
		processed[i] = true

		group := []*entity.Vehicle{v}
		for j := i + 1; j < len(vehicles); j++ {
			if processed[j] {
				continue
			}
			if planar.Distance(vehiclePoint(v), vehiclePoint(vehicles[j])) <= radius {
				processed[j] = true
				group = append(group, vehicles[j])
			}
		}

		clusters = append(clusters, &usecase.MapCluster{
			Position:  centroid(group),
			Vehicles:  group,
			IsCluster: len(group) > 1,
		})
	}

	return clusters
}

func vehiclePoint(v *entity.Vehicle) orb.Point {
	return orb.Point{v.Location.Longitude, v.Location.Latitude}
}

// centroid computes the arithmetic-mean position of a group.
func centroid(group []*entity.Vehicle) orb.Point {
	var sumLng, sumLat float64
	for _, v := range group {
		sumLng += v.Location.Longitude
		sumLat += v.Location.Latitude
	}
	n := float64(len(group))

	return orb.Point{sumLng / n, sumLat / n}
}
