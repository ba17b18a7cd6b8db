package impl

import (
	"context"
	"testing"

	"fleetwatch/internal/domain/entity"
	"fleetwatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vehicleAt(lat, lng float64, status entity.VehicleStatus) *entity.Vehicle {
	return &entity.Vehicle{
		ID:     uuid.New(),
		Status: status,
		Location: &entity.VehicleLocation{
			Latitude:  lat,
			Longitude: lng,
		},
	}
}

func allStatuses() usecase.StatusFilter {
	return usecase.StatusFilter{ShowActive: true, ShowMaintenance: true, ShowIdle: true}
}

func TestFleetMapService_HighZoomYieldsSingletons(t *testing.T) {
	repo := &fakeVehicleRepo{vehicles: []*entity.Vehicle{
		vehicleAt(43.25, 76.95, entity.VehicleStatusActive),
		vehicleAt(43.25, 76.95, entity.VehicleStatusActive), // identical position
		vehicleAt(43.30, 76.90, entity.VehicleStatusIdle),
	}}
	service := NewFleetMapService(repo)

	clusters, err := service.Clusters(context.Background(), 12, allStatuses())
	require.NoError(t, err)
	require.Len(t, clusters, 3)
	for _, c := range clusters {
		assert.False(t, c.IsCluster)
		assert.Len(t, c.Vehicles, 1)
	}
}

func TestFleetMapService_IdenticalCoordinatesMerge(t *testing.T) {
	repo := &fakeVehicleRepo{vehicles: []*entity.Vehicle{
		vehicleAt(43.25, 76.95, entity.VehicleStatusActive),
		vehicleAt(43.25, 76.95, entity.VehicleStatusActive),
	}}
	service := NewFleetMapService(repo)

	clusters, err := service.Clusters(context.Background(), 7, allStatuses())
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.True(t, clusters[0].IsCluster)
	assert.Len(t, clusters[0].Vehicles, 2)
	assert.Equal(t, 76.95, clusters[0].Position[0])
	assert.Equal(t, 43.25, clusters[0].Position[1])
}

func TestFleetMapService_RadiusTiers(t *testing.T) {
	// Two vehicles 0.02 degrees apart in latitude.
	newRepo := func() *fakeVehicleRepo {
		return &fakeVehicleRepo{vehicles: []*entity.Vehicle{
			vehicleAt(43.25, 76.95, entity.VehicleStatusActive),
			vehicleAt(43.27, 76.95, entity.VehicleStatusActive),
		}}
	}

	tests := []struct {
		name         string
		zoom         int
		wantClusters int
	}{
		{name: "zoom 10 radius 0.01 keeps them apart", zoom: 10, wantClusters: 2},
		{name: "zoom 8 radius 0.03 merges", zoom: 8, wantClusters: 1},
		{name: "zoom 5 radius 0.05 merges", zoom: 5, wantClusters: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewFleetMapService(newRepo())

			clusters, err := service.Clusters(context.Background(), tt.zoom, allStatuses())
			require.NoError(t, err)
			assert.Len(t, clusters, tt.wantClusters)
		})
	}
}

func TestFleetMapService_GreedyClaimingIsNotTransitive(t *testing.T) {
	// v1..v3 form a chain at 0.04-degree steps. With radius 0.05 the first
	// vehicle claims the second but not the third, which then stands alone.
	repo := &fakeVehicleRepo{vehicles: []*entity.Vehicle{
		vehicleAt(43.00, 76.95, entity.VehicleStatusActive),
		vehicleAt(43.04, 76.95, entity.VehicleStatusActive),
		vehicleAt(43.08, 76.95, entity.VehicleStatusActive),
	}}
	service := NewFleetMapService(repo)

	clusters, err := service.Clusters(context.Background(), 5, allStatuses())
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.True(t, clusters[0].IsCluster)
	assert.Len(t, clusters[0].Vehicles, 2)
	assert.False(t, clusters[1].IsCluster)
}

func TestFleetMapService_CentroidIsArithmeticMean(t *testing.T) {
	repo := &fakeVehicleRepo{vehicles: []*entity.Vehicle{
		vehicleAt(43.00, 76.90, entity.VehicleStatusActive),
		vehicleAt(43.02, 76.94, entity.VehicleStatusActive),
	}}
	service := NewFleetMapService(repo)

	clusters, err := service.Clusters(context.Background(), 5, allStatuses())
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.InDelta(t, 76.92, clusters[0].Position[0], 1e-9)
	assert.InDelta(t, 43.01, clusters[0].Position[1], 1e-9)
}

func TestFleetMapService_FiltersStatusAndMissingLocation(t *testing.T) {
	noLocation := &entity.Vehicle{ID: uuid.New(), Status: entity.VehicleStatusActive}
	repo := &fakeVehicleRepo{vehicles: []*entity.Vehicle{
		vehicleAt(43.25, 76.95, entity.VehicleStatusActive),
		vehicleAt(43.26, 76.96, entity.VehicleStatusMaintenance),
		vehicleAt(43.27, 76.97, entity.VehicleStatusIdle),
		noLocation,
	}}
	service := NewFleetMapService(repo)

	clusters, err := service.Clusters(context.Background(), 12, usecase.StatusFilter{
		ShowActive: true,
		ShowIdle:   true,
	})
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	for _, c := range clusters {
		assert.NotEqual(t, entity.VehicleStatusMaintenance, c.Vehicles[0].Status)
		assert.NotNil(t, c.Vehicles[0].Location)
	}
}
