package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"fleetwatch/config"
	"fleetwatch/internal/domain/entity"
	domainerrors "fleetwatch/internal/domain/errors"
	"fleetwatch/internal/domain/service"
	"fleetwatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingFixture struct {
	service    usecase.TrackingUsecase
	routes     *fakeRouteRepo
	lives      *fakeLiveRouteRepo
	positions  *fakePositionLog
	vehicles   *fakeVehicleRepo
	publisher  *fakePublisher
	subscriber *fakeSubscriber
}

func newTrackingFixture(pollInterval time.Duration) *trackingFixture {
	f := &trackingFixture{
		routes:     &fakeRouteRepo{},
		lives:      newFakeLiveRouteRepo(),
		positions:  newFakePositionLog(),
		vehicles:   &fakeVehicleRepo{},
		publisher:  &fakePublisher{},
		subscriber: &fakeSubscriber{},
	}

	txManager := &fakeTxManager{
		vehicles:  f.vehicles,
		routes:    f.routes,
		lives:     f.lives,
		positions: f.positions,
	}
	cfg := &config.Config{Tracking: &config.TrackingConfig{PollInterval: pollInterval}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewTrackingService(cfg, txManager, f.routes, f.lives, f.positions, f.publisher, f.subscriber, logger)

	return f
}

func (f *trackingFixture) addRoute(status entity.RouteStatus) *entity.Route {
	vehicleID := uuid.New()
	route := &entity.Route{
		ID:        uuid.New(),
		Status:    status,
		VehicleID: &vehicleID,
	}
	f.routes.routes = append(f.routes.routes, route)
	f.vehicles.vehicles = append(f.vehicles.vehicles, &entity.Vehicle{ID: vehicleID})

	return route
}

func locationAt(recorded time.Time) entity.VehicleLocation {
	return entity.VehicleLocation{
		Latitude:   43.238949,
		Longitude:  76.889709,
		RecordedAt: recorded,
	}
}

func TestTrackingService_SnapshotFromLiveRow(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusInProgress)

	recorded := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.lives.UpsertLiveRoute(context.Background(), &entity.LiveRoute{
		RouteID:   route.ID,
		VehicleID: *route.VehicleID,
		Location:  locationAt(recorded),
		Status:    entity.RouteStatusInProgress,
		UpdatedAt: recorded,
	}))

	snapshot, err := f.service.Snapshot(context.Background(), route.ID)
	defer f.service.StopAll()

	require.NoError(t, err)
	require.NotNil(t, snapshot.Location)
	assert.Equal(t, route.ID, snapshot.RouteID)
	assert.Equal(t, *route.VehicleID, snapshot.VehicleID)
	assert.Equal(t, entity.RouteStatusInProgress, snapshot.Status)
	assert.True(t, snapshot.Location.RecordedAt.Equal(recorded))
	assert.Empty(t, snapshot.FeedError)
}

func TestTrackingService_SnapshotFallsBackToPositionLog(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusInProgress)

	recorded := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.positions.AppendPosition(context.Background(), &entity.RoutePosition{
		ID:       uuid.New(),
		RouteID:  route.ID,
		Location: locationAt(recorded),
	}))

	snapshot, err := f.service.Snapshot(context.Background(), route.ID)
	defer f.service.StopAll()

	require.NoError(t, err)
	require.NotNil(t, snapshot.Location)
	assert.True(t, snapshot.Location.RecordedAt.Equal(recorded))
}

func TestTrackingService_SnapshotWithoutAnyPositions(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusPlanned)

	_, err := f.service.Snapshot(context.Background(), route.ID)

	assert.ErrorIs(t, err, domainerrors.ErrNoPositionData)
}

func TestTrackingService_SnapshotUnknownRoute(t *testing.T) {
	f := newTrackingFixture(time.Hour)

	_, err := f.service.Snapshot(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domainerrors.ErrRouteNotFound)
}

func TestTrackingService_PushUpdatesAreMonotonic(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusInProgress)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.lives.UpsertLiveRoute(context.Background(), &entity.LiveRoute{
		RouteID:   route.ID,
		VehicleID: *route.VehicleID,
		Location:  locationAt(base),
		Status:    entity.RouteStatusInProgress,
		UpdatedAt: base,
	}))

	_, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	defer f.service.StopAll()

	push := func(recorded time.Time, lat float64) {
		f.subscriber.push(&service.PositionEvent{
			RouteID:   route.ID.String(),
			VehicleID: route.VehicleID.String(),
			Latitude:  lat,
			Longitude: 76.889709,
			Status:    string(entity.RouteStatusInProgress),
			Recorded:  recorded.UnixMilli(),
		})
	}

	// Out-of-order arrival: the middle timestamp shows up last and must be
	// dropped, leaving the newest applied point in place.
	push(base.Add(10*time.Second), 43.30)
	push(base.Add(30*time.Second), 43.50)
	push(base.Add(20*time.Second), 43.40)

	snapshot, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	assert.InDelta(t, 43.50, snapshot.Location.Latitude, 1e-9)
	assert.True(t, snapshot.Location.RecordedAt.Equal(base.Add(30*time.Second)))
}

func TestTrackingService_DuplicateTimestampDropped(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusInProgress)

	recorded := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.lives.UpsertLiveRoute(context.Background(), &entity.LiveRoute{
		RouteID:   route.ID,
		VehicleID: *route.VehicleID,
		Location:  locationAt(recorded),
		Status:    entity.RouteStatusInProgress,
		UpdatedAt: recorded,
	}))

	_, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	defer f.service.StopAll()

	f.subscriber.push(&service.PositionEvent{
		RouteID:  route.ID.String(),
		Latitude: 44.0,
		Recorded: recorded.UnixMilli(),
	})

	snapshot, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	assert.InDelta(t, 43.238949, snapshot.Location.Latitude, 1e-9)
}

func TestTrackingService_PollAppliesNewerPoint(t *testing.T) {
	f := newTrackingFixture(10 * time.Millisecond)
	route := f.addRoute(entity.RouteStatusInProgress)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.positions.AppendPosition(context.Background(), &entity.RoutePosition{
		ID:       uuid.New(),
		RouteID:  route.ID,
		Location: locationAt(base),
	}))

	_, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	defer f.service.StopAll()

	newer := locationAt(base.Add(time.Minute))
	newer.Latitude = 44.0
	require.NoError(t, f.positions.AppendPosition(context.Background(), &entity.RoutePosition{
		ID:       uuid.New(),
		RouteID:  route.ID,
		Location: newer,
	}))

	assert.Eventually(t, func() bool {
		snapshot, snapErr := f.service.Snapshot(context.Background(), route.ID)

		return snapErr == nil && snapshot.Location.RecordedAt.Equal(newer.RecordedAt)
	}, time.Second, 5*time.Millisecond)
}

func TestTrackingService_SubscriptionErrorSurfacesOnSnapshot(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusInProgress)

	recorded := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.lives.UpsertLiveRoute(context.Background(), &entity.LiveRoute{
		RouteID:   route.ID,
		VehicleID: *route.VehicleID,
		Location:  locationAt(recorded),
		Status:    entity.RouteStatusInProgress,
		UpdatedAt: recorded,
	}))

	_, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	defer f.service.StopAll()

	f.subscriber.pushError(errors.New("stream reset"))

	snapshot, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	assert.Equal(t, "stream reset", snapshot.FeedError)

	// A newer applied point clears the error state.
	f.subscriber.push(&service.PositionEvent{
		RouteID:  route.ID.String(),
		Latitude: 43.3,
		Recorded: recorded.Add(time.Second).UnixMilli(),
	})

	snapshot, err = f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.FeedError)
}

func TestTrackingService_StopTrackingCancelsSubscription(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusInProgress)

	recorded := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.lives.UpsertLiveRoute(context.Background(), &entity.LiveRoute{
		RouteID:   route.ID,
		VehicleID: *route.VehicleID,
		Location:  locationAt(recorded),
		Status:    entity.RouteStatusInProgress,
		UpdatedAt: recorded,
	}))

	_, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)

	f.service.StopTracking(route.ID)

	assert.True(t, f.subscriber.wasCanceled())
}

func TestTrackingService_CompletedStatusKeepsFeedOpen(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusInProgress)

	recorded := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.lives.UpsertLiveRoute(context.Background(), &entity.LiveRoute{
		RouteID:   route.ID,
		VehicleID: *route.VehicleID,
		Location:  locationAt(recorded),
		Status:    entity.RouteStatusInProgress,
		UpdatedAt: recorded,
	}))

	_, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	defer f.service.StopAll()

	f.subscriber.push(&service.PositionEvent{
		RouteID:  route.ID.String(),
		Latitude: 43.3,
		Status:   string(entity.RouteStatusCompleted),
		Recorded: recorded.Add(time.Second).UnixMilli(),
	})

	snapshot, err := f.service.Snapshot(context.Background(), route.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RouteStatusCompleted, snapshot.Status)
	assert.False(t, f.subscriber.wasCanceled())
}

func TestTrackingService_IngestPosition(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusPlanned)

	recorded := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := f.service.IngestPosition(context.Background(), route.ID, &usecase.IngestPositionInput{
		Latitude:   43.238949,
		Longitude:  76.889709,
		RecordedAt: recorded,
	})
	require.NoError(t, err)

	// Log row, live row, vehicle location and push event all written.
	latest, err := f.positions.FindLatestPosition(context.Background(), route.ID)
	require.NoError(t, err)
	assert.True(t, latest.Location.RecordedAt.Equal(recorded))

	live, err := f.lives.FindLiveRouteByRoute(context.Background(), route.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RouteStatusInProgress, live.Status)
	assert.Equal(t, *route.VehicleID, live.VehicleID)

	require.NotNil(t, f.vehicles.vehicles[0].Location)
	assert.InDelta(t, 43.238949, f.vehicles.vehicles[0].Location.Latitude, 1e-9)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, route.ID.String(), f.publisher.events[0].RouteID)
	assert.Equal(t, recorded.UnixMilli(), f.publisher.events[0].Recorded)

	// The first point moves a planned route into progress.
	assert.Equal(t, entity.RouteStatusInProgress, route.Status)
}

func TestTrackingService_IngestRejectsInvalidCoordinates(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusInProgress)

	err := f.service.IngestPosition(context.Background(), route.ID, &usecase.IngestPositionInput{
		Latitude:   91.0,
		Longitude:  76.889709,
		RecordedAt: time.Now(),
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCoordinates)
}

func TestTrackingService_HistoryReturnsLoggedPoints(t *testing.T) {
	f := newTrackingFixture(time.Hour)
	route := f.addRoute(entity.RouteStatusInProgress)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := f.service.IngestPosition(context.Background(), route.ID, &usecase.IngestPositionInput{
			Latitude:   43.238949 + float64(i)*0.001,
			Longitude:  76.889709,
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	all, err := f.service.History(context.Background(), route.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Location.RecordedAt.Before(all[2].Location.RecordedAt))

	limited, err := f.service.History(context.Background(), route.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestTrackingService_HistoryUnknownRoute(t *testing.T) {
	f := newTrackingFixture(time.Hour)

	_, err := f.service.History(context.Background(), uuid.New(), 0)

	assert.ErrorIs(t, err, domainerrors.ErrRouteNotFound)
}

func TestTrackingService_IngestUnknownRoute(t *testing.T) {
	f := newTrackingFixture(time.Hour)

	err := f.service.IngestPosition(context.Background(), uuid.New(), &usecase.IngestPositionInput{
		Latitude:   43.238949,
		Longitude:  76.889709,
		RecordedAt: time.Now(),
	})

	assert.ErrorIs(t, err, domainerrors.ErrRouteNotFound)
}
