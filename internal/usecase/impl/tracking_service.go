package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fleetwatch/config"
	deliverycontext "fleetwatch/internal/delivery/context"
	"fleetwatch/internal/domain/entity"
	domainerrors "fleetwatch/internal/domain/errors"
	"fleetwatch/internal/domain/repository"
	"fleetwatch/internal/domain/service"
	"fleetwatch/internal/errors"
	"fleetwatch/internal/usecase"

	"github.com/google/uuid"
)

// tracker holds the live state for one route. Updates arrive from the push
// subscription and the poll loop; apply keeps them monotonic by recorded
// timestamp.
type tracker struct {
	mu    sync.Mutex
	state usecase.TrackingSnapshot

	cancelSub func()
	stopPoll  chan struct{}
	stopOnce  sync.Once
}

// apply installs a location only when it is strictly newer than the last
// applied one. Stale and duplicate points are dropped. A successful apply
// clears any previous feed error.
func (t *tracker) apply(loc *entity.VehicleLocation, status entity.RouteStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Location != nil && !loc.RecordedAt.After(t.state.Location.RecordedAt) {
		return false
	}

	t.state.Location = loc
	if status != "" {
		t.state.Status = status
	}
	t.state.FeedError = ""
	t.state.UpdatedAt = loc.RecordedAt

	return true
}

func (t *tracker) setFeedError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.FeedError = err.Error()
}

func (t *tracker) snapshot() *usecase.TrackingSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	copied := t.state
	if t.state.Location != nil {
		loc := *t.state.Location
		copied.Location = &loc
	}

	return &copied
}

// stop releases the subscription and the poll loop. Idempotent.
func (t *tracker) stop() {
	t.stopOnce.Do(func() {
		if t.cancelSub != nil {
			t.cancelSub()
		}
		close(t.stopPoll)
	})
}

type trackingService struct {
	cfg        *config.TrackingConfig
	txManager  repository.TransactionManager
	routeRepo  repository.RouteRepository
	liveRepo   repository.LiveRouteRepository
	logRepo    repository.PositionLogRepository
	publisher  service.PositionPublisher
	subscriber service.PositionSubscriber
	logger     *slog.Logger

	mu       sync.Mutex
	trackers map[uuid.UUID]*tracker
}

// NewTrackingService creates the live tracking feed. publisher and
// subscriber may be nil; ingestion then skips the push channel and trackers
// rely on polling alone.
func NewTrackingService(
	cfg *config.Config,
	txManager repository.TransactionManager,
	routeRepo repository.RouteRepository,
	liveRepo repository.LiveRouteRepository,
	logRepo repository.PositionLogRepository,
	publisher service.PositionPublisher,
	subscriber service.PositionSubscriber,
	logger *slog.Logger,
) usecase.TrackingUsecase {
	return &trackingService{
		cfg:        cfg.Tracking,
		txManager:  txManager,
		routeRepo:  routeRepo,
		liveRepo:   liveRepo,
		logRepo:    logRepo,
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
		trackers:   make(map[uuid.UUID]*tracker),
	}
}

// IngestPosition appends a GPS point to the log, refreshes the live row and
// the vehicle's last-known location in one transaction, then publishes the
// update on the push channel. Publish failures degrade to polling and are
// only logged.
func (s *trackingService) IngestPosition(ctx context.Context, routeID uuid.UUID, input *usecase.IngestPositionInput) error {
	location := entity.VehicleLocation{
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Heading:    input.Heading,
		SpeedKmh:   input.SpeedKmh,
		RecordedAt: input.RecordedAt,
	}
	if !location.Valid() {
		return domainerrors.ErrInvalidCoordinates
	}

	var route *entity.Route
	err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		routeRepo := repoFactory.NewRouteRepository()

		found, err := routeRepo.FindRouteByID(ctx, routeID)
		if err != nil {
			if errors.Is(err, repository.ErrRouteNotFound) {
				return domainerrors.ErrRouteNotFound
			}

			return errors.Wrap(err, "failed to find route")
		}
		route = found

		// First point moves a planned route into progress.
		if route.Status == entity.RouteStatusPlanned {
			route.Status = entity.RouteStatusInProgress
			if err := routeRepo.UpdateRoute(ctx, route); err != nil {
				return errors.Wrap(err, "failed to update route status")
			}
		}

		position := &entity.RoutePosition{
			ID:       uuid.New(),
			RouteID:  routeID,
			Location: location,
		}
		if err := repoFactory.NewPositionLogRepository().AppendPosition(ctx, position); err != nil {
			return errors.Wrap(err, "failed to append position")
		}

		var vehicleID uuid.UUID
		if route.VehicleID != nil {
			vehicleID = *route.VehicleID
		}

		live := &entity.LiveRoute{
			RouteID:   routeID,
			VehicleID: vehicleID,
			Location:  location,
			Status:    route.Status,
			UpdatedAt: location.RecordedAt,
		}
		if err := repoFactory.NewLiveRouteRepository().UpsertLiveRoute(ctx, live); err != nil {
			return errors.Wrap(err, "failed to upsert live route")
		}

		if route.VehicleID != nil {
			if err := repoFactory.NewVehicleRepository().UpdateVehicleLocation(ctx, *route.VehicleID, &location); err != nil {
				return errors.Wrap(err, "failed to update vehicle location")
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, route, &location)

	return nil
}

func (s *trackingService) publish(ctx context.Context, route *entity.Route, loc *entity.VehicleLocation) {
	if s.publisher == nil {
		return
	}

	event := &service.PositionEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		RouteID:   route.ID.String(),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Heading:   loc.Heading,
		SpeedKmh:  loc.SpeedKmh,
		Status:    string(route.Status),
		Recorded:  loc.RecordedAt.UnixMilli(),
	}
	if route.VehicleID != nil {
		event.VehicleID = route.VehicleID.String()
	}

	if err := s.publisher.PublishPosition(ctx, event); err != nil {
		s.logger.Warn("position publish failed",
			slog.String("route_id", route.ID.String()),
			slog.Any("error", err),
		)
	}
}

// Snapshot returns the tracker state for a route. The first call performs
// the initial load and starts the feed; that load is the only path that can
// fail. Later feed errors appear on the snapshot's FeedError field.
func (s *trackingService) Snapshot(ctx context.Context, routeID uuid.UUID) (*usecase.TrackingSnapshot, error) {
	s.mu.Lock()
	if existing, ok := s.trackers[routeID]; ok {
		s.mu.Unlock()

		return existing.snapshot(), nil
	}
	s.mu.Unlock()

	created, err := s.startTracker(ctx, routeID)
	if err != nil {
		return nil, err
	}

	return created.snapshot(), nil
}

// startTracker performs the initial load and wires the push subscription
// and poll loop for one route.
func (s *trackingService) startTracker(ctx context.Context, routeID uuid.UUID) (*tracker, error) {
	state, err := s.initialState(ctx, routeID)
	if err != nil {
		return nil, err
	}

	created := &tracker{
		state:    *state,
		stopPoll: make(chan struct{}),
	}

	if s.subscriber != nil {
		cancel, err := s.subscriber.Subscribe(context.Background(), routeID.String(),
			func(event *service.PositionEvent) {
				loc := event.Location()
				created.apply(&loc, entity.RouteStatus(event.Status))
			},
			func(subErr error) {
				created.setFeedError(subErr)
			},
		)
		if err != nil {
			// Push channel unavailable; the poll loop still runs.
			s.logger.Warn("position subscribe failed",
				slog.String("route_id", routeID.String()),
				slog.Any("error", err),
			)
			created.setFeedError(err)
		} else {
			created.cancelSub = cancel
		}
	}

	go s.pollLoop(routeID, created)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.trackers[routeID]; ok {
		// A concurrent caller won the race; release the duplicate feed.
		created.stop()

		return existing, nil
	}
	s.trackers[routeID] = created

	return created, nil
}

// initialState loads the starting snapshot: the live row when present,
// otherwise the most recent logged point.
func (s *trackingService) initialState(ctx context.Context, routeID uuid.UUID) (*usecase.TrackingSnapshot, error) {
	live, err := s.liveRepo.FindLiveRouteByRoute(ctx, routeID)
	if err == nil {
		loc := live.Location

		return &usecase.TrackingSnapshot{
			RouteID:   routeID,
			VehicleID: live.VehicleID,
			Location:  &loc,
			Status:    live.Status,
			UpdatedAt: live.UpdatedAt,
		}, nil
	}
	if !errors.Is(err, repository.ErrLiveRouteNotFound) {
		return nil, errors.Wrap(err, "failed to load live route")
	}

	route, err := s.routeRepo.FindRouteByID(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, domainerrors.ErrRouteNotFound
		}

		return nil, errors.Wrap(err, "failed to find route")
	}

	snapshot := &usecase.TrackingSnapshot{
		RouteID: routeID,
		Status:  route.Status,
	}
	if route.VehicleID != nil {
		snapshot.VehicleID = *route.VehicleID
	}

	latest, err := s.logRepo.FindLatestPosition(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrNoPositions) {
			return nil, domainerrors.ErrNoPositionData
		}

		return nil, errors.Wrap(err, "failed to load latest position")
	}

	loc := latest.Location
	snapshot.Location = &loc
	snapshot.UpdatedAt = loc.RecordedAt

	return snapshot, nil
}

// History returns the route's logged points in recorded order.
func (s *trackingService) History(ctx context.Context, routeID uuid.UUID, limit int) ([]*entity.RoutePosition, error) {
	if _, err := s.routeRepo.FindRouteByID(ctx, routeID); err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, domainerrors.ErrRouteNotFound
		}

		return nil, errors.Wrap(err, "failed to find route")
	}

	positions, err := s.logRepo.ListPositions(ctx, routeID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list positions")
	}

	return positions, nil
}

// pollLoop is the fallback path: it re-reads the position log on a fixed
// cadence and applies strictly newer points. Poll failures are swallowed
// into the tracker's feed error state.
func (s *trackingService) pollLoop(routeID uuid.UUID, t *tracker) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopPoll:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PollInterval)
			latest, err := s.logRepo.FindLatestPosition(ctx, routeID)
			cancel()
			if err != nil {
				if !errors.Is(err, repository.ErrNoPositions) {
					t.setFeedError(err)
				}

				continue
			}

			loc := latest.Location
			t.apply(&loc, "")
		}
	}
}

// StopTracking releases the feed for one route.
func (s *trackingService) StopTracking(routeID uuid.UUID) {
	s.mu.Lock()
	t, ok := s.trackers[routeID]
	if ok {
		delete(s.trackers, routeID)
	}
	s.mu.Unlock()

	if ok {
		t.stop()
	}
}

// StopAll releases every running feed. Called on shutdown.
func (s *trackingService) StopAll() {
	s.mu.Lock()
	trackers := make([]*tracker, 0, len(s.trackers))
	for id, t := range s.trackers {
		trackers = append(trackers, t)
		delete(s.trackers, id)
	}
	s.mu.Unlock()

	for _, t := range trackers {
		t.stop()
	}
}
