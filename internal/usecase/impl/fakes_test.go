package impl

import (
	"context"
	"sync"

	"fleetwatch/internal/domain/entity"
	"fleetwatch/internal/domain/repository"
	"fleetwatch/internal/domain/service"

	"github.com/google/uuid"
)

// Hand-written fakes for the repository and provider interfaces used by the
// service tests.

type fakeVehicleRepo struct {
	vehicles []*entity.Vehicle
	err      error
}

func (f *fakeVehicleRepo) CreateVehicle(_ context.Context, vehicle *entity.Vehicle) error {
	f.vehicles = append(f.vehicles, vehicle)

	return f.err
}

func (f *fakeVehicleRepo) FindVehicleByID(_ context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, v := range f.vehicles {
		if v.ID == id {
			return v, nil
		}
	}

	return nil, repository.ErrVehicleNotFound
}

func (f *fakeVehicleRepo) ListVehicles(_ context.Context) ([]*entity.Vehicle, error) {
	return f.vehicles, f.err
}

func (f *fakeVehicleRepo) UpdateVehicle(_ context.Context, _ *entity.Vehicle) error {
	return f.err
}

func (f *fakeVehicleRepo) UpdateVehicleLocation(_ context.Context, id uuid.UUID, location *entity.VehicleLocation) error {
	for _, v := range f.vehicles {
		if v.ID == id {
			v.Location = location
		}
	}

	return f.err
}

type fakeDriverRepo struct {
	drivers []*entity.Driver
	err     error
}

func (f *fakeDriverRepo) CreateDriver(_ context.Context, driver *entity.Driver) error {
	f.drivers = append(f.drivers, driver)

	return f.err
}

func (f *fakeDriverRepo) FindDriverByID(_ context.Context, id uuid.UUID) (*entity.Driver, error) {
	for _, d := range f.drivers {
		if d.ID == id {
			return d, nil
		}
	}

	return nil, repository.ErrDriverNotFound
}

func (f *fakeDriverRepo) ListDrivers(_ context.Context) ([]*entity.Driver, error) {
	return f.drivers, f.err
}

func (f *fakeDriverRepo) UpdateDriver(_ context.Context, _ *entity.Driver) error {
	return f.err
}

func (f *fakeDriverRepo) FindDriverByVehicle(_ context.Context, vehicleID uuid.UUID) (*entity.Driver, error) {
	for _, d := range f.drivers {
		if d.VehicleID != nil && *d.VehicleID == vehicleID {
			return d, nil
		}
	}

	return nil, repository.ErrDriverNotFound
}

type fakeRouteRepo struct {
	routes []*entity.Route
	err    error
}

func (f *fakeRouteRepo) CreateRoute(_ context.Context, route *entity.Route) error {
	f.routes = append(f.routes, route)

	return f.err
}

func (f *fakeRouteRepo) FindRouteByID(_ context.Context, id uuid.UUID) (*entity.Route, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.routes {
		if r.ID == id {
			return r, nil
		}
	}

	return nil, repository.ErrRouteNotFound
}

func (f *fakeRouteRepo) ListRoutes(_ context.Context) ([]*entity.Route, error) {
	return f.routes, f.err
}

func (f *fakeRouteRepo) ListRoutesByStatus(_ context.Context, status entity.RouteStatus) ([]*entity.Route, error) {
	var out []*entity.Route
	for _, r := range f.routes {
		if r.Status == status {
			out = append(out, r)
		}
	}

	return out, f.err
}

func (f *fakeRouteRepo) UpdateRoute(_ context.Context, _ *entity.Route) error {
	return f.err
}

type fakeLiveRouteRepo struct {
	mu    sync.Mutex
	lives map[uuid.UUID]*entity.LiveRoute
	err   error
}

func newFakeLiveRouteRepo() *fakeLiveRouteRepo {
	return &fakeLiveRouteRepo{lives: make(map[uuid.UUID]*entity.LiveRoute)}
}

func (f *fakeLiveRouteRepo) UpsertLiveRoute(_ context.Context, live *entity.LiveRoute) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lives[live.RouteID] = live

	return f.err
}

func (f *fakeLiveRouteRepo) FindLiveRouteByRoute(_ context.Context, routeID uuid.UUID) (*entity.LiveRoute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	live, ok := f.lives[routeID]
	if !ok {
		return nil, repository.ErrLiveRouteNotFound
	}

	return live, nil
}

func (f *fakeLiveRouteRepo) UpdateLiveRouteStatus(_ context.Context, routeID uuid.UUID, status entity.RouteStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	live, ok := f.lives[routeID]
	if !ok {
		return repository.ErrLiveRouteNotFound
	}
	live.Status = status

	return nil
}

type fakePositionLog struct {
	mu        sync.Mutex
	positions map[uuid.UUID][]*entity.RoutePosition
	err       error
}

func newFakePositionLog() *fakePositionLog {
	return &fakePositionLog{positions: make(map[uuid.UUID][]*entity.RoutePosition)}
}

func (f *fakePositionLog) AppendPosition(_ context.Context, position *entity.RoutePosition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positions[position.RouteID] = append(f.positions[position.RouteID], position)

	return f.err
}

func (f *fakePositionLog) FindLatestPosition(_ context.Context, routeID uuid.UUID) (*entity.RoutePosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	points := f.positions[routeID]
	if len(points) == 0 {
		return nil, repository.ErrNoPositions
	}

	latest := points[0]
	for _, p := range points[1:] {
		if p.Location.RecordedAt.After(latest.Location.RecordedAt) {
			latest = p
		}
	}

	return latest, nil
}

func (f *fakePositionLog) ListPositions(_ context.Context, routeID uuid.UUID, limit int) ([]*entity.RoutePosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	points := f.positions[routeID]
	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}

	return points, f.err
}

// fakeTxManager runs the callback against the shared fakes without any
// transactional behavior.
type fakeTxManager struct {
	vehicles  *fakeVehicleRepo
	routes    *fakeRouteRepo
	lives     *fakeLiveRouteRepo
	positions *fakePositionLog
}

func (f *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(f)
}

func (f *fakeTxManager) NewVehicleRepository() repository.VehicleRepository {
	return f.vehicles
}

func (f *fakeTxManager) NewRouteRepository() repository.RouteRepository {
	return f.routes
}

func (f *fakeTxManager) NewLiveRouteRepository() repository.LiveRouteRepository {
	return f.lives
}

func (f *fakeTxManager) NewPositionLogRepository() repository.PositionLogRepository {
	return f.positions
}

// fakeGenerator scripts the provider: a queue of responses or a fixed error.
type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeGenerator) Generate(_ context.Context, req *service.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)

	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "{}", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}

	return resp, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
	tokens [][]string
	err    error
}

func (f *fakeNotifier) SendBatchNotification(_ context.Context, tokens []string, title, _ string, _ map[string]string) (int, int, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	f.tokens = append(f.tokens, tokens)

	return len(tokens), 0, nil, f.err
}

func (f *fakeNotifier) SendSingleNotification(_ context.Context, token, title, _ string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	f.tokens = append(f.tokens, []string{token})

	return f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*service.PositionEvent
	err    error
}

func (f *fakePublisher) PublishPosition(_ context.Context, event *service.PositionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)

	return f.err
}

func (f *fakePublisher) Close() error {
	return nil
}

// fakeSubscriber hands the test a handle to push events into the feed.
type fakeSubscriber struct {
	mu       sync.Mutex
	onEvent  func(*service.PositionEvent)
	onError  func(error)
	canceled bool
	err      error
}

func (f *fakeSubscriber) Subscribe(_ context.Context, _ string, onEvent func(*service.PositionEvent), onError func(error)) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.onEvent = onEvent
	f.onError = onError
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.canceled = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeSubscriber) Close() error {
	return nil
}

func (f *fakeSubscriber) push(event *service.PositionEvent) {
	f.mu.Lock()
	handler := f.onEvent
	f.mu.Unlock()
	if handler != nil {
		handler(event)
	}
}

func (f *fakeSubscriber) pushError(err error) {
	f.mu.Lock()
	handler := f.onError
	f.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}

func (f *fakeSubscriber) wasCanceled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.canceled
}
