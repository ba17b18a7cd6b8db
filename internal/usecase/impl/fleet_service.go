package impl

import (
	"context"
	"time"

	"fleetwatch/internal/domain/entity"
	domainerrors "fleetwatch/internal/domain/errors"
	"fleetwatch/internal/domain/repository"
	"fleetwatch/internal/errors"
	"fleetwatch/internal/usecase"

	"github.com/google/uuid"
)

type fleetService struct {
	vehicleRepo repository.VehicleRepository
	driverRepo  repository.DriverRepository
	routeRepo   repository.RouteRepository
	liveRepo    repository.LiveRouteRepository
}

// NewFleetService creates the CRUD service behind the vehicle, driver and
// route tables.
func NewFleetService(
	vehicleRepo repository.VehicleRepository,
	driverRepo repository.DriverRepository,
	routeRepo repository.RouteRepository,
	liveRepo repository.LiveRouteRepository,
) usecase.FleetUsecase {
	return &fleetService{
		vehicleRepo: vehicleRepo,
		driverRepo:  driverRepo,
		routeRepo:   routeRepo,
		liveRepo:    liveRepo,
	}
}

func (s *fleetService) ListVehicles(ctx context.Context) ([]*entity.Vehicle, error) {
	vehicles, err := s.vehicleRepo.ListVehicles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vehicles")
	}

	return vehicles, nil
}

func (s *fleetService) GetVehicle(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindVehicleByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return nil, domainerrors.ErrVehicleNotFound
		}

		return nil, errors.Wrap(err, "failed to find vehicle")
	}

	return vehicle, nil
}

func (s *fleetService) CreateVehicle(ctx context.Context, input *usecase.CreateVehicleInput) (*entity.Vehicle, error) {
	now := time.Now()
	vehicle := &entity.Vehicle{
		ID:          uuid.New(),
		PlateNumber: input.PlateNumber,
		Model:       input.Model,
		Status:      entity.VehicleStatusIdle,
		MileageKm:   input.MileageKm,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.vehicleRepo.CreateVehicle(ctx, vehicle); err != nil {
		if errors.Is(err, repository.ErrPlateNumberConflict) {
			return nil, domainerrors.ErrVehicleAlreadyExists
		}

		return nil, errors.Wrap(err, "failed to create vehicle")
	}

	return vehicle, nil
}

func (s *fleetService) UpdateVehicle(ctx context.Context, id uuid.UUID, input *usecase.UpdateVehicleInput) (*entity.Vehicle, error) {
	vehicle, err := s.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	applyVehicleUpdates(vehicle, input)

	if err := s.vehicleRepo.UpdateVehicle(ctx, vehicle); err != nil {
		return nil, errors.Wrap(err, "failed to update vehicle")
	}

	return vehicle, nil
}

func applyVehicleUpdates(vehicle *entity.Vehicle, input *usecase.UpdateVehicleInput) {
	if input.Model != nil {
		vehicle.Model = *input.Model
	}
	if input.Status != nil {
		vehicle.Status = *input.Status
	}
	if input.MileageKm != nil {
		vehicle.MileageKm = *input.MileageKm
	}
	if input.NextService != nil {
		vehicle.NextService = input.NextService
	}
	vehicle.UpdatedAt = time.Now()
}

func (s *fleetService) ListDrivers(ctx context.Context) ([]*entity.Driver, error) {
	drivers, err := s.driverRepo.ListDrivers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list drivers")
	}

	return drivers, nil
}

func (s *fleetService) GetDriver(ctx context.Context, id uuid.UUID) (*entity.Driver, error) {
	driver, err := s.driverRepo.FindDriverByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDriverNotFound) {
			return nil, domainerrors.ErrDriverNotFound
		}

		return nil, errors.Wrap(err, "failed to find driver")
	}

	return driver, nil
}

func (s *fleetService) CreateDriver(ctx context.Context, input *usecase.CreateDriverInput) (*entity.Driver, error) {
	now := time.Now()
	driver := &entity.Driver{
		ID:            uuid.New(),
		Name:          input.Name,
		LicenseNumber: input.LicenseNumber,
		LicenseExpiry: input.LicenseExpiry,
		Phone:         input.Phone,
		Status:        entity.DriverStatusAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.driverRepo.CreateDriver(ctx, driver); err != nil {
		return nil, errors.Wrap(err, "failed to create driver")
	}

	return driver, nil
}

func (s *fleetService) UpdateDriver(ctx context.Context, id uuid.UUID, input *usecase.UpdateDriverInput) (*entity.Driver, error) {
	driver, err := s.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}

	// An assigned vehicle must exist before the assignment is stored.
	if input.VehicleID != nil {
		if _, err := s.GetVehicle(ctx, *input.VehicleID); err != nil {
			return nil, err
		}
	}

	applyDriverUpdates(driver, input)

	if err := s.driverRepo.UpdateDriver(ctx, driver); err != nil {
		return nil, errors.Wrap(err, "failed to update driver")
	}

	return driver, nil
}

func applyDriverUpdates(driver *entity.Driver, input *usecase.UpdateDriverInput) {
	if input.Name != nil {
		driver.Name = *input.Name
	}
	if input.Phone != nil {
		driver.Phone = *input.Phone
	}
	if input.Status != nil {
		driver.Status = *input.Status
	}
	if input.LicenseExpiry != nil {
		driver.LicenseExpiry = input.LicenseExpiry
	}
	if input.VehicleID != nil {
		driver.VehicleID = input.VehicleID
	}
	if input.DeviceTokens != nil {
		driver.DeviceTokens = input.DeviceTokens
	}
	driver.UpdatedAt = time.Now()
}

func (s *fleetService) ListRoutes(ctx context.Context) ([]*entity.Route, error) {
	routes, err := s.routeRepo.ListRoutes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list routes")
	}

	return routes, nil
}

func (s *fleetService) ListRoutesByStatus(ctx context.Context, status entity.RouteStatus) ([]*entity.Route, error) {
	routes, err := s.routeRepo.ListRoutesByStatus(ctx, status)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list routes by status")
	}

	return routes, nil
}

func (s *fleetService) GetRoute(ctx context.Context, id uuid.UUID) (*entity.Route, error) {
	route, err := s.routeRepo.FindRouteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, domainerrors.ErrRouteNotFound
		}

		return nil, errors.Wrap(err, "failed to find route")
	}

	return route, nil
}

func (s *fleetService) CreateRoute(ctx context.Context, input *usecase.CreateRouteInput) (*entity.Route, error) {
	if input.VehicleID != nil {
		if _, err := s.GetVehicle(ctx, *input.VehicleID); err != nil {
			return nil, err
		}
	}
	if input.DriverID != nil {
		if _, err := s.GetDriver(ctx, *input.DriverID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	route := &entity.Route{
		ID:          uuid.New(),
		Name:        input.Name,
		Origin:      input.Origin,
		Destination: input.Destination,
		DistanceKm:  input.DistanceKm,
		CargoDesc:   input.CargoDesc,
		Status:      entity.RouteStatusPlanned,
		VehicleID:   input.VehicleID,
		DriverID:    input.DriverID,
		ClientQuote: input.ClientQuote,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.routeRepo.CreateRoute(ctx, route); err != nil {
		return nil, errors.Wrap(err, "failed to create route")
	}

	return route, nil
}

func (s *fleetService) UpdateRoute(ctx context.Context, id uuid.UUID, input *usecase.UpdateRouteInput) (*entity.Route, error) {
	route, err := s.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}

	// Terminal routes are frozen; only their records remain readable.
	if route.IsTerminal() {
		return nil, domainerrors.ErrRouteCompleted
	}

	if input.VehicleID != nil {
		if _, err := s.GetVehicle(ctx, *input.VehicleID); err != nil {
			return nil, err
		}
	}
	if input.DriverID != nil {
		if _, err := s.GetDriver(ctx, *input.DriverID); err != nil {
			return nil, err
		}
	}

	applyRouteUpdates(route, input)

	if err := s.routeRepo.UpdateRoute(ctx, route); err != nil {
		return nil, errors.Wrap(err, "failed to update route")
	}

	// Keep the live tracking row in step with a status change. A missing
	// row just means nothing has been ingested for this route yet.
	if input.Status != nil {
		if err := s.liveRepo.UpdateLiveRouteStatus(ctx, id, route.Status); err != nil &&
			!errors.Is(err, repository.ErrLiveRouteNotFound) {
			return nil, errors.Wrap(err, "failed to update live route status")
		}
	}

	return route, nil
}

func applyRouteUpdates(route *entity.Route, input *usecase.UpdateRouteInput) {
	if input.Status != nil {
		route.Status = *input.Status
	}
	if input.VehicleID != nil {
		route.VehicleID = input.VehicleID
	}
	if input.DriverID != nil {
		route.DriverID = input.DriverID
	}
	if input.ClientQuote != nil {
		route.ClientQuote = *input.ClientQuote
	}
	route.UpdatedAt = time.Now()
}
