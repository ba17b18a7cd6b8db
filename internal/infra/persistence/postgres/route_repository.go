package postgres

import (
	"context"

	"fleetwatch/internal/domain/entity"
	domainerrors "fleetwatch/internal/domain/errors"
	"fleetwatch/internal/domain/repository"
	"fleetwatch/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// routeRepository implements the domain.RouteRepository interface.
type routeRepository struct {
	db *gorm.DB
}

// NewRouteRepository is the constructor for routeRepository.
func NewRouteRepository(db *gorm.DB) repository.RouteRepository {
	return &routeRepository{db: db}
}

// CreateRoute persists a new route.
func (repo *routeRepository) CreateRoute(ctx context.Context, route *entity.Route) error {
	routeM := fromRouteDomain(route)

	if err := repo.db.WithContext(ctx).Create(routeM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid vehicle or driver reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create route")
	}

	route.ID = routeM.ID
	route.CreatedAt = routeM.CreatedAt
	route.UpdatedAt = routeM.UpdatedAt

	return nil
}

// FindRouteByID retrieves a route by its unique ID.
func (repo *routeRepository) FindRouteByID(ctx context.Context, id uuid.UUID) (*entity.Route, error) {
	var routeM model.RouteModel
	if err := repo.db.WithContext(ctx).First(&routeM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRouteNotFound
		}

		return nil, errors.Wrap(err, "failed to find route by ID")
	}

	return toRouteDomain(&routeM), nil
}

// ListRoutes retrieves all routes, most recently created first.
func (repo *routeRepository) ListRoutes(ctx context.Context) ([]*entity.Route, error) {
	var routeModels []*model.RouteModel
	if err := repo.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&routeModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list routes")
	}

	return toRouteDomainSlice(routeModels), nil
}

// ListRoutesByStatus retrieves routes filtered to a single status.
func (repo *routeRepository) ListRoutesByStatus(ctx context.Context, status entity.RouteStatus) ([]*entity.Route, error) {
	var routeModels []*model.RouteModel
	if err := repo.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Find(&routeModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list routes by status")
	}

	return toRouteDomainSlice(routeModels), nil
}

// UpdateRoute updates an existing route record.
func (repo *routeRepository) UpdateRoute(ctx context.Context, route *entity.Route) error {
	routeM := fromRouteDomain(route)

	if err := repo.db.WithContext(ctx).Save(routeM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid vehicle or driver reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update route")
	}

	route.UpdatedAt = routeM.UpdatedAt

	return nil
}

// --- Mapper Functions ---

// toRouteDomain converts a GORM RouteModel to a domain Route entity.
func toRouteDomain(data *model.RouteModel) *entity.Route {
	if data == nil {
		return nil
	}

	return &entity.Route{
		ID:          data.ID,
		Name:        data.Name,
		Origin:      data.Origin,
		Destination: data.Destination,
		DistanceKm:  data.DistanceKm,
		CargoDesc:   data.CargoDesc,
		Status:      entity.RouteStatus(data.Status),
		VehicleID:   data.VehicleID,
		DriverID:    data.DriverID,
		ClientQuote: data.ClientQuote,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func toRouteDomainSlice(models []*model.RouteModel) []*entity.Route {
	routes := make([]*entity.Route, 0, len(models))
	for _, routeM := range models {
		routes = append(routes, toRouteDomain(routeM))
	}

	return routes
}

// fromRouteDomain converts a domain Route entity to a GORM RouteModel.
func fromRouteDomain(data *entity.Route) *model.RouteModel {
	if data == nil {
		return nil
	}

	return &model.RouteModel{
		ID:          data.ID,
		Name:        data.Name,
		Origin:      data.Origin,
		Destination: data.Destination,
		DistanceKm:  data.DistanceKm,
		CargoDesc:   data.CargoDesc,
		Status:      string(data.Status),
		VehicleID:   data.VehicleID,
		DriverID:    data.DriverID,
		ClientQuote: data.ClientQuote,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
