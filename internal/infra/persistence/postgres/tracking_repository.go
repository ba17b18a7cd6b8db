package postgres

import (
	"context"
	"time"

	"fleetwatch/internal/domain/entity"
	domainerrors "fleetwatch/internal/domain/errors"
	"fleetwatch/internal/domain/repository"
	"fleetwatch/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// liveRouteRepository implements the domain.LiveRouteRepository interface.
type liveRouteRepository struct {
	db *gorm.DB
}

// NewLiveRouteRepository is the constructor for liveRouteRepository.
func NewLiveRouteRepository(db *gorm.DB) repository.LiveRouteRepository {
	return &liveRouteRepository{db: db}
}

// UpsertLiveRoute inserts or replaces the live row for a route.
func (repo *liveRouteRepository) UpsertLiveRoute(ctx context.Context, live *entity.LiveRoute) error {
	liveM := fromLiveRouteDomain(live)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "route_id"}},
			UpdateAll: true,
		}).
		Create(liveM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert live route")
	}

	return nil
}

// FindLiveRouteByRoute retrieves the live row for a route.
func (repo *liveRouteRepository) FindLiveRouteByRoute(ctx context.Context, routeID uuid.UUID) (*entity.LiveRoute, error) {
	var liveM model.LiveRouteModel
	if err := repo.db.WithContext(ctx).First(&liveM, "route_id = ?", routeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrLiveRouteNotFound
		}

		return nil, errors.Wrap(err, "failed to find live route")
	}

	return toLiveRouteDomain(&liveM), nil
}

// UpdateLiveRouteStatus updates only the status of the live row.
func (repo *liveRouteRepository) UpdateLiveRouteStatus(ctx context.Context, routeID uuid.UUID, status entity.RouteStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.LiveRouteModel{}).
		Where("route_id = ?", routeID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update live route status")
	}
	if result.RowsAffected == 0 {
		return repository.ErrLiveRouteNotFound
	}

	return nil
}

// positionLogRepository implements the domain.PositionLogRepository interface.
type positionLogRepository struct {
	db *gorm.DB
}

// NewPositionLogRepository is the constructor for positionLogRepository.
func NewPositionLogRepository(db *gorm.DB) repository.PositionLogRepository {
	return &positionLogRepository{db: db}
}

// AppendPosition appends one raw point to the log.
func (repo *positionLogRepository) AppendPosition(ctx context.Context, position *entity.RoutePosition) error {
	positionM := fromRoutePositionDomain(position)

	if err := repo.db.WithContext(ctx).Create(positionM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to append position")
	}

	position.ID = positionM.ID

	return nil
}

// FindLatestPosition retrieves the most recent point for a route.
func (repo *positionLogRepository) FindLatestPosition(ctx context.Context, routeID uuid.UUID) (*entity.RoutePosition, error) {
	var positionM model.RoutePositionModel
	if err := repo.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Order("recorded_at DESC").
		First(&positionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNoPositions
		}

		return nil, errors.Wrap(err, "failed to find latest position")
	}

	return toRoutePositionDomain(&positionM), nil
}

// ListPositions retrieves the ordered trace for a route, oldest first.
func (repo *positionLogRepository) ListPositions(ctx context.Context, routeID uuid.UUID, limit int) ([]*entity.RoutePosition, error) {
	query := repo.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Order("recorded_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var positionModels []*model.RoutePositionModel
	if err := query.Find(&positionModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list positions")
	}

	positions := make([]*entity.RoutePosition, 0, len(positionModels))
	for _, positionM := range positionModels {
		positions = append(positions, toRoutePositionDomain(positionM))
	}

	return positions, nil
}

// --- Mapper Functions ---

// toLiveRouteDomain converts a GORM LiveRouteModel to a domain LiveRoute entity.
func toLiveRouteDomain(data *model.LiveRouteModel) *entity.LiveRoute {
	if data == nil {
		return nil
	}

	return &entity.LiveRoute{
		RouteID:   data.RouteID,
		VehicleID: data.VehicleID,
		Location: entity.VehicleLocation{
			Latitude:   data.Latitude,
			Longitude:  data.Longitude,
			Heading:    data.Heading,
			SpeedKmh:   data.SpeedKmh,
			RecordedAt: data.RecordedAt,
		},
		Status:    entity.RouteStatus(data.Status),
		UpdatedAt: data.UpdatedAt,
	}
}

// fromLiveRouteDomain converts a domain LiveRoute entity to a GORM LiveRouteModel.
func fromLiveRouteDomain(data *entity.LiveRoute) *model.LiveRouteModel {
	if data == nil {
		return nil
	}

	return &model.LiveRouteModel{
		RouteID:    data.RouteID,
		VehicleID:  data.VehicleID,
		Latitude:   data.Location.Latitude,
		Longitude:  data.Location.Longitude,
		Heading:    data.Location.Heading,
		SpeedKmh:   data.Location.SpeedKmh,
		Status:     string(data.Status),
		RecordedAt: data.Location.RecordedAt,
		UpdatedAt:  data.UpdatedAt,
	}
}

// toRoutePositionDomain converts a GORM RoutePositionModel to a domain RoutePosition entity.
func toRoutePositionDomain(data *model.RoutePositionModel) *entity.RoutePosition {
	if data == nil {
		return nil
	}

	return &entity.RoutePosition{
		ID:      data.ID,
		RouteID: data.RouteID,
		Location: entity.VehicleLocation{
			Latitude:   data.Latitude,
			Longitude:  data.Longitude,
			Heading:    data.Heading,
			SpeedKmh:   data.SpeedKmh,
			RecordedAt: data.RecordedAt,
		},
	}
}

// fromRoutePositionDomain converts a domain RoutePosition entity to a GORM RoutePositionModel.
func fromRoutePositionDomain(data *entity.RoutePosition) *model.RoutePositionModel {
	if data == nil {
		return nil
	}

	return &model.RoutePositionModel{
		ID:         data.ID,
		RouteID:    data.RouteID,
		Latitude:   data.Location.Latitude,
		Longitude:  data.Location.Longitude,
		Heading:    data.Location.Heading,
		SpeedKmh:   data.Location.SpeedKmh,
		RecordedAt: data.Location.RecordedAt,
	}
}
