// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
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
)

// vehicleRepository implements the domain.VehicleRepository interface.
type vehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository is the constructor for vehicleRepository.
func NewVehicleRepository(db *gorm.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

// CreateVehicle persists a new vehicle.
func (repo *vehicleRepository) CreateVehicle(ctx context.Context, vehicle *entity.Vehicle) error {
	vehicleM := fromVehicleDomain(vehicle)

	if err := repo.db.WithContext(ctx).Create(vehicleM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrPlateNumberConflict
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create vehicle")
	}

	vehicle.ID = vehicleM.ID
	vehicle.CreatedAt = vehicleM.CreatedAt
	vehicle.UpdatedAt = vehicleM.UpdatedAt

	return nil
}

// FindVehicleByID retrieves a vehicle by its unique ID.
func (repo *vehicleRepository) FindVehicleByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	var vehicleM model.VehicleModel
	if err := repo.db.WithContext(ctx).First(&vehicleM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVehicleNotFound
		}

		return nil, errors.Wrap(err, "failed to find vehicle by ID")
	}

	return toVehicleDomain(&vehicleM), nil
}

// ListVehicles retrieves all vehicles, including last-known locations.
func (repo *vehicleRepository) ListVehicles(ctx context.Context) ([]*entity.Vehicle, error) {
	var vehicleModels []*model.VehicleModel
	if err := repo.db.WithContext(ctx).
		Order("plate_number ASC").
		Find(&vehicleModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list vehicles")
	}

	vehicles := make([]*entity.Vehicle, 0, len(vehicleModels))
	for _, vehicleM := range vehicleModels {
		vehicles = append(vehicles, toVehicleDomain(vehicleM))
	}

	return vehicles, nil
}

// UpdateVehicle updates an existing vehicle record.
func (repo *vehicleRepository) UpdateVehicle(ctx context.Context, vehicle *entity.Vehicle) error {
	vehicleM := fromVehicleDomain(vehicle)

	result := repo.db.WithContext(ctx).Save(vehicleM)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrPlateNumberConflict
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update vehicle")
	}

	vehicle.UpdatedAt = vehicleM.UpdatedAt

	return nil
}

// UpdateVehicleLocation updates only the last-known location columns.
func (repo *vehicleRepository) UpdateVehicleLocation(ctx context.Context, id uuid.UUID, location *entity.VehicleLocation) error {
	result := repo.db.WithContext(ctx).
		Model(&model.VehicleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_latitude":    location.Latitude,
			"last_longitude":   location.Longitude,
			"last_heading":     location.Heading,
			"last_speed_kmh":   location.SpeedKmh,
			"last_recorded_at": location.RecordedAt,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update vehicle location")
	}
	if result.RowsAffected == 0 {
		return repository.ErrVehicleNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toVehicleDomain converts a GORM VehicleModel to a domain Vehicle entity.
func toVehicleDomain(data *model.VehicleModel) *entity.Vehicle {
	if data == nil {
		return nil
	}

	vehicle := &entity.Vehicle{
		ID:          data.ID,
		PlateNumber: data.PlateNumber,
		Model:       data.Model,
		Status:      entity.VehicleStatus(data.Status),
		MileageKm:   data.MileageKm,
		NextService: data.NextService,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}

	if data.LastLatitude != nil && data.LastLongitude != nil && data.LastRecordedAt != nil {
		vehicle.Location = &entity.VehicleLocation{
			Latitude:   *data.LastLatitude,
			Longitude:  *data.LastLongitude,
			Heading:    data.LastHeading,
			SpeedKmh:   data.LastSpeedKmh,
			RecordedAt: *data.LastRecordedAt,
		}
	}

	return vehicle
}

// fromVehicleDomain converts a domain Vehicle entity to a GORM VehicleModel.
func fromVehicleDomain(data *entity.Vehicle) *model.VehicleModel {
	if data == nil {
		return nil
	}

	vehicleM := &model.VehicleModel{
		ID:          data.ID,
		PlateNumber: data.PlateNumber,
		Model:       data.Model,
		Status:      string(data.Status),
		MileageKm:   data.MileageKm,
		NextService: data.NextService,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}

	if data.Location != nil {
		vehicleM.LastLatitude = &data.Location.Latitude
		vehicleM.LastLongitude = &data.Location.Longitude
		vehicleM.LastHeading = data.Location.Heading
		vehicleM.LastSpeedKmh = data.Location.SpeedKmh
		recordedAt := data.Location.RecordedAt
		vehicleM.LastRecordedAt = &recordedAt
	}

	return vehicleM
}
