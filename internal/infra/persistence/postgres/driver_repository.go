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

// driverRepository implements the domain.DriverRepository interface.
type driverRepository struct {
	db *gorm.DB
}

// NewDriverRepository is the constructor for driverRepository.
func NewDriverRepository(db *gorm.DB) repository.DriverRepository {
	return &driverRepository{db: db}
}

// CreateDriver persists a new driver.
func (repo *driverRepository) CreateDriver(ctx context.Context, driver *entity.Driver) error {
	driverM := fromDriverDomain(driver)

	if err := repo.db.WithContext(ctx).Create(driverM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrDriverAlreadyExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create driver")
	}

	driver.ID = driverM.ID
	driver.CreatedAt = driverM.CreatedAt
	driver.UpdatedAt = driverM.UpdatedAt

	return nil
}

// FindDriverByID retrieves a driver by its unique ID.
func (repo *driverRepository) FindDriverByID(ctx context.Context, id uuid.UUID) (*entity.Driver, error) {
	var driverM model.DriverModel
	if err := repo.db.WithContext(ctx).First(&driverM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDriverNotFound
		}

		return nil, errors.Wrap(err, "failed to find driver by ID")
	}

	return toDriverDomain(&driverM), nil
}

// ListDrivers retrieves all drivers in the fleet.
func (repo *driverRepository) ListDrivers(ctx context.Context) ([]*entity.Driver, error) {
	var driverModels []*model.DriverModel
	if err := repo.db.WithContext(ctx).
		Order("name ASC").
		Find(&driverModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list drivers")
	}

	drivers := make([]*entity.Driver, 0, len(driverModels))
	for _, driverM := range driverModels {
		drivers = append(drivers, toDriverDomain(driverM))
	}

	return drivers, nil
}

// UpdateDriver updates an existing driver record.
func (repo *driverRepository) UpdateDriver(ctx context.Context, driver *entity.Driver) error {
	driverM := fromDriverDomain(driver)

	if err := repo.db.WithContext(ctx).Save(driverM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrDriverAlreadyExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update driver")
	}

	driver.UpdatedAt = driverM.UpdatedAt

	return nil
}

// FindDriverByVehicle retrieves the driver currently assigned to a vehicle.
func (repo *driverRepository) FindDriverByVehicle(ctx context.Context, vehicleID uuid.UUID) (*entity.Driver, error) {
	var driverM model.DriverModel
	if err := repo.db.WithContext(ctx).
		First(&driverM, "vehicle_id = ?", vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDriverNotFound
		}

		return nil, errors.Wrap(err, "failed to find driver by vehicle")
	}

	return toDriverDomain(&driverM), nil
}

// --- Mapper Functions ---

// toDriverDomain converts a GORM DriverModel to a domain Driver entity.
func toDriverDomain(data *model.DriverModel) *entity.Driver {
	if data == nil {
		return nil
	}

	return &entity.Driver{
		ID:            data.ID,
		Name:          data.Name,
		LicenseNumber: data.LicenseNumber,
		LicenseExpiry: data.LicenseExpiry,
		Phone:         data.Phone,
		Status:        entity.DriverStatus(data.Status),
		VehicleID:     data.VehicleID,
		DeviceTokens:  data.DeviceTokens,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

// fromDriverDomain converts a domain Driver entity to a GORM DriverModel.
func fromDriverDomain(data *entity.Driver) *model.DriverModel {
	if data == nil {
		return nil
	}

	return &model.DriverModel{
		ID:            data.ID,
		Name:          data.Name,
		LicenseNumber: data.LicenseNumber,
		LicenseExpiry: data.LicenseExpiry,
		Phone:         data.Phone,
		Status:        string(data.Status),
		VehicleID:     data.VehicleID,
		DeviceTokens:  data.DeviceTokens,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}
