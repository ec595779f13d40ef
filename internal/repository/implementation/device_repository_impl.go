package implementation

import (
	"context"
	"errors"

	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/mapper"
	"trace-journal-be/internal/model"
	"trace-journal-be/internal/repository/contract"
	"trace-journal-be/internal/repository/scope"
	"trace-journal-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DeviceMapper
}

func NewDeviceRepository(db *gorm.DB) contract.DeviceRepository {
	return &DeviceRepositoryImpl{
		db:     db,
		mapper: mapper.NewDeviceMapper(),
	}
}

func (r *DeviceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DeviceRepositoryImpl) Create(ctx context.Context, device *entity.Device) error {
	m := r.mapper.ToModel(device)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*device = *r.mapper.ToEntity(m)
	return nil
}

func (r *DeviceRepositoryImpl) Update(ctx context.Context, device *entity.Device) error {
	m := r.mapper.ToModel(device)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*device = *r.mapper.ToEntity(m)
	return nil
}

func (r *DeviceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Device, error) {
	var m model.Device
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DeviceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Device, error) {
	var models []*model.Device
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByUpdatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	devices := make([]*entity.Device, 0, len(models))
	for _, m := range models {
		devices = append(devices, r.mapper.ToEntity(m))
	}
	return devices, nil
}

func (r *DeviceRepositoryImpl) GetSettings(ctx context.Context, deviceId uuid.UUID) (datatypes.JSON, error) {
	var m model.DeviceSettings
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m.Settings, nil
}

// SaveSettings upserts the single settings row per device. The debounced
// write path means losing an intermediate blob is fine; last write wins.
func (r *DeviceRepositoryImpl) SaveSettings(ctx context.Context, deviceId uuid.UUID, settings datatypes.JSON) error {
	m := model.DeviceSettings{
		DeviceId: deviceId,
		Settings: settings,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
		}).
		Create(&m).Error
}
