package contract

import (
	"context"

	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/repository/specification"

	"github.com/google/uuid"

	"gorm.io/datatypes"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *entity.Device) error
	Update(ctx context.Context, device *entity.Device) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Device, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Device, error)

	// Per-device editor preferences, written through a debounced path.
	GetSettings(ctx context.Context, deviceId uuid.UUID) (datatypes.JSON, error)
	SaveSettings(ctx context.Context, deviceId uuid.UUID, settings datatypes.JSON) error
}
