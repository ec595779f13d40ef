package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Device struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Platform   string    `gorm:"type:varchar(20);not null;default:''"`
	TokenHash  string    `gorm:"type:varchar(255);not null"`
	LastSeenAt *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Device) TableName() string {
	return "devices"
}

// DeviceSettings holds per-device editor preferences. Writes come through a
// debounced path, so one row per device is enough.
type DeviceSettings struct {
	DeviceId  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Settings  datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (DeviceSettings) TableName() string {
	return "device_settings"
}
