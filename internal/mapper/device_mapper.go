package mapper

import (
	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/model"
)

type DeviceMapper struct{}

func NewDeviceMapper() *DeviceMapper {
	return &DeviceMapper{}
}

func (m *DeviceMapper) ToEntity(d *model.Device) *entity.Device {
	if d == nil {
		return nil
	}
	return &entity.Device{
		Id:         d.Id,
		UserId:     d.UserId,
		Name:       d.Name,
		Platform:   d.Platform,
		TokenHash:  d.TokenHash,
		LastSeenAt: d.LastSeenAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (m *DeviceMapper) ToModel(d *entity.Device) *model.Device {
	if d == nil {
		return nil
	}
	return &model.Device{
		Id:         d.Id,
		UserId:     d.UserId,
		Name:       d.Name,
		Platform:   d.Platform,
		TokenHash:  d.TokenHash,
		LastSeenAt: d.LastSeenAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
