package mapper

import (
	"encoding/json"
	"time"

	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EntryMapper struct{}

func NewEntryMapper() *EntryMapper {
	return &EntryMapper{}
}

func (m *EntryMapper) ToEntity(e *model.Entry) *entity.Entry {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var location *entity.Location
	if len(e.Location) > 0 {
		var loc entity.Location
		if err := json.Unmarshal(e.Location, &loc); err == nil {
			location = &loc
		}
	}

	return &entity.Entry{
		Id:                e.Id,
		UserId:            e.UserId,
		Version:           e.Version,
		LastEditingOrigin: e.LastEditingOrigin,
		Title:             e.Title,
		Content:           e.Content,
		Status:            entity.EntryStatus(e.Status),
		Mood:              e.Mood,
		Location:          location,
		DueAt:             e.DueAt,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
		IsDeleted:         e.DeletedAt.Valid,
	}
}

func (m *EntryMapper) ToModel(e *entity.Entry) *model.Entry {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var location datatypes.JSON
	if e.Location != nil {
		if raw, err := json.Marshal(e.Location); err == nil {
			location = datatypes.JSON(raw)
		}
	}

	return &model.Entry{
		Id:                e.Id,
		UserId:            e.UserId,
		Version:           e.Version,
		LastEditingOrigin: e.LastEditingOrigin,
		Title:             e.Title,
		Content:           e.Content,
		Status:            string(e.Status),
		Mood:              e.Mood,
		Location:          location,
		DueAt:             e.DueAt,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
	}
}
