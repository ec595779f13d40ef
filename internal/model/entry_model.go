package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Entry struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID      `gorm:"type:uuid;not null;index"`
	Version           int64          `gorm:"not null;default:1"`
	LastEditingOrigin string         `gorm:"type:varchar(64);not null;default:''"`
	Title             string         `gorm:"type:varchar(255);not null;default:''"`
	Content           string         `gorm:"type:text"`
	Status            string         `gorm:"type:varchar(20);not null;default:'none'"`
	Mood              int            `gorm:"not null;default:0"`
	Location          datatypes.JSON `gorm:"type:jsonb"`
	DueAt             *time.Time     `gorm:"index"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (Entry) TableName() string {
	return "entries"
}
