package model

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EntryId    uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind       string    `gorm:"type:varchar(20);not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	StorageKey string    `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UploadedAt *time.Time
}

func (Attachment) TableName() string {
	return "attachments"
}
