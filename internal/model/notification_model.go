package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification stores the conflict signals pushed to devices. Kind "notice"
// auto-dismisses on the client; kind "warning" requires an explicit ack.
type Notification struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	DeviceID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"device_id"`
	Kind        string         `gorm:"type:varchar(10);not null" json:"kind"`
	Code        string         `gorm:"type:varchar(50);not null;index" json:"code"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Message     string         `gorm:"type:text;not null" json:"message"`
	EntryID     *uuid.UUID     `gorm:"type:uuid;index" json:"entry_id,omitempty"`
	OriginID    string         `gorm:"type:varchar(64)" json:"origin_id,omitempty"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	RequiresAck bool           `gorm:"default:false" json:"requires_ack"`
	AckedAt     *time.Time     `json:"acked_at,omitempty"`
	IsRead      bool           `gorm:"default:false;index" json:"is_read"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP;index:idx_notifications_user_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
