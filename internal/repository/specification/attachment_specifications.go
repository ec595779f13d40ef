package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByEntryID filters attachments belonging to one entry.
type ByEntryID struct {
	EntryID uuid.UUID
}

func (s ByEntryID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("entry_id = ?", s.EntryID)
}

// ByUploadStatus filters attachments by upload pipeline state.
type ByUploadStatus struct {
	Status string
}

func (s ByUploadStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
