package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByStatus filters entries by their task state.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// DueBefore filters entries with a due date at or before the given instant.
type DueBefore struct {
	At time.Time
}

func (s DueBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("due_at IS NOT NULL AND due_at <= ?", s.At)
}

// UpdatedSince filters entries touched after the given instant; devices use
// it to catch up after being offline.
type UpdatedSince struct {
	At time.Time
}

func (s UpdatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at > ?", s.At)
}

// TitleContains is a case-insensitive title search.
type TitleContains struct {
	Query string
}

func (s TitleContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title ILIKE ?", "%"+s.Query+"%")
}
