package entity

import (
	"time"

	"github.com/google/uuid"
)

type EntryStatus string

const (
	// Plain journal entries stay at "none"; entries used as tasks move open -> done.
	EntryStatusNone EntryStatus = "none"
	EntryStatusOpen EntryStatus = "open"
	EntryStatusDone EntryStatus = "done"
)

// Location is the structured place an entry was written at. Stored as JSONB.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// QueuedAttachment is a media reference captured on the device but not yet
// uploaded. It exists only inside a working copy, never in the entries table.
type QueuedAttachment struct {
	LocalId string `json:"local_id"`
	Kind    string `json:"kind"`
}

type Entry struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId uuid.UUID `gorm:"type:uuid;index"`

	// Version increases by one on every persisted save. LastEditingOrigin is
	// the device id string of whoever wrote that version.
	Version           int64
	LastEditingOrigin string

	Title    string
	Content  string // serialized rich text, opaque to the sync engine
	Status   EntryStatus
	Mood     int // 0 = unset, 1..5
	Location *Location
	DueAt    *time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
