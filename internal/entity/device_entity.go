package entity

import (
	"time"

	"github.com/google/uuid"
)

// Device is a registered editing origin. Its id string is what lands in
// Entry.LastEditingOrigin and what conflict signals resolve to a display name.
type Device struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Name       string
	Platform   string
	TokenHash  string
	LastSeenAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
