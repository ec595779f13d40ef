package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the account devices register under. Auth happens per device; the
// user row only anchors ownership of entries and devices.
type User struct {
	Id        uuid.UUID
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
