package entity

import (
	"time"

	"github.com/google/uuid"
)

type AttachmentStatus string

const (
	AttachmentStatusPending  AttachmentStatus = "pending"
	AttachmentStatusUploaded AttachmentStatus = "uploaded"
)

// Attachment is a media object tied to an entry. Upload happens out-of-band;
// the editing engine only ever consumes per-entry counts of these.
type Attachment struct {
	Id         uuid.UUID
	EntryId    uuid.UUID
	UserId     uuid.UUID
	Kind       string // photo, audio
	Status     AttachmentStatus
	StorageKey string
	CreatedAt  time.Time
	UploadedAt *time.Time
}
