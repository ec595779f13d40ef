package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterAttachmentRequest struct {
	Kind string `json:"kind" validate:"required,oneof=photo audio"`
}

type RegisterAttachmentResponse struct {
	Id uuid.UUID `json:"id"`
	// StorageKey is where the device uploads the bytes, out-of-band.
	StorageKey string `json:"storage_key"`
}

type AttachmentResponse struct {
	Id         uuid.UUID  `json:"id"`
	EntryId    uuid.UUID  `json:"entry_id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	StorageKey string     `json:"storage_key"`
	CreatedAt  time.Time  `json:"created_at"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

type AttachmentCountResponse struct {
	EntryId uuid.UUID `json:"entry_id"`
	Count   int64     `json:"count"`
}
