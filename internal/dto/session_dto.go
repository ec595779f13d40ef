package dto

import (
	"time"

	"trace-journal-be/internal/entity"

	"github.com/google/uuid"
)

type OpenSessionRequest struct {
	EntryId uuid.UUID `json:"entry_id" validate:"required"`
}

type NewSessionRequest struct {
	Title   string           `json:"title"`
	Content string           `json:"content"`
	Status  string           `json:"status" validate:"omitempty,oneof=none open done"`
	Mood    int              `json:"mood" validate:"omitempty,min=1,max=5"`
	DueAt   *time.Time       `json:"due_at"`
	Loc     *entity.Location `json:"location"`
}

// UpdateFieldsRequest carries partial field updates; only non-nil fields are
// applied, so a device can patch one field without resending the rest.
type UpdateFieldsRequest struct {
	Title    *string          `json:"title"`
	Status   *string          `json:"status" validate:"omitempty,oneof=none open done"`
	Mood     *int             `json:"mood" validate:"omitempty,min=0,max=5"`
	Location *entity.Location `json:"location"`
	ClearLoc bool             `json:"clear_location"`
	DueAt    *time.Time       `json:"due_at"`
	ClearDue bool             `json:"clear_due_at"`
}

type SetContentRequest struct {
	Content string `json:"content"`
}

type FocusRequest struct {
	Field string `json:"field" validate:"required"`
}

type QueueAttachmentRequest struct {
	LocalId string `json:"local_id" validate:"required"`
	Kind    string `json:"kind" validate:"required,oneof=photo audio"`
}

type SessionStateResponse struct {
	TargetId        *uuid.UUID `json:"target_id,omitempty"`
	LoadedId        *uuid.UUID `json:"loaded_id,omitempty"`
	Creating        bool       `json:"creating"`
	Dirty           bool       `json:"dirty"`
	Saving          bool       `json:"saving"`
	KnownVersion    *int64     `json:"known_version,omitempty"`
	State           string     `json:"state"`
	FocusedField    string     `json:"focused_field,omitempty"`
	AttachmentCount int        `json:"attachment_count"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Status          string     `json:"status"`
	Mood            int        `json:"mood"`
	QueuedCount     int        `json:"queued_count"`
}

type SaveSessionResponse struct {
	EntryId uuid.UUID `json:"entry_id"`
	Version int64     `json:"version"`
}
