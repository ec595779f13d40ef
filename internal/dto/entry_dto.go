package dto

import (
	"time"

	"trace-journal-be/internal/entity"

	"github.com/google/uuid"
)

type ListEntriesRequest struct {
	Status       string     `query:"status" validate:"omitempty,oneof=none open done"`
	Search       string     `query:"search" validate:"omitempty,max=200"`
	UpdatedSince *time.Time `query:"updated_since"`
	DueBefore    *time.Time `query:"due_before"`
	Limit        int        `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset       int        `query:"offset" validate:"omitempty,min=0"`
}

type EntryListItem struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Preview   string     `json:"preview"` // plain-text excerpt of the content
	Status    string     `json:"status"`
	Mood      int        `json:"mood,omitempty"`
	Version   int64      `json:"version"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type ListEntriesResponse struct {
	Entries []EntryListItem `json:"entries"`
	Total   int64           `json:"total"`
}

type ShowEntryResponse struct {
	Id                uuid.UUID        `json:"id"`
	Title             string           `json:"title"`
	Content           string           `json:"content"`
	Status            string           `json:"status"`
	Mood              int              `json:"mood,omitempty"`
	Location          *entity.Location `json:"location,omitempty"`
	DueAt             *time.Time       `json:"due_at,omitempty"`
	Version           int64            `json:"version"`
	LastEditingOrigin string           `json:"last_editing_origin"`
	AttachmentCount   int64            `json:"attachment_count"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         *time.Time       `json:"updated_at,omitempty"`
}
