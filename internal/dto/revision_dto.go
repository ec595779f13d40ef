package dto

import "github.com/google/uuid"

// RevisionMessage announces that a new version of an entry was persisted.
// It travels the in-process bus and, wrapped in an event, the NATS stream;
// consumers reload the entry by id rather than trusting a stale payload.
type RevisionMessage struct {
	EntryId uuid.UUID `json:"entry_id"`
	Version int64     `json:"version"`
	Origin  string    `json:"origin"`
	// Instance identifies the publishing server instance so the NATS mirror
	// can drop its own echoes.
	Instance string `json:"instance"`
}
