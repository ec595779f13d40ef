package session

import (
	"context"

	"trace-journal-be/pkg/editor/draft"

	"github.com/google/uuid"
)

// Editing surface states. Adopting an external revision always drops the
// session back to browsing so the user is not left typing into a field whose
// value just changed under them.
const (
	StateBrowsing = "BROWSING"
	StateFocused  = "FOCUSED"
)

// SaveResult is what the persistence collaborator reports back: the entry id
// (fresh on create) and the version it wrote.
type SaveResult struct {
	Id      uuid.UUID
	Version int64
}

// Saver executes persistence on behalf of the session. Injected at
// construction; the session never reaches into a service locator. A nil id
// means "create".
type Saver interface {
	SaveEntry(ctx context.Context, id *uuid.UUID, fields draft.Fields, origin string) (SaveResult, error)
}

// Surface is the explicit handle to the device's editor. The session pushes
// through it when it adopts external content; it never pulls.
type Surface interface {
	ApplyContent(serialized string)
	ExitEditing()
}

// Signal codes. The notifier maps them to wording and transport; the session
// only supplies the facts.
const (
	// CodeExternalUpdate: a clean working copy adopted a remote revision.
	CodeExternalUpdate = "entry.external_update"
	// CodeMergeNeeded: a remote revision arrived while local edits were
	// unsaved; local edits were kept.
	CodeMergeNeeded = "entry.merge_needed"
	// CodeSaveOverwritten: a remote revision arrived moments after a local
	// save and probably clobbered it.
	CodeSaveOverwritten = "entry.save_overwritten"
)

// Signal is one user-facing conflict signal.
type Signal struct {
	Code    string
	EntryId uuid.UUID
	Origin  string // device id string that caused the signal
	Version int64
}

// Notifier receives the signals the resolution policy emits. Notice is
// transient and auto-dismisses; Warn blocks until acknowledged.
type Notifier interface {
	Notice(sig Signal)
	Warn(sig Signal)
}
