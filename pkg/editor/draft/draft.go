package draft

import (
	"time"

	"trace-journal-be/internal/entity"
)

// Fields is the editable slice of a journal entry: everything the device can
// change in the editor, plus media queued locally before upload. Version and
// origin bookkeeping live elsewhere.
type Fields struct {
	Title    string
	Content  string // serialized rich text, treated as an opaque blob
	Status   entity.EntryStatus
	Mood     int
	Location *entity.Location
	DueAt    *time.Time
	Queued   []entity.QueuedAttachment
}

// Clone returns a deep copy: no pointer or slice is shared with the source,
// so mutating the original afterwards cannot leak into the copy.
func (f Fields) Clone() Fields {
	out := f

	if f.Location != nil {
		loc := *f.Location
		out.Location = &loc
	}
	if f.DueAt != nil {
		t := *f.DueAt
		out.DueAt = &t
	}
	if f.Queued != nil {
		out.Queued = make([]entity.QueuedAttachment, len(f.Queued))
		copy(out.Queued, f.Queued)
	}

	return out
}

// Defaults seeds the working copy of a brand-new entry.
type Defaults struct {
	Title    string
	Content  string
	Status   entity.EntryStatus
	Mood     int
	Location *entity.Location
	DueAt    *time.Time
}

// Draft is a session's mutable working copy. It is owned by exactly one
// session and mutated only through its setters.
type Draft struct {
	fields Fields
}

// New builds a working copy for a new entry from the given defaults.
func New(d Defaults) *Draft {
	status := d.Status
	if status == "" {
		status = entity.EntryStatusNone
	}
	f := Fields{
		Title:    d.Title,
		Content:  d.Content,
		Status:   status,
		Mood:     d.Mood,
		Location: d.Location,
		DueAt:    d.DueAt,
	}
	// Clone so the caller's pointers stay theirs.
	return &Draft{fields: f.Clone()}
}

// FromEntry builds a working copy populated from a loaded entry.
func FromEntry(e *entity.Entry) *Draft {
	return &Draft{fields: FieldsFromEntry(e)}
}

// FieldsFromEntry extracts a deep copy of the editable fields of a persisted
// entry. Version and origin are deliberately not part of the result.
func FieldsFromEntry(e *entity.Entry) Fields {
	f := Fields{
		Title:    e.Title,
		Content:  e.Content,
		Status:   e.Status,
		Mood:     e.Mood,
		Location: e.Location,
		DueAt:    e.DueAt,
	}
	return f.Clone()
}

// Fields returns a deep copy of the current working fields.
func (d *Draft) Fields() Fields {
	return d.fields.Clone()
}

// Replace swaps the whole working state for the given fields (used when the
// session adopts an external revision).
func (d *Draft) Replace(f Fields) {
	d.fields = f.Clone()
}

func (d *Draft) SetTitle(title string) {
	d.fields.Title = title
}

func (d *Draft) SetContent(serialized string) {
	d.fields.Content = serialized
}

func (d *Draft) Content() string {
	return d.fields.Content
}

func (d *Draft) SetStatus(status entity.EntryStatus) {
	d.fields.Status = status
}

func (d *Draft) SetMood(mood int) {
	d.fields.Mood = mood
}

func (d *Draft) SetLocation(loc *entity.Location) {
	if loc == nil {
		d.fields.Location = nil
		return
	}
	l := *loc
	d.fields.Location = &l
}

func (d *Draft) SetDueAt(due *time.Time) {
	if due == nil {
		d.fields.DueAt = nil
		return
	}
	t := *due
	d.fields.DueAt = &t
}

// QueueAttachment adds a locally captured media reference to the draft.
func (d *Draft) QueueAttachment(a entity.QueuedAttachment) {
	d.fields.Queued = append(d.fields.Queued, a)
}

// UnqueueAttachment removes a queued reference by its local id. Returns false
// when no such reference exists.
func (d *Draft) UnqueueAttachment(localId string) bool {
	for i, q := range d.fields.Queued {
		if q.LocalId == localId {
			d.fields.Queued = append(d.fields.Queued[:i], d.fields.Queued[i+1:]...)
			return true
		}
	}
	return false
}
