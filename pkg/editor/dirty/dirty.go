package dirty

import (
	"time"

	"trace-journal-be/internal/entity"
	"trace-journal-be/pkg/editor/draft"
)

// Changed reports whether the working fields have diverged from the baseline
// under field-aware comparison. A nil baseline compares as unchanged; the
// caller decides what "no baseline yet" means for its lifecycle state (see
// HasContent for the new-entry rule). No side effects, cheap enough to run
// on every keystroke.
func Changed(working draft.Fields, baseline *draft.Snapshot) bool {
	if baseline == nil {
		return false
	}
	base := baseline.Fields()

	if working.Title != base.Title {
		return true
	}
	if working.Content != base.Content {
		return true
	}
	if working.Status != base.Status {
		return true
	}
	if working.Mood != base.Mood {
		return true
	}
	if !locationsEqual(working.Location, base.Location) {
		return true
	}
	if !timesEqual(working.DueAt, base.DueAt) {
		return true
	}
	if !queuedEqual(working.Queued, base.Queued) {
		return true
	}
	return false
}

// HasContent reports whether any content-bearing field is non-empty. This is
// the dirtiness rule for a new entry that has no baseline yet: typing a
// title, typing body text, or queueing media makes it worth saving.
func HasContent(f draft.Fields) bool {
	return f.Title != "" || f.Content != "" || len(f.Queued) > 0
}

// timesEqual compares two optional timestamps by instant. Sub-second
// precision is dropped so a value that round-tripped through an ISO-8601
// string (or had its milliseconds stripped) still equals the original.
func timesEqual(a, b *time.Time) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}

func locationsEqual(a, b *entity.Location) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Name == b.Name && a.Latitude == b.Latitude && a.Longitude == b.Longitude
}

// queuedEqual compares locally queued media by count plus local-id set.
// Ordering does not matter; kind changes without an id change do not count.
func queuedEqual(a, b []entity.QueuedAttachment) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	ids := make(map[string]int, len(a))
	for _, q := range a {
		ids[q.LocalId]++
	}
	for _, q := range b {
		ids[q.LocalId]--
		if ids[q.LocalId] < 0 {
			return false
		}
	}
	return true
}
