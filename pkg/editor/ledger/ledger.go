package ledger

import "time"

// DefaultOverwriteWindow is how long after a local save an external revision
// is still suspected of clobbering it. Heuristic, overridable via config.
const DefaultOverwriteWindow = 30 * time.Second

// Classification is the ledger's verdict on one incoming revision.
type Classification struct {
	IsNewer    bool
	IsExternal bool
}

// Ledger tracks the last version number one session observed or produced for
// its entry, and a short recency window around local saves. It never touches
// content; it only answers "is this newer" and "was this me".
type Ledger struct {
	known      *int64
	lastSaveAt time.Time
	now        func() time.Time
}

func New() *Ledger {
	return &Ledger{now: time.Now}
}

// NewWithClock injects a clock, for tests.
func NewWithClock(now func() time.Time) *Ledger {
	return &Ledger{now: now}
}

// Initialize records the first observed version. Only the first call after a
// Reset takes effect, so a stale late read cannot rewind the ledger.
func (l *Ledger) Initialize(version int64) {
	if l.known != nil {
		return
	}
	v := version
	l.known = &v
}

// Observe classifies an incoming version against the ledger state.
//
// A version is newer when it exceeds the known one (an uninitialized ledger
// treats anything as newer). Newer versions advance the known version
// unconditionally — self-produced and external bumps both count, otherwise
// later comparisons drift. External means newer AND written by someone else;
// an empty self origin cannot vouch for anything, so everything newer is
// treated as external in that case.
func (l *Ledger) Observe(version int64, origin, self string) Classification {
	isNewer := l.known == nil || version > *l.known
	if isNewer {
		v := version
		l.known = &v
	}

	return Classification{
		IsNewer:    isNewer,
		IsExternal: isNewer && (self == "" || origin != self),
	}
}

// RecordLocalSave stamps the moment a locally initiated save succeeded.
func (l *Ledger) RecordLocalSave() {
	l.lastSaveAt = l.now()
}

// ConsumeRecentSave reports whether a local save happened within the window.
// A true result clears the stamp, so the "your save may have been
// overwritten" warning can fire at most once per save.
func (l *Ledger) ConsumeRecentSave(window time.Duration) bool {
	if l.lastSaveAt.IsZero() {
		return false
	}
	if l.now().Sub(l.lastSaveAt) < window {
		l.lastSaveAt = time.Time{}
		return true
	}
	return false
}

// Known returns the tracked version, false when uninitialized.
func (l *Ledger) Known() (int64, bool) {
	if l.known == nil {
		return 0, false
	}
	return *l.known, true
}

// Reset returns the ledger to its uninitialized state.
func (l *Ledger) Reset() {
	l.known = nil
	l.lastSaveAt = time.Time{}
}
