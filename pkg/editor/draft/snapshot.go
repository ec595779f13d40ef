package draft

// Snapshot is an immutable baseline of the editable fields, taken at session
// start, after a load, after a successful save, and after an accepted
// external revision. It is only ever the right-hand side of a diff.
type Snapshot struct {
	fields Fields
}

// Take deep-copies the given fields into a new Snapshot. Later mutation of
// the source cannot retroactively alter the snapshot.
func Take(f Fields) *Snapshot {
	return &Snapshot{fields: f.Clone()}
}

// Fields returns a deep copy of the snapshotted state.
func (s *Snapshot) Fields() Fields {
	return s.fields.Clone()
}

// BaselineStore holds the last-known-saved snapshot for one session.
type BaselineStore struct {
	current *Snapshot
}

func NewBaselineStore() *BaselineStore {
	return &BaselineStore{}
}

// Take replaces the current baseline with a snapshot of the given fields.
func (b *BaselineStore) Take(f Fields) {
	b.current = Take(f)
}

// Current returns the baseline, or nil when none has been taken yet.
func (b *BaselineStore) Current() *Snapshot {
	return b.current
}

// Reset drops the baseline.
func (b *BaselineStore) Reset() {
	b.current = nil
}
