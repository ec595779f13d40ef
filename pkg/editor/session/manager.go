package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/pkg/editor/conflict"
	"trace-journal-be/pkg/editor/draft"
	"trace-journal-be/pkg/editor/dirty"
	"trace-journal-be/pkg/editor/ledger"
	"trace-journal-be/pkg/utils"

	"github.com/google/uuid"
)

var (
	// ErrNoDraft means the session has nothing editable: it was never begun,
	// was closed, or is still waiting for its entry to load.
	ErrNoDraft = errors.New("editor session has no active draft")
	// ErrSaveInFlight rejects a second save while the first round trip is
	// still out.
	ErrSaveInFlight = errors.New("a save is already in flight for this session")
)

// Options tune a Manager beyond its required collaborators.
type Options struct {
	// Surface may be attached later via AttachSurface once the device's
	// websocket is up.
	Surface Surface
	// OverwriteWindow is the "my save may have just been overwritten"
	// heuristic window. Zero means ledger.DefaultOverwriteWindow.
	OverwriteWindow time.Duration
	// AttachmentDebounce delays attachment-count applications so bursts of
	// upload-pipeline events collapse into one dirty-signal change.
	AttachmentDebounce time.Duration
	// Clock overrides time.Now for the recency window, for tests.
	Clock func() time.Time
}

// Manager owns the in-progress edit of a single journal entry for one
// device: the working copy, its saved baseline, the version ledger and the
// conflict policy around them. It survives the device navigating around the
// app; only Begin and End change what it is editing.
//
// Every operation takes the session mutex, so the callbacks of the two async
// streams that touch session state (save completions, revision pushes) are
// discrete and never interleave mid-mutation.
type Manager struct {
	mu sync.Mutex

	origin   string // this session's device id; empty when identity failed
	saver    Saver
	notifier Notifier
	surface  Surface
	log      logger.ILogger

	window   time.Duration
	debounce *utils.Debouncer

	// epoch increments on Begin and End. Async completions capture it and
	// discard themselves when it moved on.
	epoch uint64

	target   *uuid.UUID
	loaded   *uuid.UUID
	creating bool

	dr       *draft.Draft
	baseline *draft.BaselineStore
	led      *ledger.Ledger

	saving bool

	attachmentCount    int
	attachmentBaseline int

	state        string
	focusedField string
}

// NewManager wires a session for one device. The saver and notifier are
// required; everything else has workable defaults.
func NewManager(origin string, saver Saver, notifier Notifier, log logger.ILogger, opts Options) *Manager {
	window := opts.OverwriteWindow
	if window <= 0 {
		window = ledger.DefaultOverwriteWindow
	}
	debounceDelay := opts.AttachmentDebounce
	if debounceDelay <= 0 {
		debounceDelay = 400 * time.Millisecond
	}

	led := ledger.New()
	if opts.Clock != nil {
		led = ledger.NewWithClock(opts.Clock)
	}

	return &Manager{
		origin:   origin,
		saver:    saver,
		notifier: notifier,
		surface:  opts.Surface,
		log:      log,
		window:   window,
		debounce: utils.NewDebouncer(debounceDelay),
		baseline: draft.NewBaselineStore(),
		led:      led,
		state:    StateBrowsing,
	}
}

// Begin points the session at a record. A non-nil target puts the session in
// awaiting-load state: the working copy stays empty until IngestLoaded
// delivers the matching entry. A nil target starts a brand-new entry seeded
// from defaults, with an immediate baseline and an uninitialized ledger.
// Either way all previous state is torn down first.
func (m *Manager) Begin(target *uuid.UUID, defaults *draft.Defaults) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked()

	if target != nil {
		id := *target
		m.target = &id
		m.log.Info("EditorSession", "Session began, awaiting load", map[string]interface{}{
			"origin": m.origin, "entry_id": id.String(),
		})
		return
	}

	m.creating = true
	if defaults == nil {
		defaults = &draft.Defaults{}
	}
	m.dr = draft.New(*defaults)
	m.baseline.Take(m.dr.Fields())
	m.log.Info("EditorSession", "Session began for a new entry", map[string]interface{}{
		"origin": m.origin,
	})
}

// IngestLoaded populates the session from a loaded entry. Only the first
// delivery matching the awaited target applies; anything else — wrong id,
// duplicate load, no target — is logged and dropped so a slow response for a
// previously open entry can never corrupt the current session.
func (m *Manager) IngestLoaded(e *entity.Entry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e == nil {
		return false
	}
	if m.target == nil || e.Id != *m.target {
		m.log.Warn("EditorSession", "Stale load discarded", map[string]interface{}{
			"delivered_id": e.Id.String(), "target_id": targetString(m.target),
		})
		return false
	}
	if m.loaded != nil {
		m.log.Warn("EditorSession", "Duplicate load discarded", map[string]interface{}{
			"entry_id": e.Id.String(),
		})
		return false
	}

	m.dr = draft.FromEntry(e)
	m.baseline.Take(m.dr.Fields())
	m.led.Initialize(e.Version)
	id := e.Id
	m.loaded = &id

	m.log.Info("EditorSession", "Entry ingested", map[string]interface{}{
		"entry_id": id.String(), "version": e.Version,
	})
	return true
}

// End tears the session down. Safe to call at any point, including with a
// save in flight: the save's completion will see a moved epoch and discard
// itself.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked()
	m.log.Info("EditorSession", "Session ended", map[string]interface{}{
		"origin": m.origin,
	})
}

// resetLocked clears everything and bumps the epoch. Callers hold mu.
func (m *Manager) resetLocked() {
	m.epoch++
	m.debounce.Cancel()

	m.target = nil
	m.loaded = nil
	m.creating = false
	m.dr = nil
	m.baseline.Reset()
	m.led.Reset()
	m.saving = false
	m.attachmentCount = 0
	m.attachmentBaseline = 0
	m.state = StateBrowsing
	m.focusedField = ""
}

// AttachSurface hands the session the device's editor handle (typically when
// the websocket comes up). DetachSurface with nil is allowed.
func (m *Manager) AttachSurface(s Surface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surface = s
}

// --- field mutations (device -> working copy) ---

func (m *Manager) SetTitle(title string) {
	m.withDraft("SetTitle", func(d *draft.Draft) { d.SetTitle(title) })
}

func (m *Manager) SetStatus(status entity.EntryStatus) {
	m.withDraft("SetStatus", func(d *draft.Draft) { d.SetStatus(status) })
}

func (m *Manager) SetMood(mood int) {
	m.withDraft("SetMood", func(d *draft.Draft) { d.SetMood(mood) })
}

func (m *Manager) SetLocation(loc *entity.Location) {
	m.withDraft("SetLocation", func(d *draft.Draft) { d.SetLocation(loc) })
}

func (m *Manager) SetDueAt(due *time.Time) {
	m.withDraft("SetDueAt", func(d *draft.Draft) { d.SetDueAt(due) })
}

func (m *Manager) QueueAttachment(a entity.QueuedAttachment) {
	m.withDraft("QueueAttachment", func(d *draft.Draft) { d.QueueAttachment(a) })
}

func (m *Manager) UnqueueAttachment(localId string) {
	m.withDraft("UnqueueAttachment", func(d *draft.Draft) { d.UnqueueAttachment(localId) })
}

// SetWorkingContent replaces the serialized editor content (surface -> core).
func (m *Manager) SetWorkingContent(serialized string) {
	m.withDraft("SetWorkingContent", func(d *draft.Draft) { d.SetContent(serialized) })
}

// WorkingContent returns the serialized editor content (core -> surface).
func (m *Manager) WorkingContent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dr == nil {
		return ""
	}
	return m.dr.Content()
}

func (m *Manager) withDraft(op string, fn func(d *draft.Draft)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dr == nil {
		m.log.Debug("EditorSession", "Field update ignored, no active draft", map[string]interface{}{
			"op": op,
		})
		return
	}
	fn(m.dr)
}

// --- focus state ---

func (m *Manager) Focus(field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dr == nil {
		return
	}
	m.state = StateFocused
	m.focusedField = field
}

func (m *Manager) Blur() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateBrowsing
	m.focusedField = ""
}

// --- dirtiness ---

// IsDirty reports whether the working copy diverged from the baseline. With
// no baseline yet: a new entry is dirty as soon as a content-bearing field
// is non-empty; an entry still loading is never dirty (there is nothing to
// compare against, and warning about unsaved changes before content arrives
// would be nonsense).
func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDirtyLocked()
}

func (m *Manager) isDirtyLocked() bool {
	if m.dr == nil {
		return false
	}
	if m.baseline.Current() == nil {
		if m.creating {
			return dirty.HasContent(m.dr.Fields())
		}
		return false
	}
	return dirty.Changed(m.dr.Fields(), m.baseline.Current())
}

// --- attachment counts ---

// PrimeAttachmentCount seeds both the live count and its baseline, without
// debouncing. Called right after ingestion with the store's current count.
func (m *Manager) PrimeAttachmentCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachmentCount = n
	m.attachmentBaseline = n
}

// ReportAttachmentCount applies a new live count after the debounce delay.
// Bursts from the upload pipeline collapse to the final value; Begin and End
// cancel anything pending.
func (m *Manager) ReportAttachmentCount(n int) {
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	m.debounce.Trigger(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.epoch != epoch {
			return
		}
		m.attachmentCount = n
	})
}

// --- saving ---

// Save persists the working copy through the injected saver. The fields
// snapshot taken before the round trip is what gets baselined on success, so
// keystrokes landing during the trip stay dirty. A store error is returned
// unchanged and leaves the draft and dirty state untouched. If the session
// was ended or retargeted while the save was out, its completion is
// discarded.
func (m *Manager) Save(ctx context.Context) (SaveResult, error) {
	m.mu.Lock()
	if m.dr == nil {
		m.mu.Unlock()
		return SaveResult{}, ErrNoDraft
	}
	if m.saving {
		m.mu.Unlock()
		return SaveResult{}, ErrSaveInFlight
	}

	epoch := m.epoch
	fields := m.dr.Fields()
	var id *uuid.UUID
	if m.loaded != nil {
		v := *m.loaded
		id = &v
	}
	m.saving = true
	origin := m.origin
	m.mu.Unlock()

	// Network round trip happens outside the lock; revision pushes arriving
	// meanwhile see saving=true and drop themselves.
	res, err := m.saver.SaveEntry(ctx, id, fields, origin)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epoch != epoch {
		m.log.Warn("EditorSession", "Save completed for an abandoned session, discarded", map[string]interface{}{
			"origin": origin, "error": errString(err),
		})
		return res, err
	}
	m.saving = false

	if err != nil {
		m.log.Error("EditorSession", "Save failed", map[string]interface{}{
			"origin": origin, "entry_id": targetString(id), "error": err.Error(),
		})
		return SaveResult{}, err
	}

	if m.loaded == nil {
		created := res.Id
		m.loaded = &created
		m.target = &created
		m.creating = false
	}

	if _, ok := m.led.Known(); !ok {
		m.led.Initialize(res.Version)
	} else {
		m.led.Observe(res.Version, origin, origin)
	}
	m.led.RecordLocalSave()
	m.baseline.Take(fields)
	m.attachmentBaseline = m.attachmentCount

	m.log.Info("EditorSession", "Save applied", map[string]interface{}{
		"entry_id": res.Id.String(), "version": res.Version,
	})
	return res, nil
}

// Saving reports whether a save round trip is currently out.
func (m *Manager) Saving() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saving
}

// --- incoming revisions ---

// ObserveRevision runs one pushed revision through the resolution rules and
// applies the outcome. Deliveries for an entry this session is not hosting
// are dropped before any rule runs. While a save is in flight the revision
// is ignored entirely — the ledger does not even see it, per rule one.
func (m *Manager) ObserveRevision(e *entity.Entry) conflict.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e == nil {
		return conflict.OutcomeIgnoredMismatch
	}
	if m.loaded == nil || e.Id != *m.loaded {
		m.log.Info("EditorSession", "Revision for a different entry discarded", map[string]interface{}{
			"delivered_id": e.Id.String(), "hosted_id": targetString(m.loaded),
		})
		return conflict.OutcomeIgnoredMismatch
	}

	if m.saving {
		m.log.Info("EditorSession", "Revision ignored, save in flight", map[string]interface{}{
			"entry_id": e.Id.String(), "version": e.Version,
		})
		return conflict.OutcomeIgnoredSaving
	}

	cls := m.led.Observe(e.Version, e.LastEditingOrigin, m.origin)
	out := conflict.Decide(conflict.Input{
		Classification:  cls,
		Dirty:           m.isDirtyLocked(),
		AttachmentDelta: m.attachmentCount != m.attachmentBaseline,
		Recency:         m.led,
		Window:          m.window,
	})

	switch out {
	case conflict.OutcomeIgnoredStale:
		m.log.Info("EditorSession", "Stale revision ignored", map[string]interface{}{
			"entry_id": e.Id.String(), "version": e.Version,
		})

	case conflict.OutcomeConfirmedOwn:
		m.log.Debug("EditorSession", "Own save confirmed", map[string]interface{}{
			"entry_id": e.Id.String(), "version": e.Version,
		})

	case conflict.OutcomeKeptLocal:
		// Local edits win; the user merges on their next save.
		m.notify(false, Signal{
			Code:    CodeMergeNeeded,
			EntryId: e.Id,
			Origin:  e.LastEditingOrigin,
			Version: e.Version,
		})
		m.log.Info("EditorSession", "External revision deferred, local edits kept", map[string]interface{}{
			"entry_id": e.Id.String(), "version": e.Version, "origin": e.LastEditingOrigin,
		})

	case conflict.OutcomeAdopted, conflict.OutcomeAdoptedOverwrote:
		fields := draft.FieldsFromEntry(e)
		m.dr.Replace(fields)
		m.baseline.Take(fields)

		m.state = StateBrowsing
		m.focusedField = ""
		if m.surface != nil {
			m.surface.ApplyContent(fields.Content)
			m.surface.ExitEditing()
		}

		sig := Signal{
			Code:    CodeExternalUpdate,
			EntryId: e.Id,
			Origin:  e.LastEditingOrigin,
			Version: e.Version,
		}
		if out == conflict.OutcomeAdoptedOverwrote {
			sig.Code = CodeSaveOverwritten
			m.notify(true, sig)
		} else {
			m.notify(false, sig)
		}
		m.log.Info("EditorSession", "External revision adopted", map[string]interface{}{
			"entry_id": e.Id.String(), "version": e.Version,
			"origin": e.LastEditingOrigin, "outcome": out.String(),
		})
	}

	return out
}

func (m *Manager) notify(blocking bool, sig Signal) {
	if m.notifier == nil {
		return
	}
	if blocking {
		m.notifier.Warn(sig)
		return
	}
	m.notifier.Notice(sig)
}

// --- introspection ---

// View is a read-only snapshot of the session for status endpoints.
type View struct {
	Target          *uuid.UUID
	Loaded          *uuid.UUID
	Creating        bool
	Dirty           bool
	KnownVersion    *int64
	Saving          bool
	State           string
	FocusedField    string
	AttachmentCount int
	Fields          *draft.Fields
}

func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Creating:        m.creating,
		Dirty:           m.isDirtyLocked(),
		Saving:          m.saving,
		State:           m.state,
		FocusedField:    m.focusedField,
		AttachmentCount: m.attachmentCount,
	}
	if m.target != nil {
		id := *m.target
		v.Target = &id
	}
	if m.loaded != nil {
		id := *m.loaded
		v.Loaded = &id
	}
	if known, ok := m.led.Known(); ok {
		v.KnownVersion = &known
	}
	if m.dr != nil {
		f := m.dr.Fields()
		v.Fields = &f
	}
	return v
}

func targetString(id *uuid.UUID) string {
	if id == nil {
		return "<none>"
	}
	return id.String()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
