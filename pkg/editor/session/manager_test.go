package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trace-journal-be/internal/entity"
	"trace-journal-be/pkg/editor/conflict"
	"trace-journal-be/pkg/editor/draft"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type recordedSignal struct {
	blocking bool
	sig      Signal
}

type recordingNotifier struct {
	mu      sync.Mutex
	signals []recordedSignal
}

func (r *recordingNotifier) Notice(sig Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, recordedSignal{blocking: false, sig: sig})
}

func (r *recordingNotifier) Warn(sig Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, recordedSignal{blocking: true, sig: sig})
}

func (r *recordingNotifier) all() []recordedSignal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedSignal, len(r.signals))
	copy(out, r.signals)
	return out
}

type recordingSurface struct {
	mu       sync.Mutex
	applied  []string
	exits    int
}

func (r *recordingSurface) ApplyContent(serialized string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, serialized)
}

func (r *recordingSurface) ExitEditing() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exits++
}

type fakeSaver struct {
	mu      sync.Mutex
	calls   []*uuid.UUID
	fields  []draft.Fields
	result  SaveResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *fakeSaver) SaveEntry(ctx context.Context, id *uuid.UUID, f draft.Fields, origin string) (SaveResult, error) {
	s.mu.Lock()
	var captured *uuid.UUID
	if id != nil {
		v := *id
		captured = &v
	}
	s.calls = append(s.calls, captured)
	s.fields = append(s.fields, f)
	started := s.started
	release := s.release
	s.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return s.result, s.err
}

func testEntry(id uuid.UUID, version int64, origin, title string) *entity.Entry {
	return &entity.Entry{
		Id:                id,
		UserId:            uuid.New(),
		Version:           version,
		LastEditingOrigin: origin,
		Title:             title,
		Content:           `{"blocks":[{"text":"` + title + `"}]}`,
		Status:            entity.EntryStatusNone,
	}
}

func newTestManager(origin string, saver Saver) (*Manager, *recordingNotifier, *recordingSurface) {
	notifier := &recordingNotifier{}
	surface := &recordingSurface{}
	m := NewManager(origin, saver, notifier, nopLogger{}, Options{
		Surface:            surface,
		AttachmentDebounce: 5 * time.Millisecond,
	})
	return m, notifier, surface
}

func TestCleanAfterIngest(t *testing.T) {
	m, _, _ := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()

	m.Begin(&id, nil)
	if m.IsDirty() {
		t.Fatal("awaiting-load session must not be dirty")
	}

	if !m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages")) {
		t.Fatal("matching load must apply")
	}
	if m.IsDirty() {
		t.Error("freshly ingested entry must not be dirty")
	}
	if v := m.View(); v.KnownVersion == nil || *v.KnownVersion != 5 {
		t.Errorf("known version = %v, want 5", v.KnownVersion)
	}
}

func TestDiscardStaleLoad(t *testing.T) {
	m, _, _ := newTestManager("dev-A", &fakeSaver{})
	idA := uuid.New()
	idB := uuid.New()

	m.Begin(&idA, nil)
	m.Begin(&idB, nil)

	// The slow response for A lands after the user moved on to B.
	if m.IngestLoaded(testEntry(idA, 3, "dev-A", "Old entry")) {
		t.Fatal("load for an abandoned target must be discarded")
	}
	if v := m.View(); v.Loaded != nil || v.Fields != nil {
		t.Error("discarded load must not touch the working copy")
	}

	if !m.IngestLoaded(testEntry(idB, 7, "dev-A", "Current entry")) {
		t.Fatal("load for the current target must apply")
	}
	if v := m.View(); v.Fields == nil || v.Fields.Title != "Current entry" {
		t.Error("working copy should reflect the current target")
	}
}

func TestDuplicateLoadDiscarded(t *testing.T) {
	m, _, _ := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "First"))

	if m.IngestLoaded(testEntry(id, 5, "dev-A", "Second")) {
		t.Fatal("second load for the same session must be discarded")
	}
	if v := m.View(); v.Fields.Title != "First" {
		t.Errorf("title = %q, want the first load's content", v.Fields.Title)
	}
}

func TestNewEntryDirtiness(t *testing.T) {
	m, _, _ := newTestManager("dev-A", &fakeSaver{})

	m.Begin(nil, &draft.Defaults{Title: "", Content: ""})
	if m.IsDirty() {
		t.Fatal("new entry from empty defaults must start clean")
	}

	m.SetWorkingContent("hello")
	if !m.IsDirty() {
		t.Error("typed content must make a new entry dirty")
	}
}

func TestOwnRevisionNotNewer(t *testing.T) {
	m, _, _ := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))

	out := m.ObserveRevision(testEntry(id, 5, "dev-A", "Morning pages"))
	if out != conflict.OutcomeIgnoredStale {
		t.Errorf("outcome = %v, want %v", out, conflict.OutcomeIgnoredStale)
	}
}

func TestCleanAdoption(t *testing.T) {
	m, notifier, surface := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))
	m.Focus("content")

	incoming := testEntry(id, 6, "dev-B", "Edited elsewhere")
	out := m.ObserveRevision(incoming)
	if out != conflict.OutcomeAdopted {
		t.Fatalf("outcome = %v, want %v", out, conflict.OutcomeAdopted)
	}

	v := m.View()
	if v.Fields.Title != "Edited elsewhere" {
		t.Errorf("title = %q, want the adopted revision", v.Fields.Title)
	}
	if *v.KnownVersion != 6 {
		t.Errorf("known version = %d, want 6", *v.KnownVersion)
	}
	if v.State != StateBrowsing || v.FocusedField != "" {
		t.Error("adoption must exit the focused state")
	}
	if m.IsDirty() {
		t.Error("adopted revision becomes the new baseline")
	}

	signals := notifier.all()
	if len(signals) != 1 {
		t.Fatalf("got %d signals, want exactly 1", len(signals))
	}
	if signals[0].blocking {
		t.Error("plain adoption must be a non-blocking notice")
	}
	if signals[0].sig.Code != CodeExternalUpdate || signals[0].sig.Origin != "dev-B" {
		t.Errorf("signal = %+v, want external update from dev-B", signals[0].sig)
	}

	surface.mu.Lock()
	defer surface.mu.Unlock()
	if len(surface.applied) != 1 || surface.applied[0] != incoming.Content {
		t.Error("surface must receive the adopted content")
	}
	if surface.exits != 1 {
		t.Error("surface must be told to exit editing")
	}
}

func TestDirtyKeepsLocalEdits(t *testing.T) {
	m, notifier, _ := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))
	m.SetTitle("My unsaved local title")

	out := m.ObserveRevision(testEntry(id, 6, "dev-B", "Edited elsewhere"))
	if out != conflict.OutcomeKeptLocal {
		t.Fatalf("outcome = %v, want %v", out, conflict.OutcomeKeptLocal)
	}

	v := m.View()
	if v.Fields.Title != "My unsaved local title" {
		t.Error("local edits must survive an external revision")
	}
	// The ledger still advances so later comparisons stay correct.
	if *v.KnownVersion != 6 {
		t.Errorf("known version = %d, want 6", *v.KnownVersion)
	}

	signals := notifier.all()
	if len(signals) != 1 {
		t.Fatalf("got %d signals, want exactly 1", len(signals))
	}
	if signals[0].blocking || signals[0].sig.Code != CodeMergeNeeded {
		t.Errorf("signal = %+v, want a non-blocking merge notice", signals[0])
	}
}

func TestRevisionForOtherEntryIgnored(t *testing.T) {
	m, notifier, _ := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))

	out := m.ObserveRevision(testEntry(uuid.New(), 9, "dev-B", "Unrelated"))
	if out != conflict.OutcomeIgnoredMismatch {
		t.Fatalf("outcome = %v, want %v", out, conflict.OutcomeIgnoredMismatch)
	}
	if len(notifier.all()) != 0 {
		t.Error("mismatched delivery must not signal anything")
	}
}

func TestSaveInFlightGate(t *testing.T) {
	saver := &fakeSaver{
		result:  SaveResult{Id: uuid.New(), Version: 6},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m, notifier, _ := newTestManager("dev-A", saver)
	id := uuid.New()
	saver.result.Id = id

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))
	m.SetTitle("about to save")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := m.Save(context.Background()); err != nil {
			t.Errorf("Save() error = %v", err)
		}
	}()
	<-saver.started

	out := m.ObserveRevision(testEntry(id, 9, "dev-B", "Racing push"))
	if out != conflict.OutcomeIgnoredSaving {
		t.Fatalf("outcome = %v, want %v", out, conflict.OutcomeIgnoredSaving)
	}
	v := m.View()
	if v.Fields.Title != "about to save" {
		t.Error("working copy must be untouched while a save is in flight")
	}
	if *v.KnownVersion != 5 {
		t.Error("an ignored revision must not advance the ledger")
	}
	if len(notifier.all()) != 0 {
		t.Error("an ignored revision must not signal")
	}

	close(saver.release)
	<-done
}

func TestSaveSuccess(t *testing.T) {
	created := uuid.New()
	saver := &fakeSaver{result: SaveResult{Id: created, Version: 1}}
	m, _, _ := newTestManager("dev-A", saver)

	m.Begin(nil, &draft.Defaults{Title: "Fresh"})
	m.SetWorkingContent("first words")
	if !m.IsDirty() {
		t.Fatal("content must make the draft dirty before save")
	}

	res, err := m.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if res.Id != created || res.Version != 1 {
		t.Fatalf("Save() = %+v, want id=%s version=1", res, created)
	}

	if saver.calls[0] != nil {
		t.Error("creating save must pass a nil id to the store")
	}

	v := m.View()
	if v.Loaded == nil || *v.Loaded != created {
		t.Error("session must adopt the created id")
	}
	if v.KnownVersion == nil || *v.KnownVersion != 1 {
		t.Errorf("known version = %v, want 1", v.KnownVersion)
	}
	if m.IsDirty() {
		t.Error("saved fields become the new baseline")
	}

	// Second save goes to the now-known id.
	m.SetTitle("Fresh, renamed")
	saver.result = SaveResult{Id: created, Version: 2}
	if _, err := m.Save(context.Background()); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if saver.calls[1] == nil || *saver.calls[1] != created {
		t.Error("second save must target the created id")
	}
	if v := m.View(); *v.KnownVersion != 2 {
		t.Errorf("known version = %d, want 2", *v.KnownVersion)
	}
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	saveErr := errors.New("store rejected the write")
	saver := &fakeSaver{err: saveErr}
	m, _, _ := newTestManager("dev-A", saver)
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))
	m.SetTitle("edited but doomed")

	_, err := m.Save(context.Background())
	if !errors.Is(err, saveErr) {
		t.Fatalf("Save() error = %v, want the store error unchanged", err)
	}

	if !m.IsDirty() {
		t.Error("a failed save must leave the dirty state alone")
	}
	if v := m.View(); v.Fields.Title != "edited but doomed" {
		t.Error("a failed save must leave the working copy alone")
	}
	if v := m.View(); *v.KnownVersion != 5 {
		t.Error("a failed save must not advance the ledger")
	}
	if m.Saving() {
		t.Error("the in-flight flag must clear after a failure")
	}
}

func TestKeystrokesDuringSaveStayDirty(t *testing.T) {
	id := uuid.New()
	saver := &fakeSaver{
		result:  SaveResult{Id: id, Version: 6},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m, _, _ := newTestManager("dev-A", saver)

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))
	m.SetTitle("saved title")

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Save(context.Background())
	}()
	<-saver.started

	// The user keeps typing during the round trip.
	m.SetTitle("typed during the save")

	close(saver.release)
	<-done

	if !m.IsDirty() {
		t.Error("keystrokes during the round trip must stay dirty against the saved baseline")
	}
	if v := m.View(); v.Fields.Title != "typed during the save" {
		t.Error("the round trip must not roll back later keystrokes")
	}
}

func TestEndDuringSaveDiscardsCompletion(t *testing.T) {
	id := uuid.New()
	saver := &fakeSaver{
		result:  SaveResult{Id: id, Version: 6},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m, _, _ := newTestManager("dev-A", saver)

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))
	m.SetTitle("mid-flight")

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Save(context.Background())
	}()
	<-saver.started

	m.End() // must not panic, must orphan the in-flight save

	close(saver.release)
	<-done

	v := m.View()
	if v.Fields != nil || v.Loaded != nil || v.KnownVersion != nil {
		t.Error("a completion landing after End must not resurrect session state")
	}
}

func TestDoubleSaveRejected(t *testing.T) {
	id := uuid.New()
	saver := &fakeSaver{
		result:  SaveResult{Id: id, Version: 6},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m, _, _ := newTestManager("dev-A", saver)

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Save(context.Background())
	}()
	<-saver.started

	if _, err := m.Save(context.Background()); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("second Save() error = %v, want ErrSaveInFlight", err)
	}

	close(saver.release)
	<-done
}

func TestSaveWithoutDraft(t *testing.T) {
	m, _, _ := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()
	m.Begin(&id, nil) // awaiting load, nothing editable yet

	if _, err := m.Save(context.Background()); !errors.Is(err, ErrNoDraft) {
		t.Errorf("Save() error = %v, want ErrNoDraft", err)
	}
}

func TestOverwriteWarningAfterRecentSave(t *testing.T) {
	current := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	id := uuid.New()
	saver := &fakeSaver{result: SaveResult{Id: id, Version: 6}}

	notifier := &recordingNotifier{}
	m := NewManager("dev-A", saver, notifier, nopLogger{}, Options{
		OverwriteWindow: 30 * time.Second,
		Clock:           func() time.Time { return current },
	})

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))
	m.SetTitle("my save")
	if _, err := m.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// 10s later another device's revision lands on a clean copy.
	current = current.Add(10 * time.Second)
	out := m.ObserveRevision(testEntry(id, 7, "dev-B", "their version"))
	if out != conflict.OutcomeAdoptedOverwrote {
		t.Fatalf("outcome = %v, want %v", out, conflict.OutcomeAdoptedOverwrote)
	}

	signals := notifier.all()
	if len(signals) != 1 || !signals[0].blocking || signals[0].sig.Code != CodeSaveOverwritten {
		t.Fatalf("signals = %+v, want one blocking save-overwritten warning", signals)
	}

	// 40s later again: the stamp was consumed, plain notice this time.
	current = current.Add(40 * time.Second)
	out = m.ObserveRevision(testEntry(id, 8, "dev-B", "their next version"))
	if out != conflict.OutcomeAdopted {
		t.Fatalf("outcome = %v, want %v", out, conflict.OutcomeAdopted)
	}

	signals = notifier.all()
	if len(signals) != 2 || signals[1].blocking || signals[1].sig.Code != CodeExternalUpdate {
		t.Fatalf("signals = %+v, want a plain notice second", signals)
	}
}

func TestAttachmentDeltaBlocksAdoption(t *testing.T) {
	m, notifier, _ := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))
	m.PrimeAttachmentCount(2)

	// Upload pipeline reports a new photo; wait out the debounce.
	m.ReportAttachmentCount(3)
	time.Sleep(30 * time.Millisecond)

	out := m.ObserveRevision(testEntry(id, 6, "dev-B", "Edited elsewhere"))
	if out != conflict.OutcomeKeptLocal {
		t.Fatalf("outcome = %v, want %v (attachment drift is a dirty signal)", out, conflict.OutcomeKeptLocal)
	}
	if signals := notifier.all(); len(signals) != 1 || signals[0].sig.Code != CodeMergeNeeded {
		t.Errorf("signals = %+v, want one merge notice", signals)
	}
}

func TestAttachmentDebounceCancelledByEnd(t *testing.T) {
	m, _, _ := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))
	m.ReportAttachmentCount(7)
	m.End()

	id2 := uuid.New()
	m.Begin(&id2, nil)
	m.IngestLoaded(testEntry(id2, 1, "dev-A", "Next entry"))

	time.Sleep(30 * time.Millisecond)

	if v := m.View(); v.AttachmentCount != 0 {
		t.Errorf("attachment count = %d, want 0 (stale debounced apply must be dropped)", v.AttachmentCount)
	}
}

func TestUnknownOriginTreatsRevisionsAsExternal(t *testing.T) {
	// Device identity unavailable: fail toward conflict signals rather than
	// silently accepting a possibly foreign overwrite.
	saver := &fakeSaver{}
	notifier := &recordingNotifier{}
	m := NewManager("", saver, notifier, nopLogger{}, Options{})
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))

	out := m.ObserveRevision(testEntry(id, 6, "", "whoever"))
	if out != conflict.OutcomeAdopted {
		t.Fatalf("outcome = %v, want %v", out, conflict.OutcomeAdopted)
	}
	if signals := notifier.all(); len(signals) != 1 {
		t.Error("external classification must produce a notice")
	}
}

func TestVersionMonotonicAcrossRevisions(t *testing.T) {
	m, _, _ := newTestManager("dev-A", &fakeSaver{})
	id := uuid.New()

	m.Begin(&id, nil)
	m.IngestLoaded(testEntry(id, 5, "dev-A", "Morning pages"))

	prev := int64(5)
	for _, version := range []int64{7, 6, 9, 2, 9, 11} {
		m.ObserveRevision(testEntry(id, version, "dev-B", "remote"))
		v := m.View()
		if *v.KnownVersion < prev {
			t.Fatalf("known version went backwards: %d -> %d", prev, *v.KnownVersion)
		}
		prev = *v.KnownVersion
	}
	if prev != 11 {
		t.Errorf("final known version = %d, want 11", prev)
	}
}
