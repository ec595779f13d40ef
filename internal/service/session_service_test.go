package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/model"
	"trace-journal-be/internal/repository/memory"
	"trace-journal-be/internal/websocket"
	"trace-journal-be/pkg/editor/draft"
	editorsession "trace-journal-be/pkg/editor/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeEntryService keeps entries in a map and bumps versions in memory, so
// the routing logic can be driven without a database.
type fakeEntryService struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entity.Entry
}

func newFakeEntryService() *fakeEntryService {
	return &fakeEntryService{entries: make(map[uuid.UUID]*entity.Entry)}
}

func (f *fakeEntryService) put(e *entity.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[e.Id] = e
}

func (f *fakeEntryService) List(ctx context.Context, userId uuid.UUID, req *dto.ListEntriesRequest) (*dto.ListEntriesResponse, error) {
	return &dto.ListEntriesResponse{}, nil
}

func (f *fakeEntryService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowEntryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return &dto.ShowEntryResponse{Id: e.Id, Version: e.Version}, nil
}

func (f *fakeEntryService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	return nil
}

func (f *fakeEntryService) Load(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEntryService) Save(ctx context.Context, userId uuid.UUID, id *uuid.UUID, fields draft.Fields, origin string) (editorsession.SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id == nil {
		e := &entity.Entry{Id: uuid.New(), UserId: userId, Version: 1, LastEditingOrigin: origin, Title: fields.Title, Content: fields.Content}
		f.entries[e.Id] = e
		return editorsession.SaveResult{Id: e.Id, Version: 1}, nil
	}

	e, ok := f.entries[*id]
	if !ok {
		return editorsession.SaveResult{}, ErrEntryNotFound
	}
	e.Version++
	e.LastEditingOrigin = origin
	e.Title = fields.Title
	e.Content = fields.Content
	return editorsession.SaveResult{Id: e.Id, Version: e.Version}, nil
}

type deliveredSignal struct {
	deviceId uuid.UUID
	sig      editorsession.Signal
	blocking bool
}

type fakeNotificationService struct {
	mu        sync.Mutex
	delivered []deliveredSignal
}

func (f *fakeNotificationService) DeliverSignal(ctx context.Context, userId, deviceId uuid.UUID, sig editorsession.Signal, blocking bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, deliveredSignal{deviceId: deviceId, sig: sig, blocking: blocking})
}

func (f *fakeNotificationService) List(ctx context.Context, deviceId uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return nil, 0, nil
}
func (f *fakeNotificationService) UnreadCount(ctx context.Context, deviceId uuid.UUID) (int64, error) {
	return 0, nil
}
func (f *fakeNotificationService) MarkAsRead(ctx context.Context, notificationId uuid.UUID) error {
	return nil
}
func (f *fakeNotificationService) Acknowledge(ctx context.Context, notificationId uuid.UUID) error {
	return nil
}
func (f *fakeNotificationService) RedeliverPending(ctx context.Context, deviceId uuid.UUID) {}

func (f *fakeNotificationService) all() []deliveredSignal {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]deliveredSignal, len(f.delivered))
	copy(out, f.delivered)
	return out
}

func newTestSessionService(entries *fakeEntryService, notifs *fakeNotificationService) ISessionService {
	registry := memory.NewSessionRegistry(time.Minute)
	hub := websocket.NewHub(nil, "test-instance", nopLogger{})
	return NewSessionService(registry, entries, notifs, hub, nil, 30*time.Second, time.Millisecond, nopLogger{})
}

func seedEntry(entries *fakeEntryService, userId uuid.UUID, origin string) *entity.Entry {
	e := &entity.Entry{
		Id:                uuid.New(),
		UserId:            userId,
		Version:           3,
		LastEditingOrigin: origin,
		Title:             "Trip notes",
		Content:           "packed already",
	}
	entries.put(e)
	return e
}

func TestOpenLoadsEntryIntoSession(t *testing.T) {
	entries := newFakeEntryService()
	notifs := &fakeNotificationService{}
	svc := newTestSessionService(entries, notifs)

	userId, deviceId := uuid.New(), uuid.New()
	e := seedEntry(entries, userId, uuid.NewString())

	state, err := svc.Open(context.Background(), userId, deviceId, e.Id)
	require.NoError(t, err)

	require.NotNil(t, state.LoadedId)
	assert.Equal(t, e.Id, *state.LoadedId)
	require.NotNil(t, state.KnownVersion)
	assert.Equal(t, int64(3), *state.KnownVersion)
	assert.Equal(t, "Trip notes", state.Title)
	assert.False(t, state.Dirty)
}

func TestOpenUnknownEntryFails(t *testing.T) {
	entries := newFakeEntryService()
	svc := newTestSessionService(entries, &fakeNotificationService{})

	_, err := svc.Open(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestSaveCreatesEntryForNewSession(t *testing.T) {
	entries := newFakeEntryService()
	svc := newTestSessionService(entries, &fakeNotificationService{})

	userId, deviceId := uuid.New(), uuid.New()
	_, err := svc.OpenNew(context.Background(), userId, deviceId, &dto.NewSessionRequest{Title: "fresh"})
	require.NoError(t, err)

	res, err := svc.Save(context.Background(), deviceId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Version)

	loaded, err := entries.Load(context.Background(), userId, res.EntryId)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "fresh", loaded.Title)
	assert.Equal(t, deviceId.String(), loaded.LastEditingOrigin)
}

func TestDispatchRevisionAdoptsOnCleanSession(t *testing.T) {
	entries := newFakeEntryService()
	notifs := &fakeNotificationService{}
	svc := newTestSessionService(entries, notifs)

	userId := uuid.New()
	reader, writer := uuid.New(), uuid.New()
	e := seedEntry(entries, userId, writer.String())

	_, err := svc.Open(context.Background(), userId, reader, e.Id)
	require.NoError(t, err)

	// A newer revision written elsewhere arrives.
	revised := *e
	revised.Version = 4
	revised.LastEditingOrigin = writer.String()
	revised.Title = "Trip notes, revised"
	svc.DispatchRevision(context.Background(), &revised)

	state, err := svc.State(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, int64(4), *state.KnownVersion)
	assert.Equal(t, "Trip notes, revised", state.Title)

	delivered := notifs.all()
	require.Len(t, delivered, 1)
	assert.Equal(t, reader, delivered[0].deviceId)
	assert.Equal(t, editorsession.CodeExternalUpdate, delivered[0].sig.Code)
	assert.False(t, delivered[0].blocking)
}

func TestDispatchRevisionKeepsDirtyEdits(t *testing.T) {
	entries := newFakeEntryService()
	notifs := &fakeNotificationService{}
	svc := newTestSessionService(entries, notifs)

	userId := uuid.New()
	reader, writer := uuid.New(), uuid.New()
	e := seedEntry(entries, userId, writer.String())

	_, err := svc.Open(context.Background(), userId, reader, e.Id)
	require.NoError(t, err)

	title := "my local edit"
	_, err = svc.UpdateFields(context.Background(), reader, &dto.UpdateFieldsRequest{Title: &title})
	require.NoError(t, err)

	revised := *e
	revised.Version = 4
	revised.LastEditingOrigin = writer.String()
	svc.DispatchRevision(context.Background(), &revised)

	state, err := svc.State(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, "my local edit", state.Title)
	assert.True(t, state.Dirty)
	// The ledger still advanced so the next save wins over version 4.
	assert.Equal(t, int64(4), *state.KnownVersion)

	delivered := notifs.all()
	require.Len(t, delivered, 1)
	assert.Equal(t, editorsession.CodeMergeNeeded, delivered[0].sig.Code)
}

func TestDispatchRevisionSkipsOtherEntries(t *testing.T) {
	entries := newFakeEntryService()
	notifs := &fakeNotificationService{}
	svc := newTestSessionService(entries, notifs)

	userId := uuid.New()
	deviceA, deviceB := uuid.New(), uuid.New()
	entryA := seedEntry(entries, userId, uuid.NewString())
	entryB := seedEntry(entries, userId, uuid.NewString())

	_, err := svc.Open(context.Background(), userId, deviceA, entryA.Id)
	require.NoError(t, err)
	_, err = svc.Open(context.Background(), userId, deviceB, entryB.Id)
	require.NoError(t, err)

	revised := *entryA
	revised.Version = 4
	revised.LastEditingOrigin = uuid.NewString()
	svc.DispatchRevision(context.Background(), &revised)

	// Only the session hosting entry A reacts.
	stateB, err := svc.State(context.Background(), deviceB)
	require.NoError(t, err)
	assert.Equal(t, int64(3), *stateB.KnownVersion)

	delivered := notifs.all()
	require.Len(t, delivered, 1)
	assert.Equal(t, deviceA, delivered[0].deviceId)
}

func TestOwnSaveEchoIsSilent(t *testing.T) {
	entries := newFakeEntryService()
	notifs := &fakeNotificationService{}
	svc := newTestSessionService(entries, notifs)

	userId, deviceId := uuid.New(), uuid.New()
	e := seedEntry(entries, userId, uuid.NewString())

	_, err := svc.Open(context.Background(), userId, deviceId, e.Id)
	require.NoError(t, err)

	title := "edited here"
	_, err = svc.UpdateFields(context.Background(), deviceId, &dto.UpdateFieldsRequest{Title: &title})
	require.NoError(t, err)

	res, err := svc.Save(context.Background(), deviceId)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Version)

	// The save's own revision comes back around the bus.
	saved, _ := entries.Load(context.Background(), userId, e.Id)
	svc.DispatchRevision(context.Background(), saved)

	state, err := svc.State(context.Background(), deviceId)
	require.NoError(t, err)
	assert.Equal(t, int64(4), *state.KnownVersion)
	assert.Equal(t, "edited here", state.Title)
	assert.False(t, state.Dirty)

	assert.Empty(t, notifs.all())
}

func TestCloseTearsDownSession(t *testing.T) {
	entries := newFakeEntryService()
	svc := newTestSessionService(entries, &fakeNotificationService{})

	userId, deviceId := uuid.New(), uuid.New()
	e := seedEntry(entries, userId, uuid.NewString())

	_, err := svc.Open(context.Background(), userId, deviceId, e.Id)
	require.NoError(t, err)

	require.NoError(t, svc.Close(context.Background(), deviceId))

	_, err = svc.State(context.Background(), deviceId)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.ErrorIs(t, svc.Blur(context.Background(), deviceId), ErrNoSession)
}
