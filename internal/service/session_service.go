package service

import (
	"context"
	"errors"
	"time"

	"trace-journal-be/internal/constant"
	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/internal/repository/memory"
	"trace-journal-be/internal/websocket"
	"trace-journal-be/pkg/editor/conflict"
	"trace-journal-be/pkg/editor/draft"
	editorsession "trace-journal-be/pkg/editor/session"
	"trace-journal-be/pkg/events"
	pktNats "trace-journal-be/pkg/nats"

	"github.com/google/uuid"
)

var (
	ErrNoSession = errors.New("no editing session is open for this device")
)

// ISessionService hosts the live editing sessions: one per device, keyed by
// device id. It adapts persistence, notification delivery and the device's
// socket into the collaborators each session needs, and routes incoming
// revision pushes to the sessions hosting the affected entry.
type ISessionService interface {
	Open(ctx context.Context, userId, deviceId uuid.UUID, entryId uuid.UUID) (*dto.SessionStateResponse, error)
	OpenNew(ctx context.Context, userId, deviceId uuid.UUID, req *dto.NewSessionRequest) (*dto.SessionStateResponse, error)
	Close(ctx context.Context, deviceId uuid.UUID) error

	UpdateFields(ctx context.Context, deviceId uuid.UUID, req *dto.UpdateFieldsRequest) (*dto.SessionStateResponse, error)
	SetContent(ctx context.Context, deviceId uuid.UUID, serialized string) error
	Focus(ctx context.Context, deviceId uuid.UUID, field string) error
	Blur(ctx context.Context, deviceId uuid.UUID) error
	QueueAttachment(ctx context.Context, deviceId uuid.UUID, req *dto.QueueAttachmentRequest) error
	UnqueueAttachment(ctx context.Context, deviceId uuid.UUID, localId string) error

	Save(ctx context.Context, deviceId uuid.UUID) (*dto.SaveSessionResponse, error)
	State(ctx context.Context, deviceId uuid.UUID) (*dto.SessionStateResponse, error)

	// DispatchRevision offers a persisted revision to every live session.
	// Sessions hosting a different entry drop it; the one session per device
	// hosting this entry runs it through the resolution rules.
	DispatchRevision(ctx context.Context, entry *entity.Entry)

	// ReportAttachmentCount forwards an upload-pipeline count change to the
	// sessions hosting the entry. Applications are debounced per session.
	ReportAttachmentCount(entryId uuid.UUID, count int)
}

type sessionService struct {
	registry            *memory.SessionRegistry
	entryService        IEntryService
	notificationService INotificationService
	hub                 *websocket.Hub
	eventPublisher      *pktNats.Publisher
	log                 logger.ILogger

	overwriteWindow    time.Duration
	attachmentDebounce time.Duration
}

func NewSessionService(
	registry *memory.SessionRegistry,
	entryService IEntryService,
	notificationService INotificationService,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	overwriteWindow time.Duration,
	attachmentDebounce time.Duration,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		registry:            registry,
		entryService:        entryService,
		notificationService: notificationService,
		hub:                 hub,
		eventPublisher:      eventPublisher,
		log:                 log,
		overwriteWindow:     overwriteWindow,
		attachmentDebounce:  attachmentDebounce,
	}
}

// entrySaver binds a user to the entry service's save contract so a session
// can persist without knowing who owns it.
type entrySaver struct {
	userId  uuid.UUID
	entries IEntryService
}

func (s *entrySaver) SaveEntry(ctx context.Context, id *uuid.UUID, fields draft.Fields, origin string) (editorsession.SaveResult, error) {
	return s.entries.Save(ctx, s.userId, id, fields, origin)
}

// signalNotifier routes a session's conflict signals into persisted,
// pushed notifications for the owning device.
type signalNotifier struct {
	userId        uuid.UUID
	deviceId      uuid.UUID
	notifications INotificationService
}

func (n *signalNotifier) Notice(sig editorsession.Signal) {
	n.notifications.DeliverSignal(context.Background(), n.userId, n.deviceId, sig, false)
}

func (n *signalNotifier) Warn(sig editorsession.Signal) {
	n.notifications.DeliverSignal(context.Background(), n.userId, n.deviceId, sig, true)
}

// sessionFor builds (or reuses) the device's manager. A device has at most
// one session; opening a new target ends the previous edit in place.
func (s *sessionService) sessionFor(userId, deviceId uuid.UUID) *editorsession.Manager {
	if mgr, ok := s.registry.Get(deviceId); ok {
		return mgr
	}

	mgr := editorsession.NewManager(
		deviceId.String(),
		&entrySaver{userId: userId, entries: s.entryService},
		&signalNotifier{userId: userId, deviceId: deviceId, notifications: s.notificationService},
		s.log,
		editorsession.Options{
			Surface:            websocket.NewDeviceSurface(s.hub, deviceId),
			OverwriteWindow:    s.overwriteWindow,
			AttachmentDebounce: s.attachmentDebounce,
		},
	)
	s.registry.Put(deviceId, mgr)
	return mgr
}

func (s *sessionService) current(deviceId uuid.UUID) (*editorsession.Manager, error) {
	mgr, ok := s.registry.Get(deviceId)
	if !ok {
		return nil, ErrNoSession
	}
	return mgr, nil
}

func (s *sessionService) Open(ctx context.Context, userId, deviceId uuid.UUID, entryId uuid.UUID) (*dto.SessionStateResponse, error) {
	mgr := s.sessionFor(userId, deviceId)
	mgr.Begin(&entryId, nil)

	entry, err := s.entryService.Load(ctx, userId, entryId)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	mgr.IngestLoaded(entry)

	count, err := s.attachmentCount(ctx, userId, entryId)
	if err == nil {
		mgr.PrimeAttachmentCount(count)
	}

	return stateResponse(mgr), nil
}

func (s *sessionService) OpenNew(ctx context.Context, userId, deviceId uuid.UUID, req *dto.NewSessionRequest) (*dto.SessionStateResponse, error) {
	mgr := s.sessionFor(userId, deviceId)

	defaults := &draft.Defaults{}
	if req != nil {
		defaults.Title = req.Title
		defaults.Content = req.Content
		defaults.Status = entity.EntryStatus(req.Status)
		defaults.Mood = req.Mood
		defaults.Location = req.Loc
		defaults.DueAt = req.DueAt
	}
	mgr.Begin(nil, defaults)

	return stateResponse(mgr), nil
}

func (s *sessionService) Close(ctx context.Context, deviceId uuid.UUID) error {
	mgr, err := s.current(deviceId)
	if err != nil {
		return err
	}
	mgr.End()
	s.registry.Remove(deviceId)
	return nil
}

func (s *sessionService) UpdateFields(ctx context.Context, deviceId uuid.UUID, req *dto.UpdateFieldsRequest) (*dto.SessionStateResponse, error) {
	mgr, err := s.current(deviceId)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		mgr.SetTitle(*req.Title)
	}
	if req.Status != nil {
		mgr.SetStatus(entity.EntryStatus(*req.Status))
	}
	if req.Mood != nil {
		mgr.SetMood(*req.Mood)
	}
	if req.ClearLoc {
		mgr.SetLocation(nil)
	} else if req.Location != nil {
		mgr.SetLocation(req.Location)
	}
	if req.ClearDue {
		mgr.SetDueAt(nil)
	} else if req.DueAt != nil {
		mgr.SetDueAt(req.DueAt)
	}

	return stateResponse(mgr), nil
}

func (s *sessionService) SetContent(ctx context.Context, deviceId uuid.UUID, serialized string) error {
	mgr, err := s.current(deviceId)
	if err != nil {
		return err
	}
	mgr.SetWorkingContent(serialized)
	return nil
}

func (s *sessionService) Focus(ctx context.Context, deviceId uuid.UUID, field string) error {
	mgr, err := s.current(deviceId)
	if err != nil {
		return err
	}
	mgr.Focus(field)
	return nil
}

func (s *sessionService) Blur(ctx context.Context, deviceId uuid.UUID) error {
	mgr, err := s.current(deviceId)
	if err != nil {
		return err
	}
	mgr.Blur()
	return nil
}

func (s *sessionService) QueueAttachment(ctx context.Context, deviceId uuid.UUID, req *dto.QueueAttachmentRequest) error {
	mgr, err := s.current(deviceId)
	if err != nil {
		return err
	}
	mgr.QueueAttachment(entity.QueuedAttachment{LocalId: req.LocalId, Kind: req.Kind})
	return nil
}

func (s *sessionService) UnqueueAttachment(ctx context.Context, deviceId uuid.UUID, localId string) error {
	mgr, err := s.current(deviceId)
	if err != nil {
		return err
	}
	mgr.UnqueueAttachment(localId)
	return nil
}

func (s *sessionService) Save(ctx context.Context, deviceId uuid.UUID) (*dto.SaveSessionResponse, error) {
	mgr, err := s.current(deviceId)
	if err != nil {
		return nil, err
	}
	result, err := mgr.Save(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SaveSessionResponse{EntryId: result.Id, Version: result.Version}, nil
}

func (s *sessionService) State(ctx context.Context, deviceId uuid.UUID) (*dto.SessionStateResponse, error) {
	mgr, err := s.current(deviceId)
	if err != nil {
		return nil, err
	}
	return stateResponse(mgr), nil
}

func (s *sessionService) DispatchRevision(ctx context.Context, entry *entity.Entry) {
	if entry == nil {
		return
	}
	for deviceId, mgr := range s.registry.All() {
		// The writing device's own session confirms via its ledger; no need
		// to skip it here.
		outcome := mgr.ObserveRevision(entry)
		if outcome == conflict.OutcomeIgnoredMismatch {
			continue
		}
		s.log.Info("SessionService", "Revision dispatched", map[string]interface{}{
			"entry_id":  entry.Id.String(),
			"version":   entry.Version,
			"device_id": deviceId.String(),
			"outcome":   outcome.String(),
		})
		switch outcome {
		case conflict.OutcomeKeptLocal, conflict.OutcomeAdopted, conflict.OutcomeAdoptedOverwrote:
			s.publishConflict(ctx, entry, deviceId, outcome)
		}
	}
}

func (s *sessionService) publishConflict(ctx context.Context, entry *entity.Entry, deviceId uuid.UUID, outcome conflict.Outcome) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: constant.EventEntryConflict,
		Data: map[string]interface{}{
			"entry_id":  entry.Id.String(),
			"device_id": deviceId.String(),
			"version":   entry.Version,
			"outcome":   outcome.String(),
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("SessionService", "NATS conflict publish failed", map[string]interface{}{
			"entry_id": entry.Id.String(), "error": err.Error(),
		})
	}
}

func (s *sessionService) ReportAttachmentCount(entryId uuid.UUID, count int) {
	for _, mgr := range s.registry.All() {
		view := mgr.View()
		if view.Loaded == nil || *view.Loaded != entryId {
			continue
		}
		mgr.ReportAttachmentCount(count)
	}
}

func (s *sessionService) attachmentCount(ctx context.Context, userId, entryId uuid.UUID) (int, error) {
	show, err := s.entryService.Show(ctx, userId, entryId)
	if err != nil {
		return 0, err
	}
	return int(show.AttachmentCount), nil
}

func stateResponse(mgr *editorsession.Manager) *dto.SessionStateResponse {
	v := mgr.View()
	resp := &dto.SessionStateResponse{
		TargetId:        v.Target,
		LoadedId:        v.Loaded,
		Creating:        v.Creating,
		Dirty:           v.Dirty,
		Saving:          v.Saving,
		KnownVersion:    v.KnownVersion,
		State:           v.State,
		FocusedField:    v.FocusedField,
		AttachmentCount: v.AttachmentCount,
	}
	if v.Fields != nil {
		resp.Title = v.Fields.Title
		resp.Content = v.Fields.Content
		resp.Status = string(v.Fields.Status)
		resp.Mood = v.Fields.Mood
		resp.QueuedCount = len(v.Fields.Queued)
	}
	return resp
}
