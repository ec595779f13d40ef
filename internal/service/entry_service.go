package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"trace-journal-be/internal/constant"
	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/internal/repository/specification"
	"trace-journal-be/internal/repository/unitofwork"
	"trace-journal-be/pkg/editor/draft"
	editorsession "trace-journal-be/pkg/editor/session"
	"trace-journal-be/pkg/events"
	pktNats "trace-journal-be/pkg/nats"
	"trace-journal-be/pkg/richtext"

	"github.com/google/uuid"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
	// ErrVersionConflict means another writer bumped the entry's version
	// between our read and our write. The caller keeps its draft and retries.
	ErrVersionConflict = errors.New("entry was modified concurrently, save again")
)

type IEntryService interface {
	List(ctx context.Context, userId uuid.UUID, req *dto.ListEntriesRequest) (*dto.ListEntriesResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowEntryResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	// Load fetches an entry for a session's ingestion path.
	Load(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Entry, error)

	// Save creates (nil id) or versions up an existing entry, stamps the
	// writing origin, and announces the new revision. This is the
	// persistence contract the editing sessions save through.
	Save(ctx context.Context, userId uuid.UUID, id *uuid.UUID, fields draft.Fields, origin string) (editorsession.SaveResult, error)
}

type entryService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	instanceID       string
	log              logger.ILogger
}

func NewEntryService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	instanceID string,
	log logger.ILogger,
) IEntryService {
	return &entryService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		instanceID:       instanceID,
		log:              log,
	}
}

func (s *entryService) List(ctx context.Context, userId uuid.UUID, req *dto.ListEntriesRequest) (*dto.ListEntriesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OwnedByUser{UserID: userId},
	}
	if req.Status != "" {
		specs = append(specs, specification.ByStatus{Status: req.Status})
	}
	if req.Search != "" {
		specs = append(specs, specification.TitleContains{Query: req.Search})
	}
	if req.UpdatedSince != nil {
		specs = append(specs, specification.UpdatedSince{At: *req.UpdatedSince})
	}
	if req.DueBefore != nil {
		specs = append(specs, specification.DueBefore{At: *req.DueBefore})
	}

	total, err := uow.EntryRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	specs = append(specs,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)

	entries, err := uow.EntryRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.EntryListItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.EntryListItem{
			Id:        e.Id,
			Title:     e.Title,
			Preview:   richtext.Excerpt(e.Content, 140),
			Status:    string(e.Status),
			Mood:      e.Mood,
			Version:   e.Version,
			DueAt:     e.DueAt,
			UpdatedAt: e.UpdatedAt,
			CreatedAt: e.CreatedAt,
		})
	}

	return &dto.ListEntriesResponse{Entries: items, Total: total}, nil
}

func (s *entryService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowEntryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	entry, err := uow.EntryRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	attachments, err := uow.AttachmentRepository().CountByEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowEntryResponse{
		Id:                entry.Id,
		Title:             entry.Title,
		Content:           entry.Content,
		Status:            string(entry.Status),
		Mood:              entry.Mood,
		Location:          entry.Location,
		DueAt:             entry.DueAt,
		Version:           entry.Version,
		LastEditingOrigin: entry.LastEditingOrigin,
		AttachmentCount:   attachments,
		CreatedAt:         entry.CreatedAt,
		UpdatedAt:         entry.UpdatedAt,
	}, nil
}

func (s *entryService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	entry, err := uow.EntryRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrEntryNotFound
	}

	return uow.EntryRepository().Delete(ctx, id)
}

func (s *entryService) Load(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Entry, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EntryRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
}

func (s *entryService) Save(ctx context.Context, userId uuid.UUID, id *uuid.UUID, fields draft.Fields, origin string) (editorsession.SaveResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var saved *entity.Entry

	if id == nil {
		entry := &entity.Entry{
			Id:                uuid.New(),
			UserId:            userId,
			Version:           1,
			LastEditingOrigin: origin,
			Title:             fields.Title,
			Content:           fields.Content,
			Status:            fields.Status,
			Mood:              fields.Mood,
			Location:          fields.Location,
			DueAt:             fields.DueAt,
			CreatedAt:         time.Now(),
		}
		if err := uow.EntryRepository().Create(ctx, entry); err != nil {
			return editorsession.SaveResult{}, err
		}
		saved = entry
	} else {
		existing, err := uow.EntryRepository().FindOne(ctx,
			specification.ByID{ID: *id},
			specification.OwnedByUser{UserID: userId},
		)
		if err != nil {
			return editorsession.SaveResult{}, err
		}
		if existing == nil {
			return editorsession.SaveResult{}, ErrEntryNotFound
		}

		existing.Version++
		existing.LastEditingOrigin = origin
		existing.Title = fields.Title
		existing.Content = fields.Content
		existing.Status = fields.Status
		existing.Mood = fields.Mood
		existing.Location = fields.Location
		existing.DueAt = fields.DueAt

		// Compare-and-set: if another device's save landed after our read,
		// the write is rejected rather than silently clobbering it.
		ok, err := uow.EntryRepository().UpdateVersioned(ctx, existing, existing.Version-1)
		if err != nil {
			return editorsession.SaveResult{}, err
		}
		if !ok {
			return editorsession.SaveResult{}, ErrVersionConflict
		}
		saved = existing
	}

	s.publishRevision(ctx, saved)

	return editorsession.SaveResult{Id: saved.Id, Version: saved.Version}, nil
}

// publishRevision announces a persisted revision on the in-process bus and,
// for other instances, the NATS stream. Failures are logged, not returned:
// the save itself succeeded and the device must hear that.
func (s *entryService) publishRevision(ctx context.Context, entry *entity.Entry) {
	msg := dto.RevisionMessage{
		EntryId:  entry.Id,
		Version:  entry.Version,
		Origin:   entry.LastEditingOrigin,
		Instance: s.instanceID,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("EntryService", "Revision message marshal failed", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Error("EntryService", "Local revision publish failed", map[string]interface{}{
			"entry_id": entry.Id.String(), "error": err.Error(),
		})
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: constant.EventEntryRevision,
			Data: map[string]interface{}{
				"entry_id": entry.Id.String(),
				"user_id":  entry.UserId.String(),
				"version":  entry.Version,
				"origin":   entry.LastEditingOrigin,
				"instance": s.instanceID,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("EntryService", "NATS revision publish failed", map[string]interface{}{
				"entry_id": entry.Id.String(), "error": err.Error(),
			})
		}
	}
}
