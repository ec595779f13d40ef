package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/internal/repository/specification"
	"trace-journal-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

// IAttachmentService manages the media pipeline around entries. The editing
// sessions never see attachment rows, only per-entry counts; every count
// change is forwarded to the sessions hosting the entry.
type IAttachmentService interface {
	Register(ctx context.Context, userId, entryId uuid.UUID, req *dto.RegisterAttachmentRequest) (*dto.RegisterAttachmentResponse, error)
	CompleteUpload(ctx context.Context, userId, attachmentId uuid.UUID) error
	Delete(ctx context.Context, userId, attachmentId uuid.UUID) error
	List(ctx context.Context, userId, entryId uuid.UUID, status string) ([]dto.AttachmentResponse, error)
	Count(ctx context.Context, userId, entryId uuid.UUID) (*dto.AttachmentCountResponse, error)
}

type attachmentService struct {
	uowFactory     unitofwork.RepositoryFactory
	sessionService ISessionService
	log            logger.ILogger
}

func NewAttachmentService(uowFactory unitofwork.RepositoryFactory, sessionService ISessionService, log logger.ILogger) IAttachmentService {
	return &attachmentService{
		uowFactory:     uowFactory,
		sessionService: sessionService,
		log:            log,
	}
}

func (s *attachmentService) Register(ctx context.Context, userId, entryId uuid.UUID, req *dto.RegisterAttachmentRequest) (*dto.RegisterAttachmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	entry, err := uow.EntryRepository().FindOne(ctx,
		specification.ByID{ID: entryId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	attachment := &entity.Attachment{
		Id:        uuid.New(),
		EntryId:   entryId,
		UserId:    userId,
		Kind:      req.Kind,
		Status:    entity.AttachmentStatusPending,
		CreatedAt: time.Now(),
	}
	attachment.StorageKey = fmt.Sprintf("attachments/%s/%s", entryId, attachment.Id)

	if err := uow.AttachmentRepository().Create(ctx, attachment); err != nil {
		return nil, err
	}

	s.notifyCount(ctx, entryId)

	return &dto.RegisterAttachmentResponse{
		Id:         attachment.Id,
		StorageKey: attachment.StorageKey,
	}, nil
}

func (s *attachmentService) CompleteUpload(ctx context.Context, userId, attachmentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	attachment, err := uow.AttachmentRepository().FindOne(ctx,
		specification.ByID{ID: attachmentId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if attachment == nil {
		return ErrAttachmentNotFound
	}

	now := time.Now()
	attachment.Status = entity.AttachmentStatusUploaded
	attachment.UploadedAt = &now
	return uow.AttachmentRepository().Update(ctx, attachment)
}

func (s *attachmentService) Delete(ctx context.Context, userId, attachmentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	attachment, err := uow.AttachmentRepository().FindOne(ctx,
		specification.ByID{ID: attachmentId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if attachment == nil {
		return ErrAttachmentNotFound
	}

	if err := uow.AttachmentRepository().Delete(ctx, attachmentId); err != nil {
		return err
	}

	s.notifyCount(ctx, attachment.EntryId)
	return nil
}

func (s *attachmentService) List(ctx context.Context, userId, entryId uuid.UUID, status string) ([]dto.AttachmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.ByEntryID{EntryID: entryId},
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	}
	if status != "" {
		specs = append(specs, specification.ByUploadStatus{Status: status})
	}

	attachments, err := uow.AttachmentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, dto.AttachmentResponse{
			Id:         a.Id,
			EntryId:    a.EntryId,
			Kind:       a.Kind,
			Status:     string(a.Status),
			StorageKey: a.StorageKey,
			CreatedAt:  a.CreatedAt,
			UploadedAt: a.UploadedAt,
		})
	}
	return out, nil
}

func (s *attachmentService) Count(ctx context.Context, userId, entryId uuid.UUID) (*dto.AttachmentCountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	count, err := uow.AttachmentRepository().CountByEntry(ctx, entryId)
	if err != nil {
		return nil, err
	}
	return &dto.AttachmentCountResponse{EntryId: entryId, Count: count}, nil
}

// notifyCount pushes the fresh count to the sessions hosting the entry.
// They debounce the application themselves.
func (s *attachmentService) notifyCount(ctx context.Context, entryId uuid.UUID) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.AttachmentRepository().CountByEntry(ctx, entryId)
	if err != nil {
		s.log.Warn("AttachmentService", "Failed to count attachments", map[string]interface{}{
			"entry_id": entryId.String(), "error": err.Error(),
		})
		return
	}
	s.sessionService.ReportAttachmentCount(entryId, int(count))
}
