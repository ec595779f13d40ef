package mapper

import (
	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/model"
)

type AttachmentMapper struct{}

func NewAttachmentMapper() *AttachmentMapper {
	return &AttachmentMapper{}
}

func (m *AttachmentMapper) ToEntity(a *model.Attachment) *entity.Attachment {
	if a == nil {
		return nil
	}
	return &entity.Attachment{
		Id:         a.Id,
		EntryId:    a.EntryId,
		UserId:     a.UserId,
		Kind:       a.Kind,
		Status:     entity.AttachmentStatus(a.Status),
		StorageKey: a.StorageKey,
		CreatedAt:  a.CreatedAt,
		UploadedAt: a.UploadedAt,
	}
}

func (m *AttachmentMapper) ToModel(a *entity.Attachment) *model.Attachment {
	if a == nil {
		return nil
	}
	return &model.Attachment{
		Id:         a.Id,
		EntryId:    a.EntryId,
		UserId:     a.UserId,
		Kind:       a.Kind,
		Status:     string(a.Status),
		StorageKey: a.StorageKey,
		CreatedAt:  a.CreatedAt,
		UploadedAt: a.UploadedAt,
	}
}
