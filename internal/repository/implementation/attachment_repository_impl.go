package implementation

import (
	"context"
	"errors"

	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/mapper"
	"trace-journal-be/internal/model"
	"trace-journal-be/internal/repository/contract"
	"trace-journal-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AttachmentMapper
}

func NewAttachmentRepository(db *gorm.DB) contract.AttachmentRepository {
	return &AttachmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewAttachmentMapper(),
	}
}

func (r *AttachmentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AttachmentRepositoryImpl) Create(ctx context.Context, attachment *entity.Attachment) error {
	m := r.mapper.ToModel(attachment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*attachment = *r.mapper.ToEntity(m)
	return nil
}

func (r *AttachmentRepositoryImpl) Update(ctx context.Context, attachment *entity.Attachment) error {
	m := r.mapper.ToModel(attachment)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*attachment = *r.mapper.ToEntity(m)
	return nil
}

func (r *AttachmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Attachment{}, id).Error
}

func (r *AttachmentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Attachment, error) {
	var m model.Attachment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AttachmentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Attachment, error) {
	var models []*model.Attachment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	attachments := make([]*entity.Attachment, 0, len(models))
	for _, m := range models {
		attachments = append(attachments, r.mapper.ToEntity(m))
	}
	return attachments, nil
}

func (r *AttachmentRepositoryImpl) CountByEntry(ctx context.Context, entryId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Attachment{}).
		Where("entry_id = ?", entryId).
		Count(&count).Error
	return count, err
}
