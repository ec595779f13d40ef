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

type EntryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EntryMapper
}

func NewEntryRepository(db *gorm.DB) contract.EntryRepository {
	return &EntryRepositoryImpl{
		db:     db,
		mapper: mapper.NewEntryMapper(),
	}
}

func (r *EntryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EntryRepositoryImpl) Create(ctx context.Context, entry *entity.Entry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *EntryRepositoryImpl) Update(ctx context.Context, entry *entity.Entry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

// UpdateVersioned is the compare-and-set write behind every session save: the
// WHERE clause on the old version makes two racing writers serialize at the
// database, so versions can never fork.
func (r *EntryRepositoryImpl) UpdateVersioned(ctx context.Context, entry *entity.Entry, expectedVersion int64) (bool, error) {
	m := r.mapper.ToModel(entry)
	res := r.db.WithContext(ctx).
		Model(&model.Entry{}).
		Where("id = ? AND version = ?", m.Id, expectedVersion).
		Updates(map[string]interface{}{
			"version":             m.Version,
			"last_editing_origin": m.LastEditingOrigin,
			"title":               m.Title,
			"content":             m.Content,
			"status":              m.Status,
			"mood":                m.Mood,
			"location":            m.Location,
			"due_at":              m.DueAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *EntryRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Entry{}, id).Error
}

func (r *EntryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Entry, error) {
	var m model.Entry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EntryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Entry, error) {
	var models []*model.Entry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]*entity.Entry, 0, len(models))
	for _, m := range models {
		entries = append(entries, r.mapper.ToEntity(m))
	}
	return entries, nil
}

func (r *EntryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Entry{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
