package contract

import (
	"context"

	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	Update(ctx context.Context, attachment *entity.Attachment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Attachment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Attachment, error)
	// CountByEntry is the live attachment count the editing sessions track.
	CountByEntry(ctx context.Context, entryId uuid.UUID) (int64, error)
}
