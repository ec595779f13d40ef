package contract

import (
	"context"

	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EntryRepository interface {
	Create(ctx context.Context, entry *entity.Entry) error
	Update(ctx context.Context, entry *entity.Entry) error
	// UpdateVersioned persists the entry only if the stored version still
	// equals expectedVersion, bumping to entry.Version in the same statement.
	// Returns false when another writer got there first.
	UpdateVersioned(ctx context.Context, entry *entity.Entry, expectedVersion int64) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Entry, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Entry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
