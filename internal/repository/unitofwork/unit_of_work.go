package unitofwork

import (
	"context"

	"trace-journal-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	DeviceRepository() contract.DeviceRepository
	EntryRepository() contract.EntryRepository
	AttachmentRepository() contract.AttachmentRepository
	NotificationRepository() contract.NotificationRepository
}
