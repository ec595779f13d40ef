package contract

import (
	"context"

	"trace-journal-be/internal/model"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByDevice(ctx context.Context, deviceID uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	UnreadCount(ctx context.Context, deviceID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID) error
	// Acknowledge resolves a blocking warning. Returns an error for unknown
	// ids or notifications that never required an ack.
	Acknowledge(ctx context.Context, notificationID uuid.UUID) error
	// PendingAcks lists unacknowledged warnings, redelivered when a device
	// reconnects so a blocking warning cannot be lost to a dropped socket.
	PendingAcks(ctx context.Context, deviceID uuid.UUID) ([]model.Notification, error)
}
