package implementation

import (
	"context"
	"errors"
	"time"

	"trace-journal-be/internal/model"
	"trace-journal-be/internal/repository/contract"
	"trace-journal-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) contract.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindByDevice(ctx context.Context, deviceID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Notification{}).Where("device_id = ?", deviceID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Scopes(scope.OrderByCreatedDesc).
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *NotificationRepositoryImpl) UnreadCount(ctx context.Context, deviceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("device_id = ? AND is_read = ?", deviceID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", notificationID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

func (r *NotificationRepositoryImpl) Acknowledge(ctx context.Context, notificationID uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND requires_ack = ? AND acked_at IS NULL", notificationID, true).
		Updates(map[string]interface{}{
			"acked_at": now,
			"is_read":  true,
			"read_at":  now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found or does not require acknowledgment")
	}
	return nil
}

func (r *NotificationRepositoryImpl) PendingAcks(ctx context.Context, deviceID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND requires_ack = ? AND acked_at IS NULL", deviceID, true).
		Order("created_at ASC").
		Find(&notifications).Error
	return notifications, err
}
