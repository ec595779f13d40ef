package service

import (
	"context"
	"fmt"
	"time"

	"trace-journal-be/internal/constant"
	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/model"
	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/internal/repository/specification"
	"trace-journal-be/internal/repository/unitofwork"
	"trace-journal-be/internal/websocket"
	editorsession "trace-journal-be/pkg/editor/session"

	"github.com/google/uuid"
)

type INotificationService interface {
	// DeliverSignal persists a conflict signal for a device and pushes it
	// down the device's socket. Blocking signals require an ack before the
	// client dismisses them.
	DeliverSignal(ctx context.Context, userId, deviceId uuid.UUID, sig editorsession.Signal, blocking bool)

	List(ctx context.Context, deviceId uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	UnreadCount(ctx context.Context, deviceId uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationId uuid.UUID) error
	Acknowledge(ctx context.Context, notificationId uuid.UUID) error
	// RedeliverPending pushes unacknowledged warnings to a device that just
	// reconnected, so a blocking warning cannot be lost to a dropped socket.
	RedeliverPending(ctx context.Context, deviceId uuid.UUID)
}

type notificationService struct {
	uowFactory unitofwork.RepositoryFactory
	hub        *websocket.Hub
	log        logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, hub *websocket.Hub, log logger.ILogger) INotificationService {
	return &notificationService{
		uowFactory: uowFactory,
		hub:        hub,
		log:        log,
	}
}

func (s *notificationService) DeliverSignal(ctx context.Context, userId, deviceId uuid.UUID, sig editorsession.Signal, blocking bool) {
	kind := constant.NotificationKindNotice
	if blocking {
		kind = constant.NotificationKindWarning
	}

	originName := s.resolveOriginName(ctx, userId, sig.Origin)
	title, message := wording(sig.Code, originName)

	entryId := sig.EntryId
	notification := &model.Notification{
		ID:          uuid.New(),
		UserID:      userId,
		DeviceID:    deviceId,
		Kind:        kind,
		Code:        sig.Code,
		Title:       title,
		Message:     message,
		EntryID:     &entryId,
		OriginID:    sig.Origin,
		RequiresAck: blocking,
		CreatedAt:   time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().Create(ctx, notification); err != nil {
		// Persisting failed; still push the frame so the user sees it now.
		s.log.Error("NotificationService", "Failed to persist signal", map[string]interface{}{
			"device_id": deviceId.String(), "code": sig.Code, "error": err.Error(),
		})
	}

	s.push(deviceId, notification)
}

func (s *notificationService) push(deviceId uuid.UUID, n *model.Notification) {
	// An offline device picks the signal up on its next /ws connect, either
	// from the pending-ack redelivery or the notification list.
	if !s.hub.Connected(deviceId) {
		return
	}
	s.hub.Send(deviceId, websocket.Frame{
		Type: constant.WSTypeSignal,
		Data: n,
	})
}

func (s *notificationService) List(ctx context.Context, deviceId uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().FindByDevice(ctx, deviceId, limit, offset)
}

func (s *notificationService) UnreadCount(ctx context.Context, deviceId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().UnreadCount(ctx, deviceId)
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().MarkAsRead(ctx, notificationId)
}

func (s *notificationService) Acknowledge(ctx context.Context, notificationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().Acknowledge(ctx, notificationId)
}

func (s *notificationService) RedeliverPending(ctx context.Context, deviceId uuid.UUID) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	pending, err := uow.NotificationRepository().PendingAcks(ctx, deviceId)
	if err != nil {
		s.log.Error("NotificationService", "Failed to load pending warnings", map[string]interface{}{
			"device_id": deviceId.String(), "error": err.Error(),
		})
		return
	}
	for i := range pending {
		s.push(deviceId, &pending[i])
	}
}

// resolveOriginName maps a device id string to its registered name for the
// signal wording. Falls back to a generic label when the origin is unknown.
func (s *notificationService) resolveOriginName(ctx context.Context, userId uuid.UUID, origin string) string {
	originId, err := uuid.Parse(origin)
	if err != nil {
		return "another device"
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	device, err := uow.DeviceRepository().FindOne(ctx,
		specification.ByID{ID: originId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil || device == nil {
		return "another device"
	}
	return deviceLabel(device)
}

func deviceLabel(d *entity.Device) string {
	if d.Name != "" {
		return d.Name
	}
	return "another device"
}

func wording(code, originName string) (title, message string) {
	switch code {
	case editorsession.CodeExternalUpdate:
		return "Entry updated", fmt.Sprintf("This entry was updated on %s.", originName)
	case editorsession.CodeMergeNeeded:
		return "Unsaved changes kept",
			fmt.Sprintf("%s changed this entry while you were editing. Your edits are kept; save to make them the latest version.", originName)
	case editorsession.CodeSaveOverwritten:
		return "Your save may have been overwritten",
			fmt.Sprintf("%s saved this entry right after you did. Review the entry to make sure nothing was lost.", originName)
	default:
		return "Entry changed", fmt.Sprintf("This entry was changed on %s.", originName)
	}
}
