package bootstrap

import (
	"context"
	"log"
	"time"

	"trace-journal-be/internal/config"
	"trace-journal-be/internal/controller"
	"trace-journal-be/internal/handler"
	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/internal/repository/memory"
	"trace-journal-be/internal/repository/unitofwork"
	"trace-journal-be/internal/service"
	"trace-journal-be/internal/websocket"

	pktNats "trace-journal-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DeviceController   controller.IDeviceController
	EntryController    controller.IEntryController
	SessionController  controller.ISessionController
	SettingsController controller.ISettingsController

	// Background services, exposed for main.go to run
	ConsumerService service.IConsumerService
	SettingsService service.ISettingsService

	// WebSockets & notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Instance identity: sessions, the hub and the event mirror all need to
	// tell this instance's traffic apart from the rest of the cluster.
	instanceID := cfg.App.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/push.log")
	wsHub := websocket.NewHub(rdb, instanceID, wsLogger)
	go wsHub.Run()

	// In-memory session registry; idle eviction tears sessions down.
	sessionRegistry := memory.NewSessionRegistry(
		time.Duration(cfg.Editor.SessionTTLMinutes) * time.Minute,
	)

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Editor.RevisionTopic, pubSub)

	entryService := service.NewEntryService(uowFactory, publisherService, natsPub, instanceID, sysLogger)
	notificationService := service.NewNotificationService(uowFactory, wsHub, sysLogger)

	sessionService := service.NewSessionService(
		sessionRegistry,
		entryService,
		notificationService,
		wsHub,
		natsPub,
		time.Duration(cfg.Editor.OverwriteWindowSeconds)*time.Second,
		time.Duration(cfg.Editor.AttachmentDebounceMs)*time.Millisecond,
		sysLogger,
	)

	attachmentService := service.NewAttachmentService(uowFactory, sessionService, sysLogger)

	deviceService := service.NewDeviceService(
		uowFactory,
		natsPub,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
		sysLogger,
	)

	settingsService := service.NewSettingsService(
		uowFactory,
		time.Duration(cfg.Editor.SettingsDebounceMs)*time.Millisecond,
		sysLogger,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Editor.RevisionTopic,
		natsSub,
		publisherService,
		sessionService,
		uowFactory,
		instanceID,
		sysLogger,
	)

	// Handler
	notifHandler := handler.NewNotificationHandler(notificationService, deviceService, wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		DeviceController:   controller.NewDeviceController(deviceService),
		EntryController:    controller.NewEntryController(entryService, attachmentService),
		SessionController:  controller.NewSessionController(sessionService),
		SettingsController: controller.NewSettingsController(settingsService),

		ConsumerService: consumerService,
		SettingsService: settingsService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
