package service

import (
	"context"
	"sync"
	"time"

	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/internal/repository/unitofwork"
	"trace-journal-be/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ISettingsService stores per-device editor preferences. Writes are
// debounced per device so a slider being dragged does not hammer the
// database; the last value in a burst wins.
type ISettingsService interface {
	Get(ctx context.Context, deviceId uuid.UUID) (*dto.SettingsResponse, error)
	Save(deviceId uuid.UUID, req *dto.SaveSettingsRequest)
	// Flush persists any pending write immediately, for shutdown.
	Flush()
}

type settingsService struct {
	uowFactory unitofwork.RepositoryFactory
	delay      time.Duration
	log        logger.ILogger

	mu         sync.Mutex
	debouncers map[uuid.UUID]*utils.Debouncer
	pending    map[uuid.UUID]datatypes.JSON
}

func NewSettingsService(uowFactory unitofwork.RepositoryFactory, delay time.Duration, log logger.ILogger) ISettingsService {
	return &settingsService{
		uowFactory: uowFactory,
		delay:      delay,
		log:        log,
		debouncers: make(map[uuid.UUID]*utils.Debouncer),
		pending:    make(map[uuid.UUID]datatypes.JSON),
	}
}

func (s *settingsService) Get(ctx context.Context, deviceId uuid.UUID) (*dto.SettingsResponse, error) {
	// A pending write is the most recent truth.
	s.mu.Lock()
	if blob, ok := s.pending[deviceId]; ok {
		s.mu.Unlock()
		return &dto.SettingsResponse{Settings: []byte(blob)}, nil
	}
	s.mu.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	blob, err := uow.DeviceRepository().GetSettings(ctx, deviceId)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		blob = datatypes.JSON([]byte("{}"))
	}
	return &dto.SettingsResponse{Settings: []byte(blob)}, nil
}

func (s *settingsService) Save(deviceId uuid.UUID, req *dto.SaveSettingsRequest) {
	s.mu.Lock()
	s.pending[deviceId] = datatypes.JSON(req.Settings)
	deb, ok := s.debouncers[deviceId]
	if !ok {
		deb = utils.NewDebouncer(s.delay)
		s.debouncers[deviceId] = deb
	}
	s.mu.Unlock()

	deb.Trigger(func() {
		s.persist(deviceId)
	})
}

func (s *settingsService) persist(deviceId uuid.UUID) {
	s.mu.Lock()
	blob, ok := s.pending[deviceId]
	delete(s.pending, deviceId)
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DeviceRepository().SaveSettings(ctx, deviceId, blob); err != nil {
		s.log.Error("SettingsService", "Failed to persist device settings", map[string]interface{}{
			"device_id": deviceId.String(), "error": err.Error(),
		})
	}
}

func (s *settingsService) Flush() {
	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	for _, deb := range s.debouncers {
		deb.Cancel()
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.persist(id)
	}
}
