package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/entity"
	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/internal/repository/specification"
	"trace-journal-be/internal/repository/unitofwork"
	"trace-journal-be/pkg/events"
	pkgNats "trace-journal-be/pkg/nats"

	"trace-journal-be/internal/constant"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrInvalidDeviceToken = errors.New("invalid device token")
)

// IDeviceService registers editing origins and exchanges their long-lived
// tokens for JWTs. Accounts are implicit: registering under an unknown email
// creates the user.
type IDeviceService interface {
	Register(ctx context.Context, req *dto.RegisterDeviceRequest) (*dto.RegisterDeviceResponse, error)
	Login(ctx context.Context, req *dto.LoginDeviceRequest) (*dto.LoginDeviceResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]dto.DeviceResponse, error)
	// TouchLastSeen stamps activity; called from the websocket connect path.
	TouchLastSeen(ctx context.Context, deviceId uuid.UUID)
}

type deviceService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pkgNats.Publisher
	jwtSecret      string
	tokenTTL       time.Duration
	log            logger.ILogger
}

func NewDeviceService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pkgNats.Publisher,
	jwtSecret string,
	tokenTTL time.Duration,
	log logger.ILogger,
) IDeviceService {
	return &deviceService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
		log:            log,
	}
}

func (s *deviceService) Register(ctx context.Context, req *dto.RegisterDeviceRequest) (*dto.RegisterDeviceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = uow.Rollback()
		}
	}()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &entity.User{
			Id:        uuid.New(),
			Email:     req.Email,
			CreatedAt: time.Now(),
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// Registering the same device name again rotates its token instead of
	// creating a duplicate origin.
	device, err := uow.DeviceRepository().FindOne(ctx,
		specification.OwnedByUser{UserID: user.Id},
		specification.ByName{Name: req.Name},
	)
	if err != nil {
		return nil, err
	}
	if device != nil {
		device.Platform = req.Platform
		device.TokenHash = string(hash)
		if err := uow.DeviceRepository().Update(ctx, device); err != nil {
			return nil, err
		}
	} else {
		device = &entity.Device{
			Id:        uuid.New(),
			UserId:    user.Id,
			Name:      req.Name,
			Platform:  req.Platform,
			TokenHash: string(hash),
			CreatedAt: time.Now(),
		}
		if err := uow.DeviceRepository().Create(ctx, device); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: constant.EventDeviceRegistered,
			Data: map[string]interface{}{
				"device_id": device.Id.String(),
				"user_id":   user.Id.String(),
				"platform":  device.Platform,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("DeviceService", "Device registration event not published", map[string]interface{}{
				"device_id": device.Id.String(), "error": err.Error(),
			})
		}
	}

	s.log.Info("DeviceService", "Device registered", map[string]interface{}{
		"device_id": device.Id.String(), "user_id": user.Id.String(),
	})

	return &dto.RegisterDeviceResponse{
		DeviceId: device.Id,
		UserId:   user.Id,
		Token:    token,
	}, nil
}

func (s *deviceService) Login(ctx context.Context, req *dto.LoginDeviceRequest) (*dto.LoginDeviceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	device, err := uow.DeviceRepository().FindOne(ctx, specification.ByID{ID: req.DeviceId})
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrDeviceNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(device.TokenHash), []byte(req.Token)); err != nil {
		return nil, ErrInvalidDeviceToken
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"user_id":   device.UserId.String(),
		"device_id": device.Id.String(),
		"exp":       expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	now := time.Now()
	device.LastSeenAt = &now
	if err := uow.DeviceRepository().Update(ctx, device); err != nil {
		s.log.Warn("DeviceService", "Failed to stamp last seen", map[string]interface{}{
			"device_id": device.Id.String(), "error": err.Error(),
		})
	}

	return &dto.LoginDeviceResponse{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

func (s *deviceService) List(ctx context.Context, userId uuid.UUID) ([]dto.DeviceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	devices, err := uow.DeviceRepository().FindAll(ctx, specification.OwnedByUser{UserID: userId})
	if err != nil {
		return nil, err
	}

	out := make([]dto.DeviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, dto.DeviceResponse{
			Id:         d.Id,
			Name:       d.Name,
			Platform:   d.Platform,
			LastSeenAt: d.LastSeenAt,
		})
	}
	return out, nil
}

func (s *deviceService) TouchLastSeen(ctx context.Context, deviceId uuid.UUID) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	device, err := uow.DeviceRepository().FindOne(ctx, specification.ByID{ID: deviceId})
	if err != nil || device == nil {
		return
	}
	now := time.Now()
	device.LastSeenAt = &now
	if err := uow.DeviceRepository().Update(ctx, device); err != nil {
		s.log.Warn("DeviceService", "Failed to stamp last seen", map[string]interface{}{
			"device_id": deviceId.String(), "error": err.Error(),
		})
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
