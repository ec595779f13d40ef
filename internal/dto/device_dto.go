package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterDeviceRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Platform string `json:"platform" validate:"omitempty,oneof=ios android web"`
}

type RegisterDeviceResponse struct {
	DeviceId uuid.UUID `json:"device_id"`
	UserId   uuid.UUID `json:"user_id"`
	// Token is the long-lived registration secret shown exactly once; the
	// device exchanges it for JWTs at login.
	Token string `json:"token"`
}

type LoginDeviceRequest struct {
	DeviceId uuid.UUID `json:"device_id" validate:"required"`
	Token    string    `json:"token" validate:"required"`
}

type LoginDeviceResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type DeviceResponse struct {
	Id         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Platform   string     `json:"platform"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}
