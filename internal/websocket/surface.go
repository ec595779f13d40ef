package websocket

import (
	"trace-journal-be/internal/constant"

	"github.com/google/uuid"
)

// DeviceSurface is the editing-surface handle handed to a device's session.
// When the session adopts an external revision it pushes the new content and
// an exit-focus directive down the device's socket; the device-side editor
// applies both.
type DeviceSurface struct {
	hub      *Hub
	deviceID uuid.UUID
}

func NewDeviceSurface(hub *Hub, deviceID uuid.UUID) *DeviceSurface {
	return &DeviceSurface{hub: hub, deviceID: deviceID}
}

func (s *DeviceSurface) ApplyContent(serialized string) {
	s.hub.Send(s.deviceID, Frame{
		Type: constant.WSTypeContentReplaced,
		Data: map[string]interface{}{"content": serialized},
	})
}

func (s *DeviceSurface) ExitEditing() {
	s.hub.Send(s.deviceID, Frame{Type: constant.WSTypeExitFocus})
}
