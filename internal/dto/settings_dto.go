package dto

import "encoding/json"

// Settings are an opaque per-device preferences blob; the server only stores
// and debounces them.
type SaveSettingsRequest struct {
	Settings json.RawMessage `json:"settings" validate:"required"`
}

type SettingsResponse struct {
	Settings json.RawMessage `json:"settings"`
}
