package constant

// Notification kinds delivered to devices. A notice auto-dismisses on the
// client; a warning stays until the user acknowledges it. The codes inside a
// notification come from the editor session package.
const (
	NotificationKindNotice  = "notice"
	NotificationKindWarning = "warning"
)

// WebSocket frame types pushed to devices.
const (
	WSTypeSignal          = "signal"           // notification payload
	WSTypeContentReplaced = "content_replaced" // editor must swap in new content
	WSTypeExitFocus       = "exit_focus"       // editor must leave the focused field
)

// Event types on the NATS EVENTS stream.
const (
	EventEntryRevision    = "ENTRY_REVISION"
	EventEntryConflict    = "ENTRY_CONFLICT"
	EventDeviceRegistered = "DEVICE_REGISTERED"
)
