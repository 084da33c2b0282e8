package types

const (
	NotifyTypeCompressDone   = "compress_done"
	NotifyTypeCompressFailed = "compress_failed"
	NotifyTypeSessionExpired = "session_expired"
	NotifyTypeInfo           = "info"
)

// Notification represents a notification message structure
type Notification struct {
	Type    string         `json:"type,omitempty"`    // Notification type, e.g. "compress_done"
	Title   string         `json:"title,omitempty"`   // Notification title
	Message string         `json:"message,omitempty"` // Notification message/content
	Data    map[string]any `json:"data,omitempty"`    // Additional data fields
}

// NotifyHub broadcasts notifications to connected clients.
type NotifyHub interface {
	Broadcast(notification *Notification)
}
