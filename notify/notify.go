package notify

import (
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/types"
)

// MaxNotifyPayload is the largest encoded notification that is broadcast.
const MaxNotifyPayload = 32 * 1024 // 32KB

// MaxNotifyFiles is the maximum number of files to include in notify payload (truncate if exceeded)
const MaxNotifyFiles = 20

var (
	hubMu     sync.RWMutex
	hub       types.NotifyHub
	UseNotify = true
)

// SetUseNotify sets whether to use notify
func SetUseNotify(use bool) {
	UseNotify = use
}

// SetHub installs the hub that receives every published notification. nil disables publishing.
func SetHub(h types.NotifyHub) {
	hubMu.Lock()
	defer hubMu.Unlock()
	hub = h
}

func getHub() types.NotifyHub {
	hubMu.RLock()
	defer hubMu.RUnlock()
	return hub
}

// Encode serializes a notification, truncating file lists and rejecting oversized payloads.
func Encode(notification *types.Notification) ([]byte, error) {
	if notification == nil {
		return []byte("{}"), nil
	}
	if notification.Data != nil {
		if files, ok := notification.Data["files"].([]string); ok && len(files) > MaxNotifyFiles {
			notification.Data["files"] = files[:MaxNotifyFiles]
			notification.Data["totalFiles"] = len(files)
		}
	}
	payload, err := sonic.Marshal(notification)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize notification data: %v", err)
	}
	if len(payload) > MaxNotifyPayload {
		return nil, fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), MaxNotifyPayload)
	}
	return payload, nil
}

// Publish hands the notification to the hub, if one is installed. It never blocks on clients
// for longer than a websocket write.
func Publish(notification *types.Notification) {
	if !UseNotify || notification == nil {
		return
	}
	h := getHub()
	if h == nil {
		return
	}
	tool.DefaultLogger.Debugf("[Notify] Publishing %s: %s", notification.Type, notification.Message)
	h.Broadcast(notification)
}

// SendCompressNotification publishes the outcome of one /compress batch.
func SendCompressNotification(sessionId string, response *types.CompressResponse) {
	if response == nil {
		return
	}
	files := make([]string, 0, len(response.SuccessList))
	for _, item := range response.SuccessList {
		files = append(files, item.Filename)
	}
	eventType := types.NotifyTypeCompressDone
	title := "Compress Completed"
	if response.Success == 0 {
		eventType = types.NotifyTypeCompressFailed
		title = "Compress Failed"
	}
	Publish(&types.Notification{
		Type:    eventType,
		Title:   title,
		Message: fmt.Sprintf("Session %s: %d compressed, %d failed", sessionId, response.Success, response.Fail),
		Data: map[string]any{
			"sessionId": sessionId,
			"success":   response.Success,
			"fail":      response.Fail,
			"files":     files,
		},
	})
}
