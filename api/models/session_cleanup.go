package models

import (
	"context"
	"fmt"
	"time"

	"github.com/muingY/gif-compressor-backend/notify"
	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/types"
)

// StartSessionCleanupTask evicts sessions older than ttl every interval until ctx is done.
// main runs it with context.Background(), so in production it lives as long as the process.
func StartSessionCleanupTask(ctx context.Context, registry *SessionRegistry, root string, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tool.DefaultLogger.Infof("[Cleanup] Session cleanup task started (interval: %v, ttl: %v)", interval, ttl)

	for {
		select {
		case <-ctx.Done():
			tool.DefaultLogger.Infof("[Cleanup] Session cleanup task stopped")
			return
		case <-ticker.C:
			removed := CleanupExpiredSessions(registry, root, ttl)
			if len(removed) > 0 {
				tool.DefaultLogger.Infof("[Cleanup] Removed %d expired sessions", len(removed))
			}
		}
	}
}

// CleanupExpiredSessions runs one cleanup tick and returns the evicted ids.
// Filesystem errors are logged, never returned: a session is out of the registry
// before its directory is touched, and a directory that is already gone counts as removed.
// Files that could not be removed are retried on every following tick.
func CleanupExpiredSessions(registry *SessionRegistry, root string, ttl time.Duration) []string {
	removed := registry.EvictExpired(ttl)
	pending := append(registry.TakeOrphaned(), removed...)
	for _, sessionId := range pending {
		RemoveCompressResult(sessionId)
		if err := tool.RemoveSessionFiles(root, sessionId); err != nil {
			tool.DefaultLogger.Errorf("[Cleanup] Failed to remove files of session %s, retrying next tick: %v", sessionId, err)
			registry.MarkOrphaned(sessionId)
			continue
		}
		tool.DefaultLogger.Debugf("[Cleanup] Session %s expired", sessionId)
		notify.Publish(&types.Notification{
			Type:    types.NotifyTypeSessionExpired,
			Title:   "Session Expired",
			Message: fmt.Sprintf("Session %s expired and its files were removed", sessionId),
			Data: map[string]any{
				"sessionId": sessionId,
			},
		})
	}
	return removed
}
