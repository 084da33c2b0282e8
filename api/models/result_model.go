package models

import (
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/muingY/gif-compressor-backend/types"
)

var (
	resultMu     sync.RWMutex
	resultTTL    = 2 * time.Hour
	batchResults = ttlworker.NewCache[string, *types.CompressResponse](resultTTL)
)

// SetResultTTL recreates the batch result cache with ttl. Call before serving requests.
func SetResultTTL(ttl time.Duration) {
	resultMu.Lock()
	defer resultMu.Unlock()
	resultTTL = ttl
	batchResults = ttlworker.NewCache[string, *types.CompressResponse](ttl)
}

// CacheCompressResult keeps the last batch response of a session for /check-session.
func CacheCompressResult(sessionId string, result *types.CompressResponse) {
	resultMu.Lock()
	defer resultMu.Unlock()
	batchResults.Set(sessionId, result)
}

func LookupCompressResult(sessionId string) (*types.CompressResponse, bool) {
	resultMu.RLock()
	defer resultMu.RUnlock()
	result := batchResults.Get(sessionId)
	return result, result != nil
}

func RemoveCompressResult(sessionId string) {
	resultMu.Lock()
	defer resultMu.Unlock()
	batchResults.Delete(sessionId)
}
