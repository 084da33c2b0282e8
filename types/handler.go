package types

import (
	"context"
	"mime/multipart"
)

// HandlerInterface is implemented by the compress pipeline and consumed by controllers.
type HandlerInterface interface {
	OnCompress(ctx context.Context, reader *multipart.Reader, contentLength int64) (*CompressOutcome, error)
	OnCheckSession(sessionId string) (*CheckSessionResponse, bool)
	OnDownload(sessionId string) (*PackageResult, error)
	OnAnalytics(sessionId string) ([]CompressionResult, error)
	OnStatus() *StatusResponse
}
