package api

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/muingY/gif-compressor-backend/api/models"
	"github.com/muingY/gif-compressor-backend/compress"
	"github.com/muingY/gif-compressor-backend/notify"
	"github.com/muingY/gif-compressor-backend/share"
	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/transfer"
	"github.com/muingY/gif-compressor-backend/types"
)

// Handler runs the upload -> validate -> compress -> package pipeline.
// Controllers only translate its results into HTTP.
type Handler struct {
	cfg        types.AppConfig
	registry   *models.SessionRegistry
	compressor *compress.Compressor
	packager   *share.Packager
	notifyWS   bool
}

// Ensure Handler implements types.HandlerInterface
var _ types.HandlerInterface = (*Handler)(nil)

// NewHandler wires the pipeline stages for cfg around registry.
func NewHandler(cfg types.AppConfig, registry *models.SessionRegistry) *Handler {
	return &Handler{
		cfg:        cfg,
		registry:   registry,
		compressor: compress.NewCompressor(compress.DefaultPolicy()),
		packager:   share.NewPackager(cfg.GifFolder, cfg.CompressSuffix, registry),
		notifyWS:   cfg.NotifyWebsocket,
	}
}

func (h *Handler) uploadPolicy() transfer.UploadPolicy {
	return transfer.UploadPolicy{
		AllowedMimeTypes: h.cfg.AllowedMimeTypes,
		MaxTotalSize:     h.cfg.MaxUploadSize,
		MaxFileCount:     h.cfg.MaxFileCount,
		OutputSuffix:     h.cfg.CompressSuffix,
	}
}

// discard drops a session that never produced a usable result.
func (h *Handler) discard(sessionId string) {
	h.registry.Remove(sessionId)
	if err := tool.RemoveSessionFiles(h.cfg.GifFolder, sessionId); err != nil {
		tool.DefaultLogger.Errorf("[Compress] Failed to remove files of session %s: %v", sessionId, err)
		h.registry.MarkOrphaned(sessionId)
	}
}

// OnCompress implements types.HandlerInterface
func (h *Handler) OnCompress(ctx context.Context, reader *multipart.Reader, contentLength int64) (*types.CompressOutcome, error) {
	// the entry exists before any file is written, so a concurrent check-session may see it early
	sessionId := h.registry.Create()
	sessionDir := tool.SessionDir(h.cfg.GifFolder, sessionId)

	ingested, err := transfer.SavePayload(ctx, reader, contentLength, sessionDir, h.uploadPolicy())
	if err != nil {
		h.discard(sessionId)
		var ingestErr *transfer.IngestError
		if errors.As(err, &ingestErr) {
			return nil, &types.PipelineError{Errno: ingestErr.Errno(), Err: err}
		}
		return nil, &types.PipelineError{Errno: types.ErrnoServerErr, Err: err}
	}
	tool.DefaultLogger.Infof("[Compress] Session %s: %d files accepted, %d rejected", sessionId, len(ingested.Accepted), len(ingested.Rejected))

	results := compress.CompressAll(ctx, h.compressor, ingested.Accepted, ingested.SessionDir, h.cfg.CompressSuffix, h.cfg.CompressWorkers)
	response := buildResponse(ingested, results)

	if response.Success == 0 {
		h.discard(sessionId)
		notify.SendCompressNotification(sessionId, response)
		return nil, &types.PipelineError{
			Errno:    types.ErrnoCompressFail,
			Err:      errors.New("no file could be compressed"),
			FailList: response.FailList,
		}
	}

	models.CacheCompressResult(sessionId, response)
	notify.SendCompressNotification(sessionId, response)
	tool.DefaultLogger.Infof("[Compress] Session %s: %d compressed, %d failed", sessionId, response.Success, response.Fail)

	return &types.CompressOutcome{
		SessionId:    sessionId,
		CookieMaxAge: int(tool.SessionTTL(&h.cfg) / time.Second),
		Response:     response,
	}, nil
}

func buildResponse(ingested *types.IngestResult, results []compress.FileResult) *types.CompressResponse {
	response := &types.CompressResponse{
		SuccessList: make([]types.CompressionResult, 0, len(results)),
		FailList:    make([]types.FailItem, 0, len(ingested.Rejected)),
	}
	for _, rejected := range ingested.Rejected {
		response.FailList = append(response.FailList, types.FailItem{
			Filename:  rejected.Filename,
			ErrorType: rejected.Stage,
			Error:     rejected.Kind,
		})
	}

	for _, result := range results {
		if result.Err != nil {
			tool.DefaultLogger.Warnf("[Compress] %v", result.Err)
			kind := string(compress.CompressFail)
			var compressErr *compress.CompressError
			if errors.As(result.Err, &compressErr) {
				kind = string(compressErr.Kind)
			}
			response.FailList = append(response.FailList, types.FailItem{
				Filename:  result.File.OriginalFilename,
				ErrorType: types.StageCompression,
				Error:     kind,
			})
			continue
		}

		analysis, err := share.Analyze(result.File.StoredPath, result.OutputPath)
		if err != nil {
			// the output exists; only its metadata is unreadable
			tool.DefaultLogger.Warnf("[Compress] Failed to read sizes of %s: %v", result.OutputPath, err)
			analysis = types.CompressionResult{RawPath: result.File.StoredPath, CompressedPath: result.OutputPath}
		}
		analysis.Filename = result.File.OriginalFilename
		response.SuccessList = append(response.SuccessList, analysis)
	}

	response.Success = len(response.SuccessList)
	response.Fail = len(response.FailList)
	return response
}

// OnCheckSession implements types.HandlerInterface
func (h *Handler) OnCheckSession(sessionId string) (*types.CheckSessionResponse, bool) {
	if sessionId == "" || !h.registry.Contains(sessionId) {
		return nil, false
	}
	response := &types.CheckSessionResponse{SessionExist: true}
	if result, ok := models.LookupCompressResult(sessionId); ok {
		response.CompressResult = result
	}
	return response, true
}

// OnDownload implements types.HandlerInterface
func (h *Handler) OnDownload(sessionId string) (*types.PackageResult, error) {
	return h.packager.Package(sessionId)
}

// OnAnalytics implements types.HandlerInterface
func (h *Handler) OnAnalytics(sessionId string) ([]types.CompressionResult, error) {
	if !tool.IsSessionID(sessionId) {
		return nil, share.ErrSessionUnauthorized
	}
	if !h.registry.Contains(sessionId) {
		return nil, share.ErrSessionNotFound
	}
	outputs, err := h.packager.Outputs(sessionId)
	if err != nil {
		return nil, err
	}
	return h.packager.Analytics(sessionId, outputs), nil
}

// OnStatus implements types.HandlerInterface
func (h *Handler) OnStatus() *types.StatusResponse {
	return &types.StatusResponse{
		Running:         true,
		Sessions:        h.registry.Len(),
		NotifyWSEnabled: h.notifyWS && notify.UseNotify,
	}
}
