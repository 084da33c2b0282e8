package controllers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/muingY/gif-compressor-backend/share"
	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/types"
)

type DownloadController struct {
	handler types.HandlerInterface
}

func NewDownloadController(handler types.HandlerInterface) *DownloadController {
	return &DownloadController{
		handler: handler,
	}
}

// HandleDownload serves the compressed outputs of the session, a single GIF as is
// or several bundled into one zip.
// GET /api/gif-compressor/download
func (ctrl *DownloadController) HandleDownload(c *gin.Context) {
	sessionId := sessionFromCookie(c)
	if sessionId == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing session"))
		return
	}

	result, err := ctrl.handler.OnDownload(sessionId)
	if err != nil {
		status, msg := packageErrorStatus(err)
		if status == http.StatusInternalServerError {
			tool.DefaultLogger.Errorf("[Download] Session %s: %v", sessionId, err)
		} else {
			tool.DefaultLogger.Infof("[Download] Session %s: %v", sessionId, err)
		}
		c.JSON(status, tool.FastReturnError(msg))
		return
	}

	tool.DefaultLogger.Infof("[Download] Session %s: serving %s (%d analysed)", sessionId, filepath.Base(result.Path), len(result.Analytics))
	for _, item := range result.Analytics {
		tool.DefaultLogger.Debugf("[Download] %s: %d -> %d bytes (%.2f%%)", filepath.Base(item.RawPath), item.RawSize, item.CompressedSize, item.ReductionPercent)
	}

	if result.IsArchive {
		c.Header("Content-Type", "application/zip")
		c.FileAttachment(result.Path, "compressed-gifs.zip")
		return
	}
	c.Header("Content-Type", "image/gif")
	c.FileAttachment(result.Path, filepath.Base(result.Path))
}

// HandleAnalytics returns the size comparison of every raw/compressed pair of the session.
// GET /api/gif-compressor/analytics
func (ctrl *DownloadController) HandleAnalytics(c *gin.Context) {
	sessionId := sessionFromCookie(c)
	if sessionId == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing session"))
		return
	}

	analytics, err := ctrl.handler.OnAnalytics(sessionId)
	if err != nil {
		status, msg := packageErrorStatus(err)
		c.JSON(status, tool.FastReturnError(msg))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(analytics))
}

func packageErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, share.ErrSessionUnauthorized), errors.Is(err, share.ErrSessionNotFound):
		return http.StatusBadRequest, "Session not found or expired"
	case errors.Is(err, share.ErrNoOutputs):
		return http.StatusNotFound, "No compressed files"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
