package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/types"
)

type CompressController struct {
	handler types.HandlerInterface
}

func NewCompressController(handler types.HandlerInterface) *CompressController {
	return &CompressController{
		handler: handler,
	}
}

// HandleCompress accepts a multipart batch of GIFs, compresses it and starts a session.
// POST /api/gif-compressor/compress
func (ctrl *CompressController) HandleCompress(c *gin.Context) {
	reader, err := c.Request.MultipartReader()
	if err != nil {
		tool.DefaultLogger.Infof("[Compress] Request is not multipart: %v", err)
		c.JSON(http.StatusBadRequest, tool.FastReturnErrno(types.ErrnoFileNotAttached))
		return
	}

	outcome, err := ctrl.handler.OnCompress(c.Request.Context(), reader, c.Request.ContentLength)
	if err != nil {
		var pipelineErr *types.PipelineError
		if !errors.As(err, &pipelineErr) {
			tool.DefaultLogger.Errorf("[Compress] Unexpected pipeline error: %v", err)
			c.JSON(http.StatusInternalServerError, tool.FastReturnErrno(types.ErrnoServerErr))
			return
		}
		status := errnoStatus(pipelineErr.Errno)
		if status == http.StatusInternalServerError {
			tool.DefaultLogger.Errorf("[Compress] %v", err)
		} else {
			tool.DefaultLogger.Infof("[Compress] %v", err)
		}
		body := tool.FastReturnErrno(pipelineErr.Errno)
		if len(pipelineErr.FailList) > 0 {
			body["fail_list"] = pipelineErr.FailList
		}
		c.JSON(status, body)
		return
	}

	setSessionCookie(c, outcome.SessionId, outcome.CookieMaxAge)
	c.JSON(http.StatusOK, outcome.Response)
}

// errnoStatus maps a batch-level errno onto its HTTP status.
func errnoStatus(errno int) int {
	switch errno {
	case types.ErrnoSizeLimitExceeded, types.ErrnoFileNotAttached:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
