package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/types"
)

type SessionController struct {
	handler types.HandlerInterface
}

func NewSessionController(handler types.HandlerInterface) *SessionController {
	return &SessionController{
		handler: handler,
	}
}

// HandleCheckSession reports whether the session cookie names a live session.
// GET /api/gif-compressor/check-session
func (ctrl *SessionController) HandleCheckSession(c *gin.Context) {
	sessionId := sessionFromCookie(c)
	if sessionId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"session_exist": false})
		return
	}

	response, ok := ctrl.handler.OnCheckSession(sessionId)
	if !ok {
		tool.DefaultLogger.Debugf("[CheckSession] Unknown session: %s", sessionId)
		c.JSON(http.StatusUnauthorized, gin.H{"session_exist": false})
		return
	}
	c.JSON(http.StatusOK, response)
}

// HandleStatus reports that the service is up.
// GET /api/gif-compressor/status
func (ctrl *SessionController) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.handler.OnStatus())
}
