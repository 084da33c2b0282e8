package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/muingY/gif-compressor-backend/tool"
)

// OnlyAllowLocal rejects every client that is not this host.
func OnlyAllowLocal(c *gin.Context) {
	if tool.IsLocalAddress(c.ClientIP()) {
		c.Next()
		return
	}
	c.AbortWithStatusJSON(http.StatusForbidden, tool.FastReturnError("Forbidden"))
}
