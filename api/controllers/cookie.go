package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the session id between requests.
const SessionCookie = "session"

func setSessionCookie(c *gin.Context, sessionId string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sessionId, maxAge, "/", "", c.Request.TLS != nil, true)
}

func sessionFromCookie(c *gin.Context) string {
	sessionId, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return sessionId
}
