package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pictune/pictune-api/internal/session"
)

// SessionRefresher regenerates the download session cookies on demand.
type SessionRefresher interface {
	ForceRefresh(ctx context.Context) session.RefreshStatus
}

type SessionHandler struct {
	gate SessionRefresher
}

func NewSessionHandler(gate SessionRefresher) *SessionHandler {
	return &SessionHandler{gate: gate}
}

// RefreshCookies forces a session regeneration through the login helper.
// Partial means the helper produced a file that failed verification.
func (h *SessionHandler) RefreshCookies(c *gin.Context) {
	switch h.gate.ForceRefresh(c.Request.Context()) {
	case session.RefreshSuccess:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Session cookies refreshed and verified",
		})
	case session.RefreshPartial:
		c.JSON(http.StatusOK, gin.H{
			"status":  "partial",
			"message": "Session cookies written but verification failed",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "failed",
			"message": "Session cookie refresh failed",
		})
	}
}
