package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ping      func() error
	env       string
	startedAt time.Time
}

func NewHealthHandler(ping func() error, env string, startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		ping:      ping,
		env:       env,
		startedAt: startedAt,
	}
}

func (h *HealthHandler) Health(ctx *gin.Context) {
	if err := h.ping(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "ERROR",
			"database": "disconnected",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"database":    "connected",
		"uptime":      int(time.Since(h.startedAt).Seconds()),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
	})
}
