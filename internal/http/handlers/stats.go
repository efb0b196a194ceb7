package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/eventsphere/server/internal/config"
	"github.com/eventsphere/server/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type StatsCollector interface {
	Collect(ctx context.Context) (postgres.Stats, error)
}

type StatsHandler struct {
	stats StatsCollector
	log   *slog.Logger
}

func NewStatsHandler(stats StatsCollector, log *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, log: log}
}

func (h *StatsHandler) Stats(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	s, err := h.stats.Collect(cctx)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "stats collection failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, s)
}
