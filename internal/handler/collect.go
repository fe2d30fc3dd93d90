package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cryptobook/internal/domain"
	"cryptobook/internal/job"

	"github.com/gin-gonic/gin"
)

type CollectorRunner interface {
	RunOnce(ctx context.Context, now time.Time) (domain.RunResult, error)
}

func (h *Handler) SetCollectorRunner(runner CollectorRunner) {
	h.collector = runner
}

// TriggerCollectorRun godoc
// @Summary      Run the collector manually
// @Description  Scrapes the listing, tags sentiment and appends both tables once
// @Tags         collector
// @Produce      json
// @Success      200  {object}  domain.RunResult
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/collect/run [post]
func (h *Handler) TriggerCollectorRun(c *gin.Context) {
	if h.collector == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "collector unavailable"})
		return
	}

	// the run appends to the history files, so it outlives a dropped client
	ctx, span := h.tracer.Start(context.WithoutCancel(c.Request.Context()), "handler.trigger-collector-run")
	defer span.End()

	result, err := h.collector.RunOnce(ctx, time.Now().UTC())
	if errors.Is(err, job.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  err.Error(),
			"result": result,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}
