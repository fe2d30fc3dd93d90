package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"cryptobook/internal/analysis"
	"cryptobook/internal/domain"
	"cryptobook/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Analyzer is the read side the HTTP API serves.
type Analyzer interface {
	History(ctx context.Context) (*domain.HistoryTable, error)
	Sentiment(ctx context.Context) ([]domain.SentimentRow, error)
	Joined(ctx context.Context, category domain.ValueCategory) (domain.JoinedView, error)
	Correlations(ctx context.Context, category domain.ValueCategory, target string) ([]domain.Correlation, string, error)
	Latest(ctx context.Context, category domain.ValueCategory) (domain.JoinedRow, error)
	TopMover(ctx context.Context) (analysis.Mover, error)
	LatestQuote(ctx context.Context, symbol string) (*domain.Quote, error)
}

type Handler struct {
	tracer    trace.Tracer
	analyzer  Analyzer
	collector CollectorRunner
}

func New(tracer trace.Tracer, analyzer Analyzer) *Handler {
	return &Handler{
		tracer:   tracer,
		analyzer: analyzer,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/history", h.GetHistory)
	r.GET("/api/sentiment", h.GetSentiment)
	r.GET("/api/joined/:category", h.GetJoined)
	r.GET("/api/correlations/:category", h.GetCorrelations)
	r.GET("/api/latest/:category", h.GetLatest)
	r.GET("/api/quotes/:symbol", h.GetQuote)
	r.GET("/api/movers/top", h.GetTopMover)
	r.POST("/api/collect/run", h.TriggerCollectorRun)
}

func categoryParam(c *gin.Context) (domain.ValueCategory, bool) {
	category, ok := domain.ParseCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                "unsupported category: " + c.Param("category"),
			"supported_categories": domain.CategorySlugs(),
		})
	}
	return category, ok
}

// limitParam reads the limit query parameter. Zero means no limit.
func limitParam(c *gin.Context) int {
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrNoData) || errors.Is(err, service.ErrUnknownSymbol) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
