package handler

import (
	"net/http"
	"strings"

	"cryptobook/internal/analysis"
	"cryptobook/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetSentiment godoc
// @Summary      Sentiment history
// @Description  Returns the collected sentiment rows, optionally for one asset name
// @Tags         sentiment
// @Produce      json
// @Param        crypto  query  string  false  "Asset name (e.g., Bitcoin)"
// @Param        limit   query  int     false  "Return only the newest N rows"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/sentiment [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment")
	defer span.End()

	rows, err := h.analyzer.Sentiment(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	if crypto := strings.TrimSpace(c.Query("crypto")); crypto != "" {
		filtered := make([]domain.SentimentRow, 0, len(rows))
		for _, row := range rows {
			if strings.EqualFold(row.Crypto, crypto) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	if limit := limitParam(c); limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GetJoined godoc
// @Summary      Market history joined with sentiment
// @Description  Returns the rows of one category with the sentiment shares of the same minute
// @Tags         analysis
// @Produce      json
// @Param        category  path   string  true   "price, volume, change or marketcap"
// @Param        complete  query  bool    false  "Drop rows missing a sentiment share"
// @Success      200  {object}  domain.JoinedView
// @Failure      400  {object}  map[string]string
// @Router       /api/joined/{category} [get]
func (h *Handler) GetJoined(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-joined")
	defer span.End()

	category, ok := categoryParam(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("category", category.Slug()))

	view, err := h.analyzer.Joined(ctx, category)
	if err != nil {
		writeError(c, err)
		return
	}
	if c.Query("complete") == "true" {
		view.Rows = analysis.DropIncomplete(view.Rows, view.Assets)
	}
	c.JSON(http.StatusOK, view)
}

// GetCorrelations godoc
// @Summary      Correlations within a category
// @Description  Pearson correlation of one column against every other column, highest first
// @Tags         analysis
// @Produce      json
// @Param        category  path   string  true   "price, volume, change or marketcap"
// @Param        target    query  string  false  "Column to correlate against (defaults to the first symbol)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/correlations/{category} [get]
func (h *Handler) GetCorrelations(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-correlations")
	defer span.End()

	category, ok := categoryParam(c)
	if !ok {
		return
	}

	corr, target, err := h.analyzer.Correlations(ctx, category, c.Query("target"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category":     category,
		"target":       target,
		"correlations": corr,
	})
}

// GetLatest godoc
// @Summary      Latest row of a category
// @Description  Returns the newest joined row of one category
// @Tags         analysis
// @Produce      json
// @Param        category  path  string  true  "price, volume, change or marketcap"
// @Success      200  {object}  domain.JoinedRow
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/latest/{category} [get]
func (h *Handler) GetLatest(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-latest")
	defer span.End()

	category, ok := categoryParam(c)
	if !ok {
		return
	}

	row, err := h.analyzer.Latest(ctx, category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
