package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetHistory godoc
// @Summary      Market history
// @Description  Returns the collected history rows, four per snapshot, oldest first
// @Tags         market
// @Produce      json
// @Param        limit  query  int  false  "Return only the newest N rows"
// @Success      200  {object}  domain.HistoryTable
// @Failure      500  {object}  map[string]string
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	table, err := h.analyzer.History(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	if limit := limitParam(c); limit > 0 && len(table.Rows) > limit {
		table.Rows = table.Rows[len(table.Rows)-limit:]
	}
	c.JSON(http.StatusOK, table)
}

// GetQuote godoc
// @Summary      Latest quote for an asset
// @Description  Returns the latest normalized quote, from cache when available
// @Tags         market
// @Produce      json
// @Param        symbol  path  string  true  "Asset symbol (e.g., BTC, ETH)"
// @Success      200  {object}  domain.Quote
// @Failure      404  {object}  map[string]string
// @Router       /api/quotes/{symbol} [get]
func (h *Handler) GetQuote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quote")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	quote, err := h.analyzer.LatestQuote(ctx, symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetTopMover godoc
// @Summary      Top mover
// @Description  Returns the asset with the highest 24h change in the latest snapshot
// @Tags         market
// @Produce      json
// @Success      200  {object}  analysis.Mover
// @Failure      404  {object}  map[string]string
// @Router       /api/movers/top [get]
func (h *Handler) GetTopMover(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-top-mover")
	defer span.End()

	mover, err := h.analyzer.TopMover(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mover)
}
