package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/service"
	"github.com/andresuchdata/stockweeks/internal/stockweeks"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type StockWeeksHandler struct {
	service *service.ReportService
}

func NewStockWeeksHandler(service *service.ReportService) *StockWeeksHandler {
	return &StockWeeksHandler{service: service}
}

func (h *StockWeeksHandler) GetBrands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"brands": h.service.Brands(c.Request.Context())})
}

func (h *StockWeeksHandler) GetYears(c *gin.Context) {
	brand, ok := h.brand(c)
	if !ok {
		return
	}

	years, err := h.service.Years(c.Request.Context(), brand)
	if err != nil {
		writeError(c, err, "failed to fetch years")
		return
	}

	c.JSON(http.StatusOK, gin.H{"brand": brand, "years": years})
}

func (h *StockWeeksHandler) GetHeatmap(c *gin.Context) {
	brand, ok := h.brand(c)
	if !ok {
		return
	}
	nWeeks, ok := h.nWeeks(c)
	if !ok {
		return
	}

	report, err := h.service.Heatmap(c.Request.Context(), domain.HeatmapFilter{
		Brand:    brand,
		Category: c.Query("category"),
		NWeeks:   nWeeks,
	})
	if err != nil {
		writeError(c, err, "failed to build heatmap")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *StockWeeksHandler) GetSummary(c *gin.Context) {
	brand, ok := h.brand(c)
	if !ok {
		return
	}
	nWeeks, ok := h.nWeeks(c)
	if !ok {
		return
	}

	month := 0
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month", "details": err.Error()})
			return
		}
		month = m
	}

	report, err := h.service.ItemSummary(c.Request.Context(), domain.SummaryFilter{
		Brand:  brand,
		Month:  month,
		NWeeks: nWeeks,
	})
	if err != nil {
		writeError(c, err, "failed to build summary")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *StockWeeksHandler) GetMonthly(c *gin.Context) {
	brand, ok := h.brand(c)
	if !ok {
		return
	}
	nWeeks, ok := h.nWeeks(c)
	if !ok {
		return
	}

	report, err := h.service.MonthlySummary(c.Request.Context(), domain.MonthlyFilter{
		Brand:    brand,
		Category: c.Query("category"),
		NWeeks:   nWeeks,
	})
	if err != nil {
		writeError(c, err, "failed to build monthly summary")
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetOperations serves the weeks-of-stock heatmap by operation basis.
func (h *StockWeeksHandler) GetOperations(c *gin.Context) {
	brand, ok := h.brand(c)
	if !ok {
		return
	}

	report, err := h.service.OperationHeatmap(c.Request.Context(), domain.OperationHeatmapFilter{
		Brand:    brand,
		Category: c.Query("category"),
	})
	if err != nil {
		writeError(c, err, "failed to build operation heatmap")
		return
	}

	c.JSON(http.StatusOK, report)
}

type computeRequest struct {
	BaseFigures *domain.BaseFigures `json:"baseFigures"`
	Channel     string             `json:"channel"`
	NWeeks      *float64           `json:"n_weeks"`
}

type computeResponse struct {
	Channel string             `json:"channel"`
	NWeeks  float64            `json:"n_weeks"`
	Weeks   domain.WeeksMetric `json:"weeks"`
	Outlier bool               `json:"outlier"`
}

// Compute evaluates one metric for the figures in the request body.
func (h *StockWeeksHandler) Compute(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	channel, err := stockweeks.ParseChannel(req.Channel)
	if err != nil {
		writeError(c, err, "invalid channel")
		return
	}

	nWeeks := h.service.DefaultNWeeks()
	if req.NWeeks != nil {
		nWeeks = *req.NWeeks
	}

	metric, err := h.service.Compute(req.BaseFigures, channel, nWeeks)
	if err != nil {
		writeError(c, err, "failed to compute weeks")
		return
	}

	c.JSON(http.StatusOK, computeResponse{
		Channel: channel.String(),
		NWeeks:  nWeeks,
		Weeks:   metric,
		Outlier: stockweeks.IsOutlier(metric),
	})
}

func (h *StockWeeksHandler) ReloadFeeds(c *gin.Context) {
	n, err := h.service.Reload(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to reload feeds")
		return
	}

	c.JSON(http.StatusOK, gin.H{"brands": n, "reloaded_at": time.Now().UTC()})
}

func (h *StockWeeksHandler) brand(c *gin.Context) (domain.Brand, bool) {
	brand, err := domain.ParseBrand(c.Param("brand"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: %s", err, c.Param("brand")), "unknown brand")
		return "", false
	}
	return brand, true
}

func (h *StockWeeksHandler) nWeeks(c *gin.Context) (float64, bool) {
	raw := strings.TrimSpace(c.Query("n_weeks"))
	if raw == "" {
		return h.service.DefaultNWeeks(), true
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid n_weeks", "details": err.Error()})
		return 0, false
	}
	if err := stockweeks.ValidateSellThroughWeeks(n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid n_weeks", "details": err.Error()})
		return 0, false
	}
	return n, true
}

func writeError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownBrand),
		errors.Is(err, service.ErrBrandNotLoaded),
		errors.Is(err, service.ErrOperationsNotLoaded),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, stockweeks.ErrInvalidSellThroughWeeks),
		errors.Is(err, stockweeks.ErrUnknownChannel),
		errors.Is(err, service.ErrInvalidMonth):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
