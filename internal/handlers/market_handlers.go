package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/seojinpark/krxlens/internal/models"
	"github.com/seojinpark/krxlens/internal/services"
)

const (
	defaultLimit = 1000
	maxLimit     = 2000
)

// MarketHandler handles the read-only fundamentals endpoints
type MarketHandler struct {
	fundSvc *services.FundamentalsService
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(fundSvc *services.FundamentalsService) *MarketHandler {
	return &MarketHandler{
		fundSvc: fundSvc,
	}
}

// Health handles GET /api/health
func (h *MarketHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:     "ok",
		CachedDate: h.fundSvc.CachedDate(),
	})
}

// Sectors handles GET /api/sectors
func (h *MarketHandler) Sectors(c *gin.Context) {
	_, rows, err := h.fundSvc.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upstream_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SectorsResponse{
		Sectors: services.Sectors(rows),
	})
}

// Fundamentals handles GET /api/fundamentals?sector=&limit=
func (h *MarketHandler) Fundamentals(c *gin.Context) {
	limit := defaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > maxLimit {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: fmt.Sprintf("limit must be an integer between 1 and %d", maxLimit),
			})
			return
		}
		limit = n
	}

	date, rows, err := h.fundSvc.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upstream_error",
			Message: err.Error(),
		})
		return
	}

	data := services.FilterValid(rows)

	if sector := c.Query("sector"); sector != "" {
		data = services.FilterSector(data, sector)
		if len(data) == 0 {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: fmt.Sprintf("No stocks found for sector '%s'", sector),
			})
			return
		}
	}

	data = services.SortRows(data, models.SortByMarketCap)
	if len(data) > limit {
		data = data[:limit]
	}

	c.JSON(http.StatusOK, models.FundamentalsResponse{
		Date:  date,
		Total: len(data),
		Data:  data,
	})
}
