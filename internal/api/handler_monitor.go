package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reservation-monitor-backend/internal/scraper"
)

type monitorRequest struct {
	Dates []string `json:"dates"`
}

// PostMonitor triggers one monitoring batch on demand. Dates may be empty,
// in which case the persisted monitoring set is scraped. Only one batch runs
// at a time; a second trigger while one is in flight gets 409.
func (h *Handler) PostMonitor(c *gin.Context) {
	var req monitorRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if !h.monitoring.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "monitoring is already in progress"})
		return
	}
	defer h.monitoring.Store(false)

	result, err := h.scraper.MonitorBatch(c.Request.Context(), req.Dates)
	if err != nil {
		if errors.Is(err, scraper.ErrNoDates) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no dates to monitor"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
