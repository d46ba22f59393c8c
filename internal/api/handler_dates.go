package api

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"reservation-monitor-backend/internal/normalize"
)

var dateKeyRe = regexp.MustCompile(`^\d{8}$`)

type dateRequest struct {
	Date string `json:"date" binding:"required"`
}

// GetMonitoringDates returns the persisted monitoring set, sorted ascending.
func (h *Handler) GetMonitoringDates(c *gin.Context) {
	dates, err := h.store.ListMonitoringDates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve monitoring dates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

// PostMonitoringDate adds a date to the monitoring set. Adding a date that
// is already present succeeds without effect.
func (h *Handler) PostMonitoringDate(c *gin.Context) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !dateKeyRe.MatchString(normalize.DateKey(req.Date)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYYMMDD or YYYY-MM-DD"})
		return
	}

	if err := h.store.AddMonitoringDate(c.Request.Context(), req.Date); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add monitoring date"})
		return
	}
	c.Status(http.StatusCreated)
}

// DeleteMonitoringDate removes a date from the monitoring set.
func (h *Handler) DeleteMonitoringDate(c *gin.Context) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.RemoveMonitoringDate(c.Request.Context(), req.Date); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove monitoring date"})
		return
	}
	c.Status(http.StatusNoContent)
}
