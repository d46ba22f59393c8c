package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reservation-monitor-backend/internal/model"
	"reservation-monitor-backend/internal/normalize"
)

// GetReservations returns the stored records for the requested dates,
// grouped by date. The dates parameter is comma-separated and accepts both
// YYYYMMDD and YYYY-MM-DD; when absent, every monitored date is returned.
func (h *Handler) GetReservations(c *gin.Context) {
	ctx := c.Request.Context()

	var dates []string
	if raw := c.Query("dates"); raw != "" {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				dates = append(dates, normalize.DateKey(d))
			}
		}
	} else {
		stored, err := h.store.ListMonitoringDates(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve monitoring dates"})
			return
		}
		for _, d := range stored {
			dates = append(dates, normalize.DateKey(d))
		}
	}
	if len(dates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no dates to query"})
		return
	}

	records, err := h.store.QueryDates(ctx, dates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservations"})
		return
	}

	grouped := make(map[string][]model.Reservation, len(dates))
	for _, d := range dates {
		grouped[d] = []model.Reservation{}
	}
	for _, rec := range records {
		grouped[rec.Date] = append(grouped[rec.Date], rec)
	}

	c.JSON(http.StatusOK, gin.H{"dates": dates, "reservations": grouped})
}
