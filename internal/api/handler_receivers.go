package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type receiverRequest struct {
	Email string `json:"email" binding:"required"`
}

// GetReceivers returns the notification receiver list. When no receiver was
// ever registered, the configured default is seeded and returned.
func (h *Handler) GetReceivers(c *gin.Context) {
	receivers, err := h.store.ListReceivers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve receivers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receivers": receivers})
}

// PostReceiver registers a notification email address.
func (h *Handler) PostReceiver(c *gin.Context) {
	var req receiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.TrimSpace(req.Email)
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}

	if err := h.store.AddReceiver(c.Request.Context(), email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add receiver"})
		return
	}
	c.Status(http.StatusCreated)
}

// DeleteReceiver removes a notification email address.
func (h *Handler) DeleteReceiver(c *gin.Context) {
	var req receiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.RemoveReceiver(c.Request.Context(), strings.TrimSpace(req.Email)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove receiver"})
		return
	}
	c.Status(http.StatusNoContent)
}
