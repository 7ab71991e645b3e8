package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	v1 "github.com/blinky-companion/sync-agent/api/v1"
	"github.com/blinky-companion/sync-agent/internal/models"
)

const maxHistoryLimit = 500

// Sync sends the UI snapshot to the device. A transport failure answers 502
// with the sync result.
// (POST /sync)
func (h *Handler) Sync(c *gin.Context) {
	var req v1.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.syncSrv.Sync(c.Request.Context(), req.ToModel())
	if err != nil {
		writeError(c, "sync", err)
		return
	}

	status := http.StatusOK
	if result.Status == models.SyncStatusFailed {
		status = http.StatusBadGateway
	}
	c.JSON(status, v1.NewSyncResult(*result))
}

// ListSyncs returns the sync history, newest first
// (GET /sync?limit=N)
func (h *Handler) ListSyncs(c *gin.Context) {
	var limit uint64
	if l := c.Query("limit"); l != "" {
		v, err := strconv.ParseUint(l, 10, 64)
		if err != nil || v == 0 || v > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = v
	}

	records, err := h.syncSrv.History(c.Request.Context(), limit)
	if err != nil {
		writeError(c, "list syncs", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewSyncHistory(records))
}
