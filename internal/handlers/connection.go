package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/blinky-companion/sync-agent/api/v1"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
)

// GetConnection returns the device connection state
// (GET /connection)
func (h *Handler) GetConnection(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewConnectionStatus(h.connectionSrv.Status()))
}

// Connect requests a connection to a device. The outcome is observed through
// GET /connection.
// (POST /connection)
func (h *Handler) Connect(c *gin.Context) {
	var req v1.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.connectionSrv.Connect(req.DeviceId); err != nil {
		writeError(c, "connect", err)
		return
	}

	c.JSON(http.StatusAccepted, v1.NewConnectionStatus(h.connectionSrv.Status()))
}

// Reconnect requests a reconnection to the last device
// (POST /connection/reconnect)
func (h *Handler) Reconnect(c *gin.Context) {
	if h.connectionSrv.Status().DeviceID == "" {
		writeError(c, "reconnect", srvErrors.NewDeviceNotFoundError())
		return
	}

	h.connectionSrv.Reconnect()
	c.JSON(http.StatusAccepted, v1.NewConnectionStatus(h.connectionSrv.Status()))
}
