package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/blinky-companion/sync-agent/api/v1"
)

// ReceiveScan replaces the candidate list with a scan result
// (POST /networks/scan)
func (h *Handler) ReceiveScan(c *gin.Context) {
	var req v1.ScanResult
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, v1.NewNetworkSelection(h.networkSrv.ReplaceCandidates(req.Networks)))
}

// GetCurrentNetwork returns the displayed network and its stored secret
// (GET /networks/current)
func (h *Handler) GetCurrentNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewNetworkSelection(h.networkSrv.Current()))
}

// NextNetwork shows the next candidate
// (POST /networks/next)
func (h *Handler) NextNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewNetworkSelection(h.networkSrv.Next()))
}

// ListCredentials returns the network ids with a stored secret, never the
// secrets themselves
// (GET /credentials)
func (h *Handler) ListCredentials(c *gin.Context) {
	c.JSON(http.StatusOK, v1.KnownNetworks{
		Networks:   h.networkSrv.KnownNetworks(),
		Persistent: h.networkSrv.Persistent(),
	})
}
