package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/blinky-companion/sync-agent/internal/models"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
)

type ConnectionService interface {
	Status() models.ConnectionStatus
	Connect(deviceID string) error
	Reconnect()
}

type NetworkService interface {
	ReplaceCandidates(ssids []string) models.NetworkSelection
	Next() models.NetworkSelection
	Current() models.NetworkSelection
	KnownNetworks() []string
	Persistent() bool
}

type SyncService interface {
	Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResult, error)
	History(ctx context.Context, limit uint64) ([]models.SyncRecord, error)
}

type Handler struct {
	connectionSrv ConnectionService
	networkSrv    NetworkService
	syncSrv       SyncService
}

func New(connectionSrv ConnectionService, networkSrv NetworkService, syncSrv SyncService) *Handler {
	return &Handler{
		connectionSrv: connectionSrv,
		networkSrv:    networkSrv,
		syncSrv:       syncSrv,
	}
}

// Register mounts every endpoint on router.
func (h *Handler) Register(router *gin.RouterGroup) {
	router.GET("/connection", h.GetConnection)
	router.POST("/connection", h.Connect)
	router.POST("/connection/reconnect", h.Reconnect)

	router.POST("/networks/scan", h.ReceiveScan)
	router.GET("/networks/current", h.GetCurrentNetwork)
	router.POST("/networks/next", h.NextNetwork)

	router.GET("/credentials", h.ListCredentials)

	router.POST("/sync", h.Sync)
	router.GET("/sync", h.ListSyncs)
}

func writeError(c *gin.Context, op string, err error) {
	switch {
	case srvErrors.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case srvErrors.IsInvalidStateError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case srvErrors.IsResourceNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		zap.S().Named("handlers").Errorw(op+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}
