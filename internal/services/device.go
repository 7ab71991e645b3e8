package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/blinky-companion/sync-agent/internal/models"
)

type DeviceRecorder interface {
	Touch(ctx context.Context, deviceID string, at time.Time) error
}

// RememberDevice returns a listener that records every device the agent
// becomes ready with, so the next start can reconnect to it.
func RememberDevice(r DeviceRecorder, now func() time.Time) Listener {
	return func(n models.Notification) {
		if n.Type != models.NotificationConnectivityRestored || n.DeviceID == "" {
			return
		}
		if err := r.Touch(context.Background(), n.DeviceID, now()); err != nil {
			zap.S().Named("connection").Warnw("failed to remember device", "device", n.DeviceID, "error", err)
		}
	}
}
