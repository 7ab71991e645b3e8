package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/blinky-companion/sync-agent/internal/models"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
	"github.com/blinky-companion/sync-agent/pkg/scheduler"
	"github.com/blinky-companion/sync-agent/pkg/transport"
)

// Listener receives connectivity notifications. Listeners run on the event
// loop and must not block.
type Listener func(models.Notification)

// ConnectionCoordinator tracks the device connection state from transport
// events and requests a reconnect whenever the link is lost.
//
// State only changes in OnEvent. Connect, Reconnect and Send are requests
// handed to the transport through the scheduler; their outcome shows up
// later as events.
type ConnectionCoordinator struct {
	scheduler *scheduler.Scheduler
	transport transport.Transport

	state     models.ConnectionState
	deviceID  string
	listeners []Listener
	mu        sync.Mutex
}

func NewConnectionCoordinator(s *scheduler.Scheduler, t transport.Transport) *ConnectionCoordinator {
	return &ConnectionCoordinator{
		scheduler: s,
		transport: t,
		state:     models.Disconnected(false),
	}
}

// Run feeds transport events to OnEvent, one at a time, until ctx is done or
// the transport closes its event channel.
func (c *ConnectionCoordinator) Run(ctx context.Context) {
	events := c.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				zap.S().Named("connection").Info("transport event channel closed")
				return
			}
			c.OnEvent(ev)
		}
	}
}

// OnEvent moves to the state carried by ev. Entering disconnected or
// disconnecting notifies connectivity lost and requests exactly one
// reconnect. Entering ready notifies connectivity restored.
func (c *ConnectionCoordinator) OnEvent(ev models.ConnectionEvent) {
	next, err := ev.State()
	if err != nil {
		zap.S().Named("connection").Warnw("ignoring connection event", "error", err)
		return
	}

	c.mu.Lock()
	prev := c.state
	c.state = next
	if ev.DeviceID != "" {
		c.deviceID = ev.DeviceID
	}
	deviceID := c.deviceID
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	zap.S().Named("connection").Infow("connection state changed", "from", prev.String(), "to", next.String(), "device", deviceID)

	switch {
	case next.IsLost():
		notify(listeners, models.Notification{Type: models.NotificationConnectivityLost, State: next, DeviceID: deviceID})
		c.Reconnect()
	case next.State == models.ConnectionStateReady:
		notify(listeners, models.Notification{Type: models.NotificationConnectivityRestored, State: next, DeviceID: deviceID})
	}
}

func (c *ConnectionCoordinator) CurrentState() models.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SyncEnabled is true only while the device is ready.
func (c *ConnectionCoordinator) SyncEnabled() bool {
	return c.CurrentState().State == models.ConnectionStateReady
}

func (c *ConnectionCoordinator) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}

func (c *ConnectionCoordinator) Status() models.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.ConnectionStatus{
		State:       c.state,
		DeviceID:    c.deviceID,
		SyncEnabled: c.state.State == models.ConnectionStateReady,
	}
}

func (c *ConnectionCoordinator) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Connect asks the transport to connect to deviceID. It returns as soon as
// the request is queued.
func (c *ConnectionCoordinator) Connect(deviceID string) error {
	if deviceID == "" {
		return srvErrors.NewValidationError("deviceId", "must not be empty")
	}

	c.mu.Lock()
	c.deviceID = deviceID
	c.mu.Unlock()

	zap.S().Named("connection").Infow("connect requested", "device", deviceID)
	future := c.scheduler.AddWork(func(ctx context.Context) (any, error) {
		return nil, c.transport.Connect(ctx, deviceID)
	})
	go c.await("connect", deviceID, future)

	return nil
}

// Reconnect asks the transport to reconnect to the last device. Without a
// known device it does nothing.
func (c *ConnectionCoordinator) Reconnect() {
	deviceID := c.DeviceID()
	if deviceID == "" {
		zap.S().Named("connection").Warn("reconnect requested without a known device")
		return
	}

	zap.S().Named("connection").Debugw("reconnect requested", "device", deviceID)
	future := c.scheduler.AddWork(func(ctx context.Context) (any, error) {
		return nil, c.transport.Reconnect(ctx)
	})
	go c.await("reconnect", deviceID, future)
}

// Send hands data to the transport and waits for the write to complete.
func (c *ConnectionCoordinator) Send(ctx context.Context, data []byte) error {
	future := c.scheduler.AddWork(func(ctx context.Context) (any, error) {
		return nil, c.transport.Send(ctx, data)
	})

	select {
	case <-ctx.Done():
		future.Stop()
		return ctx.Err()
	case result := <-future.C():
		if result.Err != nil {
			return srvErrors.NewTransportError("send", result.Err)
		}
		return nil
	}
}

func (c *ConnectionCoordinator) await(op, deviceID string, future *scheduler.Future) {
	result := <-future.C()
	if result.Err != nil {
		zap.S().Named("connection").Errorw("transport request failed", "op", op, "device", deviceID, "error", result.Err)
	}
}

func notify(listeners []Listener, n models.Notification) {
	for _, l := range listeners {
		l(n)
	}
}
