// Package loopback is an in-process transport. It plays the device side of
// the link: it accepts any device id, walks through the same lifecycle a real
// device does and records every payload it receives.
package loopback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/blinky-companion/sync-agent/internal/models"
	"github.com/blinky-companion/sync-agent/pkg/payload"
	"github.com/blinky-companion/sync-agent/pkg/transport"
)

const eventBuffer = 64

type Transport struct {
	events      *transport.EventStream
	parser      *payload.Builder
	deviceID    string
	connected   bool
	unsupported map[string]bool
	sendErr     error
	received    []models.SyncPayload
	mu          sync.Mutex
}

var _ transport.Transport = &Transport{}

func New() *Transport {
	return &Transport{
		events:      transport.NewEventStream(eventBuffer),
		parser:      payload.NewBuilder(time.UTC),
		unsupported: make(map[string]bool),
	}
}

func (t *Transport) Connect(ctx context.Context, deviceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.deviceID = deviceID
	t.connected = false

	t.emit(models.ConnectionEventConnecting, false)
	t.emit(models.ConnectionEventInitializing, false)
	if t.unsupported[deviceID] {
		t.emit(models.ConnectionEventDisconnected, true)
		return nil
	}

	t.connected = true
	t.emit(models.ConnectionEventReady, false)
	return nil
}

func (t *Transport) Reconnect(ctx context.Context) error {
	t.mu.Lock()
	deviceID := t.deviceID
	t.mu.Unlock()

	if deviceID == "" {
		return transport.ErrNoDevice
	}
	return t.Connect(ctx, deviceID)
}

func (t *Transport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil
	}
	t.connected = false
	t.emit(models.ConnectionEventDisconnecting, false)
	t.emit(models.ConnectionEventDisconnected, false)
	return nil
}

// Send decodes data the way the firmware would. Malformed payloads are
// rejected.
func (t *Transport) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return transport.ErrNotConnected
	}
	if t.sendErr != nil {
		return t.sendErr
	}

	p, err := t.parser.Parse(data)
	if err != nil {
		return err
	}
	t.received = append(t.received, p)

	zap.S().Named("loopback").Infow("payload received",
		"device", t.deviceID,
		"ledOn", p.LedOn,
		"currentTime", p.CurrentTimeSeconds,
		"alarm", time.Duration(p.AlarmHour)*time.Hour+time.Duration(p.AlarmMinute)*time.Minute,
		"ssid", p.SSID,
	)
	return nil
}

func (t *Transport) Events() <-chan models.ConnectionEvent {
	return t.events.C()
}

// Drop simulates the device going out of range.
func (t *Transport) Drop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connected = false
	t.emit(models.ConnectionEventDisconnected, false)
}

// MarkUnsupported makes later connections to deviceID end in
// disconnected(unsupported).
func (t *Transport) MarkUnsupported(deviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unsupported[deviceID] = true
}

// FailSends makes every Send return err. A nil err restores normal behavior.
func (t *Transport) FailSends(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
}

// Received returns the payloads accepted so far.
func (t *Transport) Received() []models.SyncPayload {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.SyncPayload(nil), t.received...)
}

func (t *Transport) DeviceID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deviceID
}

func (t *Transport) Close() {
	t.events.Close()
}

func (t *Transport) emit(typ models.ConnectionEventType, unsupported bool) {
	t.events.Emit(models.ConnectionEvent{Type: typ, DeviceID: t.deviceID, Unsupported: unsupported})
}
