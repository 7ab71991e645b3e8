//go:build linux

package ble

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/blinky-companion/sync-agent/internal/models"
	"github.com/blinky-companion/sync-agent/pkg/transport"
)

const eventBuffer = 64

type Transport struct {
	adapter     *bluetooth.Adapter
	serviceUUID bluetooth.UUID
	charUUID    bluetooth.UUID
	chunkSize   int
	events      *transport.EventStream

	deviceID string
	device   *bluetooth.Device
	rx       *bluetooth.DeviceCharacteristic
	mu       sync.Mutex
}

var _ transport.Transport = &Transport{}

// New enables the default adapter. The device address is a MAC address
// given to Connect.
func New(cfg Config) (*Transport, error) {
	cfg = cfg.withDefaults()

	serviceUUID, err := bluetooth.ParseUUID(cfg.ServiceUUID)
	if err != nil {
		return nil, fmt.Errorf("parsing service uuid %q: %w", cfg.ServiceUUID, err)
	}
	charUUID, err := bluetooth.ParseUUID(cfg.CharacteristicUUID)
	if err != nil {
		return nil, fmt.Errorf("parsing characteristic uuid %q: %w", cfg.CharacteristicUUID, err)
	}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enabling bluetooth adapter: %w", err)
	}

	t := &Transport{
		adapter:     adapter,
		serviceUUID: serviceUUID,
		charUUID:    charUUID,
		chunkSize:   cfg.ChunkSize,
		events:      transport.NewEventStream(eventBuffer),
	}
	adapter.SetConnectHandler(t.onConnectionChange)

	return t, nil
}

func (t *Transport) Connect(ctx context.Context, deviceID string) error {
	mac, err := bluetooth.ParseMAC(deviceID)
	if err != nil {
		return fmt.Errorf("parsing device address %q: %w", deviceID, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.release()
	t.deviceID = deviceID
	t.emit(models.ConnectionEventConnecting, false)

	device, err := t.adapter.Connect(bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}, bluetooth.ConnectionParams{})
	if err != nil {
		t.emit(models.ConnectionEventDisconnected, false)
		return fmt.Errorf("connecting to %s: %w", deviceID, err)
	}
	if err := ctx.Err(); err != nil {
		_ = device.Disconnect()
		t.emit(models.ConnectionEventDisconnected, false)
		return err
	}

	t.emit(models.ConnectionEventInitializing, false)

	rx, err := t.discover(device)
	if err != nil {
		zap.S().Named("ble").Warnw("device lacks the sync characteristic", "device", deviceID, "error", err)
		_ = device.Disconnect()
		t.emit(models.ConnectionEventDisconnected, true)
		return nil
	}

	t.device = &device
	t.rx = rx
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

	if t.device == nil {
		return nil
	}

	t.emit(models.ConnectionEventDisconnecting, false)
	err := t.device.Disconnect()
	t.device = nil
	t.rx = nil
	t.emit(models.ConnectionEventDisconnected, false)
	if err != nil {
		return fmt.Errorf("disconnecting from %s: %w", t.deviceID, err)
	}
	return nil
}

func (t *Transport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rx == nil {
		return transport.ErrNotConnected
	}

	for _, chunk := range chunks(data, t.chunkSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := t.rx.WriteWithoutResponse(chunk); err != nil {
			return fmt.Errorf("writing to %s: %w", t.deviceID, err)
		}
	}

	zap.S().Named("ble").Debugw("payload written", "device", t.deviceID, "bytes", len(data))
	return nil
}

func (t *Transport) Events() <-chan models.ConnectionEvent {
	return t.events.C()
}

func (t *Transport) discover(device bluetooth.Device) (*bluetooth.DeviceCharacteristic, error) {
	services, err := device.DiscoverServices([]bluetooth.UUID{t.serviceUUID})
	if err != nil {
		return nil, fmt.Errorf("discovering services: %w", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("service %s not found", t.serviceUUID)
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{t.charUUID})
	if err != nil {
		return nil, fmt.Errorf("discovering characteristics: %w", err)
	}
	if len(chars) == 0 {
		return nil, fmt.Errorf("characteristic %s not found", t.charUUID)
	}
	return &chars[0], nil
}

// onConnectionChange reports links dropped by the device or the radio.
func (t *Transport) onConnectionChange(device bluetooth.Device, connected bool) {
	if connected {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.device == nil || t.device.Address.String() != device.Address.String() {
		return
	}
	t.device = nil
	t.rx = nil
	t.emit(models.ConnectionEventDisconnected, false)
}

// release drops a previous link without reporting it. Callers hold mu.
func (t *Transport) release() {
	if t.device != nil {
		_ = t.device.Disconnect()
	}
	t.device = nil
	t.rx = nil
}

func (t *Transport) emit(typ models.ConnectionEventType, unsupported bool) {
	t.events.Emit(models.ConnectionEvent{Type: typ, DeviceID: t.deviceID, Unsupported: unsupported})
}
