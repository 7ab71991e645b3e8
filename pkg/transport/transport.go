// Package transport defines how the agent talks to the companion device.
//
// A Transport turns connect/reconnect/disconnect requests into link
// operations and reports every lifecycle change on its Events channel. It
// never decides what to do about a lost link; that is up to the consumer of
// the events.
package transport

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/blinky-companion/sync-agent/internal/models"
)

var (
	ErrNotConnected = errors.New("device not connected")
	ErrNoDevice     = errors.New("no device to reconnect to")
)

type Transport interface {
	Connect(ctx context.Context, deviceID string) error
	Reconnect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Send(ctx context.Context, payload []byte) error
	Events() <-chan models.ConnectionEvent
}

// EventStream is a buffered event channel shared by transport implementations.
// Emit never blocks: when the buffer is full the event is dropped and logged.
type EventStream struct {
	c      chan models.ConnectionEvent
	closed bool
	mu     sync.Mutex
}

func NewEventStream(size int) *EventStream {
	return &EventStream{c: make(chan models.ConnectionEvent, size)}
}

func (s *EventStream) Emit(event models.ConnectionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.c <- event:
	default:
		zap.S().Named("transport").Errorw("event buffer full, dropping event", "event", event.Type, "device", event.DeviceID)
	}
}

func (s *EventStream) C() <-chan models.ConnectionEvent {
	return s.c
}

// Close closes the channel. Later emits are ignored.
func (s *EventStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.c)
	}
}
