//go:build !linux

package ble

import (
	"context"

	"github.com/blinky-companion/sync-agent/internal/models"
)

type Transport struct{}

func New(cfg Config) (*Transport, error) {
	return nil, ErrUnsupportedPlatform
}

func (t *Transport) Connect(ctx context.Context, deviceID string) error { return ErrUnsupportedPlatform }
func (t *Transport) Reconnect(ctx context.Context) error                { return ErrUnsupportedPlatform }
func (t *Transport) Disconnect(ctx context.Context) error               { return ErrUnsupportedPlatform }
func (t *Transport) Send(ctx context.Context, data []byte) error        { return ErrUnsupportedPlatform }
func (t *Transport) Events() <-chan models.ConnectionEvent              { return nil }
