// Package ble connects to the companion device over Bluetooth Low Energy and
// writes sync payloads to a GATT characteristic.
package ble

import "errors"

const (
	// NordicUARTService is the service the companion firmware exposes.
	NordicUARTService = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	// NordicUARTRX is the characteristic the firmware reads payloads from.
	NordicUARTRX = "6e400002-b5a3-f393-e0a9-e50e24dcca9e"

	// DefaultChunkSize fits the default ATT MTU of 23 bytes minus the 3 byte header.
	DefaultChunkSize = 20
)

var ErrUnsupportedPlatform = errors.New("ble transport is only available on linux")

type Config struct {
	ServiceUUID        string
	CharacteristicUUID string
	ChunkSize          int
}

func (c Config) withDefaults() Config {
	if c.ServiceUUID == "" {
		c.ServiceUUID = NordicUARTService
	}
	if c.CharacteristicUUID == "" {
		c.CharacteristicUUID = NordicUARTRX
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	return c
}

// chunks splits data into writes of at most size bytes.
func chunks(data []byte, size int) [][]byte {
	if size <= 0 {
		size = DefaultChunkSize
	}
	out := make([][]byte, 0, (len(data)+size-1)/size)
	for len(data) > 0 {
		n := min(size, len(data))
		out = append(out, data[:n])
		data = data[n:]
	}
	return out
}
