// Package ble provides low-level BLE communication with toio cubes.
//
// The Scanner and Transport interfaces are the seam between the driver and
// the platform BLE stack: the session and searcher depend only on them, and
// tests substitute in-memory fakes. The production implementation sits on
// tinygo.org/x/bluetooth.
package ble

import (
	"context"
	"time"

	"github.com/toiolab/toio/internal/protocol"
)

// Advertisement is one observation of a cube during a scan.
type Advertisement struct {
	Address string // platform address, stable across observations
	Name    string // advertised local name (e.g. "toio Core Cube")
	RSSI    int16  // signal strength in dBm, higher = closer
}

// Scanner discovers cubes advertising the toio service.
type Scanner interface {
	// Scan reports every matching advertisement to found until the timeout
	// elapses or ctx is cancelled. The same cube may be reported more than
	// once with refreshed signal strength.
	Scan(ctx context.Context, timeout time.Duration, found func(Advertisement)) error
}

// Notification is one raw frame pushed by a subscribed characteristic.
type Notification struct {
	Char protocol.Characteristic
	Data []byte
}

// Transport is a single BLE connection to one cube.
type Transport interface {
	// Connect establishes the connection, discovers the toio service and
	// subscribes to its notifying characteristics.
	Connect(ctx context.Context) error

	// Disconnect tears the connection down. The notification channel is
	// closed as a consequence.
	Disconnect() error

	// Write sends a frame to a characteristic. It returns once the platform
	// stack accepts the write, not when the cube acts on it.
	Write(char protocol.Characteristic, data []byte) error

	// Notifications returns the inbound frame stream. The channel is closed
	// when the connection ends, whether by Disconnect or by the link
	// dropping.
	Notifications() <-chan Notification
}
