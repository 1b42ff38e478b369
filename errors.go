package toio

import "errors"

// Sentinel errors for the toio package.
var (
	// Connection errors
	ErrNotConnected = errors.New("toio: not connected to cube")
	ErrDisconnected = errors.New("toio: cube disconnected")

	// Discovery errors
	ErrNotFound = errors.New("toio: no cube found")

	// Request errors
	ErrTimeout = errors.New("toio: response timed out")
)
