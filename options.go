package toio

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Option configures discovery and session behavior.
type Option func(*config)

type config struct {
	scanTimeout     time.Duration
	responseTimeout time.Duration
	eventBuffer     int
	log             *logrus.Logger
}

func defaultConfig() *config {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return &config{
		scanTimeout:     3 * time.Second,
		responseTimeout: 2 * time.Second,
		eventBuffer:     16,
		log:             log,
	}
}

// WithScanTimeout sets the discovery window. Scans always terminate: when no
// timeout is configured the 3s default applies rather than scanning forever.
func WithScanTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.scanTimeout = d
		}
	}
}

// WithResponseTimeout sets how long awaited commands (targeted moves,
// protocol version queries) wait for the cube's acknowledgment.
// The default is 2s.
func WithResponseTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.responseTimeout = d
		}
	}
}

// WithEventBuffer sets the per-subscriber event channel capacity. A
// subscriber that falls this far behind starts losing events (logged),
// keeping the dispatch loop unblocked.
func WithEventBuffer(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.eventBuffer = n
		}
	}
}

// WithLogger replaces the default warn-level logger.
func WithLogger(log *logrus.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}
