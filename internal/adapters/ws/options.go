package ws

import (
	"time"

	"github.com/okian/scorecard/pkg/logger"
)

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithSendBuffer sets how many updates may wait for a slow subscriber before it is dropped.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithPingInterval sets the keepalive interval.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.pingInterval = d
		}
	}
}

// WithLogger sets a custom logger for the hub.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}
