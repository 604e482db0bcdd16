package client

import (
	"time"
)

type Config struct {
	// Timeout bounds a whole request including the body. Zero means none.
	Timeout time.Duration

	// ResponseHeaderTimeout bounds the wait for response headers once the
	// request is written.
	ResponseHeaderTimeout time.Duration

	IdleTimeout  time.Duration
	MaxIdleConns int
}
