package client

import (
	"context"
	"net"
	"net/http"
)

// Dialer is the connector side of a transport: plain tunnels for http and
// upgraded tunnels for https.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
	DialTLSContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NewTransport returns an HTTP/1.1 transport that reaches every origin
// through d. Environment proxy settings are ignored.
func NewTransport(cfg Config, d Dialer) *http.Transport {
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 100
	}

	return &http.Transport{
		DialContext:           d.DialContext,
		DialTLSContext:        d.DialTLSContext,
		ForceAttemptHTTP2:     false,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdle,
		IdleConnTimeout:       cfg.IdleTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
	}
}

// New returns an http.Client using NewTransport.
func New(cfg Config, d Dialer) *http.Client {
	return &http.Client{
		Transport: NewTransport(cfg, d),
		Timeout:   cfg.Timeout,
	}
}
