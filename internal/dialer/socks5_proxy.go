package dialer

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/die-net/sockshttp/internal/metrics"
	"github.com/die-net/sockshttp/internal/socks5"
)

// SOCKS5ProxyDialer tunnels outbound TCP connections through a SOCKS5 proxy.
//
// It holds only immutable state and is safe for concurrent use; every dial
// uses its own proxy connection and handshake.
type SOCKS5ProxyDialer struct {
	cfg       Config
	proxyAddr string
	creds     *socks5.Credentials
	forward   Dialer
}

// NewSOCKS5ProxyDialer constructs a dialer for the proxy at proxyAddr. creds
// may be nil to offer no-auth only.
func NewSOCKS5ProxyDialer(cfg Config, proxyAddr string, creds *socks5.Credentials) *SOCKS5ProxyDialer {
	forward := cfg.Forward
	if forward == nil {
		forward = NewDirectDialer(cfg)
	}
	return &SOCKS5ProxyDialer{cfg: cfg, proxyAddr: proxyAddr, creds: creds, forward: forward}
}

// ProxyAddr returns the proxy host:port.
func (f *SOCKS5ProxyDialer) ProxyAddr() string {
	return f.proxyAddr
}

// Connect returns a stream to the target named by u: a plain tunnel for http
// URLs, a TLS connection over the tunnel for https URLs.
func (f *SOCKS5ProxyDialer) Connect(ctx context.Context, u *url.URL) (net.Conn, error) {
	target, err := socks5.ParseTarget(u)
	if err != nil {
		return nil, err
	}
	return f.connect(ctx, target)
}

// DialContext returns a plain tunnel to address.
func (f *SOCKS5ProxyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f.dial(ctx, "http", network, address)
}

// DialTLSContext returns a TLS connection to address over a tunnel. It is
// meant for http.Transport.DialTLSContext.
func (f *SOCKS5ProxyDialer) DialTLSContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f.dial(ctx, "https", network, address)
}

// Dial is DialContext with a background context, for proxy.Dialer users.
func (f *SOCKS5ProxyDialer) Dial(network, address string) (net.Conn, error) {
	return f.DialContext(context.Background(), network, address)
}

func (f *SOCKS5ProxyDialer) dial(ctx context.Context, scheme, network, address string) (net.Conn, error) {
	if !strings.HasPrefix(network, "tcp") {
		return nil, fmt.Errorf("socks5 proxy dial %s %s: unsupported network", network, address)
	}
	target, err := socks5.TargetFromAddress(scheme, address)
	if err != nil {
		return nil, err
	}
	return f.connect(ctx, target)
}

func (f *SOCKS5ProxyDialer) connect(ctx context.Context, target socks5.Target) (net.Conn, error) {
	hcfg := socks5.HandshakeConfig{
		Credentials: f.creds,
		Upgrader:    f.cfg.Upgrader,
	}
	if f.cfg.Verbose {
		hcfg.Trace = func(from, to socks5.State) {
			log.Printf("socks5 %s via %s: %s -> %s", target.Address(), f.proxyAddr, from, to)
		}
	}

	// Nothing is dialed for a request that can never be sent.
	if err := hcfg.Validate(target); err != nil {
		return nil, err
	}

	start := time.Now()
	c, err := f.handshake(ctx, target, hcfg)
	metrics.ObserveHandshake(err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy dial %s via %s: %w", target.Address(), f.proxyAddr, err)
	}
	return c, nil
}

// handshake dials the proxy and runs the handshake on the new connection.
//
// If NegotiationTimeout is set, a deadline is applied during the handshake
// and cleared before returning. On error the proxy connection is closed.
func (f *SOCKS5ProxyDialer) handshake(ctx context.Context, target socks5.Target, hcfg socks5.HandshakeConfig) (net.Conn, error) {
	conn, err := f.forward.DialContext(ctx, "tcp", f.proxyAddr)
	if err != nil {
		return nil, &socks5.TransportError{Op: "connect to proxy", Err: err}
	}

	if f.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(f.cfg.NegotiationTimeout))
	}

	c, err := socks5.Handshake(ctx, conn, target, hcfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if f.cfg.NegotiationTimeout > 0 {
		_ = c.SetDeadline(time.Time{})
	}
	return c, nil
}
