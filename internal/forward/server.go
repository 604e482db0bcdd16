package forward

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"

	"github.com/die-net/sockshttp/internal/metrics"
	"github.com/die-net/sockshttp/internal/socks5"
)

// Connector opens a stream to a target URL. *dialer.SOCKS5ProxyDialer
// implements it.
type Connector interface {
	Connect(ctx context.Context, u *url.URL) (net.Conn, error)
}

// Server relays accepted connections to Config.Target.
type Server struct {
	ctx  context.Context
	cfg  Config
	conn Connector
}

// NewServer returns a forwarder. Relays stop when ctx is done.
func NewServer(ctx context.Context, cfg Config, c Connector) (*Server, error) {
	if cfg.Target == nil {
		return nil, errors.New("forward: missing target")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Server{ctx: ctx, cfg: cfg, conn: c}, nil
}

// Serve accepts connections on ln until it is closed.
func (s *Server) Serve(ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) && s.ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(c)
	}
}

func (s *Server) handleConn(c net.Conn) {
	s.applyKeepAlive(c)

	up, err := s.conn.Connect(s.ctx, s.cfg.Target)
	if err != nil {
		_ = c.Close()
		if s.cfg.Verbose {
			log.Printf("forward %s -> %s: %v", c.RemoteAddr(), s.cfg.Target.Host, err)
		}
		return
	}

	metrics.TunnelOpened()
	defer metrics.TunnelClosed()

	err = CopyBidirectional(s.ctx, c, up, s.cfg.IOTimeout)
	if err != nil && s.cfg.Verbose {
		log.Printf("forward %s -> %s: %v", c.RemoteAddr(), s.cfg.Target.Host, err)
	}
}

// applyKeepAlive sets Config.KeepAlive on c if it is a TCP connection.
func (s *Server) applyKeepAlive(c net.Conn) bool {
	tc, ok := c.(*net.TCPConn)
	if !ok {
		return false
	}
	return tc.SetKeepAliveConfig(s.cfg.KeepAlive) == nil
}

// ParseTarget accepts host:port (plain tunnel), or an http:// or https://
// URL with an optional port. An https target is reached over TLS.
func ParseTarget(s string) (*url.URL, error) {
	if s == "" {
		return nil, errors.New("empty target")
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		// Bare host:port parses as an opaque or schemeless URL.
		if _, _, splitErr := net.SplitHostPort(s); splitErr != nil {
			return nil, fmt.Errorf("invalid target %q: want host:port or URL", s)
		}
		return &url.URL{Scheme: "http", Host: s}, nil
	}
	if _, err := socks5.ParseTarget(u); err != nil {
		return nil, err
	}
	return u, nil
}
