package tlsconn

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"

	utls "github.com/refraction-networking/utls"

	"github.com/die-net/sockshttp/internal/socks5"
)

// Std upgrades connections with crypto/tls.
type Std struct {
	Config *tls.Config
}

// Upgrade runs a TLS client handshake over conn, verifying the server
// certificate against hostname. Config.ServerName is ignored.
func (u *Std) Upgrade(ctx context.Context, conn net.Conn, hostname string) (net.Conn, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if u.Config != nil {
		cfg = u.Config.Clone()
	}
	cfg.ServerName = hostname

	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return tlsConn, nil
}

// UTLS upgrades connections with a uTLS ClientHello fingerprint.
type UTLS struct {
	Config  *utls.Config
	HelloID utls.ClientHelloID
}

// Upgrade runs a uTLS client handshake over conn, verifying the server
// certificate against hostname. If Config.NextProtos is set it replaces the
// ALPN list of the fingerprint. Config.ServerName is ignored.
func (u *UTLS) Upgrade(ctx context.Context, conn net.Conn, hostname string) (net.Conn, error) {
	cfg := &utls.Config{MinVersion: utls.VersionTLS12}
	if u.Config != nil {
		cfg = u.Config.Clone()
	}
	cfg.ServerName = hostname

	uConn := utls.UClient(conn, cfg, u.HelloID)
	if len(cfg.NextProtos) > 0 {
		if err := uConn.BuildHandshakeState(); err != nil {
			return nil, fmt.Errorf("build client hello: %w", err)
		}
		for _, ext := range uConn.Extensions {
			if alpn, ok := ext.(*utls.ALPNExtension); ok {
				alpn.AlpnProtocols = cfg.NextProtos
				break
			}
		}
		if err := uConn.MarshalClientHello(); err != nil {
			return nil, fmt.Errorf("marshal client hello: %w", err)
		}
	}

	if err := uConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return uConn, nil
}

var fingerprints = map[string]utls.ClientHelloID{
	"chrome":     utls.HelloChrome_Auto,
	"firefox":    utls.HelloFirefox_Auto,
	"safari":     utls.HelloSafari_Auto,
	"ios":        utls.HelloIOS_Auto,
	"edge":       utls.HelloEdge_Auto,
	"randomized": utls.HelloRandomized,
}

// New returns an Upgrader for fingerprint. "" and "go" select crypto/tls;
// any other value names a uTLS ClientHello. Only the verification-related
// fields of cfg carry over to uTLS.
func New(fingerprint string, cfg *tls.Config) (socks5.Upgrader, error) {
	fingerprint = strings.ToLower(strings.TrimSpace(fingerprint))
	if fingerprint == "" || fingerprint == "go" {
		return &Std{Config: cfg}, nil
	}

	id, ok := fingerprints[fingerprint]
	if !ok {
		return nil, fmt.Errorf("unknown tls fingerprint %q", fingerprint)
	}

	ucfg := &utls.Config{MinVersion: utls.VersionTLS12}
	if cfg != nil {
		ucfg.RootCAs = cfg.RootCAs
		ucfg.InsecureSkipVerify = cfg.InsecureSkipVerify //nolint:gosec // Caller's choice.
		ucfg.NextProtos = cfg.NextProtos
		if cfg.MinVersion != 0 {
			ucfg.MinVersion = cfg.MinVersion
		}
	}
	return &UTLS{Config: ucfg, HelloID: id}, nil
}

// Fingerprints lists the names accepted by New.
func Fingerprints() []string {
	return []string{"go", "chrome", "firefox", "safari", "ios", "edge", "randomized"}
}
