package dialer

import (
	"net"
	"time"

	"github.com/die-net/sockshttp/internal/socks5"
)

type Config struct {
	DialTimeout        time.Duration
	NegotiationTimeout time.Duration
	KeepAlive          net.KeepAliveConfig

	// Forward reaches the proxy itself. Nil uses a direct dialer built from
	// DialTimeout and KeepAlive.
	Forward Dialer

	// Upgrader secures https targets. Nil disables https targets.
	Upgrader socks5.Upgrader

	// Verbose logs every handshake state transition.
	Verbose bool
}
