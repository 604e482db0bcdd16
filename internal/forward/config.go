package forward

import (
	"net"
	"net/url"
	"time"
)

type Config struct {
	// Target is where every accepted connection is tunnelled to.
	Target *url.URL

	// KeepAlive is applied to every accepted TCP connection.
	KeepAlive net.KeepAliveConfig

	// IOTimeout, if set, is an absolute deadline for each relayed connection.
	IOTimeout time.Duration

	Verbose bool
}
