package dialer

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"

	"github.com/die-net/sockshttp/internal/socks5"
)

// Dialer mirrors the net.Dialer interface.
type Dialer = proxy.ContextDialer

// DefaultProxyPort is applied when a proxy URL has no port.
const DefaultProxyPort = "1080"

// New parses proxyURL and constructs a SOCKS5ProxyDialer.
//
// Supported forms:
//   - socks5://[user[:pass]@]host[:port]
//   - socks5h://[user[:pass]@]host[:port]
//
// Both schemes send the target hostname to the proxy for resolution.
func New(cfg Config, proxyURL string) (*SOCKS5ProxyDialer, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)

	if u.Path != "" && u.Path != "/" {
		return nil, errors.New("invalid URL: path should be empty")
	}

	switch u.Scheme {
	case "":
		return nil, errors.New("invalid url: missing scheme")
	case "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("invalid url scheme: %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, errors.New("invalid url: missing host")
	}
	port := u.Port()
	if port == "" {
		port = DefaultProxyPort
	}

	var creds *socks5.Credentials
	if u.User != nil {
		pass, _ := u.User.Password()
		creds, err = socks5.NewCredentialsString(u.User.Username(), pass)
		if err != nil {
			return nil, err
		}
	}

	return NewSOCKS5ProxyDialer(cfg, net.JoinHostPort(host, port), creds), nil
}
