package socks5

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Target is the destination a CONNECT request asks the proxy to reach.
type Target struct {
	Host   string
	Port   uint16
	Scheme string // "http" or "https"
}

// ParseTarget derives a Target from u. An explicit port wins; otherwise the
// port defaults to 443 for https and 80 for http. Other schemes are rejected.
func ParseTarget(u *url.URL) (Target, error) {
	if u == nil || u.Hostname() == "" {
		return Target{}, ErrHostMissing
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	t := Target{Host: u.Hostname(), Scheme: scheme}

	if p := u.Port(); p != "" {
		port, err := parsePort(p)
		if err != nil {
			return Target{}, err
		}
		t.Port = port
		return t, nil
	}

	if scheme == "https" {
		t.Port = DefaultHTTPSPort
	} else {
		t.Port = DefaultHTTPPort
	}
	return t, nil
}

// TargetFromAddress builds a Target from a "host:port" dial address, as
// passed to http.Transport dial hooks.
func TargetFromAddress(scheme, address string) (Target, error) {
	host, p, err := net.SplitHostPort(address)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %w", ErrHostMissing, err)
	}
	return ParseTarget(&url.URL{Scheme: scheme, Host: net.JoinHostPort(host, p)})
}

// TLS reports whether the tunnel must be upgraded to TLS.
func (t Target) TLS() bool {
	return t.Scheme == "https"
}

// Address returns the "host:port" form of t.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

// EncodeAddress returns the CONNECT address block for t:
// ATYP(3) LEN HOST PORT(big-endian). Hosts are always sent as domain names,
// IP literals included.
func EncodeAddress(t Target) ([]byte, error) {
	if t.Host == "" {
		return nil, ErrHostMissing
	}
	if len(t.Host) > MaxFieldLen {
		return nil, ErrHostTooLong
	}

	b := make([]byte, 0, 1+1+len(t.Host)+2)
	b = append(b, AddrTypeDomain, byte(len(t.Host)))
	b = append(b, t.Host...)
	b = binary.BigEndian.AppendUint16(b, t.Port)
	return b, nil
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w %q", ErrInvalidPort, s)
	}
	return uint16(n), nil
}
