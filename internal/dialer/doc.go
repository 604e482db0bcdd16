package dialer

// Package dialer provides the outbound SOCKS5 connector used by sockshttp.
//
// A SOCKS5ProxyDialer dials the proxy through a forward Dialer (direct by
// default), runs the socks5 handshake and, for https targets, the TLS
// upgrade. It plugs into http.Transport through DialContext and
// DialTLSContext.
