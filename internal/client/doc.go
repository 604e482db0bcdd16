// Package client wires the SOCKS5 connector into net/http.
//
// The transport hands plain targets to the connector's DialContext and https
// targets to its DialTLSContext, so TLS is negotiated by the connector's
// upgrader over the proxy tunnel rather than by http.Transport.
package client
