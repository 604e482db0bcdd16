// Package tlsconn provides the TLS upgraders used on top of SOCKS5 tunnels.
//
// [Std] uses crypto/tls. [UTLS] uses github.com/refraction-networking/utls to
// present a browser-like ClientHello.
package tlsconn
