// Package forward implements a local TCP port forwarder.
//
// Each accepted connection is relayed to one fixed target through the SOCKS5
// connector. An https target is reached over TLS, so local clients can speak
// plaintext to a TLS-only origin.
package forward
