// Package socks5 implements the client side of a SOCKS5 CONNECT handshake
// (RFC 1928) with optional username/password authentication (RFC 1929).
//
// The handshake runs over an already connected net.Conn and is driven as an
// explicit state machine:
//
//	init -> greeting-sent -> method-selected -> auth-done -> address-sent
//	     -> reply-received [-> tls-upgrading] -> established
//
// Any step may move to failed. Targets are always encoded as domain names.
// TLS is not implemented here; https targets are upgraded through an
// injected Upgrader.
//
// Errors fall into five classes, tested with errors.Is: ErrConfig,
// ErrProtocol, ErrServer, ErrTransport and ErrTLS.
package socks5
