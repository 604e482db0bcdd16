package socks5

import (
	txsocks5 "github.com/txthinking/socks5"
)

// Protocol versions.
const (
	Version         byte = 0x05 // RFC 1928 VER
	UserPassVersion byte = 0x01 // RFC 1929 sub-negotiation VER
)

// Authentication methods offered in the greeting.
const (
	MethodNoAuth   = txsocks5.MethodNone
	MethodUserPass = txsocks5.MethodUsernamePassword
)

// CmdConnect is the only command this client issues.
const CmdConnect = txsocks5.CmdConnect

// Address types.
const (
	AddrTypeIPv4   = txsocks5.ATYPIPv4
	AddrTypeDomain = txsocks5.ATYPDomain
	AddrTypeIPv6   = txsocks5.ATYPIPv6
)

// Reply codes (REP) in CONNECT replies.
const (
	RepSuccess              byte = 0x00 // Request granted
	RepGeneralFailure       byte = 0x01 // General SOCKS server failure
	RepConnectionNotAllowed byte = 0x02 // Connection not allowed by ruleset
	RepNetworkUnreachable   byte = 0x03 // Network unreachable
	RepHostUnreachable      byte = 0x04 // Host unreachable
	RepConnectionRefused    byte = 0x05 // Connection refused
	RepTTLExpired           byte = 0x06 // TTL expired
	RepCommandNotSupported  byte = 0x07 // Command not supported
	RepAddrTypeNotSupported byte = 0x08 // Address type not supported
)

// MaxFieldLen bounds every length-prefixed field on the wire: usernames,
// passwords and domain names.
const MaxFieldLen = 255

// Default ports applied when a target URL carries no explicit port.
const (
	DefaultHTTPPort  = 80
	DefaultHTTPSPort = 443
)
