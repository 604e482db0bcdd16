package socks5

import (
	"context"
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package matches exactly one of
// them under errors.Is.
var (
	ErrConfig    = errors.New("socks5: invalid configuration")
	ErrProtocol  = errors.New("socks5: protocol violation")
	ErrServer    = errors.New("socks5: server rejected request")
	ErrTransport = errors.New("socks5: transport failure")
	ErrTLS       = errors.New("socks5: tls upgrade failure")
)

// ConfigError reports caller-supplied data that can never be sent. It is
// returned before any I/O takes place.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return "socks5: " + e.msg }

// Is reports membership in ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// Configuration errors.
var (
	ErrCredentialsTooLong = &ConfigError{"username or password longer than 255 bytes"}
	ErrHostMissing        = &ConfigError{"target host missing"}
	ErrHostTooLong        = &ConfigError{"target host longer than 255 bytes"}
	ErrUnsupportedScheme  = &ConfigError{"only http and https targets are supported"}
	ErrInvalidPort        = &ConfigError{"invalid target port"}
	ErrNoUpgrader         = &ConfigError{"https target requires a tls upgrader"}
)

// ProtocolError reports a peer that violated the SOCKS5 protocol. The
// connection is unusable afterwards.
type ProtocolError struct {
	msg string
}

func (e *ProtocolError) Error() string { return "socks5: " + e.msg }

// Is reports membership in ErrProtocol.
func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// Protocol errors.
var (
	ErrBadVersion                 = &ProtocolError{"invalid version in reply"}
	ErrUnauthorized               = &ProtocolError{"username/password rejected"}
	ErrMalformedReply             = &ProtocolError{"invalid reserved byte in reply"}
	ErrUnsupportedAddressType     = &ProtocolError{"unsupported bound address type in reply"}
	ErrAuthRequired               = &ProtocolError{"server requires username/password"}
	ErrUnexpectedGreetingResponse = &ProtocolError{"unexpected method selection reply"}
)

// ServerError is a CONNECT failure reported by the proxy in the REP field.
type ServerError struct {
	Code byte
}

func (e *ServerError) Error() string {
	return "socks5: " + e.Reason()
}

// Reason returns the RFC 1928 description of Code.
func (e *ServerError) Reason() string {
	switch e.Code {
	case RepGeneralFailure:
		return "general SOCKS server failure"
	case RepConnectionNotAllowed:
		return "connection not allowed by ruleset"
	case RepNetworkUnreachable:
		return "network unreachable"
	case RepHostUnreachable:
		return "host unreachable"
	case RepConnectionRefused:
		return "connection refused"
	case RepTTLExpired:
		return "TTL expired"
	case RepCommandNotSupported:
		return "command not supported"
	case RepAddrTypeNotSupported:
		return "address type not supported"
	default:
		return fmt.Sprintf("unknown error (0x%02x)", e.Code)
	}
}

// Unknown reports whether Code is outside the RFC 1928 table.
func (e *ServerError) Unknown() bool {
	return e.Code == RepSuccess || e.Code > RepAddrTypeNotSupported
}

// Is matches ErrServer and any *ServerError with the same code.
func (e *ServerError) Is(target error) bool {
	if target == ErrServer {
		return true
	}
	t, ok := target.(*ServerError)
	return ok && t.Code == e.Code
}

// Server errors, one per RFC 1928 reply code.
var (
	ErrGeneralFailure          = &ServerError{RepGeneralFailure}
	ErrConnectionNotAllowed    = &ServerError{RepConnectionNotAllowed}
	ErrNetworkUnreachable      = &ServerError{RepNetworkUnreachable}
	ErrHostUnreachable         = &ServerError{RepHostUnreachable}
	ErrConnectionRefused       = &ServerError{RepConnectionRefused}
	ErrTTLExpired              = &ServerError{RepTTLExpired}
	ErrCommandNotSupported     = &ServerError{RepCommandNotSupported}
	ErrAddressTypeNotSupported = &ServerError{RepAddrTypeNotSupported}
)

// TransportError wraps an I/O failure on the proxy connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("socks5: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports membership in ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// TLSError wraps a failure of the TLS upgrade on top of an established tunnel.
type TLSError struct {
	Host string
	Err  error
}

func (e *TLSError) Error() string {
	return fmt.Sprintf("socks5: tls handshake with %s: %v", e.Host, e.Err)
}

func (e *TLSError) Unwrap() error { return e.Err }

// Is reports membership in ErrTLS.
func (e *TLSError) Is(target error) bool { return target == ErrTLS }

// Class returns a short label for the error class of err, suitable for
// metric labels and logs.
func Class(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrServer):
		return "server"
	case errors.Is(err, ErrTLS):
		return "tls"
	default:
		return "transport"
	}
}
