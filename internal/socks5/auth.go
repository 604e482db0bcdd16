package socks5

import (
	"fmt"
	"io"
)

// methods returns the greeting's method list: no-auth always, plus
// username/password when credentials are configured.
func methods(creds *Credentials) []byte {
	if creds == nil {
		return []byte{MethodNoAuth}
	}
	return []byte{MethodNoAuth, MethodUserPass}
}

// selectMethod validates the 2-byte method selection reply and returns the
// chosen method.
func selectMethod(resp [2]byte, creds *Credentials) (byte, error) {
	switch {
	case resp[0] == Version && resp[1] == MethodNoAuth:
		return MethodNoAuth, nil
	case resp[0] == Version && resp[1] == MethodUserPass:
		if creds == nil {
			return 0, ErrAuthRequired
		}
		return MethodUserPass, nil
	default:
		return 0, fmt.Errorf("%w: % x", ErrUnexpectedGreetingResponse, resp[:])
	}
}

// authenticate runs the RFC 1929 sub-negotiation over rw.
func authenticate(rw io.ReadWriter, creds *Credentials) error {
	if _, err := creds.request().WriteTo(rw); err != nil {
		return &TransportError{Op: "write username/password", Err: err}
	}

	var resp [2]byte
	if _, err := io.ReadFull(rw, resp[:]); err != nil {
		return &TransportError{Op: "read username/password reply", Err: err}
	}
	if resp[0] != UserPassVersion || resp[1] != 0x00 {
		return fmt.Errorf("%w: % x", ErrUnauthorized, resp[:])
	}
	return nil
}
