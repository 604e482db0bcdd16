package socks5

import (
	"bytes"

	txsocks5 "github.com/txthinking/socks5"
)

// Credentials is a validated RFC 1929 username/password pair. The zero value
// is not usable; construct one with NewCredentials.
type Credentials struct {
	username []byte
	password []byte
}

// NewCredentials copies username and password into a Credentials value.
// Either field longer than 255 bytes yields ErrCredentialsTooLong.
func NewCredentials(username, password []byte) (*Credentials, error) {
	if len(username) > MaxFieldLen || len(password) > MaxFieldLen {
		return nil, ErrCredentialsTooLong
	}
	return &Credentials{
		username: bytes.Clone(username),
		password: bytes.Clone(password),
	}, nil
}

// NewCredentialsString is NewCredentials for UTF-8 strings.
func NewCredentialsString(username, password string) (*Credentials, error) {
	return NewCredentials([]byte(username), []byte(password))
}

// Username returns a copy of the username.
func (c *Credentials) Username() []byte { return bytes.Clone(c.username) }

// Password returns a copy of the password.
func (c *Credentials) Password() []byte { return bytes.Clone(c.password) }

// request builds the sub-negotiation message VER ULEN UNAME PLEN PASSWD.
func (c *Credentials) request() *txsocks5.UserPassNegotiationRequest {
	return txsocks5.NewUserPassNegotiationRequest(c.username, c.password)
}
