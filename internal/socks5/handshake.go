package socks5

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	txsocks5 "github.com/txthinking/socks5"
)

// State is a step of the client handshake.
type State int

const (
	StateInit State = iota
	StateGreetingSent
	StateMethodSelected
	StateAuthDone
	StateAddressSent
	StateReplyReceived
	StateTLSUpgrading
	StateEstablished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateGreetingSent:
		return "greeting-sent"
	case StateMethodSelected:
		return "method-selected"
	case StateAuthDone:
		return "auth-done"
	case StateAddressSent:
		return "address-sent"
	case StateReplyReceived:
		return "reply-received"
	case StateTLSUpgrading:
		return "tls-upgrading"
	case StateEstablished:
		return "established"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Upgrader layers TLS over an established tunnel. hostname is used for SNI
// and certificate verification.
type Upgrader interface {
	Upgrade(ctx context.Context, conn net.Conn, hostname string) (net.Conn, error)
}

// UpgraderFunc adapts a function to Upgrader.
type UpgraderFunc func(ctx context.Context, conn net.Conn, hostname string) (net.Conn, error)

// Upgrade calls f.
func (f UpgraderFunc) Upgrade(ctx context.Context, conn net.Conn, hostname string) (net.Conn, error) {
	return f(ctx, conn, hostname)
}

// HandshakeConfig holds the per-connector collaborators of a handshake.
type HandshakeConfig struct {
	// Credentials enables username/password authentication. Nil offers
	// no-auth only.
	Credentials *Credentials
	// Upgrader is required for https targets.
	Upgrader Upgrader
	// Trace, if set, is called on every state transition.
	Trace func(from, to State)
}

// Validate reports configuration errors that would make a handshake for
// target fail before any I/O.
func (cfg HandshakeConfig) Validate(target Target) error {
	if _, err := EncodeAddress(target); err != nil {
		return err
	}
	if target.TLS() && cfg.Upgrader == nil {
		return ErrNoUpgrader
	}
	return nil
}

// aLongTimeAgo is a deadline in the past, used to unblock pending I/O.
var aLongTimeAgo = time.Unix(1, 0)

// Handshake performs a SOCKS5 CONNECT to target over conn, which must already
// be connected to the proxy. For https targets the tunnel is upgraded with
// cfg.Upgrader and the returned conn is the secured one.
//
// Configuration errors are reported before anything is written. Canceling ctx
// interrupts pending I/O. Handshake never closes conn; on error the caller
// must discard it.
func Handshake(ctx context.Context, conn net.Conn, target Target, cfg HandshakeConfig) (net.Conn, error) {
	if err := cfg.Validate(target); err != nil {
		return nil, err
	}
	addr, err := EncodeAddress(target)
	if err != nil {
		return nil, err
	}

	h := &handshake{
		cfg:    cfg,
		target: target,
		addr:   addr,
		conn:   conn,
		state:  StateInit,
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(aLongTimeAgo)
	})

	err = h.run(ctx)
	if !stop() && err == nil {
		// ctx fired after the last step; conn now carries a past deadline.
		h.transition(StateFailed)
		err = ctx.Err()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && ctxErr != err {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, err
	}
	return h.conn, nil
}

type handshake struct {
	cfg    HandshakeConfig
	target Target
	addr   []byte
	conn   net.Conn
	state  State
	method byte
}

func (h *handshake) run(ctx context.Context) error {
	for h.state != StateEstablished {
		next, err := h.step(ctx)
		if err != nil {
			h.transition(StateFailed)
			return err
		}
		h.transition(next)
	}
	return nil
}

func (h *handshake) transition(next State) {
	if h.cfg.Trace != nil {
		h.cfg.Trace(h.state, next)
	}
	h.state = next
}

func (h *handshake) step(ctx context.Context) (State, error) {
	switch h.state {
	case StateInit:
		return h.sendGreeting()
	case StateGreetingSent:
		return h.readMethod()
	case StateMethodSelected:
		return h.authenticate()
	case StateAuthDone:
		return h.sendConnect()
	case StateAddressSent:
		return h.readReply()
	case StateReplyReceived:
		if h.target.TLS() {
			return StateTLSUpgrading, nil
		}
		return StateEstablished, nil
	case StateTLSUpgrading:
		return h.upgrade(ctx)
	default:
		return StateFailed, fmt.Errorf("socks5: no transition from state %s", h.state)
	}
}

func (h *handshake) sendGreeting() (State, error) {
	if _, err := txsocks5.NewNegotiationRequest(methods(h.cfg.Credentials)).WriteTo(h.conn); err != nil {
		return StateFailed, &TransportError{Op: "write greeting", Err: err}
	}
	return StateGreetingSent, nil
}

func (h *handshake) readMethod() (State, error) {
	var resp [2]byte
	if _, err := io.ReadFull(h.conn, resp[:]); err != nil {
		return StateFailed, &TransportError{Op: "read method selection", Err: err}
	}
	m, err := selectMethod(resp, h.cfg.Credentials)
	if err != nil {
		return StateFailed, err
	}
	h.method = m
	return StateMethodSelected, nil
}

func (h *handshake) authenticate() (State, error) {
	if h.method == MethodUserPass {
		if err := authenticate(h.conn, h.cfg.Credentials); err != nil {
			return StateFailed, err
		}
	}
	return StateAuthDone, nil
}

func (h *handshake) sendConnect() (State, error) {
	req := make([]byte, 0, 3+len(h.addr))
	req = append(req, Version, CmdConnect, 0x00)
	req = append(req, h.addr...)
	if _, err := h.conn.Write(req); err != nil {
		return StateFailed, &TransportError{Op: "write connect request", Err: err}
	}
	return StateAddressSent, nil
}

func (h *handshake) readReply() (State, error) {
	// The bound address is of no use to a CONNECT client.
	if _, err := ReadReply(h.conn); err != nil {
		return StateFailed, err
	}
	return StateReplyReceived, nil
}

func (h *handshake) upgrade(ctx context.Context) (State, error) {
	c, err := h.cfg.Upgrader.Upgrade(ctx, h.conn, h.target.Host)
	if err != nil {
		return StateFailed, &TLSError{Host: h.target.Host, Err: err}
	}
	h.conn = c
	return StateEstablished, nil
}
