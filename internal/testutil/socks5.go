package testutil

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/txthinking/socks5"
)

// SOCKS5Auth is the username/password a fake proxy demands. Empty means
// no-auth.
type SOCKS5Auth struct {
	Username string
	Password string
}

// StartSOCKS5Server runs a fake SOCKS5 proxy that serves CONNECT requests
// until the test ends.
func StartSOCKS5Server(t *testing.T, ctx context.Context, auth SOCKS5Auth) net.Listener {
	t.Helper()

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer c.Close()
				_ = ServeSOCKS5Connect(ctx, c, auth)
			}()
		}
	}()

	return ln
}

// ServeSOCKS5Connect handles one client connection: method negotiation,
// optional username/password check, CONNECT to the requested address and a
// bidirectional copy until either side closes.
func ServeSOCKS5Connect(ctx context.Context, c net.Conn, auth SOCKS5Auth) error {
	if _, err := socks5.NewNegotiationRequestFrom(c); err != nil {
		return err
	}

	if auth.Username == "" && auth.Password == "" {
		if _, err := socks5.NewNegotiationReply(socks5.MethodNone).WriteTo(c); err != nil {
			return err
		}
	} else {
		if _, err := socks5.NewNegotiationReply(socks5.MethodUsernamePassword).WriteTo(c); err != nil {
			return err
		}

		urq, err := socks5.NewUserPassNegotiationRequestFrom(c)
		if err != nil {
			return err
		}
		if string(urq.Uname) != auth.Username || string(urq.Passwd) != auth.Password {
			_, _ = socks5.NewUserPassNegotiationReply(socks5.UserPassStatusFailure).WriteTo(c)
			return nil
		}
		if _, err := socks5.NewUserPassNegotiationReply(socks5.UserPassStatusSuccess).WriteTo(c); err != nil {
			return err
		}
	}

	req, err := socks5.NewRequestFrom(c)
	if err != nil {
		return err
	}
	if req.Cmd != socks5.CmdConnect {
		WriteSOCKS5Failure(c, socks5.RepCommandNotSupported)
		return nil
	}

	d := net.Dialer{}
	dst, err := d.DialContext(ctx, "tcp", req.Address())
	if err != nil {
		WriteSOCKS5Failure(c, socks5.RepHostUnreachable)
		return nil
	}
	defer dst.Close()

	a, addr, port, err := socks5.ParseAddress(dst.LocalAddr().String())
	if err != nil {
		return err
	}
	if a == socks5.ATYPDomain {
		addr = addr[1:]
	}
	if _, err := socks5.NewReply(socks5.RepSuccess, a, addr, port).WriteTo(c); err != nil {
		return err
	}

	go func() {
		_, _ = io.Copy(dst, c)
		_ = dst.Close()
	}()
	_, _ = io.Copy(c, dst)

	return nil
}

// WriteSOCKS5Failure writes a CONNECT reply with status rep and a zero IPv4
// bound address.
func WriteSOCKS5Failure(c net.Conn, rep byte) {
	_, _ = socks5.NewReply(rep, socks5.ATYPIPv4, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x00, 0x00}).WriteTo(c)
}
