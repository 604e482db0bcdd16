package socks5

import (
	"bytes"
	"errors"
	"io"
	"net/netip"
	"testing"
)

func TestReadReplySuccess(t *testing.T) {
	t.Parallel()

	r := bytes.NewReader([]byte{0x05, 0x00, 0x00, 0x01, 10, 0, 0, 1, 0x1F, 0x90, 'x'})
	rep, err := ReadReply(r)
	if err != nil {
		t.Fatal(err)
	}
	if want := netip.MustParseAddrPort("10.0.0.1:8080"); rep.Bound != want {
		t.Fatalf("got bound %s want %s", rep.Bound, want)
	}
	if rep.AddrType != AddrTypeIPv4 {
		t.Fatalf("got atyp %d", rep.AddrType)
	}
	if r.Len() != 1 {
		t.Fatalf("reply consumed %d extra bytes", 1-r.Len())
	}
}

func TestReadReplyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code byte
		want error
	}{
		{RepGeneralFailure, ErrGeneralFailure},
		{RepConnectionNotAllowed, ErrConnectionNotAllowed},
		{RepNetworkUnreachable, ErrNetworkUnreachable},
		{RepHostUnreachable, ErrHostUnreachable},
		{RepConnectionRefused, ErrConnectionRefused},
		{RepTTLExpired, ErrTTLExpired},
		{RepCommandNotSupported, ErrCommandNotSupported},
		{RepAddrTypeNotSupported, ErrAddressTypeNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.want.Error(), func(t *testing.T) {
			t.Parallel()

			// The tail must be left unread on failure.
			r := bytes.NewReader([]byte{0x05, tt.code, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
			_, err := ReadReply(r)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
			if !errors.Is(err, ErrServer) {
				t.Fatalf("got %v want ErrServer class", err)
			}
			if r.Len() != 7 {
				t.Fatalf("got %d unread bytes want 7", r.Len())
			}

			var se *ServerError
			if !errors.As(err, &se) || se.Code != tt.code || se.Unknown() {
				t.Fatalf("got %#v", se)
			}
		})
	}
}

func TestReadReplyConnectionRefusedIsDistinct(t *testing.T) {
	t.Parallel()

	_, err := ReadReply(bytes.NewReader([]byte{0x05, 0x05, 0x00}))
	if !errors.Is(err, ErrConnectionRefused) {
		t.Fatalf("got %v want ErrConnectionRefused", err)
	}
	if errors.Is(err, ErrNetworkUnreachable) {
		t.Fatal("connection refused matched network unreachable")
	}
	if Class(err) != "server" {
		t.Fatalf("got class %q", Class(err))
	}
}

func TestReadReplyUnknownStatus(t *testing.T) {
	t.Parallel()

	_, err := ReadReply(bytes.NewReader([]byte{0x05, 0x2a, 0x00}))
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("got %v want *ServerError", err)
	}
	if !se.Unknown() {
		t.Fatal("0x2a should be unknown")
	}
	if se.Error() != "socks5: unknown error (0x2a)" {
		t.Fatalf("got %q", se.Error())
	}
}

func TestReadReplyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{name: "bad version", in: []byte{0x04, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0}, want: ErrBadVersion},
		{name: "bad version wins over status", in: []byte{0x04, 0x05, 0x00}, want: ErrBadVersion},
		{name: "reserved not zero", in: []byte{0x05, 0x00, 0x01, 0x01, 0, 0, 0, 0, 0, 0}, want: ErrMalformedReply},
		{name: "domain bound address", in: []byte{0x05, 0x00, 0x00, 0x03, 0x01, 'a', 0, 0}, want: ErrUnsupportedAddressType},
		{name: "ipv6 bound address", in: append([]byte{0x05, 0x00, 0x00, 0x04}, make([]byte, 18)...), want: ErrUnsupportedAddressType},
		{name: "junk address type", in: []byte{0x05, 0x00, 0x00, 0x09}, want: ErrUnsupportedAddressType},
		{name: "short header", in: []byte{0x05, 0x00}, want: io.ErrUnexpectedEOF},
		{name: "empty", in: nil, want: io.EOF},
		{name: "missing address type", in: []byte{0x05, 0x00, 0x00}, want: ErrTransport},
		{name: "short address", in: []byte{0x05, 0x00, 0x00, 0x01, 127, 0}, want: io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rep, err := ReadReply(bytes.NewReader(tt.in))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
			if rep != nil {
				t.Fatalf("got reply %v on error", rep)
			}
		})
	}
}
