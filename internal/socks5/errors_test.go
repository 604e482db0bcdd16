package socks5

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorClasses(t *testing.T) {
	t.Parallel()

	classes := []error{ErrConfig, ErrProtocol, ErrServer, ErrTransport, ErrTLS}

	tests := []struct {
		err   error
		class error
		label string
	}{
		{ErrHostTooLong, ErrConfig, "config"},
		{fmt.Errorf("dial: %w", ErrCredentialsTooLong), ErrConfig, "config"},
		{ErrBadVersion, ErrProtocol, "protocol"},
		{fmt.Errorf("%w: got 4", ErrBadVersion), ErrProtocol, "protocol"},
		{&ServerError{Code: 0x42}, ErrServer, "server"},
		{ErrTTLExpired, ErrServer, "server"},
		{&TransportError{Op: "read", Err: io.EOF}, ErrTransport, "transport"},
		{&TLSError{Host: "example.com", Err: io.EOF}, ErrTLS, "tls"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()

			for _, c := range classes {
				if got, want := errors.Is(tt.err, c), c == tt.class; got != want {
					t.Fatalf("errors.Is(%v, %v) = %v want %v", tt.err, c, got, want)
				}
			}
			if got := Class(tt.err); got != tt.label {
				t.Fatalf("got class %q want %q", got, tt.label)
			}
		})
	}
}

func TestClassCanceled(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: %w", context.Canceled, &TransportError{Op: "read", Err: io.EOF})
	if got := Class(err); got != "canceled" {
		t.Fatalf("got %q", got)
	}
	if got := Class(nil); got != "ok" {
		t.Fatalf("got %q", got)
	}
}

func TestServerErrorIsByCode(t *testing.T) {
	t.Parallel()

	err := &ServerError{Code: RepHostUnreachable}
	if !errors.Is(err, ErrHostUnreachable) {
		t.Fatal("same code should match")
	}
	if errors.Is(err, ErrConnectionRefused) {
		t.Fatal("different code should not match")
	}
	if err.Error() != "socks5: host unreachable" {
		t.Fatalf("got %q", err.Error())
	}
}
