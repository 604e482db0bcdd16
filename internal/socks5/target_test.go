package socks5

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestEncodeAddressExample(t *testing.T) {
	t.Parallel()

	got, err := EncodeAddress(Target{Host: "example.com", Port: 443, Scheme: "https"})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x03, 0x0B, 0x65, 0x78, 0x61, 0x6D, 0x70, 0x6C, 0x65, 0x2E, 0x63, 0x6F, 0x6D, 0x01, 0xBB}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestEncodeAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		host    string
		port    uint16
		wantErr error
	}{
		{name: "domain", host: "example.org", port: 80},
		{name: "ipv4 literal stays a domain", host: "127.0.0.1", port: 8080},
		{name: "ipv6 literal stays a domain", host: "::1", port: 1},
		{name: "max length", host: strings.Repeat("a", 255), port: 65535},
		{name: "too long", host: strings.Repeat("a", 256), port: 80, wantErr: ErrHostTooLong},
		{name: "missing", host: "", port: 80, wantErr: ErrHostMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EncodeAddress(Target{Host: tt.host, Port: tt.port, Scheme: "http"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got[0] != AddrTypeDomain {
				t.Fatalf("got atyp %d want %d", got[0], AddrTypeDomain)
			}
			if int(got[1]) != len(tt.host) {
				t.Fatalf("got length %d want %d", got[1], len(tt.host))
			}
			if string(got[2:2+len(tt.host)]) != tt.host {
				t.Fatalf("got host %q want %q", got[2:2+len(tt.host)], tt.host)
			}
			port := uint16(got[len(got)-2])<<8 | uint16(got[len(got)-1])
			if port != tt.port {
				t.Fatalf("got port %d want %d", port, tt.port)
			}
		})
	}
}

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    Target
		wantErr error
	}{
		{name: "https default port", url: "https://example.com", want: Target{Host: "example.com", Port: 443, Scheme: "https"}},
		{name: "http default port", url: "http://example.com/path?q=1", want: Target{Host: "example.com", Port: 80, Scheme: "http"}},
		{name: "explicit port wins", url: "https://example.com:8443", want: Target{Host: "example.com", Port: 8443, Scheme: "https"}},
		{name: "explicit port on http", url: "http://example.com:443", want: Target{Host: "example.com", Port: 443, Scheme: "http"}},
		{name: "scheme case-insensitive", url: "HTTPS://example.com", want: Target{Host: "example.com", Port: 443, Scheme: "https"}},
		{name: "ipv4 literal", url: "http://1.2.3.4", want: Target{Host: "1.2.3.4", Port: 80, Scheme: "http"}},
		{name: "ipv6 literal", url: "http://[::1]:8080", want: Target{Host: "::1", Port: 8080, Scheme: "http"}},
		{name: "unsupported scheme", url: "ftp://example.com", wantErr: ErrUnsupportedScheme},
		{name: "unsupported scheme with port", url: "ws://example.com:80", wantErr: ErrUnsupportedScheme},
		{name: "missing host", url: "http:///path", wantErr: ErrHostMissing},
		{name: "relative", url: "/path", wantErr: ErrHostMissing},
		{name: "port zero", url: "http://example.com:0", wantErr: ErrInvalidPort},
		{name: "port out of range", url: "https://example.com:65536", wantErr: ErrInvalidPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := url.Parse(tt.url)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ParseTarget(u)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v want %v", err, tt.wantErr)
				}
				if !errors.Is(err, ErrConfig) {
					t.Fatalf("got %v want ErrConfig class", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %+v want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTargetNil(t *testing.T) {
	t.Parallel()

	if _, err := ParseTarget(nil); !errors.Is(err, ErrHostMissing) {
		t.Fatalf("got %v want ErrHostMissing", err)
	}
}

func TestTargetFromAddress(t *testing.T) {
	t.Parallel()

	got, err := TargetFromAddress("https", "example.com:443")
	if err != nil {
		t.Fatal(err)
	}
	if want := (Target{Host: "example.com", Port: 443, Scheme: "https"}); got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.Address() != "example.com:443" {
		t.Fatalf("got address %q", got.Address())
	}
	if !got.TLS() {
		t.Fatal("https target should need TLS")
	}

	if _, err := TargetFromAddress("http", "example.com"); !errors.Is(err, ErrHostMissing) {
		t.Fatalf("got %v want ErrHostMissing", err)
	}
	for _, addr := range []string{"example.com:99999", "example.com:0", "example.com:x"} {
		if _, err := TargetFromAddress("http", addr); !errors.Is(err, ErrInvalidPort) {
			t.Fatalf("%s: got %v want ErrInvalidPort", addr, err)
		}
	}
}

func mustParseURL(t *testing.T, s string) *url.URL {
	t.Helper()

	u, err := url.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return u
}
