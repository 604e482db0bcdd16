package main

import (
	"net"
	"testing"
	"time"
)

func TestParseTCPKeepAlive(t *testing.T) {
	tests := []struct {
		in      string
		want    net.KeepAliveConfig
		wantErr bool
	}{
		{in: "on", want: net.KeepAliveConfig{Enable: true}},
		{in: " OFF ", want: net.KeepAliveConfig{}},
		{in: "45:45:3", want: net.KeepAliveConfig{Enable: true, Idle: 45 * time.Second, Interval: 45 * time.Second, Count: 3}},
		{in: "", wantErr: true},
		{in: "1:2", wantErr: true},
		{in: "0:1:1", wantErr: true},
		{in: "1:x:1", wantErr: true},
		{in: "1:1:-2", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseTCPKeepAlive(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %+v want %+v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultProxy(t *testing.T) {
	t.Setenv("ALL_PROXY", "")
	t.Setenv("all_proxy", "")
	if got := defaultProxy(); got != "socks5://127.0.0.1:9150" {
		t.Fatalf("got %q", got)
	}

	t.Setenv("all_proxy", "socks5://lower:1080")
	if got := defaultProxy(); got != "socks5://lower:1080" {
		t.Fatalf("got %q", got)
	}

	t.Setenv("ALL_PROXY", "socks5h://upper:1080")
	if got := defaultProxy(); got != "socks5h://upper:1080" {
		t.Fatalf("got %q", got)
	}
}
