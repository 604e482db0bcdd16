package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // Intentionally exposed on debug port.
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/die-net/sockshttp/internal/client"
	"github.com/die-net/sockshttp/internal/dialer"
	"github.com/die-net/sockshttp/internal/forward"
	"github.com/die-net/sockshttp/internal/metrics"
	"github.com/die-net/sockshttp/internal/socks5"
	"github.com/die-net/sockshttp/internal/tlsconn"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		proxyURL = pflag.String("proxy", defaultProxy(), "SOCKS5 proxy URL: socks5://[user:pass@]host[:port] | socks5h://[user:pass@]host[:port]")

		forwardListen = pflag.String("forward-listen", "", "Local port-forward listen address (e.g. 127.0.0.1:8080). Empty disables.")
		forwardTarget = pflag.String("forward-target", "", "Port-forward target: host:port, http://host[:port] or https://host[:port] (TLS to target)")
		debugListen   = pflag.String("debug-listen", "", "Debug HTTP listen address exposing /debug/pprof and /metrics (e.g. 127.0.0.1:6060). Empty disables.")

		dialTimeout        = pflag.Duration("dial-timeout", 10*time.Second, "Timeout for DNS lookup and TCP connect to the proxy")
		negotiationTimeout = pflag.Duration("negotiation-timeout", 10*time.Second, "Timeout for SOCKS5 negotiation and TLS handshake")
		requestTimeout     = pflag.Duration("request-timeout", 0, "Timeout for each fetched URL including the body. 0 disables.")
		tcpKeepAlive       = pflag.String("tcp-keepalive", "45:45:3", "TCP keepalive: on|off|keepidle:keepintvl:keepcnt")
		tlsFingerprint     = pflag.String("tls-fingerprint", "go", "TLS ClientHello: "+strings.Join(tlsconn.Fingerprints(), "|"))
		insecure           = pflag.Bool("insecure", false, "Skip TLS certificate verification of https targets")
		parallel           = pflag.Int("parallel", 4, "Maximum concurrent URL fetches")
		verbose            = pflag.Bool("verbose", false, "Log handshake state transitions and per-connection errors")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [URL...]\n\nFetch URLs through a SOCKS5 proxy, or run a port forwarder.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	urls := pflag.Args()
	if len(urls) == 0 && *forwardListen == "" {
		pflag.Usage()
		return errors.New("nothing to do (pass URLs or set --forward-listen)")
	}
	if *parallel <= 0 {
		return errors.New("invalid --parallel: must be > 0")
	}

	ka, err := parseTCPKeepAlive(*tcpKeepAlive)
	if err != nil {
		return fmt.Errorf("invalid --tcp-keepalive: %w", err)
	}

	up, err := tlsconn.New(*tlsFingerprint, &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: *insecure, //nolint:gosec // Operator's choice.
		NextProtos:         []string{"http/1.1"},
	})
	if err != nil {
		return fmt.Errorf("invalid --tls-fingerprint: %w", err)
	}

	dialCfg := dialer.Config{
		DialTimeout:        *dialTimeout,
		NegotiationTimeout: *negotiationTimeout,
		KeepAlive:          ka,
		Upgrader:           up,
		Verbose:            *verbose,
	}

	d, err := dialer.New(dialCfg, *proxyURL)
	if err != nil {
		return fmt.Errorf("invalid --proxy: %w", err)
	}

	g, ctx := errgroup.WithContext(context.Background())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *debugListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/debug/", http.DefaultServeMux)
		mux.Handle("/metrics", metrics.Handler())

		debugSrv := &http.Server{Handler: mux} //nolint:gosec // Not concerned about timeouts on debug port.
		lc := net.ListenConfig{KeepAliveConfig: ka}
		debugLn, err := lc.Listen(ctx, "tcp", *debugListen)
		if err != nil {
			return fmt.Errorf("debug listen: %w", err)
		}
		context.AfterFunc(ctx, func() {
			_ = debugSrv.Close()
			_ = debugLn.Close()
		})

		g.Go(func() error {
			if err := debugSrv.Serve(debugLn); err != nil {
				return fmt.Errorf("debug serve: %w", err)
			}
			return nil
		})
		log.Printf("debug listening on %s", *debugListen)
	}

	if *forwardListen != "" {
		target, err := forward.ParseTarget(*forwardTarget)
		if err != nil {
			return fmt.Errorf("invalid --forward-target: %w", err)
		}
		ln, err := forward.ListenTCP(ctx, "tcp", *forwardListen, ka)
		if err != nil {
			return fmt.Errorf("forward listen: %w", err)
		}
		fsrv, err := forward.NewServer(ctx, forward.Config{Target: target, KeepAlive: ka, Verbose: *verbose}, d)
		if err != nil {
			return err
		}
		context.AfterFunc(ctx, func() {
			_ = ln.Close()
		})

		g.Go(func() error {
			if err := fsrv.Serve(ln); err != nil {
				return fmt.Errorf("forward serve: %w", err)
			}
			return nil
		})
		log.Printf("forwarding %s to %s via %s", *forwardListen, target, d.ProxyAddr())
	}

	if len(urls) > 0 {
		c := client.New(client.Config{
			Timeout:               *requestTimeout,
			ResponseHeaderTimeout: *negotiationTimeout,
		}, d)

		// With several URLs the bodies would interleave; report sizes only.
		var out io.Writer = os.Stdout
		if len(urls) > 1 {
			out = io.Discard
		}

		fetches := &errgroup.Group{}
		fetches.SetLimit(*parallel)
		var failed error
		for _, u := range urls {
			fetches.Go(func() error {
				res, err := client.Fetch(ctx, c, u, out)
				if err != nil {
					log.Printf("%s: %s: %v", u, socks5.Class(err), err)
					return err
				}
				log.Printf("%s: %s, %d bytes", u, res.Status, res.Bytes)
				return nil
			})
		}

		// Wait in a group member so a fetch-only run still ends cleanly.
		g.Go(func() error {
			failed = fetches.Wait()
			c.CloseIdleConnections()
			if *forwardListen == "" {
				stop()
			}
			return nil
		})

		err := g.Wait()
		if err == nil && failed != nil {
			err = errors.New("one or more fetches failed")
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	}

	err = g.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	log.Print("shutting down")
	return err
}

func parseTCPKeepAlive(s string) (net.KeepAliveConfig, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return net.KeepAliveConfig{}, errors.New("empty")
	}
	if s == "on" {
		return net.KeepAliveConfig{Enable: true}, nil
	}
	if s == "off" {
		return net.KeepAliveConfig{Enable: false}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return net.KeepAliveConfig{}, errors.New("expected on|off|keepidle:keepintvl:keepcnt")
	}
	keepIdle, err := parsePositiveSeconds(parts[0])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepidle: %w", err)
	}
	keepIntvl, err := parsePositiveSeconds(parts[1])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepintvl: %w", err)
	}
	keepCnt, err := parsePositiveInt(parts[2])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepcnt: %w", err)
	}

	return net.KeepAliveConfig{
		Enable:   true,
		Idle:     keepIdle,
		Interval: keepIntvl,
		Count:    keepCnt,
	}, nil
}

func parsePositiveSeconds(s string) (time.Duration, error) {
	n, err := parsePositiveInt(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return n, nil
}

func defaultProxy() string {
	for _, k := range []string{"ALL_PROXY", "all_proxy"} {
		if p := os.Getenv(k); p != "" {
			return p
		}
	}

	// Tor's default SOCKS port.
	return "socks5://127.0.0.1:9150"
}
