// Package metrics exports Prometheus metrics for SOCKS5 handshakes.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/die-net/sockshttp/internal/socks5"
)

var (
	handshakes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sockshttp_handshakes_total",
		Help: "SOCKS5 handshakes by outcome class.",
	}, []string{"result"})

	handshakeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sockshttp_handshake_duration_seconds",
		Help:    "Time from proxy dial to established tunnel, by outcome class.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"result"})

	serverErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sockshttp_server_errors_total",
		Help: "CONNECT failures reported by the proxy, by reply code.",
	}, []string{"reason"})

	// ActiveTunnels counts forwarded connections currently relaying.
	ActiveTunnels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sockshttp_forward_active_tunnels",
		Help: "Forwarded connections currently relaying through the proxy.",
	})
)

// ObserveHandshake records the outcome of one handshake attempt.
func ObserveHandshake(err error, d time.Duration) {
	class := socks5.Class(err)
	handshakes.WithLabelValues(class).Inc()
	handshakeDuration.WithLabelValues(class).Observe(d.Seconds())

	var se *socks5.ServerError
	if errors.As(err, &se) {
		reason := se.Reason()
		if se.Unknown() {
			reason = "unknown"
		}
		serverErrors.WithLabelValues(reason).Inc()
	}
}

// TunnelOpened and TunnelClosed track forwarded connections.
func TunnelOpened() { ActiveTunnels.Inc() }

func TunnelClosed() { ActiveTunnels.Dec() }

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}),
	)
}
