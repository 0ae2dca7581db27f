// Package metrics exposes sign command counters in the Prometheus text
// format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so several collectors can coexist in
// one process (tests, multiple signs).
type Collector struct {
	registry *prometheus.Registry

	commands *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	conn     *prometheus.GaugeVec
	mqtt     *prometheus.CounterVec
}

// New creates a collector whose metric names start with namespace.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = "alphasign"
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Sign commands attempted, by kind and status.",
			},
			[]string{"sign", "kind", "status"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_sent_total",
				Help:      "Framed packet bytes written to the sign.",
			},
			[]string{"sign"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Time to send one command, including fragment pauses.",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10},
			},
			[]string{"sign", "kind"},
		),
		conn: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sign_connected",
				Help:      "1 when a transport to the sign is open.",
			},
			[]string{"sign"},
		),
		mqtt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mqtt",
				Name:      "messages_total",
				Help:      "MQTT commands and requests handled, by result.",
			},
			[]string{"sign", "type", "result"},
		),
	}

	c.registry.MustRegister(
		c.commands, c.bytes, c.duration, c.conn, c.mqtt,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordCommand counts one command attempt.
func (c *Collector) RecordCommand(sign, kind string, ok bool, bytes int, elapsed time.Duration) {
	status := "sent"
	if !ok {
		status = "failed"
	}
	c.commands.WithLabelValues(sign, kind, status).Inc()
	if bytes > 0 {
		c.bytes.WithLabelValues(sign).Add(float64(bytes))
	}
	c.duration.WithLabelValues(sign, kind).Observe(elapsed.Seconds())
}

// SetConnected records whether the sign transport is open.
func (c *Collector) SetConnected(sign string, connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	c.conn.WithLabelValues(sign).Set(v)
}

// RecordMQTT counts one MQTT message. result is "ok" or an error class.
func (c *Collector) RecordMQTT(sign, msgType, result string) {
	c.mqtt.WithLabelValues(sign, msgType, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
