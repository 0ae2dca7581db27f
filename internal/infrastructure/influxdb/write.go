package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementCommands = "sign_commands"
	measurementHealth   = "sign_health"
)

// CommandSample is one command attempt as stored in InfluxDB.
type CommandSample struct {
	SignID  string
	Kind    string
	Source  string
	Success bool
	Bytes   int
	Elapsed time.Duration
	Time    time.Time
}

func commandPoint(s CommandSample) *write.Point {
	status := "sent"
	if !s.Success {
		status = "failed"
	}
	ts := s.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return write.NewPoint(
		measurementCommands,
		map[string]string{
			"sign_id": s.SignID,
			"kind":    s.Kind,
			"source":  s.Source,
			"status":  status,
		},
		map[string]any{
			"bytes":       int64(s.Bytes),
			"duration_ms": float64(s.Elapsed) / float64(time.Millisecond),
		},
		ts,
	)
}

func healthPoint(signID string, connected bool, sent, failed uint64, ts time.Time) *write.Point {
	return write.NewPoint(
		measurementHealth,
		map[string]string{"sign_id": signID},
		map[string]any{
			"connected": connected,
			"sent":      sent,
			"failed":    failed,
		},
		ts,
	)
}

// WriteCommand records one command attempt. The write is batched.
func (c *Client) WriteCommand(s CommandSample) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(commandPoint(s))
}

// WriteHealth records the sign's connection state and counters.
func (c *Client) WriteHealth(signID string, connected bool, sent, failed uint64) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(healthPoint(signID, connected, sent, failed, time.Now()))
}
