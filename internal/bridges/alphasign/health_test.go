package alphasign

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/alphasign-core/internal/sign"
)

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		name       string
		mqttUp     bool
		stats      sign.Stats
		want       HealthStatus
		wantReason string
	}{
		{"healthy idle", true, sign.Stats{}, HealthHealthy, ""},
		{"healthy connected", true, sign.Stats{Connected: true, LastError: "old"}, HealthHealthy, ""},
		{"mqtt down", false, sign.Stats{Connected: true}, HealthDegraded, "MQTT disconnected"},
		{"sign unreachable", true, sign.Stats{LastError: "dial refused"}, HealthDegraded, "sign unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockMQTT()
			m.connected = tt.mqttUp
			h := NewHealthReporter(HealthReporterConfig{
				SignID: "lobby", Publisher: m, Sign: &fakeSign{stats: tt.stats},
			})

			got, reason := h.determineStatus()
			if got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
			if !strings.HasPrefix(reason, tt.wantReason) {
				t.Errorf("reason = %q, want prefix %q", reason, tt.wantReason)
			}
		})
	}
}

func TestHealthReporter_Publish(t *testing.T) {
	m := newMockMQTT()
	s := &fakeSign{stats: sign.Stats{Connected: true, Sent: 4, Failed: 1, BytesSent: 120}}
	h := NewHealthReporter(HealthReporterConfig{
		SignID:    "lobby",
		Version:   "1.2.3",
		Publisher: m,
		Sign:      s,
		Counters:  func() (uint64, uint64) { return 5, 2 },
	})

	if err := h.PublishNow(); err != nil {
		t.Fatalf("PublishNow() error = %v", err)
	}

	out := m.on("alphasign/health/lobby")
	if len(out) != 1 {
		t.Fatalf("published %d health messages, want 1", len(out))
	}
	if !out[0].retained {
		t.Error("health should be retained")
	}

	var msg HealthMessage
	if err := json.Unmarshal(out[0].payload, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Status != HealthHealthy || msg.Version != "1.2.3" {
		t.Errorf("msg = %+v", msg)
	}
	if msg.Connection == nil || msg.Connection.Status != "connected" || msg.Connection.Target != "10.0.0.5:10001" {
		t.Errorf("Connection = %+v", msg.Connection)
	}
	st := msg.Statistics
	if st == nil || st.Sent != 4 || st.Failed != 1 || st.BytesSent != 120 || st.CommandsReceived != 5 || st.RequestsReceived != 2 {
		t.Errorf("Statistics = %+v", st)
	}
}

func TestHealthReporter_StartStop(t *testing.T) {
	m := newMockMQTT()
	h := NewHealthReporter(HealthReporterConfig{
		SignID:    "lobby",
		Interval:  10 * time.Millisecond,
		Publisher: m,
		Sign:      &fakeSign{},
	})

	h.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	h.Stop()
	h.Stop()

	out := m.on("alphasign/health/lobby")
	if len(out) < 2 {
		t.Fatalf("published %d health messages, want at least 2", len(out))
	}
	var last HealthMessage
	if err := json.Unmarshal(out[len(out)-1].payload, &last); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if last.Status != HealthStopping {
		t.Errorf("final status = %q, want stopping", last.Status)
	}
}

func TestHealthReporter_NoPublisher(t *testing.T) {
	h := NewHealthReporter(HealthReporterConfig{SignID: "lobby"})
	if err := h.PublishNow(); err != nil {
		t.Errorf("PublishNow() without publisher error = %v", err)
	}
	if h.cfg.Interval != defaultHealthInterval {
		t.Errorf("Interval = %v, want default", h.cfg.Interval)
	}
}
