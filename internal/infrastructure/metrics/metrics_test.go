package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(body)
}

func TestCollector(t *testing.T) {
	c := New("alphasign")

	c.RecordCommand("lobby", "show_message", true, 40, 150*time.Millisecond)
	c.RecordCommand("lobby", "show_message", true, 20, 100*time.Millisecond)
	c.RecordCommand("lobby", "reset", false, 0, time.Second)
	c.SetConnected("lobby", true)
	c.RecordMQTT("lobby", "command", "ok")

	body := scrape(t, c)

	want := []string{
		`alphasign_commands_total{kind="show_message",sign="lobby",status="sent"} 2`,
		`alphasign_commands_total{kind="reset",sign="lobby",status="failed"} 1`,
		`alphasign_bytes_sent_total{sign="lobby"} 60`,
		`alphasign_command_duration_seconds_count{kind="show_message",sign="lobby"} 2`,
		`alphasign_sign_connected{sign="lobby"} 1`,
		`alphasign_mqtt_messages_total{result="ok",sign="lobby",type="command"} 1`,
		`go_goroutines`,
	}
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("scrape missing %q", w)
		}
	}
}

func TestCollectorDisconnected(t *testing.T) {
	c := New("")
	c.SetConnected("lobby", true)
	c.SetConnected("lobby", false)

	if body := scrape(t, c); !strings.Contains(body, `alphasign_sign_connected{sign="lobby"} 0`) {
		t.Error("gauge not reset to 0")
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := New("a")
	b := New("b")
	a.RecordCommand("x", "tone", true, 1, 0)

	if body := scrape(t, b); strings.Contains(body, "b_commands_total") {
		t.Error("unused collector exposes command counts")
	}
}
