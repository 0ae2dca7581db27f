package sign

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/alphasign-core/internal/history"
	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
	"github.com/nerrad567/alphasign-core/internal/transport"
)

type fakeTransport struct {
	mu       sync.Mutex
	writes   [][]byte
	reply    []byte   // returned by the next Read
	chunks   [][]byte // returned one per Read before reply
	readErr  error
	reads    int
	writeErr error
	closed   int
}

func (f *fakeTransport) Open(context.Context) error { return nil }

func (f *fakeTransport) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), p...))
	return nil
}

func (f *fakeTransport) Read(size int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if size < 0 {
		return nil, transport.ErrInvalidSize
	}
	if len(f.chunks) > 0 {
		next := f.chunks[0]
		f.chunks = f.chunks[1:]
		return next, nil
	}
	if f.reply != nil {
		r := f.reply
		f.reply = nil
		return r, nil
	}
	return nil, f.readErr
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Kind() transport.Kind { return transport.KindIP }
func (f *fakeTransport) Target() string       { return "fake:10001" }

type fakeRecorder struct {
	entries []*history.Entry
}

func (r *fakeRecorder) Create(_ context.Context, e *history.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

var fixedNow = time.Date(2023, 12, 25, 9, 5, 0, 0, time.UTC)

// newTestClient returns a client whose send writes the packet in one
// piece, and the fake transport it dials.
func newTestClient(cfg Config, opts ...Option) (*Client, *fakeTransport, *int) {
	tr := &fakeTransport{}
	dials := 0
	dial := func(context.Context, string, transport.Options) (transport.Transport, error) {
		dials++
		return tr, nil
	}
	opts = append([]Option{WithDialer(dial), WithClock(func() time.Time { return fixedNow })}, opts...)
	c := NewClient(cfg, opts...)
	c.send = func(w transport.Writer, data []byte) error { return w.Write(data) }
	return c, tr, &dials
}

func TestClientExecuteFramesPacket(t *testing.T) {
	c, tr, dials := newTestClient(Config{ID: "lobby", Target: "fake:10001"})

	if err := c.Execute(context.Background(), KindSound, alpha.SetSound(true), "test"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if *dials != 1 {
		t.Errorf("dials = %d, want 1", *dials)
	}
	if len(tr.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(tr.writes))
	}
	want := alpha.FrameTo(alpha.SetSound(true), alpha.SignTypeAll, alpha.AddressBroadcast)
	if !bytes.Equal(tr.writes[0], want) {
		t.Errorf("packet = %q, want %q", tr.writes[0], want)
	}

	stats := c.Stats()
	if stats.Sent != 1 || stats.Failed != 0 || stats.BytesSent != uint64(len(want)) || !stats.Connected {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestClientReusesTransport(t *testing.T) {
	c, tr, dials := newTestClient(Config{ID: "lobby"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := c.Execute(ctx, KindSound, alpha.SetSound(false), "test"); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}
	if *dials != 1 {
		t.Errorf("dials = %d, want 1", *dials)
	}
	if len(tr.writes) != 3 {
		t.Errorf("writes = %d, want 3", len(tr.writes))
	}
}

func TestClientClockSync(t *testing.T) {
	c, tr, _ := newTestClient(Config{ID: "lobby", SyncClock: true})
	ctx := context.Background()

	if err := c.ShowMessage(ctx, NewMessage("hi"), "test"); err != nil {
		t.Fatalf("ShowMessage() error = %v", err)
	}

	wantCmds := []alpha.Command{
		alpha.SetTime(fixedNow),
		alpha.SetWeekday(0),
		alpha.SetDate(fixedNow),
		alpha.SetTimeFormat(false),
		Encode(NewMessage("hi")),
	}
	if len(tr.writes) != len(wantCmds) {
		t.Fatalf("writes = %d, want %d", len(tr.writes), len(wantCmds))
	}
	for i, cmd := range wantCmds {
		want := alpha.FrameTo(cmd, alpha.SignTypeAll, alpha.AddressBroadcast)
		if !bytes.Equal(tr.writes[i], want) {
			t.Errorf("write %d = %q, want %q", i, tr.writes[i], want)
		}
	}

	// Synced once per clock state.
	if err := c.ShowMessage(ctx, NewMessage("again"), "test"); err != nil {
		t.Fatalf("ShowMessage() error = %v", err)
	}
	if len(tr.writes) != len(wantCmds)+1 {
		t.Errorf("writes after second message = %d, want %d", len(tr.writes), len(wantCmds)+1)
	}
}

func TestClientResetMarksClockStale(t *testing.T) {
	c, tr, _ := newTestClient(Config{ID: "lobby", SyncClock: true})
	ctx := context.Background()

	if err := c.Reset(ctx, "test"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	// 4 sync packets + reset.
	if len(tr.writes) != 5 {
		t.Fatalf("writes = %d, want 5", len(tr.writes))
	}

	if err := c.Execute(ctx, KindSound, alpha.SetSound(true), "test"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	// Resync (4) + sound.
	if len(tr.writes) != 10 {
		t.Errorf("writes = %d, want 10", len(tr.writes))
	}
}

func TestClientSendFailureDropsTransport(t *testing.T) {
	rec := &fakeRecorder{}
	c, tr, dials := newTestClient(Config{ID: "lobby"}, WithRecorder(rec))
	ctx := context.Background()

	tr.writeErr = transport.ErrWriteFailed
	err := c.Execute(ctx, KindSound, alpha.SetSound(true), "mqtt")
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("Execute() error = %v, want ErrSendFailed", err)
	}
	if !errors.Is(err, transport.ErrWriteFailed) {
		t.Errorf("Execute() error = %v, want wrapped ErrWriteFailed", err)
	}
	if tr.closed != 1 {
		t.Errorf("closed = %d, want 1", tr.closed)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after failure")
	}

	tr.writeErr = nil
	if err := c.Execute(ctx, KindSound, alpha.SetSound(true), "mqtt"); err != nil {
		t.Fatalf("Execute() after failure error = %v", err)
	}
	if *dials != 2 {
		t.Errorf("dials = %d, want 2", *dials)
	}

	if len(rec.entries) != 2 {
		t.Fatalf("recorded %d entries, want 2", len(rec.entries))
	}
	if rec.entries[0].Status != history.StatusFailed || rec.entries[0].Error == "" {
		t.Errorf("first entry = %+v, want failed with error", rec.entries[0])
	}
	if rec.entries[1].Status != history.StatusSent || rec.entries[1].Source != "mqtt" || rec.entries[1].Kind != KindSound {
		t.Errorf("second entry = %+v", rec.entries[1])
	}
	if got := c.Stats(); got.Failed != 1 || got.Sent != 1 || got.LastError == "" {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestClientDialFailure(t *testing.T) {
	dial := func(context.Context, string, transport.Options) (transport.Transport, error) {
		return nil, transport.ErrConnectionFailed
	}
	c := NewClient(Config{ID: "lobby"}, WithDialer(dial))

	err := c.Execute(context.Background(), KindSound, alpha.SetSound(true), "test")
	if !errors.Is(err, ErrSendFailed) || !errors.Is(err, transport.ErrConnectionFailed) {
		t.Errorf("Execute() error = %v, want ErrSendFailed wrapping ErrConnectionFailed", err)
	}
}

func TestClientQuery(t *testing.T) {
	c, tr, _ := newTestClient(Config{ID: "lobby"})
	tr.reply = alpha.FrameTo(alpha.Command("E#00FF"), '0', "00")

	pkt, err := c.Query(context.Background(), KindReadMemory, alpha.ReadMemorySize(), "test")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if string(pkt.Payload) != "E#00FF" {
		t.Errorf("Payload = %q, want %q", pkt.Payload, "E#00FF")
	}
}

func TestClientQueryReplyInPieces(t *testing.T) {
	full := alpha.FrameTo(alpha.Command("E#00FF"), '0', "00")

	tests := []struct {
		name   string
		chunks [][]byte
	}{
		{"two pieces", [][]byte{full[:9], full[9:]}},
		{"byte at a time", func() [][]byte {
			var out [][]byte
			for i := range full {
				out = append(out, full[i:i+1])
			}
			return out
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, tr, _ := newTestClient(Config{ID: "lobby"})
			tr.chunks = tt.chunks

			pkt, err := c.Query(context.Background(), KindReadMemory, alpha.ReadMemorySize(), "test")
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if string(pkt.Payload) != "E#00FF" {
				t.Errorf("Payload = %q, want %q", pkt.Payload, "E#00FF")
			}
			if tr.reads != len(tt.chunks) {
				t.Errorf("reads = %d, want %d (stop at EOT)", tr.reads, len(tt.chunks))
			}
		})
	}
}

func TestClientQueryMalformedReply(t *testing.T) {
	c, tr, _ := newTestClient(Config{ID: "lobby"})
	tr.reply = []byte("garbage")

	_, err := c.Query(context.Background(), KindReadErrors, alpha.ReadErrorRegister(), "test")
	if !errors.Is(err, ErrBadReply) {
		t.Errorf("Query() error = %v, want ErrBadReply", err)
	}
}

func TestClientQueryReadFailureDropsTransport(t *testing.T) {
	c, tr, _ := newTestClient(Config{ID: "lobby"})
	tr.readErr = transport.ErrReadFailed

	_, err := c.Query(context.Background(), KindReadErrors, alpha.ReadErrorRegister(), "test")
	if !errors.Is(err, ErrSendFailed) || !errors.Is(err, transport.ErrReadFailed) {
		t.Errorf("Query() error = %v, want ErrSendFailed wrapping ErrReadFailed", err)
	}
	if tr.closed != 1 {
		t.Errorf("closed = %d, want 1", tr.closed)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after read failure")
	}
}

func TestClientQueryNoReply(t *testing.T) {
	c, _, _ := newTestClient(Config{ID: "lobby"})

	_, err := c.Query(context.Background(), KindReadErrors, alpha.ReadErrorRegister(), "test")
	if !errors.Is(err, ErrNoReply) {
		t.Errorf("Query() error = %v, want ErrNoReply", err)
	}
}

func TestClientObserver(t *testing.T) {
	var events []Event
	c, _, _ := newTestClient(Config{ID: "lobby"}, WithObserver(ObserverFunc(func(ev Event) {
		events = append(events, ev)
	})))

	if err := c.Execute(context.Background(), KindTone, alpha.GenerateTone(alpha.ToneBeep, 0, 0, 0), "api"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.SignID != "lobby" || ev.Kind != KindTone || ev.Source != "api" || ev.Err != nil || ev.Bytes == 0 {
		t.Errorf("event = %+v", ev)
	}
	if !ev.Connected {
		t.Error("event.Connected = false after a successful send")
	}
}

// Observers run under the client lock, so they must be able to learn the
// connection state from the event alone.
func TestClientObserverSeesDroppedTransport(t *testing.T) {
	var last Event
	c, tr, _ := newTestClient(Config{ID: "lobby"}, WithObserver(ObserverFunc(func(ev Event) {
		last = ev
	})))

	tr.writeErr = transport.ErrWriteFailed
	_ = c.Execute(context.Background(), KindSound, alpha.SetSound(true), "api")
	if last.Err == nil || last.Connected {
		t.Errorf("event = %+v, want failure with Connected=false", last)
	}
}

func TestClientClosed(t *testing.T) {
	c, tr, _ := newTestClient(Config{ID: "lobby"})
	ctx := context.Background()

	if err := c.Execute(ctx, KindSound, alpha.SetSound(true), "test"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if tr.closed != 1 {
		t.Errorf("closed = %d, want 1", tr.closed)
	}
	if err := c.Execute(ctx, KindSound, alpha.SetSound(true), "test"); !errors.Is(err, ErrClosed) {
		t.Errorf("Execute() after Close error = %v, want ErrClosed", err)
	}
}

func TestClientShowMessageEmpty(t *testing.T) {
	c, _, _ := newTestClient(Config{ID: "lobby"})
	if err := c.ShowMessage(context.Background(), Message{}, "test"); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("ShowMessage() error = %v, want ErrEmptyMessage", err)
	}
}

func TestClientCancelledContext(t *testing.T) {
	c, tr, _ := newTestClient(Config{ID: "lobby"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Execute(ctx, KindSound, alpha.SetSound(true), "test"); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if len(tr.writes) != 0 {
		t.Errorf("writes = %d, want 0", len(tr.writes))
	}
}

func TestClientSyncClockExplicit(t *testing.T) {
	c, tr, _ := newTestClient(Config{ID: "lobby"})
	at := time.Date(2024, 1, 1, 13, 45, 0, 0, time.UTC)

	if err := c.SyncClock(context.Background(), at, "test"); err != nil {
		t.Fatalf("SyncClock() error = %v", err)
	}
	if len(tr.writes) != 4 {
		t.Fatalf("writes = %d, want 4", len(tr.writes))
	}
	want := alpha.FrameTo(alpha.SetTime(at), alpha.SignTypeAll, alpha.AddressBroadcast)
	if !bytes.Equal(tr.writes[0], want) {
		t.Errorf("first write = %q, want %q", tr.writes[0], want)
	}
}

// With automatic sync enabled, an explicit sync on a fresh connection
// must send the caller's time once, not the client clock first.
func TestClientSyncClockExplicitOnFreshConnection(t *testing.T) {
	c, tr, _ := newTestClient(Config{ID: "lobby", SyncClock: true})
	at := time.Date(2024, 1, 1, 13, 45, 0, 0, time.UTC)

	if err := c.SyncClock(context.Background(), at, "test"); err != nil {
		t.Fatalf("SyncClock() error = %v", err)
	}
	if len(tr.writes) != 4 {
		t.Fatalf("writes = %d, want 4", len(tr.writes))
	}
	wantCmds := []alpha.Command{
		alpha.SetTime(at),
		alpha.SetWeekday(alpha.Weekday(at)),
		alpha.SetDate(at),
		alpha.SetTimeFormat(false),
	}
	for i, cmd := range wantCmds {
		want := alpha.FrameTo(cmd, alpha.SignTypeAll, alpha.AddressBroadcast)
		if !bytes.Equal(tr.writes[i], want) {
			t.Errorf("write %d = %q, want %q", i, tr.writes[i], want)
		}
	}

	// The next command needs no further sync.
	if err := c.Execute(context.Background(), KindSound, alpha.SetSound(true), "test"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(tr.writes) != 5 {
		t.Errorf("writes = %d, want 5", len(tr.writes))
	}
}
