package sign

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/alphasign-core/internal/history"
	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
	"github.com/nerrad567/alphasign-core/internal/transport"
)

// Command kinds recorded in history and metrics.
const (
	KindMessage        = "show_message"
	KindSetTime        = "set_time"
	KindSetDate        = "set_date"
	KindSound          = "sound"
	KindReset          = "reset"
	KindConfigMemory   = "configure_memory"
	KindReadMemory     = "read_memory_size"
	KindReadErrors     = "read_errors"
	KindTone           = "tone"
	KindRunTime        = "run_time"
	KindDisplayXY      = "display_xy"
	KindDimmingReg     = "dimming_register"
	KindDimmingTime    = "dimming_time"
	KindClearText      = "clear_text"
	KindWriteString    = "write_string"
	KindSyncClock      = "sync_clock"
	KindRunSequence    = "run_sequence"
	KindSerialAddress  = "serial_address"
	defaultReplyLength = 256
)

// Config identifies a sign and how to reach it.
type Config struct {
	ID        string
	Target    string
	SignType  byte
	Address   string
	Transport transport.Options

	// SyncClock sends time, weekday, date and 24-hour format before the
	// first command on every fresh clock state.
	SyncClock bool
}

// Dialer opens a transport to target.
type Dialer func(ctx context.Context, target string, opts transport.Options) (transport.Transport, error)

// Recorder persists command history.
type Recorder interface {
	Create(ctx context.Context, e *history.Entry) error
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces transport.Open.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dial = d }
}

// WithRecorder stores every command attempt.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock sets the time source used for clock sync.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observers = append(c.observers, o) }
}

// Stats is a snapshot of client counters.
type Stats struct {
	Sent      uint64    `json:"sent"`
	Failed    uint64    `json:"failed"`
	BytesSent uint64    `json:"bytes_sent"`
	Connected bool      `json:"connected"`
	LastSent  time.Time `json:"last_sent,omitzero"`
	LastError string    `json:"last_error,omitempty"`
}

// Client sends commands to one sign.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	cfg      Config
	dial     Dialer
	send     func(w transport.Writer, data []byte) error
	recorder Recorder
	logger   Logger
	now      func() time.Time

	mu          sync.Mutex
	tr          transport.Transport
	clockSynced bool
	closed      bool
	observers   []Observer
	lastSent    time.Time
	lastErr     string

	sent      atomic.Uint64
	failed    atomic.Uint64
	bytesSent atomic.Uint64
}

// NewClient creates a client. No connection is made until the first
// command.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.SignType == 0 {
		cfg.SignType = alpha.SignTypeAll
	}
	if cfg.Address == "" {
		cfg.Address = alpha.AddressBroadcast
	}

	c := &Client{
		cfg:    cfg,
		dial:   transport.Open,
		send:   transport.Send,
		logger: noopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the sign identifier.
func (c *Client) ID() string { return c.cfg.ID }

// Target returns the configured transport target.
func (c *Client) Target() string { return c.cfg.Target }

// AddObserver registers o for future command events.
func (c *Client) AddObserver(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// IsConnected reports whether a transport is currently open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr != nil
}

// Stats returns a snapshot of the client counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Sent:      c.sent.Load(),
		Failed:    c.failed.Load(),
		BytesSent: c.bytesSent.Load(),
		Connected: c.tr != nil,
		LastSent:  c.lastSent,
		LastError: c.lastErr,
	}
}

// MarkClockStale forces a clock sync before the next command.
func (c *Client) MarkClockStale() {
	c.mu.Lock()
	c.clockSynced = false
	c.mu.Unlock()
}

// Close releases the transport. Later commands return ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.dropTransportLocked()
}

func (c *Client) dropTransportLocked() error {
	if c.tr == nil {
		return nil
	}
	err := c.tr.Close()
	c.tr = nil
	return err
}

// openLocked dials the transport if it is not open. c.mu must be held.
func (c *Client) openLocked(ctx context.Context) error {
	if c.closed {
		return ErrClosed
	}
	if c.tr != nil {
		return nil
	}
	tr, err := c.dial(ctx, c.cfg.Target, c.cfg.Transport)
	if err != nil {
		return err
	}
	c.tr = tr
	c.logger.Info("sign connected", "sign", c.cfg.ID, "target", c.cfg.Target, "transport", tr.Kind().String())
	return nil
}

// ensureTransportLocked opens the transport if needed and performs the
// pending clock sync. c.mu must be held.
func (c *Client) ensureTransportLocked(ctx context.Context) error {
	if err := c.openLocked(ctx); err != nil {
		return err
	}
	if c.cfg.SyncClock && !c.clockSynced {
		if err := c.syncClockLocked(c.now()); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) syncClockLocked(now time.Time) error {
	cmds := []alpha.Command{
		alpha.SetTime(now),
		alpha.SetWeekday(alpha.Weekday(now)),
		alpha.SetDate(now),
		alpha.SetTimeFormat(false),
	}
	for _, cmd := range cmds {
		if _, err := c.writeLocked(cmd); err != nil {
			return fmt.Errorf("syncing clock: %w", err)
		}
	}
	c.clockSynced = true
	c.logger.Debug("sign clock synchronised", "sign", c.cfg.ID, "time", now.Format("15:04"))
	return nil
}

// writeLocked frames cmd and sends it. On failure the transport is
// dropped so the next command reconnects.
func (c *Client) writeLocked(cmd alpha.Command) (int, error) {
	packet := alpha.FrameTo(cmd, c.cfg.SignType, c.cfg.Address)
	if err := c.send(c.tr, packet); err != nil {
		if closeErr := c.dropTransportLocked(); closeErr != nil {
			c.logger.Debug("closing failed transport", "sign", c.cfg.ID, "error", closeErr)
		}
		return 0, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	c.bytesSent.Add(uint64(len(packet)))
	return len(packet), nil
}

// Execute sends cmd and records the attempt under kind.
func (c *Client) Execute(ctx context.Context, kind string, cmd alpha.Command, source string) error {
	_, err := c.do(ctx, kind, cmd, source, 0)
	return err
}

// Query sends a read command and parses the sign's reply.
//
// Parameters:
//   - ctx: checked before the client lock is taken
//   - kind: recorded in history and passed to observers
//   - cmd: a read command such as alpha.ReadErrors
//   - source: who asked, e.g. "api" or "mqtt"
//
// Returns:
//   - *alpha.Packet: the decoded reply
//   - error: ErrSendFailed when the transport fails (the transport is
//     dropped and reopened next time), ErrNoReply when the sign stays
//     silent, ErrBadReply when the reply cannot be parsed
//
// Thread Safety: Serialised with every other command on the client.
func (c *Client) Query(ctx context.Context, kind string, cmd alpha.Command, source string) (*alpha.Packet, error) {
	return c.do(ctx, kind, cmd, source, defaultReplyLength)
}

func (c *Client) do(ctx context.Context, kind string, cmd alpha.Command, source string, replyLen int) (*alpha.Packet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.now()
	n, err := c.execLocked(ctx, cmd)

	var reply *alpha.Packet
	if err == nil && replyLen > 0 {
		reply, err = c.readReplyLocked(replyLen)
	}
	if err == nil && kind == KindReset {
		c.clockSynced = false
	}

	elapsed := c.now().Sub(start)
	c.finishLocked(ctx, kind, cmd, source, n, elapsed, err)
	return reply, err
}

func (c *Client) execLocked(ctx context.Context, cmd alpha.Command) (int, error) {
	if err := c.ensureTransportLocked(ctx); err != nil {
		if errors.Is(err, ErrClosed) || errors.Is(err, ErrSendFailed) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return c.writeLocked(cmd)
}

// readReplyLocked collects a reply that may arrive in pieces. It stops at
// the first EOT, when size bytes have arrived, or when a read times out
// with nothing new. A link failure drops the transport.
func (c *Client) readReplyLocked(size int) (*alpha.Packet, error) {
	if c.tr == nil {
		return nil, ErrNoReply
	}

	data := make([]byte, 0, size)
	for len(data) < size {
		chunk, err := c.tr.Read(size - len(data))
		if err != nil {
			if closeErr := c.dropTransportLocked(); closeErr != nil {
				c.logger.Debug("closing failed transport", "sign", c.cfg.ID, "error", closeErr)
			}
			return nil, fmt.Errorf("%w: %w", ErrSendFailed, err)
		}
		if len(chunk) == 0 {
			break
		}
		data = append(data, chunk...)
		if bytes.IndexByte(chunk, alpha.EOT) >= 0 {
			break
		}
	}
	if len(data) == 0 {
		return nil, ErrNoReply
	}

	pkt, err := alpha.ParsePacket(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadReply, err)
	}
	return pkt, nil
}

func (c *Client) finishLocked(ctx context.Context, kind string, cmd alpha.Command, source string, n int, elapsed time.Duration, err error) {
	now := c.now()
	entry := &history.Entry{
		SignID:     c.cfg.ID,
		Command:    string(cmd.Code()),
		Kind:       kind,
		PayloadHex: hex.EncodeToString(cmd),
		Bytes:      n,
		Source:     source,
		Status:     history.StatusSent,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  now,
	}

	if err != nil {
		c.failed.Add(1)
		c.lastErr = err.Error()
		entry.Status = history.StatusFailed
		entry.Error = err.Error()
		c.logger.Warn("sign command failed", "sign", c.cfg.ID, "kind", kind, "error", err)
	} else {
		c.sent.Add(1)
		c.lastSent = now
		c.logger.Debug("sign command sent", "sign", c.cfg.ID, "kind", kind, "bytes", n)
	}

	if c.recorder != nil {
		if recErr := c.recorder.Create(context.WithoutCancel(ctx), entry); recErr != nil {
			c.logger.Warn("recording command history", "sign", c.cfg.ID, "error", recErr)
		}
	}

	ev := Event{
		SignID:  c.cfg.ID,
		Kind:    kind,
		Source:  source,
		Bytes:   n,
		Elapsed: elapsed,
		Err:     err,
		Time:    now,

		Connected: c.tr != nil,
	}
	for _, o := range c.observers {
		o.ObserveCommand(ev)
	}
}

// ShowMessage composes m and writes it to its text file.
func (c *Client) ShowMessage(ctx context.Context, m Message, source string) error {
	if m.Text == "" {
		return ErrEmptyMessage
	}
	return c.Execute(ctx, KindMessage, Encode(m), source)
}

// SyncClock sends time, weekday, date and 24-hour format for now.
func (c *Client) SyncClock(ctx context.Context, now time.Time, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.now()
	err := c.openLocked(ctx)
	if err == nil {
		err = c.syncClockLocked(now)
	}
	if err != nil && !errors.Is(err, ErrSendFailed) && !errors.Is(err, ErrClosed) {
		err = fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	c.finishLocked(ctx, KindSyncClock, alpha.SetTime(now), source, 0, c.now().Sub(start), err)
	return err
}

// Reset soft-resets the sign. The clock is synchronised again before the
// next command.
func (c *Client) Reset(ctx context.Context, source string) error {
	return c.Execute(ctx, KindReset, alpha.SoftReset(), source)
}

// Run sends a built Action, reading the reply for read commands. It is
// the entry point shared by the HTTP API, the MQTT bridge and the CLI.
//
// Returns:
//   - *alpha.Packet: the reply for read actions, nil otherwise
//   - error: see Execute and Query
func (c *Client) Run(ctx context.Context, a Action, source string) (*alpha.Packet, error) {
	if a.Read {
		return c.Query(ctx, a.Kind, a.Command, source)
	}
	return nil, c.Execute(ctx, a.Kind, a.Command, source)
}
