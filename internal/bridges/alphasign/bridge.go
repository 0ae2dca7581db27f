package alphasign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/alphasign-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
	"github.com/nerrad567/alphasign-core/internal/sign"
)

const (
	// minTopicParts is the number of parts in alphasign/{type}/{sign}.
	minTopicParts = 3

	// commandTimeout bounds one command including fragment pauses.
	commandTimeout = 30 * time.Second

	defaultSource = "mqtt"

	// eventQueueSize bounds command events waiting for the event topic.
	eventQueueSize = 64
)

// MQTTClient is the subset of the MQTT client the bridge uses.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// SignController is the subset of *sign.Client the bridge drives.
type SignController interface {
	ID() string
	Target() string
	Run(ctx context.Context, a sign.Action, source string) (*alpha.Packet, error)
	IsConnected() bool
	Stats() sign.Stats
}

// MessageRecorder counts handled MQTT messages. *metrics.Collector
// satisfies it.
type MessageRecorder interface {
	RecordMQTT(sign, msgType, result string)
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Options configures a Bridge.
type Options struct {
	Sign    SignController
	MQTT    MQTTClient
	Version string
	QoS     byte

	// HealthInterval defaults to 30s.
	HealthInterval time.Duration

	Metrics MessageRecorder
	Logger  Logger

	// Now defaults to time.Now. Used to resolve default times and dates.
	Now func() time.Time
}

// Bridge translates MQTT commands and requests into sign actions, and
// as a sign.Observer republishes every command attempt on the event
// topic.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	sign    SignController
	mqtt    MQTTClient
	qos     byte
	metrics MessageRecorder
	now     func() time.Time
	topics  mqtt.Topics
	health  *HealthReporter

	commands atomic.Uint64
	requests atomic.Uint64

	events        chan sign.Event
	droppedEvents atomic.Uint64

	subMu      sync.Mutex
	subscribed []string

	ctx       context.Context
	ctxCancel context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// New creates a bridge. Call Start to subscribe.
func New(opts Options) (*Bridge, error) {
	if opts.Sign == nil {
		return nil, ErrMissingSign
	}
	if opts.MQTT == nil {
		return nil, ErrMissingMQTT
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		sign:      opts.Sign,
		mqtt:      opts.MQTT,
		qos:       opts.QoS,
		metrics:   opts.Metrics,
		now:       now,
		ctx:       ctx,
		ctxCancel: cancel,
		logger:    opts.Logger,
		events:    make(chan sign.Event, eventQueueSize),
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		SignID:    opts.Sign.ID(),
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTT,
		Sign:      opts.Sign,
		Counters:  b.counters,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}
	return b, nil
}

func (b *Bridge) counters() (commands, requests uint64) {
	return b.commands.Load(), b.requests.Load()
}

// Start subscribes to the sign's command and request topics and begins
// health reporting and event publishing.
//
// Parameters:
//   - ctx: ends health reporting when cancelled; Stop ends everything
//
// Returns:
//   - error: the first failed subscription, wrapped with its topic
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	signID := b.sign.ID()
	for _, topic := range []string{b.topics.SignCommand(signID), b.topics.SignRequest(signID)} {
		if err := b.mqtt.Subscribe(topic, b.qos, b.HandleMessage); err != nil {
			return fmt.Errorf("subscribe to %s: %w", topic, err)
		}
		b.subMu.Lock()
		b.subscribed = append(b.subscribed, topic)
		b.subMu.Unlock()
		b.logInfo("subscribed", "topic", topic)
	}

	b.wg.Add(1)
	go b.publishEvents()

	b.health.Start(ctx)
	b.logInfo("bridge started", "sign", signID)
	return nil
}

// Stop unsubscribes, cancels in-flight commands, waits for handlers and
// publishes a final stopping status. Safe to call more than once.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.unsubscribeAll()
		b.ctxCancel()
		b.wg.Wait()
		b.health.Stop()
		if n := b.droppedEvents.Load(); n > 0 {
			b.logWarn("command events dropped", "count", n)
		}
		b.logInfo("bridge stopped")
	})
}

func (b *Bridge) unsubscribeAll() {
	b.subMu.Lock()
	topics := b.subscribed
	b.subscribed = nil
	b.subMu.Unlock()

	if !b.mqtt.IsConnected() {
		return
	}
	for _, topic := range topics {
		if err := b.mqtt.Unsubscribe(topic); err != nil {
			b.logWarn("failed to unsubscribe", "topic", topic, "error", err)
		}
	}
}

// ObserveCommand queues ev for the event topic. The sign client calls it
// with its lock held, so it never blocks: events arriving while the queue
// is full are counted and dropped.
func (b *Bridge) ObserveCommand(ev sign.Event) {
	select {
	case b.events <- ev:
	default:
		b.droppedEvents.Add(1)
	}
}

func (b *Bridge) publishEvents() {
	defer b.wg.Done()

	topic := b.topics.SignEvent(b.sign.ID())
	for {
		select {
		case <-b.ctx.Done():
			return
		case ev := <-b.events:
			data, err := json.Marshal(NewEventMessage(ev))
			if err != nil {
				b.logError("failed to marshal event", err)
				continue
			}
			// QoS 0: events are a live feed, the history keeps the record.
			if err := b.mqtt.Publish(topic, data, 0, false); err != nil {
				b.logWarn("failed to publish event", "kind", ev.Kind, "error", err)
			}
		}
	}
}

// HandleMessage routes one MQTT message by its topic type. It is the
// subscription handler and always returns nil once the topic is valid;
// failures are reported on the ack or response topic.
func (b *Bridge) HandleMessage(topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	if len(parts) < minTopicParts {
		return fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}

	b.wg.Add(1)
	defer b.wg.Done()

	switch parts[1] {
	case "command":
		b.handleCommand(payload)
	case "request":
		b.handleRequest(payload)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}
	return nil
}

func (b *Bridge) handleCommand(payload []byte) {
	b.commands.Add(1)
	signID := b.sign.ID()

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.record("command", "invalid")
		b.publishAck(NewAckError(signID, cmd, ErrCodeInvalidMessage, err.Error()))
		return
	}
	if cmd.ID == "" {
		cmd.ID = "cmd-" + uuid.NewString()[:8]
	}
	if cmd.Source == "" {
		cmd.Source = defaultSource
	}

	b.logInfo("received command", "command_id", cmd.ID, "command", cmd.Command)

	action, err := sign.Build(cmd.Command, toParams(cmd.Parameters), b.now())
	if err != nil {
		code := ErrCodeInvalidParameters
		if !isKnownAction(cmd.Command) {
			code = ErrCodeInvalidCommand
		}
		b.record("command", "invalid")
		b.publishAck(NewAckError(signID, cmd, code, err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	reply, err := b.sign.Run(ctx, action, cmd.Source)
	if err != nil {
		b.record("command", "failed")
		b.publishAck(NewAckError(signID, cmd, errorCode(err), err.Error()))
		return
	}

	detail := action.Detail
	if reply != nil {
		detail = action.Result(reply)
	}
	b.record("command", "ok")
	b.publishAck(NewAckMessage(signID, cmd, detail))
}

func (b *Bridge) handleRequest(payload []byte) {
	b.requests.Add(1)

	var req RequestMessage
	if err := json.Unmarshal(payload, &req); err != nil {
		b.record("request", "invalid")
		b.logError("failed to parse request", err)
		return
	}
	if req.RequestID == "" {
		req.RequestID = "req-" + uuid.NewString()[:8]
	}

	b.logInfo("received request", "request_id", req.RequestID, "action", req.Action)

	resp := b.answer(req)
	if resp.Success {
		b.record("request", "ok")
	} else {
		b.record("request", "failed")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		b.logError("failed to marshal response", err)
		return
	}
	topic := b.topics.SignResponse(b.sign.ID(), req.RequestID)
	if err := b.mqtt.Publish(topic, data, b.qos, false); err != nil {
		b.logError("failed to publish response", err)
	}
}

func (b *Bridge) answer(req RequestMessage) ResponseMessage {
	resp := ResponseMessage{RequestID: req.RequestID, Timestamp: time.Now().UTC()}

	switch req.Action {
	case "status":
		resp.Success = true
		resp.Data = map[string]any{
			"sign_id":   b.sign.ID(),
			"target":    b.sign.Target(),
			"connected": b.sign.IsConnected(),
			"stats":     b.sign.Stats(),
		}
		return resp
	case sign.KindReadErrors, sign.KindReadMemory:
	default:
		resp.Error = &AckError{Code: ErrCodeInvalidCommand, Message: fmt.Sprintf("%v: %s", ErrInvalidAction, req.Action)}
		return resp
	}

	action, err := sign.Build(req.Action, toParams(req.Parameters), b.now())
	if err != nil {
		resp.Error = &AckError{Code: ErrCodeInvalidParameters, Message: err.Error()}
		return resp
	}

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	reply, err := b.sign.Run(ctx, action, defaultSource)
	if err != nil {
		resp.Error = &AckError{Code: errorCode(err), Message: err.Error()}
		return resp
	}

	resp.Success = true
	resp.Data = action.Result(reply)
	return resp
}

func (b *Bridge) publishAck(ack AckMessage) {
	data, err := json.Marshal(ack)
	if err != nil {
		b.logError("failed to marshal ack", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.SignAck(b.sign.ID()), data, b.qos, false); err != nil {
		b.logError("failed to publish ack", err)
	}
	if ack.Error != nil {
		b.logWarn("command failed", "command_id", ack.CommandID, "code", ack.Error.Code, "message", ack.Error.Message)
	}
}

func (b *Bridge) record(msgType, result string) {
	if b.metrics != nil {
		b.metrics.RecordMQTT(b.sign.ID(), msgType, result)
	}
}

func isKnownAction(name string) bool {
	for _, n := range sign.ActionNames() {
		if n == name {
			return true
		}
	}
	return false
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, sign.ErrNoReply):
		return ErrCodeNoReply
	case errors.Is(err, sign.ErrBadReply):
		return ErrCodeBadReply
	case errors.Is(err, sign.ErrSendFailed):
		return ErrCodeSignUnreachable
	default:
		return ErrCodeBridgeError
	}
}

// SetLogger sets the logger for the bridge and its health reporter.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
	b.health.SetLogger(logger)
}

func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

func (b *Bridge) logError(msg string, err error) {
	if logger := b.getLogger(); logger != nil {
		logger.Error(msg, "error", err)
	}
}
