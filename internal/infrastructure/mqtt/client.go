package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/alphasign-core/internal/infrastructure/config"
)

// Client is the service's broker connection. Subscriptions survive
// reconnects, and the retained alphasign/system/status topic says
// whether the service is up, with a broker-held will covering crashes.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	paho pahomqtt.Client
	cfg  config.MQTTConfig

	mu        sync.RWMutex
	connected bool
	subs      map[string]subscription

	// attempts counts reconnect tries since the last successful connect.
	attempts int

	onConnect    func()
	onDisconnect func(err error)
	logger       Logger
}

// Logger receives handler errors, recovered panics and reconnect notices.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler handles one received message. paho calls it on its own
// goroutine. A returned error is logged and does not affect the ack.
type MessageHandler func(topic string, payload []byte) error

// Connect dials the broker and waits up to ten seconds for the first
// connection. After that paho reconnects on its own; with
// reconnect.max_attempts set, it gives up after that many tries.
//
// Parameters:
//   - cfg: the mqtt config section
//
// Returns:
//   - *Client: connected client; call Close to publish the offline status
//   - error: ErrConnectionFailed wrapping the broker error
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := newClient(cfg)

	opts := buildClientOptions(cfg)
	setWill(opts, cfg.Broker.ClientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.connectedHandler() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.lostHandler(err) })
	opts.SetReconnectingHandler(func(pahomqtt.Client, *pahomqtt.ClientOptions) { c.reconnectingHandler() })

	c.paho = pahomqtt.NewClient(opts)
	if err := await(c.paho.Connect(), connectTimeout, ErrConnectionFailed); err != nil {
		// Stop the background retry started by SetConnectRetry.
		c.paho.Disconnect(0)
		return nil, err
	}

	// The on-connect handler runs asynchronously and may not have fired yet.
	c.setConnected(true)
	return c, nil
}

func newClient(cfg config.MQTTConfig) *Client {
	return &Client{cfg: cfg, subs: make(map[string]subscription)}
}

// await waits up to timeout for token and wraps any failure in sentinel.
func await(token pahomqtt.Token, timeout time.Duration, sentinel error) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: no ack after %v", sentinel, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return nil
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func (c *Client) qos() byte {
	return byte(c.cfg.QoS) //nolint:gosec // validated 0..2 by config
}

// connectedHandler replays subscriptions and re-announces the service.
func (c *Client) connectedHandler() {
	c.mu.Lock()
	c.connected = true
	c.attempts = 0
	callback := c.onConnect
	c.mu.Unlock()

	c.restoreSubscriptions()
	c.paho.Publish(Topics{}.SystemStatus(), c.qos(), true, statusPayload(statusOnline, c.cfg.Broker.ClientID, ""))

	if callback != nil {
		callback()
	}
}

func (c *Client) lostHandler(err error) {
	c.mu.Lock()
	c.connected = false
	callback := c.onDisconnect
	c.mu.Unlock()

	if callback != nil {
		callback(err)
	}
}

// reconnectingHandler counts attempts and stops paho once
// reconnect.max_attempts is exceeded. Zero retries forever.
func (c *Client) reconnectingHandler() {
	c.mu.Lock()
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	limit := c.cfg.Reconnect.MaxAttempts
	if limit > 0 && attempt > limit {
		c.warn("MQTT reconnect limit reached, giving up", "broker", c.cfg.Broker.Host, "max_attempts", limit)
		// Disconnect waits on paho's reconnect goroutine, which is ours.
		go c.paho.Disconnect(0)
		return
	}
	c.warn("MQTT reconnecting", "broker", c.cfg.Broker.Host, "attempt", attempt)
}

// Close publishes a graceful offline status, then disconnects.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}

	if c.IsConnected() {
		payload := statusPayload(statusOffline, c.cfg.Broker.ClientID, reasonShutdown)
		//nolint:errcheck // best effort during shutdown
		await(c.paho.Publish(Topics{}.SystemStatus(), c.qos(), true, payload), ackTimeout, ErrPublishFailed)
	}

	c.paho.Disconnect(quiesceMillis)
	c.setConnected(false)
	return nil
}

// HealthCheck reports ErrNotConnected while the broker link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.paho != nil && c.paho.IsConnected()
}

// SetOnConnect sets a callback run on connect and on every reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.mu.Lock()
	c.onConnect = callback
	c.mu.Unlock()
}

// SetOnDisconnect sets a callback run when the connection drops.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.mu.Lock()
	c.onDisconnect = callback
	c.mu.Unlock()
}

// SetLogger sets the logger. Without one, handler errors are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

func (c *Client) warn(msg string, args ...any) {
	if logger := c.getLogger(); logger != nil {
		logger.Warn(msg, args...)
	}
}
