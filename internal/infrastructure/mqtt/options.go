package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"net"
	"net/url"
	"strconv"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/alphasign-core/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second

	// ackTimeout bounds the wait for a publish, subscribe or unsubscribe
	// acknowledgement.
	ackTimeout = 5 * time.Second

	quiesceMillis = 1000
	keepAlive     = 60 * time.Second
	maxQoS        = 2
	willQoS       = 1

	// maxPayloadSize caps outgoing payloads at 1 MiB.
	maxPayloadSize = 1 << 20

	tlsMinVersion = tls.VersionTLS12
)

// Service status values on alphasign/system/status.
const (
	statusOnline  = "online"
	statusOffline = "offline"

	reasonShutdown = "graceful_shutdown"
	reasonLost     = "unexpected_disconnect"
)

// brokerURL returns tcp://host:port, or ssl://host:port with TLS.
func brokerURL(cfg config.MQTTConfig) string {
	u := url.URL{
		Scheme: "tcp",
		Host:   net.JoinHostPort(cfg.Broker.Host, strconv.Itoa(cfg.Broker.Port)),
	}
	if cfg.Broker.TLS {
		u.Scheme = "ssl"
	}
	return u.String()
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// buildClientOptions maps the mqtt config section onto paho: a clean
// session, retrying reconnects between the configured delays, and
// TLS 1.2 or later when enabled. Handlers are attached by Connect.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL(cfg)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(seconds(cfg.Reconnect.InitialDelay)).
		SetMaxReconnectInterval(seconds(cfg.Reconnect.MaxDelay)).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username).SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}
	return opts
}

// setWill leaves a retained offline status with the broker, published
// if the service drops without calling Close.
func setWill(opts *pahomqtt.ClientOptions, clientID string) {
	opts.SetBinaryWill(Topics{}.SystemStatus(), statusPayload(statusOffline, clientID, reasonLost), willQoS, true)
}

// serviceStatus is the retained payload on alphasign/system/status.
type serviceStatus struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func statusPayload(status, clientID, reason string) []byte {
	//nolint:errchkjson // strings only
	b, _ := json.Marshal(serviceStatus{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return b
}
