package alphasign

import (
	"time"

	"github.com/nerrad567/alphasign-core/internal/sign"
)

// CommandMessage asks the bridge to change something on the sign.
// Topic: alphasign/command/{sign}
type CommandMessage struct {
	// ID correlates the command with its ack. Generated when empty.
	ID string `json:"id"`

	Timestamp time.Time `json:"timestamp"`

	// Command is a sign action name such as "show_message" or "tone".
	Command string `json:"command"`

	// Parameters uses the same names as the HTTP query interface, e.g.
	// {"msg": "Open", "color": "green", "beep": 2}.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Source is recorded in the command history. Defaults to "mqtt".
	Source string `json:"source,omitempty"`
}

// AckStatus is the outcome of a command.
type AckStatus string

// Ack statuses.
const (
	AckAccepted AckStatus = "accepted"
	AckFailed   AckStatus = "failed"
)

// AckMessage reports the outcome of a command.
// Topic: alphasign/ack/{sign}
type AckMessage struct {
	CommandID string         `json:"command_id"`
	Timestamp time.Time      `json:"timestamp"`
	SignID    string         `json:"sign_id"`
	Command   string         `json:"command"`
	Status    AckStatus      `json:"status"`
	Detail    map[string]any `json:"detail,omitempty"`
	Error     *AckError      `json:"error,omitempty"`
}

// AckError describes a failed command.
type AckError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes carried in acks and responses.
const (
	ErrCodeInvalidMessage    = "INVALID_MESSAGE"
	ErrCodeInvalidCommand    = "INVALID_COMMAND"
	ErrCodeInvalidParameters = "INVALID_PARAMETERS"
	ErrCodeSignUnreachable   = "SIGN_UNREACHABLE"
	ErrCodeNoReply           = "NO_REPLY"
	ErrCodeBadReply          = "BAD_REPLY"
	ErrCodeBridgeError       = "BRIDGE_ERROR"
)

// RequestMessage asks the bridge for information.
// Topic: alphasign/request/{sign}
type RequestMessage struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`

	// Action is "read_errors", "read_memory_size" or "status".
	Action string `json:"action"`

	Parameters map[string]any `json:"parameters,omitempty"`
}

// ResponseMessage answers a request.
// Topic: alphasign/response/{sign}/{request_id}
type ResponseMessage struct {
	RequestID string         `json:"request_id"`
	Timestamp time.Time      `json:"timestamp"`
	Success   bool           `json:"success"`
	Data      map[string]any `json:"data,omitempty"`
	Error     *AckError      `json:"error,omitempty"`
}

// HealthStatus is the bridge's overall state.
type HealthStatus string

// Health statuses.
const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthStarting HealthStatus = "starting"
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is the retained health snapshot.
// Topic: alphasign/health/{sign}
type HealthMessage struct {
	SignID        string            `json:"sign_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Status        HealthStatus      `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Connection    *ConnectionStatus `json:"connection,omitempty"`
	Statistics    *Statistics       `json:"statistics,omitempty"`
	Reason        string            `json:"reason,omitempty"`
}

// ConnectionStatus describes the sign link. Status is "connected" or
// "idle"; the link opens on the first command.
type ConnectionStatus struct {
	Status string `json:"status"`
	Target string `json:"target"`
}

// Statistics are cumulative since start.
type Statistics struct {
	CommandsReceived uint64 `json:"commands_received"`
	RequestsReceived uint64 `json:"requests_received"`
	Sent             uint64 `json:"sent"`
	Failed           uint64 `json:"failed"`
	BytesSent        uint64 `json:"bytes_sent"`
	LastError        string `json:"last_error,omitempty"`
}

// EventMessage reports one command attempt, whichever surface issued it.
// Topic: alphasign/event/{sign}
type EventMessage struct {
	SignID     string    `json:"sign_id"`
	Timestamp  time.Time `json:"timestamp"`
	Kind       string    `json:"kind"`
	Source     string    `json:"source"`
	Success    bool      `json:"success"`
	Bytes      int       `json:"bytes"`
	DurationMS int64     `json:"duration_ms"`
	Connected  bool      `json:"connected"`
	Error      string    `json:"error,omitempty"`
}

// NewEventMessage converts a sign client event.
func NewEventMessage(ev sign.Event) EventMessage {
	msg := EventMessage{
		SignID:     ev.SignID,
		Timestamp:  ev.Time.UTC(),
		Kind:       ev.Kind,
		Source:     ev.Source,
		Success:    ev.Err == nil,
		Bytes:      ev.Bytes,
		DurationMS: ev.Elapsed.Milliseconds(),
		Connected:  ev.Connected,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	return msg
}

// NewAckMessage builds a success ack.
func NewAckMessage(signID string, cmd CommandMessage, detail map[string]any) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		SignID:    signID,
		Command:   cmd.Command,
		Status:    AckAccepted,
		Detail:    detail,
	}
}

// NewAckError builds a failure ack.
func NewAckError(signID string, cmd CommandMessage, code, message string) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		SignID:    signID,
		Command:   cmd.Command,
		Status:    AckFailed,
		Error:     &AckError{Code: code, Message: message},
	}
}

// NewHealthMessage builds a snapshot from the sign client's counters.
func NewHealthMessage(signID, version, target string, status HealthStatus, stats sign.Stats, commands, requests uint64, started time.Time) HealthMessage {
	conn := "idle"
	if stats.Connected {
		conn = "connected"
	}
	return HealthMessage{
		SignID:        signID,
		Timestamp:     time.Now().UTC(),
		Status:        status,
		Version:       version,
		UptimeSeconds: int64(time.Since(started).Seconds()),
		Connection:    &ConnectionStatus{Status: conn, Target: target},
		Statistics: &Statistics{
			CommandsReceived: commands,
			RequestsReceived: requests,
			Sent:             stats.Sent,
			Failed:           stats.Failed,
			BytesSent:        stats.BytesSent,
			LastError:        stats.LastError,
		},
	}
}
