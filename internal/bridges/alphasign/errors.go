package alphasign

import "errors"

// Bridge errors.
var (
	ErrMissingSign   = errors.New("alphasign bridge: sign controller is required")
	ErrMissingMQTT   = errors.New("alphasign bridge: MQTT client is required")
	ErrInvalidTopic  = errors.New("alphasign bridge: invalid topic")
	ErrInvalidAction = errors.New("alphasign bridge: unknown action")
)
