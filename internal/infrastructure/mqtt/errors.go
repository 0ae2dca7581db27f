package mqtt

import "errors"

// Errors returned by Client. Broker failures wrap the paho error, so
// errors.Is works on both.
var (
	ErrNotConnected      = errors.New("mqtt: not connected")
	ErrConnectionFailed  = errors.New("mqtt: connection failed")
	ErrPublishFailed     = errors.New("mqtt: publish failed")
	ErrSubscribeFailed   = errors.New("mqtt: subscribe failed")
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS rejects anything above QoS 2.
	ErrInvalidQoS = errors.New("mqtt: qos must be 0, 1 or 2")

	ErrInvalidTopic    = errors.New("mqtt: empty topic")
	ErrPayloadTooLarge = errors.New("mqtt: payload too large")
)
