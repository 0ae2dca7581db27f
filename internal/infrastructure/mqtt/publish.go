package mqtt

import "fmt"

// Publish sends payload to topic and waits for the broker ack.
//
// Retain health and status topics, never acks, responses or events:
//
//	err := client.Publish(mqtt.Topics{}.SignAck("lobby"), ackJSON, 1, false)
//
// Parameters:
//   - topic: full topic name, no wildcards
//   - payload: at most 1 MiB
//   - qos: 0, 1 or 2
//   - retained: whether the broker keeps the message for new subscribers
//
// Returns:
//   - error: ErrInvalidTopic, ErrInvalidQoS, ErrPayloadTooLarge or
//     ErrNotConnected before sending; ErrPublishFailed when the broker
//     does not ack in time
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := validate(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %w: %d bytes", ErrPublishFailed, ErrPayloadTooLarge, len(payload))
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return await(c.paho.Publish(topic, qos, retained, payload), ackTimeout, ErrPublishFailed)
}

func validate(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return fmt.Errorf("%w: got %d", ErrInvalidQoS, qos)
	}
	return nil
}
