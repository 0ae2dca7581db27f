package mqtt

import "strings"

// TopicRoot prefixes every topic the service uses.
const TopicRoot = "alphasign"

// Topics builds alphasign MQTT topics. Per-sign topics follow
// alphasign/{category}/{sign_id}.
//
//	mqtt.Topics{}.SignCommand("lobby") // alphasign/command/lobby
type Topics struct{}

func topic(parts ...string) string {
	return TopicRoot + "/" + strings.Join(parts, "/")
}

// SignCommand is where clients send commands for a sign.
func (Topics) SignCommand(signID string) string { return topic("command", signID) }

// SignRequest is where clients send read requests for a sign.
func (Topics) SignRequest(signID string) string { return topic("request", signID) }

// SignAck carries command acknowledgements.
func (Topics) SignAck(signID string) string { return topic("ack", signID) }

// SignResponse carries the answer to one request, e.g.
// alphasign/response/lobby/req-1a2b3c4d.
func (Topics) SignResponse(signID, requestID string) string {
	return topic("response", signID, requestID)
}

// SignHealth carries the retained health snapshot of a sign.
func (Topics) SignHealth(signID string) string { return topic("health", signID) }

// SignEvent carries one message per command attempt, whatever surface
// issued it.
func (Topics) SignEvent(signID string) string { return topic("event", signID) }

// SystemStatus is the retained service online/offline topic, also the will.
func (Topics) SystemStatus() string { return topic("system", "status") }
