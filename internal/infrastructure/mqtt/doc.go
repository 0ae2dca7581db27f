// Package mqtt connects the service to an MQTT broker.
//
// The client wraps paho.mqtt.golang with auto-reconnect, subscription
// replay, a retained online/offline status on alphasign/system/status
// (with a matching last will), and input validation on publish and
// subscribe. Topics builds the per-sign topic names used by the sign
// bridge:
//
//	alphasign/command/{sign}              commands in
//	alphasign/request/{sign}              read requests in
//	alphasign/ack/{sign}                  command acknowledgements out
//	alphasign/response/{sign}/{request}   request answers out
//	alphasign/health/{sign}               retained health out
//	alphasign/event/{sign}                one event per command attempt out
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.SignCommand("lobby"), 1, handle)
//
// Use TLS (cfg.Broker.TLS) whenever the broker is not on localhost.
package mqtt
