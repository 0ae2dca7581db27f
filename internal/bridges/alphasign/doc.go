// Package alphasign bridges MQTT to one Alpha sign.
//
// The bridge subscribes to alphasign/command/{sign} and
// alphasign/request/{sign}. Commands are JSON CommandMessages naming one
// of the sign actions (show_message, set_time, tone, ...) with its
// parameters; each is acknowledged on alphasign/ack/{sign}. Requests
// (read_errors, read_memory_size, status) are answered on
// alphasign/response/{sign}/{request_id}. A HealthReporter keeps a
// retained snapshot on alphasign/health/{sign}.
//
// Example command:
//
//	{"id":"cmd-1","command":"show_message","parameters":{"msg":"Open","color":"green"},"source":"home-automation"}
package alphasign
