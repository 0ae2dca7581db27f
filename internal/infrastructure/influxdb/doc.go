// Package influxdb stores sign command telemetry in InfluxDB v2.
//
// Every command attempt becomes a point in the sign_commands measurement
// (tags: sign_id, kind, source, status; fields: bytes, duration_ms). The
// periodic health snapshot goes to sign_health.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	defer client.Close()
//
//	client.WriteCommand(influxdb.CommandSample{SignID: "lobby", Kind: "show_message", Success: true})
//
// Writes are non-blocking and batched (batch_size, flush_interval).
// Connection and health check errors are returned directly; write errors
// arrive through SetOnError.
package influxdb
