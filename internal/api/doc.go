// Package api implements the HTTP API and WebSocket server for the sign
// service.
//
// This package provides:
//   - the query-string endpoints existing integrations call (/AlphaSign,
//     /settime, /tone and friends)
//   - a versioned JSON API under /api/v1 for history, encoding previews and
//     arbitrary named commands
//   - a WebSocket hub that relays every sign command as an event
//   - Prometheus exposition at the configured metrics path
//   - optional JWT bearer auth with viewer, operator and admin roles
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Every handler that talks to the sign goes through sign.Build, so the
// HTTP, MQTT and CLI surfaces share parameter names and defaults.
package api
