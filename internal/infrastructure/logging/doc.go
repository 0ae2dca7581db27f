// Package logging provides structured logging for alphasign.
//
// It wraps log/slog so every component logs with the same handler, level
// and default fields (service, version).
//
// Logging is configured via the logging section in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("sign connected", "target", cfg.Sign.Target)
package logging
