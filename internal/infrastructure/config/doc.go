// Package config handles loading and validating alphasign configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with ALPHASIGN_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Secrets (MQTT password, InfluxDB token, JWT secret) should be supplied
// through environment variables rather than committed config files.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sign.Target)
package config
