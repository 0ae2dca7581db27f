// Command alphasign drives Alpha-protocol LED signs.
//
// "alphasign serve" runs the long-lived service: HTTP API, optional MQTT
// bridge, command history and metrics. The other subcommands are one-shot
// tools for sending a message, previewing the encoded bytes and minting API
// tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/alphasign-core/internal/infrastructure/config"
	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
	"github.com/nerrad567/alphasign-core/internal/sign"
	"github.com/nerrad567/alphasign-core/internal/transport"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "alphasign",
		Short: "Drive Alpha-protocol LED signs",
		Long: `alphasign encodes text and control commands in the Alpha sign
protocol and delivers them over a serial line or a TCP adapter.

Run "alphasign serve" for the HTTP and MQTT service, or use the one-shot
send and encode commands from scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default $ALPHASIGN_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(
		serveCmd(opts),
		sendCmd(opts),
		encodeCmd(opts),
		tokenCmd(opts),
		versionCmd(),
	)
	return root
}

// resolvedPath returns the config path from the flag, the environment or
// the default, and whether the caller chose it explicitly.
func (o *rootOptions) resolvedPath() (string, bool) {
	if o.configPath != "" {
		return o.configPath, true
	}
	if path := os.Getenv("ALPHASIGN_CONFIG"); path != "" {
		return path, true
	}
	return defaultConfigPath, false
}

// load reads the config file. An explicitly chosen file must exist; the
// default path falls back to defaults plus environment when absent, so one-shot
// commands work without any config.
func (o *rootOptions) load() (*config.Config, error) {
	path, explicit := o.resolvedPath()
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return config.FromEnv(), nil
	}
	return nil, fmt.Errorf("loading config: %w", err)
}

// signConfig maps the sign section of the config file onto sign.Config.
func signConfig(cfg config.SignConfig) sign.Config {
	sc := sign.Config{
		ID:      cfg.ID,
		Target:  cfg.Target,
		Address: cfg.Address,
		Transport: transport.Options{
			BaudRate:       cfg.BaudRate,
			ConnectTimeout: cfg.ConnectTimeout(),
			ReadTimeout:    cfg.ReadTimeout(),
			WriteTimeout:   cfg.WriteTimeout(),
		},
		SyncClock: cfg.SyncClock,
	}
	if len(cfg.Type) == 1 {
		sc.SignType = cfg.Type[0]
	} else {
		sc.SignType = alpha.SignTypeAll
	}
	return sc
}
