package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/alphasign-core/internal/sign"
)

type sendOptions struct {
	target    string
	command   string
	message   sign.Message
	params    map[string]string
	syncClock bool
	timeout   time.Duration
}

func sendCmd(root *rootOptions) *cobra.Command {
	opts := &sendOptions{message: sign.NewMessage("")}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one message or command to a sign",
		Long: `Send a single message or command and exit.

With no --command the text given by --msg is displayed using the
presentation flags. Any other command takes its parameters from --param:

  alphasign send --target /dev/ttyUSB0 --msg "Hello" --color red
  alphasign send --target 10.0.0.5 --command tone --param type=alarm
  alphasign send --command read_memory_size`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.target, "target", "", "serial device or IP endpoint (overrides config)")
	f.StringVar(&opts.command, "command", sign.KindMessage, "one of "+strings.Join(sign.ActionNames(), ", "))
	f.StringVarP(&opts.message.Text, "msg", "m", "", "message text")
	f.StringVar(&opts.message.Color, "color", opts.message.Color, "text colour")
	f.StringVar(&opts.message.Effect, "effect", opts.message.Effect, "display effect")
	f.StringVar(&opts.message.Speed, "speed", opts.message.Speed, "speed 1 (slow) to 5 (fast)")
	f.StringVar(&opts.message.Font, "font", opts.message.Font, "character set")
	f.StringVar(&opts.message.Line, "line", opts.message.Line, "display line position")
	f.StringVar(&opts.message.Beep, "beep", "", "pass-through beep option")
	f.StringVar(&opts.message.Label, "label", opts.message.Label, "text file label")
	f.StringToStringVarP(&opts.params, "param", "p", nil, "command parameter as key=value (repeatable)")
	f.BoolVar(&opts.syncClock, "sync-clock", false, "set the sign clock before sending")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall deadline")

	return cmd
}

// commandParams merges the message flags under the explicit --param values.
func (o *sendOptions) commandParams() sign.MapParams {
	p := sign.MapParams{}
	if o.command == sign.KindMessage {
		p["msg"] = o.message.Text
		p["color"] = o.message.Color
		p["effect"] = o.message.Effect
		p["speed"] = o.message.Speed
		p["font"] = o.message.Font
		p["line"] = o.message.Line
		p["beep"] = o.message.Beep
		p["label"] = o.message.Label
	}
	for k, v := range o.params {
		p[k] = v
	}
	return p
}

func runSend(cmd *cobra.Command, root *rootOptions, opts *sendOptions) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	if opts.target != "" {
		cfg.Sign.Target = opts.target
	}
	if cmd.Flags().Changed("sync-clock") {
		cfg.Sign.SyncClock = opts.syncClock
	}

	action, err := sign.Build(opts.command, opts.commandParams(), time.Now())
	if err != nil {
		return err
	}

	client := sign.NewClient(signConfig(cfg.Sign))
	defer client.Close() //nolint:errcheck // one-shot

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	reply, err := client.Run(ctx, action, "cli")
	if err != nil {
		return fmt.Errorf("%s to %s: %w", opts.command, cfg.Sign.Target, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s sent to %s\n", opts.command, cfg.Sign.Target)
	if reply != nil {
		fmt.Fprintf(out, "reply type=%c address=%s\n", reply.Type, reply.Address)
		fmt.Fprintf(out, "%s\n", hex.Dump(reply.Payload))
	}
	return nil
}
