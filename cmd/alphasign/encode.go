package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
	"github.com/nerrad567/alphasign-core/internal/sign"
	"github.com/nerrad567/alphasign-core/internal/transport"
)

type encodeOptions struct {
	message   sign.Message
	fragments bool
	tagged    bool
}

func encodeCmd(root *rootOptions) *cobra.Command {
	opts := &encodeOptions{message: sign.NewMessage("")}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the framed packet for a message without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncode(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.message.Text, "msg", "m", "", "message text")
	f.StringVar(&opts.message.Color, "color", opts.message.Color, "text colour")
	f.StringVar(&opts.message.Effect, "effect", opts.message.Effect, "display effect")
	f.StringVar(&opts.message.Speed, "speed", opts.message.Speed, "speed 1 (slow) to 5 (fast)")
	f.StringVar(&opts.message.Font, "font", opts.message.Font, "character set")
	f.StringVar(&opts.message.Line, "line", opts.message.Line, "display line position")
	f.StringVar(&opts.message.Beep, "beep", "", "pass-through beep option")
	f.StringVar(&opts.message.Label, "label", opts.message.Label, "text file label")
	f.BoolVar(&opts.fragments, "fragments", false, "print each transmission fragment separately")
	f.BoolVar(&opts.tagged, "tagged", false, "also print the tagged message")

	return cmd
}

func runEncode(cmd *cobra.Command, root *rootOptions, opts *encodeOptions) error {
	if opts.message.Text == "" {
		return errors.New("--msg is required")
	}
	cfg, err := root.load()
	if err != nil {
		return err
	}
	sc := signConfig(cfg.Sign)
	if sc.Address == "" {
		sc.Address = alpha.AddressBroadcast
	}

	packet := alpha.FrameTo(sign.Encode(opts.message), sc.SignType, sc.Address)

	out := cmd.OutOrStdout()
	if opts.tagged {
		tagged, line := sign.Compose(opts.message)
		fmt.Fprintf(out, "tagged: %s\nline:   %s\n", tagged, line)
	}
	if !opts.fragments {
		fmt.Fprintln(out, hex.EncodeToString(packet))
		return nil
	}
	for i, frag := range transport.Split(packet) {
		fmt.Fprintf(out, "%d: %s\n", i, hex.EncodeToString(frag))
	}
	return nil
}
