package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/alphasign-core/internal/auth"
)

func tokenCmd(root *rootOptions) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token",
		Long: `Mint a signed access token for the HTTP API.

The secret comes from security.jwt.secret in the config file or from
ALPHASIGN_JWT_SECRET. Roles are viewer, operator and admin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			r, ok := auth.ParseRole(role)
			if !ok {
				return fmt.Errorf("%w: %q", auth.ErrInvalidRole, role)
			}
			if ttl <= 0 {
				ttl = time.Duration(cfg.Security.JWT.AccessTokenTTL) * time.Minute
			}

			token, expires, err := auth.GenerateAccessToken(auth.TokenRequest{
				Subject: subject,
				Role:    r,
				Issuer:  cfg.Security.JWT.Issuer,
				TTL:     ttl,
			}, cfg.Security.JWT.Secret)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, usually a user or service name (required)")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleOperator), "viewer, operator or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "lifetime (default security.jwt.access_token_ttl)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
