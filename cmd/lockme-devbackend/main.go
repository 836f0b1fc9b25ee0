// Command lockme-devbackend runs a seeded, in-memory LockMe API for local
// work on the admin console. Its keys are development keys only.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lockme/internal/devbackend"
	"lockme/internal/platform/config"
	"lockme/internal/platform/logger"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "lockme-devbackend",
		Short:         "Seeded development backend for the LockMe admin console",
		SilenceUsage:  true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(&logLevel), newIDTokenCmd())
	return root
}

func newServeCmd(logLevel *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DevBackendFromEnv()
			if addr != "" {
				cfg.Addr = addr
			}
			log := logger.New(cmd.OutOrStdout(), logger.ParseLevel(*logLevel))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("initializing lockme-devbackend",
				"addr", cfg.Addr,
				"env", cfg.Environment,
				"token_ttl", cfg.TokenTTL.String(),
			)
			srv, err := devbackend.New(ctx, cfg, devbackend.WithLogger(log))
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $LOCKME_DEV_ADDR or :8000)")
	return cmd
}

func newIDTokenCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "idtoken",
		Short: "Mint an identity token accepted by POST /auth/google",
		Example: `  lockme-devbackend idtoken --email admin@lockme.test
  lockme-admin login --id-token "$(lockme-devbackend idtoken --email admin@lockme.test)"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			srv, err := devbackend.New(ctx, config.DevBackendFromEnv())
			if err != nil {
				return err
			}
			token, err := srv.Tokens().MintIdentityToken(ctx, email, name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email the identity token asserts")
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
