// Command lockme-admin is the LockMe admin console: one-shot commands for
// scripting and an interactive dashboard.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lockme/internal/admin/format"
	"lockme/internal/admin/models"
	"lockme/internal/admin/pagination"
	"lockme/internal/admin/tracer"
	"lockme/internal/console"
	"lockme/internal/platform/config"
	"lockme/internal/platform/logger"
	"lockme/internal/tui"
	id "lockme/pkg/domain"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the flags shared by every subcommand.
type app struct {
	configPath string
	apiURL     string
	tokenStore string
	tokenFile  string
	logLevel    string
	plain       bool
	metricsFile string

	registry *prometheus.Registry

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, registry: prometheus.NewRegistry()}

	root := &cobra.Command{
		Use:          "lockme-admin",
		Short:        "LockMe admin console",
		SilenceUsage: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lockme/admin.yaml)")
	flags.StringVar(&a.apiURL, "api-url", "", "backend base URL")
	flags.StringVar(&a.tokenStore, "token-store", "", "token store: file, memory or redis")
	flags.StringVar(&a.tokenFile, "token-file", "", "token file for the file store")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.plain, "plain", false, "disable colours and decoration")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write client request metrics to this file on exit (Prometheus text format)")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.whoamiCmd(),
		a.statsCmd(),
		a.usersCmd(),
		a.tribesCmd(),
		a.tribeCmd(),
		a.dashboardCmd(),
	)
	return root
}

func (a *app) loadConfig() (config.Admin, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Admin{}, err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.tokenStore != "" {
		cfg.TokenStore = a.tokenStore
	}
	if a.tokenFile != "" {
		cfg.TokenFile = a.tokenFile
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	return cfg, cfg.Validate()
}

// open builds a console and re-establishes any stored session.
func (a *app) open(ctx context.Context) (*console.Console, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := console.New(ctx, cfg,
		console.WithLogger(logger.New(a.stderr, logger.ParseLevel(cfg.LogLevel))),
		console.WithMetricsRegisterer(a.registry),
		console.WithTracer(tracer.NewOTel()),
	)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (a *app) styles() tui.Styles {
	if a.plain {
		return tui.PlainStyles()
	}
	return tui.DefaultStyles()
}

// withConsole runs fn against an open console and closes it afterwards.
func (a *app) withConsole(cmd *cobra.Command, fn func(ctx context.Context, c *console.Console) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return errors.Join(fn(ctx, c), a.writeMetrics())
}

// writeMetrics dumps the client metrics gathered by this run, if asked to.
// A failed command still writes them.
func (a *app) writeMetrics() error {
	if a.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// requireSession fails unless the stored session is authenticated.
func (a *app) requireSession(c *console.Console) error {
	snap := c.Session()
	if snap.Status == models.SessionAuthenticated {
		return nil
	}
	if snap.Message != "" {
		return errors.New(snap.Message)
	}
	return errors.New("not signed in; run lockme-admin login")
}

func (a *app) loginCmd() *cobra.Command {
	var idToken string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange a Google ID token for an admin session",
		Long: `Exchange a Google ID token for an admin session. The token is read from
--id-token, or from stdin when the flag is omitted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if idToken == "" {
				line, err := bufio.NewReader(a.stdin).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read id token: %w", err)
				}
				idToken = strings.TrimSpace(line)
			}
			if idToken == "" {
				return errors.New("an id token is required")
			}
			return a.withConsole(cmd, func(ctx context.Context, c *console.Console) error {
				if err := c.Login(ctx, idToken); err != nil {
					if msg := c.Session().Message; msg != "" {
						return errors.New(msg)
					}
					return err
				}
				fmt.Fprintln(a.stdout, tui.Session(a.styles(), c.Session()))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&idToken, "id-token", "", "Google ID token")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withConsole(cmd, func(ctx context.Context, c *console.Console) error {
				if err := c.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, tui.Session(a.styles(), c.Session()))
				return nil
			})
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored session is still valid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withConsole(cmd, func(_ context.Context, c *console.Console) error {
				fmt.Fprintln(a.stdout, tui.Session(a.styles(), c.Session()))
				return nil
			})
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the claims of the stored token without contacting the backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			c, err := console.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			claims, err := c.Whoami(ctx)
			if err != nil {
				return err
			}
			expires := format.Dash
			if claims.ExpiresAt != nil {
				expires = claims.ExpiresAt.Local().Format("2006-01-02 15:04:05")
			}
			t := tui.NewTable("Subject", "Email", "Admin", "Expires")
			t.AddRow(claims.Subject, claims.Email, fmt.Sprint(claims.IsAdmin), expires)
			fmt.Fprint(a.stdout, t.Render(a.styles()))
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showView(cmd, models.DashboardView, 1)
		},
	}
}

func (a *app) usersCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showView(cmd, models.UsersView, page)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	return cmd
}

func (a *app) tribesCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "tribes",
		Short: "List tribes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showView(cmd, models.TribesView, page)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	return cmd
}

func (a *app) tribeCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "tribe <id>",
		Short: "Show a tribe's member leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tribeID, err := id.ParseTribeID(args[0])
			if err != nil {
				return err
			}
			return a.showView(cmd, models.TribeDetailView(tribeID), page)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	return cmd
}

// showView opens view, moves to page and prints the result.
func (a *app) showView(cmd *cobra.Command, view models.View, page int) error {
	return a.withConsole(cmd, func(ctx context.Context, c *console.Console) error {
		if err := a.requireSession(c); err != nil {
			return err
		}
		state, err := c.Open(ctx, view)
		if err != nil {
			return a.viewError(c, state, err)
		}
		if page != 1 {
			state, err = c.GoToPage(ctx, page)
			if errors.Is(err, pagination.ErrPageOutOfRange) {
				return fmt.Errorf("page %d is out of range (1-%d)", page, max(state.TotalPages, 1))
			}
			if err != nil {
				return a.viewError(c, state, err)
			}
		}
		fmt.Fprintln(a.stdout, tui.View(a.styles(), state))
		return nil
	})
}

func (a *app) viewError(c *console.Console, state pagination.State, err error) error {
	if msg := c.Session().Message; msg != "" {
		return errors.New(msg)
	}
	if state.Message != "" {
		return fmt.Errorf("%s: %w", state.Message, err)
	}
	return err
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			c, err := console.New(ctx, cfg,
				console.WithLogger(logger.New(a.stderr, logger.ParseLevel(cfg.LogLevel))),
				console.WithMetricsRegisterer(a.registry),
				console.WithTracer(tracer.NewOTel()),
			)
			if err != nil {
				return err
			}
			defer c.Close()

			p := tea.NewProgram(tui.NewModel(ctx, c, a.styles()),
				tea.WithContext(ctx),
				tea.WithInput(a.stdin),
				tea.WithOutput(a.stdout),
				tea.WithAltScreen(),
			)
			_, err = p.Run()
			return errors.Join(err, a.writeMetrics())
		},
	}
}
