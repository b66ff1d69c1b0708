// Package cli defines Cobra command definitions for the stocklens CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/berth-dev/stocklens/internal/config"
	"github.com/berth-dev/stocklens/internal/dashboard"
	stlog "github.com/berth-dev/stocklens/internal/log"
	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/tui"
	"github.com/berth-dev/stocklens/internal/tui/app"
)

var (
	verbose bool
	version = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "stocklens",
	Short: "Ask inventory questions in plain language",
	Long: `Stocklens sends natural-language inventory questions to the query
backend, waits for the answer and shows it as a sortable table and charts.
Run without arguments for the interactive dashboard.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}
		return runDashboard(cmd, "")
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug diagnostics")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(cleanCmd)
}

// project is the loaded state every command works from.
type project struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
	client *nlquery.Client
	events *stlog.Logger
}

// loadProject reads config for the working directory and builds the query
// client. Diagnostics go to logOut.
func loadProject(logOut io.Writer) (*project, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	level, err := stlog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger := stlog.Setup(logOut, level)

	p := &project{
		root:   root,
		cfg:    cfg,
		logger: logger,
		client: nlquery.NewClient(
			cfg.API.BaseURL,
			cfg.API.Token,
			nlquery.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
			nlquery.WithLogger(logger),
		),
	}

	if cfg.Logging.Events {
		events, err := stlog.NewLogger(root)
		if err != nil {
			logger.Warn("Event log disabled", "error", err)
		} else {
			p.events = events
		}
	}
	return p, nil
}

// controllerOptions attaches the project's loggers to a dashboard controller.
func (p *project) controllerOptions() []dashboard.Option {
	opts := []dashboard.Option{dashboard.WithLogger(p.logger)}
	if p.events != nil {
		opts = append(opts, dashboard.WithEventLog(p.events))
	}
	return opts
}

// runDashboard opens the interactive dashboard, submitting query first when
// it is not empty. Diagnostics go to a file while the screen is taken over.
func runDashboard(cmd *cobra.Command, query string) error {
	logOut := io.Discard
	if verbose {
		dir := filepath.Join(".", stlog.StateDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	p, err := loadProject(logOut)
	if err != nil {
		return err
	}

	tuiApp := app.New(cmd.Context(), p.cfg, p.root, p.client, p.controllerOptions()...)
	if query != "" {
		tuiApp.WithQuery(query)
	}
	return tui.Run(tuiApp)
}
