// Package cli is the planner command line: one-off plans, guardrail checks
// and projections, plus the long-running API server and re-plan watcher.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"PropertyPlanner/internal/config"
	"PropertyPlanner/internal/engine"
	"PropertyPlanner/internal/planner"
	"PropertyPlanner/internal/recorder"
)

// Version is injected at build time.
var Version = "dev"

type appKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	EnvFile      string
	LogLevel     string
	OutputFormat string
}

// App carries initialized dependencies through the command tree.
type App struct {
	Config  *config.Config
	Log     *logrus.Logger
	Engine  *engine.Engine
	Planner *planner.Planner
	Output  string
}

// NewRootCommand creates the root command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "planner",
		Short:   "Property portfolio affordability and growth planner",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initApp(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath(), "config file path")
	pf.StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the config (missing is fine)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")

	cmd.AddCommand(
		newPlanCmd(),
		newCheckCmd(),
		newProjectCmd(),
		newServeCmd(),
		newWatchCmd(),
		newHistoryCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func initApp(cmd *cobra.Command, opts *RootOptions) error {
	switch opts.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q (must be text or json)", opts.OutputFormat)
	}

	// Existing environment variables win over the dotenv file.
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, err := NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	e := engine.New(cfg.AssumptionsSnapshot(), nil, log)
	app := &App{
		Config:  cfg,
		Log:     log,
		Engine:  e,
		Planner: planner.New(e, log),
		Output:  opts.OutputFormat,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, app))
	return nil
}

// AppFrom extracts the App installed by the root command.
func AppFrom(cmd *cobra.Command) (*App, error) {
	app, ok := cmd.Context().Value(appKey{}).(*App)
	if !ok {
		return nil, fmt.Errorf("cli not initialized")
	}
	return app, nil
}

// NewLogger builds a logrus logger from the configured level and format.
func NewLogger(level, format string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// openRecorder falls back to a no-op recorder when the database is unavailable.
func (a *App) openRecorder() recorder.Recorder {
	rec, err := recorder.Open(a.Config.Database.Driver, a.Config.Database.DSN, a.Log)
	if err != nil {
		a.Log.WithError(err).Warn("init recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return rec
}

// print writes v as JSON or its text rendering.
func (a *App) print(cmd *cobra.Command, v any, text string) error {
	out := cmd.OutOrStdout()
	if a.Output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(out, text)
	return err
}
