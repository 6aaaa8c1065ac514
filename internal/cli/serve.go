package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PropertyPlanner/internal/recorder"
	"PropertyPlanner/internal/scheduler"
	"PropertyPlanner/internal/server"
)

type serveOptions struct {
	Addr   string
	Watch  bool
	RunNow bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recompute, plan and projection API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Addr, "addr", "", "listen address (defaults to server.addr from config)")
	f.BoolVar(&opts.Watch, "watch", false, "also re-plan the configured scenario on the cron schedule")
	f.BoolVar(&opts.RunNow, "run-now", os.Getenv("RUN_ON_START") == "true", "re-plan once at start (with --watch)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	app, err := AppFrom(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	rec := app.openRecorder()
	defer rec.Close()

	srv := server.New(app.Engine, app.Planner, rec, server.NewMetrics(), app.Log)
	if opts.Watch {
		sched, err := app.startScheduler(ctx, rec, opts.RunNow)
		if err != nil {
			return err
		}
		defer sched.Stop()
		srv.ServeLatest(sched.Last)
	}

	addr := opts.Addr
	if addr == "" {
		addr = app.Config.Server.Addr
	}
	if err := srv.Run(ctx, addr); err != nil {
		return err
	}
	app.Log.Info("server stopped")
	return nil
}

func newWatchCmd() *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-plan the configured scenario on the cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			rec := app.openRecorder()
			defer rec.Close()

			sched, err := app.startScheduler(ctx, rec, runNow)
			if err != nil {
				return err
			}
			app.Log.Info("watching scenario, press Ctrl+C to stop")
			<-ctx.Done()

			app.Log.Info("shutdown signal received, stopping")
			sched.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", os.Getenv("RUN_ON_START") == "true", "re-plan once at start")
	return cmd
}

// startScheduler registers the re-plan task for the configured scenario.
func (a *App) startScheduler(ctx context.Context, rec recorder.Recorder, runNow bool) (*scheduler.Scheduler, error) {
	if a.Config.Scenario.Path == "" {
		return nil, fmt.Errorf("watch needs scenario.path in config or PLANNER_SCENARIO")
	}
	sched := scheduler.NewScheduler(ctx, a.Planner, rec, scheduler.FileSource(a.Config.Scenario.Path), a.Log)
	sched.PlanFile = a.Config.Scenario.PlanFile
	if err := sched.Register(a.Config.Schedule.ReplanCron); err != nil {
		return nil, err
	}
	sched.Start()

	if runNow {
		a.Log.Info("run-now enabled, re-planning immediately")
		go func() {
			if _, err := sched.RunNow(); err != nil {
				a.Log.WithError(err).Error("replan")
			}
		}()
	}
	return sched, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
