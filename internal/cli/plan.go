package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"PropertyPlanner/internal/recorder"
	"PropertyPlanner/internal/report"
	"PropertyPlanner/internal/scenario"
)

type planOptions struct {
	ScenarioPath string
	Save         string
	Record       bool
}

func newPlanCmd() *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Schedule a scenario's purchase queue across its timeline",
		Example: `  planner plan --scenario scenarios/sam.yaml
  planner plan -s scenarios/sam.yaml --save data/plan.json --record -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ScenarioPath, "scenario", "s", "", "scenario file (defaults to scenario.path from config)")
	f.StringVar(&opts.Save, "save", "", "write the plan snapshot to this file")
	f.BoolVar(&opts.Record, "record", false, "record the run in the configured database")
	return cmd
}

func runPlan(cmd *cobra.Command, opts *planOptions) error {
	app, err := AppFrom(cmd)
	if err != nil {
		return err
	}
	sc, err := app.loadScenario(opts.ScenarioPath)
	if err != nil {
		return err
	}
	queue, err := sc.Instances(app.Planner.Assumptions())
	if err != nil {
		return err
	}
	owned, err := sc.PropertyPurchases(app.Planner.Assumptions())
	if err != nil {
		return err
	}

	plan, err := app.Planner.Plan(cmd.Context(), sc.Profile, owned, queue)
	if err != nil {
		return err
	}

	if opts.Save != "" {
		if err := scenario.SavePlan(opts.Save, plan); err != nil {
			return err
		}
	}
	if opts.Record {
		rec := app.openRecorder()
		defer rec.Close()
		id, err := rec.RecordPlan(cmd.Context(), &recorder.PlanRun{Trigger: recorder.TriggerCLI, Plan: plan})
		if err != nil {
			return fmt.Errorf("record plan: %w", err)
		}
		app.Log.WithField("run", id).Info("plan recorded")
	}
	return app.print(cmd, plan, report.FormatPlan(plan))
}

// loadScenario reads path, falling back to the configured scenario file.
func (a *App) loadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		path = a.Config.Scenario.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no scenario file: pass --scenario or set scenario.path")
	}
	return scenario.Load(path)
}
