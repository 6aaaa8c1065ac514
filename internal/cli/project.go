package cli

import (
	"github.com/spf13/cobra"

	"PropertyPlanner/internal/planner"
	"PropertyPlanner/internal/portfolio"
	"PropertyPlanner/internal/report"
	"PropertyPlanner/internal/server"
)

func newProjectCmd() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the scenario's owned purchases year by year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}
			sc, err := app.loadScenario(scenarioPath)
			if err != nil {
				return err
			}
			purchases, err := sc.PropertyPurchases(app.Engine.Assumptions())
			if err != nil {
				return err
			}
			years := sc.Profile.TimelineYears
			if years <= 0 {
				years = planner.DefaultTimelineYears
			}

			series := portfolio.Project(purchases, sc.Profile.Existing, years)
			goals := portfolio.GoalsFromProjection(series, sc.Profile.Goals)
			text := report.FormatProjection(series) + "\n" + report.FormatGoals(sc.Profile.Goals, goals)
			return app.print(cmd, server.ProjectResponse{Projection: series, Goals: goals}, text)
		},
	}
	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file (defaults to scenario.path from config)")
	return cmd
}
