package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"PropertyPlanner/internal/cascade"
	"PropertyPlanner/internal/engine"
	"PropertyPlanner/internal/model"
	"PropertyPlanner/internal/recorder"
	"PropertyPlanner/internal/report"
	"PropertyPlanner/internal/scenario"
)

type checkOptions struct {
	ScenarioPath string
	Index        int
	Year         float64
	Set          map[string]string
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the guardrails on one queued purchase and suggest fixes",
		Long: `Check tests one queue entry against the scenario profile's starting ledger,
with the scenario's owned purchases already in the portfolio. Use --set to
try an edit before committing it to the scenario file.`,
		Example: `  planner check -s scenarios/sam.yaml --index 1
  planner check -s scenarios/sam.yaml --set lvr=85 --set purchasePrice=620000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ScenarioPath, "scenario", "s", "", "scenario file (defaults to scenario.path from config)")
	f.IntVarP(&opts.Index, "index", "i", 0, "queue entry to check")
	f.Float64Var(&opts.Year, "year", model.BaseYear, "decimal year of the purchase")
	f.StringToStringVar(&opts.Set, "set", nil, "field=value adjustments (purchasePrice, lvr, rentPerWeek, interestRate, oneOffCosts, lmiCapitalized)")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	app, err := AppFrom(cmd)
	if err != nil {
		return err
	}
	sc, err := app.loadScenario(opts.ScenarioPath)
	if err != nil {
		return err
	}
	if opts.Index < 0 || opts.Index >= len(sc.Queue) {
		return fmt.Errorf("index %d out of range: queue has %d entries", opts.Index, len(sc.Queue))
	}

	a := app.Engine.Assumptions()
	inst, err := scenario.NormalizeInstance(sc.Queue[opts.Index], a)
	if err != nil {
		return fmt.Errorf("queue[%d]: %w", opts.Index, err)
	}
	owned, err := sc.PropertyPurchases(a)
	if err != nil {
		return err
	}
	adj, err := parseAdjustments(opts.Set)
	if err != nil {
		return err
	}

	res, err := app.Engine.Recompute(engine.Request{
		Instance:          inst,
		Year:              opts.Year,
		State:             cascade.Own(cascade.Initial(sc.Profile), owned),
		Existing:          sc.Profile.Existing,
		Purchases:         owned,
		ServiceableIncome: sc.Profile.ServiceableIncome,
		Adjustments:       adj,
	})
	if err != nil {
		return err
	}

	rec := app.openRecorder()
	defer rec.Close()
	violations := make([]model.GuardrailType, 0, len(res.Validation.Violations))
	for _, v := range res.Validation.Violations {
		violations = append(violations, v.Type)
	}
	if err := rec.RecordRecompute(cmd.Context(), &recorder.RecomputeEvent{
		Title:      res.Instance.Title,
		Year:       opts.Year,
		Violations: violations,
		Fixes:      len(res.Fixes),
	}); err != nil {
		app.Log.WithError(err).Warn("record recompute")
	}
	return app.print(cmd, res, report.FormatRecompute(res))
}

// parseAdjustments converts --set pairs into field adjustments. Field names
// are checked by the engine.
func parseAdjustments(set map[string]string) (map[model.Field]float64, error) {
	if len(set) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	adj := make(map[model.Field]float64, len(set))
	for _, k := range keys {
		v, err := strconv.ParseFloat(set[k], 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", k, err)
		}
		adj[model.Field(k)] = v
	}
	return adj, nil
}
