// Package planner schedules a queue of prospective purchases across the
// client's timeline, buying each one in the first half-year period in which
// every guardrail passes.
package planner

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"PropertyPlanner/internal/calculator"
	"PropertyPlanner/internal/cascade"
	"PropertyPlanner/internal/engine"
	"PropertyPlanner/internal/model"
	"PropertyPlanner/internal/portfolio"
)

// DefaultTimelineYears is used when a profile does not set a timeline.
const DefaultTimelineYears = 10

// Scheduled is a purchase the plan makes.
type Scheduled struct {
	Period      int                    `json:"period"`
	Year        float64                `json:"year"`
	Instance    model.PropertyInstance `json:"instance"`
	Acquisition model.Acquisition      `json:"acquisition"`
	Step        model.CascadeStep      `json:"step"`
}

// Deferred is a queued instance that never passed within the timeline.
type Deferred struct {
	Instance       model.PropertyInstance `json:"instance"`
	Validation     model.ValidationResult `json:"validation"`
	Fixes          []model.SuggestedFix   `json:"fixes,omitempty"`
	BeyondTimeline bool                   `json:"beyondTimeline"`
}

// Plan is the outcome of scheduling a queue for one profile.
type Plan struct {
	Profile    model.Profile            `json:"profile"`
	Owned      []model.PropertyPurchase `json:"owned,omitempty"`
	Scheduled  []Scheduled              `json:"scheduled"`
	Deferred   []Deferred               `json:"deferred,omitempty"`
	States     []model.CascadeState     `json:"states"`
	Projection []model.YearMetrics      `json:"projection"`
	Goals      model.GoalYears          `json:"goals"`
}

// Purchases returns the scheduled purchases in buying order.
func (p Plan) Purchases() []model.PropertyPurchase {
	out := make([]model.PropertyPurchase, len(p.Scheduled))
	for i, s := range p.Scheduled {
		out[i] = s.Acquisition.Purchase
	}
	return out
}

// Planner walks the timeline with an Engine.
type Planner struct {
	engine *engine.Engine
	log    *logrus.Logger
}

// New creates a Planner. A nil log discards output.
func New(e *engine.Engine, log *logrus.Logger) *Planner {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Planner{engine: e, log: log}
}

// Assumptions returns the snapshot plans are computed with.
func (p *Planner) Assumptions() model.Assumptions { return p.engine.Assumptions() }

// PeriodYear is the fractional year at the start of period k.
func PeriodYear(k int) float64 {
	return float64(model.BaseYear) + float64(k)/model.PeriodsPerYear
}

// Plan schedules queue in order on top of the purchases the client already
// owns. Each elapsed period adds half the annual savings and half the annual
// net cashflow of every held purchase to the available funds; at most one
// purchase settles per period.
func (p *Planner) Plan(ctx context.Context, profile model.Profile, owned []model.PropertyPurchase, queue []model.PropertyInstance) (Plan, error) {
	years := profile.TimelineYears
	if years <= 0 {
		years = DefaultTimelineYears
	}
	lastPeriod := years * model.PeriodsPerYear

	state := cascade.Own(cascade.Initial(profile), owned)
	plan := Plan{Profile: profile, Owned: owned, States: []model.CascadeState{state}}
	purchases := append([]model.PropertyPurchase(nil), owned...)
	next := 0

	for k := 0; k <= lastPeriod && next < len(queue); k++ {
		if err := ctx.Err(); err != nil {
			return Plan{}, err
		}
		year := PeriodYear(k)
		if k > 0 {
			state = cascade.Accrue(state, periodIncome(profile, purchases, year))
		}

		res, err := p.engine.Evaluate(p.request(profile, queue[next], year, state, purchases))
		if err != nil {
			return Plan{}, fmt.Errorf("plan %q: %w", profile.Name, err)
		}
		if !res.Validation.Passed() {
			continue
		}

		plan.Scheduled = append(plan.Scheduled, Scheduled{
			Period:      k,
			Year:        year,
			Instance:    res.Instance,
			Acquisition: res.Acquisition,
			Step:        res.Step,
		})
		purchases = append(purchases, res.Acquisition.Purchase)
		state = res.NextState
		plan.States = append(plan.States, state)
		next++

		p.log.WithFields(logrus.Fields{
			"profile": profile.Name,
			"title":   res.Instance.Title,
			"year":    year,
		}).Debug("Purchase scheduled")
	}

	// Whatever is left is reported against the ledger at the end of the timeline.
	endYear := PeriodYear(lastPeriod)
	for _, inst := range queue[next:] {
		res, err := p.engine.Recompute(p.request(profile, inst, endYear, state, purchases))
		if err != nil {
			return Plan{}, fmt.Errorf("plan %q: %w", profile.Name, err)
		}
		plan.Deferred = append(plan.Deferred, Deferred{
			Instance:       res.Instance,
			Validation:     res.Validation,
			Fixes:          res.Fixes,
			BeyondTimeline: true,
		})
	}

	plan.Projection = portfolio.Project(purchases, profile.Existing, years)
	plan.Goals = portfolio.GoalsFromProjection(plan.Projection, profile.Goals)

	p.log.WithFields(logrus.Fields{
		"profile":   profile.Name,
		"scheduled": len(plan.Scheduled),
		"deferred":  len(plan.Deferred),
	}).Info("Plan complete")
	return plan, nil
}

func (p *Planner) request(profile model.Profile, inst model.PropertyInstance, year float64, state model.CascadeState, purchases []model.PropertyPurchase) engine.Request {
	return engine.Request{
		Instance:          inst,
		Year:              year,
		State:             state,
		Existing:          profile.Existing,
		Purchases:         purchases,
		ServiceableIncome: profile.ServiceableIncome,
	}
}

// periodIncome is the cash one half-year adds to the ledger.
func periodIncome(profile model.Profile, purchases []model.PropertyPurchase, year float64) float64 {
	income := profile.AnnualSavings / model.PeriodsPerYear
	for _, pp := range purchases {
		if pp.Year > year {
			continue
		}
		income += calculator.AnalyzeCashflow(pp, year).NetCashflow / model.PeriodsPerYear
	}
	return income
}
