// Package engine recomputes a prospective purchase after an edit: it prices
// the adjusted instance, rolls it into the portfolio metrics, runs the
// guardrails and proposes fixes for any that fail.
package engine

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"PropertyPlanner/internal/calculator"
	"PropertyPlanner/internal/cascade"
	"PropertyPlanner/internal/costs"
	"PropertyPlanner/internal/fixes"
	"PropertyPlanner/internal/guardrail"
	"PropertyPlanner/internal/model"
	"PropertyPlanner/internal/portfolio"
)

// Request is one recompute: a candidate instance tested at Year against the
// ledger State reached by the already scheduled Purchases.
type Request struct {
	Instance          model.PropertyInstance   `json:"instance"`
	Year              float64                  `json:"year"`
	State             model.CascadeState       `json:"state"`
	Existing          model.ExistingPortfolio  `json:"existing"`
	Purchases         []model.PropertyPurchase `json:"purchases,omitempty"`
	ServiceableIncome float64                  `json:"serviceableIncome"`
	Adjustments       map[model.Field]float64  `json:"adjustments,omitempty"`
}

// Result is everything a caller needs to redraw a purchase.
type Result struct {
	Instance       model.PropertyInstance              `json:"instance"`
	Acquisition    model.Acquisition                   `json:"acquisition"`
	Cashflow       model.CashflowAnalysis              `json:"cashflow"`
	Serviceability calculator.ServiceabilityAssessment `json:"serviceability"`
	Metrics        model.PropertyMetrics               `json:"metrics"`
	Validation     model.ValidationResult              `json:"validation"`
	Fixes          []model.SuggestedFix                `json:"fixes,omitempty"`
	Step           model.CascadeStep                   `json:"step"`
	NextState      model.CascadeState                  `json:"nextState"`
}

// Engine holds an immutable assumptions snapshot. It has no mutable state
// and is safe for concurrent use.
type Engine struct {
	assumptions model.Assumptions
	calc        costs.Calculator
	solver      *fixes.Solver
	log         *logrus.Logger
}

// New creates an Engine. A nil calc uses the table-driven calculator built
// from a; a nil log discards output.
func New(a model.Assumptions, calc costs.Calculator, log *logrus.Logger) *Engine {
	if calc == nil {
		calc = costs.NewStandard(a)
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Engine{
		assumptions: a,
		calc:        calc,
		solver:      fixes.NewSolver(a, calc),
		log:         log,
	}
}

// Assumptions returns the snapshot the engine was built with.
func (e *Engine) Assumptions() model.Assumptions { return e.assumptions }

// Quote prices an instance at year.
func (e *Engine) Quote(inst model.PropertyInstance, year float64) (model.Acquisition, error) {
	return costs.Quote(inst, year, e.assumptions, e.calc)
}

// Evaluate runs a request without solving fixes.
func (e *Engine) Evaluate(req Request) (Result, error) {
	// Step a: overlay the edited fields
	inst, err := applyAdjustments(req.Instance, req.Adjustments)
	if err != nil {
		return Result{}, err
	}

	// Step b: price the purchase
	acq, err := e.Quote(inst, req.Year)
	if err != nil {
		return Result{}, err
	}

	// Step c: combined metrics with the candidate owned from its year
	purchases := make([]model.PropertyPurchase, 0, len(req.Purchases)+1)
	purchases = append(purchases, req.Purchases...)
	purchases = append(purchases, acq.Purchase)
	metrics := portfolio.Calculate(purchases, req.Existing, req.Year)

	// Step d: guardrails against the ledger before the purchase
	params := guardrail.Params{
		Serviceability:    e.assumptions.Serviceability,
		ServiceableIncome: req.ServiceableIncome,
	}
	validation := guardrail.Validate(acq, req.State, params)

	step := cascade.StepFrom(acq)
	return Result{
		Instance:       inst,
		Acquisition:    acq,
		Cashflow:       calculator.AnalyzeCashflow(acq.Purchase, req.Year),
		Serviceability: calculator.AssessServiceability(acq.Purchase, params.Serviceability, params.ServiceableIncome),
		Metrics:        metrics,
		Validation:     validation,
		Step:           step,
		NextState:      cascade.Transition(req.State, step, e.assumptions.EquityReleaseFactor),
	}, nil
}

// Recompute evaluates a request and, when a guardrail fails, solves for
// fixes against the adjusted instance.
func (e *Engine) Recompute(req Request) (Result, error) {
	res, err := e.Evaluate(req)
	if err != nil {
		e.log.WithError(err).WithField("title", req.Instance.Title).Warn("Recompute rejected")
		return Result{}, err
	}

	if !res.Validation.Passed() {
		res.Fixes, err = e.solver.Suggest(res.Instance, fixes.Context{
			Year:              req.Year,
			State:             req.State,
			ServiceableIncome: req.ServiceableIncome,
		}, res.Validation)
		if err != nil {
			return Result{}, fmt.Errorf("recompute %q: %w", res.Instance.Title, err)
		}
	}

	e.log.WithFields(logrus.Fields{
		"title":      res.Instance.Title,
		"year":       req.Year,
		"violations": len(res.Validation.Violations),
		"fixes":      len(res.Fixes),
	}).Debug("Recomputed purchase")
	return res, nil
}

// applyAdjustments overlays edits in field-name order so errors are stable.
func applyAdjustments(inst model.PropertyInstance, adj map[model.Field]float64) (model.PropertyInstance, error) {
	fields := make([]model.Field, 0, len(adj))
	for f := range adj {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	var err error
	for _, f := range fields {
		if inst, err = fixes.Adjust(inst, f, adj[f]); err != nil {
			return model.PropertyInstance{}, err
		}
	}
	return inst, nil
}
