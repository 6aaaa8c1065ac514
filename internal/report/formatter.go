// Package report renders plans and recompute results as plain text.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"PropertyPlanner/internal/engine"
	"PropertyPlanner/internal/model"
	"PropertyPlanner/internal/planner"
)

func money(v float64) string {
	s := "$" + humanize.Commaf(math.Abs(math.Round(v)))
	if math.Round(v) < 0 {
		return "-" + s
	}
	return s
}

func yearLabel(y float64) string {
	if y == math.Trunc(y) {
		return fmt.Sprintf("%.0f", y)
	}
	return fmt.Sprintf("%.1f", y)
}

// FormatPlan formats a plan: the purchase schedule, anything deferred, the
// projection and the goal years.
func FormatPlan(p planner.Plan) string {
	var b strings.Builder

	name := p.Profile.Name
	if name == "" {
		name = "Client"
	}
	b.WriteString(fmt.Sprintf("Portfolio plan | %s\n\n", name))

	if len(p.Scheduled) == 0 {
		b.WriteString("No purchases fit the timeline.\n")
	} else {
		b.WriteString("Purchases:\n")
		for i, s := range p.Scheduled {
			b.WriteString(fmt.Sprintf("  %s %s in %s: %s, loan %s, cash %s, cashflow %s/yr\n",
				humanize.Ordinal(i+1), s.Instance.Title, yearLabel(s.Year),
				money(s.Acquisition.Purchase.Cost), money(s.Acquisition.Purchase.LoanAmount),
				money(s.Step.TotalCashRequired), money(s.Step.NetCashflow*model.PeriodsPerYear)))
		}
	}

	if len(p.Deferred) > 0 {
		b.WriteString("\nBeyond the timeline:\n")
		for _, d := range p.Deferred {
			b.WriteString(fmt.Sprintf("  %s\n", d.Instance.Title))
			for _, v := range d.Validation.Violations {
				b.WriteString(fmt.Sprintf("    - %s\n", v.Message))
			}
			for _, f := range d.Fixes {
				b.WriteString(fmt.Sprintf("    * %s\n", f.Explanation))
			}
		}
	}

	if len(p.States) > 0 {
		b.WriteString("\n" + FormatState(p.States[len(p.States)-1]))
	}
	if len(p.Projection) > 0 {
		b.WriteString("\n" + FormatProjection(p.Projection))
	}
	b.WriteString("\n" + FormatGoals(p.Profile.Goals, p.Goals))
	return b.String()
}

// FormatState formats a cascade ledger.
func FormatState(s model.CascadeState) string {
	var b strings.Builder
	b.WriteString("Ledger:\n")
	b.WriteString(fmt.Sprintf("  Available funds:    %s\n", money(s.AvailableFunds)))
	b.WriteString(fmt.Sprintf("  Borrowing capacity: %s\n", money(s.BorrowingCapacity)))
	b.WriteString(fmt.Sprintf("  Portfolio value:    %s\n", money(s.PortfolioValue)))
	b.WriteString(fmt.Sprintf("  Debt:               %s\n", money(s.TotalDebt)))
	b.WriteString(fmt.Sprintf("  Equity:             %s\n", money(s.TotalEquity)))
	return b.String()
}

// FormatProjection formats the yearly metrics as a table.
func FormatProjection(series []model.YearMetrics) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-6s %14s %14s %14s %12s\n", "Year", "Value", "Debt", "Equity", "Cashflow"))
	for _, ym := range series {
		m := ym.Metrics
		b.WriteString(fmt.Sprintf("%-6d %14s %14s %14s %12s\n",
			ym.Year, money(m.PortfolioValue), money(m.TotalDebt), money(m.TotalEquity), money(m.AnnualCashflow)))
	}
	return b.String()
}

// FormatGoals reports when each goal is reached.
func FormatGoals(g model.Goals, years model.GoalYears) string {
	line := func(label string, target float64, year *int) string {
		if year == nil {
			return fmt.Sprintf("  %s %s: not reached\n", label, money(target))
		}
		return fmt.Sprintf("  %s %s: %d\n", label, money(target), *year)
	}
	return "Goals:\n" + line("Equity", g.Equity, years.Equity) + line("Cashflow", g.Cashflow, years.Cashflow)
}

// FormatRecompute formats the guardrail outcome of one purchase.
func FormatRecompute(r engine.Result) string {
	var b strings.Builder
	p := r.Acquisition.Purchase
	b.WriteString(fmt.Sprintf("%s | %s at %.1f%% LVR, %s/wk\n\n",
		r.Instance.Title, money(p.Cost), r.Instance.LVR, money(r.Instance.RentPerWeek)))

	c := r.Acquisition.Costs
	b.WriteString(fmt.Sprintf("Deposit %s + stamp duty %s + LMI %s + one-off %s = %s cash\n",
		money(c.Deposit), money(c.StampDuty), money(c.UpfrontLMI()), money(c.OneOff), money(c.TotalCashRequired())))
	if c.LMICapitalized {
		b.WriteString(fmt.Sprintf("LMI of %s capitalized into the loan\n", money(c.LMI)))
	}
	b.WriteString(fmt.Sprintf("Loan %s, cashflow %s/yr\n\n", money(p.LoanAmount), money(r.Cashflow.NetCashflow)))

	for _, chk := range r.Validation.Checks {
		mark := "PASS"
		if !chk.Passed {
			mark = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %-14s required %s, available %s\n",
			mark, chk.Type, money(chk.Required), money(chk.Available)))
	}
	for _, v := range r.Validation.Violations {
		b.WriteString(fmt.Sprintf("  - %s\n", v.Message))
	}
	if len(r.Fixes) > 0 {
		b.WriteString("\nSuggested fixes:\n")
		for _, f := range r.Fixes {
			b.WriteString(fmt.Sprintf("  * [%s] %s\n", f.Violation, f.Explanation))
		}
	}
	return b.String()
}
