// Package cascade carries capital from one purchase to the next.
//
// States are values: every operation returns a new CascadeState and leaves its
// input untouched, so a purchase sequence can be replayed and compared.
package cascade

import (
	"math"

	"PropertyPlanner/internal/calculator"
	"PropertyPlanner/internal/model"
)

// Initial builds the ledger before any purchase from the client profile.
func Initial(p model.Profile) model.CascadeState {
	return model.CascadeState{
		AvailableFunds:    p.DepositPool,
		BorrowingCapacity: p.BorrowingCapacity,
		PortfolioValue:    p.Existing.Value,
		TotalDebt:         p.Existing.Debt,
		TotalEquity:       p.Existing.Value - p.Existing.Debt,
	}
}

// Own adds purchases the client already holds to the ledger's value and debt.
// Available funds and borrowing capacity are left as the profile states them.
func Own(s model.CascadeState, owned []model.PropertyPurchase) model.CascadeState {
	for _, p := range owned {
		s.PortfolioValue += p.Cost
		s.TotalDebt += p.LoanAmount
	}
	s.TotalEquity = s.PortfolioValue - s.TotalDebt
	return s
}

// StepFrom derives the ledger step of an acquisition. The net cashflow is the
// property's cashflow over its first half-year period of ownership.
func StepFrom(acq model.Acquisition) model.CascadeStep {
	first := calculator.AnalyzeCashflow(acq.Purchase, acq.Purchase.Year)
	return model.CascadeStep{
		Title:             acq.Purchase.Title,
		PropertyValue:     acq.Purchase.Cost,
		LoanAmount:        acq.Purchase.LoanAmount,
		TotalCashRequired: acq.Costs.TotalCashRequired(),
		NetCashflow:       first.NetCashflow / model.PeriodsPerYear,
	}
}

// EquityRelease is the cash a refinance can extract after step: releaseFactor
// of the equity the purchase adds, capped by the borrowing room left once the
// step's loan is drawn.
func EquityRelease(s model.CascadeState, step model.CascadeStep, releaseFactor float64) float64 {
	release := releaseFactor * (step.PropertyValue - step.LoanAmount)
	if release <= 0 {
		return 0
	}
	headroom := math.Max(0, s.BorrowingCapacity-step.LoanAmount)
	return math.Min(release, headroom)
}

// Transition applies one purchase to the ledger and returns the next state.
func Transition(s model.CascadeState, step model.CascadeStep, releaseFactor float64) model.CascadeState {
	release := EquityRelease(s, step, releaseFactor)
	next := model.CascadeState{
		AvailableFunds:    s.AvailableFunds - step.TotalCashRequired + step.NetCashflow + release,
		BorrowingCapacity: s.BorrowingCapacity - step.LoanAmount,
		PortfolioValue:    s.PortfolioValue + step.PropertyValue,
		TotalDebt:         s.TotalDebt + step.LoanAmount,
	}
	next.TotalEquity = next.PortfolioValue - next.TotalDebt
	return next
}

// Replay applies steps in order and returns every state, starting with s0.
func Replay(s0 model.CascadeState, steps []model.CascadeStep, releaseFactor float64) []model.CascadeState {
	states := make([]model.CascadeState, 0, len(steps)+1)
	states = append(states, s0)
	s := s0
	for _, step := range steps {
		s = Transition(s, step, releaseFactor)
		states = append(states, s)
	}
	return states
}

// Accrue returns s with amount added to the available funds.
func Accrue(s model.CascadeState, amount float64) model.CascadeState {
	s.AvailableFunds += amount
	return s
}
