package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PropertyPlanner/internal/calculator"
	"PropertyPlanner/internal/model"
)

const releaseFactor = 0.8

func start(funds, capacity float64) model.CascadeState {
	return Initial(model.Profile{
		DepositPool:       funds,
		BorrowingCapacity: capacity,
		Existing:          model.ExistingPortfolio{Value: 700000, Debt: 300000},
	})
}

// acquisition builds an interest-only purchase at 5% with no operating
// expenses, so its annual cashflow is rent - 5% of the loan and its
// first-period cashflow half of that.
func acquisition(title string, cost, annualRent float64) model.Acquisition {
	loan := cost * 0.8
	return model.Acquisition{
		Purchase: model.PropertyPurchase{
			Title:        title,
			Year:         2026,
			Cost:         cost,
			LoanAmount:   loan,
			RentalYield:  annualRent / cost * 100,
			GrowthCurve:  model.FlatCurve(6),
			InterestRate: 5,
			LoanType:     model.InterestOnly,
		},
		Costs: model.PurchaseCosts{Deposit: cost - loan, StampDuty: cost * 0.04, OneOff: 4000},
	}
}

func TestInitial(t *testing.T) {
	s := start(220000, 1050000)
	assert.Equal(t, 220000.0, s.AvailableFunds)
	assert.Equal(t, 1050000.0, s.BorrowingCapacity)
	assert.Equal(t, 700000.0, s.PortfolioValue)
	assert.Equal(t, 300000.0, s.TotalDebt)
	assert.Equal(t, 400000.0, s.TotalEquity)
}

func TestStepFrom(t *testing.T) {
	acq := acquisition("p1", 400000, 26000)
	step := StepFrom(acq)

	assert.Equal(t, "p1", step.Title)
	assert.Equal(t, 400000.0, step.PropertyValue)
	assert.Equal(t, 320000.0, step.LoanAmount)
	assert.InDelta(t, 80000+16000+4000, step.TotalCashRequired, 1e-9)
	// 26000 rent - 16000 interest a year, half of it in the first period.
	assert.InDelta(t, 5000, step.NetCashflow, 1e-6)
	annual := calculator.AnalyzeCashflow(acq.Purchase, acq.Purchase.Year).NetCashflow
	assert.InDelta(t, annual/model.PeriodsPerYear, step.NetCashflow, 1e-9)
}

func TestTransition_Formula(t *testing.T) {
	s := start(300000, 1000000)
	step := model.CascadeStep{PropertyValue: 500000, LoanAmount: 400000, TotalCashRequired: 125000, NetCashflow: 1500}

	next := Transition(s, step, releaseFactor)

	assert.InDelta(t, 300000-125000+1500+0.8*100000, next.AvailableFunds, 1e-9)
	assert.Equal(t, 600000.0, next.BorrowingCapacity)
	assert.Equal(t, 1200000.0, next.PortfolioValue)
	assert.Equal(t, 700000.0, next.TotalDebt)
	assert.Equal(t, next.PortfolioValue-next.TotalDebt, next.TotalEquity)
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	s := start(300000, 1000000)
	before := s
	_ = Transition(s, model.CascadeStep{PropertyValue: 1, LoanAmount: 1, TotalCashRequired: 1}, releaseFactor)
	assert.Equal(t, before, s)
}

func TestEquityRelease_CappedByRemainingCapacity(t *testing.T) {
	s := start(0, 450000)
	step := model.CascadeStep{PropertyValue: 500000, LoanAmount: 400000}

	assert.InDelta(t, 50000, EquityRelease(s, step, releaseFactor), 1e-9)
	assert.Equal(t, 0.0, EquityRelease(start(0, 300000), step, releaseFactor))
	assert.Equal(t, 0.0, EquityRelease(s, model.CascadeStep{PropertyValue: 100, LoanAmount: 200}, releaseFactor))
}

func TestTransition_OrderSensitivity(t *testing.T) {
	positive := StepFrom(acquisition("positive", 400000, 26000))
	negative := StepFrom(acquisition("negative", 600000, 20000))
	require.InDelta(t, 5000, positive.NetCashflow, 1e-6)
	require.InDelta(t, -2000, negative.NetCashflow, 1e-6)

	s0 := start(400000, 850000)

	// Funds available before the second purchase.
	afterPositive := Transition(s0, positive, releaseFactor)
	afterNegative := Transition(s0, negative, releaseFactor)
	assert.Greater(t, afterPositive.AvailableFunds, afterNegative.AvailableFunds)

	// With borrowing room tight, the order also changes the final ledger.
	ab := Transition(afterPositive, negative, releaseFactor)
	ba := Transition(afterNegative, positive, releaseFactor)
	assert.NotEqual(t, ab.AvailableFunds, ba.AvailableFunds)
	assert.InDelta(t, ab.PortfolioValue, ba.PortfolioValue, 1e-9)
	assert.InDelta(t, ab.TotalDebt, ba.TotalDebt, 1e-9)
	assert.InDelta(t, ab.TotalEquity, ab.PortfolioValue-ab.TotalDebt, 1e-9)
}

func TestReplay(t *testing.T) {
	steps := []model.CascadeStep{
		{PropertyValue: 400000, LoanAmount: 320000, TotalCashRequired: 100000, NetCashflow: 5000},
		{PropertyValue: 600000, LoanAmount: 480000, TotalCashRequired: 150000, NetCashflow: -2000},
	}
	s0 := start(400000, 900000)

	states := Replay(s0, steps, releaseFactor)
	require.Len(t, states, 3)
	assert.Equal(t, s0, states[0])
	assert.Equal(t, Transition(s0, steps[0], releaseFactor), states[1])
	assert.Equal(t, Transition(states[1], steps[1], releaseFactor), states[2])
	for _, s := range states {
		assert.InDelta(t, s.PortfolioValue-s.TotalDebt, s.TotalEquity, 1e-9)
	}
}

func TestAccrue(t *testing.T) {
	s := start(1000, 0)
	next := Accrue(s, 250)
	assert.Equal(t, 1250.0, next.AvailableFunds)
	assert.Equal(t, 1000.0, s.AvailableFunds)
}
