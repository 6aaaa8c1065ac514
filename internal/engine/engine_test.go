package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PropertyPlanner/internal/cascade"
	"PropertyPlanner/internal/model"
)

func newEngine() *Engine {
	return New(model.DefaultAssumptions(), nil, nil)
}

func baseRequest() Request {
	profile := model.Profile{
		DepositPool:       220000,
		BorrowingCapacity: 1050000,
		Existing:          model.ExistingPortfolio{Value: 700000, Debt: 300000, InterestRate: 6, GrowthCurve: model.FlatCurve(5)},
	}
	return Request{
		Instance:          model.PropertyInstance{Title: "First buy", PurchasePrice: 500000, LVR: 90, RentPerWeek: 550, InterestRate: 6},
		Year:              model.BaseYear,
		State:             cascade.Initial(profile),
		Existing:          profile.Existing,
		ServiceableIncome: 60000,
	}
}

func TestRecompute_Passing(t *testing.T) {
	res, err := newEngine().Recompute(baseRequest())
	require.NoError(t, err)

	assert.True(t, res.Validation.Passed())
	assert.Len(t, res.Validation.Checks, 3)
	assert.Empty(t, res.Fixes)

	assert.InDelta(t, 450000, res.Acquisition.Purchase.LoanAmount, 1e-6)
	// 50000 deposit + 17235 duty + 9000 LMI + 4000 one-off
	assert.InDelta(t, 80235, res.Acquisition.Costs.TotalCashRequired(), 1e-6)

	assert.InDelta(t, 1200000, res.Metrics.PortfolioValue, 1e-6)
	assert.InDelta(t, 750000, res.Metrics.TotalDebt, 1e-6)
	assert.InDelta(t, res.Metrics.PortfolioValue-res.Metrics.TotalDebt, res.Metrics.TotalEquity, 1e-6)

	assert.InDelta(t, 220000-80235+res.Step.NetCashflow+40000, res.NextState.AvailableFunds, 1e-6)
	assert.InDelta(t, 600000, res.NextState.BorrowingCapacity, 1e-6)
	assert.InDelta(t, res.Cashflow.NetCashflow/model.PeriodsPerYear, res.Step.NetCashflow, 1e-9)
	assert.GreaterOrEqual(t, res.Serviceability.Surplus, 0.0)
}

func TestRecompute_AdjustmentsOverlayAndSolve(t *testing.T) {
	req := baseRequest()
	req.ServiceableIncome = 50000
	req.Adjustments = map[model.Field]float64{
		model.FieldPurchasePrice: 2000000,
		model.FieldLVR:           95,
		model.FieldRentPerWeek:   200,
		model.FieldInterestRate:  6.5,
	}

	res, err := newEngine().Recompute(req)
	require.NoError(t, err)

	assert.Equal(t, 2000000.0, res.Instance.PurchasePrice)
	assert.Equal(t, 500000.0, req.Instance.PurchasePrice, "request instance is not mutated")
	assert.Len(t, res.Validation.Violations, 3)
	require.NotEmpty(t, res.Fixes)
	for _, f := range res.Fixes {
		_, violated := res.Validation.Violation(f.Violation)
		assert.True(t, violated, "fix for %s without a violation", f.Violation)
	}
}

func TestRecompute_Errors(t *testing.T) {
	req := baseRequest()
	req.Adjustments = map[model.Field]float64{"colour": 1}
	_, err := newEngine().Recompute(req)
	assert.ErrorIs(t, err, model.ErrUnknownField)

	req = baseRequest()
	req.Instance.PurchasePrice = 0
	_, err = newEngine().Recompute(req)
	assert.ErrorIs(t, err, model.ErrZeroPrice)
}

func TestRecompute_IncludesScheduledPurchases(t *testing.T) {
	e := newEngine()
	first, err := e.Recompute(baseRequest())
	require.NoError(t, err)

	req := baseRequest()
	req.Year = model.BaseYear + 1
	req.State = first.NextState
	req.Purchases = []model.PropertyPurchase{first.Acquisition.Purchase}
	req.Instance.Title = "Second buy"

	second, err := e.Recompute(req)
	require.NoError(t, err)
	assert.InDelta(t, 300000+450000+450000, second.Metrics.TotalDebt, 1e-6)
	assert.Greater(t, second.Metrics.PortfolioValue, 700000+500000+500000.0)
}

func TestRecompute_Concurrent(t *testing.T) {
	e := newEngine()
	req := baseRequest()
	req.Adjustments = map[model.Field]float64{model.FieldPurchasePrice: 1500000}
	want, err := e.Recompute(req)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = e.Recompute(req)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
