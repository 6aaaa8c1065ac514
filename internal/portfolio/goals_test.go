package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PropertyPlanner/internal/model"
)

func TestGoalsFromProjection_FirstYearWins(t *testing.T) {
	series := []model.YearMetrics{
		{Year: 2025, Metrics: model.PropertyMetrics{TotalEquity: 100, AnnualCashflow: -5}},
		{Year: 2026, Metrics: model.PropertyMetrics{TotalEquity: 200, AnnualCashflow: 0}},
		{Year: 2027, Metrics: model.PropertyMetrics{TotalEquity: 150, AnnualCashflow: 10}},
		{Year: 2028, Metrics: model.PropertyMetrics{TotalEquity: 300, AnnualCashflow: 20}},
	}

	got := GoalsFromProjection(series, model.Goals{Equity: 200, Cashflow: 10})
	require.NotNil(t, got.Equity)
	require.NotNil(t, got.Cashflow)
	assert.Equal(t, 2026, *got.Equity)
	assert.Equal(t, 2027, *got.Cashflow)
}

func TestGoalsFromProjection_NeverReached(t *testing.T) {
	series := []model.YearMetrics{
		{Year: 2025, Metrics: model.PropertyMetrics{TotalEquity: 100, AnnualCashflow: -5}},
	}
	got := GoalsFromProjection(series, model.Goals{Equity: 1e6, Cashflow: 1e5})
	assert.Nil(t, got.Equity)
	assert.Nil(t, got.Cashflow)
}

func TestDetectGoals_GrowingPortfolio(t *testing.T) {
	e := model.ExistingPortfolio{Value: 1000000, Debt: 600000, InterestRate: 6, GrowthCurve: model.FlatCurve(7)}

	got := DetectGoals(nil, e, model.Goals{Equity: 500000, Cashflow: 0}, 10)
	require.NotNil(t, got.Equity)
	// 1.0M grows 7%/yr: equity first exceeds 500k when value >= 1.1M, i.e. 2027.
	assert.Equal(t, 2027, *got.Equity)
	assert.Nil(t, got.Cashflow, "existing debt with no rent never turns cashflow positive")
}

func TestDetectGoals_PurchaseCountsFromItsYear(t *testing.T) {
	p := purchase("cash cow", 2028, 400000, 12)
	p.LoanAmount = 0

	got := DetectGoals([]model.PropertyPurchase{p}, model.ExistingPortfolio{}, model.Goals{Equity: 1, Cashflow: 1}, 10)
	require.NotNil(t, got.Equity)
	require.NotNil(t, got.Cashflow)
	assert.Equal(t, 2028, *got.Equity)
	assert.Equal(t, 2028, *got.Cashflow)
}
