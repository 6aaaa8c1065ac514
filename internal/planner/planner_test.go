package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PropertyPlanner/internal/engine"
	"PropertyPlanner/internal/model"
)

func newPlanner() *Planner {
	return New(engine.New(model.DefaultAssumptions(), nil, nil), nil)
}

func unit(title string) model.PropertyInstance {
	return model.PropertyInstance{Title: title, PurchasePrice: 400000, LVR: 80, RentPerWeek: 450, InterestRate: 6}
}

func TestPeriodYear(t *testing.T) {
	assert.Equal(t, 2025.0, PeriodYear(0))
	assert.Equal(t, 2025.5, PeriodYear(1))
	assert.Equal(t, 2030.0, PeriodYear(10))
}

func TestPlan_OnePurchasePerPeriod(t *testing.T) {
	profile := model.Profile{Name: "rich", DepositPool: 1e6, BorrowingCapacity: 1e7, ServiceableIncome: 1e5, TimelineYears: 5}

	plan, err := newPlanner().Plan(context.Background(), profile, nil, []model.PropertyInstance{unit("a"), unit("b")})
	require.NoError(t, err)

	require.Len(t, plan.Scheduled, 2)
	assert.Empty(t, plan.Deferred)
	assert.Equal(t, 0, plan.Scheduled[0].Period)
	assert.Equal(t, 1, plan.Scheduled[1].Period)
	assert.Equal(t, 2025.5, plan.Scheduled[1].Year)
	assert.Equal(t, 2025.5, plan.Scheduled[1].Acquisition.Purchase.Year)

	require.Len(t, plan.States, 3)
	for _, s := range plan.States {
		assert.InDelta(t, s.PortfolioValue-s.TotalDebt, s.TotalEquity, 1e-6)
	}
	assert.InDelta(t, 1e7-640000, plan.States[2].BorrowingCapacity, 1e-6)
	assert.Len(t, plan.Projection, 6)
	assert.Len(t, plan.Purchases(), 2)
}

func TestPlan_SavingsUnlockLaterPurchase(t *testing.T) {
	profile := model.Profile{
		Name:              "saver",
		DepositPool:       100000,
		BorrowingCapacity: 2000000,
		AnnualSavings:     40000,
		ServiceableIncome: 1e5,
		TimelineYears:     10,
	}

	plan, err := newPlanner().Plan(context.Background(), profile, nil, []model.PropertyInstance{unit("first"), unit("second")})
	require.NoError(t, err)

	require.Len(t, plan.Scheduled, 2)
	assert.Equal(t, 0, plan.Scheduled[0].Period)
	assert.Greater(t, plan.Scheduled[1].Period, 1, "second purchase waits for savings")
}

func TestPlan_DeferredBeyondTimeline(t *testing.T) {
	profile := model.Profile{Name: "short", DepositPool: 100000, BorrowingCapacity: 600000, ServiceableIncome: 20000, TimelineYears: 2}
	mansion := model.PropertyInstance{Title: "mansion", PurchasePrice: 5000000, LVR: 80, RentPerWeek: 900, InterestRate: 6}

	plan, err := newPlanner().Plan(context.Background(), profile, nil, []model.PropertyInstance{mansion, unit("never reached")})
	require.NoError(t, err)

	assert.Empty(t, plan.Scheduled)
	require.Len(t, plan.Deferred, 2)
	d := plan.Deferred[0]
	assert.True(t, d.BeyondTimeline)
	assert.False(t, d.Validation.Passed())
	assert.NotEmpty(t, d.Fixes)
	assert.Len(t, plan.States, 1)
	assert.Len(t, plan.Projection, 3)
}

func TestPlan_Goals(t *testing.T) {
	profile := model.Profile{
		DepositPool:       1e6,
		BorrowingCapacity: 1e7,
		ServiceableIncome: 1e5,
		TimelineYears:     10,
		Goals:             model.Goals{Equity: 50000, Cashflow: 1e9},
	}

	plan, err := newPlanner().Plan(context.Background(), profile, nil, []model.PropertyInstance{unit("a")})
	require.NoError(t, err)

	require.NotNil(t, plan.Goals.Equity)
	assert.Equal(t, model.BaseYear, *plan.Goals.Equity)
	assert.Nil(t, plan.Goals.Cashflow)
}

func TestPlan_Errors(t *testing.T) {
	profile := model.Profile{DepositPool: 1e6, BorrowingCapacity: 1e7}

	_, err := newPlanner().Plan(context.Background(), profile, nil, []model.PropertyInstance{{Title: "free"}})
	assert.ErrorIs(t, err, model.ErrZeroPrice)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newPlanner().Plan(ctx, profile, nil, []model.PropertyInstance{unit("a")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan_EmptyQueueStillProjects(t *testing.T) {
	profile := model.Profile{Existing: model.ExistingPortfolio{Value: 500000, Debt: 200000, GrowthCurve: model.FlatCurve(5)}}

	plan, err := newPlanner().Plan(context.Background(), profile, nil, nil)
	require.NoError(t, err)
	assert.Len(t, plan.Projection, DefaultTimelineYears+1)
	assert.Equal(t, model.BaseYear+DefaultTimelineYears, plan.Projection[DefaultTimelineYears].Year)
}

func TestPlan_OwnedPurchasesSeedLedgerAndProjection(t *testing.T) {
	profile := model.Profile{Name: "owner", DepositPool: 1e6, BorrowingCapacity: 1e7, ServiceableIncome: 1e5, TimelineYears: 3}
	owned := []model.PropertyPurchase{{
		Title:        "owned",
		Year:         model.BaseYear,
		Cost:         400000,
		LoanAmount:   320000,
		RentalYield:  5,
		InterestRate: 6,
		LoanType:     model.InterestOnly,
	}}

	plan, err := newPlanner().Plan(context.Background(), profile, owned, []model.PropertyInstance{unit("a")})
	require.NoError(t, err)

	require.Len(t, plan.Owned, 1)
	assert.InDelta(t, 400000, plan.States[0].PortfolioValue, 1e-6)
	assert.InDelta(t, 320000, plan.States[0].TotalDebt, 1e-6)
	assert.InDelta(t, 80000, plan.States[0].TotalEquity, 1e-6)
	assert.Equal(t, 1e6, plan.States[0].AvailableFunds)

	require.Len(t, plan.Scheduled, 1)
	assert.Len(t, plan.Purchases(), 1)
	require.Len(t, plan.Projection, 4)
	assert.InDelta(t, 800000, plan.Projection[0].Metrics.PortfolioValue, 1e-6)
	assert.InDelta(t, 640000, plan.Projection[0].Metrics.TotalDebt, 1e-6)
}

func TestPeriodIncome_SkipsPurchasesNotYetHeld(t *testing.T) {
	profile := model.Profile{AnnualSavings: 40000}
	later := model.PropertyPurchase{Year: 2027, Cost: 400000, LoanAmount: 320000, RentalYield: 5, InterestRate: 6}

	assert.InDelta(t, 20000, periodIncome(profile, []model.PropertyPurchase{later}, 2025.5), 1e-9)

	held := later
	held.Year = model.BaseYear
	// 20000 rent - 19200 interest a year, half of it per period.
	assert.InDelta(t, 20000+400, periodIncome(profile, []model.PropertyPurchase{held}, 2025), 1e-6)
}
