package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"PropertyPlanner/internal/model"
)

var testCurve = model.GrowthCurve{Year1: 12, Years2To3: 8, Year4: 5, Year5Plus: 3}

func TestPeriodRate_TwoPeriodsEqualOneYear(t *testing.T) {
	for _, annual := range []float64{0, 3, 6.5, 12.5, -4} {
		r := PeriodRate(annual)
		assert.InDelta(t, 1+annual/100, (1+r)*(1+r), 1e-12, "annual=%v", annual)
	}
}

func TestGrow_CompoundingIdentity(t *testing.T) {
	for _, v := range []float64{1, 350000, 1234567.89} {
		got := Grow(v, 2, testCurve)
		assert.InDelta(t, v*(1+testCurve.Year1/100), got, v*1e-12)
	}
}

func TestTierRate_Boundaries(t *testing.T) {
	tests := []struct {
		period int
		want   float64
	}{
		{1, 12}, {2, 12},
		{3, 8}, {6, 8},
		{7, 5}, {8, 5},
		{9, 3}, {40, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierRate(testCurve, tt.period), "period %d", tt.period)
	}
}

func TestGrow_TierBoundaryAtPeriodSeven(t *testing.T) {
	v := 500000.0
	g5 := Grow(v, 5, testCurve)
	g6 := Grow(v, 6, testCurve)
	g7 := Grow(v, 7, testCurve)
	g8 := Grow(v, 8, testCurve)
	g9 := Grow(v, 9, testCurve)

	assert.InDelta(t, 1+PeriodRate(testCurve.Years2To3), g6/g5, 1e-12)
	assert.InDelta(t, 1+PeriodRate(testCurve.Year4), g7/g6, 1e-12)
	assert.InDelta(t, 1+PeriodRate(testCurve.Year4), g8/g7, 1e-12)
	assert.InDelta(t, 1+PeriodRate(testCurve.Year5Plus), g9/g8, 1e-12)
}

func TestGrow_FullTimeline(t *testing.T) {
	v := 100.0
	want := v * (1 + 0.12) * (1 + 0.08) * (1 + 0.08) * (1 + 0.05) * (1 + 0.03)
	assert.InDelta(t, want, Grow(v, 10, testCurve), 1e-9)
}

func TestGrow_NonPositivePeriodsReturnValue(t *testing.T) {
	assert.Equal(t, 420000.0, Grow(420000, 0, testCurve))
	assert.Equal(t, 420000.0, Grow(420000, -3, testCurve))
}

func TestGrow_FractionalPeriod(t *testing.T) {
	v := 1000.0
	half := Grow(v, 2.5, testCurve)
	assert.Greater(t, half, Grow(v, 2, testCurve))
	assert.Less(t, half, Grow(v, 3, testCurve))
}

func TestGrow_Deterministic(t *testing.T) {
	a := Grow(987654.321, 17, testCurve)
	b := Grow(987654.321, 17, testCurve)
	assert.Equal(t, a, b)
}

func TestPeriodsBetween(t *testing.T) {
	assert.Equal(t, 0.0, PeriodsBetween(2027, 2025))
	assert.Equal(t, 0.0, PeriodsBetween(2027, 2027))
	assert.Equal(t, 3.0, PeriodsBetween(2025.5, 2027))
}
