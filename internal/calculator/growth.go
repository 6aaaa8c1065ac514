package calculator

import (
	"math"

	"PropertyPlanner/internal/model"
)

// PeriodRate converts an annual percentage rate into the per-period rate, so
// that compounding PeriodsPerYear periods reproduces the annual rate exactly.
func PeriodRate(annualPct float64) float64 {
	return math.Pow(1+annualPct/100, 1.0/model.PeriodsPerYear) - 1
}

// TierRate returns the annual rate that applies to the given 1-based period.
// Periods 1-2 use Year1, 3-6 Years2To3, 7-8 Year4 and 9+ Year5Plus.
func TierRate(c model.GrowthCurve, period int) float64 {
	switch {
	case period <= 2:
		return c.Year1
	case period <= 6:
		return c.Years2To3
	case period <= 8:
		return c.Year4
	default:
		return c.Year5Plus
	}
}

// Grow compounds value over the given number of elapsed periods.
// A fractional remainder compounds partially at the next period's tier rate.
func Grow(value, periods float64, c model.GrowthCurve) float64 {
	if periods <= 0 {
		return value
	}
	whole := int(math.Floor(periods))
	for p := 1; p <= whole; p++ {
		value *= 1 + PeriodRate(TierRate(c, p))
	}
	if frac := periods - float64(whole); frac > 0 {
		value *= math.Pow(1+PeriodRate(TierRate(c, whole+1)), frac)
	}
	return value
}

// PeriodsBetween returns the elapsed periods from one year to another, never negative.
func PeriodsBetween(fromYear, toYear float64) float64 {
	periods := (toYear - fromYear) * model.PeriodsPerYear
	if periods < 0 {
		return 0
	}
	return periods
}
