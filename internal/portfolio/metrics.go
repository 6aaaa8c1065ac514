// Package portfolio aggregates existing holdings and scheduled purchases into
// portfolio-level metrics and projects them across a timeline.
package portfolio

import (
	"PropertyPlanner/internal/calculator"
	"PropertyPlanner/internal/model"
)

// ExistingMetrics values the client's existing portfolio at year.
// The baseline earns no rent; its cost is flat interest on the debt.
func ExistingMetrics(e model.ExistingPortfolio, year float64) model.PropertyMetrics {
	value := calculator.Grow(e.Value, calculator.PeriodsBetween(model.BaseYear, year), e.GrowthCurve)
	interest := e.Debt * e.InterestRate / 100
	return model.PropertyMetrics{
		PortfolioValue:       value,
		TotalEquity:          value - e.Debt,
		TotalDebt:            e.Debt,
		AnnualCashflow:       -interest,
		AnnualLoanRepayments: interest,
	}
}

// PurchaseMetrics is one purchase's contribution at year; zero before it is bought.
func PurchaseMetrics(p model.PropertyPurchase, year float64) model.PropertyMetrics {
	if p.Year > year {
		return model.PropertyMetrics{}
	}
	a := calculator.AnalyzeCashflow(p, year)
	return model.PropertyMetrics{
		PortfolioValue:       a.CurrentValue,
		TotalEquity:          a.Equity,
		TotalDebt:            a.Debt,
		AnnualCashflow:       a.NetCashflow,
		AnnualLoanRepayments: a.MortgagePayment,
	}
}

// NewPurchaseMetrics sums the purchases bought at or before year.
func NewPurchaseMetrics(purchases []model.PropertyPurchase, year float64) model.PropertyMetrics {
	var m model.PropertyMetrics
	for _, p := range purchases {
		m = m.Add(PurchaseMetrics(p, year))
	}
	return m
}

// Calculate combines the existing portfolio and the purchases at year.
func Calculate(purchases []model.PropertyPurchase, existing model.ExistingPortfolio, year float64) model.PropertyMetrics {
	return model.Combine(ExistingMetrics(existing, year), NewPurchaseMetrics(purchases, year))
}

// Project returns the combined metrics for every year from BaseYear to
// BaseYear+timelineYears inclusive.
func Project(purchases []model.PropertyPurchase, existing model.ExistingPortfolio, timelineYears int) []model.YearMetrics {
	if timelineYears < 0 {
		timelineYears = 0
	}
	out := make([]model.YearMetrics, 0, timelineYears+1)
	for y := model.BaseYear; y <= model.BaseYear+timelineYears; y++ {
		out = append(out, model.YearMetrics{Year: y, Metrics: Calculate(purchases, existing, float64(y))})
	}
	return out
}
