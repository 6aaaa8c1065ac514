package portfolio

import "PropertyPlanner/internal/model"

// DetectGoals scans the projection year by year and records the first year
// combined equity (resp. cashflow) reaches its goal.
func DetectGoals(purchases []model.PropertyPurchase, existing model.ExistingPortfolio, goals model.Goals, timelineYears int) model.GoalYears {
	return GoalsFromProjection(Project(purchases, existing, timelineYears), goals)
}

// GoalsFromProjection finds the goal years in an already computed projection.
func GoalsFromProjection(series []model.YearMetrics, goals model.Goals) model.GoalYears {
	var out model.GoalYears
	for _, ym := range series {
		year := ym.Year
		if out.Equity == nil && ym.Metrics.TotalEquity >= goals.Equity {
			out.Equity = &year
		}
		if out.Cashflow == nil && ym.Metrics.AnnualCashflow >= goals.Cashflow {
			out.Cashflow = &year
		}
		if out.Equity != nil && out.Cashflow != nil {
			break
		}
	}
	return out
}
