package model

// PropertyMetrics is a portfolio-level aggregate at one year.
type PropertyMetrics struct {
	PortfolioValue       float64 `json:"portfolioValue"`
	TotalEquity          float64 `json:"totalEquity"`
	TotalDebt            float64 `json:"totalDebt"`
	AnnualCashflow       float64 `json:"annualCashflow"`
	AnnualLoanRepayments float64 `json:"annualLoanRepayments"`
}

// Add returns the field-wise sum of m and o.
func (m PropertyMetrics) Add(o PropertyMetrics) PropertyMetrics {
	return PropertyMetrics{
		PortfolioValue:       m.PortfolioValue + o.PortfolioValue,
		TotalEquity:          m.TotalEquity + o.TotalEquity,
		TotalDebt:            m.TotalDebt + o.TotalDebt,
		AnnualCashflow:       m.AnnualCashflow + o.AnnualCashflow,
		AnnualLoanRepayments: m.AnnualLoanRepayments + o.AnnualLoanRepayments,
	}
}

// Combine sums any number of metrics. The zero value is the identity.
func Combine(ms ...PropertyMetrics) PropertyMetrics {
	var total PropertyMetrics
	for _, m := range ms {
		total = total.Add(m)
	}
	return total
}

// YearMetrics pairs a calendar year with its metrics.
type YearMetrics struct {
	Year    int             `json:"year"`
	Metrics PropertyMetrics `json:"metrics"`
}

// ExistingPortfolio is the client's pre-existing holdings.
// RentalYield is carried for reporting only; the baseline earns no rent.
type ExistingPortfolio struct {
	Value        float64     `json:"value" yaml:"value"`
	Debt         float64     `json:"debt" yaml:"debt"`
	InterestRate float64     `json:"interestRate" yaml:"interest_rate"`
	RentalYield  float64     `json:"rentalYield" yaml:"rental_yield"`
	GrowthCurve  GrowthCurve `json:"growthCurve" yaml:"growth_curve"`
}

// Goals are the client's equity and cashflow targets.
type Goals struct {
	Equity   float64 `json:"equityGoal" yaml:"equity_goal"`
	Cashflow float64 `json:"cashflowGoal" yaml:"cashflow_goal"`
}

// GoalYears records the first year each goal is reached; nil means never within the timeline.
type GoalYears struct {
	Equity   *int `json:"equityGoalYear"`
	Cashflow *int `json:"cashflowGoalYear"`
}

// Profile is the read-only client profile supplied by the profile store.
type Profile struct {
	Name              string            `json:"name" yaml:"name"`
	DepositPool       float64           `json:"depositPool" yaml:"deposit_pool"`
	BorrowingCapacity float64           `json:"borrowingCapacity" yaml:"borrowing_capacity"`
	AnnualSavings     float64           `json:"annualSavings" yaml:"annual_savings"`
	ServiceableIncome float64           `json:"serviceableIncome" yaml:"serviceable_income"`
	Existing          ExistingPortfolio `json:"existing" yaml:"existing"`
	Goals             Goals             `json:"goals" yaml:"goals"`
	TimelineYears     int               `json:"timelineYears" yaml:"timeline_years"`
}
