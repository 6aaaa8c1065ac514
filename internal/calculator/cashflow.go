package calculator

import (
	"math"

	"PropertyPlanner/internal/model"
)

const (
	// ExpenseInflationRate is the fixed annual inflation (percent) applied to operating expenses.
	ExpenseInflationRate = 3.0
	// LoanTermYears is the amortization term of principal-and-interest loans.
	LoanTermYears = 30
)

// InflationFactor is the expense multiplier after the given elapsed periods.
func InflationFactor(periods float64) float64 {
	return math.Pow(1+ExpenseInflationRate/100, periods/model.PeriodsPerYear)
}

// AmortizedPayment is the level annual payment that repays loan over years at ratePct.
func AmortizedPayment(loan, ratePct float64, years int) float64 {
	if years <= 0 {
		return loan
	}
	r := ratePct / 100
	if r == 0 {
		return loan / float64(years)
	}
	return loan * r / (1 - math.Pow(1+r, -float64(years)))
}

// MortgagePayment is the annual repayment for the loan type.
func MortgagePayment(loan, ratePct float64, t model.LoanType) float64 {
	if t == model.PrincipalAndInterest {
		return AmortizedPayment(loan, ratePct, LoanTermYears)
	}
	return loan * ratePct / 100
}

// expenseLines fills the expense breakdown of a, returning the total.
func expenseLines(a *model.CashflowAnalysis, e model.ExpenseAssumptions, rent, value, inflation float64) float64 {
	a.ManagementFee = rent * e.ManagementFeePct / 100 * inflation
	a.CouncilRates = e.CouncilRates * inflation
	a.Insurance = e.Insurance * inflation
	a.Maintenance = value * e.MaintenancePct / 100 * inflation
	a.VacancyAllowance = rent * e.VacancyPct / 100 * inflation
	a.Strata = e.Strata * inflation
	return a.ManagementFee + a.CouncilRates + a.Insurance + a.Maintenance + a.VacancyAllowance + a.Strata
}

// AnalyzeCashflow computes the income, costs and position of p at currentYear.
// Years at or before the purchase clamp to the purchase-time value. The loan
// balance never amortizes, even for principal-and-interest loans.
func AnalyzeCashflow(p model.PropertyPurchase, currentYear float64) model.CashflowAnalysis {
	periods := PeriodsBetween(p.Year, currentYear)
	a := model.CashflowAnalysis{
		Year:         currentYear,
		PeriodsOwned: periods,
		CurrentValue: Grow(p.Cost, periods, p.GrowthCurve),
		Debt:         p.LoanAmount,
	}
	a.RentalIncome = a.CurrentValue * p.RentalYield / 100
	a.MortgagePayment = MortgagePayment(p.LoanAmount, p.InterestRate, p.LoanType)
	a.TotalExpenses = expenseLines(&a, p.Expenses, a.RentalIncome, a.CurrentValue, InflationFactor(periods))
	a.NetCashflow = a.RentalIncome - a.MortgagePayment - a.TotalExpenses
	a.Equity = a.CurrentValue - a.Debt
	return a
}
