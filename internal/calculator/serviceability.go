package calculator

import "PropertyPlanner/internal/model"

// ServiceabilityAssessment is a lender-style view of a purchase at settlement.
type ServiceabilityAssessment struct {
	ShadedRent        float64 `json:"shadedRent"`
	AssessmentRate    float64 `json:"assessmentRate"`
	MortgagePayment   float64 `json:"mortgagePayment"`
	TotalExpenses     float64 `json:"totalExpenses"`
	ServiceableIncome float64 `json:"serviceableIncome"`
	Surplus           float64 `json:"surplus"`
}

// AssessServiceability evaluates p at its purchase year with shaded rent and a
// buffered assessment rate. income is the borrower's annual income available
// for servicing after living costs.
func AssessServiceability(p model.PropertyPurchase, s model.ServiceabilityAssumptions, income float64) ServiceabilityAssessment {
	var a model.CashflowAnalysis
	rent := p.Cost * p.RentalYield / 100
	out := ServiceabilityAssessment{
		ShadedRent:        rent * s.RentShadingPct / 100,
		AssessmentRate:    p.InterestRate + s.BufferRate,
		ServiceableIncome: income,
	}
	out.MortgagePayment = MortgagePayment(p.LoanAmount, out.AssessmentRate, p.LoanType)
	out.TotalExpenses = expenseLines(&a, p.Expenses, rent, p.Cost, 1)
	out.Surplus = out.ShadedRent - out.MortgagePayment - out.TotalExpenses + income
	return out
}
