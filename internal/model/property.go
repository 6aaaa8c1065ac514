package model

import "errors"

var (
	// ErrZeroPrice is returned when a ratio would be computed against a zero purchase price.
	ErrZeroPrice = errors.New("purchase price is zero")
	// ErrUnknownField is returned when an adjustment names a field the engine cannot set.
	ErrUnknownField = errors.New("unknown adjustable field")
	// ErrInvalidRecord is returned when a loosely-typed record cannot be normalized.
	ErrInvalidRecord = errors.New("invalid property record")
)

// LoanType selects how the mortgage payment is computed.
type LoanType string

const (
	InterestOnly         LoanType = "IO"
	PrincipalAndInterest LoanType = "PI"
)

// ExpenseAssumptions describes the operating costs of one property.
// Pct fields are percentages, the rest are annual dollar amounts.
type ExpenseAssumptions struct {
	ManagementFeePct float64 `json:"managementFeePct" yaml:"management_fee_pct"`
	CouncilRates     float64 `json:"councilRates" yaml:"council_rates"`
	Insurance        float64 `json:"insurance" yaml:"insurance"`
	MaintenancePct   float64 `json:"maintenancePct" yaml:"maintenance_pct"`
	VacancyPct       float64 `json:"vacancyPct" yaml:"vacancy_pct"`
	Strata           float64 `json:"strata" yaml:"strata"`
}

// PropertyPurchase is a scheduled purchase. Only LoanType may change after creation.
type PropertyPurchase struct {
	Title           string             `json:"title"`
	Year            float64            `json:"year"`
	Cost            float64            `json:"cost"`
	LoanAmount      float64            `json:"loanAmount"`
	DepositRequired float64            `json:"depositRequired"`
	RentalYield     float64            `json:"rentalYield"`
	GrowthCurve     GrowthCurve        `json:"growthCurve"`
	InterestRate    float64            `json:"interestRate"`
	LoanType        LoanType           `json:"loanType"`
	Expenses        ExpenseAssumptions `json:"expenses"`
}

// WithLoanType returns a copy of the purchase with its loan type toggled to t.
func (p PropertyPurchase) WithLoanType(t LoanType) PropertyPurchase {
	p.LoanType = t
	return p
}

// PropertyInstance is the user-editable description of a prospective purchase.
// Nil pointer fields fall back to the assumptions snapshot.
type PropertyInstance struct {
	Title         string              `json:"title"`
	Type          string              `json:"type,omitempty"`
	State         string              `json:"state,omitempty"`
	PurchasePrice float64             `json:"purchasePrice"`
	LVR           float64             `json:"lvr"`
	RentPerWeek   float64             `json:"rentPerWeek"`
	InterestRate  float64             `json:"interestRate"`
	LoanType      LoanType            `json:"loanType"`
	Growth        *GrowthCurve        `json:"growthCurve,omitempty"`
	Expenses      *ExpenseAssumptions `json:"expenses,omitempty"`
	LMIWaiver     bool                `json:"lmiWaiver,omitempty"`
	CapitalizeLMI bool                `json:"capitalizeLmi,omitempty"`
	OneOffCosts   *float64            `json:"oneOffCosts,omitempty"`
}

// LoanBase is the loan before any capitalized LMI.
func (i PropertyInstance) LoanBase() float64 {
	return i.PurchasePrice * i.LVR / 100
}

// PropertyDefaults seeds a PropertyInstance for a property type before user edits.
type PropertyDefaults struct {
	PurchasePrice float64      `json:"purchasePrice" yaml:"purchase_price"`
	RentPerWeek   float64      `json:"rentPerWeek" yaml:"rent_per_week"`
	LVR           float64      `json:"lvr" yaml:"lvr"`
	InterestRate  float64      `json:"interestRate" yaml:"interest_rate"`
	LoanType      LoanType     `json:"loanType" yaml:"loan_type"`
	State         string       `json:"state" yaml:"state"`
	Growth        *GrowthCurve `json:"growthCurve,omitempty" yaml:"growth_curve"`
}

// PurchaseCosts is the cash and debt make-up of an acquisition.
type PurchaseCosts struct {
	Deposit        float64 `json:"deposit"`
	StampDuty      float64 `json:"stampDuty"`
	LMI            float64 `json:"lmi"`
	LMICapitalized bool    `json:"lmiCapitalized"`
	OneOff         float64 `json:"oneOff"`
}

// UpfrontLMI is the LMI paid in cash (zero when capitalized into the loan).
func (c PurchaseCosts) UpfrontLMI() float64 {
	if c.LMICapitalized {
		return 0
	}
	return c.LMI
}

// TotalCashRequired is the cash needed to settle the purchase.
func (c PurchaseCosts) TotalCashRequired() float64 {
	return c.Deposit + c.StampDuty + c.UpfrontLMI() + c.OneOff
}

// Acquisition is a priced purchase ready for the cascade and the validator.
type Acquisition struct {
	Purchase PropertyPurchase `json:"purchase"`
	Costs    PurchaseCosts    `json:"costs"`
}

// CashflowAnalysis is the state of one property at one point in time.
type CashflowAnalysis struct {
	Year             float64 `json:"year"`
	PeriodsOwned     float64 `json:"periodsOwned"`
	CurrentValue     float64 `json:"currentValue"`
	RentalIncome     float64 `json:"rentalIncome"`
	MortgagePayment  float64 `json:"mortgagePayment"`
	ManagementFee    float64 `json:"managementFee"`
	CouncilRates     float64 `json:"councilRates"`
	Insurance        float64 `json:"insurance"`
	Maintenance      float64 `json:"maintenance"`
	VacancyAllowance float64 `json:"vacancyAllowance"`
	Strata           float64 `json:"strata"`
	TotalExpenses    float64 `json:"totalExpenses"`
	NetCashflow      float64 `json:"netCashflow"`
	Debt             float64 `json:"debt"`
	Equity           float64 `json:"equity"`
}
