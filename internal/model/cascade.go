package model

// CascadeState is the capital ledger after N purchases.
// TotalEquity always equals PortfolioValue - TotalDebt.
type CascadeState struct {
	AvailableFunds    float64 `json:"availableFunds"`
	BorrowingCapacity float64 `json:"borrowingCapacity"`
	PortfolioValue    float64 `json:"portfolioValue"`
	TotalDebt         float64 `json:"totalDebt"`
	TotalEquity       float64 `json:"totalEquity"`
}

// CascadeStep is what one purchase contributes to the ledger.
type CascadeStep struct {
	Title             string  `json:"title"`
	PropertyValue     float64 `json:"propertyValue"`
	LoanAmount        float64 `json:"loanAmount"`
	TotalCashRequired float64 `json:"totalCashRequired"`
	NetCashflow       float64 `json:"netCashflow"`
}
