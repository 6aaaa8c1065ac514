package model

// ServiceabilityAssumptions are the lender-style servicing parameters.
type ServiceabilityAssumptions struct {
	// BufferRate is added to the loan rate, in percentage points.
	BufferRate float64 `json:"bufferRate" yaml:"buffer_rate"`
	// RentShadingPct is the share of rent a lender counts.
	RentShadingPct float64 `json:"rentShadingPct" yaml:"rent_shading_pct"`
}

// LMIBand charges PremiumPct of the loan for LVRs above MinLVR up to MaxLVR.
type LMIBand struct {
	MinLVR     float64 `json:"minLvr" yaml:"min_lvr"`
	MaxLVR     float64 `json:"maxLvr" yaml:"max_lvr"`
	PremiumPct float64 `json:"premiumPct" yaml:"premium_pct"`
}

// LMIAssumptions is the mortgage insurance table.
type LMIAssumptions struct {
	ThresholdLVR float64   `json:"thresholdLvr" yaml:"threshold_lvr"`
	Bands        []LMIBand `json:"bands" yaml:"bands"`
}

// StampDutyBracket charges Base plus RatePct of the amount above Threshold.
type StampDutyBracket struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Base      float64 `json:"base" yaml:"base"`
	RatePct   float64 `json:"ratePct" yaml:"rate_pct"`
}

// OneOffCost is a fixed settlement cost line.
type OneOffCost struct {
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// Assumptions is the immutable configuration snapshot passed into the engine.
type Assumptions struct {
	Growth              GrowthCurve                   `json:"growth" yaml:"growth"`
	Expenses            ExpenseAssumptions            `json:"expenses" yaml:"expenses"`
	Serviceability      ServiceabilityAssumptions     `json:"serviceability" yaml:"serviceability"`
	EquityReleaseFactor float64                       `json:"equityReleaseFactor" yaml:"equity_release_factor"`
	MaxLVR              float64                       `json:"maxLvr" yaml:"max_lvr"`
	LMI                 LMIAssumptions                `json:"lmi" yaml:"lmi"`
	StampDuty           []StampDutyBracket            `json:"stampDuty" yaml:"stamp_duty"`
	StampDutyByState    map[string][]StampDutyBracket `json:"stampDutyByState,omitempty" yaml:"stamp_duty_by_state"`
	OneOffCosts         []OneOffCost                  `json:"oneOffCosts" yaml:"one_off_costs"`
	PropertyTypes       map[string]PropertyDefaults   `json:"propertyTypes,omitempty" yaml:"property_types"`
}

// GrowthFor resolves an optional curve override against the default curve.
func (a Assumptions) GrowthFor(c *GrowthCurve) GrowthCurve {
	if c != nil {
		return *c
	}
	return a.Growth
}

// ExpensesFor resolves an optional expense override against the defaults.
func (a Assumptions) ExpensesFor(e *ExpenseAssumptions) ExpenseAssumptions {
	if e != nil {
		return *e
	}
	return a.Expenses
}

// DefaultAssumptions returns a fresh snapshot of the built-in planning assumptions.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		Growth: GrowthCurve{Year1: 12.5, Years2To3: 10, Year4: 7.5, Year5Plus: 6},
		Expenses: ExpenseAssumptions{
			ManagementFeePct: 6.6,
			CouncilRates:     2000,
			Insurance:        1500,
			MaintenancePct:   0.5,
			VacancyPct:       2,
		},
		Serviceability:      ServiceabilityAssumptions{BufferRate: 3, RentShadingPct: 80},
		EquityReleaseFactor: 0.8,
		MaxLVR:              95,
		LMI: LMIAssumptions{
			ThresholdLVR: 80,
			Bands: []LMIBand{
				{MinLVR: 80, MaxLVR: 85, PremiumPct: 1.0},
				{MinLVR: 85, MaxLVR: 90, PremiumPct: 2.0},
				{MinLVR: 90, MaxLVR: 95, PremiumPct: 3.2},
				{MinLVR: 95, MaxLVR: 100, PremiumPct: 4.5},
			},
		},
		StampDuty: []StampDutyBracket{
			{Threshold: 0, Base: 0, RatePct: 1.25},
			{Threshold: 16000, Base: 200, RatePct: 1.5},
			{Threshold: 35000, Base: 485, RatePct: 1.75},
			{Threshold: 93000, Base: 1500, RatePct: 3.5},
			{Threshold: 351000, Base: 10530, RatePct: 4.5},
			{Threshold: 1168000, Base: 47295, RatePct: 5.5},
		},
		OneOffCosts: []OneOffCost{
			{Name: "conveyancing", Amount: 2000},
			{Name: "building_and_pest", Amount: 600},
			{Name: "loan_establishment", Amount: 600},
			{Name: "buyers_agent_misc", Amount: 800},
		},
		PropertyTypes: map[string]PropertyDefaults{
			"unit":      {PurchasePrice: 450000, RentPerWeek: 480, LVR: 80, InterestRate: 6.5, LoanType: InterestOnly},
			"townhouse": {PurchasePrice: 600000, RentPerWeek: 580, LVR: 80, InterestRate: 6.5, LoanType: InterestOnly},
			"house":     {PurchasePrice: 750000, RentPerWeek: 650, LVR: 80, InterestRate: 6.5, LoanType: InterestOnly},
		},
	}
}
