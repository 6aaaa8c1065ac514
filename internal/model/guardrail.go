package model

// GuardrailType names one of the three feasibility tests.
type GuardrailType string

const (
	GuardrailDeposit        GuardrailType = "deposit"
	GuardrailBorrowing      GuardrailType = "borrowing"
	GuardrailServiceability GuardrailType = "serviceability"
)

// GuardrailCheck is the outcome of one test. Shortfall is Required - Available,
// so a negative shortfall is a surplus.
type GuardrailCheck struct {
	Type      GuardrailType `json:"type"`
	Passed    bool          `json:"passed"`
	Required  float64       `json:"required"`
	Available float64       `json:"available"`
	Shortfall float64       `json:"shortfall"`
}

// Surplus is the headroom left when the check passes.
func (c GuardrailCheck) Surplus() float64 {
	return -c.Shortfall
}

// GuardrailViolation is a failed test with a positive shortfall.
type GuardrailViolation struct {
	Type      GuardrailType `json:"type"`
	Shortfall float64       `json:"shortfall"`
	Message   string        `json:"message"`
}

// ValidationResult holds every check and the violations among them.
type ValidationResult struct {
	Checks     []GuardrailCheck     `json:"checks"`
	Violations []GuardrailViolation `json:"violations"`
}

// Passed reports whether no test failed.
func (r ValidationResult) Passed() bool {
	return len(r.Violations) == 0
}

// Check returns the check of the given type.
func (r ValidationResult) Check(t GuardrailType) (GuardrailCheck, bool) {
	for _, c := range r.Checks {
		if c.Type == t {
			return c, true
		}
	}
	return GuardrailCheck{}, false
}

// Violation returns the violation of the given type, if that test failed.
func (r ValidationResult) Violation(t GuardrailType) (GuardrailViolation, bool) {
	for _, v := range r.Violations {
		if v.Type == t {
			return v, true
		}
	}
	return GuardrailViolation{}, false
}

// Field is an adjustable PropertyInstance field.
type Field string

const (
	FieldPurchasePrice  Field = "purchasePrice"
	FieldLVR            Field = "lvr"
	FieldRentPerWeek    Field = "rentPerWeek"
	FieldInterestRate   Field = "interestRate"
	FieldOneOffCosts    Field = "oneOffCosts"
	FieldLMICapitalized Field = "lmiCapitalized"
)

// ActionType tells the caller how a fix is applied.
type ActionType string

const (
	ActionAdjustField   ActionType = "adjustField"
	ActionEditCosts     ActionType = "editCosts"
	ActionCapitalizeLMI ActionType = "capitalizeLmi"
)

// SuggestedFix is an advisory adjustment that would clear one violation.
type SuggestedFix struct {
	Violation      GuardrailType `json:"violation"`
	Field          Field         `json:"field"`
	CurrentValue   float64       `json:"currentValue"`
	SuggestedValue float64       `json:"suggestedValue"`
	Explanation    string        `json:"explanation"`
	ActionType     ActionType    `json:"actionType"`
}
