// Package guardrail tests a prospective purchase against the deposit,
// borrowing and serviceability constraints.
package guardrail

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"PropertyPlanner/internal/calculator"
	"PropertyPlanner/internal/model"
)

// Params carries the servicing assumptions and the borrower's income.
type Params struct {
	Serviceability    model.ServiceabilityAssumptions
	ServiceableIncome float64
}

// Validate runs all three tests against the ledger state before the purchase.
// A failure is reported as a violation; no test short-circuits another.
func Validate(acq model.Acquisition, s model.CascadeState, p Params) model.ValidationResult {
	checks := []model.GuardrailCheck{
		checkDeposit(acq, s),
		checkBorrowing(acq, s),
		checkServiceability(acq, p),
	}

	result := model.ValidationResult{Checks: checks}
	for _, c := range checks {
		if c.Passed {
			continue
		}
		result.Violations = append(result.Violations, model.GuardrailViolation{
			Type:      c.Type,
			Shortfall: c.Shortfall,
			Message:   message(acq.Purchase.Title, c),
		})
	}
	return result
}

func newCheck(t model.GuardrailType, required, available float64) model.GuardrailCheck {
	return model.GuardrailCheck{
		Type:      t,
		Passed:    available >= required,
		Required:  required,
		Available: available,
		Shortfall: required - available,
	}
}

// checkDeposit: the available funds must cover deposit, stamp duty, upfront LMI and one-off costs.
func checkDeposit(acq model.Acquisition, s model.CascadeState) model.GuardrailCheck {
	return newCheck(model.GuardrailDeposit, acq.Costs.TotalCashRequired(), s.AvailableFunds)
}

// checkBorrowing: the loan must fit in the remaining borrowing capacity.
func checkBorrowing(acq model.Acquisition, s model.CascadeState) model.GuardrailCheck {
	return newCheck(model.GuardrailBorrowing, acq.Purchase.LoanAmount, s.BorrowingCapacity)
}

// checkServiceability: the buffered servicing surplus must not be negative.
func checkServiceability(acq model.Acquisition, p Params) model.GuardrailCheck {
	a := calculator.AssessServiceability(acq.Purchase, p.Serviceability, p.ServiceableIncome)
	return newCheck(model.GuardrailServiceability, 0, a.Surplus)
}

func message(title string, c model.GuardrailCheck) string {
	subject := "This purchase"
	if title != "" {
		subject = title
	}
	switch c.Type {
	case model.GuardrailDeposit:
		return fmt.Sprintf("%s needs %s in cash but only %s is available (short %s)",
			subject, Money(c.Required), Money(c.Available), Money(c.Shortfall))
	case model.GuardrailBorrowing:
		return fmt.Sprintf("%s needs a %s loan but only %s of borrowing capacity remains (over by %s)",
			subject, Money(c.Required), Money(c.Available), Money(c.Shortfall))
	default:
		return fmt.Sprintf("%s does not service at the buffered rate: %s a year more income or less cost is needed",
			subject, Money(c.Shortfall))
	}
}

// Money renders a dollar amount rounded to whole dollars.
func Money(v float64) string {
	return "$" + humanize.Commaf(math.Round(v))
}
