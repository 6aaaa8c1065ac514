// Package fixes inverts the forward purchase formulas to propose field values
// that would clear a failing guardrail.
//
// Fixes are advisory. Fields are shared between tests, so the caller must
// re-validate after applying one.
package fixes

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"PropertyPlanner/internal/calculator"
	"PropertyPlanner/internal/costs"
	"PropertyPlanner/internal/guardrail"
	"PropertyPlanner/internal/model"
)

// bisectIterations bounds the numeric fallback when black-box costs make a
// closed-form inverse inexact.
const bisectIterations = 64

// Context is the point in the cascade a purchase is being tested at.
type Context struct {
	Year              float64
	State             model.CascadeState
	ServiceableIncome float64
}

// Solver proposes fixes against an assumptions snapshot and a cost calculator.
type Solver struct {
	assumptions model.Assumptions
	calc        costs.Calculator
}

// NewSolver creates a Solver.
func NewSolver(a model.Assumptions, calc costs.Calculator) *Solver {
	return &Solver{assumptions: a, calc: calc}
}

// Suggest returns candidate fixes for every violation in result, computed from
// the instance as currently adjusted.
func (s *Solver) Suggest(inst model.PropertyInstance, ctx Context, result model.ValidationResult) ([]model.SuggestedFix, error) {
	acq, err := costs.Quote(inst, ctx.Year, s.assumptions, s.calc)
	if err != nil {
		return nil, err
	}

	var out []model.SuggestedFix
	for _, v := range result.Violations {
		var fixes []model.SuggestedFix
		switch v.Type {
		case model.GuardrailDeposit:
			fixes, err = s.depositFixes(inst, acq, ctx, v)
		case model.GuardrailBorrowing:
			fixes, err = s.borrowingFixes(inst, ctx, v)
		case model.GuardrailServiceability:
			fixes, err = s.serviceabilityFixes(inst, acq, ctx, v)
		}
		if err != nil {
			return nil, fmt.Errorf("suggest %s fixes: %w", v.Type, err)
		}
		out = append(out, fixes...)
	}
	return out, nil
}

// shortfall re-runs the forward model for one test.
func (s *Solver) shortfall(inst model.PropertyInstance, ctx Context, t model.GuardrailType) (float64, error) {
	acq, err := costs.Quote(inst, ctx.Year, s.assumptions, s.calc)
	if err != nil {
		return 0, err
	}
	result := guardrail.Validate(acq, ctx.State, guardrail.Params{
		Serviceability:    s.assumptions.Serviceability,
		ServiceableIncome: ctx.ServiceableIncome,
	})
	c, _ := result.Check(t)
	return c.Shortfall, nil
}

// passes reports whether test t passes with field set to value.
func (s *Solver) passes(inst model.PropertyInstance, ctx Context, t model.GuardrailType, field model.Field, value float64) (bool, error) {
	adjusted, err := Adjust(inst, field, value)
	if err != nil {
		return false, err
	}
	if field == model.FieldPurchasePrice && value <= 0 {
		return false, nil
	}
	sf, err := s.shortfall(adjusted, ctx, t)
	if err != nil {
		return false, err
	}
	return sf <= 0, nil
}

// lowerTo finds the largest value at or below current, in steps of 10^-places,
// at which test t passes. guess is the closed-form answer; when it does not
// verify, the answer is bisected between floor and current.
func (s *Solver) lowerTo(inst model.PropertyInstance, ctx Context, t model.GuardrailType, field model.Field, guess, floor, current float64, places int32) (float64, bool, error) {
	step := math.Pow(10, -float64(places))
	if finite(guess) && guess >= floor && guess < current {
		candidate := floorTo(guess, places)
		for i := 0; i < 2 && candidate >= floor; i++ {
			ok, err := s.passes(inst, ctx, t, field, candidate)
			if err != nil {
				return 0, false, err
			}
			if ok {
				return candidate, true, nil
			}
			candidate -= step
		}
	}

	ok, err := s.passes(inst, ctx, t, field, floor)
	if err != nil || !ok {
		return 0, false, err
	}
	lo, hi := floor, current
	for i := 0; i < bisectIterations; i++ {
		mid := (lo + hi) / 2
		ok, err := s.passes(inst, ctx, t, field, mid)
		if err != nil {
			return 0, false, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid
		}
	}
	return floorTo(lo, places), true, nil
}

// raiseTo finds a value above current at which test t passes, starting from
// the closed-form guess and re-applying the remaining shortfall per unit
// until it verifies or exceeds ceiling.
func (s *Solver) raiseTo(inst model.PropertyInstance, ctx Context, t model.GuardrailType, field model.Field, guess, ceiling float64, perUnit func(shortfall float64) float64, places int32) (float64, bool, error) {
	candidate := ceilTo(guess, places)
	for i := 0; i < 20; i++ {
		if !finite(candidate) || candidate > ceiling {
			return 0, false, nil
		}
		adjusted, err := Adjust(inst, field, candidate)
		if err != nil {
			return 0, false, err
		}
		sf, err := s.shortfall(adjusted, ctx, t)
		if err != nil {
			return 0, false, err
		}
		if sf <= 0 {
			return candidate, true, nil
		}
		next := ceilTo(candidate+perUnit(sf), places)
		if next <= candidate {
			next = candidate + math.Pow(10, -float64(places))
		}
		candidate = next
	}
	return 0, false, nil
}

func (s *Solver) depositFixes(inst model.PropertyInstance, acq model.Acquisition, ctx Context, v model.GuardrailViolation) ([]model.SuggestedFix, error) {
	var out []model.SuggestedFix
	price := inst.PurchasePrice

	depositShare := 1 - inst.LVR/100
	guess := math.NaN()
	if depositShare > 0 {
		guess = price - v.Shortfall/depositShare
	}
	if p, ok, err := s.lowerTo(inst, ctx, model.GuardrailDeposit, model.FieldPurchasePrice, guess, 1, price, 0); err != nil {
		return nil, err
	} else if ok {
		out = append(out, model.SuggestedFix{
			Violation:      model.GuardrailDeposit,
			Field:          model.FieldPurchasePrice,
			CurrentValue:   price,
			SuggestedValue: p,
			Explanation: fmt.Sprintf("Lower the purchase price to %s so the cash required fits the %s available",
				guardrail.Money(p), guardrail.Money(ctx.State.AvailableFunds)),
			ActionType: model.ActionAdjustField,
		})
	}

	if inst.LVR < s.assumptions.MaxLVR && price > 0 {
		perUnit := func(sf float64) float64 { return sf / price * 100 }
		lvr, ok, err := s.raiseTo(inst, ctx, model.GuardrailDeposit, model.FieldLVR, inst.LVR+perUnit(v.Shortfall), s.assumptions.MaxLVR, perUnit, 2)
		if err != nil {
			return nil, err
		}
		if ok {
			explanation := fmt.Sprintf("Raise the LVR to %.2f%% to shrink the deposit", lvr)
			if lvr > s.assumptions.LMI.ThresholdLVR && !inst.LMIWaiver {
				explanation += " (LMI applies above " + fmt.Sprintf("%.0f%%", s.assumptions.LMI.ThresholdLVR) + ")"
			}
			out = append(out, model.SuggestedFix{
				Violation:      model.GuardrailDeposit,
				Field:          model.FieldLVR,
				CurrentValue:   inst.LVR,
				SuggestedValue: lvr,
				Explanation:    explanation,
				ActionType:     model.ActionAdjustField,
			})
		}
	}

	if lmi := acq.Costs.UpfrontLMI(); lmi > 0 && lmi >= v.Shortfall {
		out = append(out, model.SuggestedFix{
			Violation:      model.GuardrailDeposit,
			Field:          model.FieldLMICapitalized,
			CurrentValue:   0,
			SuggestedValue: 1,
			Explanation:    fmt.Sprintf("Capitalize the %s LMI premium into the loan instead of paying it upfront", guardrail.Money(lmi)),
			ActionType:     model.ActionCapitalizeLMI,
		})
	}

	if oneOff := acq.Costs.OneOff; oneOff > 0 && oneOff >= v.Shortfall {
		target := floorTo(oneOff-v.Shortfall, 0)
		out = append(out, model.SuggestedFix{
			Violation:      model.GuardrailDeposit,
			Field:          model.FieldOneOffCosts,
			CurrentValue:   oneOff,
			SuggestedValue: target,
			Explanation:    fmt.Sprintf("Review one-off costs: bringing them down to %s clears the shortfall", guardrail.Money(target)),
			ActionType:     model.ActionEditCosts,
		})
	}
	return out, nil
}

func (s *Solver) borrowingFixes(inst model.PropertyInstance, ctx Context, v model.GuardrailViolation) ([]model.SuggestedFix, error) {
	var out []model.SuggestedFix
	capacity := ctx.State.BorrowingCapacity
	if capacity <= 0 {
		return nil, nil
	}
	price := inst.PurchasePrice

	guess := math.NaN()
	if inst.LVR > 0 {
		guess = capacity / (inst.LVR / 100)
	}
	if p, ok, err := s.lowerTo(inst, ctx, model.GuardrailBorrowing, model.FieldPurchasePrice, guess, 1, price, 0); err != nil {
		return nil, err
	} else if ok {
		out = append(out, model.SuggestedFix{
			Violation:      model.GuardrailBorrowing,
			Field:          model.FieldPurchasePrice,
			CurrentValue:   price,
			SuggestedValue: p,
			Explanation: fmt.Sprintf("Lower the purchase price to %s so the loan fits the %s borrowing capacity",
				guardrail.Money(p), guardrail.Money(capacity)),
			ActionType: model.ActionAdjustField,
		})
	}

	if price > 0 {
		if lvr, ok, err := s.lowerTo(inst, ctx, model.GuardrailBorrowing, model.FieldLVR, capacity/price*100, 0, inst.LVR, 2); err != nil {
			return nil, err
		} else if ok {
			out = append(out, model.SuggestedFix{
				Violation:      model.GuardrailBorrowing,
				Field:          model.FieldLVR,
				CurrentValue:   inst.LVR,
				SuggestedValue: lvr,
				Explanation:    fmt.Sprintf("Lower the LVR to %.2f%% so the loan is at most %s", lvr, guardrail.Money(capacity)),
				ActionType:     model.ActionAdjustField,
			})
		}
	}
	return out, nil
}

func (s *Solver) serviceabilityFixes(inst model.PropertyInstance, acq model.Acquisition, ctx Context, v model.GuardrailViolation) ([]model.SuggestedFix, error) {
	var out []model.SuggestedFix
	svc := s.assumptions.Serviceability
	exp := acq.Purchase.Expenses

	// Net is linear in annual rent: shaded share less the rent-based expenses.
	if coef := costs.WeeksPerYear * (svc.RentShadingPct - exp.ManagementFeePct - exp.VacancyPct) / 100; coef > 0 {
		perUnit := func(sf float64) float64 { return sf / coef }
		rent, ok, err := s.raiseTo(inst, ctx, model.GuardrailServiceability, model.FieldRentPerWeek, inst.RentPerWeek+perUnit(v.Shortfall), math.Inf(1), perUnit, 0)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, model.SuggestedFix{
				Violation:      model.GuardrailServiceability,
				Field:          model.FieldRentPerWeek,
				CurrentValue:   inst.RentPerWeek,
				SuggestedValue: rent,
				Explanation:    fmt.Sprintf("Target rent of at least %s per week", guardrail.Money(rent)),
				ActionType:     model.ActionAdjustField,
			})
		}
	}

	if loan := acq.Purchase.LoanAmount; loan > 0 && inst.InterestRate > 0 {
		guess := inst.InterestRate - v.Shortfall/loan*100
		if acq.Purchase.LoanType == model.PrincipalAndInterest {
			guess = s.amortizedRateFor(loan, inst.InterestRate, v.Shortfall)
		}
		if rate, ok, err := s.lowerTo(inst, ctx, model.GuardrailServiceability, model.FieldInterestRate, guess, 0, inst.InterestRate, 2); err != nil {
			return nil, err
		} else if ok {
			out = append(out, model.SuggestedFix{
				Violation:      model.GuardrailServiceability,
				Field:          model.FieldInterestRate,
				CurrentValue:   inst.InterestRate,
				SuggestedValue: rate,
				Explanation:    fmt.Sprintf("Secure an interest rate of %.2f%% or lower", rate),
				ActionType:     model.ActionAdjustField,
			})
		}
	}

	// Rent is a fixed weekly amount, so a cheaper property only lowers the
	// loan repayments and the value-based maintenance.
	assessRate := inst.InterestRate + svc.BufferRate
	perDollarLoan := assessRate / 100
	if acq.Purchase.LoanType == model.PrincipalAndInterest {
		perDollarLoan = calculator.AmortizedPayment(1, assessRate, calculator.LoanTermYears)
	}
	guess := math.NaN()
	if slope := inst.LVR/100*perDollarLoan + exp.MaintenancePct/100; slope > 0 {
		guess = inst.PurchasePrice - v.Shortfall/slope
	}
	if p, ok, err := s.lowerTo(inst, ctx, model.GuardrailServiceability, model.FieldPurchasePrice, guess, 1, inst.PurchasePrice, 0); err != nil {
		return nil, err
	} else if ok {
		out = append(out, model.SuggestedFix{
			Violation:      model.GuardrailServiceability,
			Field:          model.FieldPurchasePrice,
			CurrentValue:   inst.PurchasePrice,
			SuggestedValue: p,
			Explanation:    fmt.Sprintf("Lower the purchase price to %s to reduce repayments", guardrail.Money(p)),
			ActionType:     model.ActionAdjustField,
		})
	}
	return out, nil
}

// amortizedRateFor solves the annuity for the loan rate that cuts the buffered
// repayment by shortfall. It returns NaN when no non-negative rate can.
func (s *Solver) amortizedRateFor(loan, rate, shortfall float64) float64 {
	buffer := s.assumptions.Serviceability.BufferRate
	target := calculator.AmortizedPayment(loan, rate+buffer, calculator.LoanTermYears) - shortfall
	if target < calculator.AmortizedPayment(loan, buffer, calculator.LoanTermYears) {
		return math.NaN()
	}
	lo, hi := 0.0, rate
	for i := 0; i < bisectIterations; i++ {
		mid := (lo + hi) / 2
		if calculator.AmortizedPayment(loan, mid+buffer, calculator.LoanTermYears) > target {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}

// Adjust returns inst with one field set.
func Adjust(inst model.PropertyInstance, field model.Field, value float64) (model.PropertyInstance, error) {
	switch field {
	case model.FieldPurchasePrice:
		inst.PurchasePrice = value
	case model.FieldLVR:
		inst.LVR = value
	case model.FieldRentPerWeek:
		inst.RentPerWeek = value
	case model.FieldInterestRate:
		inst.InterestRate = value
	case model.FieldOneOffCosts:
		v := value
		inst.OneOffCosts = &v
	case model.FieldLMICapitalized:
		inst.CapitalizeLMI = value != 0
	default:
		return inst, fmt.Errorf("adjust %q: %w", field, model.ErrUnknownField)
	}
	return inst, nil
}

// Apply returns inst with the fix applied.
func Apply(inst model.PropertyInstance, fix model.SuggestedFix) (model.PropertyInstance, error) {
	return Adjust(inst, fix.Field, fix.SuggestedValue)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func floorTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).RoundFloor(places).InexactFloat64()
}

func ceilTo(v float64, places int32) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).RoundCeil(places).InexactFloat64()
}
