package costs

import (
	"fmt"
	"sort"

	"PropertyPlanner/internal/model"
)

// WeeksPerYear converts weekly rent to annual rent.
const WeeksPerYear = 52

// Calculator prices the one-off costs of a purchase. Implementations must be
// pure: the same inputs always give the same dollar amount.
type Calculator interface {
	StampDuty(price float64, state string) float64
	LMI(price, lvr float64, waived bool) float64
	OneOff(price float64) float64
}

// Standard is the table-driven Calculator built from an assumptions snapshot.
type Standard struct {
	defaultDuty []model.StampDutyBracket
	dutyByState map[string][]model.StampDutyBracket
	lmi         model.LMIAssumptions
	oneOff      float64
}

// NewStandard creates a Standard calculator. The snapshot is copied.
func NewStandard(a model.Assumptions) *Standard {
	s := &Standard{
		defaultDuty: sortedBrackets(a.StampDuty),
		dutyByState: make(map[string][]model.StampDutyBracket, len(a.StampDutyByState)),
		lmi:         a.LMI,
	}
	for state, brackets := range a.StampDutyByState {
		s.dutyByState[state] = sortedBrackets(brackets)
	}
	s.lmi.Bands = append([]model.LMIBand(nil), a.LMI.Bands...)
	sort.Slice(s.lmi.Bands, func(i, j int) bool { return s.lmi.Bands[i].MinLVR < s.lmi.Bands[j].MinLVR })
	for _, c := range a.OneOffCosts {
		s.oneOff += c.Amount
	}
	return s
}

func sortedBrackets(in []model.StampDutyBracket) []model.StampDutyBracket {
	out := append([]model.StampDutyBracket(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}

// StampDuty applies the state's progressive schedule, or the default one.
func (s *Standard) StampDuty(price float64, state string) float64 {
	brackets, ok := s.dutyByState[state]
	if !ok {
		brackets = s.defaultDuty
	}
	if price <= 0 || len(brackets) == 0 {
		return 0
	}
	b := brackets[0]
	for _, next := range brackets[1:] {
		if price < next.Threshold {
			break
		}
		b = next
	}
	return b.Base + (price-b.Threshold)*b.RatePct/100
}

// LMI charges the band premium on the loan when the LVR is above the threshold.
func (s *Standard) LMI(price, lvr float64, waived bool) float64 {
	if waived || lvr <= s.lmi.ThresholdLVR || len(s.lmi.Bands) == 0 {
		return 0
	}
	band := s.lmi.Bands[len(s.lmi.Bands)-1]
	for _, b := range s.lmi.Bands {
		if lvr > b.MinLVR && lvr <= b.MaxLVR {
			band = b
			break
		}
	}
	return price * lvr / 100 * band.PremiumPct / 100
}

// OneOff is the sum of the fixed settlement cost lines.
func (s *Standard) OneOff(_ float64) float64 {
	return s.oneOff
}

// Quote normalizes an instance into a priced purchase at the given year.
func Quote(inst model.PropertyInstance, year float64, a model.Assumptions, calc Calculator) (model.Acquisition, error) {
	price := inst.PurchasePrice
	if price == 0 {
		return model.Acquisition{}, fmt.Errorf("quote %q: %w", inst.Title, model.ErrZeroPrice)
	}
	loanBase := inst.LoanBase()
	lmi := calc.LMI(price, inst.LVR, inst.LMIWaiver)
	oneOff := calc.OneOff(price)
	if inst.OneOffCosts != nil {
		oneOff = *inst.OneOffCosts
	}
	loanType := inst.LoanType
	if loanType == "" {
		loanType = model.InterestOnly
	}

	c := model.PurchaseCosts{
		Deposit:        price - loanBase,
		StampDuty:      calc.StampDuty(price, inst.State),
		LMI:            lmi,
		LMICapitalized: inst.CapitalizeLMI && lmi > 0,
		OneOff:         oneOff,
	}
	loan := loanBase
	if c.LMICapitalized {
		loan += lmi
	}

	return model.Acquisition{
		Purchase: model.PropertyPurchase{
			Title:           inst.Title,
			Year:            year,
			Cost:            price,
			LoanAmount:      loan,
			DepositRequired: c.Deposit,
			RentalYield:     inst.RentPerWeek * WeeksPerYear / price * 100,
			GrowthCurve:     a.GrowthFor(inst.Growth),
			InterestRate:    inst.InterestRate,
			LoanType:        loanType,
			Expenses:        a.ExpensesFor(inst.Expenses),
		},
		Costs: c,
	}, nil
}
