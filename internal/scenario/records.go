// Package scenario turns loosely keyed records and scenario files into the
// strict model types, and persists plan snapshots.
package scenario

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"PropertyPlanner/internal/costs"
	"PropertyPlanner/internal/model"
)

// Record is a loosely keyed property description, as it arrives from a form
// or a hand-written scenario file.
type Record map[string]any

// Key aliases, first match wins.
var (
	keysTitle    = []string{"title", "name"}
	keysType     = []string{"type", "propertyType"}
	keysState    = []string{"state"}
	keysPrice    = []string{"purchasePrice", "price", "cost"}
	keysLVR      = []string{"lvr", "LVR"}
	keysRent     = []string{"rentPerWeek", "rent"}
	keysYield    = []string{"rentalYield", "yield"}
	keysRate     = []string{"interestRate", "rate"}
	keysLoanType = []string{"loanType"}
	keysGrowth   = []string{"growthCurve", "growthRate"}
	keysLoan     = []string{"loanAmount", "loan"}
	keysDeposit  = []string{"depositRequired", "deposit"}
	keysYear     = []string{"year", "purchaseYear"}
	keysOneOff   = []string{"oneOffCosts"}
	keysWaiver   = []string{"lmiWaiver"}
	keysCapLMI   = []string{"capitalizeLmi", "lmiCapitalized"}
)

func (r Record) lookup(keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r Record) number(keys []string) (float64, bool, error) {
	v, ok := r.lookup(keys)
	if !ok {
		return 0, false, nil
	}
	f, err := toNumber(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", keys[0], err)
	}
	return f, true, nil
}

func (r Record) text(keys []string) string {
	v, ok := r.lookup(keys)
	if !ok {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (r Record) flag(keys []string) bool {
	v, ok := r.lookup(keys)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true
		}
	}
	return false
}

func (r Record) growth(keys []string) (*model.GrowthCurve, error) {
	v, ok := r.lookup(keys)
	if !ok {
		return nil, nil
	}
	if m, isMap := asMap(v); isMap {
		sub := Record(m)
		var c model.GrowthCurve
		fields := []struct {
			dst  *float64
			keys []string
		}{
			{&c.Year1, []string{"year1"}},
			{&c.Years2To3, []string{"years2to3", "years2To3"}},
			{&c.Year4, []string{"year4"}},
			{&c.Year5Plus, []string{"year5plus", "year5Plus"}},
		}
		// Every tier must be given; a partial curve is rejected.
		for _, f := range fields {
			n, ok, err := sub.number(f.keys)
			if err != nil {
				return nil, fmt.Errorf("%s.%w", keys[0], err)
			}
			if !ok {
				return nil, fmt.Errorf("%s: missing tier %s: %w", keys[0], f.keys[0], model.ErrInvalidRecord)
			}
			*f.dst = n
		}
		return &c, nil
	}
	rate, err := toNumber(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keys[0], err)
	}
	c := model.FlatCurve(rate)
	return &c, nil
}

// asMap accepts both JSON-style and YAML-style nested maps.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// toNumber accepts native numbers and numeric strings such as "450,000",
// "$1,200" or "6.5%".
func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case decimal.Decimal:
		return n.InexactFloat64(), nil
	case string:
		s := strings.NewReplacer(",", "", "$", "", "%", "", " ", "").Replace(strings.TrimSpace(n))
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number: %w", n, model.ErrInvalidRecord)
		}
		return d.InexactFloat64(), nil
	}
	return 0, fmt.Errorf("%v (%T) is not a number: %w", v, v, model.ErrInvalidRecord)
}

// NormalizeInstance builds a PropertyInstance from r. Defaults for the
// record's property type are applied first and the record's own fields
// overlay them. A yield without a rent is converted to weekly rent at the
// record's price.
func NormalizeInstance(r Record, a model.Assumptions) (model.PropertyInstance, error) {
	inst := model.PropertyInstance{
		Title: r.text(keysTitle),
		Type:  r.text(keysType),
	}
	if inst.Type != "" {
		d, ok := a.PropertyTypes[inst.Type]
		if !ok {
			return model.PropertyInstance{}, fmt.Errorf("record %q: unknown property type %q: %w", inst.Title, inst.Type, model.ErrInvalidRecord)
		}
		inst.PurchasePrice = d.PurchasePrice
		inst.RentPerWeek = d.RentPerWeek
		inst.LVR = d.LVR
		inst.InterestRate = d.InterestRate
		inst.LoanType = d.LoanType
		inst.State = d.State
		inst.Growth = d.Growth
	}
	if s := r.text(keysState); s != "" {
		inst.State = s
	}
	if lt := r.text(keysLoanType); lt != "" {
		t, err := parseLoanType(lt)
		if err != nil {
			return model.PropertyInstance{}, fmt.Errorf("record %q: %w", inst.Title, err)
		}
		inst.LoanType = t
	}

	nums := []struct {
		dst  *float64
		keys []string
	}{
		{&inst.PurchasePrice, keysPrice},
		{&inst.LVR, keysLVR},
		{&inst.RentPerWeek, keysRent},
		{&inst.InterestRate, keysRate},
	}
	for _, n := range nums {
		v, ok, err := r.number(n.keys)
		if err != nil {
			return model.PropertyInstance{}, fmt.Errorf("record %q: %w", inst.Title, err)
		}
		if ok {
			*n.dst = v
		}
	}

	if _, hasRent := r.lookup(keysRent); !hasRent {
		yield, ok, err := r.number(keysYield)
		if err != nil {
			return model.PropertyInstance{}, fmt.Errorf("record %q: %w", inst.Title, err)
		}
		if ok {
			inst.RentPerWeek = inst.PurchasePrice * yield / 100 / costs.WeeksPerYear
		}
	}

	g, err := r.growth(keysGrowth)
	if err != nil {
		return model.PropertyInstance{}, fmt.Errorf("record %q: %w", inst.Title, err)
	}
	if g != nil {
		inst.Growth = g
	}

	oneOff, ok, err := r.number(keysOneOff)
	if err != nil {
		return model.PropertyInstance{}, fmt.Errorf("record %q: %w", inst.Title, err)
	}
	if ok {
		inst.OneOffCosts = &oneOff
	}
	inst.LMIWaiver = r.flag(keysWaiver)
	inst.CapitalizeLMI = r.flag(keysCapLMI)

	if inst.PurchasePrice == 0 {
		return model.PropertyInstance{}, fmt.Errorf("record %q: %w", inst.Title, model.ErrZeroPrice)
	}
	return inst, nil
}

// NormalizePurchase builds an already priced PropertyPurchase from r. Of loan
// and deposit, either may be given and the other is derived from the cost.
// Missing growth, expenses and loan type fall back to the assumptions.
func NormalizePurchase(r Record, a model.Assumptions) (model.PropertyPurchase, error) {
	p := model.PropertyPurchase{
		Title:    r.text(keysTitle),
		LoanType: model.InterestOnly,
		Expenses: a.Expenses,
	}
	wrap := func(err error) error { return fmt.Errorf("purchase %q: %w", p.Title, err) }

	var err error
	var hasLoan, hasDeposit, hasYear bool
	if p.Year, hasYear, err = r.number(keysYear); err != nil {
		return model.PropertyPurchase{}, wrap(err)
	}
	if !hasYear {
		p.Year = model.BaseYear
	}
	if p.Cost, _, err = r.number(keysPrice); err != nil {
		return model.PropertyPurchase{}, wrap(err)
	}
	if p.Cost == 0 {
		return model.PropertyPurchase{}, wrap(model.ErrZeroPrice)
	}
	if p.LoanAmount, hasLoan, err = r.number(keysLoan); err != nil {
		return model.PropertyPurchase{}, wrap(err)
	}
	if p.DepositRequired, hasDeposit, err = r.number(keysDeposit); err != nil {
		return model.PropertyPurchase{}, wrap(err)
	}
	switch {
	case hasLoan && !hasDeposit:
		p.DepositRequired = p.Cost - p.LoanAmount
	case hasDeposit && !hasLoan:
		p.LoanAmount = p.Cost - p.DepositRequired
	case !hasLoan && !hasDeposit:
		lvr, ok, err := r.number(keysLVR)
		if err != nil {
			return model.PropertyPurchase{}, wrap(err)
		}
		if !ok {
			return model.PropertyPurchase{}, wrap(fmt.Errorf("loan, deposit or lvr is required: %w", model.ErrInvalidRecord))
		}
		p.LoanAmount = p.Cost * lvr / 100
		p.DepositRequired = p.Cost - p.LoanAmount
	}

	yield, hasYield, err := r.number(keysYield)
	if err != nil {
		return model.PropertyPurchase{}, wrap(err)
	}
	if !hasYield {
		rent, _, err := r.number(keysRent)
		if err != nil {
			return model.PropertyPurchase{}, wrap(err)
		}
		yield = rent * costs.WeeksPerYear / p.Cost * 100
	}
	p.RentalYield = yield

	if p.InterestRate, _, err = r.number(keysRate); err != nil {
		return model.PropertyPurchase{}, wrap(err)
	}
	if lt := r.text(keysLoanType); lt != "" {
		if p.LoanType, err = parseLoanType(lt); err != nil {
			return model.PropertyPurchase{}, wrap(err)
		}
	}
	g, err := r.growth(keysGrowth)
	if err != nil {
		return model.PropertyPurchase{}, wrap(err)
	}
	p.GrowthCurve = a.GrowthFor(g)
	return p, nil
}

func parseLoanType(s string) (model.LoanType, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "&", "")) {
	case "IO", "INTEREST-ONLY", "INTERESTONLY", "INTEREST ONLY":
		return model.InterestOnly, nil
	case "PI", "P I", "PRINCIPAL-AND-INTEREST", "PRINCIPALANDINTEREST", "PRINCIPAL AND INTEREST":
		return model.PrincipalAndInterest, nil
	}
	return "", fmt.Errorf("loan type %q: %w", s, model.ErrInvalidRecord)
}
