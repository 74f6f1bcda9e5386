package pricing

import (
	"errors"

	"code.perpnote.io/perpnote/bond"
	"code.perpnote.io/perpnote/libs/num"
)

var ErrUnknownStrategy = errors.New("unknown pricing strategy")

// DefaultLowerBound is the CDRLowerBound floor used when no explicit bound
// is configured.
var DefaultLowerBound = num.MustDecimalFromString("0.9")

// Strategy computes a collateral-denominated price for one tranche unit.
// The boolean flag reports validity: when false the price must not be used,
// dependent operations abort rather than defaulting to anything.
type Strategy interface {
	TranchePrice(t *bond.Tranche) (num.Decimal, bool)
}

// Unit prices every tranche at exactly one unit of collateral. Useful for
// bootstrapping and for tests.
type Unit struct{}

func (Unit) TranchePrice(*bond.Tranche) (num.Decimal, bool) {
	return num.DecimalOne(), true
}

// CDR prices a tranche at the collateral the bond waterfall currently
// allocates to it per outstanding claim, capped at one.
type CDR struct{}

func (CDR) TranchePrice(t *bond.Tranche) (num.Decimal, bool) {
	supply := t.Token().TotalSupply()
	if supply.IsZero() {
		return num.DecimalZero(), false
	}
	p := t.Bond().ClaimValue(t.Seniority()).ToDecimal().Div(supply.ToDecimal())
	return num.MinD(p, num.DecimalOne()), true
}

// CDRLowerBound behaves like CDR but never prices below the configured
// bound, damping transient under-collateralisation.
type CDRLowerBound struct {
	Bound num.Decimal
}

func (s CDRLowerBound) TranchePrice(t *bond.Tranche) (num.Decimal, bool) {
	p, ok := CDR{}.TranchePrice(t)
	if !ok {
		return p, false
	}
	return num.MaxD(p, s.Bound), true
}

// FromName resolves a strategy by its configuration name. The set of
// strategies is closed.
func FromName(name string, bound num.Decimal) (Strategy, error) {
	switch name {
	case "unit":
		return Unit{}, nil
	case "cdr":
		return CDR{}, nil
	case "cdr-lower-bound":
		return CDRLowerBound{Bound: bound}, nil
	default:
		return nil, ErrUnknownStrategy
	}
}
