package pricing

import (
	"errors"

	"code.perpnote.io/perpnote/libs/num"
	"code.perpnote.io/perpnote/types"
)

var ErrNegativeYield = errors.New("defined yield must not be negative")

// Yields is the per-tranche-class defined yield registry. The defined yield
// is class-wide policy, the note engine freezes its own applied copy per
// tranche instance on first acceptance, so later writes here never reprice
// tranches already in reserve.
type Yields struct {
	access  types.AccessControl
	defined map[string]num.Decimal
}

func NewYields(owner string) *Yields {
	return &Yields{
		access:  types.NewAccessControl(owner),
		defined: map[string]num.Decimal{},
	}
}

// DefinedYield returns the class yield, one for classes with no explicit
// policy.
func (y *Yields) DefinedYield(class string) num.Decimal {
	if d, ok := y.defined[class]; ok {
		return d
	}
	return num.DecimalOne()
}

// SetDefinedYield writes the class yield, owner only.
func (y *Yields) SetDefinedYield(caller, class string, yield num.Decimal) error {
	if err := y.access.Check(caller); err != nil {
		return err
	}
	if yield.IsNegative() {
		return ErrNegativeYield
	}
	y.defined[class] = yield
	return nil
}
