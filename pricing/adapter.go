package pricing

import (
	"code.perpnote.io/perpnote/bond"
	"code.perpnote.io/perpnote/libs/num"
)

// Adapter bundles a price strategy with the yield registry into the single
// collaborator shape the note engine consumes.
type Adapter struct {
	strategy Strategy
	yields   *Yields
}

func NewAdapter(strategy Strategy, yields *Yields) *Adapter {
	return &Adapter{
		strategy: strategy,
		yields:   yields,
	}
}

func (a *Adapter) TranchePrice(t *bond.Tranche) (num.Decimal, bool) {
	return a.strategy.TranchePrice(t)
}

func (a *Adapter) DefinedYield(class string) num.Decimal {
	return a.yields.DefinedYield(class)
}

// Yields exposes the registry so governance can keep a handle on it after
// wiring the adapter into the note engine.
func (a *Adapter) Yields() *Yields {
	return a.yields
}
