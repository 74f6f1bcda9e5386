package bond

import (
	"errors"
	"fmt"
	"time"

	"code.perpnote.io/perpnote/types"
)

var ErrNoBondIssued = errors.New("no bond issued yet")

// Issuer mints bonds on a fixed collateral + ratio template. The periodic
// scheduling of issuance lives outside the accounting core, callers decide
// when Issue runs.
type Issuer struct {
	collateral *types.Token
	ratios     []uint32
	duration   time.Duration

	seq   int
	bonds []*Bond
	byID  map[string]*Bond
}

func NewIssuer(collateral *types.Token, ratios []uint32, duration time.Duration) (*Issuer, error) {
	// validate the template once so Issue cannot fail on ratios
	if _, err := New("template", types.NewToken("template", "template", collateral.Decimals()), ratios, time.Time{}); err != nil {
		return nil, err
	}
	rs := make([]uint32, len(ratios))
	copy(rs, ratios)
	return &Issuer{
		collateral: collateral,
		ratios:     rs,
		duration:   duration,
		byID:       map[string]*Bond{},
	}, nil
}

// Issue creates the next bond, maturing one bond duration from now.
func (i *Issuer) Issue(now time.Time) (*Bond, error) {
	i.seq++
	id := fmt.Sprintf("%s-bond-%04d", i.collateral.Symbol(), i.seq)
	b, err := New(id, i.collateral, i.ratios, now.Add(i.duration))
	if err != nil {
		return nil, err
	}
	i.bonds = append(i.bonds, b)
	i.byID[b.ID()] = b
	return b, nil
}

// GetLatestBond returns the most recently issued bond.
func (i *Issuer) GetLatestBond() (*Bond, error) {
	if len(i.bonds) == 0 {
		return nil, ErrNoBondIssued
	}
	return i.bonds[len(i.bonds)-1], nil
}

// IsInstance reports whether the bond was issued by this issuer.
func (i *Issuer) IsInstance(b *Bond) bool {
	if b == nil {
		return false
	}
	known, ok := i.byID[b.ID()]
	return ok && known == b
}

// Bonds returns every issued bond, oldest first.
func (i *Issuer) Bonds() []*Bond {
	out := make([]*Bond, len(i.bonds))
	copy(out, i.bonds)
	return out
}

// Ratios returns the issuance template's tranche ratio vector.
func (i *Issuer) Ratios() []uint32 {
	out := make([]uint32, len(i.ratios))
	copy(out, i.ratios)
	return out
}
