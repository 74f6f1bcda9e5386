package bond

import (
	"errors"
	"fmt"
	"time"

	"code.perpnote.io/perpnote/libs/crypto"
	"code.perpnote.io/perpnote/libs/num"
	"code.perpnote.io/perpnote/types"
)

// RatioDenominator is the denominator of every tranche ratio vector,
// a bond's ratios always sum to it.
const RatioDenominator = 1000

var (
	ErrInvalidRatios   = errors.New("tranche ratios must be positive and sum to the denominator")
	ErrBondMature      = errors.New("bond is past maturity")
	ErrBondNotMature   = errors.New("bond has not reached maturity")
	ErrAlreadyMatured  = errors.New("bond already matured")
	ErrNotMaturedYet   = errors.New("bond collateral not yet distributed")
	ErrNonProportional = errors.New("redemption amounts not proportional to tranche ratios")
	ErrUnknownTranche  = errors.New("tranche does not belong to this bond")
)

// Tranche is a seniority-ranked claim on the bond collateral. Seniority 0 is
// the most senior. Its class identity depends only on the collateral token,
// the full ratio vector and the seniority index, so tranches cut the same way
// from different bonds share one risk profile.
type Tranche struct {
	token     *types.Token
	bond      *Bond
	seniority int
	ratio     uint32
	class     string
}

func (t *Tranche) ID() string          { return t.token.ID() }
func (t *Tranche) Token() *types.Token { return t.token }
func (t *Tranche) Bond() *Bond         { return t.bond }
func (t *Tranche) Seniority() int      { return t.seniority }
func (t *Tranche) Ratio() uint32       { return t.ratio }
func (t *Tranche) Class() string       { return t.class }

// Class derives the tranche class identity from the collateral token, the
// ordered ratio vector and the seniority index.
func Class(collateralID string, ratios []uint32, seniority int) string {
	parts := make([]uint64, 0, len(ratios)+1)
	for _, r := range ratios {
		parts = append(parts, uint64(r))
	}
	parts = append(parts, uint64(seniority))
	return crypto.HashParts(collateralID, parts...)
}

// Bond splits a collateral deposit into ordered tranche claims maturing at a
// fixed time. Before maturity holders redeem pro-rata across all tranches,
// after maturity each tranche redeems against the collateral reserved for it
// by the seniority waterfall.
type Bond struct {
	id         string
	collateral *types.Token
	tranches   []*Tranche
	maturity   time.Time

	matured  bool
	reserves []*num.Uint // per-tranche collateral, frozen by Mature
}

// New creates a bond over the collateral token. The ratio vector orders
// tranches senior to junior and must sum to RatioDenominator.
func New(id string, collateral *types.Token, ratios []uint32, maturity time.Time) (*Bond, error) {
	if len(ratios) == 0 {
		return nil, ErrInvalidRatios
	}
	var sum uint32
	for _, r := range ratios {
		if r == 0 {
			return nil, ErrInvalidRatios
		}
		sum += r
	}
	if sum != RatioDenominator {
		return nil, ErrInvalidRatios
	}

	b := &Bond{
		id:         id,
		collateral: collateral,
		maturity:   maturity,
		reserves:   make([]*num.Uint, len(ratios)),
	}
	for i, r := range ratios {
		t := &Tranche{
			token:     types.NewToken(fmt.Sprintf("%s-%s", id, trancheSuffix(i, len(ratios))), trancheSuffix(i, len(ratios)), collateral.Decimals()),
			bond:      b,
			seniority: i,
			ratio:     r,
			class:     Class(collateral.ID(), ratios, i),
		}
		b.tranches = append(b.tranches, t)
		b.reserves[i] = num.UintZero()
	}
	return b, nil
}

// trancheSuffix names tranches A, B, ... with Z for the junior-most.
func trancheSuffix(i, n int) string {
	if i == n-1 {
		return "Z"
	}
	return string(rune('A' + i))
}

func (b *Bond) ID() string                { return b.id }
func (b *Bond) Collateral() *types.Token  { return b.collateral }
func (b *Bond) MaturityDate() time.Time   { return b.maturity }
func (b *Bond) TrancheCount() int         { return len(b.tranches) }
func (b *Bond) TrancheAt(i int) *Tranche  { return b.tranches[i] }
func (b *Bond) Matured() bool             { return b.matured }

// Tranches returns the tranches in ascending seniority index order
// (most senior first).
func (b *Bond) Tranches() []*Tranche {
	out := make([]*Tranche, len(b.tranches))
	copy(out, b.tranches)
	return out
}

// TrancheByToken resolves a tranche from its token identity.
func (b *Bond) TrancheByToken(tokenID string) (*Tranche, bool) {
	for _, t := range b.tranches {
		if t.ID() == tokenID {
			return t, true
		}
	}
	return nil, false
}

// Ratios returns the ordered tranche ratio vector.
func (b *Bond) Ratios() []uint32 {
	out := make([]uint32, len(b.tranches))
	for i, t := range b.tranches {
		out[i] = t.ratio
	}
	return out
}

func (b *Bond) IsMature(now time.Time) bool {
	return !now.Before(b.maturity)
}

// TimeToMaturity returns the remaining time, zero once past maturity.
func (b *Bond) TimeToMaturity(now time.Time) time.Duration {
	if b.IsMature(now) {
		return 0
	}
	return b.maturity.Sub(now)
}

// CollateralBalance is the collateral currently held by the bond.
func (b *Bond) CollateralBalance() *num.Uint {
	return b.collateral.BalanceOf(b.id)
}

// TotalDebt is the sum of all outstanding tranche claims.
func (b *Bond) TotalDebt() *num.Uint {
	total := num.UintZero()
	for _, t := range b.tranches {
		total.AddSum(t.token.TotalSupply())
	}
	return total
}

// CDR is the collateral-to-debt ratio. The flag is false when there is no
// outstanding debt, callers must treat that as not-a-price rather than
// defaulting to anything.
func (b *Bond) CDR() (num.Decimal, bool) {
	debt := b.TotalDebt()
	if debt.IsZero() {
		return num.DecimalZero(), false
	}
	return b.CollateralBalance().ToDecimal().Div(debt.ToDecimal()), true
}

// PreviewDeposit returns the tranche amounts a deposit would mint, ordered
// by seniority. Flooring dust stays in the bond as extra backing.
func (b *Bond) PreviewDeposit(amount *num.Uint) []*num.Uint {
	den := num.NewUint(RatioDenominator)
	out := make([]*num.Uint, len(b.tranches))
	for i, t := range b.tranches {
		a := num.UintZero().Mul(amount, num.NewUint(uint64(t.ratio)))
		out[i] = a.Div(a, den)
	}
	return out
}

// Deposit locks collateral from the depositor and mints the ratio slice of
// tranche tokens to them. Deposits close at maturity.
func (b *Bond) Deposit(depositor string, amount *num.Uint, now time.Time) ([]*num.Uint, error) {
	if amount.IsZero() {
		return nil, types.ErrZeroAmount
	}
	if b.IsMature(now) {
		return nil, ErrBondMature
	}
	amounts := b.PreviewDeposit(amount)
	if err := b.collateral.Transfer(depositor, b.id, amount); err != nil {
		return nil, err
	}
	for i, t := range b.tranches {
		if amounts[i].IsZero() {
			continue
		}
		if err := t.token.Mint(depositor, amounts[i]); err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// ProRata returns the largest redemption vector the holder can submit to
// Redeem, amounts exactly proportional to the tranche ratios. A zero vector
// means the holder cannot redeem pro-rata right now.
func (b *Bond) ProRata(holder string) []*num.Uint {
	var k *num.Uint
	for _, t := range b.tranches {
		share := num.UintZero().Div(t.token.BalanceOf(holder), num.NewUint(uint64(t.ratio)))
		if k == nil || share.LT(k) {
			k = share
		}
	}
	out := make([]*num.Uint, len(b.tranches))
	for i, t := range b.tranches {
		out[i] = num.UintZero().Mul(k, num.NewUint(uint64(t.ratio)))
	}
	return out
}

// Redeem burns a ratio-proportional vector of tranche amounts and returns
// the matching share of the bond collateral. Available before and after
// maturity, the waterfall only matters for single-tranche redemption.
func (b *Bond) Redeem(caller string, amounts []*num.Uint) (*num.Uint, error) {
	if len(amounts) != len(b.tranches) {
		return nil, ErrNonProportional
	}
	// amounts[i] * ratio[j] == amounts[j] * ratio[i] for every pair, checked
	// against the first tranche.
	r0 := num.NewUint(uint64(b.tranches[0].ratio))
	for i := 1; i < len(amounts); i++ {
		l := num.UintZero().Mul(amounts[0], num.NewUint(uint64(b.tranches[i].ratio)))
		r := num.UintZero().Mul(amounts[i], r0)
		if l.NEQ(r) {
			return nil, ErrNonProportional
		}
	}
	total := num.Sum(amounts...)
	if total.IsZero() {
		return nil, types.ErrZeroAmount
	}
	debt := b.TotalDebt()
	out := num.UintZero().Mul(b.CollateralBalance(), total)
	out.Div(out, debt)

	for i, t := range b.tranches {
		if amounts[i].IsZero() {
			continue
		}
		if err := t.token.Burn(caller, amounts[i]); err != nil {
			return nil, err
		}
	}
	if err := b.collateral.Transfer(b.id, caller, out); err != nil {
		return nil, err
	}
	// adjust the frozen per-tranche reserves when redeeming post-maturity
	if b.matured {
		for i := range b.reserves {
			b.reserves[i] = b.claimValueLocked(i)
		}
	}
	return out, nil
}

// Mature runs the seniority waterfall once the maturity date has passed,
// freezing the collateral reserved for each tranche. Any residual backing
// beyond the outstanding claims accrues to the junior-most tranche.
func (b *Bond) Mature(now time.Time) error {
	if !b.IsMature(now) {
		return ErrBondNotMature
	}
	if b.matured {
		return ErrAlreadyMatured
	}
	remaining := b.CollateralBalance()
	for i, t := range b.tranches {
		claim := t.token.TotalSupply()
		res := num.Min(remaining.Clone(), claim)
		b.reserves[i] = res.Clone()
		remaining.Sub(remaining, res)
	}
	if !remaining.IsZero() {
		b.reserves[len(b.reserves)-1].AddSum(remaining)
	}
	b.matured = true
	return nil
}

// RedeemMature burns a single matured tranche amount against the collateral
// the waterfall reserved for it.
func (b *Bond) RedeemMature(caller string, tranche *Tranche, amount *num.Uint) (*num.Uint, error) {
	if tranche.bond != b {
		return nil, ErrUnknownTranche
	}
	if !b.matured {
		return nil, ErrNotMaturedYet
	}
	if amount.IsZero() {
		return nil, types.ErrZeroAmount
	}
	supply := tranche.token.TotalSupply()
	out := num.UintZero().Mul(b.reserves[tranche.seniority], amount)
	out.Div(out, supply)

	if err := tranche.token.Burn(caller, amount); err != nil {
		return nil, err
	}
	b.reserves[tranche.seniority].Sub(b.reserves[tranche.seniority], out)
	if err := b.collateral.Transfer(b.id, caller, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimValue returns the collateral the waterfall does (or currently would)
// allocate to tranche i. Pre-maturity this is an estimate over the live
// collateral balance, post-maturity it is the frozen reserve.
func (b *Bond) ClaimValue(i int) *num.Uint {
	if b.matured {
		return b.reserves[i].Clone()
	}
	return b.claimValueLocked(i)
}

func (b *Bond) claimValueLocked(i int) *num.Uint {
	remaining := b.CollateralBalance()
	for j, t := range b.tranches {
		claim := t.token.TotalSupply()
		res := num.Min(remaining.Clone(), claim)
		if j == i {
			if j == len(b.tranches)-1 {
				// junior-most soaks up any residual
				return remaining.Clone()
			}
			return res.Clone()
		}
		remaining.Sub(remaining, res)
	}
	return num.UintZero()
}
