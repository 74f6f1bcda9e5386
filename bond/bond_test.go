package bond

import (
	"testing"
	"time"

	"code.perpnote.io/perpnote/libs/num"
	"code.perpnote.io/perpnote/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Unix(1700000000, 0)

func newTestBond(t *testing.T) (*Bond, *types.Token) {
	t.Helper()
	collateral := types.NewToken("usdc", "USDC", 6)
	require.NoError(t, collateral.Mint("alice", num.NewUint(10_000)))
	b, err := New("usdc-bond-0001", collateral, []uint32{700, 300}, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	return b, collateral
}

func TestBond(t *testing.T) {
	t.Run("Ratio vector must be positive and sum to the denominator", testBondInvalidRatios)
	t.Run("Deposit splits collateral into ratio slices", testBondDeposit)
	t.Run("Deposit flooring keeps dust in the bond", testBondDepositDust)
	t.Run("Deposits close at maturity", testBondDepositAfterMaturity)
	t.Run("Pro rata vector is the largest proportional redemption", testBondProRata)
	t.Run("Proportional redemption returns the collateral share", testBondRedeem)
	t.Run("Non proportional redemption is rejected", testBondRedeemNonProportional)
	t.Run("Waterfall reserves collateral seniors first", testBondMatureWaterfall)
	t.Run("Residual collateral accrues to the junior most tranche", testBondMatureResidual)
	t.Run("Mature guards its preconditions", testBondMatureErrors)
	t.Run("Tranche class depends on collateral ratios and seniority only", testTrancheClass)
	t.Run("CDR is flagged invalid with no outstanding debt", testBondCDR)
}

func testBondInvalidRatios(t *testing.T) {
	collateral := types.NewToken("usdc", "USDC", 6)
	for _, ratios := range [][]uint32{nil, {500, 400}, {1000, 0}, {700, 200, 200}} {
		_, err := New("b", collateral, ratios, now)
		require.ErrorIs(t, err, ErrInvalidRatios)
	}
}

func testBondDeposit(t *testing.T) {
	b, collateral := newTestBond(t)
	amounts, err := b.Deposit("alice", num.NewUint(1000), now)
	require.NoError(t, err)

	require.Len(t, amounts, 2)
	assert.True(t, amounts[0].EQ(num.NewUint(700)))
	assert.True(t, amounts[1].EQ(num.NewUint(300)))
	assert.True(t, b.TrancheAt(0).Token().BalanceOf("alice").EQ(num.NewUint(700)))
	assert.True(t, b.TrancheAt(1).Token().BalanceOf("alice").EQ(num.NewUint(300)))
	assert.True(t, b.CollateralBalance().EQ(num.NewUint(1000)))
	assert.True(t, collateral.BalanceOf("alice").EQ(num.NewUint(9000)))
}

func testBondDepositDust(t *testing.T) {
	b, _ := newTestBond(t)
	amounts, err := b.Deposit("alice", num.NewUint(999), now)
	require.NoError(t, err)

	assert.True(t, amounts[0].EQ(num.NewUint(699)))
	assert.True(t, amounts[1].EQ(num.NewUint(299)))
	// the flooring dust stays locked as extra backing
	assert.True(t, b.CollateralBalance().EQ(num.NewUint(999)))
	assert.True(t, b.TotalDebt().EQ(num.NewUint(998)))
}

func testBondDepositAfterMaturity(t *testing.T) {
	b, _ := newTestBond(t)
	_, err := b.Deposit("alice", num.NewUint(1000), now.Add(8*24*time.Hour))
	require.ErrorIs(t, err, ErrBondMature)
}

func testBondProRata(t *testing.T) {
	b, _ := newTestBond(t)
	_, err := b.Deposit("alice", num.NewUint(1000), now)
	require.NoError(t, err)

	amounts := b.ProRata("alice")
	assert.True(t, amounts[0].EQ(num.NewUint(700)))
	assert.True(t, amounts[1].EQ(num.NewUint(300)))

	// give away some senior claim, the pro-rata vector shrinks to what the
	// junior holding supports
	require.NoError(t, b.TrancheAt(0).Token().Transfer("alice", "bob", num.NewUint(350)))
	amounts = b.ProRata("alice")
	assert.True(t, amounts[0].EQ(num.NewUint(350)))
	assert.True(t, amounts[1].EQ(num.NewUint(150)))
}

func testBondRedeem(t *testing.T) {
	b, collateral := newTestBond(t)
	_, err := b.Deposit("alice", num.NewUint(1000), now)
	require.NoError(t, err)

	out, err := b.Redeem("alice", []*num.Uint{num.NewUint(700), num.NewUint(300)})
	require.NoError(t, err)
	assert.True(t, out.EQ(num.NewUint(1000)))
	assert.True(t, collateral.BalanceOf("alice").EQ(num.NewUint(10_000)))
	assert.True(t, b.TotalDebt().IsZero())
}

func testBondRedeemNonProportional(t *testing.T) {
	b, _ := newTestBond(t)
	_, err := b.Deposit("alice", num.NewUint(1000), now)
	require.NoError(t, err)

	_, err = b.Redeem("alice", []*num.Uint{num.NewUint(700), num.NewUint(299)})
	require.ErrorIs(t, err, ErrNonProportional)

	_, err = b.Redeem("alice", []*num.Uint{num.NewUint(700)})
	require.ErrorIs(t, err, ErrNonProportional)
}

func testBondMatureWaterfall(t *testing.T) {
	b, collateral := newTestBond(t)
	_, err := b.Deposit("alice", num.NewUint(1000), now)
	require.NoError(t, err)

	// simulate a 500 collateral loss, the junior tranche absorbs it all
	require.NoError(t, collateral.Transfer(b.ID(), "sink", num.NewUint(500)))
	require.NoError(t, b.Mature(now.Add(7*24*time.Hour)))

	out, err := b.RedeemMature("alice", b.TrancheAt(0), num.NewUint(700))
	require.NoError(t, err)
	assert.True(t, out.EQ(num.NewUint(500)))

	out, err = b.RedeemMature("alice", b.TrancheAt(1), num.NewUint(300))
	require.NoError(t, err)
	assert.True(t, out.IsZero())
}

func testBondMatureResidual(t *testing.T) {
	b, collateral := newTestBond(t)
	_, err := b.Deposit("alice", num.NewUint(1000), now)
	require.NoError(t, err)

	// simulate a 200 collateral gain
	require.NoError(t, collateral.Mint(b.ID(), num.NewUint(200)))
	require.NoError(t, b.Mature(now.Add(7*24*time.Hour)))

	out, err := b.RedeemMature("alice", b.TrancheAt(0), num.NewUint(700))
	require.NoError(t, err)
	assert.True(t, out.EQ(num.NewUint(700)))

	out, err = b.RedeemMature("alice", b.TrancheAt(1), num.NewUint(300))
	require.NoError(t, err)
	assert.True(t, out.EQ(num.NewUint(500)))
}

func testBondMatureErrors(t *testing.T) {
	b, _ := newTestBond(t)
	_, err := b.Deposit("alice", num.NewUint(1000), now)
	require.NoError(t, err)

	require.ErrorIs(t, b.Mature(now), ErrBondNotMature)
	_, err = b.RedeemMature("alice", b.TrancheAt(0), num.NewUint(1))
	require.ErrorIs(t, err, ErrNotMaturedYet)

	require.NoError(t, b.Mature(now.Add(7*24*time.Hour)))
	require.ErrorIs(t, b.Mature(now.Add(7*24*time.Hour)), ErrAlreadyMatured)
}

func testTrancheClass(t *testing.T) {
	collateral := types.NewToken("usdc", "USDC", 6)
	b1, err := New("b1", collateral, []uint32{700, 300}, now.Add(time.Hour))
	require.NoError(t, err)
	b2, err := New("b2", collateral, []uint32{700, 300}, now.Add(48*time.Hour))
	require.NoError(t, err)
	b3, err := New("b3", collateral, []uint32{600, 400}, now.Add(time.Hour))
	require.NoError(t, err)

	// same cut from different bonds shares one risk class
	assert.Equal(t, b1.TrancheAt(0).Class(), b2.TrancheAt(0).Class())
	assert.Equal(t, b1.TrancheAt(1).Class(), b2.TrancheAt(1).Class())
	// different seniority or ratios is a different class
	assert.NotEqual(t, b1.TrancheAt(0).Class(), b1.TrancheAt(1).Class())
	assert.NotEqual(t, b1.TrancheAt(0).Class(), b3.TrancheAt(0).Class())
}

func testBondCDR(t *testing.T) {
	b, collateral := newTestBond(t)
	_, ok := b.CDR()
	assert.False(t, ok)

	_, err := b.Deposit("alice", num.NewUint(1000), now)
	require.NoError(t, err)
	cdr, ok := b.CDR()
	require.True(t, ok)
	assert.True(t, cdr.Equal(num.DecimalOne()))

	require.NoError(t, collateral.Transfer(b.ID(), "sink", num.NewUint(500)))
	cdr, ok = b.CDR()
	require.True(t, ok)
	assert.True(t, cdr.Equal(num.MustDecimalFromString("0.5")))
}

func TestIssuer(t *testing.T) {
	collateral := types.NewToken("usdc", "USDC", 6)
	issuer, err := NewIssuer(collateral, []uint32{700, 300}, 7*24*time.Hour)
	require.NoError(t, err)

	_, err = issuer.GetLatestBond()
	require.ErrorIs(t, err, ErrNoBondIssued)

	b1, err := issuer.Issue(now)
	require.NoError(t, err)
	b2, err := issuer.Issue(now.Add(24 * time.Hour))
	require.NoError(t, err)

	latest, err := issuer.GetLatestBond()
	require.NoError(t, err)
	assert.Same(t, b2, latest)
	assert.Equal(t, b2.MaturityDate(), now.Add(8*24*time.Hour))

	assert.True(t, issuer.IsInstance(b1))
	assert.True(t, issuer.IsInstance(b2))
	foreign, err := New("foreign", collateral, []uint32{700, 300}, now)
	require.NoError(t, err)
	assert.False(t, issuer.IsInstance(foreign))
	assert.False(t, issuer.IsInstance(nil))

	assert.Equal(t, []*Bond{b1, b2}, issuer.Bonds())
}

func TestIssuerRejectsBadTemplate(t *testing.T) {
	collateral := types.NewToken("usdc", "USDC", 6)
	_, err := NewIssuer(collateral, []uint32{500, 400}, time.Hour)
	require.ErrorIs(t, err, ErrInvalidRatios)
}
