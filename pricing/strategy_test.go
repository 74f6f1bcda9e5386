package pricing

import (
	"testing"
	"time"

	"code.perpnote.io/perpnote/bond"
	"code.perpnote.io/perpnote/libs/num"
	"code.perpnote.io/perpnote/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Unix(1700000000, 0)

func newPricedBond(t *testing.T) (*bond.Bond, *types.Token) {
	t.Helper()
	collateral := types.NewToken("usdc", "USDC", 6)
	require.NoError(t, collateral.Mint("alice", num.NewUint(10_000)))
	b, err := bond.New("b1", collateral, []uint32{700, 300}, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	_, err = b.Deposit("alice", num.NewUint(1000), now)
	require.NoError(t, err)
	return b, collateral
}

func TestStrategies(t *testing.T) {
	t.Run("Unit prices everything at par", testUnitStrategy)
	t.Run("CDR tracks the waterfall claim per outstanding unit", testCDRStrategy)
	t.Run("CDR flags an unsupplied tranche invalid", testCDRNoSupply)
	t.Run("CDR never prices above par", testCDRCap)
	t.Run("Lower bound damps transient under collateralisation", testCDRLowerBound)
	t.Run("Strategies resolve by name from a closed set", testFromName)
}

func testUnitStrategy(t *testing.T) {
	b, _ := newPricedBond(t)
	p, ok := Unit{}.TranchePrice(b.TrancheAt(0))
	require.True(t, ok)
	assert.True(t, p.Equal(num.DecimalOne()))
}

func testCDRStrategy(t *testing.T) {
	b, collateral := newPricedBond(t)

	p, ok := CDR{}.TranchePrice(b.TrancheAt(0))
	require.True(t, ok)
	assert.True(t, p.Equal(num.DecimalOne()))

	// a 500 collateral loss leaves the senior claim at 500 over a supply
	// of 700 and wipes the junior claim out
	require.NoError(t, collateral.Transfer(b.ID(), "sink", num.NewUint(500)))
	p, ok = CDR{}.TranchePrice(b.TrancheAt(0))
	require.True(t, ok)
	want := num.DecimalFromInt64(500).Div(num.DecimalFromInt64(700))
	assert.True(t, p.Equal(want), p.String())

	p, ok = CDR{}.TranchePrice(b.TrancheAt(1))
	require.True(t, ok)
	assert.True(t, p.IsZero())
}

func testCDRNoSupply(t *testing.T) {
	collateral := types.NewToken("usdc", "USDC", 6)
	b, err := bond.New("b1", collateral, []uint32{700, 300}, now.Add(time.Hour))
	require.NoError(t, err)

	_, ok := CDR{}.TranchePrice(b.TrancheAt(0))
	assert.False(t, ok)
}

func testCDRCap(t *testing.T) {
	b, collateral := newPricedBond(t)

	// residual collateral accrues to the junior-most claim, its price is
	// still capped at par
	require.NoError(t, collateral.Mint(b.ID(), num.NewUint(200)))
	p, ok := CDR{}.TranchePrice(b.TrancheAt(1))
	require.True(t, ok)
	assert.True(t, p.Equal(num.DecimalOne()), p.String())
}

func testCDRLowerBound(t *testing.T) {
	b, collateral := newPricedBond(t)
	s := CDRLowerBound{Bound: DefaultLowerBound}

	require.NoError(t, collateral.Transfer(b.ID(), "sink", num.NewUint(500)))
	p, ok := s.TranchePrice(b.TrancheAt(0))
	require.True(t, ok)
	assert.True(t, p.Equal(DefaultLowerBound), p.String())

	p, ok = s.TranchePrice(b.TrancheAt(1))
	require.True(t, ok)
	assert.True(t, p.Equal(DefaultLowerBound))
}

func testFromName(t *testing.T) {
	for name, want := range map[string]Strategy{
		"unit":            Unit{},
		"cdr":             CDR{},
		"cdr-lower-bound": CDRLowerBound{Bound: DefaultLowerBound},
	} {
		s, err := FromName(name, DefaultLowerBound)
		require.NoError(t, err)
		assert.Equal(t, want, s)
	}

	_, err := FromName("oracle", DefaultLowerBound)
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestYields(t *testing.T) {
	y := NewYields("owner")

	// one is the policy default for unseen classes
	assert.True(t, y.DefinedYield("some-class").Equal(num.DecimalOne()))

	require.ErrorIs(t, y.SetDefinedYield("mallory", "c", num.DecimalOne()), types.ErrNotOwner)
	require.ErrorIs(t, y.SetDefinedYield("owner", "c", num.MustDecimalFromString("-0.1")), ErrNegativeYield)

	require.NoError(t, y.SetDefinedYield("owner", "c", num.MustDecimalFromString("1.05")))
	assert.True(t, y.DefinedYield("c").Equal(num.MustDecimalFromString("1.05")))
}

func TestAdapter(t *testing.T) {
	b, _ := newPricedBond(t)
	a := NewAdapter(Unit{}, NewYields("owner"))

	p, ok := a.TranchePrice(b.TrancheAt(0))
	require.True(t, ok)
	assert.True(t, p.Equal(num.DecimalOne()))
	assert.True(t, a.DefinedYield(b.TrancheAt(0).Class()).Equal(num.DecimalOne()))
}
