package fee

import (
	"context"
	"testing"

	"code.perpnote.io/perpnote/events"
	"code.perpnote.io/perpnote/fee/mocks"
	"code.perpnote.io/perpnote/libs/num"
	"code.perpnote.io/perpnote/logging"
	"code.perpnote.io/perpnote/types"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "governance"

type testEngine struct {
	*Engine
	ctrl   *gomock.Controller
	perp   *mocks.MockValueProvider
	vault  *mocks.MockValueProvider
	ratios *mocks.MockRatioProvider
}

type stubBroker struct {
	evts []events.Event
}

func (b *stubBroker) Send(evt events.Event) {
	b.evts = append(b.evts, evt)
}

func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	te := &testEngine{
		Engine: New(logging.NewTestLogger(), NewDefaultConfig(), owner, &stubBroker{}),
		ctrl:   ctrl,
		perp:   mocks.NewMockValueProvider(ctrl),
		vault:  mocks.NewMockValueProvider(ctrl),
		ratios: mocks.NewMockRatioProvider(ctrl),
	}
	require.NoError(t, te.SetProviders(te.perp, te.vault, te.ratios))
	return te
}

func testParams(t *testing.T) Params {
	t.Helper()
	p := DefaultParams()
	p.TargetSubscriptionRatio = num.MustDecimalFromString("1.25")
	p.DebasementSlope = num.MustDecimalFromString("0.05")
	p.EnrichmentSlope = num.MustDecimalFromString("0.04")
	p.PerpMintFeePerc = num.MustDecimalFromString("0.003")
	p.PerpBurnFeePerc = num.MustDecimalFromString("0.002")
	p.SwapFeePerc = num.MustDecimalFromString("0.001")
	return p
}

func TestFeeEngine(t *testing.T) {
	t.Run("Deviation ratio from both sides of the system", testDeviationRatio)
	t.Run("Empty note side counts as maximally over subscribed", testDeviationRatioEmptyPerp)
	t.Run("Stale system values abort the calculation", testDeviationRatioStale)
	t.Run("Providers must be wired before pricing", testProvidersNotSet)
	t.Run("Providers wire exactly once", testProvidersWireOnce)
	t.Run("Debasement curve pays the roller while under subscribed", testRolloverFeeDebasement)
	t.Run("Debasement fee is floored at the configured maximum", testRolloverFeeDebasementFloor)
	t.Run("Enrichment line charges the roller while over subscribed", testRolloverFeeEnrichment)
	t.Run("Equilibrium rolls over for free", testRolloverFeeEquilibrium)
	t.Run("Mint and burn fees gate on the deviation ratio", testMintBurnGating)
	t.Run("Swaps outside the hard bounds are disabled", testSwapFeeBounds)
	t.Run("Parameter writes are owner gated and validated", testSetParams)
}

func testDeviationRatio(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.perp.EXPECT().TVL().Return(num.DecimalFromInt64(100), true)
	te.vault.EXPECT().TVL().Return(num.DecimalFromInt64(90), true)
	te.ratios.EXPECT().SubscriptionRatios().Return(
		num.MustDecimalFromString("0.5"), num.MustDecimalFromString("0.5"), true)
	require.NoError(t, te.SetParams(context.Background(), owner, testParams(t)))

	dr, err := te.DeviationRatio()
	require.NoError(t, err)
	// (90 * 0.5) / (100 * 0.5) / 1.25
	assert.True(t, dr.Equal(num.MustDecimalFromString("0.72")), dr.String())
}

func testDeviationRatioEmptyPerp(t *testing.T) {
	dr := ComputeDeviationRatio(SystemState{
		PerpTVL:     num.DecimalZero(),
		VaultTVL:    num.DecimalFromInt64(100),
		SeniorRatio: num.MustDecimalFromString("0.7"),
		JuniorRatio: num.MustDecimalFromString("0.3"),
	}, num.MustDecimalFromString("1.25"))
	assert.True(t, dr.Equal(num.DecimalFromInt64(1_000_000)))
}

func testDeviationRatioStale(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.perp.EXPECT().TVL().Return(num.DecimalZero(), false)
	_, err := te.DeviationRatio()
	require.ErrorIs(t, err, ErrStaleSystemValue)

	te.perp.EXPECT().TVL().Return(num.DecimalFromInt64(100), true)
	te.vault.EXPECT().TVL().Return(num.DecimalZero(), false)
	_, err = te.DeviationRatio()
	require.ErrorIs(t, err, ErrStaleSystemValue)
}

func testProvidersNotSet(t *testing.T) {
	e := New(logging.NewTestLogger(), NewDefaultConfig(), owner, &stubBroker{})
	_, err := e.DeviationRatio()
	require.ErrorIs(t, err, ErrProvidersNotSet)
	_, err = e.PerpMintFeePerc()
	require.ErrorIs(t, err, ErrProvidersNotSet)
}

func testProvidersWireOnce(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()
	err := te.SetProviders(te.perp, te.vault, te.ratios)
	require.ErrorIs(t, err, types.ErrAlreadyInitialised)
}

func testRolloverFeeDebasement(t *testing.T) {
	p := testParams(t)
	// dr * target = 1 exactly, fee = -(1 - 0.8) * 0.05
	fee := RolloverFeePerc(p, num.MustDecimalFromString("0.8"))
	assert.True(t, fee.Equal(num.MustDecimalFromString("-0.01")), fee.String())
}

func testRolloverFeeDebasementFloor(t *testing.T) {
	p := testParams(t)
	// raw fee would be -(0.8) * 0.05 / 0.25 = -0.16, floored at -0.02
	fee := RolloverFeePerc(p, num.MustDecimalFromString("0.2"))
	assert.True(t, fee.Equal(num.MustDecimalFromString("-0.02")), fee.String())

	// dr zero degenerates straight to the floor
	fee = RolloverFeePerc(p, num.DecimalZero())
	assert.True(t, fee.Equal(num.MustDecimalFromString("-0.02")))
}

func testRolloverFeeEnrichment(t *testing.T) {
	p := testParams(t)
	fee := RolloverFeePerc(p, num.MustDecimalFromString("1.5"))
	assert.True(t, fee.Equal(num.MustDecimalFromString("0.02")), fee.String())
}

func testRolloverFeeEquilibrium(t *testing.T) {
	p := testParams(t)
	fee := RolloverFeePerc(p, num.DecimalOne())
	assert.True(t, fee.IsZero(), fee.String())
}

func testMintBurnGating(t *testing.T) {
	p := testParams(t)
	under := num.MustDecimalFromString("0.9")
	over := num.MustDecimalFromString("1.1")

	// minting is charged only while not over subscribed
	assert.True(t, MintFeePerc(p, under).Equal(p.PerpMintFeePerc))
	assert.True(t, MintFeePerc(p, over).IsZero())
	// burning is the mirror image
	assert.True(t, BurnFeePerc(p, under).IsZero())
	assert.True(t, BurnFeePerc(p, over).Equal(p.PerpBurnFeePerc))
}

func testSwapFeeBounds(t *testing.T) {
	p := testParams(t)
	one := num.DecimalOne()

	assert.True(t, SwapFeePerc(p, num.MustDecimalFromString("0.5")).Equal(one))
	assert.True(t, SwapFeePerc(p, num.MustDecimalFromString("2.5")).Equal(one))
	assert.True(t, SwapFeePerc(p, one).Equal(p.SwapFeePerc))
	// the bounds themselves are inclusive
	assert.True(t, SwapFeePerc(p, p.DeviationFloor).Equal(p.SwapFeePerc))
	assert.True(t, SwapFeePerc(p, p.DeviationCeiling).Equal(p.SwapFeePerc))
}

func testSetParams(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()
	ctx := context.Background()

	require.ErrorIs(t, te.SetParams(ctx, "mallory", testParams(t)), types.ErrNotOwner)

	bad := testParams(t)
	bad.PerpMintFeePerc = num.MustDecimalFromString("1.5")
	require.ErrorIs(t, te.SetParams(ctx, owner, bad), ErrInvalidPercentage)

	bad = testParams(t)
	bad.TargetSubscriptionRatio = num.DecimalZero()
	require.ErrorIs(t, te.SetParams(ctx, owner, bad), ErrInvalidParams)

	bad = testParams(t)
	bad.MaxDebasementFeePerc = num.MustDecimalFromString("0.5")
	require.ErrorIs(t, te.SetParams(ctx, owner, bad), ErrInvalidPercentage)

	bad = testParams(t)
	bad.DeviationFloor = num.MustDecimalFromString("3")
	require.ErrorIs(t, te.SetParams(ctx, owner, bad), ErrInvalidParams)

	// a rejected write never mutates the live parameters
	assert.True(t, te.Params().DeviationFloor.Equal(DefaultParams().DeviationFloor))

	good := testParams(t)
	require.NoError(t, te.SetParams(ctx, owner, good))
	assert.True(t, te.Params().DebasementSlope.Equal(good.DebasementSlope))
}
