package fee

import (
	"context"
	"errors"

	"code.perpnote.io/perpnote/events"
	"code.perpnote.io/perpnote/libs/num"
	"code.perpnote.io/perpnote/logging"
	"code.perpnote.io/perpnote/types"
)

var (
	// ErrInvalidPercentage is returned when a configured percentage leaves
	// its allowed range.
	ErrInvalidPercentage = errors.New("percentage out of range")
	// ErrInvalidParams is returned when ratio or slope parameters are not
	// usable (non-positive target ratio, negative slopes, inverted bounds).
	ErrInvalidParams = errors.New("invalid fee policy parameters")
	// ErrStaleSystemValue is returned when either side's TVL read is marked
	// invalid. Pricing on stale data is never allowed.
	ErrStaleSystemValue = errors.New("system value unavailable or stale")
	// ErrProvidersNotSet is returned when the engine is asked for a deviation
	// ratio before both value providers are wired.
	ErrProvidersNotSet = errors.New("value providers not set")
)

// overSubscribedDR stands in for the deviation ratio when the note has no
// value at all, an empty system counts as maximally over-subscribed.
var overSubscribedDR = num.DecimalFromInt64(1_000_000)

// ValueProvider exposes the aggregate value of one side of the system,
// denominated in the collateral unit. The flag is false when any underlying
// price read was invalid.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/value_provider_mock.go -package mocks code.perpnote.io/perpnote/fee ValueProvider
type ValueProvider interface {
	TVL() (num.Decimal, bool)
}

// RatioProvider exposes the senior/junior split of the current issuance,
// used to normalise the two TVLs against each other.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/ratio_provider_mock.go -package mocks code.perpnote.io/perpnote/fee RatioProvider
type RatioProvider interface {
	SubscriptionRatios() (senior, junior num.Decimal, ok bool)
}

// Broker - the event bus, send events here.
type Broker interface {
	Send(event events.Event)
}

// Params are the owner-configured pricing parameters. Every operation
// snapshots them once at call start, a concurrent setter write never changes
// an in-flight computation.
type Params struct {
	// TargetSubscriptionRatio is the vault/note value ratio at equilibrium.
	TargetSubscriptionRatio num.Decimal
	// DeviationFloor/Ceiling are the hard bounds outside which swaps between
	// underlying and notes are disabled.
	DeviationFloor   num.Decimal
	DeviationCeiling num.Decimal
	// DebasementSlope steepens the negative rollover fee while the system is
	// under-subscribed, EnrichmentSlope prices the opposite regime.
	DebasementSlope num.Decimal
	EnrichmentSlope num.Decimal
	// MaxDebasementFeePerc is the most negative rollover fee allowed.
	MaxDebasementFeePerc num.Decimal

	PerpMintFeePerc  num.Decimal
	PerpBurnFeePerc  num.Decimal
	VaultMintFeePerc num.Decimal
	VaultBurnFeePerc num.Decimal
	SwapFeePerc      num.Decimal
}

// DefaultParams returns a conservative parameter set, everything priced at
// zero until governance configures the curve.
func DefaultParams() Params {
	return Params{
		TargetSubscriptionRatio: num.MustDecimalFromString("1.33"),
		DeviationFloor:          num.MustDecimalFromString("0.75"),
		DeviationCeiling:        num.MustDecimalFromString("2"),
		DebasementSlope:         num.DecimalZero(),
		EnrichmentSlope:         num.DecimalZero(),
		MaxDebasementFeePerc:    num.MustDecimalFromString("-0.02"),
		PerpMintFeePerc:         num.DecimalZero(),
		PerpBurnFeePerc:         num.DecimalZero(),
		VaultMintFeePerc:        num.DecimalZero(),
		VaultBurnFeePerc:        num.DecimalZero(),
		SwapFeePerc:             num.DecimalZero(),
	}
}

func (p Params) validate() error {
	if !p.TargetSubscriptionRatio.IsPositive() {
		return ErrInvalidParams
	}
	if p.DebasementSlope.IsNegative() || p.EnrichmentSlope.IsNegative() {
		return ErrInvalidParams
	}
	if p.DeviationFloor.GreaterThan(p.DeviationCeiling) {
		return ErrInvalidParams
	}
	one := num.DecimalOne()
	for _, perc := range []num.Decimal{p.PerpMintFeePerc, p.PerpBurnFeePerc, p.VaultMintFeePerc, p.VaultBurnFeePerc, p.SwapFeePerc} {
		if perc.IsNegative() || perc.GreaterThan(one) {
			return ErrInvalidPercentage
		}
	}
	if p.MaxDebasementFeePerc.IsPositive() || p.MaxDebasementFeePerc.LessThan(one.Neg()) {
		return ErrInvalidPercentage
	}
	return nil
}

// SystemState is one observation of both sides of the system.
type SystemState struct {
	PerpTVL     num.Decimal
	VaultTVL    num.Decimal
	SeniorRatio num.Decimal
	JuniorRatio num.Decimal
}

// Engine prices every mint, burn and rollover as a function of how over or
// under subscribed the whole system currently is.
type Engine struct {
	log *logging.Logger
	cfg Config

	access types.AccessControl
	wired  types.OneTimeInit
	params Params

	perp   ValueProvider
	vault  ValueProvider
	ratios RatioProvider
	broker Broker
}

func New(log *logging.Logger, cfg Config, owner string, broker Broker) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		log:    log,
		cfg:    cfg,
		access: types.NewAccessControl(owner),
		params: DefaultParams(),
		broker: broker,
	}
}

// ReloadConf updates the internal configuration of the fee engine.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}

	e.cfg = cfg
}

// SetProviders wires the two value providers and the ratio provider, once.
// The engine reads both sides of the system lazily so the construction order
// of the three engines does not matter.
func (e *Engine) SetProviders(perp, vault ValueProvider, ratios RatioProvider) error {
	return e.wired.Do(func() error {
		e.perp = perp
		e.vault = vault
		e.ratios = ratios
		return nil
	})
}

// Params returns a copy of the current parameters.
func (e *Engine) Params() Params {
	return e.params
}

// SetParams replaces the parameter set, owner only, validated before any
// mutation.
func (e *Engine) SetParams(ctx context.Context, caller string, p Params) error {
	if err := e.access.Check(caller); err != nil {
		return err
	}
	if err := p.validate(); err != nil {
		return err
	}
	e.params = p
	if e.broker != nil {
		e.broker.Send(events.NewConfigEvent(ctx, namedLogger, "params", "updated"))
	}
	return nil
}

// DeviationRatio reads both TVLs and returns the current deviation ratio.
func (e *Engine) DeviationRatio() (num.Decimal, error) {
	if e.perp == nil || e.vault == nil || e.ratios == nil {
		return num.DecimalZero(), ErrProvidersNotSet
	}
	perpTVL, ok := e.perp.TVL()
	if !ok {
		return num.DecimalZero(), ErrStaleSystemValue
	}
	vaultTVL, ok := e.vault.TVL()
	if !ok {
		return num.DecimalZero(), ErrStaleSystemValue
	}
	senior, junior, ok := e.ratios.SubscriptionRatios()
	if !ok {
		return num.DecimalZero(), ErrStaleSystemValue
	}
	return ComputeDeviationRatio(SystemState{
		PerpTVL:     perpTVL,
		VaultTVL:    vaultTVL,
		SeniorRatio: senior,
		JuniorRatio: junior,
	}, e.params.TargetSubscriptionRatio), nil
}

// ComputeDeviationRatio is the pure deviation ratio calculation:
// (vaultTVL * seniorRatio) / (perpTVL * juniorRatio) / targetRatio.
// A system holding no note value counts as maximally over-subscribed.
func ComputeDeviationRatio(s SystemState, targetRatio num.Decimal) num.Decimal {
	denom := s.PerpTVL.Mul(s.JuniorRatio)
	if denom.IsZero() {
		return overSubscribedDR
	}
	return s.VaultTVL.Mul(s.SeniorRatio).Div(denom).Div(targetRatio)
}

// PerpMintFeePerc prices a note mint. Minting is charged only while the
// system is not over-subscribed.
func (e *Engine) PerpMintFeePerc() (num.Decimal, error) {
	dr, err := e.DeviationRatio()
	if err != nil {
		return num.DecimalZero(), err
	}
	return MintFeePerc(e.params, dr), nil
}

// PerpBurnFeePerc prices a note redemption. Burning is charged only while
// the system is over-subscribed.
func (e *Engine) PerpBurnFeePerc() (num.Decimal, error) {
	dr, err := e.DeviationRatio()
	if err != nil {
		return num.DecimalZero(), err
	}
	return BurnFeePerc(e.params, dr), nil
}

// PerpRolloverFeePerc prices a rollover. The sign encodes the direction:
// negative means the note engine pays the caller.
func (e *Engine) PerpRolloverFeePerc() (num.Decimal, error) {
	dr, err := e.DeviationRatio()
	if err != nil {
		return num.DecimalZero(), err
	}
	return RolloverFeePerc(e.params, dr), nil
}

// VaultMintFeePerc is the flat fee on vault share issuance.
func (e *Engine) VaultMintFeePerc() num.Decimal {
	return e.params.VaultMintFeePerc
}

// VaultBurnFeePerc is the flat fee on vault share redemption.
func (e *Engine) VaultBurnFeePerc() num.Decimal {
	return e.params.VaultBurnFeePerc
}

// SwapFeePerc prices an underlying<->note swap given the deviation ratio the
// system would have after the swap. Swaps pushing the system outside the
// hard bounds are disabled by pricing them at 100%.
func (e *Engine) SwapFeePerc(drPost num.Decimal) num.Decimal {
	return SwapFeePerc(e.params, drPost)
}

// SwapFeeForVaultDelta prices a swap that would move the vault-side TVL by
// delta, positive when underlying flows into the vault. The fee is evaluated
// at the post-swap deviation ratio.
func (e *Engine) SwapFeeForVaultDelta(delta num.Decimal) (num.Decimal, error) {
	if e.perp == nil || e.vault == nil || e.ratios == nil {
		return num.DecimalZero(), ErrProvidersNotSet
	}
	perpTVL, ok := e.perp.TVL()
	if !ok {
		return num.DecimalZero(), ErrStaleSystemValue
	}
	vaultTVL, ok := e.vault.TVL()
	if !ok {
		return num.DecimalZero(), ErrStaleSystemValue
	}
	senior, junior, ok := e.ratios.SubscriptionRatios()
	if !ok {
		return num.DecimalZero(), ErrStaleSystemValue
	}
	drPost := ComputeDeviationRatio(SystemState{
		PerpTVL:     perpTVL,
		VaultTVL:    vaultTVL.Add(delta),
		SeniorRatio: senior,
		JuniorRatio: junior,
	}, e.params.TargetSubscriptionRatio)
	return SwapFeePerc(e.params, drPost), nil
}

// MintFeePerc: dr <= 1 charges the configured mint fee, dr > 1 mints free.
func MintFeePerc(p Params, dr num.Decimal) num.Decimal {
	if dr.GreaterThan(num.DecimalOne()) {
		return num.DecimalZero()
	}
	return p.PerpMintFeePerc
}

// BurnFeePerc: dr > 1 charges the configured burn fee, dr <= 1 burns free.
func BurnFeePerc(p Params, dr num.Decimal) num.Decimal {
	if dr.GreaterThan(num.DecimalOne()) {
		return p.PerpBurnFeePerc
	}
	return num.DecimalZero()
}

// RolloverFeePerc is the deviation ratio curve.
//
// Under-subscription (dr <= 1) pays the roller:
//
//	fee = -(1 - dr) * debasementSlope / min(dr * targetRatio, 1)
//
// floored at MaxDebasementFeePerc. The magnitude grows hyperbolically as the
// liquidity supporting rollovers shrinks. Over-subscription (dr > 1) charges
// the roller linearly: fee = (dr - 1) * enrichmentSlope.
func RolloverFeePerc(p Params, dr num.Decimal) num.Decimal {
	one := num.DecimalOne()
	if dr.GreaterThan(one) {
		return dr.Sub(one).Mul(p.EnrichmentSlope)
	}
	denom := num.MinD(dr.Mul(p.TargetSubscriptionRatio), one)
	if denom.IsZero() {
		return p.MaxDebasementFeePerc
	}
	fee := one.Sub(dr).Mul(p.DebasementSlope).Div(denom).Neg()
	return num.MaxD(p.MaxDebasementFeePerc, fee)
}

// SwapFeePerc is the pure swap pricing: outside the hard deviation bounds
// the swap is disabled entirely.
func SwapFeePerc(p Params, drPost num.Decimal) num.Decimal {
	if drPost.LessThan(p.DeviationFloor) || drPost.GreaterThan(p.DeviationCeiling) {
		return num.DecimalOne()
	}
	return p.SwapFeePerc
}
