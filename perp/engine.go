package perp

import (
	"context"
	"errors"
	"sort"
	"time"

	"code.perpnote.io/perpnote/bond"
	"code.perpnote.io/perpnote/events"
	"code.perpnote.io/perpnote/libs/num"
	"code.perpnote.io/perpnote/logging"
	"code.perpnote.io/perpnote/metrics"
	"code.perpnote.io/perpnote/types"
)

var (
	// ErrNoDepositBond - no currently issued bond is acceptable for deposits.
	ErrNoDepositBond = errors.New("no acceptable deposit bond")
	// ErrUnacceptableTranche - the tranche does not belong to the deposit bond.
	ErrUnacceptableTranche = errors.New("tranche not part of the deposit bond")
	// ErrInvalidPrice - the pricing read was flagged invalid, the operation
	// aborts rather than pricing on stale data.
	ErrInvalidPrice = errors.New("tranche price unavailable")
	// ErrOutOfOrderRedemption - the queue is non-empty and the target is not
	// its head.
	ErrOutOfOrderRedemption = errors.New("redemption must target the queue head")
	// ErrNotInReserve - the target token is not currently held in reserve.
	ErrNotInReserve = errors.New("token not in reserve")
	// ErrTrancheQueued - rollover target is still queued, it has not aged out.
	ErrTrancheQueued = errors.New("tranche still in the redemption queue")
	// ErrZeroOutput - the operation would move no value at all.
	ErrZeroOutput = errors.New("operation computes to zero output")
	// ErrInvalidMaturityTolerance - min above max.
	ErrInvalidMaturityTolerance = errors.New("invalid maturity tolerance bounds")
)

// BondIssuer is the bond issuance collaborator.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/bond_issuer_mock.go -package mocks code.perpnote.io/perpnote/perp BondIssuer
type BondIssuer interface {
	GetLatestBond() (*bond.Bond, error)
	IsInstance(b *bond.Bond) bool
}

// Pricer is the pricing/yield collaborator: per-tranche price with validity
// flag plus the class-level defined yield lookup.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/pricer_mock.go -package mocks code.perpnote.io/perpnote/perp Pricer
type Pricer interface {
	TranchePrice(t *bond.Tranche) (num.Decimal, bool)
	DefinedYield(class string) num.Decimal
}

// FeePolicy prices mint, burn and rollover.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/fee_policy_mock.go -package mocks code.perpnote.io/perpnote/perp FeePolicy
type FeePolicy interface {
	PerpMintFeePerc() (num.Decimal, error)
	PerpBurnFeePerc() (num.Decimal, error)
	PerpRolloverFeePerc() (num.Decimal, error)
}

// TimeService ...
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/time_service_mock.go -package mocks code.perpnote.io/perpnote/perp TimeService
type TimeService interface {
	GetTimeNow() time.Time
}

// Broker - the event bus, send events here.
type Broker interface {
	Send(event events.Event)
	SendBatch(events []events.Event)
}

// Engine is the note engine. It mints and burns the perpetual note against
// tranche deposits and withdrawals, owns the redemption queue and the
// reserve set, and consults the fee policy and the pricing adapter.
//
// Every exported operation runs to completion against all shared state
// before another can be observed, per the system's single-operation
// execution model. Precondition checks happen before any mutation.
type Engine struct {
	Config
	log *logging.Logger

	note         *types.Token
	account      string
	feeCollector string
	access       types.AccessControl

	issuer      BondIssuer
	pricer      Pricer
	feePolicy   FeePolicy
	timeService TimeService
	broker      Broker

	reserve map[string]*bond.Tranche
	queue   *Queue
	applied map[string]num.Decimal

	depositBond *bond.Bond

	minTrancheMaturity time.Duration
	maxTrancheMaturity time.Duration
}

// RolloverResult describes one executed (or previewed) rollover.
type RolloverResult struct {
	// TrancheInUsed is how much of the offered tranche-in was consumed.
	TrancheInUsed *num.Uint
	// TrancheOutPaid is how much tranche-out was paid to the caller, fee
	// already settled.
	TrancheOutPaid *num.Uint
	// ValueRolled is the note-denominated value exchanged, pre-fee.
	ValueRolled *num.Uint
	// FeeValue is the note-denominated fee, negative when the engine paid
	// the caller.
	FeeValue num.Decimal
}

// New instantiates the note engine and creates the note token.
func New(log *logging.Logger, cfg Config, owner string, noteDecimals uint8, issuer BondIssuer, pricer Pricer, feePolicy FeePolicy, timeService TimeService, broker Broker) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:             cfg,
		log:                log,
		note:               types.NewToken("perp-note", "NOTE", noteDecimals),
		account:            "perp",
		feeCollector:       owner,
		access:             types.NewAccessControl(owner),
		issuer:             issuer,
		pricer:             pricer,
		feePolicy:          feePolicy,
		timeService:        timeService,
		broker:             broker,
		reserve:            map[string]*bond.Tranche{},
		queue:              NewQueue(),
		applied:            map[string]num.Decimal{},
		minTrancheMaturity: cfg.TrancheMaturityMin.Get(),
		maxTrancheMaturity: cfg.TrancheMaturityMax.Get(),
	}
}

// ReloadConf updates the internal configuration of the note engine.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}

	e.Config = cfg
}

// Note returns the note token ledger.
func (e *Engine) Note() *types.Token {
	return e.note
}

// Account is the ledger account holding the reserve.
func (e *Engine) Account() string {
	return e.account
}

// Mint deposits a tranche of the current deposit bond and mints notes.
// Returns the net note amount credited to the caller.
func (e *Engine) Mint(ctx context.Context, caller string, tranche *bond.Tranche, amount *num.Uint) (*num.Uint, error) {
	defer metrics.EngineTimeCounterAdd(time.Now(), namedLogger, "mint")
	if amount.IsZero() {
		return nil, types.ErrZeroAmount
	}
	b, err := e.currentDepositBond(ctx)
	if err != nil {
		return nil, err
	}
	if tranche.Bond() != b {
		return nil, ErrUnacceptableTranche
	}
	price, ok := e.pricer.TranchePrice(tranche)
	if !ok {
		return nil, ErrInvalidPrice
	}
	yield := e.appliedYield(tranche)
	mintAmt, _ := num.ScaleFromDecimals(e.noteValue(amount, tranche, yield, price), e.note.Decimals())
	if mintAmt.IsZero() {
		return nil, types.ErrZeroAmount
	}
	feePerc, err := e.feePolicy.PerpMintFeePerc()
	if err != nil {
		return nil, err
	}

	if err := tranche.Token().Transfer(caller, e.account, amount); err != nil {
		return nil, err
	}
	net, err := e.mintWithFee(caller, mintAmt, feePerc)
	if err != nil {
		return nil, err
	}
	e.accept(ctx, tranche, yield)
	e.syncReserve(ctx, tranche)
	e.broker.Send(events.NewSupplyEvent(ctx, e.note.TotalSupply()))
	e.observe("mint")

	if e.log.GetLevel() == logging.DebugLevel {
		e.log.Debug("minted notes",
			logging.String("caller", caller),
			logging.String("tranche", tranche.ID()),
			logging.Stringer("amount", amount),
			logging.Stringer("minted", net),
		)
	}
	return net, nil
}

// Redeem burns notes for tranches. While the queue is non-empty the target
// must be the queue head, with an empty queue any reserve tranche redeems
// directly. Returns the tranche amount paid out and the uncovered note
// leftover the caller keeps.
func (e *Engine) Redeem(ctx context.Context, caller string, tranche *bond.Tranche, noteAmount *num.Uint) (*num.Uint, *num.Uint, error) {
	defer metrics.EngineTimeCounterAdd(time.Now(), namedLogger, "redeem")
	if noteAmount.IsZero() {
		return nil, nil, types.ErrZeroAmount
	}
	now := e.timeService.GetTimeNow()
	e.advanceQueue(ctx, now)

	inOrder := false
	if head := e.queue.Peek(); head != nil {
		if head.ID() != tranche.ID() {
			return nil, nil, ErrOutOfOrderRedemption
		}
		inOrder = true
	} else if _, ok := e.reserve[tranche.ID()]; !ok {
		return nil, nil, ErrNotInReserve
	}

	price, ok := e.pricer.TranchePrice(tranche)
	if !ok {
		return nil, nil, ErrInvalidPrice
	}
	yield, ok := e.applied[tranche.ID()]
	if !ok {
		return nil, nil, ErrNotInReserve
	}
	feePerc, err := e.feePolicy.PerpBurnFeePerc()
	if err != nil {
		return nil, nil, err
	}

	balance := tranche.Token().BalanceOf(e.account)
	one := num.DecimalOne()
	if feePerc.GreaterThanOrEqual(one) {
		return nil, nil, ErrZeroOutput
	}
	// the most notes the reserve balance can cover, gross of the fee.
	// Ceiling here is deliberate: partial coverage can only ever round
	// against the redeemer, never the reserve.
	grossCapD := e.noteValue(balance, tranche, yield, price).Div(one.Sub(feePerc))
	grossCap, _ := num.UintFromDecimalCeil(grossCapD.Mul(pow10(e.note.Decimals())))
	noteUsed := num.Min(noteAmount.Clone(), grossCap)
	if noteUsed.IsZero() {
		return nil, nil, ErrZeroOutput
	}
	// the caller must cover fee and burn in full before anything moves
	if e.note.BalanceOf(caller).LT(noteUsed) {
		return nil, nil, types.ErrInsufficientBalance
	}
	fee, _ := num.UintFromDecimalFloor(noteUsed.ToDecimal().Mul(feePerc))
	burnAmt := num.UintZero().Sub(noteUsed, fee)
	trancheOut := num.Min(e.trancheAmount(burnAmt, tranche, yield, price), balance)
	if trancheOut.IsZero() {
		return nil, nil, ErrZeroOutput
	}

	if !fee.IsZero() {
		if err := e.note.Transfer(caller, e.feeCollector, fee); err != nil {
			return nil, nil, err
		}
	}
	if err := e.note.Burn(caller, burnAmt); err != nil {
		return nil, nil, err
	}
	if err := tranche.Token().Transfer(e.account, caller, trancheOut); err != nil {
		return nil, nil, err
	}

	if inOrder && tranche.Token().BalanceOf(e.account).IsZero() {
		e.queue.PopHead()
		e.broker.Send(events.NewQueueEvent(ctx, e.queue.IDs()))
	}
	e.syncReserve(ctx, tranche)
	e.broker.Send(events.NewSupplyEvent(ctx, e.note.TotalSupply()))
	e.observe("redeem")

	leftover := num.UintZero().Sub(noteAmount, noteUsed)
	return trancheOut, leftover, nil
}

// Rollover exchanges a deposit-bond tranche for an aged-out or matured
// reserve tranche. Note supply never changes, only reserve composition.
func (e *Engine) Rollover(ctx context.Context, caller string, trancheIn, trancheOut *bond.Tranche, amountIn *num.Uint) (*RolloverResult, error) {
	defer metrics.EngineTimeCounterAdd(time.Now(), namedLogger, "rollover")
	res, err := e.PreviewRollover(ctx, trancheIn, trancheOut, amountIn)
	if err != nil {
		return nil, err
	}
	if res.TrancheInUsed.IsZero() || res.TrancheOutPaid.IsZero() {
		return nil, ErrZeroOutput
	}

	if err := trancheIn.Token().Transfer(caller, e.account, res.TrancheInUsed); err != nil {
		return nil, err
	}
	if err := trancheOut.Token().Transfer(e.account, caller, res.TrancheOutPaid); err != nil {
		return nil, err
	}
	e.accept(ctx, trancheIn, e.appliedYield(trancheIn))
	e.syncReserve(ctx, trancheIn)
	e.syncReserve(ctx, trancheOut)
	e.observe("rollover")

	if e.log.GetLevel() == logging.DebugLevel {
		e.log.Debug("rollover executed",
			logging.String("caller", caller),
			logging.String("in", trancheIn.ID()),
			logging.String("out", trancheOut.ID()),
			logging.Stringer("value", res.ValueRolled),
		)
	}
	return res, nil
}

// PreviewRollover computes a rollover without executing it. No balances
// move, though the queue may lazily evict aged heads and the deposit-bond
// cache may refresh, both economically neutral.
func (e *Engine) PreviewRollover(ctx context.Context, trancheIn, trancheOut *bond.Tranche, amountIn *num.Uint) (*RolloverResult, error) {
	if amountIn.IsZero() {
		return nil, types.ErrZeroAmount
	}
	b, err := e.currentDepositBond(ctx)
	if err != nil {
		return nil, err
	}
	if trancheIn.Bond() != b {
		return nil, ErrUnacceptableTranche
	}
	if trancheOut.Bond() == b {
		return nil, ErrUnacceptableTranche
	}
	now := e.timeService.GetTimeNow()
	e.advanceQueue(ctx, now)
	if e.queue.Contains(trancheOut.ID()) {
		return nil, ErrTrancheQueued
	}
	if _, ok := e.reserve[trancheOut.ID()]; !ok {
		return nil, ErrNotInReserve
	}
	priceIn, ok := e.pricer.TranchePrice(trancheIn)
	if !ok {
		return nil, ErrInvalidPrice
	}
	priceOut, ok := e.pricer.TranchePrice(trancheOut)
	if !ok {
		return nil, ErrInvalidPrice
	}
	yieldIn := e.appliedYield(trancheIn)
	yieldOut, ok := e.applied[trancheOut.ID()]
	if !ok {
		return nil, ErrNotInReserve
	}
	unitIn := yieldIn.Mul(priceIn)
	unitOut := yieldOut.Mul(priceOut)
	if unitIn.IsZero() || unitOut.IsZero() {
		return nil, ErrZeroOutput
	}
	feePerc, err := e.feePolicy.PerpRolloverFeePerc()
	if err != nil {
		return nil, err
	}

	balanceOut := trancheOut.Token().BalanceOf(e.account)
	// collateral-denominated value offered by the in side
	valueD := num.ScaleToDecimals(amountIn, trancheIn.Token().Decimals()).Mul(unitIn)
	outAmt, _ := num.ScaleFromDecimals(valueD.Div(unitOut), trancheOut.Token().Decimals())
	used := amountIn.Clone()
	if outAmt.GT(balanceOut) {
		// out side binds: shrink the value to what the reserve can pay and
		// round the in side up so the exchange never favours the caller
		outAmt = balanceOut.Clone()
		valueD = num.ScaleToDecimals(outAmt, trancheOut.Token().Decimals()).Mul(unitOut)
		usedD := valueD.Div(unitIn).Mul(pow10(trancheIn.Token().Decimals()))
		used, _ = num.UintFromDecimalCeil(usedD)
		used = num.Min(used, amountIn.Clone())
	}
	feeValue := valueD.Mul(feePerc)
	outPaid, _ := num.ScaleFromDecimals(valueD.Sub(feeValue).Div(unitOut), trancheOut.Token().Decimals())
	outPaid = num.Min(outPaid, balanceOut)
	valueRolled, _ := num.ScaleFromDecimals(valueD, e.note.Decimals())

	return &RolloverResult{
		TrancheInUsed:  used,
		TrancheOutPaid: outPaid,
		ValueRolled:    valueRolled,
		FeeValue:       feeValue.Mul(pow10(e.note.Decimals())),
	}, nil
}

// RolloverEligible lists reserve tranches a rollover may take out: not part
// of the current deposit bond and no longer queued. Tranches of matured
// bonds come first, the remainder in stable token order.
func (e *Engine) RolloverEligible(ctx context.Context) []*bond.Tranche {
	now := e.timeService.GetTimeNow()
	e.advanceQueue(ctx, now)
	db, _ := e.currentDepositBond(ctx)

	var matured, rest []*bond.Tranche
	for _, t := range e.sortedReserve() {
		if db != nil && t.Bond() == db {
			continue
		}
		if e.queue.Contains(t.ID()) {
			continue
		}
		if t.Bond().IsMature(now) {
			matured = append(matured, t)
			continue
		}
		rest = append(rest, t)
	}
	return append(matured, rest...)
}

// DepositBond resolves the current deposit bond, recomputed lazily from the
// issuer rather than trusted from cache.
func (e *Engine) DepositBond(ctx context.Context) (*bond.Bond, error) {
	return e.currentDepositBond(ctx)
}

// TVL is the note-side aggregate value in collateral units. The flag is
// false when any reserve price read was invalid.
func (e *Engine) TVL() (num.Decimal, bool) {
	total := num.DecimalZero()
	for _, t := range e.reserve {
		price, ok := e.pricer.TranchePrice(t)
		if !ok {
			return num.DecimalZero(), false
		}
		bal := t.Token().BalanceOf(e.account)
		total = total.Add(num.ScaleToDecimals(bal, t.Token().Decimals()).Mul(price))
	}
	return total, true
}

// NotePrice is the collateral value of one note. The flag is false when the
// TVL is unavailable or no notes exist.
func (e *Engine) NotePrice() (num.Decimal, bool) {
	supply := e.note.TotalSupply()
	if supply.IsZero() {
		return num.DecimalZero(), false
	}
	tvl, ok := e.TVL()
	if !ok {
		return num.DecimalZero(), false
	}
	return tvl.Div(num.ScaleToDecimals(supply, e.note.Decimals())), true
}

// SubscriptionRatios exposes the senior/junior split of the current
// issuance: the most senior ratio against the remainder.
func (e *Engine) SubscriptionRatios() (num.Decimal, num.Decimal, bool) {
	b := e.depositBond
	if b == nil {
		var err error
		if b, err = e.issuer.GetLatestBond(); err != nil {
			return num.DecimalZero(), num.DecimalZero(), false
		}
	}
	den := num.DecimalFromInt64(bond.RatioDenominator)
	senior := num.DecimalFromInt64(int64(b.Ratios()[0])).Div(den)
	return senior, num.DecimalOne().Sub(senior), true
}

// ReserveTokens returns current reserve membership in stable order.
func (e *Engine) ReserveTokens() []*bond.Tranche {
	return e.sortedReserve()
}

// ReserveBalance returns the reserve balance for a token.
func (e *Engine) ReserveBalance(tokenID string) *num.Uint {
	if t, ok := e.reserve[tokenID]; ok {
		return t.Token().BalanceOf(e.account)
	}
	return num.UintZero()
}

// QueueIDs returns the redemption queue contents, head first.
func (e *Engine) QueueIDs() []string {
	return e.queue.IDs()
}

// AppliedYield returns the frozen yield of an accepted tranche instance.
func (e *Engine) AppliedYield(trancheID string) (num.Decimal, bool) {
	y, ok := e.applied[trancheID]
	return y, ok
}

// SetMaturityTolerance replaces the acceptance window, owner only.
func (e *Engine) SetMaturityTolerance(ctx context.Context, caller string, min, max time.Duration) error {
	if err := e.access.Check(caller); err != nil {
		return err
	}
	if min < 0 || min > max {
		return ErrInvalidMaturityTolerance
	}
	e.minTrancheMaturity = min
	e.maxTrancheMaturity = max
	e.broker.Send(events.NewConfigEvent(ctx, namedLogger, "maturity_tolerance", max.String()))
	return nil
}

// SetFeeCollector points fees at a new account, owner only.
func (e *Engine) SetFeeCollector(ctx context.Context, caller, collector string) error {
	if err := e.access.Check(caller); err != nil {
		return err
	}
	e.feeCollector = collector
	e.broker.Send(events.NewConfigEvent(ctx, namedLogger, "fee_collector", collector))
	return nil
}

// SetPricer swaps the pricing strategy reference, owner only.
func (e *Engine) SetPricer(ctx context.Context, caller string, p Pricer) error {
	if err := e.access.Check(caller); err != nil {
		return err
	}
	e.pricer = p
	e.broker.Send(events.NewConfigEvent(ctx, namedLogger, "pricer", "updated"))
	return nil
}

// SetFeePolicy swaps the fee policy reference, owner only.
func (e *Engine) SetFeePolicy(ctx context.Context, caller string, f FeePolicy) error {
	if err := e.access.Check(caller); err != nil {
		return err
	}
	e.feePolicy = f
	e.broker.Send(events.NewConfigEvent(ctx, namedLogger, "fee_policy", "updated"))
	return nil
}

// --- internals ---

func (e *Engine) currentDepositBond(ctx context.Context) (*bond.Bond, error) {
	now := e.timeService.GetTimeNow()
	latest, err := e.issuer.GetLatestBond()
	if err != nil || !e.issuer.IsInstance(latest) || !e.acceptable(latest, now) {
		// the cached bond keeps serving while it stays acceptable
		if e.depositBond != nil && e.acceptable(e.depositBond, now) {
			return e.depositBond, nil
		}
		return nil, ErrNoDepositBond
	}
	if e.depositBond != latest {
		e.depositBond = latest
		e.broker.Send(events.NewDepositBondEvent(ctx, latest.ID()))
	}
	return latest, nil
}

func (e *Engine) acceptable(b *bond.Bond, now time.Time) bool {
	ttm := b.TimeToMaturity(now)
	return !b.IsMature(now) && ttm >= e.minTrancheMaturity && ttm <= e.maxTrancheMaturity
}

// appliedYield returns the frozen yield for an accepted instance, or the
// class-level defined yield for a tranche seen for the first time.
func (e *Engine) appliedYield(t *bond.Tranche) num.Decimal {
	if y, ok := e.applied[t.ID()]; ok {
		return y
	}
	return e.pricer.DefinedYield(t.Class())
}

// accept freezes the applied yield and queues the tranche on its first
// entry into the system.
func (e *Engine) accept(ctx context.Context, t *bond.Tranche, yield num.Decimal) {
	if _, seen := e.applied[t.ID()]; seen {
		return
	}
	e.applied[t.ID()] = yield
	now := e.timeService.GetTimeNow()
	if e.queue.Push(t, now, e.minTrancheMaturity, e.maxTrancheMaturity) {
		e.broker.Send(events.NewQueueEvent(ctx, e.queue.IDs()))
	}
}

func (e *Engine) advanceQueue(ctx context.Context, now time.Time) {
	if evicted := e.queue.Advance(now, e.minTrancheMaturity); len(evicted) > 0 {
		for _, t := range evicted {
			e.log.Info("tranche aged out of the redemption queue",
				logging.String("tranche", t.ID()),
			)
		}
		e.broker.Send(events.NewQueueEvent(ctx, e.queue.IDs()))
	}
}

// syncReserve recomputes derived reserve membership for one token and
// notifies observers.
func (e *Engine) syncReserve(ctx context.Context, t *bond.Tranche) {
	bal := t.Token().BalanceOf(e.account)
	if bal.IsZero() {
		delete(e.reserve, t.ID())
	} else {
		e.reserve[t.ID()] = t
	}
	e.broker.Send(events.NewReserveEvent(ctx, t.ID(), bal))
}

func (e *Engine) sortedReserve() []*bond.Tranche {
	out := make([]*bond.Tranche, 0, len(e.reserve))
	for _, t := range e.reserve {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// noteValue is the collateral-denominated value of a tranche amount under
// its applied yield and price.
func (e *Engine) noteValue(amount *num.Uint, t *bond.Tranche, yield, price num.Decimal) num.Decimal {
	return num.ScaleToDecimals(amount, t.Token().Decimals()).Mul(yield).Mul(price)
}

// trancheAmount converts a note amount back into tranche units, flooring.
func (e *Engine) trancheAmount(noteAmt *num.Uint, t *bond.Tranche, yield, price num.Decimal) *num.Uint {
	unit := yield.Mul(price)
	if unit.IsZero() {
		return num.UintZero()
	}
	out, _ := num.ScaleFromDecimals(num.ScaleToDecimals(noteAmt, e.note.Decimals()).Div(unit), t.Token().Decimals())
	return out
}

// mintWithFee mints the gross amount and settles the signed fee against the
// fee collector. Positive fees divert notes to the collector, negative fees
// pay the caller out of the collector's balance.
func (e *Engine) mintWithFee(caller string, gross *num.Uint, feePerc num.Decimal) (*num.Uint, error) {
	if feePerc.IsZero() {
		if err := e.note.Mint(caller, gross); err != nil {
			return nil, err
		}
		return gross, nil
	}
	if feePerc.IsPositive() {
		fee, _ := num.UintFromDecimalFloor(gross.ToDecimal().Mul(feePerc))
		net := num.UintZero().Sub(gross, fee)
		if net.IsZero() {
			return nil, ErrZeroOutput
		}
		if err := e.note.Mint(caller, net); err != nil {
			return nil, err
		}
		if !fee.IsZero() {
			if err := e.note.Mint(e.feeCollector, fee); err != nil {
				return nil, err
			}
		}
		return net, nil
	}
	// negative mint fee: the collector subsidises the caller, capped at what
	// the collector actually holds so the mint never fails mid-settlement
	bonus, _ := num.UintFromDecimalFloor(gross.ToDecimal().Mul(feePerc.Neg()))
	bonus = num.Min(bonus, e.note.BalanceOf(e.feeCollector))
	if err := e.note.Mint(caller, gross); err != nil {
		return nil, err
	}
	if !bonus.IsZero() {
		if err := e.note.Transfer(e.feeCollector, caller, bonus); err != nil {
			return nil, err
		}
	}
	return num.UintZero().Add(gross, bonus), nil
}

// observe updates the operation counter and the supply/queue gauges after a
// successful mutation.
func (e *Engine) observe(op string) {
	metrics.OperationCounterInc(namedLogger, op, "ok")
	supply, _ := num.ScaleToDecimals(e.note.TotalSupply(), e.note.Decimals()).Float64()
	metrics.NoteSupplyGaugeSet(supply)
	metrics.QueueLengthGaugeSet(e.queue.Len())
}

func pow10(decimals uint8) num.Decimal {
	return num.DecimalFromInt64(10).Pow(num.DecimalFromInt64(int64(decimals)))
}
