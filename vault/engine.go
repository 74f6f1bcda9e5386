package vault

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
	"code.perpnote.io/perpnote/perp"
	"code.perpnote.io/perpnote/types"
)

var (
	// ErrReentrant - a deploy, recover or swap is already running.
	ErrReentrant = errors.New("operation already in progress")
	// ErrNothingToDeploy - the idle underlying balance is zero or no rollover
	// would execute with a non-zero amount.
	ErrNothingToDeploy = errors.New("nothing to deploy")
	// ErrBelowMinDeployment - the idle balance sits under the owner-set floor.
	ErrBelowMinDeployment = errors.New("idle balance below the deployment minimum")
	// ErrInvalidPrice - a price read came back flagged invalid.
	ErrInvalidPrice = errors.New("price unavailable")
	// ErrInsufficientInventory - the vault cannot pay the swap out of its own
	// holdings.
	ErrInsufficientInventory = errors.New("insufficient swap inventory")
	// ErrSwapsDisabled ...
	ErrSwapsDisabled = errors.New("swaps are disabled")
	// ErrNoShares - redemption against an empty share supply.
	ErrNoShares = errors.New("no shares outstanding")
)

// NoteEngine is the note-side collaborator: rollovers, the eligible reserve
// set and note pricing.
type NoteEngine interface {
	DepositBond(ctx context.Context) (*bond.Bond, error)
	RolloverEligible(ctx context.Context) []*bond.Tranche
	PreviewRollover(ctx context.Context, in, out *bond.Tranche, amountIn *num.Uint) (*perp.RolloverResult, error)
	Rollover(ctx context.Context, caller string, in, out *bond.Tranche, amountIn *num.Uint) (*perp.RolloverResult, error)
	Note() *types.Token
	NotePrice() (num.Decimal, bool)
}

// BondSource enumerates issued bonds for the recover pass.
type BondSource interface {
	Bonds() []*bond.Bond
}

// FeePolicy prices vault share issuance and redemption plus swaps.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/fee_policy_mock.go -package mocks code.perpnote.io/perpnote/vault FeePolicy
type FeePolicy interface {
	VaultMintFeePerc() num.Decimal
	VaultBurnFeePerc() num.Decimal
	SwapFeeForVaultDelta(delta num.Decimal) (num.Decimal, error)
}

// TimeService ...
type TimeService interface {
	GetTimeNow() time.Time
}

// Broker - the event bus, send events here.
type Broker interface {
	Send(event events.Event)
}

// Pricer values held tranches for the TVL aggregate.
type Pricer interface {
	TranchePrice(t *bond.Tranche) (num.Decimal, bool)
}

// Engine is the rollover vault. It pools underlying collateral behind a
// share token, tranches the idle balance into the current deposit bond and
// rolls the fresh tranches through the note engine's aged reserve, then
// recovers deployed positions as their bonds mature.
//
// Deploy, recover and swaps share a single re-entrancy guard: the rollover
// path calls back into collaborators that could in principle re-enter.
type Engine struct {
	Config
	log *logging.Logger

	underlying   *types.Token
	share        *types.Token
	account      string
	feeCollector string
	access       types.AccessControl

	perp      NoteEngine
	bonds     BondSource
	feePolicy FeePolicy
	pricer    Pricer

	timeService TimeService
	broker      Broker

	held map[string]*bond.Tranche

	minDeployment *num.Uint
	swapsEnabled  bool
	busy          bool
}

// New instantiates the vault and creates the share token.
func New(log *logging.Logger, cfg Config, owner string, underlying *types.Token, noteEngine NoteEngine, bonds BondSource, feePolicy FeePolicy, pricer Pricer, timeService TimeService, broker Broker) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		Config:        cfg,
		log:           log,
		underlying:    underlying,
		share:         types.NewToken("vault-share", "RVS", underlying.Decimals()),
		account:       "vault",
		feeCollector:  owner,
		access:        types.NewAccessControl(owner),
		perp:          noteEngine,
		bonds:         bonds,
		feePolicy:     feePolicy,
		pricer:        pricer,
		timeService:   timeService,
		broker:        broker,
		held:          map[string]*bond.Tranche{},
		minDeployment: num.UintZero(),
		swapsEnabled:  true,
	}
}

// ReloadConf updates the internal configuration of the vault engine.
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

// Share returns the vault share token ledger.
func (e *Engine) Share() *types.Token {
	return e.share
}

// Account is the ledger account holding the vault assets.
func (e *Engine) Account() string {
	return e.account
}

// Deposit pools underlying collateral and mints shares at the current share
// price, the flat mint fee diverted to the collector in shares.
func (e *Engine) Deposit(ctx context.Context, caller string, amount *num.Uint) (*num.Uint, error) {
	if amount.IsZero() {
		return nil, types.ErrZeroAmount
	}
	tvl, ok := e.GetTVL()
	if !ok {
		return nil, ErrInvalidPrice
	}
	amountD := num.ScaleToDecimals(amount, e.underlying.Decimals())
	supply := e.share.TotalSupply()
	var sharesD num.Decimal
	if supply.IsZero() || tvl.IsZero() {
		sharesD = amountD
	} else {
		sharesD = amountD.Mul(num.ScaleToDecimals(supply, e.share.Decimals())).Div(tvl)
	}
	gross, _ := num.ScaleFromDecimals(sharesD, e.share.Decimals())
	if gross.IsZero() {
		return nil, types.ErrZeroAmount
	}
	fee, _ := num.UintFromDecimalFloor(gross.ToDecimal().Mul(e.feePolicy.VaultMintFeePerc()))
	net := num.UintZero().Sub(gross, fee)
	if net.IsZero() {
		return nil, types.ErrZeroAmount
	}

	if err := e.underlying.Transfer(caller, e.account, amount); err != nil {
		return nil, err
	}
	if err := e.share.Mint(caller, net); err != nil {
		return nil, err
	}
	if !fee.IsZero() {
		if err := e.share.Mint(e.feeCollector, fee); err != nil {
			return nil, err
		}
	}
	e.broker.Send(events.NewVaultEvent(ctx, events.VaultDeposit, amountD))
	return net, nil
}

// Redeem burns shares for a proportional slice of every asset the vault
// holds: idle underlying, deployed tranches and note inventory. The flat
// burn fee is taken in shares.
func (e *Engine) Redeem(ctx context.Context, caller string, shares *num.Uint) error {
	if shares.IsZero() {
		return types.ErrZeroAmount
	}
	supply := e.share.TotalSupply()
	if supply.IsZero() {
		return ErrNoShares
	}
	fee, _ := num.UintFromDecimalFloor(shares.ToDecimal().Mul(e.feePolicy.VaultBurnFeePerc()))
	net := num.UintZero().Sub(shares, fee)
	if net.IsZero() {
		return types.ErrZeroAmount
	}

	if !fee.IsZero() {
		if err := e.share.Transfer(caller, e.feeCollector, fee); err != nil {
			return err
		}
	}
	if err := e.share.Burn(caller, net); err != nil {
		return err
	}

	// proportional payout against the pre-burn supply, flooring dust stays
	// with the remaining holders
	pay := func(t *types.Token) error {
		bal := t.BalanceOf(e.account)
		out := num.UintZero().Mul(bal, net)
		out.Div(out, supply)
		if out.IsZero() {
			return nil
		}
		return t.Transfer(e.account, caller, out)
	}
	if err := pay(e.underlying); err != nil {
		return err
	}
	for _, t := range e.sortedHeld() {
		if err := pay(t.Token()); err != nil {
			return err
		}
	}
	if err := pay(e.perp.Note()); err != nil {
		return err
	}
	e.broker.Send(events.NewVaultEvent(ctx, events.VaultRedeem, num.ScaleToDecimals(net, e.share.Decimals())))
	return nil
}

// Deploy tranches the whole idle underlying balance into the current deposit
// bond and rolls the fresh tranches through the note engine's eligible
// reserve, matured collateral first. A deployment that would execute no
// rollover at all leaves every balance untouched.
func (e *Engine) Deploy(ctx context.Context) error {
	defer metrics.EngineTimeCounterAdd(time.Now(), namedLogger, "deploy")
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	idle := e.underlying.BalanceOf(e.account)
	if idle.IsZero() {
		return ErrNothingToDeploy
	}
	if idle.LT(e.minDeployment) {
		return ErrBelowMinDeployment
	}
	db, err := e.perp.DepositBond(ctx)
	if err != nil {
		return err
	}

	// preview pass, nothing below mutates until we know at least one
	// rollover would execute with a non-zero amount
	amounts := db.PreviewDeposit(idle)
	eligible := e.perp.RolloverEligible(ctx)
	if !e.previewDeployment(ctx, db, amounts, eligible) {
		return ErrNothingToDeploy
	}

	now := e.timeService.GetTimeNow()
	if _, err := db.Deposit(e.account, idle, now); err != nil {
		return err
	}
	for _, t := range db.Tranches() {
		e.syncHeld(t)
	}

	deployed := num.DecimalZero()
	for _, in := range db.Tranches() {
		deployed = deployed.Add(e.rollThrough(ctx, in, eligible))
	}
	e.broker.Send(events.NewVaultEvent(ctx, events.VaultDeploy, deployed))
	metrics.OperationCounterInc(namedLogger, "deploy", "ok")

	e.log.Info("vault deployment executed",
		logging.String("bond", db.ID()),
		logging.Stringer("idle", idle),
		logging.String("rolled", deployed.String()),
	)
	return nil
}

// previewDeployment reports whether depositing would lead to at least one
// non-zero rollover.
func (e *Engine) previewDeployment(ctx context.Context, db *bond.Bond, amounts []*num.Uint, eligible []*bond.Tranche) bool {
	for i, in := range db.Tranches() {
		if amounts[i].IsZero() {
			continue
		}
		for _, out := range eligible {
			res, err := e.perp.PreviewRollover(ctx, in, out, amounts[i])
			if err != nil {
				continue
			}
			if !res.TrancheInUsed.IsZero() && !res.TrancheOutPaid.IsZero() {
				return true
			}
		}
	}
	return false
}

// rollThrough walks the eligible reserve with one tranche-in, executing
// rollovers at the smaller constrained amount until either side runs out.
// Returns the note-denominated value rolled.
func (e *Engine) rollThrough(ctx context.Context, in *bond.Tranche, eligible []*bond.Tranche) num.Decimal {
	rolled := num.DecimalZero()
	j := 0
	for j < len(eligible) {
		balance := in.Token().BalanceOf(e.account)
		if balance.IsZero() {
			break
		}
		out := eligible[j]
		res, err := e.perp.Rollover(ctx, e.account, in, out, balance)
		if err != nil {
			// this out is exhausted or unusable, move the cursor
			j++
			continue
		}
		e.syncHeld(in)
		e.syncHeld(out)
		rolled = rolled.Add(res.ValueRolled.ToDecimal())
		if res.TrancheInUsed.LT(balance) {
			// the out side bound the exchange, it is drained now
			j++
		}
	}
	return rolled
}

// Recover redeems deployed positions back into underlying: matured bonds
// through the waterfall payout, immature ones pro-rata where the held
// amounts allow it.
func (e *Engine) Recover(ctx context.Context) error {
	defer metrics.EngineTimeCounterAdd(time.Now(), namedLogger, "recover")
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	now := e.timeService.GetTimeNow()
	recovered := num.DecimalZero()

	for _, b := range e.bonds.Bonds() {
		if !e.holdsAny(b) {
			continue
		}
		if b.IsMature(now) {
			if !b.Matured() {
				if err := b.Mature(now); err != nil {
					e.log.Warn("could not mature bond",
						logging.String("bond", b.ID()),
						logging.Error(err),
					)
					continue
				}
			}
			for _, t := range b.Tranches() {
				bal := t.Token().BalanceOf(e.account)
				if bal.IsZero() {
					continue
				}
				out, err := b.RedeemMature(e.account, t, bal)
				if err != nil {
					e.log.Warn("matured redemption failed",
						logging.String("tranche", t.ID()),
						logging.Error(err),
					)
					continue
				}
				recovered = recovered.Add(num.ScaleToDecimals(out, e.underlying.Decimals()))
				e.syncHeld(t)
			}
			continue
		}
		amounts := b.ProRata(e.account)
		if num.Sum(amounts...).IsZero() {
			continue
		}
		out, err := b.Redeem(e.account, amounts)
		if err != nil {
			e.log.Warn("pro-rata redemption failed",
				logging.String("bond", b.ID()),
				logging.Error(err),
			)
			continue
		}
		recovered = recovered.Add(num.ScaleToDecimals(out, e.underlying.Decimals()))
		for _, t := range b.Tranches() {
			e.syncHeld(t)
		}
	}
	e.broker.Send(events.NewVaultEvent(ctx, events.VaultRecover, recovered))
	metrics.OperationCounterInc(namedLogger, "recover", "ok")
	return nil
}

// SwapUnderlyingForNotes sells notes out of the vault inventory for
// underlying, priced at the note price with the deviation-gated swap fee.
func (e *Engine) SwapUnderlyingForNotes(ctx context.Context, caller string, amount *num.Uint) (*num.Uint, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.exit()
	if !e.swapsEnabled {
		return nil, ErrSwapsDisabled
	}
	if amount.IsZero() {
		return nil, types.ErrZeroAmount
	}
	notePrice, ok := e.perp.NotePrice()
	if !ok || notePrice.IsZero() {
		return nil, ErrInvalidPrice
	}
	valueD := num.ScaleToDecimals(amount, e.underlying.Decimals())
	feePerc, err := e.feePolicy.SwapFeeForVaultDelta(valueD)
	if err != nil {
		return nil, err
	}
	one := num.DecimalOne()
	if feePerc.GreaterThanOrEqual(one) {
		return nil, ErrSwapsDisabled
	}
	note := e.perp.Note()
	out, _ := num.ScaleFromDecimals(valueD.Mul(one.Sub(feePerc)).Div(notePrice), note.Decimals())
	if out.IsZero() {
		return nil, types.ErrZeroAmount
	}
	if note.BalanceOf(e.account).LT(out) {
		return nil, ErrInsufficientInventory
	}

	if err := e.underlying.Transfer(caller, e.account, amount); err != nil {
		return nil, err
	}
	if err := note.Transfer(e.account, caller, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SwapNotesForUnderlying buys notes into the vault inventory against the
// idle underlying balance.
func (e *Engine) SwapNotesForUnderlying(ctx context.Context, caller string, noteAmount *num.Uint) (*num.Uint, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.exit()
	if !e.swapsEnabled {
		return nil, ErrSwapsDisabled
	}
	if noteAmount.IsZero() {
		return nil, types.ErrZeroAmount
	}
	notePrice, ok := e.perp.NotePrice()
	if !ok {
		return nil, ErrInvalidPrice
	}
	note := e.perp.Note()
	valueD := num.ScaleToDecimals(noteAmount, note.Decimals()).Mul(notePrice)
	feePerc, err := e.feePolicy.SwapFeeForVaultDelta(valueD.Neg())
	if err != nil {
		return nil, err
	}
	one := num.DecimalOne()
	if feePerc.GreaterThanOrEqual(one) {
		return nil, ErrSwapsDisabled
	}
	out, _ := num.ScaleFromDecimals(valueD.Mul(one.Sub(feePerc)), e.underlying.Decimals())
	if out.IsZero() {
		return nil, types.ErrZeroAmount
	}
	if e.underlying.BalanceOf(e.account).LT(out) {
		return nil, ErrInsufficientInventory
	}

	if err := note.Transfer(caller, e.account, noteAmount); err != nil {
		return nil, err
	}
	if err := e.underlying.Transfer(e.account, caller, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTVL is the vault-side aggregate value in underlying units: idle
// balance, deployed tranches at their waterfall price and the note inventory
// at the note price. The flag is false when any needed price was invalid.
func (e *Engine) GetTVL() (num.Decimal, bool) {
	total := num.ScaleToDecimals(e.underlying.BalanceOf(e.account), e.underlying.Decimals())
	for _, t := range e.held {
		bal := t.Token().BalanceOf(e.account)
		if bal.IsZero() {
			continue
		}
		price, ok := e.pricer.TranchePrice(t)
		if !ok {
			return num.DecimalZero(), false
		}
		total = total.Add(num.ScaleToDecimals(bal, t.Token().Decimals()).Mul(price))
	}
	note := e.perp.Note()
	if noteBal := note.BalanceOf(e.account); !noteBal.IsZero() {
		notePrice, ok := e.perp.NotePrice()
		if !ok {
			return num.DecimalZero(), false
		}
		total = total.Add(num.ScaleToDecimals(noteBal, note.Decimals()).Mul(notePrice))
	}
	return total, true
}

// TVL satisfies the fee engine's value provider shape.
func (e *Engine) TVL() (num.Decimal, bool) {
	return e.GetTVL()
}

// Held returns the deployed tranche positions in stable order.
func (e *Engine) Held() []*bond.Tranche {
	return e.sortedHeld()
}

// SetMinDeployment sets the idle-balance floor under which Deploy refuses to
// run, owner only.
func (e *Engine) SetMinDeployment(ctx context.Context, caller string, min *num.Uint) error {
	if err := e.access.Check(caller); err != nil {
		return err
	}
	e.minDeployment = min.Clone()
	e.broker.Send(events.NewConfigEvent(ctx, namedLogger, "min_deployment", min.String()))
	return nil
}

// SetSwapsEnabled toggles the swap facility, owner only.
func (e *Engine) SetSwapsEnabled(ctx context.Context, caller string, enabled bool) error {
	if err := e.access.Check(caller); err != nil {
		return err
	}
	e.swapsEnabled = enabled
	v := "disabled"
	if enabled {
		v = "enabled"
	}
	e.broker.Send(events.NewConfigEvent(ctx, namedLogger, "swaps", v))
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

func (e *Engine) enter() error {
	if e.busy {
		return ErrReentrant
	}
	e.busy = true
	return nil
}

func (e *Engine) exit() {
	e.busy = false
}

func (e *Engine) holdsAny(b *bond.Bond) bool {
	for _, t := range b.Tranches() {
		if !t.Token().BalanceOf(e.account).IsZero() {
			return true
		}
	}
	return false
}

func (e *Engine) syncHeld(t *bond.Tranche) {
	if t.Token().BalanceOf(e.account).IsZero() {
		delete(e.held, t.ID())
		return
	}
	e.held[t.ID()] = t
}

func (e *Engine) sortedHeld() []*bond.Tranche {
	out := make([]*bond.Tranche, 0, len(e.held))
	for _, t := range e.held {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
