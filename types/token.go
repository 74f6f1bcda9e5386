package types

import (
	"errors"
	"sort"

	"code.perpnote.io/perpnote/libs/num"
)

var (
	// ErrInsufficientBalance is returned when a transfer or burn exceeds the
	// holder balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrZeroAmount is returned on zero-amount ledger operations.
	ErrZeroAmount = errors.New("zero amount")
)

// Token is a plain fungible balance ledger: holder account to amount, plus
// an adjustable total supply. The note, the vault share, every tranche and
// the underlying collateral are all instances of it.
//
// The ledger carries no locking of its own. All mutations go through an
// engine operation which executes to completion before any other operation
// is observed, so the engines own the synchronisation.
type Token struct {
	id       string
	symbol   string
	decimals uint8

	balances map[string]*num.Uint
	supply   *num.Uint
}

func NewToken(id, symbol string, decimals uint8) *Token {
	return &Token{
		id:       id,
		symbol:   symbol,
		decimals: decimals,
		balances: map[string]*num.Uint{},
		supply:   num.UintZero(),
	}
}

func (t *Token) ID() string      { return t.id }
func (t *Token) Symbol() string  { return t.symbol }
func (t *Token) Decimals() uint8 { return t.decimals }

// TotalSupply returns a copy of the current supply.
func (t *Token) TotalSupply() *num.Uint {
	return t.supply.Clone()
}

// BalanceOf returns a copy of the holder balance, zero for unknown holders.
func (t *Token) BalanceOf(holder string) *num.Uint {
	if b, ok := t.balances[holder]; ok {
		return b.Clone()
	}
	return num.UintZero()
}

// Holders returns all accounts with a non-zero balance, sorted for
// deterministic iteration.
func (t *Token) Holders() []string {
	out := make([]string, 0, len(t.balances))
	for h, b := range t.balances {
		if !b.IsZero() {
			out = append(out, h)
		}
	}
	sort.Strings(out)
	return out
}

// Mint credits the holder and grows the supply.
func (t *Token) Mint(holder string, amount *num.Uint) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	t.credit(holder, amount)
	t.supply.AddSum(amount)
	return nil
}

// Burn debits the holder and shrinks the supply.
func (t *Token) Burn(holder string, amount *num.Uint) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	if err := t.debit(holder, amount); err != nil {
		return err
	}
	t.supply.Sub(t.supply, amount)
	return nil
}

// Transfer moves an amount between two holders, supply is unchanged.
func (t *Token) Transfer(from, to string, amount *num.Uint) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.credit(to, amount)
	return nil
}

func (t *Token) credit(holder string, amount *num.Uint) {
	b, ok := t.balances[holder]
	if !ok {
		b = num.UintZero()
		t.balances[holder] = b
	}
	b.AddSum(amount)
}

func (t *Token) debit(holder string, amount *num.Uint) error {
	b, ok := t.balances[holder]
	if !ok || b.LT(amount) {
		return ErrInsufficientBalance
	}
	b.Sub(b, amount)
	if b.IsZero() {
		delete(t.balances, holder)
	}
	return nil
}
