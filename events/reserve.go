package events

import (
	"context"

	"code.perpnote.io/perpnote/libs/num"
)

// Reserve is emitted whenever a reserve balance of the note engine changes,
// including when a token enters or leaves the reserve set.
type Reserve struct {
	*Base
	token   string
	balance *num.Uint
}

func NewReserveEvent(ctx context.Context, token string, balance *num.Uint) *Reserve {
	return &Reserve{
		Base:    newBase(ctx, ReserveEvent),
		token:   token,
		balance: balance.Clone(),
	}
}

func (r Reserve) Token() string {
	return r.token
}

func (r Reserve) Balance() *num.Uint {
	return r.balance.Clone()
}

// InReserve is false when the balance dropped to zero and the token left
// the reserve set.
func (r Reserve) InReserve() bool {
	return !r.balance.IsZero()
}

// Queue is emitted when redemption queue membership changes.
type Queue struct {
	*Base
	tranches []string
}

func NewQueueEvent(ctx context.Context, tranches []string) *Queue {
	cpy := make([]string, len(tranches))
	copy(cpy, tranches)
	return &Queue{
		Base:     newBase(ctx, QueueEvent),
		tranches: cpy,
	}
}

// Tranches returns queue contents in redemption order, head first.
func (q Queue) Tranches() []string {
	cpy := make([]string, len(q.tranches))
	copy(cpy, q.tranches)
	return cpy
}

// DepositBond is emitted when the cached deposit bond reference changes.
type DepositBond struct {
	*Base
	bond string
}

func NewDepositBondEvent(ctx context.Context, bond string) *DepositBond {
	return &DepositBond{
		Base: newBase(ctx, DepositBondEvent),
		bond: bond,
	}
}

func (d DepositBond) Bond() string {
	return d.bond
}

// Supply is emitted when the note total supply changes.
type Supply struct {
	*Base
	supply *num.Uint
}

func NewSupplyEvent(ctx context.Context, supply *num.Uint) *Supply {
	return &Supply{
		Base:   newBase(ctx, SupplyEvent),
		supply: supply.Clone(),
	}
}

func (s Supply) Supply() *num.Uint {
	return s.supply.Clone()
}
