package events

import (
	"context"
)

// Type is the type of an event emitted on the bus.
type Type int

const (
	// All is used by subscribers that want everything.
	All Type = iota
	// ReserveEvent - a reserve balance of the note engine changed.
	ReserveEvent
	// QueueEvent - the redemption queue membership changed.
	QueueEvent
	// DepositBondEvent - the cached deposit bond reference moved on.
	DepositBondEvent
	// SupplyEvent - the note total supply changed.
	SupplyEvent
	// VaultEvent - the vault deployed or recovered assets.
	VaultEvent
	// ConfigEvent - an owner-gated configuration value was written.
	ConfigEvent
)

var eventNames = map[Type]string{
	All:              "ALL",
	ReserveEvent:     "RESERVE",
	QueueEvent:       "QUEUE",
	DepositBondEvent: "DEPOSIT_BOND",
	SupplyEvent:      "SUPPLY",
	VaultEvent:       "VAULT",
	ConfigEvent:      "CONFIG",
}

func (t Type) String() string {
	if s, ok := eventNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Event is the interface for all events sent through the broker. Events are
// purely observational, no engine logic depends on a subscriber seeing them.
type Event interface {
	Type() Type
	Context() context.Context
}

// Base is embedded by every concrete event.
type Base struct {
	ctx context.Context
	et  Type
}

func newBase(ctx context.Context, et Type) *Base {
	return &Base{
		ctx: ctx,
		et:  et,
	}
}

func (b Base) Type() Type {
	return b.et
}

func (b Base) Context() context.Context {
	return b.ctx
}
