package events

import (
	"context"

	"code.perpnote.io/perpnote/libs/num"
)

// VaultAction names what the vault just did.
type VaultAction string

const (
	VaultDeploy  VaultAction = "DEPLOY"
	VaultRecover VaultAction = "RECOVER"
	VaultDeposit VaultAction = "DEPOSIT"
	VaultRedeem  VaultAction = "REDEEM"
)

// Vault is emitted at the end of every vault operation.
type Vault struct {
	*Base
	action VaultAction
	value  num.Decimal
}

func NewVaultEvent(ctx context.Context, action VaultAction, value num.Decimal) *Vault {
	return &Vault{
		Base:   newBase(ctx, VaultEvent),
		action: action,
		value:  value,
	}
}

func (v Vault) Action() VaultAction {
	return v.action
}

// Value is the note-denominated value moved by the operation.
func (v Vault) Value() num.Decimal {
	return v.value
}

// Config is emitted when an owner-gated configuration value is written,
// the audited setter path for off-chain consumers.
type Config struct {
	*Base
	engine string
	key    string
	value  string
}

func NewConfigEvent(ctx context.Context, engine, key, value string) *Config {
	return &Config{
		Base:   newBase(ctx, ConfigEvent),
		engine: engine,
		key:    key,
		value:  value,
	}
}

func (c Config) Engine() string { return c.engine }
func (c Config) Key() string    { return c.key }
func (c Config) Value() string  { return c.value }
