package config

import (
	"os"
	"path/filepath"

	"code.perpnote.io/perpnote/api"
	"code.perpnote.io/perpnote/broker"
	"code.perpnote.io/perpnote/fee"
	"code.perpnote.io/perpnote/logging"
	"code.perpnote.io/perpnote/metrics"
	"code.perpnote.io/perpnote/perp"
	"code.perpnote.io/perpnote/vault"

	"github.com/BurntSushi/toml"
)

// Config ties together all other application configuration types.
type Config struct {
	API     api.Config     `group:"API" namespace:"api"`
	Perp    perp.Config    `group:"Perp" namespace:"perp"`
	Vault   vault.Config   `group:"Vault" namespace:"vault"`
	Fee     fee.Config     `group:"Fee" namespace:"fee"`
	Broker  broker.Config  `group:"Broker" namespace:"broker"`
	Logging logging.Config `group:"Logging" namespace:"logging"`
	Metrics metrics.Config `group:"Metrics" namespace:"metrics"`
}

// NewDefaultConfig returns a set of default configs for all packages, as
// specified at the per package config level.
func NewDefaultConfig() Config {
	return Config{
		API:     api.NewDefaultConfig(),
		Perp:    perp.NewDefaultConfig(),
		Vault:   vault.NewDefaultConfig(),
		Fee:     fee.NewDefaultConfig(),
		Broker:  broker.NewDefaultConfig(),
		Logging: logging.NewDefaultConfig(),
		Metrics: metrics.NewDefaultConfig(),
	}
}

// Read loads the configuration file from the root path, defaults filling
// anything the file leaves out.
func Read(rootPath string) (*Config, error) {
	path := filepath.Join(rootPath, configFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
