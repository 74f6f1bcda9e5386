package vault

import (
	"code.perpnote.io/perpnote/config/encoding"
	"code.perpnote.io/perpnote/logging"
)

const namedLogger = "vault"

// Config represents the configuration of the rollover vault engine.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
	}
}
