package perp

import (
	"time"

	"code.perpnote.io/perpnote/config/encoding"
	"code.perpnote.io/perpnote/logging"
)

const namedLogger = "perp"

// Config represents the configuration of the note engine.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// TrancheMaturityMin/Max bound the time-to-maturity window within which
	// a tranche's owning bond is acceptable for deposit and queueing.
	TrancheMaturityMin encoding.Duration
	TrancheMaturityMax encoding.Duration
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:              encoding.LogLevel{Level: logging.InfoLevel},
		TrancheMaturityMin: encoding.Duration{Duration: 24 * time.Hour},
		TrancheMaturityMax: encoding.Duration{Duration: 28 * 24 * time.Hour},
	}
}
