package api

import (
	"time"

	"code.perpnote.io/perpnote/config/encoding"
	"code.perpnote.io/perpnote/logging"
)

// namedLogger is the identifier for package and should ideally match the
// package name, it is emitted as a hierarchical label e.g. 'api.rest'.
const namedLogger = "api.rest"

// Config represents the configuration of the api package
type Config struct {
	Level   encoding.LogLevel `long:"log-level"`
	Timeout encoding.Duration `long:"timeout"`
	Port    int               `long:"port" description:"Listen for connections on port <port>"`
	IP      string            `long:"ip" description:"Bind to address <ip>"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:   encoding.LogLevel{Level: logging.InfoLevel},
		Timeout: encoding.Duration{Duration: 5000 * time.Millisecond},
		IP:      "0.0.0.0",
		Port:    3003,
	}
}
