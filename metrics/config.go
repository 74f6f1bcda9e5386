package metrics

// Config represents the configuration of the metric package
type Config struct {
	Enabled bool
	Path    string
	Port    int
}

// NewDefaultConfig creates an instance of config with default values
func NewDefaultConfig() Config {
	return Config{
		Enabled: false,
		Path:    "/metrics",
		Port:    2112,
	}
}
