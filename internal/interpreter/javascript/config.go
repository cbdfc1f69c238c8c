package javascript

import "time"

// Config defines runtime limits
type Config struct {
	MaxCallStackSize int           // Maximum JS call depth
	PollInterval     time.Duration // How often the cancel buffer is checked
	EnableConsole    bool          // Allow console.log/info/warn/error
}

// DefaultConfig returns the scratchpad configuration
func DefaultConfig() Config {
	return Config{
		MaxCallStackSize: 1024,
		PollInterval:     5 * time.Millisecond,
		EnableConsole:    true,
	}
}
