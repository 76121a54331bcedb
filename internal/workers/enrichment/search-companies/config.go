// internal/workers/enrichment/search-companies/config.go
package searchcompanies

import (
	"fmt"
	"time"

	"enrichment-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{Timeout: 30 * time.Second}
}

// NewConfig derives the handler settings from the worker entry in the
// application config.
func NewConfig(w config.WorkerConfig) *Config {
	c := DefaultConfig()
	if w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
