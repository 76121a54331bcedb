// internal/workers/intelligence/score-company/config.go
package scorecompany

import (
	"fmt"
	"time"

	"enrichment-workers/internal/common/config"
	"enrichment-workers/internal/scoring"
)

type Config struct {
	Timeout          time.Duration
	Weights          scoring.Weights
	SignalPriorities map[string]float64
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Weights: scoring.DefaultWeights(),
	}
}

// NewConfig derives the handler settings from the worker entry and the
// scoring section of the application config.
func NewConfig(w config.WorkerConfig, s config.ScoringConfig) *Config {
	c := DefaultConfig()
	if w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	if !s.Weights.IsZero() {
		c.Weights = scoring.Weights{
			ICPFit:         s.Weights.ICPFit,
			Signals:        s.Weights.Signals,
			Originality:    s.Weights.Originality,
			CostEfficiency: s.Weights.CostEfficiency,
		}
	}
	c.SignalPriorities = s.SignalPriorities
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	w := c.Weights
	if w.ICPFit < 0 || w.Signals < 0 || w.Originality < 0 || w.CostEfficiency < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	return nil
}
