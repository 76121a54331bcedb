package providers

import (
	"context"
	"fmt"
	"slices"

	"enrichment-workers/internal/ratelimit"
)

// Base carries the identity, capability set and rate limiter shared by all
// adapters. Adapters embed it and call Acquire before every outbound call.
type Base struct {
	name         string
	capabilities []Capability
	limiter      *ratelimit.Limiter
}

// NewBase creates a Base. A nil limiter means the source is not rate limited.
func NewBase(name string, capabilities []Capability, limiter *ratelimit.Limiter) Base {
	return Base{
		name:         name,
		capabilities: slices.Clone(capabilities),
		limiter:      limiter,
	}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Capabilities() []Capability {
	return slices.Clone(b.capabilities)
}

func (b *Base) Supports(c Capability) bool {
	return slices.Contains(b.capabilities, c)
}

func (b *Base) Limiter() *ratelimit.Limiter {
	return b.limiter
}

// Acquire waits for a rate limit slot. The error is already phrased for a
// failure envelope.
func (b *Base) Acquire(ctx context.Context) error {
	if b.limiter == nil {
		return nil
	}
	if err := b.limiter.Acquire(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", b.name, err)
	}
	return nil
}
