// internal/orchestrator/registry.go
package orchestrator

import (
	"fmt"
	"sort"

	"enrichment-workers/internal/providers"
	"enrichment-workers/internal/ratelimit"
)

type registration struct {
	provider providers.Provider
	priority int
}

// Registry holds the providers known to the process together with their
// priority (lower is tried first). It is populated at startup and only read
// afterwards, so it carries no lock.
type Registry struct {
	entries []registration
	byName  map[string]int
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds p at priority. Names must be unique.
func (r *Registry) Register(p providers.Provider, priority int) error {
	if p == nil {
		return fmt.Errorf("register provider: nil provider")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("register provider: empty name")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("register provider %q: already registered", name)
	}
	r.byName[name] = len(r.entries)
	r.entries = append(r.entries, registration{provider: p, priority: priority})
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (providers.Provider, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].provider, true
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Names lists registered providers in priority order.
func (r *Registry) Names() []string {
	sorted := r.sorted(func(registration) bool { return true })
	names := make([]string, len(sorted))
	for i, p := range sorted {
		names[i] = p.Name()
	}
	return names
}

// ProvidersWithCapability returns the providers declaring c, ascending by
// priority. Ties keep registration order.
func (r *Registry) ProvidersWithCapability(c providers.Capability) []providers.Provider {
	return r.sorted(func(e registration) bool { return e.provider.Supports(c) })
}

func (r *Registry) sorted(keep func(registration) bool) []providers.Provider {
	matched := make([]registration, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].priority < matched[j].priority
	})
	out := make([]providers.Provider, len(matched))
	for i, e := range matched {
		out[i] = e.provider
	}
	return out
}

type limited interface {
	Limiter() *ratelimit.Limiter
}

// Close stops the rate limiters of every registered provider.
func (r *Registry) Close() {
	for _, e := range r.entries {
		if l, ok := e.provider.(limited); ok && l.Limiter() != nil {
			l.Limiter().Close()
		}
	}
}
