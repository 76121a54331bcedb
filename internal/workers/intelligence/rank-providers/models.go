// internal/workers/intelligence/rank-providers/models.go
package rankproviders

import "enrichment-workers/internal/knowledge"

// Input names the context to rank for. Without AvailableProviders the
// registered providers declaring Operation are ranked. RegisteredOnly
// rejects explicit names that are not registered.
type Input struct {
	Industry           string   `json:"industry,omitempty"`
	Operation          string   `json:"operation"`
	AvailableProviders []string `json:"availableProviders,omitempty"`
	RegisteredOnly     bool     `json:"registeredOnly,omitempty"`
}

type Output struct {
	Ranked      []knowledge.RankedProvider `json:"rankedProviders"`
	Order       []string                   `json:"providerOrder"`
	Recommended string                     `json:"recommendedProvider,omitempty"`
}
