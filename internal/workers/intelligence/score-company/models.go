// internal/workers/intelligence/score-company/models.go
package scorecompany

import (
	"enrichment-workers/internal/models"
	"enrichment-workers/internal/scoring"
)

// Input reads the variables an enrich-company job leaves behind, so the two
// tasks chain without mappings: company, providersUsed and enrichmentCost.
type Input struct {
	Company       *models.UnifiedCompany `json:"company"`
	ICPFilters    scoring.ICPFilters     `json:"icpFilters"`
	Signals       []scoring.Signal       `json:"signals,omitempty"`
	ProvidersUsed []string               `json:"providersUsed,omitempty"`
	TotalCost     float64                `json:"enrichmentCost,omitempty"`
	Weights       *scoring.Weights       `json:"scoringWeights,omitempty"`
	// SignalPriorities are merged over the worker's configured priorities.
	SignalPriorities map[string]float64 `json:"signalPriorities,omitempty"`
}

type Output struct {
	Score *scoring.Result `json:"intelligenceScore"`
	// Composite is repeated at the top level for gateway conditions.
	Composite float64 `json:"compositeScore"`
}
