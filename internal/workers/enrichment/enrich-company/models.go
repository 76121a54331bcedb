// internal/workers/enrichment/enrich-company/models.go
package enrichcompany

import (
	"enrichment-workers/internal/models"
	"enrichment-workers/internal/orchestrator"
)

type Input struct {
	ClientID  string                        `json:"clientId"`
	Domain    string                        `json:"domain,omitempty"`
	Name      string                        `json:"name,omitempty"`
	Waterfall *orchestrator.WaterfallConfig `json:"waterfall,omitempty"`
}

type Output struct {
	Company       *models.UnifiedCompany `json:"company"`
	CompanyFound  bool                   `json:"companyFound"`
	Completeness  float64                `json:"companyCompleteness"`
	ProvidersUsed []string               `json:"providersUsed"`
	TotalCost     float64                `json:"enrichmentCost"`
}
