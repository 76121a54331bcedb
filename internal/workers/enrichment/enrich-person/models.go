// internal/workers/enrichment/enrich-person/models.go
package enrichperson

import (
	"enrichment-workers/internal/models"
	"enrichment-workers/internal/orchestrator"
)

type Input struct {
	ClientID      string                        `json:"clientId"`
	Email         string                        `json:"email,omitempty"`
	LinkedInURL   string                        `json:"linkedinUrl,omitempty"`
	FirstName     string                        `json:"firstName,omitempty"`
	LastName      string                        `json:"lastName,omitempty"`
	CompanyDomain string                        `json:"companyDomain,omitempty"`
	Waterfall     *orchestrator.WaterfallConfig `json:"waterfall,omitempty"`
}

func (i *Input) query() models.PersonQuery {
	return models.PersonQuery{
		Email:         i.Email,
		LinkedInURL:   i.LinkedInURL,
		FirstName:     i.FirstName,
		LastName:      i.LastName,
		CompanyDomain: i.CompanyDomain,
	}
}

type Output struct {
	Contact       *models.UnifiedContact `json:"contact"`
	ContactFound  bool                   `json:"contactFound"`
	Completeness  float64                `json:"contactCompleteness"`
	ProvidersUsed []string               `json:"providersUsed"`
	TotalCost     float64                `json:"enrichmentCost"`
}
