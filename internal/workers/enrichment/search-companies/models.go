// internal/workers/enrichment/search-companies/models.go
package searchcompanies

import "enrichment-workers/internal/models"

type Input struct {
	ClientID string `json:"clientId"`
	models.CompanySearchParams
}

type Output struct {
	Companies    []models.UnifiedCompany `json:"companies"`
	Provider     string                  `json:"searchProvider,omitempty"`
	TotalResults int                     `json:"totalResults"`
	HasMore      bool                    `json:"hasMore"`
	NextCursor   string                  `json:"nextCursor,omitempty"`
	TotalCost    float64                 `json:"searchCost"`
}
