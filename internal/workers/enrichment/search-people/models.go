// internal/workers/enrichment/search-people/models.go
package searchpeople

import "enrichment-workers/internal/models"

type Input struct {
	ClientID string `json:"clientId"`
	models.PeopleSearchParams
}

type Output struct {
	Contacts     []models.UnifiedContact `json:"contacts"`
	Provider     string                  `json:"searchProvider,omitempty"`
	TotalResults int                     `json:"totalResults"`
	HasMore      bool                    `json:"hasMore"`
	NextCursor   string                  `json:"nextCursor,omitempty"`
	TotalCost    float64                 `json:"searchCost"`
}
