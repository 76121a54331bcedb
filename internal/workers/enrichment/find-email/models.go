// internal/workers/enrichment/find-email/models.go
package findemail

type Input struct {
	ClientID      string `json:"clientId"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	CompanyDomain string `json:"companyDomain"`
}

type Output struct {
	Email      string   `json:"email,omitempty"`
	EmailFound bool     `json:"emailFound"`
	Confidence float64  `json:"emailConfidence"`
	Provider   string   `json:"emailProvider,omitempty"`
	TotalCost  float64  `json:"emailLookupCost"`
	Providers  []string `json:"providersUsed"`
}
