// internal/workers/enrichment/verify-email/models.go
package verifyemail

type Input struct {
	ClientID string `json:"clientId"`
	Email    string `json:"email"`
}

type Output struct {
	Email         string   `json:"email"`
	Verified      bool     `json:"emailVerified"`
	Status        string   `json:"emailStatus"`
	Deliverable   bool     `json:"emailDeliverable"`
	Score         float64  `json:"emailScore"`
	Reason        string   `json:"emailStatusReason,omitempty"`
	ProvidersUsed []string `json:"providersUsed"`
	TotalCost     float64  `json:"verificationCost"`
}
