// internal/models/contact.go
package models

// UnifiedContact is the normalized person record. FullName is the display name.
type UnifiedContact struct {
	FullName      string            `json:"fullName"`
	FirstName     string            `json:"firstName,omitempty"`
	LastName      string            `json:"lastName,omitempty"`
	Email         string            `json:"email,omitempty"`
	Title         string            `json:"title,omitempty"`
	Seniority     string            `json:"seniority,omitempty"`
	Department    string            `json:"department,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	LinkedInURL   string            `json:"linkedinUrl,omitempty"`
	CompanyName   string            `json:"companyName,omitempty"`
	CompanyDomain string            `json:"companyDomain,omitempty"`
	Location      string            `json:"location,omitempty"`
	ExternalIDs   map[string]string `json:"externalIds,omitempty" merge:"union"`
}

type PersonQuery struct {
	Email         string `json:"email,omitempty"`
	LinkedInURL   string `json:"linkedinUrl,omitempty"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	CompanyDomain string `json:"companyDomain,omitempty"`
}

type PeopleSearchParams struct {
	CompanyDomain string   `json:"companyDomain,omitempty"`
	CompanyName   string   `json:"companyName,omitempty"`
	Titles        []string `json:"titles,omitempty"`
	Seniorities   []string `json:"seniorities,omitempty"`
	Departments   []string `json:"departments,omitempty"`
	Limit         int      `json:"limit,omitempty"`
	Cursor        string   `json:"cursor,omitempty"`
}

type EmailFindParams struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	CompanyDomain string `json:"companyDomain"`
}

// EmailResult is the outcome of an email lookup.
type EmailResult struct {
	Email      string  `json:"email"`
	Confidence float64 `json:"confidence,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// Verification verdicts.
const (
	EmailStatusValid      = "valid"
	EmailStatusInvalid    = "invalid"
	EmailStatusCatchAll   = "catch_all"
	EmailStatusUnknown    = "unknown"
	EmailStatusDisposable = "disposable"
)

type EmailVerification struct {
	Email       string  `json:"email"`
	Status      string  `json:"status"`
	Deliverable bool    `json:"deliverable"`
	Score       float64 `json:"score,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}
