// internal/models/company.go
package models

// UnifiedCompany is the normalized company record every provider maps into.
// Name is the only field a provider is expected to fill; the rest stay empty
// when the source has nothing for them.
type UnifiedCompany struct {
	Name          string            `json:"name"`
	Domain        string            `json:"domain,omitempty"`
	Description   string            `json:"description,omitempty"`
	Industry      string            `json:"industry,omitempty"`
	SubIndustry   string            `json:"subIndustry,omitempty"`
	EmployeeCount *int              `json:"employeeCount,omitempty"`
	Revenue       *float64          `json:"revenue,omitempty"`
	FoundedYear   *int              `json:"foundedYear,omitempty"`
	Country       string            `json:"country,omitempty"`
	City          string            `json:"city,omitempty"`
	LinkedInURL   string            `json:"linkedinUrl,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Technologies  []string          `json:"technologies,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	ExternalIDs   map[string]string `json:"externalIds,omitempty" merge:"union"`
}

// CompanyQuery identifies the company to enrich. At least one of Domain or
// Name must be set.
type CompanyQuery struct {
	Domain string `json:"domain,omitempty"`
	Name   string `json:"name,omitempty"`
}

// CompanySearchParams filters a company search.
type CompanySearchParams struct {
	Query        string   `json:"query,omitempty"`
	Industries   []string `json:"industries,omitempty"`
	Countries    []string `json:"countries,omitempty"`
	MinEmployees *int     `json:"minEmployees,omitempty"`
	MaxEmployees *int     `json:"maxEmployees,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	Cursor       string   `json:"cursor,omitempty"`
}
