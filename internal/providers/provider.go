// Package providers defines the contract every external data source
// implements: a declared capability set plus one optional interface per
// capability, each returning a uniform response envelope.
package providers

import (
	"context"

	"enrichment-workers/internal/models"
)

// Capability names one operation a provider may support.
type Capability string

const (
	CapabilityCompanySearch Capability = "company_search"
	CapabilityCompanyEnrich Capability = "company_enrich"
	CapabilityPeopleSearch  Capability = "people_search"
	CapabilityPeopleEnrich  Capability = "people_enrich"
	CapabilityEmailFind     Capability = "email_find"
	CapabilityEmailVerify   Capability = "email_verify"
)

// AllCapabilities lists every known capability in declaration order.
var AllCapabilities = []Capability{
	CapabilityCompanySearch,
	CapabilityCompanyEnrich,
	CapabilityPeopleSearch,
	CapabilityPeopleEnrich,
	CapabilityEmailFind,
	CapabilityEmailVerify,
}

// ParseCapability returns the capability named s.
func ParseCapability(s string) (Capability, bool) {
	for _, c := range AllCapabilities {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Provider is implemented by every adapter. The registry dispatches on the
// declared capability set; a provider that declares a capability without
// implementing its interface is skipped for that capability.
type Provider interface {
	Name() string
	Capabilities() []Capability
	Supports(c Capability) bool
}

// Capability interfaces. Implementations never return Go errors: every
// failure is reported through the envelope with Success false.

type CompanySearcher interface {
	SearchCompanies(ctx context.Context, params models.CompanySearchParams) *PaginatedResponse[models.UnifiedCompany]
}

type CompanyEnricher interface {
	EnrichCompany(ctx context.Context, query models.CompanyQuery) *Response[models.UnifiedCompany]
}

type PeopleSearcher interface {
	SearchPeople(ctx context.Context, params models.PeopleSearchParams) *PaginatedResponse[models.UnifiedContact]
}

type PeopleEnricher interface {
	EnrichPerson(ctx context.Context, query models.PersonQuery) *Response[models.UnifiedContact]
}

type EmailFinder interface {
	FindEmail(ctx context.Context, params models.EmailFindParams) *Response[models.EmailResult]
}

type EmailVerifier interface {
	VerifyEmail(ctx context.Context, email string) *Response[models.EmailVerification]
}
