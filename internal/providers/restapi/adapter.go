// Package restapi adapts a JSON-over-HTTP enrichment source to the provider
// contract. The mapping is deliberately thin: payloads are expected to carry
// the unified field names, optionally wrapped in a "data" envelope.
package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	commonhttp "enrichment-workers/internal/common/http"
	"enrichment-workers/internal/models"
	"enrichment-workers/internal/providers"
	"enrichment-workers/internal/ratelimit"
)

// Transport is the outbound call the adapter depends on.
type Transport interface {
	Request(ctx context.Context, r commonhttp.Request) (map[string]interface{}, error)
}

// Config describes one REST source.
type Config struct {
	Name         string
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	Capabilities []providers.Capability
	// CreditCost is billed for a successful lookup when the payload does not
	// report its own cost.
	CreditCost float64
	// MissCost is billed when the source answers "not found".
	MissCost  float64
	Timeout   time.Duration
	Endpoints map[providers.Capability]string
}

var defaultEndpoints = map[providers.Capability]string{
	providers.CapabilityCompanySearch: "/v1/companies/search",
	providers.CapabilityCompanyEnrich: "/v1/companies/enrich",
	providers.CapabilityPeopleSearch:  "/v1/people/search",
	providers.CapabilityPeopleEnrich:  "/v1/people/enrich",
	providers.CapabilityEmailFind:     "/v1/email/find",
	providers.CapabilityEmailVerify:   "/v1/email/verify",
}

type Adapter struct {
	providers.Base
	cfg       Config
	transport Transport
}

// New creates an adapter. A nil limiter leaves the source unthrottled.
func New(cfg Config, transport Transport, limiter *ratelimit.Limiter) *Adapter {
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-Api-Key"
	}
	endpoints := make(map[providers.Capability]string, len(defaultEndpoints))
	for c, p := range defaultEndpoints {
		endpoints[c] = p
	}
	for c, p := range cfg.Endpoints {
		endpoints[c] = p
	}
	cfg.Endpoints = endpoints

	return &Adapter{
		Base:      providers.NewBase(cfg.Name, cfg.Capabilities, limiter),
		cfg:       cfg,
		transport: transport,
	}
}

func (a *Adapter) EnrichCompany(ctx context.Context, query models.CompanyQuery) *providers.Response[models.UnifiedCompany] {
	payload, cost, errResp := a.call(ctx, providers.CapabilityCompanyEnrich, http.MethodGet, map[string]string{
		"domain": query.Domain,
		"name":   query.Name,
	}, nil)
	if errResp != nil {
		return providers.Failure[models.UnifiedCompany](errResp.msg, errResp.credits)
	}

	var company models.UnifiedCompany
	record := unwrap(payload)
	models.DecodeLenient(record, &company)
	if company.Name == "" && company.Domain == "" {
		return providers.Failure[models.UnifiedCompany]("empty company payload", cost)
	}
	a.stampID(&company.ExternalIDs, record)
	return providers.Success(&company, cost, quality(payload))
}

func (a *Adapter) SearchCompanies(ctx context.Context, params models.CompanySearchParams) *providers.PaginatedResponse[models.UnifiedCompany] {
	payload, cost, errResp := a.call(ctx, providers.CapabilityCompanySearch, http.MethodPost, nil, params)
	if errResp != nil {
		return providers.PageFailure[models.UnifiedCompany](errResp.msg, errResp.credits)
	}

	var companies []models.UnifiedCompany
	for _, record := range records(payload) {
		var c models.UnifiedCompany
		models.DecodeLenient(record, &c)
		if c.Name == "" && c.Domain == "" {
			continue
		}
		a.stampID(&c.ExternalIDs, record)
		companies = append(companies, c)
	}
	total, cursor := pagination(payload, len(companies))
	return providers.PageSuccess(companies, cost, qualityOr(payload, 0.5), total, cursor)
}

func (a *Adapter) EnrichPerson(ctx context.Context, query models.PersonQuery) *providers.Response[models.UnifiedContact] {
	payload, cost, errResp := a.call(ctx, providers.CapabilityPeopleEnrich, http.MethodGet, map[string]string{
		"email":          query.Email,
		"linkedin_url":   query.LinkedInURL,
		"first_name":     query.FirstName,
		"last_name":      query.LastName,
		"company_domain": query.CompanyDomain,
	}, nil)
	if errResp != nil {
		return providers.Failure[models.UnifiedContact](errResp.msg, errResp.credits)
	}

	var contact models.UnifiedContact
	record := unwrap(payload)
	models.DecodeLenient(record, &contact)
	if contact.FullName == "" && contact.FirstName != "" {
		contact.FullName = joinName(contact.FirstName, contact.LastName)
	}
	if contact.FullName == "" && contact.Email == "" {
		return providers.Failure[models.UnifiedContact]("empty person payload", cost)
	}
	a.stampID(&contact.ExternalIDs, record)
	return providers.Success(&contact, cost, quality(payload))
}

func (a *Adapter) SearchPeople(ctx context.Context, params models.PeopleSearchParams) *providers.PaginatedResponse[models.UnifiedContact] {
	payload, cost, errResp := a.call(ctx, providers.CapabilityPeopleSearch, http.MethodPost, nil, params)
	if errResp != nil {
		return providers.PageFailure[models.UnifiedContact](errResp.msg, errResp.credits)
	}

	var contacts []models.UnifiedContact
	for _, record := range records(payload) {
		var c models.UnifiedContact
		models.DecodeLenient(record, &c)
		if c.FullName == "" && c.FirstName != "" {
			c.FullName = joinName(c.FirstName, c.LastName)
		}
		if c.FullName == "" {
			continue
		}
		a.stampID(&c.ExternalIDs, record)
		contacts = append(contacts, c)
	}
	total, cursor := pagination(payload, len(contacts))
	return providers.PageSuccess(contacts, cost, qualityOr(payload, 0.5), total, cursor)
}

func (a *Adapter) FindEmail(ctx context.Context, params models.EmailFindParams) *providers.Response[models.EmailResult] {
	payload, cost, errResp := a.call(ctx, providers.CapabilityEmailFind, http.MethodGet, map[string]string{
		"first_name": params.FirstName,
		"last_name":  params.LastName,
		"domain":     params.CompanyDomain,
	}, nil)
	if errResp != nil {
		return providers.Failure[models.EmailResult](errResp.msg, errResp.credits)
	}

	var result models.EmailResult
	models.DecodeLenient(unwrap(payload), &result)
	if result.Email == "" {
		return providers.Failure[models.EmailResult]("no email found", cost)
	}
	result.Source = a.Name()
	return providers.Success(&result, cost, qualityOr(payload, result.Confidence))
}

func (a *Adapter) VerifyEmail(ctx context.Context, email string) *providers.Response[models.EmailVerification] {
	payload, cost, errResp := a.call(ctx, providers.CapabilityEmailVerify, http.MethodGet, map[string]string{
		"email": email,
	}, nil)
	if errResp != nil {
		return providers.Failure[models.EmailVerification](errResp.msg, errResp.credits)
	}

	var v models.EmailVerification
	models.DecodeLenient(unwrap(payload), &v)
	if v.Status == "" {
		return providers.Failure[models.EmailVerification]("no verdict", cost)
	}
	if v.Email == "" {
		v.Email = email
	}
	v.Deliverable = v.Deliverable || v.Status == models.EmailStatusValid
	return providers.Success(&v, cost, qualityOr(payload, v.Score))
}

type failure struct {
	msg     string
	credits float64
}

// call waits for a rate limit slot and performs one request. Failures come
// back already priced: a 404 costs MissCost, anything that never produced a
// billable answer costs nothing.
func (a *Adapter) call(ctx context.Context, c providers.Capability, method string, params map[string]string, body interface{}) (map[string]interface{}, float64, *failure) {
	if err := a.Acquire(ctx); err != nil {
		return nil, 0, &failure{msg: err.Error()}
	}

	req := commonhttp.Request{
		Method:  method,
		URL:     a.cfg.BaseURL + a.cfg.Endpoints[c],
		Params:  compact(params),
		Body:    body,
		Timeout: a.cfg.Timeout,
	}
	if a.cfg.APIKey != "" {
		req.Headers = map[string]string{a.cfg.APIKeyHeader: a.cfg.APIKey}
	}

	payload, err := a.transport.Request(ctx, req)
	if err != nil {
		var statusErr *commonhttp.StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			return nil, 0, &failure{msg: "no match", credits: a.cfg.MissCost}
		}
		return nil, 0, &failure{msg: fmt.Sprintf("%s: %v", a.Name(), err)}
	}

	cost := a.cfg.CreditCost
	if reported, ok := number(payload["creditsConsumed"]); ok {
		cost = reported
	}
	return payload, cost, nil
}

func (a *Adapter) stampID(ids *map[string]string, record map[string]interface{}) {
	id, ok := record["id"]
	if !ok || id == nil {
		return
	}
	if *ids == nil {
		*ids = make(map[string]string)
	}
	(*ids)[a.Name()] = fmt.Sprint(id)
}

func unwrap(payload map[string]interface{}) map[string]interface{} {
	if inner, ok := payload["data"].(map[string]interface{}); ok {
		return inner
	}
	return payload
}

func records(payload map[string]interface{}) []map[string]interface{} {
	raw, _ := payload["data"].([]interface{})
	if raw == nil {
		raw, _ = payload["results"].([]interface{})
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func pagination(payload map[string]interface{}, n int) (int, string) {
	total := n
	if t, ok := number(payload["total"]); ok {
		total = int(t)
	}
	cursor, _ := payload["nextCursor"].(string)
	return total, cursor
}

// quality returns the source-reported quality, or -1 to derive it from
// record completeness.
func quality(payload map[string]interface{}) float64 {
	return qualityOr(payload, -1)
}

func qualityOr(payload map[string]interface{}, fallback float64) float64 {
	if q, ok := number(payload["qualityScore"]); ok {
		return q
	}
	return fallback
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func compact(params map[string]string) map[string]string {
	if params == nil {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func joinName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + last
}
