// Package searchindex serves company search and enrichment from the internal
// Elasticsearch index of companies already known to the platform. Lookups
// are free.
package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"enrichment-workers/internal/models"
	"enrichment-workers/internal/providers"
	"enrichment-workers/internal/ratelimit"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultPageSize = 25

type Config struct {
	Name       string
	Index      string
	MaxResults int
}

type Adapter struct {
	providers.Base
	cfg Config
	es  esapi.Transport
}

// New creates the adapter over any esapi transport, normally an
// *elasticsearch.Client.
func New(cfg Config, es esapi.Transport, limiter *ratelimit.Limiter) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "internal_index"
	}
	if cfg.Index == "" {
		cfg.Index = "companies"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultPageSize
	}
	return &Adapter{
		Base: providers.NewBase(cfg.Name, []providers.Capability{
			providers.CapabilityCompanySearch,
			providers.CapabilityCompanyEnrich,
		}, limiter),
		cfg: cfg,
		es:  es,
	}
}

func (a *Adapter) EnrichCompany(ctx context.Context, query models.CompanyQuery) *providers.Response[models.UnifiedCompany] {
	var clause map[string]interface{}
	switch {
	case query.Domain != "":
		clause = map[string]interface{}{"term": map[string]interface{}{"domain.keyword": strings.ToLower(query.Domain)}}
	case query.Name != "":
		clause = map[string]interface{}{"match_phrase": map[string]interface{}{"name": query.Name}}
	default:
		return providers.Failure[models.UnifiedCompany]("domain or name required", 0)
	}

	hits, _, err := a.search(ctx, map[string]interface{}{
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": []interface{}{clause}}},
		"size":  1,
	})
	if err != nil {
		return providers.Failure[models.UnifiedCompany](err.Error(), 0)
	}
	if len(hits) == 0 {
		return providers.Failure[models.UnifiedCompany]("no match", 0)
	}

	company := a.toCompany(hits[0])
	return providers.Success(&company, 0, storedQuality(hits[0].Source))
}

func (a *Adapter) SearchCompanies(ctx context.Context, params models.CompanySearchParams) *providers.PaginatedResponse[models.UnifiedCompany] {
	size := params.Limit
	if size <= 0 || size > a.cfg.MaxResults {
		size = a.cfg.MaxResults
	}
	from := 0
	if params.Cursor != "" {
		n, err := strconv.Atoi(params.Cursor)
		if err != nil || n < 0 {
			return providers.PageFailure[models.UnifiedCompany]("invalid cursor", 0)
		}
		from = n
	}

	hits, total, err := a.search(ctx, map[string]interface{}{
		"query": buildSearchQuery(params),
		"from":  from,
		"size":  size,
	})
	if err != nil {
		return providers.PageFailure[models.UnifiedCompany](err.Error(), 0)
	}

	companies := make([]models.UnifiedCompany, 0, len(hits))
	for _, h := range hits {
		companies = append(companies, a.toCompany(h))
	}

	cursor := ""
	if next := from + len(hits); len(hits) > 0 && next < total {
		cursor = strconv.Itoa(next)
	}
	return providers.PageSuccess(companies, 0, 0.6, total, cursor)
}

func buildSearchQuery(params models.CompanySearchParams) map[string]interface{} {
	var must, filter []interface{}
	if params.Query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  params.Query,
				"fields": []string{"name^3", "description", "industry"},
			},
		})
	}
	if len(params.Industries) > 0 {
		filter = append(filter, map[string]interface{}{"terms": map[string]interface{}{"industry.keyword": params.Industries}})
	}
	if len(params.Countries) > 0 {
		filter = append(filter, map[string]interface{}{"terms": map[string]interface{}{"country.keyword": params.Countries}})
	}
	if len(params.Technologies) > 0 {
		filter = append(filter, map[string]interface{}{"terms": map[string]interface{}{"technologies.keyword": params.Technologies}})
	}
	if params.MinEmployees != nil || params.MaxEmployees != nil {
		r := map[string]interface{}{}
		if params.MinEmployees != nil {
			r["gte"] = *params.MinEmployees
		}
		if params.MaxEmployees != nil {
			r["lte"] = *params.MaxEmployees
		}
		filter = append(filter, map[string]interface{}{"range": map[string]interface{}{"employeeCount": r}})
	}
	if len(must) == 0 && len(filter) == 0 {
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	return map[string]interface{}{"bool": map[string]interface{}{"must": must, "filter": filter}}
}

type hit struct {
	ID     string                 `json:"_id"`
	Source map[string]interface{} `json:"_source"`
}

type searchResult struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []hit `json:"hits"`
	} `json:"hits"`
}

func (a *Adapter) search(ctx context.Context, body map[string]interface{}) ([]hit, int, error) {
	if err := a.Acquire(ctx); err != nil {
		return nil, 0, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{a.cfg.Index},
		Body:  bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, a.es)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: search: %w", a.Name(), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("%s: search failed: %s", a.Name(), res.Status())
	}

	var r searchResult
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, fmt.Errorf("%s: decode response: %w", a.Name(), err)
	}
	return r.Hits.Hits, r.Hits.Total.Value, nil
}

func (a *Adapter) toCompany(h hit) models.UnifiedCompany {
	var c models.UnifiedCompany
	models.DecodeLenient(h.Source, &c)
	if h.ID != "" {
		if c.ExternalIDs == nil {
			c.ExternalIDs = make(map[string]string)
		}
		c.ExternalIDs[a.Name()] = h.ID
	}
	return c
}

func storedQuality(source map[string]interface{}) float64 {
	if q, ok := source["qualityScore"].(float64); ok {
		return q
	}
	return -1
}
