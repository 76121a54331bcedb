// Package orchestrator runs provider waterfalls: it tries the registered
// sources for a capability in priority order, gates every attempt on the
// client's credit balance, charges for usable answers and merges them into
// one record.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/common/metrics"
	"enrichment-workers/internal/ledger"
	"enrichment-workers/internal/models"
	"enrichment-workers/internal/providers"
)

// balanceUnit is the balance a client must hold before a provider is tried.
const balanceUnit = 1.0

// Provider call outcomes used as metric labels.
const (
	outcomeSuccess       = "success"
	outcomeFailure       = "failure"
	outcomeSkipBalance   = "skipped_balance"
	outcomeUnimplemented = "skipped_unimplemented"
)

// WaterfallConfig tunes one waterfall. Nil fields take the orchestrator
// defaults, so an explicit threshold of 0 stops at the first usable answer.
type WaterfallConfig struct {
	QualityThreshold *float64 `json:"qualityThreshold,omitempty" mapstructure:"quality_threshold"`
	MaxProviders     *int     `json:"maxProviders,omitempty" mapstructure:"max_providers"`
	RequiredFields   []string `json:"requiredFields,omitempty" mapstructure:"required_fields"`
}

// WaterfallSettings is a fully resolved WaterfallConfig.
type WaterfallSettings struct {
	QualityThreshold float64
	MaxProviders     int
	RequiredFields   []string
}

func DefaultWaterfallSettings() WaterfallSettings {
	return WaterfallSettings{QualityThreshold: 0.7, MaxProviders: 3}
}

// resolve fills unset fields from defaults. MaxProviders below 1 counts as
// unset.
func (c *WaterfallConfig) resolve(defaults WaterfallSettings) WaterfallSettings {
	out := defaults
	if c == nil {
		return out
	}
	if c.QualityThreshold != nil {
		out.QualityThreshold = *c.QualityThreshold
	}
	if c.MaxProviders != nil && *c.MaxProviders > 0 {
		out.MaxProviders = *c.MaxProviders
	}
	if c.RequiredFields != nil {
		out.RequiredFields = c.RequiredFields
	}
	return out
}

// EnrichResult is the outcome of an enrichment or lookup. Result is nil
// when no provider produced usable data.
type EnrichResult[T any] struct {
	Result        *T       `json:"result"`
	ProvidersUsed []string `json:"providersUsed"`
	TotalCost     float64  `json:"totalCost"`
}

// SearchResult is the outcome of a search. Provider names the source that
// answered.
type SearchResult[T any] struct {
	Results      []T     `json:"results"`
	Provider     string  `json:"provider,omitempty"`
	TotalCost    float64 `json:"totalCost"`
	TotalResults int     `json:"totalResults"`
	HasMore      bool    `json:"hasMore"`
	NextCursor   string  `json:"nextCursor,omitempty"`
}

type Orchestrator struct {
	registry *Registry
	ledger   ledger.Ledger
	log      logger.Logger
	tracer   trace.Tracer
	defaults WaterfallSettings
}

type Option func(*Orchestrator)

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// WithDefaults replaces the waterfall defaults applied to unset fields.
// A MaxProviders below 1 keeps the built-in default.
func WithDefaults(s WaterfallSettings) Option {
	return func(o *Orchestrator) {
		if s.MaxProviders < 1 {
			s.MaxProviders = DefaultWaterfallSettings().MaxProviders
		}
		o.defaults = s
	}
}

func New(registry *Registry, l ledger.Ledger, log logger.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	o := &Orchestrator{
		registry: registry,
		ledger:   l,
		log:      log,
		tracer:   otel.Tracer("enrichment-workers/orchestrator"),
		defaults: DefaultWaterfallSettings(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// EnrichCompany runs the company enrichment waterfall.
func (o *Orchestrator) EnrichCompany(ctx context.Context, clientID string, query models.CompanyQuery, cfg *WaterfallConfig) (*EnrichResult[models.UnifiedCompany], error) {
	if query.Domain == "" && query.Name == "" {
		return nil, apperrors.NewInvalidEnrichmentInputError("domain or name is required")
	}
	return waterfall(ctx, o, clientID, providers.CapabilityCompanyEnrich, cfg.resolve(o.defaults),
		func(ctx context.Context, p providers.CompanyEnricher) *providers.Response[models.UnifiedCompany] {
			return p.EnrichCompany(ctx, query)
		})
}

// EnrichPerson runs the contact enrichment waterfall.
func (o *Orchestrator) EnrichPerson(ctx context.Context, clientID string, query models.PersonQuery, cfg *WaterfallConfig) (*EnrichResult[models.UnifiedContact], error) {
	if query.Email == "" && query.LinkedInURL == "" && (query.FirstName == "" || query.LastName == "" || query.CompanyDomain == "") {
		return nil, apperrors.NewInvalidEnrichmentInputError("email, linkedinUrl or full name with company domain is required")
	}
	return waterfall(ctx, o, clientID, providers.CapabilityPeopleEnrich, cfg.resolve(o.defaults),
		func(ctx context.Context, p providers.PeopleEnricher) *providers.Response[models.UnifiedContact] {
			return p.EnrichPerson(ctx, query)
		})
}

// SearchCompanies returns the first non-empty page any provider produces.
func (o *Orchestrator) SearchCompanies(ctx context.Context, clientID string, params models.CompanySearchParams) (*SearchResult[models.UnifiedCompany], error) {
	return search(ctx, o, clientID, providers.CapabilityCompanySearch,
		func(ctx context.Context, p providers.CompanySearcher) *providers.PaginatedResponse[models.UnifiedCompany] {
			return p.SearchCompanies(ctx, params)
		})
}

// SearchPeople returns the first non-empty page any provider produces.
func (o *Orchestrator) SearchPeople(ctx context.Context, clientID string, params models.PeopleSearchParams) (*SearchResult[models.UnifiedContact], error) {
	if params.CompanyDomain == "" && params.CompanyName == "" {
		return nil, apperrors.NewInvalidEnrichmentInputError("companyDomain or companyName is required")
	}
	return search(ctx, o, clientID, providers.CapabilityPeopleSearch,
		func(ctx context.Context, p providers.PeopleSearcher) *providers.PaginatedResponse[models.UnifiedContact] {
			return p.SearchPeople(ctx, params)
		})
}

// FindEmail returns the first email address any provider finds.
func (o *Orchestrator) FindEmail(ctx context.Context, clientID string, params models.EmailFindParams) (*EnrichResult[models.EmailResult], error) {
	if params.CompanyDomain == "" || (params.FirstName == "" && params.LastName == "") {
		return nil, apperrors.NewInvalidEnrichmentInputError("companyDomain and a first or last name are required")
	}
	return lookup(ctx, o, clientID, providers.CapabilityEmailFind,
		func(ctx context.Context, p providers.EmailFinder) *providers.Response[models.EmailResult] {
			return p.FindEmail(ctx, params)
		})
}

// VerifyEmail returns the first verdict any provider gives.
func (o *Orchestrator) VerifyEmail(ctx context.Context, clientID string, email string) (*EnrichResult[models.EmailVerification], error) {
	if !strings.Contains(email, "@") {
		return nil, apperrors.NewInvalidEnrichmentInputError(fmt.Sprintf("invalid email address %q", email))
	}
	return lookup(ctx, o, clientID, providers.CapabilityEmailVerify,
		func(ctx context.Context, p providers.EmailVerifier) *providers.Response[models.EmailVerification] {
			return p.VerifyEmail(ctx, email)
		})
}

// waterfall tries providers implementing A in priority order, merging every
// usable answer, until MaxProviders contributed or one answer reaches the
// quality threshold with all required fields present on the merged record.
func waterfall[T any, A any](
	ctx context.Context,
	o *Orchestrator,
	clientID string,
	capability providers.Capability,
	cfg WaterfallSettings,
	call func(context.Context, A) *providers.Response[T],
) (*EnrichResult[T], error) {
	if clientID == "" {
		return nil, apperrors.NewInvalidEnrichmentInputError("clientId is required")
	}
	candidates := o.registry.ProvidersWithCapability(capability)
	if len(candidates) == 0 {
		o.log.Warn("No provider registered for capability", map[string]interface{}{
			"capability": string(capability),
			"clientId":   clientID,
		})
		return &EnrichResult[T]{ProvidersUsed: []string{}}, nil
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.waterfall", trace.WithAttributes(
		attribute.String("capability", string(capability)),
		attribute.String("client.id", clientID),
		attribute.Float64("quality_threshold", cfg.QualityThreshold),
		attribute.Int("max_providers", cfg.MaxProviders),
	))
	defer span.End()

	log := o.log.WithFields(map[string]interface{}{
		"capability": string(capability),
		"clientId":   clientID,
	})

	res := &EnrichResult[T]{ProvidersUsed: []string{}}
	defer func() {
		metrics.WaterfallProvidersUsed.WithLabelValues(string(capability)).Observe(float64(len(res.ProvidersUsed)))
		span.SetAttributes(
			attribute.Int("providers_used", len(res.ProvidersUsed)),
			attribute.Float64("total_cost", res.TotalCost),
		)
	}()

	for _, p := range candidates {
		if len(res.ProvidersUsed) >= cfg.MaxProviders {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, o.cancelled(span, log, err)
		}

		impl, ok := p.(A)
		if !ok {
			log.Warn("Provider declares capability without implementing it", map[string]interface{}{"provider": p.Name()})
			metrics.ProviderCalls.WithLabelValues(p.Name(), string(capability), outcomeUnimplemented).Inc()
			continue
		}

		allowed, err := o.ledger.HasBalance(ctx, clientID, balanceUnit)
		if err != nil {
			return nil, o.ledgerFailed(span, "has_balance", err)
		}
		if !allowed {
			log.Info("Insufficient balance, skipping provider", map[string]interface{}{"provider": p.Name()})
			metrics.ProviderCalls.WithLabelValues(p.Name(), string(capability), outcomeSkipBalance).Inc()
			continue
		}

		resp := callProvider(ctx, o, p, capability, impl, call)
		if !resp.HasData() {
			log.Info("Provider returned no usable data", map[string]interface{}{
				"provider": p.Name(),
				"error":    resp.errorMessage(),
			})
			continue
		}

		if err := o.charge(ctx, clientID, p.Name(), capability, resp.CreditsConsumed); err != nil {
			return nil, o.ledgerFailed(span, "charge", err)
		}
		res.TotalCost += resp.CreditsConsumed
		res.ProvidersUsed = append(res.ProvidersUsed, p.Name())
		res.Result = Merge(res.Result, resp.Data)

		if resp.QualityScore >= cfg.QualityThreshold && models.HasFields(res.Result, cfg.RequiredFields) {
			log.Info("Quality threshold reached, stopping waterfall", map[string]interface{}{
				"provider":     p.Name(),
				"qualityScore": resp.QualityScore,
			})
			metrics.WaterfallEarlyStops.WithLabelValues(string(capability)).Inc()
			break
		}
	}

	log.Info("Waterfall finished", map[string]interface{}{
		"providersUsed": res.ProvidersUsed,
		"totalCost":     res.TotalCost,
		"found":         res.Result != nil,
	})
	return res, nil
}

// lookup returns the first usable single-record answer. It is charged only
// when the provider billed for it.
func lookup[T any, A any](
	ctx context.Context,
	o *Orchestrator,
	clientID string,
	capability providers.Capability,
	call func(context.Context, A) *providers.Response[T],
) (*EnrichResult[T], error) {
	res := &EnrichResult[T]{ProvidersUsed: []string{}}
	err := firstAnswer(ctx, o, clientID, capability, func(ctx context.Context, p providers.Provider) (bool, float64, error) {
		impl, ok := p.(A)
		if !ok {
			return false, 0, errUnimplemented
		}
		resp := callProvider(ctx, o, p, capability, impl, call)
		if !resp.HasData() {
			return false, 0, errors.New(resp.errorMessage())
		}
		res.Result = resp.Data
		res.ProvidersUsed = append(res.ProvidersUsed, p.Name())
		res.TotalCost = resp.CreditsConsumed
		return true, resp.CreditsConsumed, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// search returns the first non-empty page. It is charged only when the
// provider billed for it.
func search[T any, A any](
	ctx context.Context,
	o *Orchestrator,
	clientID string,
	capability providers.Capability,
	call func(context.Context, A) *providers.PaginatedResponse[T],
) (*SearchResult[T], error) {
	res := &SearchResult[T]{Results: []T{}}
	err := firstAnswer(ctx, o, clientID, capability, func(ctx context.Context, p providers.Provider) (bool, float64, error) {
		impl, ok := p.(A)
		if !ok {
			return false, 0, errUnimplemented
		}
		start := time.Now()
		pctx, span := o.startProviderSpan(ctx, p.Name(), capability)
		resp := call(pctx, impl)
		found := resp.HasData()
		msg := ""
		switch {
		case resp == nil:
			msg = "nil response"
		case !found && resp.Error != "":
			msg = resp.Error
		case !found:
			msg = "no results"
		}
		observeCall(p, capability, start, found)
		endProviderSpan(span, found, msg)
		if !found {
			return false, 0, errors.New(msg)
		}
		res.Results = resp.Data
		res.Provider = p.Name()
		res.TotalCost = resp.CreditsConsumed
		res.TotalResults = resp.TotalResults
		res.HasMore = resp.HasMore
		res.NextCursor = resp.NextCursor
		return true, resp.CreditsConsumed, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

var errUnimplemented = errors.New("capability declared but not implemented")

// firstAnswer walks the providers for capability until try reports an
// answer, gating each attempt on the client's balance.
func firstAnswer(
	ctx context.Context,
	o *Orchestrator,
	clientID string,
	capability providers.Capability,
	try func(context.Context, providers.Provider) (bool, float64, error),
) error {
	if clientID == "" {
		return apperrors.NewInvalidEnrichmentInputError("clientId is required")
	}
	candidates := o.registry.ProvidersWithCapability(capability)
	if len(candidates) == 0 {
		o.log.Warn("No provider registered for capability", map[string]interface{}{
			"capability": string(capability),
			"clientId":   clientID,
		})
		return nil
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.first_answer", trace.WithAttributes(
		attribute.String("capability", string(capability)),
		attribute.String("client.id", clientID),
	))
	defer span.End()

	log := o.log.WithFields(map[string]interface{}{
		"capability": string(capability),
		"clientId":   clientID,
	})

	for _, p := range candidates {
		if err := ctx.Err(); err != nil {
			return o.cancelled(span, log, err)
		}
		allowed, err := o.ledger.HasBalance(ctx, clientID, balanceUnit)
		if err != nil {
			return o.ledgerFailed(span, "has_balance", err)
		}
		if !allowed {
			log.Info("Insufficient balance, skipping provider", map[string]interface{}{"provider": p.Name()})
			metrics.ProviderCalls.WithLabelValues(p.Name(), string(capability), outcomeSkipBalance).Inc()
			continue
		}

		answered, credits, tryErr := try(ctx, p)
		if errors.Is(tryErr, errUnimplemented) {
			log.Warn("Provider declares capability without implementing it", map[string]interface{}{"provider": p.Name()})
			metrics.ProviderCalls.WithLabelValues(p.Name(), string(capability), outcomeUnimplemented).Inc()
			continue
		}
		if !answered {
			log.Info("Provider returned no usable data", map[string]interface{}{
				"provider": p.Name(),
				"error":    tryErr.Error(),
			})
			continue
		}

		if credits > 0 {
			if err := o.charge(ctx, clientID, p.Name(), capability, credits); err != nil {
				return o.ledgerFailed(span, "charge", err)
			}
		}
		span.SetAttributes(attribute.String("provider", p.Name()), attribute.Float64("total_cost", credits))
		log.Info("Provider answered", map[string]interface{}{"provider": p.Name(), "credits": credits})
		return nil
	}

	log.Info("No provider answered", nil)
	return nil
}

// response wraps a provider envelope so nil responses read as failures.
type response[T any] struct {
	*providers.Response[T]
}

func (r response[T]) HasData() bool {
	return r.Response.HasData()
}

func (r response[T]) errorMessage() string {
	if r.Response == nil {
		return "nil response"
	}
	if r.Error == "" {
		return "no data"
	}
	return r.Error
}

func callProvider[T any, A any](
	ctx context.Context,
	o *Orchestrator,
	p providers.Provider,
	capability providers.Capability,
	impl A,
	call func(context.Context, A) *providers.Response[T],
) response[T] {
	start := time.Now()
	pctx, span := o.startProviderSpan(ctx, p.Name(), capability)
	resp := response[T]{call(pctx, impl)}
	ok := resp.HasData()
	observeCall(p, capability, start, ok)
	msg := ""
	if !ok {
		msg = resp.errorMessage()
	}
	endProviderSpan(span, ok, msg)
	if resp.Response == nil {
		resp.Response = &providers.Response[T]{}
	}
	return resp
}

func (o *Orchestrator) startProviderSpan(ctx context.Context, provider string, capability providers.Capability) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "provider."+string(capability), trace.WithAttributes(
		attribute.String("provider", provider),
	))
}

func endProviderSpan(span trace.Span, ok bool, errMsg string) {
	if !ok && errMsg != "" {
		span.SetStatus(codes.Error, errMsg)
	}
	span.End()
}

func observeCall(p providers.Provider, capability providers.Capability, start time.Time, ok bool) {
	metrics.ProviderCallDuration.WithLabelValues(p.Name(), string(capability)).Observe(time.Since(start).Seconds())
	outcome := outcomeFailure
	if ok {
		outcome = outcomeSuccess
	}
	metrics.ProviderCalls.WithLabelValues(p.Name(), string(capability), outcome).Inc()
	if l, isLimited := p.(limited); isLimited && l.Limiter() != nil {
		metrics.RateLimiterQueueDepth.WithLabelValues(p.Name()).Set(float64(l.Limiter().Stats().QueueDepth))
	}
}

func (o *Orchestrator) charge(ctx context.Context, clientID, provider string, capability providers.Capability, credits float64) error {
	receipt, err := o.ledger.Charge(ctx, clientID, ledger.ChargeRequest{
		BaseCost:    credits,
		Source:      provider,
		Operation:   string(capability),
		Description: fmt.Sprintf("%s via %s", capability, provider),
	})
	if err != nil && receipt == nil {
		return err
	}
	if err != nil {
		// The debit went through; only the receipt bookkeeping failed.
		o.log.WithError(err).Warn("Charge applied but receipt not recorded", map[string]interface{}{
			"provider":   provider,
			"receipt_id": receipt.ID,
			"credits":    credits,
		})
	}
	metrics.CreditsCharged.WithLabelValues(provider, string(capability)).Add(credits)
	return nil
}

func (o *Orchestrator) ledgerFailed(span trace.Span, operation string, err error) error {
	stdErr := apperrors.NewLedgerUnavailableError(operation, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, stdErr.Message)
	o.log.WithError(err).Error("Ledger call failed", map[string]interface{}{"operation": operation})
	return stdErr
}

func (o *Orchestrator) cancelled(span trace.Span, log logger.Logger, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "cancelled")
	log.Warn("Waterfall cancelled", map[string]interface{}{"error": err.Error()})
	return apperrors.NewEnrichmentCancelledError(err)
}
