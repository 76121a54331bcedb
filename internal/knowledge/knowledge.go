// Package knowledge holds the static provider profiles and buying-signal
// definitions. The data ships embedded in the binary, is validated once at
// load and is read-only afterwards, so a Base is safe to share.
package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/validation"
)

var (
	//go:embed data/providers.json
	providersJSON []byte
	//go:embed data/signals.json
	signalsJSON []byte
	//go:embed data/providers.schema.json
	providersSchemaJSON string
	//go:embed data/signals.schema.json
	signalsSchemaJSON string
)

// DefaultCommonality is assumed for providers without a profile.
const DefaultCommonality = 0.5

type CostTier string

const (
	CostTierLow    CostTier = "low"
	CostTierMedium CostTier = "medium"
	CostTierHigh   CostTier = "high"
)

// ProviderProfile describes how a provider's data compares to the market.
// UniqueStrengths is informational and not used in any score.
type ProviderProfile struct {
	Name             string   `json:"name"`
	CommonalityScore float64  `json:"commonalityScore"`
	StrongIndustries []string `json:"strongIndustries"`
	BestOperations   []string `json:"bestOperations"`
	SupportedSignals []string `json:"supportedSignals"`
	CostTier         CostTier `json:"costTier"`
	AvgFreshnessDays int      `json:"avgFreshnessDays"`
	UniqueStrengths  []string `json:"uniqueStrengths"`
}

// SignalDefinition describes one buying-signal type.
type SignalDefinition struct {
	Type            string  `json:"type"`
	DisplayName     string  `json:"displayName"`
	DefaultPriority float64 `json:"defaultPriority"`
	DecayDays       int     `json:"decayDays"`
	Description     string  `json:"description"`
}

type Base struct {
	version  string
	profiles map[string]ProviderProfile
	signals  map[string]SignalDefinition
}

var (
	defaultOnce sync.Once
	defaultBase *Base
	defaultErr  error
)

// Default returns the process-wide base built from the embedded data.
func Default() (*Base, error) {
	defaultOnce.Do(func() {
		defaultBase, defaultErr = Load(providersJSON, signalsJSON)
	})
	return defaultBase, defaultErr
}

// Load validates and indexes provider and signal documents.
func Load(providersDoc, signalsDoc []byte) (*Base, error) {
	if err := validate("providers", providersSchemaJSON, providersDoc); err != nil {
		return nil, err
	}
	if err := validate("signals", signalsSchemaJSON, signalsDoc); err != nil {
		return nil, err
	}

	var pf struct {
		Version   string            `json:"version"`
		Providers []ProviderProfile `json:"providers"`
	}
	if err := json.Unmarshal(providersDoc, &pf); err != nil {
		return nil, apperrors.NewKnowledgeBaseInvalidError("decode providers", err)
	}
	var sf struct {
		Signals []SignalDefinition `json:"signals"`
	}
	if err := json.Unmarshal(signalsDoc, &sf); err != nil {
		return nil, apperrors.NewKnowledgeBaseInvalidError("decode signals", err)
	}

	b := &Base{
		version:  pf.Version,
		profiles: make(map[string]ProviderProfile, len(pf.Providers)),
		signals:  make(map[string]SignalDefinition, len(sf.Signals)),
	}
	for _, p := range pf.Providers {
		key := strings.ToLower(p.Name)
		if _, dup := b.profiles[key]; dup {
			return nil, apperrors.NewKnowledgeBaseInvalidError(fmt.Sprintf("duplicate provider profile %q", p.Name), nil)
		}
		b.profiles[key] = p
	}
	for _, s := range sf.Signals {
		if _, dup := b.signals[s.Type]; dup {
			return nil, apperrors.NewKnowledgeBaseInvalidError(fmt.Sprintf("duplicate signal %q", s.Type), nil)
		}
		b.signals[s.Type] = s
	}
	return b, nil
}

func validate(name, schema string, doc []byte) error {
	s, err := validation.Compile(name, []byte(schema))
	if err != nil {
		return apperrors.NewKnowledgeBaseInvalidError("compile "+name+" schema", err)
	}
	res, err := s.ValidateBytes(doc)
	if err != nil {
		return apperrors.NewKnowledgeBaseInvalidError(name+" is not valid JSON", err)
	}
	if !res.Valid {
		return apperrors.NewKnowledgeBaseInvalidError(name+": "+res.Summary(), nil)
	}
	return nil
}

func (b *Base) Version() string {
	return b.version
}

// Profile looks a provider up by name, case-insensitively.
func (b *Base) Profile(name string) (ProviderProfile, bool) {
	p, ok := b.profiles[strings.ToLower(name)]
	return p, ok
}

// Providers returns the profiled provider names, sorted.
func (b *Base) Providers() []string {
	out := make([]string, 0, len(b.profiles))
	for _, p := range b.profiles {
		out = append(out, p.Name)
	}
	sort.Strings(out)
	return out
}

// Signal looks a signal definition up by type.
func (b *Base) Signal(signalType string) (SignalDefinition, bool) {
	s, ok := b.signals[signalType]
	return s, ok
}

// Commonality returns the provider's commonality score, DefaultCommonality
// when unknown.
func (b *Base) Commonality(provider string) float64 {
	if p, ok := b.Profile(provider); ok {
		return p.CommonalityScore
	}
	return DefaultCommonality
}

// OriginalityWeight is 1 - commonality: how unlikely the provider's data is
// to be available elsewhere already.
func (b *Base) OriginalityWeight(provider string) float64 {
	return 1 - b.Commonality(provider)
}
