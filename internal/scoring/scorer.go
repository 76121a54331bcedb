// Package scoring computes the composite intelligence score of a company
// from ICP fit, buying signals, data originality and cost efficiency.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/knowledge"
	"enrichment-workers/internal/models"
)

// defaultSignalPriority applies to signal types without an override or
// definition.
const defaultSignalPriority = 0.5

// neutralScore is used where a component has nothing to measure.
const neutralScore = 0.5

// Signal is a detected buying signal.
type Signal struct {
	Type      string     `json:"type"`
	Strength  float64    `json:"strength"`
	EventDate *time.Time `json:"eventDate,omitempty"`
	Source    string     `json:"source,omitempty"`
}

// Weights combine the component scores. They are applied as given and not
// normalized.
type Weights struct {
	ICPFit         float64 `json:"icpFit" mapstructure:"icp_fit"`
	Signals        float64 `json:"signals" mapstructure:"signals"`
	Originality    float64 `json:"originality" mapstructure:"originality"`
	CostEfficiency float64 `json:"costEfficiency" mapstructure:"cost_efficiency"`
}

func DefaultWeights() Weights {
	return Weights{ICPFit: 0.35, Signals: 0.30, Originality: 0.20, CostEfficiency: 0.15}
}

type Result struct {
	Composite      float64            `json:"compositeScore"`
	ICPFit         float64            `json:"icpFitScore"`
	SignalScore    float64            `json:"signalScore"`
	Originality    float64            `json:"originalityScore"`
	CostEfficiency float64            `json:"costEfficiencyScore"`
	Breakdown      map[string]float64 `json:"breakdown"`
	Reasons        []string           `json:"reasons"`
}

type scoreOptions struct {
	weights    Weights
	priorities map[string]float64
	ref        time.Time
}

type Option func(*scoreOptions)

func WithWeights(w Weights) Option {
	return func(o *scoreOptions) { o.weights = w }
}

// WithSignalPriorities overrides the knowledge base priority per signal type.
func WithSignalPriorities(p map[string]float64) Option {
	return func(o *scoreOptions) { o.priorities = p }
}

// WithReferenceTime fixes the clock used for signal timeliness.
func WithReferenceTime(t time.Time) Option {
	return func(o *scoreOptions) { o.ref = t }
}

type Scorer struct {
	matcher ICPMatcher
	kb      *knowledge.Base
	log     logger.Logger
}

// NewScorer returns a scorer. A nil matcher falls back to RulesMatcher.
func NewScorer(matcher ICPMatcher, kb *knowledge.Base, log logger.Logger) *Scorer {
	if matcher == nil {
		matcher = RulesMatcher{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Scorer{matcher: matcher, kb: kb, log: log}
}

// ScoreCompany scores a company. sources are the providers that contributed
// to the record and totalCost the credits spent assembling it.
func (s *Scorer) ScoreCompany(
	company *models.UnifiedCompany,
	filters ICPFilters,
	signals []Signal,
	sources []string,
	totalCost float64,
	opts ...Option,
) (*Result, error) {
	if company == nil {
		return nil, apperrors.NewScoringFailedError("company is required")
	}

	o := scoreOptions{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ref.IsZero() {
		o.ref = time.Now()
	}

	icp := s.matcher.ScoreCompanyFit(company, filters)
	signalScore, signalReason := s.signalScore(signals, o)
	distinct := distinctSources(sources)
	originality := s.originalityScore(distinct)
	costEff := costEfficiency(len(distinct), totalCost)

	w := o.weights
	composite := icp.Score*w.ICPFit +
		signalScore*w.Signals +
		originality*w.Originality +
		costEff*w.CostEfficiency

	res := &Result{
		Composite:      round2(composite),
		ICPFit:         icp.Score,
		SignalScore:    signalScore,
		Originality:    originality,
		CostEfficiency: costEff,
		Breakdown:      make(map[string]float64, len(icp.Breakdown)+4),
	}
	for k, v := range icp.Breakdown {
		res.Breakdown["icp."+k] = v
	}
	res.Breakdown["icpFit"] = icp.Score
	res.Breakdown["signals"] = signalScore
	res.Breakdown["originality"] = originality
	res.Breakdown["costEfficiency"] = costEff

	res.Reasons = append(res.Reasons, icp.Reasons...)
	if signalReason != "" {
		res.Reasons = append(res.Reasons, signalReason)
	}
	if len(distinct) > 0 {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Data from %d source(s): %s", len(distinct), strings.Join(distinct, ", ")))
	}

	s.log.Debug("Company scored", map[string]interface{}{
		"company":   company.Name,
		"composite": res.Composite,
		"signals":   len(signals),
		"sources":   len(distinct),
	})
	return res, nil
}

func (s *Scorer) signalScore(signals []Signal, o scoreOptions) (float64, string) {
	if len(signals) == 0 {
		return 0, ""
	}

	var weighted, prioritySum float64
	strongest := signals[0]
	for _, sig := range signals {
		p := s.signalPriority(sig.Type, o.priorities)
		weighted += ApplyTimeliness(sig.Strength, sig.EventDate, o.ref) * p
		prioritySum += p
		if sig.Strength > strongest.Strength {
			strongest = sig
		}
	}

	score := 0.0
	if prioritySum > 0 {
		score = clamp01(weighted / prioritySum)
	}
	reason := fmt.Sprintf("Strongest signal: %s (%.0f%%)", s.signalName(strongest.Type), strongest.Strength*100)
	return score, reason
}

func (s *Scorer) signalPriority(signalType string, overrides map[string]float64) float64 {
	if p, ok := overrides[signalType]; ok {
		return p
	}
	if s.kb != nil {
		if def, ok := s.kb.Signal(signalType); ok {
			return def.DefaultPriority
		}
	}
	return defaultSignalPriority
}

func (s *Scorer) signalName(signalType string) string {
	if s.kb != nil {
		if def, ok := s.kb.Signal(signalType); ok && def.DisplayName != "" {
			return def.DisplayName
		}
	}
	return signalType
}

func (s *Scorer) originalityScore(sources []string) float64 {
	if len(sources) == 0 {
		return neutralScore
	}
	total := 0.0
	for _, src := range sources {
		if s.kb != nil {
			total += s.kb.OriginalityWeight(src)
		} else {
			total += 1 - knowledge.DefaultCommonality
		}
	}
	return clamp01(total / float64(len(sources)))
}

// costEfficiency compares the actual spend against one credit per
// contributing provider.
func costEfficiency(providers int, actual float64) float64 {
	expected := float64(providers)
	switch {
	case actual <= 0:
		return 1
	case expected <= 0:
		return neutralScore
	default:
		return math.Min(expected/actual, 1)
	}
}

func distinctSources(sources []string) []string {
	seen := make(map[string]struct{}, len(sources))
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		if src == "" {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
