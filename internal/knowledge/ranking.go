package knowledge

import (
	"sort"
	"strings"
)

const (
	industryMatchScore  = 3.0
	bestOperationScore  = 2.0
	operationRankDecay  = 0.3
	originalityBonus    = 1.5
	lowCostTierBonus    = 1.0
	mediumCostTierBonus = 0.5
)

// RankedProvider is one entry of a ranking. Known is false for names
// without a profile; those always score 0.
type RankedProvider struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Known bool    `json:"known"`
}

// RankProvidersForContext orders the available providers by fitness for an
// industry and operation. Profiled providers come first, highest score
// first; unknown providers follow in their input order. Ties keep input
// order.
func (b *Base) RankProvidersForContext(industry, operation string, available []string) []RankedProvider {
	known := make([]RankedProvider, 0, len(available))
	var unknown []RankedProvider
	for _, name := range available {
		p, ok := b.Profile(name)
		if !ok {
			unknown = append(unknown, RankedProvider{Name: name})
			continue
		}
		known = append(known, RankedProvider{Name: name, Score: scoreProfile(p, industry, operation), Known: true})
	}

	sort.SliceStable(known, func(i, j int) bool {
		return known[i].Score > known[j].Score
	})
	return append(known, unknown...)
}

func scoreProfile(p ProviderProfile, industry, operation string) float64 {
	score := 0.0
	if industryMatches(p.StrongIndustries, industry) {
		score += industryMatchScore
	}
	for rank, op := range p.BestOperations {
		if op == operation {
			score += bestOperationScore - operationRankDecay*float64(rank)
			break
		}
	}
	score += (1 - p.CommonalityScore) * originalityBonus
	switch p.CostTier {
	case CostTierLow:
		score += lowCostTierBonus
	case CostTierMedium:
		score += mediumCostTierBonus
	}
	return score
}

// industryMatches compares case-insensitively and accepts a substring match
// in either direction, so "saas" matches "B2B SaaS" and "software" matches
// "enterprise software". An empty industry matches nothing.
func industryMatches(strong []string, industry string) bool {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == "" {
		return false
	}
	for _, s := range strong {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if strings.Contains(industry, s) || strings.Contains(s, industry) {
			return true
		}
	}
	return false
}
