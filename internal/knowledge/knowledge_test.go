package knowledge

import (
	"testing"

	apperrors "enrichment-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaultBase(t *testing.T) *Base {
	t.Helper()
	b, err := Default()
	require.NoError(t, err)
	return b
}

// ==========================
// Loading
// ==========================

func TestDefault_LoadsEmbeddedData(t *testing.T) {
	b := loadDefaultBase(t)
	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, b, again)

	assert.Equal(t, "2025.1", b.Version())
	assert.Contains(t, b.Providers(), "apollo")
	assert.Contains(t, b.Providers(), "internal_index")

	p, ok := b.Profile("Clearbit")
	require.True(t, ok)
	assert.Equal(t, CostTierMedium, p.CostTier)

	s, ok := b.Signal("funding_round")
	require.True(t, ok)
	assert.Equal(t, "Funding Round", s.DisplayName)
	assert.Equal(t, 0.9, s.DefaultPriority)

	_, ok = b.Signal("weather")
	assert.False(t, ok)
}

func TestLoad_RejectsInvalidData(t *testing.T) {
	validSignals := []byte(`{"version":"1","signals":[]}`)

	tests := []struct {
		name      string
		providers string
		signals   []byte
	}{
		{
			name:      "commonality out of range",
			providers: `{"version":"1","providers":[{"name":"x","commonalityScore":1.5,"strongIndustries":[],"bestOperations":[],"costTier":"low"}]}`,
			signals:   validSignals,
		},
		{
			name:      "unknown cost tier",
			providers: `{"version":"1","providers":[{"name":"x","commonalityScore":0.5,"strongIndustries":[],"bestOperations":[],"costTier":"free"}]}`,
			signals:   validSignals,
		},
		{
			name:      "unknown operation",
			providers: `{"version":"1","providers":[{"name":"x","commonalityScore":0.5,"strongIndustries":[],"bestOperations":["company_delete"],"costTier":"low"}]}`,
			signals:   validSignals,
		},
		{
			name:      "duplicate provider",
			providers: `{"version":"1","providers":[{"name":"x","commonalityScore":0.5,"strongIndustries":[],"bestOperations":[],"costTier":"low"},{"name":"X","commonalityScore":0.5,"strongIndustries":[],"bestOperations":[],"costTier":"low"}]}`,
			signals:   validSignals,
		},
		{
			name:      "signal priority out of range",
			providers: string(providersJSON),
			signals:   []byte(`{"version":"1","signals":[{"type":"a","displayName":"A","defaultPriority":2,"decayDays":1}]}`),
		},
		{
			name:      "not json",
			providers: `{`,
			signals:   validSignals,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.providers), tt.signals)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeKnowledgeBaseInvalid))
		})
	}
}

// ==========================
// Originality
// ==========================

func TestOriginalityWeight(t *testing.T) {
	b := loadDefaultBase(t)
	assert.InDelta(t, 0.15, b.OriginalityWeight("apollo"), 1e-9)
	assert.InDelta(t, 0.6, b.OriginalityWeight("builtwith"), 1e-9)
	assert.Equal(t, 0.5, b.OriginalityWeight("never-heard-of-it"))
}

// ==========================
// Ranking
// ==========================

func TestRankProvidersForContext(t *testing.T) {
	b := loadDefaultBase(t)

	ranked := b.RankProvidersForContext("B2B SaaS", "company_enrich",
		[]string{"mystery", "zoominfo", "clearbit", "apollo", "internal_index"})

	require.Len(t, ranked, 5)
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"clearbit", "apollo", "internal_index", "zoominfo", "mystery"}, names)

	// clearbit: industry 3 + rank0 2 + (1-0.7)*1.5 + medium 0.5
	assert.InDelta(t, 5.95, ranked[0].Score, 1e-9)
	// apollo: industry 3 + rank3 (2-0.9) + (1-0.85)*1.5 + low 1
	assert.InDelta(t, 5.325, ranked[1].Score, 1e-9)
	// internal_index: rank1 1.7 + 0.05*1.5 + low 1
	assert.InDelta(t, 2.775, ranked[2].Score, 1e-9)
	// zoominfo: rank0 2 + 0.1*1.5 + high 0
	assert.InDelta(t, 2.15, ranked[3].Score, 1e-9)

	assert.False(t, ranked[4].Known)
	assert.Equal(t, 0.0, ranked[4].Score)
}

func TestRankProvidersForContext_IndustryMatchBothWays(t *testing.T) {
	b := loadDefaultBase(t)

	// "software" is contained in zoominfo's "enterprise software".
	withIndustry := b.RankProvidersForContext("Software", "email_verify", []string{"zoominfo"})
	without := b.RankProvidersForContext("", "email_verify", []string{"zoominfo"})
	assert.InDelta(t, 3.0, withIndustry[0].Score-without[0].Score, 1e-9)
}

func TestRankProvidersForContext_UnknownKeepInputOrder(t *testing.T) {
	b := loadDefaultBase(t)
	ranked := b.RankProvidersForContext("retail", "people_search", []string{"zeta", "alpha", "hunter"})
	assert.Equal(t, "hunter", ranked[0].Name)
	assert.Equal(t, "zeta", ranked[1].Name)
	assert.Equal(t, "alpha", ranked[2].Name)

	assert.Empty(t, b.RankProvidersForContext("retail", "people_search", nil))
}
