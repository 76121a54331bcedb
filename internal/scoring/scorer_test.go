package scoring

import (
	"testing"

	apperrors "enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/knowledge"
	"enrichment-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedMatcher struct {
	result ICPResult
}

func (m fixedMatcher) ScoreCompanyFit(*models.UnifiedCompany, ICPFilters) ICPResult {
	return m.result
}

func newTestScorer(t *testing.T, icp float64) *Scorer {
	t.Helper()
	kb, err := knowledge.Default()
	require.NoError(t, err)
	matcher := fixedMatcher{result: ICPResult{
		Score:     icp,
		Breakdown: map[string]float64{"industry": icp},
		Reasons:   []string{"fixed fit"},
	}}
	return NewScorer(matcher, kb, logger.NewTestLogger(t))
}

// ==========================
// Composite
// ==========================

func TestScoreCompany_NoSignalsNoSources(t *testing.T) {
	s := newTestScorer(t, 0.6)

	res, err := s.ScoreCompany(&models.UnifiedCompany{Name: "Acme"}, ICPFilters{}, nil, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, 0.6, res.ICPFit)
	assert.Equal(t, 0.0, res.SignalScore)
	assert.Equal(t, 0.5, res.Originality)
	assert.Equal(t, 1.0, res.CostEfficiency)
	assert.Equal(t, 0.46, res.Composite)
	assert.Equal(t, 0.6, res.Breakdown["icp.industry"])
	assert.Contains(t, res.Reasons, "fixed fit")
}

func TestScoreCompany_FullInputs(t *testing.T) {
	s := newTestScorer(t, 0.8)
	signals := []Signal{
		{Type: "funding_round", Strength: 0.8, EventDate: daysAgo(10)},
		{Type: "hiring_surge", Strength: 0.5, EventDate: daysAgo(60)},
	}

	res, err := s.ScoreCompany(
		&models.UnifiedCompany{Name: "Acme"},
		ICPFilters{},
		signals,
		[]string{"apollo", "hunter", "apollo"},
		4,
		WithReferenceTime(refTime),
	)
	require.NoError(t, err)

	// (0.8*1.0*0.9 + 0.5*0.85*0.8) / (0.9+0.8)
	assert.InDelta(t, 1.06/1.7, res.SignalScore, 1e-9)
	// mean of 1-0.85 and 1-0.75
	assert.InDelta(t, 0.2, res.Originality, 1e-9)
	// two distinct providers over four credits
	assert.InDelta(t, 0.5, res.CostEfficiency, 1e-9)

	want := round2(0.8*0.35 + (1.06/1.7)*0.30 + 0.2*0.20 + 0.5*0.15)
	assert.Equal(t, want, res.Composite)
	assert.Contains(t, res.Reasons, "Strongest signal: Funding Round (80%)")
	assert.Contains(t, res.Reasons, "Data from 2 source(s): apollo, hunter")
}

func TestScoreCompany_NilCompany(t *testing.T) {
	s := newTestScorer(t, 0.5)

	res, err := s.ScoreCompany(nil, ICPFilters{}, nil, nil, 0)
	assert.Nil(t, res)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeScoringFailed))
}

func TestScoreCompany_CustomWeightsAreNotNormalized(t *testing.T) {
	s := newTestScorer(t, 1)

	res, err := s.ScoreCompany(&models.UnifiedCompany{Name: "Acme"}, ICPFilters{}, nil, nil, 0,
		WithWeights(Weights{ICPFit: 1, Signals: 1, Originality: 1, CostEfficiency: 1}))
	require.NoError(t, err)
	assert.Equal(t, 2.5, res.Composite)
}

// ==========================
// Signals
// ==========================

func TestSignalScore_Priorities(t *testing.T) {
	s := newTestScorer(t, 0)

	tests := []struct {
		name       string
		signals    []Signal
		priorities map[string]float64
		want       float64
	}{
		{
			name:    "unknown type uses neutral priority",
			signals: []Signal{{Type: "mystery", Strength: 0.6, EventDate: daysAgo(1)}},
			want:    0.6,
		},
		{
			name: "override beats knowledge base",
			signals: []Signal{
				{Type: "funding_round", Strength: 1.0, EventDate: daysAgo(1)},
				{Type: "layoffs", Strength: 0.0, EventDate: daysAgo(1)},
			},
			priorities: map[string]float64{"funding_round": 1, "layoffs": 3},
			want:       0.25,
		},
		{
			name:       "zero priorities score zero",
			signals:    []Signal{{Type: "funding_round", Strength: 1.0}},
			priorities: map[string]float64{"funding_round": 0},
			want:       0,
		},
		{
			name:    "unknown date decays",
			signals: []Signal{{Type: "funding_round", Strength: 1.0}},
			want:    0.4,
		},
		{
			name:       "clamped at one",
			signals:    []Signal{{Type: "intent_surge", Strength: 3.0, EventDate: daysAgo(2)}},
			priorities: nil,
			want:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ScoreCompany(&models.UnifiedCompany{Name: "Acme"}, ICPFilters{}, tt.signals, nil, 0,
				WithReferenceTime(refTime), WithSignalPriorities(tt.priorities))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, res.SignalScore, 1e-9)
		})
	}
}

// ==========================
// Originality and cost
// ==========================

func TestOriginalityScore_UnknownSource(t *testing.T) {
	s := newTestScorer(t, 0)
	assert.InDelta(t, 0.5, s.originalityScore([]string{"mystery"}), 1e-9)
	assert.InDelta(t, (0.5+0.05)/2, s.originalityScore([]string{"mystery", "internal_index"}), 1e-9)
}

func TestCostEfficiency(t *testing.T) {
	tests := []struct {
		name      string
		providers int
		actual    float64
		want      float64
	}{
		{"free data", 3, 0, 1},
		{"negative cost", 1, -2, 1},
		{"no providers but spend", 0, 5, 0.5},
		{"under budget", 3, 2, 1},
		{"over budget", 2, 8, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, costEfficiency(tt.providers, tt.actual), 1e-9)
		})
	}
}

func TestNewScorer_Defaults(t *testing.T) {
	s := NewScorer(nil, nil, nil)
	assert.IsType(t, RulesMatcher{}, s.matcher)

	res, err := s.ScoreCompany(&models.UnifiedCompany{Name: "Acme"}, ICPFilters{}, []Signal{{Type: "funding_round", Strength: 0.5, EventDate: daysAgo(1)}}, []string{"apollo"}, 1, WithReferenceTime(refTime))
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.ICPFit)
	assert.InDelta(t, 0.5, res.SignalScore, 1e-9)
	assert.InDelta(t, 0.5, res.Originality, 1e-9)
}
