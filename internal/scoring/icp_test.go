package scoring

import (
	"testing"

	"enrichment-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestRulesMatcher_ScoreCompanyFit(t *testing.T) {
	acme := &models.UnifiedCompany{
		Name:          "Acme",
		Industry:      "B2B SaaS",
		EmployeeCount: intPtr(250),
		Revenue:       floatPtr(30e6),
		Country:       "US",
		Technologies:  []string{"Salesforce", "HubSpot"},
	}

	tests := []struct {
		name      string
		company   *models.UnifiedCompany
		filters   ICPFilters
		want      float64
		breakdown map[string]float64
	}{
		{
			name:    "no criteria",
			company: acme,
			want:    1,
		},
		{
			name:    "all match",
			company: acme,
			filters: ICPFilters{
				Industries:   []string{"saas"},
				MinEmployees: intPtr(100),
				MaxEmployees: intPtr(1000),
				MinRevenue:   floatPtr(10e6),
				Countries:    []string{"us"},
				Technologies: []string{"salesforce"},
			},
			want: 1,
		},
		{
			name:    "mixed",
			company: acme,
			filters: ICPFilters{
				Industries:   []string{"Healthcare"},
				MaxEmployees: intPtr(500),
				Technologies: []string{"Salesforce", "Marketo"},
			},
			want:      (0 + 1 + 0.5) / 3,
			breakdown: map[string]float64{"industry": 0, "employees": 1, "technologies": 0.5},
		},
		{
			name:    "unknown attributes are neutral",
			company: &models.UnifiedCompany{Name: "Blank"},
			filters: ICPFilters{
				Industries:   []string{"SaaS"},
				MinEmployees: intPtr(10),
				MaxRevenue:   floatPtr(1e9),
				Countries:    []string{"DE"},
				Technologies: []string{"Go"},
			},
			want: 0.5,
		},
		{
			name:    "nil company",
			company: nil,
			filters: ICPFilters{Countries: []string{"US"}},
			want:    0.5,
		},
		{
			name:      "revenue outside range",
			company:   acme,
			filters:   ICPFilters{MaxRevenue: floatPtr(1e6)},
			want:      0,
			breakdown: map[string]float64{"revenue": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RulesMatcher{}.ScoreCompanyFit(tt.company, tt.filters)
			assert.InDelta(t, tt.want, res.Score, 1e-9)
			if tt.breakdown != nil {
				assert.Equal(t, tt.breakdown, res.Breakdown)
			}
		})
	}
}

func TestRulesMatcher_Reasons(t *testing.T) {
	res := RulesMatcher{}.ScoreCompanyFit(
		&models.UnifiedCompany{Name: "Acme", Country: "FR"},
		ICPFilters{Countries: []string{"US", "DE"}},
	)
	assert.Equal(t, []string{"Located outside target countries (FR)"}, res.Reasons)
}
