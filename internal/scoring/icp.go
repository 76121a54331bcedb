package scoring

import (
	"fmt"
	"slices"
	"strings"

	"enrichment-workers/internal/models"
)

// unknownCriterionScore is used when the company lacks the attribute a
// criterion needs.
const unknownCriterionScore = 0.5

// ICPFilters describes the ideal customer profile. Unset criteria are
// ignored.
type ICPFilters struct {
	Industries   []string `json:"industries,omitempty"`
	MinEmployees *int     `json:"minEmployees,omitempty"`
	MaxEmployees *int     `json:"maxEmployees,omitempty"`
	MinRevenue   *float64 `json:"minRevenue,omitempty"`
	MaxRevenue   *float64 `json:"maxRevenue,omitempty"`
	Countries    []string `json:"countries,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

type ICPResult struct {
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
	Reasons   []string           `json:"reasons"`
}

// ICPMatcher scores how well a company fits the ideal customer profile.
type ICPMatcher interface {
	ScoreCompanyFit(company *models.UnifiedCompany, filters ICPFilters) ICPResult
}

// RulesMatcher scores each specified criterion 1 (match), 0 (miss) or 0.5
// (company attribute unknown) and averages them. Technologies score the
// share of wanted technologies the company uses. No criteria means a
// perfect fit.
type RulesMatcher struct{}

func (RulesMatcher) ScoreCompanyFit(company *models.UnifiedCompany, filters ICPFilters) ICPResult {
	res := ICPResult{Breakdown: make(map[string]float64)}
	if company == nil {
		company = &models.UnifiedCompany{}
	}

	add := func(name string, score float64, reason string) {
		res.Breakdown[name] = score
		if reason != "" {
			res.Reasons = append(res.Reasons, reason)
		}
	}

	if len(filters.Industries) > 0 {
		switch {
		case company.Industry == "":
			add("industry", unknownCriterionScore, "Industry unknown")
		case matchesAny(company.Industry, filters.Industries):
			add("industry", 1, fmt.Sprintf("Industry %s matches ICP", company.Industry))
		default:
			add("industry", 0, fmt.Sprintf("Industry %s outside ICP", company.Industry))
		}
	}

	if filters.MinEmployees != nil || filters.MaxEmployees != nil {
		switch {
		case company.EmployeeCount == nil:
			add("employees", unknownCriterionScore, "Employee count unknown")
		case inIntRange(*company.EmployeeCount, filters.MinEmployees, filters.MaxEmployees):
			add("employees", 1, fmt.Sprintf("%d employees within ICP range", *company.EmployeeCount))
		default:
			add("employees", 0, fmt.Sprintf("%d employees outside ICP range", *company.EmployeeCount))
		}
	}

	if filters.MinRevenue != nil || filters.MaxRevenue != nil {
		switch {
		case company.Revenue == nil:
			add("revenue", unknownCriterionScore, "Revenue unknown")
		case inFloatRange(*company.Revenue, filters.MinRevenue, filters.MaxRevenue):
			add("revenue", 1, "Revenue within ICP range")
		default:
			add("revenue", 0, "Revenue outside ICP range")
		}
	}

	if len(filters.Countries) > 0 {
		switch {
		case company.Country == "":
			add("country", unknownCriterionScore, "Country unknown")
		case slices.ContainsFunc(filters.Countries, func(c string) bool { return strings.EqualFold(c, company.Country) }):
			add("country", 1, fmt.Sprintf("Located in %s", company.Country))
		default:
			add("country", 0, fmt.Sprintf("Located outside target countries (%s)", company.Country))
		}
	}

	if len(filters.Technologies) > 0 {
		if len(company.Technologies) == 0 {
			add("technologies", unknownCriterionScore, "Technology stack unknown")
		} else {
			matched := 0
			for _, want := range filters.Technologies {
				if slices.ContainsFunc(company.Technologies, func(have string) bool { return strings.EqualFold(have, want) }) {
					matched++
				}
			}
			share := float64(matched) / float64(len(filters.Technologies))
			add("technologies", share, fmt.Sprintf("Uses %d of %d target technologies", matched, len(filters.Technologies)))
		}
	}

	if len(res.Breakdown) == 0 {
		res.Score = 1
		return res
	}
	total := 0.0
	for _, v := range res.Breakdown {
		total += v
	}
	res.Score = total / float64(len(res.Breakdown))
	return res
}

func matchesAny(value string, candidates []string) bool {
	v := strings.ToLower(value)
	for _, c := range candidates {
		c = strings.ToLower(c)
		if c != "" && (strings.Contains(v, c) || strings.Contains(c, v)) {
			return true
		}
	}
	return false
}

func inIntRange(v int, lo, hi *int) bool {
	return (lo == nil || v >= *lo) && (hi == nil || v <= *hi)
}

func inFloatRange(v float64, lo, hi *float64) bool {
	return (lo == nil || v >= *lo) && (hi == nil || v <= *hi)
}
