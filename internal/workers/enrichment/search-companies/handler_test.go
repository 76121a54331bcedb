// internal/workers/enrichment/search-companies/handler_test.go
package searchcompanies

import (
	"context"
	"testing"
	"time"

	apperrors "enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/models"
	"enrichment-workers/internal/orchestrator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	result *orchestrator.SearchResult[models.UnifiedCompany]
	err    error
	params models.CompanySearchParams
}

func (s *stubSearcher) SearchCompanies(_ context.Context, _ string, params models.CompanySearchParams) (*orchestrator.SearchResult[models.UnifiedCompany], error) {
	s.params = params
	return s.result, s.err
}

func newTestHandler(t *testing.T, s Searcher) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Config:   &Config{Timeout: 5 * time.Second},
		Searcher: s,
		Logger:   logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Execute
// ==========================

func TestExecute(t *testing.T) {
	stub := &stubSearcher{result: &orchestrator.SearchResult[models.UnifiedCompany]{
		Results:      []models.UnifiedCompany{{Name: "Acme"}, {Name: "Globex"}},
		Provider:     "index",
		TotalCost:    0,
		TotalResults: 12,
		HasMore:      true,
		NextCursor:   "2",
	}}
	h := newTestHandler(t, stub)

	input, err := parseInput(`{"clientId":"c","industries":["software"],"limit":2}`)
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []string{"software"}, stub.params.Industries)
	assert.Equal(t, 2, stub.params.Limit)
	assert.Len(t, out.Companies, 2)
	assert.Equal(t, "index", out.Provider)
	assert.Equal(t, 12, out.TotalResults)
	assert.True(t, out.HasMore)
	assert.Equal(t, "2", out.NextCursor)
}

func TestExecute_Error(t *testing.T) {
	h := newTestHandler(t, &stubSearcher{err: apperrors.NewLedgerUnavailableError("balance", assert.AnError)})

	_, err := h.Execute(context.Background(), &Input{ClientID: "c"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeLedgerUnavailable))
}

// ==========================
// Input Parsing
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantErr   bool
	}{
		{"query", `{"clientId":"c","query":"payments"}`, false},
		{"employee range", `{"clientId":"c","minEmployees":10,"maxEmployees":50}`, false},
		{"inverted range", `{"clientId":"c","minEmployees":50,"maxEmployees":10}`, true},
		{"limit too large", `{"clientId":"c","limit":500}`, true},
		{"missing client", `{"query":"payments"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseInput(tt.variables)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidEnrichmentInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}
