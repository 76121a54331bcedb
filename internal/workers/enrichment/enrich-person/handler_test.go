// internal/workers/enrichment/enrich-person/handler_test.go
package enrichperson

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

// ==========================
// Test Helper Functions
// ==========================

type stubEnricher struct {
	result *orchestrator.EnrichResult[models.UnifiedContact]
	err    error
	query  models.PersonQuery
}

func (s *stubEnricher) EnrichPerson(_ context.Context, _ string, query models.PersonQuery, _ *orchestrator.WaterfallConfig) (*orchestrator.EnrichResult[models.UnifiedContact], error) {
	s.query = query
	return s.result, s.err
}

func newTestHandler(t *testing.T, e Enricher) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Config:   &Config{Timeout: 5 * time.Second},
		Enricher: e,
		Logger:   logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Execute
// ==========================

func TestExecute(t *testing.T) {
	stub := &stubEnricher{result: &orchestrator.EnrichResult[models.UnifiedContact]{
		Result:        &models.UnifiedContact{FullName: "Ada Lovelace", Email: "ada@acme.io", Title: "CTO"},
		ProvidersUsed: []string{"alpha"},
		TotalCost:     1,
	}}
	h := newTestHandler(t, stub)

	out, err := h.Execute(context.Background(), &Input{
		ClientID:      "client-1",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		CompanyDomain: "acme.io",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PersonQuery{FirstName: "Ada", LastName: "Lovelace", CompanyDomain: "acme.io"}, stub.query)
	assert.True(t, out.ContactFound)
	assert.Equal(t, "CTO", out.Contact.Title)
	assert.Equal(t, []string{"alpha"}, out.ProvidersUsed)
	assert.Greater(t, out.Completeness, 0.0)
}

func TestExecute_NoResult(t *testing.T) {
	h := newTestHandler(t, &stubEnricher{result: &orchestrator.EnrichResult[models.UnifiedContact]{}})

	out, err := h.Execute(context.Background(), &Input{ClientID: "client-1", Email: "ada@acme.io"})
	require.NoError(t, err)
	assert.False(t, out.ContactFound)
	assert.Equal(t, []string{}, out.ProvidersUsed)
	assert.Zero(t, out.TotalCost)
}

func TestExecute_Error(t *testing.T) {
	h := newTestHandler(t, &stubEnricher{err: apperrors.NewEnrichmentCancelledError(context.DeadlineExceeded)})

	_, err := h.Execute(context.Background(), &Input{ClientID: "client-1", Email: "ada@acme.io"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeEnrichmentCancelled))
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
		{"email", `{"clientId":"c","email":"ada@acme.io"}`, false},
		{"linkedin", `{"clientId":"c","linkedinUrl":"https://linkedin.com/in/ada"}`, false},
		{"full name with domain", `{"clientId":"c","firstName":"Ada","lastName":"Lovelace","companyDomain":"acme.io"}`, false},
		{"name without domain", `{"clientId":"c","firstName":"Ada","lastName":"Lovelace"}`, true},
		{"bad email", `{"clientId":"c","email":"not-an-email"}`, true},
		{"missing client", `{"email":"ada@acme.io"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := parseInput(tt.variables)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidEnrichmentInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "c", input.ClientID)
		})
	}
}
