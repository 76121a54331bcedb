// internal/workers/enrichment/find-email/handler_test.go
package findemail

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

type stubFinder struct {
	result *orchestrator.EnrichResult[models.EmailResult]
	err    error
	params models.EmailFindParams
}

func (s *stubFinder) FindEmail(_ context.Context, _ string, params models.EmailFindParams) (*orchestrator.EnrichResult[models.EmailResult], error) {
	s.params = params
	return s.result, s.err
}

func newTestHandler(t *testing.T, f Finder) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Config: &Config{Timeout: 5 * time.Second},
		Finder: f,
		Logger: logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Execute
// ==========================

func TestExecute(t *testing.T) {
	tests := []struct {
		name         string
		result       *orchestrator.EnrichResult[models.EmailResult]
		wantFound    bool
		wantEmail    string
		wantProvider string
	}{
		{
			name: "source reported by provider",
			result: &orchestrator.EnrichResult[models.EmailResult]{
				Result:        &models.EmailResult{Email: "ada@acme.io", Confidence: 0.92, Source: "pattern"},
				ProvidersUsed: []string{"alpha"},
				TotalCost:     1,
			},
			wantFound:    true,
			wantEmail:    "ada@acme.io",
			wantProvider: "pattern",
		},
		{
			name: "source falls back to provider name",
			result: &orchestrator.EnrichResult[models.EmailResult]{
				Result:        &models.EmailResult{Email: "ada@acme.io"},
				ProvidersUsed: []string{"beta"},
			},
			wantFound:    true,
			wantEmail:    "ada@acme.io",
			wantProvider: "beta",
		},
		{
			name:   "nothing found",
			result: &orchestrator.EnrichResult[models.EmailResult]{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubFinder{result: tt.result}
			h := newTestHandler(t, stub)

			out, err := h.Execute(context.Background(), &Input{ClientID: "c", FirstName: "Ada", CompanyDomain: "acme.io"})
			require.NoError(t, err)
			assert.Equal(t, models.EmailFindParams{FirstName: "Ada", CompanyDomain: "acme.io"}, stub.params)
			assert.Equal(t, tt.wantFound, out.EmailFound)
			assert.Equal(t, tt.wantEmail, out.Email)
			assert.Equal(t, tt.wantProvider, out.Provider)
			assert.NotNil(t, out.Providers)
		})
	}
}

func TestExecute_Error(t *testing.T) {
	h := newTestHandler(t, &stubFinder{err: apperrors.NewEnrichmentCancelledError(context.DeadlineExceeded)})

	_, err := h.Execute(context.Background(), &Input{ClientID: "c", LastName: "Lovelace", CompanyDomain: "acme.io"})
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
		{"first name", `{"clientId":"c","firstName":"Ada","companyDomain":"acme.io"}`, false},
		{"last name", `{"clientId":"c","lastName":"Lovelace","companyDomain":"acme.io"}`, false},
		{"no name", `{"clientId":"c","companyDomain":"acme.io"}`, true},
		{"no domain", `{"clientId":"c","firstName":"Ada"}`, true},
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
