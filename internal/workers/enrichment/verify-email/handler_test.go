// internal/workers/enrichment/verify-email/handler_test.go
package verifyemail

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

type stubVerifier struct {
	result *orchestrator.EnrichResult[models.EmailVerification]
	err    error
	email  string
}

func (s *stubVerifier) VerifyEmail(_ context.Context, _ string, email string) (*orchestrator.EnrichResult[models.EmailVerification], error) {
	s.email = email
	return s.result, s.err
}

func newTestHandler(t *testing.T, v Verifier) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Config:   &Config{Timeout: 5 * time.Second},
		Verifier: v,
		Logger:   logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Execute
// ==========================

func TestExecute_Verdict(t *testing.T) {
	stub := &stubVerifier{result: &orchestrator.EnrichResult[models.EmailVerification]{
		Result: &models.EmailVerification{
			Email:       "ada@acme.io",
			Status:      models.EmailStatusValid,
			Deliverable: true,
			Score:       0.97,
		},
		ProvidersUsed: []string{"checker"},
		TotalCost:     0.5,
	}}
	h := newTestHandler(t, stub)

	out, err := h.Execute(context.Background(), &Input{ClientID: "c", Email: "ada@acme.io"})
	require.NoError(t, err)

	assert.Equal(t, "ada@acme.io", stub.email)
	assert.True(t, out.Verified)
	assert.Equal(t, models.EmailStatusValid, out.Status)
	assert.True(t, out.Deliverable)
	assert.Equal(t, 0.97, out.Score)
	assert.Equal(t, []string{"checker"}, out.ProvidersUsed)
	assert.Equal(t, 0.5, out.TotalCost)
}

func TestExecute_NoVerdict(t *testing.T) {
	h := newTestHandler(t, &stubVerifier{result: &orchestrator.EnrichResult[models.EmailVerification]{}})

	out, err := h.Execute(context.Background(), &Input{ClientID: "c", Email: "ada@acme.io"})
	require.NoError(t, err)
	assert.False(t, out.Verified)
	assert.Equal(t, models.EmailStatusUnknown, out.Status)
	assert.False(t, out.Deliverable)
	assert.Equal(t, []string{}, out.ProvidersUsed)
}

func TestExecute_Error(t *testing.T) {
	h := newTestHandler(t, &stubVerifier{err: apperrors.NewLedgerUnavailableError("charge", assert.AnError)})

	_, err := h.Execute(context.Background(), &Input{ClientID: "c", Email: "ada@acme.io"})
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
		{"valid", `{"clientId":"c","email":"ada@acme.io"}`, false},
		{"missing at", `{"clientId":"c","email":"acme.io"}`, true},
		{"whitespace", `{"clientId":"c","email":"ada lovelace@acme.io"}`, true},
		{"missing email", `{"clientId":"c"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := parseInput(tt.variables)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidEnrichmentInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ada@acme.io", input.Email)
		})
	}
}
