// internal/workers/intelligence/rank-providers/handler_test.go
package rankproviders

import (
	"context"
	"testing"
	"time"

	apperrors "enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/knowledge"
	"enrichment-workers/internal/orchestrator"
	"enrichment-workers/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func declared(name string, caps ...providers.Capability) providers.Provider {
	b := providers.NewBase(name, caps, nil)
	return &b
}

func newTestRegistry(t *testing.T) *orchestrator.Registry {
	t.Helper()
	reg := orchestrator.NewRegistry()
	require.NoError(t, reg.Register(declared("zoominfo", providers.CapabilityCompanyEnrich), 1))
	require.NoError(t, reg.Register(declared("apollo", providers.CapabilityCompanyEnrich, providers.CapabilityPeopleSearch), 2))
	require.NoError(t, reg.Register(declared("clearbit", providers.CapabilityCompanyEnrich), 3))
	require.NoError(t, reg.Register(declared("hunter", providers.CapabilityEmailFind), 4))
	return reg
}

func newTestHandler(t *testing.T, dir Directory) *Handler {
	t.Helper()
	kb, err := knowledge.Default()
	require.NoError(t, err)

	h, err := NewHandler(HandlerOptions{
		Config:    &Config{Timeout: time.Second},
		Ranker:    kb,
		Directory: dir,
		Logger:    logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Execute
// ==========================

func TestExecute_RanksRegisteredProviders(t *testing.T) {
	h := newTestHandler(t, newTestRegistry(t))

	out, err := h.Execute(context.Background(), &Input{Industry: "B2B SaaS", Operation: "company_enrich"})
	require.NoError(t, err)

	assert.Equal(t, []string{"clearbit", "apollo", "zoominfo"}, out.Order)
	assert.Equal(t, "clearbit", out.Recommended)
	require.Len(t, out.Ranked, 3)
	assert.InDelta(t, 5.95, out.Ranked[0].Score, 1e-9)
	assert.True(t, out.Ranked[0].Known)
}

func TestExecute_ExplicitProviders(t *testing.T) {
	h := newTestHandler(t, newTestRegistry(t))

	out, err := h.Execute(context.Background(), &Input{
		Operation:          "people_search",
		AvailableProviders: []string{"in-house", "hunter"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hunter", "in-house"}, out.Order)
	assert.False(t, out.Ranked[1].Known)
}

func TestExecute_RegisteredOnly(t *testing.T) {
	h := newTestHandler(t, newTestRegistry(t))

	out, err := h.Execute(context.Background(), &Input{
		Operation:          "company_enrich",
		AvailableProviders: []string{"apollo", "zoominfo"},
		RegisteredOnly:     true,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"apollo", "zoominfo"}, out.Order)

	_, err = h.Execute(context.Background(), &Input{
		Operation:          "company_enrich",
		AvailableProviders: []string{"apollo", "in-house"},
		RegisteredOnly:     true,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeProviderNotFound))
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Contains(t, stdErr.Details, "in-house")
}

func TestExecute_NothingToRank(t *testing.T) {
	h := newTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{Operation: "email_verify"})
	require.NoError(t, err)
	assert.Empty(t, out.Ranked)
	assert.Equal(t, []string{}, out.Order)
	assert.Empty(t, out.Recommended)
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
		{"operation only", `{"operation":"company_enrich"}`, false},
		{"with providers", `{"industry":"fintech","operation":"email_find","availableProviders":["hunter","snov"]}`, false},
		{"unknown operation", `{"operation":"company_delete"}`, true},
		{"duplicate providers", `{"operation":"email_find","availableProviders":["hunter","hunter"]}`, true},
		{"missing operation", `{"industry":"fintech"}`, true},
		{"registered only", `{"operation":"email_find","availableProviders":["hunter"],"registeredOnly":true}`, false},
		{"registered only not boolean", `{"operation":"email_find","registeredOnly":"yes"}`, true},
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
