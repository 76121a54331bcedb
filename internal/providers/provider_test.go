package providers

import (
	"context"
	"testing"
	"time"

	"enrichment-workers/internal/models"
	"enrichment-workers/internal/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase_Capabilities(t *testing.T) {
	caps := []Capability{CapabilityCompanyEnrich, CapabilityEmailFind}
	b := NewBase("hunter", caps, nil)
	caps[0] = CapabilityPeopleSearch

	assert.Equal(t, "hunter", b.Name())
	assert.True(t, b.Supports(CapabilityCompanyEnrich))
	assert.True(t, b.Supports(CapabilityEmailFind))
	assert.False(t, b.Supports(CapabilityPeopleSearch))
	assert.NoError(t, b.Acquire(context.Background()))
}

func TestBase_AcquireHonoursContext(t *testing.T) {
	ticks := make(chan time.Time)
	limiter := ratelimit.New("slow", ratelimit.Config{PerSecond: 1}, ratelimit.WithTicks(ticks))
	defer limiter.Close()

	b := NewBase("slow", []Capability{CapabilityCompanyEnrich}, limiter)
	require.NoError(t, b.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := b.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "slow: rate limit wait")
}

func TestParseCapability(t *testing.T) {
	c, ok := ParseCapability("people_enrich")
	assert.True(t, ok)
	assert.Equal(t, CapabilityPeopleEnrich, c)

	_, ok = ParseCapability("company_delete")
	assert.False(t, ok)
}

func TestResponseBuilders(t *testing.T) {
	company := &models.UnifiedCompany{Name: "Acme", Domain: "acme.com"}

	resp := Success(company, 1, -1)
	assert.True(t, resp.HasData())
	assert.Equal(t, []string{"name", "domain"}, resp.FieldsPopulated)
	assert.InDelta(t, models.Completeness(company), resp.QualityScore, 1e-9)

	resp = Success(company, -3, 1.7)
	assert.Equal(t, 0.0, resp.CreditsConsumed)
	assert.Equal(t, 1.0, resp.QualityScore)

	miss := Failure[models.UnifiedCompany]("no match", 1)
	assert.False(t, miss.HasData())
	assert.Equal(t, 1.0, miss.CreditsConsumed)
	assert.Equal(t, "no match", miss.Error)

	page := PageSuccess([]models.UnifiedContact{{FullName: "Jane"}}, 0.5, 0.8, 10, "next")
	assert.True(t, page.HasData())
	assert.True(t, page.HasMore)

	empty := PageSuccess[models.UnifiedContact](nil, 0, 0, 0, "")
	assert.False(t, empty.HasData())
	assert.False(t, PageFailure[models.UnifiedContact]("down", 0).HasData())

	var nilResp *Response[models.EmailResult]
	assert.False(t, nilResp.HasData())
}
