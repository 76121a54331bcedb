package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var refTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := refTime.AddDate(0, 0, -n)
	return &t
}

func TestTimeliness_Bands(t *testing.T) {
	tests := []struct {
		name      string
		eventDate *time.Time
		wantMult  float64
		wantLabel string
	}{
		{"today", daysAgo(0), 1.0, "excellent"},
		{"10 days", daysAgo(10), 1.0, "excellent"},
		{"30 days", daysAgo(30), 1.0, "excellent"},
		{"31 days", daysAgo(31), 0.85, "strong"},
		{"90 days", daysAgo(90), 0.85, "strong"},
		{"120 days", daysAgo(120), 0.6, "ok"},
		{"180 days", daysAgo(180), 0.6, "ok"},
		{"300 days", daysAgo(300), 0.3, "weak"},
		{"365 days", daysAgo(365), 0.3, "weak"},
		{"400 days", daysAgo(400), 0.0, "expired"},
		{"future event", daysAgo(-5), 1.0, "excellent"},
		{"unknown date", nil, 0.4, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mult, label := Timeliness(tt.eventDate, refTime)
			assert.Equal(t, tt.wantMult, mult)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestApplyTimeliness_MonotonicInAge(t *testing.T) {
	const strength = 0.8
	prev := ApplyTimeliness(strength, daysAgo(0), refTime)
	for age := 1; age <= 500; age++ {
		cur := ApplyTimeliness(strength, daysAgo(age), refTime)
		assert.LessOrEqualf(t, cur, prev, "age %d increased the adjusted strength", age)
		prev = cur
	}
}

func TestApplyTimeliness_UnknownDateIndependentOfReference(t *testing.T) {
	assert.InDelta(t, 0.4, ApplyTimeliness(1, nil, refTime), 1e-9)
	assert.InDelta(t, 0.4, ApplyTimeliness(1, nil, time.Time{}), 1e-9)
	assert.InDelta(t, 0.2, ApplyTimeliness(0.5, nil, refTime.AddDate(10, 0, 0)), 1e-9)
}

func TestTimeliness_ZeroReferenceUsesNow(t *testing.T) {
	recent := time.Now().Add(-48 * time.Hour)
	mult, label := Timeliness(&recent, time.Time{})
	assert.Equal(t, 1.0, mult)
	assert.Equal(t, "excellent", label)
}

func TestAgeDays_TruncatesPartialDays(t *testing.T) {
	event := refTime.Add(-(30*24 + 23) * time.Hour)
	assert.Equal(t, 30, AgeDays(event, refTime))
	assert.Equal(t, 0, AgeDays(refTime.Add(time.Hour), refTime))
}
