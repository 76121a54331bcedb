package scoring

import (
	"math"
	"time"
)

// Band maps events up to MaxAgeDays old to a strength multiplier.
type Band struct {
	MaxAgeDays int
	Multiplier float64
	Label      string
}

// Bands are evaluated in order; the first band whose MaxAgeDays covers the
// event age wins.
var Bands = []Band{
	{MaxAgeDays: 30, Multiplier: 1.0, Label: "excellent"},
	{MaxAgeDays: 90, Multiplier: 0.85, Label: "strong"},
	{MaxAgeDays: 180, Multiplier: 0.6, Label: "ok"},
	{MaxAgeDays: 365, Multiplier: 0.3, Label: "weak"},
}

const (
	ExpiredMultiplier = 0.0
	ExpiredLabel      = "expired"

	// UnknownAgeMultiplier applies when the event date is missing.
	UnknownAgeMultiplier = 0.4
	UnknownAgeLabel      = "unknown"
)

// AgeDays returns whole days between eventDate and ref. Future events are
// age 0.
func AgeDays(eventDate, ref time.Time) int {
	days := math.Floor(ref.Sub(eventDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}

// Timeliness returns the multiplier and band label for an event. A nil
// eventDate is unknown age; a zero ref means now.
func Timeliness(eventDate *time.Time, ref time.Time) (float64, string) {
	if eventDate == nil || eventDate.IsZero() {
		return UnknownAgeMultiplier, UnknownAgeLabel
	}
	if ref.IsZero() {
		ref = time.Now()
	}

	age := AgeDays(*eventDate, ref)
	for _, b := range Bands {
		if age <= b.MaxAgeDays {
			return b.Multiplier, b.Label
		}
	}
	return ExpiredMultiplier, ExpiredLabel
}

// ApplyTimeliness scales strength by the event's timeliness multiplier.
func ApplyTimeliness(strength float64, eventDate *time.Time, ref time.Time) float64 {
	m, _ := Timeliness(eventDate, ref)
	return strength * m
}
