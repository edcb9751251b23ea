// Package score computes relationship-health scores from a person's incident history.
//
// Stored incident points already include the major-incident multiplier, so Compute
// only applies the read-time adjustments: a recency boost for fresh incidents and a
// linear decay, floored at 25%, for incidents older than the decay window.
package score

import (
	"math"
	"time"
)

const (
	// RecencyWindowDays is the age (inclusive) under which the recency boost applies.
	RecencyWindowDays = 30
	// RecencyBoost multiplies incidents inside the recency window.
	RecencyBoost = 1.5
	// DecayFloor is the smallest fraction of an incident's value decay can leave.
	DecayFloor = 0.25

	daysPerMonth = 30
	decaySlope   = 0.75
)

// Incident is the subset of an incident the score depends on.
type Incident struct {
	Points    int
	Timestamp time.Time
}

// Params holds the global settings consumed by Compute.
type Params struct {
	TimeDecayMonths     int
	RecencyBoostEnabled bool
}

// Contribution returns the adjusted, unrounded value of a single incident at now.
func Contribution(inc Incident, p Params, now time.Time) float64 {
	points := float64(inc.Points)
	daysOld := now.Sub(inc.Timestamp).Hours() / 24
	monthsOld := daysOld / daysPerMonth

	if p.RecencyBoostEnabled && daysOld <= RecencyWindowDays {
		points *= RecencyBoost
	}

	if p.TimeDecayMonths > 0 {
		window := float64(p.TimeDecayMonths)
		if monthsOld > window {
			factor := 1 - ((monthsOld-window)/window)*decaySlope
			points *= math.Max(DecayFloor, factor)
		}
	}
	return points
}

// Compute sums the adjusted contribution of every incident and rounds once at the end.
// Halves round up (toward positive infinity).
func Compute(incidents []Incident, p Params, now time.Time) int {
	var total float64
	for _, inc := range incidents {
		total += Contribution(inc, p, now)
	}
	return int(math.Floor(total + 0.5))
}
