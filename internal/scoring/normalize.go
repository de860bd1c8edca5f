// Package scoring turns aggregate timing statistics and lexical signals into
// the five dimension scores and the weighted 0-100 composite.
package scoring

// Tier offsets subtracted from raw metrics before threshold lookup. Harder
// scenarios are expected to provoke more hesitation independent of actual
// confidence. Results are signed: a normalized value may go negative, which
// only makes the best bucket easier to reach.
var (
	latencyTierOffsetMs = map[int]float64{1: 0, 2: 250, 3: 500}
	silenceTierOffsetMs = map[int]float64{1: 0, 2: 0, 3: 300}
)

// NormalizeLatency adjusts a start-latency value for the scenario tier.
func NormalizeLatency(ms float64, tier int) float64 {
	return ms - latencyTierOffsetMs[tier]
}

// NormalizeSilence adjusts a longest-silence value for the scenario tier.
func NormalizeSilence(ms float64, tier int) float64 {
	return ms - silenceTierOffsetMs[tier]
}
