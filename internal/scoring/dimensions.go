package scoring

import (
	"speaking-confidence-go/internal/signals"
	"speaking-confidence-go/internal/types"
)

// Fixed confidence-in-score values: timing-driven dimensions carry more
// signal than lexical heuristics. Display-only; the composite ignores them.
const (
	confD1 = 0.9
	confD2 = 0.85
	confD3 = 0.8
	confD4 = 0.8
	confD5 = 0.8
)

// Transcript-length floors for the participation buckets of D4 and D5.
const (
	minEngagedChars = 120
	minClarityChars = 80
)

// ScoreDimensions evaluates the five dimension rules over the session
// aggregates (tier-normalized where the rule calls for it) and the detected
// lexical signals.
func ScoreDimensions(agg types.AggregateMetrics, tier int, rep signals.Report) [5]types.DimensionScore {
	return [5]types.DimensionScore{
		{Score: scoreD1(NormalizeLatency(agg.StartLatencyMsMedian, tier)), Confidence: confD1},
		{Score: scoreD2(agg.SpeechRatioAvg, NormalizeSilence(float64(agg.LongestSilenceMs), tier)), Confidence: confD2},
		{Score: scoreD3(rep), Confidence: confD3},
		{Score: scoreD4(rep), Confidence: confD4},
		{Score: scoreD5(rep), Confidence: confD5},
	}
}

// scoreD1: response initiation, threshold table on the tier-normalized
// median start latency.
func scoreD1(latencyMs float64) int {
	switch {
	case latencyMs <= 900:
		return 5
	case latencyMs <= 1400:
		return 4
	case latencyMs <= 2200:
		return 3
	case latencyMs <= 3200:
		return 2
	case latencyMs <= 5000:
		return 1
	default:
		return 0
	}
}

// scoreD2: silence management, joint table on speech ratio and the
// tier-normalized longest silence. Every bucket requires both conditions
// except the lowest non-zero one, which deliberately uses OR: either a
// passable speech ratio or at least bounded silence avoids the floor.
func scoreD2(ratio, silenceMs float64) int {
	switch {
	case ratio >= 0.85 && silenceMs < 1200:
		return 5
	case ratio >= 0.78 && silenceMs < 1800:
		return 4
	case ratio >= 0.70 && silenceMs < 2500:
		return 3
	case ratio >= 0.60 && silenceMs < 3500:
		return 2
	case ratio >= 0.50 || silenceMs < 5000:
		return 1
	default:
		return 0
	}
}

// scoreD3: ownership/assertiveness. Additive adjustments from a baseline of
// 3, commutative, clamped once at the end.
func scoreD3(rep signals.Report) int {
	score := 3
	if len(rep.Ownership) >= 2 && rep.HasRequestPattern {
		score++
	}
	if rep.HasBoundaryPattern {
		score++
	}
	if len(rep.LowConfidence) >= 3 {
		score--
	}
	if !rep.HasRequestPattern {
		score--
	}
	return clamp05(score)
}

// scoreD4: emotional engagement. Never 0; any sustained response earns some
// credit.
func scoreD4(rep signals.Report) int {
	n := len(rep.Engagement)
	switch {
	case n >= 3 && rep.HasFeelingsPattern && rep.HasEmpathyPattern:
		return 5
	case n >= 2:
		return 4
	case n >= 1:
		return 3
	case rep.TranscriptChars >= minEngagedChars:
		return 2
	default:
		return 1
	}
}

// scoreD5: clarity/control.
func scoreD5(rep signals.Report) int {
	hasStructure := len(rep.Structure) > 0
	hasRepair := len(rep.Repair) > 0
	switch {
	case rep.HasRequestPattern && hasStructure && hasRepair:
		return 5
	case rep.HasRequestPattern && hasStructure:
		return 4
	case rep.HasRequestPattern:
		return 3
	case rep.TranscriptChars >= minClarityChars:
		return 2
	default:
		return 1
	}
}

func clamp05(v int) int {
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}
