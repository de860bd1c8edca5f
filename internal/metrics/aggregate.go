package metrics

import (
	"sort"

	"speaking-confidence-go/internal/types"
)

// Aggregate folds per-turn metrics into session-level statistics.
//
// SpeechRatioAvg is speech-time-weighted (total speech over total
// speech+silence), not a mean of per-turn ratios, so one long silent turn
// cannot be diluted by several short confident ones. LongestSilenceMs is the
// maximum single pause across turns, not a sum.
func Aggregate(turns []types.TurnMetrics) types.AggregateMetrics {
	agg := types.AggregateMetrics{TurnCount: len(turns)}
	if len(turns) == 0 {
		return agg
	}

	latencies := make([]int64, 0, len(turns))
	for _, t := range turns {
		latencies = append(latencies, t.StartLatencyMs)
		agg.TotalSpeechMs += t.SpeechMs
		agg.TotalSilenceMs += t.SilenceMs
		agg.TotalAnswerMs += t.AnswerDurationMs
		if t.LongestSilenceMs > agg.LongestSilenceMs {
			agg.LongestSilenceMs = t.LongestSilenceMs
		}
	}

	agg.StartLatencyMsMedian = median(latencies)
	if total := agg.TotalSpeechMs + agg.TotalSilenceMs; total > 0 {
		agg.SpeechRatioAvg = float64(agg.TotalSpeechMs) / float64(total)
	}
	return agg
}

// median returns the statistical median; for an even count it averages the
// two middle values.
func median(values []int64) float64 {
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
