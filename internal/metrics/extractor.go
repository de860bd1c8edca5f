// Package metrics derives per-turn and session-level timing statistics from
// captured turns. Everything here is pure: same input, same output.
package metrics

import (
	"math"
	"strings"

	"speaking-confidence-go/internal/types"
)

const (
	// pauseFloorMs: gaps shorter than this are coarticulation noise, not
	// hesitation.
	pauseFloorMs = 300

	// longPauseFloorMs: pauses at or above this count toward SilenceCount.
	longPauseFloorMs = 600

	// fallbackWordsPerMinute is the assumed speaking rate when word timings
	// are missing and speech time has to be estimated from the transcript.
	fallbackWordsPerMinute = 150

	// fallbackWordsPerPause: one synthesized pause per this many words on
	// the fallback path.
	fallbackWordsPerPause = 20
)

// Extract computes TurnMetrics for a single captured turn.
//
// Three paths, selected by a capability check on the input:
// word timings present → measured; transcript only → estimated from word
// count; neither → the whole recording is treated as one long pause.
func Extract(turn types.TurnCapture) types.TurnMetrics {
	answerMs := turn.RecordingEndMs - turn.RecordingStartMs
	if answerMs < 0 {
		answerMs = 0
	}

	if len(turn.WordTimings) > 0 {
		return extractMeasured(turn, answerMs)
	}
	if len(strings.Fields(turn.Transcript)) > 0 {
		return extractEstimated(turn, answerMs)
	}
	return extractSilent(turn, answerMs)
}

func extractMeasured(turn types.TurnCapture, answerMs int64) types.TurnMetrics {
	words := turn.WordTimings

	firstWordMs := turn.RecordingStartMs + secToMs(words[0].Start)
	latency := firstWordMs - turn.PromptEndMs
	if latency < 0 {
		// Clock skew or UI lag can put the prompt end after the recording
		// start; latency is clamped, never negative.
		latency = 0
	}

	var speechMs int64
	for _, w := range words {
		d := secToMs(w.End) - secToMs(w.Start)
		if d > 0 {
			speechMs += d
		}
	}

	var pauses []types.PauseInterval
	var silenceMs, longest int64
	silenceCount := 0
	for i := 1; i < len(words); i++ {
		gap := secToMs(words[i].Start) - secToMs(words[i-1].End)
		if gap <= pauseFloorMs {
			continue
		}
		pauses = append(pauses, types.PauseInterval{
			StartMs:    secToMs(words[i-1].End),
			DurationMs: gap,
		})
		silenceMs += gap
		if gap > longest {
			longest = gap
		}
		if gap >= longPauseFloorMs {
			silenceCount++
		}
	}

	return types.TurnMetrics{
		TurnNumber:       turn.TurnNumber,
		StartLatencyMs:   latency,
		AnswerDurationMs: answerMs,
		SpeechMs:         speechMs,
		SilenceMs:        silenceMs,
		SpeechRatio:      ratio(speechMs, silenceMs),
		LongestSilenceMs: longest,
		SilenceCount:     silenceCount,
		Pauses:           pauses,
	}
}

// extractEstimated handles turns where transcription produced text but no
// usable word timings. Speech time is estimated from word count at the
// assumed rate, clamped to the observed recording duration; silence is the
// remainder, split across synthesized evenly spaced pauses.
func extractEstimated(turn types.TurnCapture, answerMs int64) types.TurnMetrics {
	wordCount := len(strings.Fields(turn.Transcript))

	speechMs := int64(wordCount) * 60000 / fallbackWordsPerMinute
	if speechMs > answerMs {
		speechMs = answerMs
	}
	silenceMs := answerMs - speechMs

	pauseCount := wordCount / fallbackWordsPerPause
	var pauses []types.PauseInterval
	var longest int64
	if pauseCount > 0 && silenceMs > 0 {
		per := silenceMs / int64(pauseCount)
		longest = per
		for i := 0; i < pauseCount; i++ {
			start := int64(i+1) * answerMs / int64(pauseCount+1)
			pauses = append(pauses, types.PauseInterval{StartMs: start, DurationMs: per})
		}
	}

	latency := turn.RecordingStartMs - turn.PromptEndMs
	if latency < 0 {
		latency = 0
	}

	return types.TurnMetrics{
		TurnNumber:       turn.TurnNumber,
		StartLatencyMs:   latency,
		AnswerDurationMs: answerMs,
		SpeechMs:         speechMs,
		SilenceMs:        silenceMs,
		SpeechRatio:      ratio(speechMs, silenceMs),
		LongestSilenceMs: longest,
		SilenceCount:     pauseCount / 2,
		Pauses:           pauses,
		Estimated:        true,
	}
}

// extractSilent handles a non-response: no words, no transcript. The whole
// recording becomes a single pause so the turn scores as a silence failure
// instead of dividing by zero.
func extractSilent(turn types.TurnCapture, answerMs int64) types.TurnMetrics {
	latency := turn.RecordingStartMs - turn.PromptEndMs
	if latency < 0 {
		latency = 0
	}
	return types.TurnMetrics{
		TurnNumber:       turn.TurnNumber,
		StartLatencyMs:   latency,
		AnswerDurationMs: answerMs,
		SpeechMs:         0,
		SilenceMs:        answerMs,
		SpeechRatio:      0,
		LongestSilenceMs: answerMs,
		SilenceCount:     1,
		Pauses:           []types.PauseInterval{{StartMs: 0, DurationMs: answerMs}},
		Estimated:        true,
	}
}

func secToMs(s float64) int64 {
	return int64(math.Round(s * 1000))
}

func ratio(speechMs, silenceMs int64) float64 {
	total := speechMs + silenceMs
	if total <= 0 {
		return 0
	}
	r := float64(speechMs) / float64(total)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
