package types

// WordTiming is one recognized token in a turn's response. Start and End are
// seconds relative to the start of the turn's recording.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TurnCapture is the raw material for one user turn: the transcript, the
// word-level timings (may be empty even when the transcript is not), and the
// three timing anchors as absolute epoch milliseconds.
type TurnCapture struct {
	TurnNumber       int          `json:"turnNumber"`
	Transcript       string       `json:"transcript"`
	WordTimings      []WordTiming `json:"wordTimings"`
	PromptEndMs      int64        `json:"promptEndMs"`
	RecordingStartMs int64        `json:"recordingStartMs"`
	RecordingEndMs   int64        `json:"recordingEndMs"`
}

// PauseInterval is a single detected hesitation gap, milliseconds relative to
// the start of the turn's recording.
type PauseInterval struct {
	StartMs    int64 `json:"start_ms"`
	DurationMs int64 `json:"duration_ms"`
}

// TurnMetrics holds the derived timing statistics for one turn. Computed once
// after capture and never mutated.
type TurnMetrics struct {
	TurnNumber       int             `json:"turn_number"`
	StartLatencyMs   int64           `json:"start_latency_ms"`
	AnswerDurationMs int64           `json:"answer_duration_ms"`
	SpeechMs         int64           `json:"speech_ms"`
	SilenceMs        int64           `json:"silence_ms"`
	SpeechRatio      float64         `json:"speech_ratio"`
	LongestSilenceMs int64           `json:"longest_silence_ms"`
	SilenceCount     int             `json:"silence_count"`
	Pauses           []PauseInterval `json:"pauses,omitempty"`
	Estimated        bool            `json:"estimated,omitempty"`
}

// AggregateMetrics are the session-level timing statistics.
type AggregateMetrics struct {
	StartLatencyMsMedian float64 `json:"start_latency_ms_median"`
	SpeechRatioAvg       float64 `json:"speech_ratio_avg"`
	LongestSilenceMs     int64   `json:"longest_silence_ms"`
	TotalSpeechMs        int64   `json:"total_speech_ms"`
	TotalSilenceMs       int64   `json:"total_silence_ms"`
	TotalAnswerMs        int64   `json:"total_answer_ms"`
	TurnCount            int     `json:"turn_count"`
}

// SignalMatch is one occurrence of a marker phrase, with a bounded context
// snippet kept for human review.
type SignalMatch struct {
	Phrase     string `json:"phrase"`
	Snippet    string `json:"snippet"`
	TurnNumber int    `json:"turn_number"`
}

// DimensionScore is one of the five scored confidence facets.
type DimensionScore struct {
	Score      int     `json:"score_0_5"`
	Confidence float64 `json:"confidence_0_1"`
}

// ScoreBlock carries the five dimension scores plus the weighted composite.
type ScoreBlock struct {
	D1ResponseInitiation   DimensionScore `json:"d1_response_initiation"`
	D2SilenceManagement    DimensionScore `json:"d2_silence_management"`
	D3OwnershipAssertive   DimensionScore `json:"d3_ownership_assertiveness"`
	D4EmotionalEngagement  DimensionScore `json:"d4_emotional_engagement"`
	D5ClarityControl       DimensionScore `json:"d5_clarity_control"`
	SpeakingConfidence0100 int            `json:"speaking_confidence_score_0_100"`
}

// SignalBlock groups the per-category marker matches, truncated for display.
type SignalBlock struct {
	OwnershipMarkers     []SignalMatch `json:"ownership_markers"`
	LowConfidenceMarkers []SignalMatch `json:"low_confidence_markers"`
	EngagementMarkers    []SignalMatch `json:"engagement_markers"`
	StructureMarkers     []SignalMatch `json:"structure_markers"`
	RepairMarkers        []SignalMatch `json:"repair_markers"`
}

// VersionBlock records the scoring-policy versions a result was computed
// under. Results from different versions are not numerically comparable.
type VersionBlock struct {
	ScorerVersion string `json:"scorer_version"`
	PromptVersion string `json:"prompt_version"`
}

// ScoreRequest is the engine's sole input: a complete, ordered turn set plus
// scenario metadata.
type ScoreRequest struct {
	Turns      []TurnCapture `json:"turns"`
	Tier       int           `json:"tier"`
	ScenarioID string        `json:"scenarioId"`
}

// ConfidenceResult is the final, immutable artifact of a scored session.
type ConfidenceResult struct {
	ScenarioID       string           `json:"scenario_id"`
	Tier             int              `json:"tier"`
	Scores           ScoreBlock       `json:"scores"`
	TimingAggregates AggregateMetrics `json:"timing_aggregates"`
	Signals          SignalBlock      `json:"signals"`
	Versions         VersionBlock     `json:"versions"`
}
