package signals

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"speaking-confidence-go/internal/types"
)

const (
	// snippetWords is the context window kept on each side of a match.
	snippetWords = 5

	// snippetMaxChars caps the evidence snippet for display.
	snippetMaxChars = 160
)

// Whole-transcript heuristic checks used by the dimension scorer.
var (
	requestPattern = regexp.MustCompile(`(?i)\b(?:could|can|would|will) you\b|\bi need you to\b|\bi(?:'| a)m asking\b|\bplease\b`)
	boundaryPattern = regexp.MustCompile(`(?i)\bi (?:can't|cannot|won't|will not)\b|\bi(?:'| a)m not able to\b|\bthat (?:doesn't|does not) work for me\b|\bi have to say no\b`)
	feelingsPattern = regexp.MustCompile(`(?i)\bi (?:feel|felt)\b|\bi(?:'| a)m feeling\b|\bit makes me\b`)
	empathyPattern  = regexp.MustCompile(`(?i)\bi (?:understand|hear you|can see|appreciate)\b|\bthat must be\b`)
)

// Report is the detector's full output for one session.
type Report struct {
	Ownership     []types.SignalMatch
	LowConfidence []types.SignalMatch
	Engagement    []types.SignalMatch
	Structure     []types.SignalMatch
	Repair        []types.SignalMatch

	HasRequestPattern  bool
	HasBoundaryPattern bool
	HasFeelingsPattern bool
	HasEmpathyPattern  bool

	TranscriptChars int
}

// Detect matches the dictionary against each turn's transcript independently
// (the same phrase in two turns yields two matches) and evaluates the
// whole-transcript patterns over the concatenation.
func Detect(dict *Dictionary, turns []types.TurnCapture) Report {
	var rep Report
	var full strings.Builder

	for _, turn := range turns {
		rep.Ownership = append(rep.Ownership, matchPhrases(dict.Ownership, turn)...)
		rep.LowConfidence = append(rep.LowConfidence, matchPhrases(dict.LowConfidence, turn)...)
		rep.Engagement = append(rep.Engagement, matchPhrases(dict.Engagement, turn)...)
		rep.Structure = append(rep.Structure, matchPhrases(dict.Structure, turn)...)
		rep.Repair = append(rep.Repair, matchPhrases(dict.Repair, turn)...)

		if full.Len() > 0 {
			full.WriteByte(' ')
		}
		full.WriteString(turn.Transcript)
	}

	text := full.String()
	rep.HasRequestPattern = requestPattern.MatchString(text)
	rep.HasBoundaryPattern = boundaryPattern.MatchString(text)
	rep.HasFeelingsPattern = feelingsPattern.MatchString(text)
	rep.HasEmpathyPattern = empathyPattern.MatchString(text)
	rep.TranscriptChars = len(text)
	return rep
}

// matchPhrases finds every occurrence of every phrase in one turn. Matching
// and snippet extraction both run over the lowered transcript: ToLower can
// change a rune's byte length, so offsets into the lowered copy are never
// valid in the original.
func matchPhrases(phrases []string, turn types.TurnCapture) []types.SignalMatch {
	lower := strings.ToLower(turn.Transcript)
	var out []types.SignalMatch
	for _, phrase := range phrases {
		from := 0
		for {
			i := strings.Index(lower[from:], phrase)
			if i < 0 {
				break
			}
			at := from + i
			out = append(out, types.SignalMatch{
				Phrase:     phrase,
				Snippet:    snippet(lower, at, at+len(phrase)),
				TurnNumber: turn.TurnNumber,
			})
			from = at + len(phrase)
		}
	}
	return out
}

// snippet expands [start,end) to roughly snippetWords words of context on
// each side, then truncates to the character budget.
func snippet(text string, start, end int) string {
	if end > len(text) {
		end = len(text)
	}
	s, n := start, 0
	for s > 0 {
		if text[s-1] == ' ' {
			n++
			if n > snippetWords {
				break
			}
		}
		s--
	}
	e := end
	n = 0
	for e < len(text) {
		if text[e] == ' ' {
			n++
			if n > snippetWords {
				break
			}
		}
		e++
	}
	out := strings.TrimSpace(text[s:e])
	if len(out) > snippetMaxChars {
		cut := snippetMaxChars
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}
