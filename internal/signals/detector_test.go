package signals

import (
	"strings"
	"testing"
	"unicode/utf8"

	"speaking-confidence-go/internal/types"
)

func mustDict(t *testing.T) *Dictionary {
	t.Helper()
	d, err := DefaultDictionary()
	if err != nil {
		t.Fatalf("default dictionary: %v", err)
	}
	return d
}

func TestDetect(t *testing.T) {
	dict := mustDict(t)

	t.Run("matches are case-insensitive", func(t *testing.T) {
		rep := Detect(dict, []types.TurnCapture{
			{TurnNumber: 1, Transcript: "I WILL take over from here"},
		})
		if len(rep.Ownership) != 1 {
			t.Fatalf("ownership matches = %d, want 1", len(rep.Ownership))
		}
		if rep.Ownership[0].Phrase != "i will" {
			t.Errorf("phrase = %q, want %q", rep.Ownership[0].Phrase, "i will")
		}
		if rep.Ownership[0].TurnNumber != 1 {
			t.Errorf("turn = %d, want 1", rep.Ownership[0].TurnNumber)
		}
	})

	t.Run("same phrase in two turns yields two matches", func(t *testing.T) {
		rep := Detect(dict, []types.TurnCapture{
			{TurnNumber: 1, Transcript: "i guess that works"},
			{TurnNumber: 2, Transcript: "well i guess so"},
		})
		if len(rep.LowConfidence) != 2 {
			t.Fatalf("low-confidence matches = %d, want 2", len(rep.LowConfidence))
		}
		if rep.LowConfidence[0].TurnNumber != 1 || rep.LowConfidence[1].TurnNumber != 2 {
			t.Errorf("turns = %d,%d, want 1,2",
				rep.LowConfidence[0].TurnNumber, rep.LowConfidence[1].TurnNumber)
		}
	})

	t.Run("repeated phrase within a turn yields one match per occurrence", func(t *testing.T) {
		rep := Detect(dict, []types.TurnCapture{
			{TurnNumber: 1, Transcript: "maybe yes and maybe no"},
		})
		count := 0
		for _, m := range rep.LowConfidence {
			if m.Phrase == "maybe" {
				count++
			}
		}
		if count != 2 {
			t.Errorf("occurrences = %d, want 2", count)
		}
	})

	t.Run("snippet carries roughly five words of context each side", func(t *testing.T) {
		rep := Detect(dict, []types.TurnCapture{
			{TurnNumber: 1, Transcript: "one two three four five six i will seven eight nine ten eleven twelve"},
		})
		if len(rep.Ownership) != 1 {
			t.Fatalf("ownership matches = %d, want 1", len(rep.Ownership))
		}
		snip := rep.Ownership[0].Snippet
		if strings.Contains(snip, "one") {
			t.Errorf("snippet %q includes words beyond the window", snip)
		}
		for _, want := range []string{"two", "six", "i will", "seven", "eleven"} {
			if !strings.Contains(snip, want) {
				t.Errorf("snippet %q missing %q", snip, want)
			}
		}
		if strings.Contains(snip, "twelve") {
			t.Errorf("snippet %q includes words beyond the window", snip)
		}
	})

	t.Run("snippet respects the character budget", func(t *testing.T) {
		long := strings.Repeat("supercalifragilistic ", 10) + "i will " + strings.Repeat("expialidocious ", 10)
		rep := Detect(dict, []types.TurnCapture{{TurnNumber: 1, Transcript: long}})
		if len(rep.Ownership) != 1 {
			t.Fatalf("ownership matches = %d, want 1", len(rep.Ownership))
		}
		if got := len(rep.Ownership[0].Snippet); got > snippetMaxChars {
			t.Errorf("snippet length = %d, want <= %d", got, snippetMaxChars)
		}
	})

	t.Run("runes that grow when lowered do not break matching", func(t *testing.T) {
		// "Ⱥ" is 2 bytes but its lower case "ⱥ" is 3, so the lowered
		// transcript is longer than the original.
		rep := Detect(dict, []types.TurnCapture{
			{TurnNumber: 1, Transcript: "Ⱥ i will"},
		})
		if len(rep.Ownership) != 1 {
			t.Fatalf("ownership matches = %d, want 1", len(rep.Ownership))
		}
		snip := rep.Ownership[0].Snippet
		if !strings.Contains(snip, "i will") {
			t.Errorf("snippet %q missing the matched phrase", snip)
		}
		if !utf8.ValidString(snip) {
			t.Errorf("snippet %q is not valid UTF-8", snip)
		}
	})

	t.Run("truncation never splits a multi-byte rune", func(t *testing.T) {
		long := strings.Repeat("あ", 60) + " i will " + strings.Repeat("あ", 60)
		rep := Detect(dict, []types.TurnCapture{{TurnNumber: 1, Transcript: long}})
		if len(rep.Ownership) != 1 {
			t.Fatalf("ownership matches = %d, want 1", len(rep.Ownership))
		}
		snip := rep.Ownership[0].Snippet
		if len(snip) > snippetMaxChars {
			t.Errorf("snippet length = %d, want <= %d", len(snip), snippetMaxChars)
		}
		if !utf8.ValidString(snip) {
			t.Errorf("snippet %q is not valid UTF-8", snip)
		}
	})

	t.Run("whole-transcript patterns evaluate over the concatenation", func(t *testing.T) {
		rep := Detect(dict, []types.TurnCapture{
			{TurnNumber: 1, Transcript: "Could you move the meeting"},
			{TurnNumber: 2, Transcript: "I can't stay past five and I feel strongly about that"},
			{TurnNumber: 3, Transcript: "I understand this is short notice"},
		})
		if !rep.HasRequestPattern {
			t.Error("expected request pattern")
		}
		if !rep.HasBoundaryPattern {
			t.Error("expected boundary pattern")
		}
		if !rep.HasFeelingsPattern {
			t.Error("expected feelings pattern")
		}
		if !rep.HasEmpathyPattern {
			t.Error("expected empathy pattern")
		}
	})

	t.Run("empty transcripts produce no matches and no patterns", func(t *testing.T) {
		rep := Detect(dict, []types.TurnCapture{{TurnNumber: 1, Transcript: ""}})
		if len(rep.Ownership)+len(rep.LowConfidence)+len(rep.Engagement)+
			len(rep.Structure)+len(rep.Repair) != 0 {
			t.Error("expected no matches")
		}
		if rep.HasRequestPattern || rep.HasBoundaryPattern {
			t.Error("expected no patterns")
		}
	})
}

func TestDictionary(t *testing.T) {
	t.Run("default dictionary has all five categories", func(t *testing.T) {
		d := mustDict(t)
		if len(d.Ownership) == 0 || len(d.LowConfidence) == 0 || len(d.Engagement) == 0 ||
			len(d.Structure) == 0 || len(d.Repair) == 0 {
			t.Error("default dictionary has an empty category")
		}
	})

	t.Run("phrases are normalized to lower case", func(t *testing.T) {
		d := mustDict(t)
		for _, p := range d.Ownership {
			if p != strings.ToLower(p) {
				t.Errorf("phrase %q not lower-cased", p)
			}
		}
	})

	t.Run("rejects a dictionary with a missing category", func(t *testing.T) {
		if _, err := parseDictionary([]byte("ownership:\n  - i will\n")); err == nil {
			t.Error("expected error for missing categories")
		}
	})
}
