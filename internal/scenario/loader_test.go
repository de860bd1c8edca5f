package scenario

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook builds a one-sheet xlsx from a header row plus data rows.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "scenarios.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("groups rows into scenarios in first-seen order", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Scenario ID", "Title", "Tier", "Prompt", "Expected Seconds"},
			{"sc-1", "Asking for a raise", 2, "Why do you deserve it?", 45},
			{"sc-2", "Pushing a deadline", 1, "What is the holdup?", 30},
			{"sc-1", "Asking for a raise", 2, "What if the answer is no?", 60},
		})

		list, err := Load(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("scenarios = %d, want 2", len(list))
		}
		if list[0].ID != "sc-1" || list[1].ID != "sc-2" {
			t.Errorf("order = %s,%s, want sc-1,sc-2", list[0].ID, list[1].ID)
		}
		first := list[0]
		if first.Title != "Asking for a raise" || first.Tier != 2 {
			t.Errorf("title/tier = %q/%d", first.Title, first.Tier)
		}
		if len(first.Turns) != 2 {
			t.Fatalf("sc-1 turns = %d, want 2", len(first.Turns))
		}
		if first.Turns[0].Prompt != "Why do you deserve it?" || first.Turns[0].ExpectedSeconds != 45 {
			t.Errorf("turn 1 = %+v", first.Turns[0])
		}
		if first.Turns[1].ExpectedSeconds != 60 {
			t.Errorf("turn 2 seconds = %d, want 60", first.Turns[1].ExpectedSeconds)
		}
	})

	t.Run("columns are found by header name in any order", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Question", "Difficulty", "ID", "Name"},
			{"Tell me more", 3, "sc-x", "Escalation"},
		})

		list, err := Load(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		sc := list[0]
		if sc.ID != "sc-x" || sc.Title != "Escalation" || sc.Tier != 3 {
			t.Errorf("scenario = %+v", sc)
		}
		if sc.Turns[0].Prompt != "Tell me more" {
			t.Errorf("prompt = %q", sc.Turns[0].Prompt)
		}
	})

	t.Run("missing duration column falls back to the default ceiling", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Scenario ID", "Prompt"},
			{"sc-1", "How did the call go?"},
		})

		list, err := Load(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got := list[0].Turns[0].ExpectedSeconds; got != defaultExpectedSeconds {
			t.Errorf("seconds = %d, want %d", got, defaultExpectedSeconds)
		}
		if got := list[0].Tier; got != 1 {
			t.Errorf("tier = %d, want default 1", got)
		}
	})

	t.Run("rows without an id or prompt are skipped", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Scenario ID", "Prompt"},
			{"sc-1", "First question"},
			{"", "Orphan prompt"},
			{"sc-1", ""},
			{"sc-1", "Second question"},
		})

		list, err := Load(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got := len(list[0].Turns); got != 2 {
			t.Fatalf("turns = %d, want 2", got)
		}
	})

	t.Run("rejects a tier outside 1-3", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Scenario ID", "Tier", "Prompt"},
			{"sc-1", 5, "Too hard"},
		})
		if _, err := Load(path); err == nil {
			t.Error("expected error for tier 5")
		}
	})

	t.Run("rejects a workbook without the required columns", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Foo", "Bar"},
			{"a", "b"},
		})
		if _, err := Load(path); err == nil {
			t.Error("expected error for missing id/prompt columns")
		}
	})

	t.Run("rejects a workbook with only a header", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Scenario ID", "Prompt"},
		})
		if _, err := Load(path); err == nil {
			t.Error("expected error for empty workbook")
		}
	})
}

func TestIndex(t *testing.T) {
	list := []Scenario{{ID: "a", Tier: 1}, {ID: "b", Tier: 2}}
	idx := Index(list)
	if len(idx) != 2 {
		t.Fatalf("index size = %d, want 2", len(idx))
	}
	if idx["b"].Tier != 2 {
		t.Errorf("idx[b].Tier = %d, want 2", idx["b"].Tier)
	}
}
