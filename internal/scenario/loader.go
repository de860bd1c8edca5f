// Package scenario loads the scenario library workbook: one row per turn,
// grouped into scenarios that drive call sessions.
package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TurnPrompt is one prompt the bot speaks, with the ceiling on how long the
// user's response may run before recording is force-stopped.
type TurnPrompt struct {
	Prompt          string `json:"prompt"`
	ExpectedSeconds int    `json:"expected_seconds"`
}

// Scenario is one practice situation: a difficulty tier and an ordered set
// of prompts.
type Scenario struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Tier  int          `json:"tier"`
	Turns []TurnPrompt `json:"turns"`
}

const defaultExpectedSeconds = 60

// Load reads the workbook's first sheet. Columns are detected from the
// header row by name so content editors can reorder them.
func Load(path string) ([]Scenario, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("workbook has no data rows")
	}

	idIdx, titleIdx, tierIdx, promptIdx, secsIdx := -1, -1, -1, -1, -1
	for i, h := range rows[0] {
		switch l := strings.ToLower(strings.TrimSpace(h)); {
		case strings.Contains(l, "scenario") && strings.Contains(l, "id") || l == "id":
			if idIdx == -1 {
				idIdx = i
			}
		case strings.Contains(l, "title") || strings.Contains(l, "name"):
			if titleIdx == -1 {
				titleIdx = i
			}
		case strings.Contains(l, "tier") || strings.Contains(l, "difficulty"):
			tierIdx = i
		case strings.Contains(l, "prompt") || strings.Contains(l, "question"):
			promptIdx = i
		case strings.Contains(l, "second") || strings.Contains(l, "duration"):
			secsIdx = i
		}
	}
	if idIdx == -1 || promptIdx == -1 {
		return nil, fmt.Errorf("workbook missing scenario id or prompt column")
	}

	byID := map[string]*Scenario{}
	var order []string
	for i, r := range rows {
		if i == 0 {
			continue
		}
		id := cell(r, idIdx)
		text := cell(r, promptIdx)
		if id == "" || text == "" {
			continue
		}
		sc, ok := byID[id]
		if !ok {
			sc = &Scenario{ID: id, Title: cell(r, titleIdx), Tier: atoiOr(cell(r, tierIdx), 1)}
			if sc.Tier < 1 || sc.Tier > 3 {
				return nil, fmt.Errorf("scenario %s: tier %d out of range 1-3", id, sc.Tier)
			}
			byID[id] = sc
			order = append(order, id)
		}
		secs := atoiOr(cell(r, secsIdx), defaultExpectedSeconds)
		if secs <= 0 {
			secs = defaultExpectedSeconds
		}
		// Row order within a scenario is the turn order.
		sc.Turns = append(sc.Turns, TurnPrompt{Prompt: text, ExpectedSeconds: secs})
	}

	out := make([]Scenario, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("workbook contains no usable scenarios")
	}
	return out, nil
}

// Index maps scenarios by ID for request-time lookup.
func Index(list []Scenario) map[string]Scenario {
	m := make(map[string]Scenario, len(list))
	for _, s := range list {
		m[s.ID] = s
	}
	return m
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
