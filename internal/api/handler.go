// Package api exposes the scoring engine as a single request/response HTTP
// operation plus a couple of read-only helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"speaking-confidence-go/internal/engine"
	"speaking-confidence-go/internal/logger"
	"speaking-confidence-go/internal/scenario"
	"speaking-confidence-go/internal/types"
)

type Handler struct {
	engine    *engine.Engine
	scenarios map[string]scenario.Scenario
}

func NewHandler(eng *engine.Engine, scenarios map[string]scenario.Scenario) *Handler {
	return &Handler{engine: eng, scenarios: scenarios}
}

// Score handles POST /score: a complete turn set in, a ConfidenceResult out.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	log := logger.New().WithRequest(r).WithField("handler", "score")
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req types.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithField("error", err.Error()).Warn("bad request body")
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	// A known scenario fills in the tier when the caller omits it.
	if req.Tier == 0 {
		if sc, ok := h.scenarios[req.ScenarioID]; ok {
			req.Tier = sc.Tier
		}
	}

	result, err := h.engine.Score(req)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRequest) {
			log.WithField("error", err.Error()).Warn("rejected request")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.WithField("error", err.Error()).Error("scoring failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.WithField("scenario_id", req.ScenarioID).
		WithField("score", result.Scores.SpeakingConfidence0100).
		Info("session scored")
	writeJSON(w, result)
}

// Scenarios handles GET /scenarios: the loaded library, without prompts.
func (h *Handler) Scenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type summary struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Tier  int    `json:"tier"`
		Turns int    `json:"turns"`
	}
	out := make([]summary, 0, len(h.scenarios))
	for _, sc := range h.scenarios {
		out = append(out, summary{ID: sc.ID, Title: sc.Title, Tier: sc.Tier, Turns: len(sc.Turns)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
