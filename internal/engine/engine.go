// Package engine validates a complete turn set and runs the scoring pipeline
// over it exactly once: extract -> aggregate -> detect -> score -> compose.
// The pipeline is pure and deterministic; identical requests always produce
// identical results.
package engine

import (
	"errors"
	"fmt"

	"speaking-confidence-go/internal/metrics"
	"speaking-confidence-go/internal/scoring"
	"speaking-confidence-go/internal/signals"
	"speaking-confidence-go/internal/types"
)

// ErrInvalidRequest marks malformed input: the whole request is rejected, no
// partial result is produced.
var ErrInvalidRequest = errors.New("invalid score request")

// maxDisplayMatches caps each signal list in the result; matches beyond this
// are dropped for display only and never influence the scores.
const maxDisplayMatches = 10

type Engine struct {
	markers *signals.Dictionary
}

func New(markers *signals.Dictionary) *Engine {
	return &Engine{markers: markers}
}

// Score runs the full pipeline over a complete, ordered turn set.
func (e *Engine) Score(req types.ScoreRequest) (types.ConfidenceResult, error) {
	if err := validate(req); err != nil {
		return types.ConfidenceResult{}, err
	}

	perTurn := make([]types.TurnMetrics, 0, len(req.Turns))
	for _, turn := range req.Turns {
		perTurn = append(perTurn, metrics.Extract(turn))
	}
	agg := metrics.Aggregate(perTurn)
	rep := signals.Detect(e.markers, req.Turns)
	dims := scoring.ScoreDimensions(agg, req.Tier, rep)

	return types.ConfidenceResult{
		ScenarioID: req.ScenarioID,
		Tier:       req.Tier,
		Scores: types.ScoreBlock{
			D1ResponseInitiation:   dims[0],
			D2SilenceManagement:    dims[1],
			D3OwnershipAssertive:   dims[2],
			D4EmotionalEngagement:  dims[3],
			D5ClarityControl:       dims[4],
			SpeakingConfidence0100: scoring.Composite(dims),
		},
		TimingAggregates: agg,
		Signals: types.SignalBlock{
			OwnershipMarkers:     truncate(rep.Ownership),
			LowConfidenceMarkers: truncate(rep.LowConfidence),
			EngagementMarkers:    truncate(rep.Engagement),
			StructureMarkers:     truncate(rep.Structure),
			RepairMarkers:        truncate(rep.Repair),
		},
		Versions: types.VersionBlock{
			ScorerVersion: scoring.ScorerVersion,
			PromptVersion: scoring.PromptVersion,
		},
	}, nil
}

// validate rejects anything the pipeline cannot score: empty or
// non-contiguous turn sets, unknown tiers, and negative durations.
func validate(req types.ScoreRequest) error {
	if len(req.Turns) == 0 {
		return fmt.Errorf("%w: no turns", ErrInvalidRequest)
	}
	if req.Tier < 1 || req.Tier > 3 {
		return fmt.Errorf("%w: tier %d out of range 1-3", ErrInvalidRequest, req.Tier)
	}
	for i, turn := range req.Turns {
		if turn.TurnNumber != i+1 {
			return fmt.Errorf("%w: turns must be contiguous 1..N, got %d at position %d",
				ErrInvalidRequest, turn.TurnNumber, i)
		}
		if turn.RecordingEndMs < turn.RecordingStartMs {
			return fmt.Errorf("%w: turn %d recording ends before it starts",
				ErrInvalidRequest, turn.TurnNumber)
		}
		for j, w := range turn.WordTimings {
			if w.Start < 0 || w.End < w.Start {
				return fmt.Errorf("%w: turn %d word %d has invalid timing",
					ErrInvalidRequest, turn.TurnNumber, j)
			}
		}
	}
	return nil
}

func truncate(matches []types.SignalMatch) []types.SignalMatch {
	if matches == nil {
		return []types.SignalMatch{}
	}
	if len(matches) > maxDisplayMatches {
		return matches[:maxDisplayMatches]
	}
	return matches
}
