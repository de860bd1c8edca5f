// Package session drives one turn-by-turn call: prompt playback, response
// capture, transcription, and finally a single invocation of the scoring
// pipeline over the complete turn set. The controller is the only stateful
// component; everything downstream is pure.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"speaking-confidence-go/internal/engine"
	"speaking-confidence-go/internal/logger"
	"speaking-confidence-go/internal/prompt"
	"speaking-confidence-go/internal/scenario"
	"speaking-confidence-go/internal/transcription"
	"speaking-confidence-go/internal/types"
)

// State is the controller's position in the call flow.
type State int

const (
	StateLoading State = iota
	StateBotSpeaking
	StateWaitingForUser
	StateUserRecording
	StateProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateBotSpeaking:
		return "bot-speaking"
	case StateWaitingForUser:
		return "waiting-for-user"
	case StateUserRecording:
		return "user-recording"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrBadTransition is returned when an event arrives in a state that
	// does not accept it.
	ErrBadTransition = errors.New("event not valid in current state")

	// ErrSessionOver is returned when a collaborator result arrives after
	// the session was abandoned or failed; the result is discarded.
	ErrSessionOver = errors.New("session is over")

	// ErrRetryCapture signals that transcription failed and the same turn
	// must be captured again. An empty transcript is never silently
	// recorded in its place.
	ErrRetryCapture = errors.New("transcription failed, capture the turn again")
)

const defaultCaptureRetries = 2

// Config wires the controller's collaborators.
type Config struct {
	Scenario    scenario.Scenario
	Speaker     prompt.Speaker
	Transcriber transcription.Transcriber
	Engine      *engine.Engine

	// Now returns the current instant as epoch milliseconds. Defaults to
	// the wall clock; tests inject their own.
	Now func() int64

	// CaptureRetries is how many times a turn may be re-captured after
	// transcription failure before the session fails. Defaults to 2.
	CaptureRetries int
}

// Controller owns all TurnCapture data until the session completes. All
// exported methods are safe for concurrent use; collaborator calls are made
// without the lock held so Abandon can interleave, and a generation counter
// discards results that arrive for a session that has moved on.
type Controller struct {
	mu         sync.Mutex
	id         string
	cfg        Config
	state      State
	turnIdx    int
	generation int

	promptEndMs int64
	recStartMs  int64
	retries     int

	turns  []types.TurnCapture
	result *types.ConfidenceResult
	err    error

	log *logrus.Entry
}

// New prepares a controller in the loading state.
func New(cfg Config) (*Controller, error) {
	if len(cfg.Scenario.Turns) == 0 {
		return nil, errors.New("session: scenario has no turns")
	}
	if cfg.Speaker == nil || cfg.Transcriber == nil || cfg.Engine == nil {
		return nil, errors.New("session: speaker, transcriber, and engine are required")
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().UnixMilli() }
	}
	if cfg.CaptureRetries == 0 {
		cfg.CaptureRetries = defaultCaptureRetries
	}
	id := uuid.New().String()
	return &Controller{
		id:    id,
		cfg:   cfg,
		state: StateLoading,
		log:   logger.New().WithComponent("session").WithSession(id).WithField("scenario_id", cfg.Scenario.ID),
	}, nil
}

func (c *Controller) SessionID() string { return c.id }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TurnNumber is the 1-based turn currently in flight.
func (c *Controller) TurnNumber() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turnIdx + 1
}

// Result returns the scored session once the controller has completed.
func (c *Controller) Result() (*types.ConfidenceResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.result != nil
}

// Err returns the terminal error for a failed session.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Begin synthesizes the first prompt and moves to bot-speaking. A prompt
// that cannot be generated is terminal: the session fails and is never
// scored.
func (c *Controller) Begin(ctx context.Context) (prompt.Audio, error) {
	c.mu.Lock()
	if c.state != StateLoading {
		c.mu.Unlock()
		return prompt.Audio{}, fmt.Errorf("begin in %s: %w", c.state, ErrBadTransition)
	}
	gen := c.generation
	text := c.cfg.Scenario.Turns[0].Prompt
	c.mu.Unlock()

	audio, err := c.cfg.Speaker.Synthesize(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen || c.state != StateLoading {
		return prompt.Audio{}, ErrSessionOver
	}
	if err != nil {
		c.failLocked(fmt.Errorf("first prompt: %w", err))
		return prompt.Audio{}, err
	}
	c.state = StateBotSpeaking
	c.log.WithField("turn", 1).Info("prompt ready, bot speaking")
	return audio, nil
}

// PromptFinished records the prompt-end anchor for the upcoming turn and
// hands the floor to the user.
func (c *Controller) PromptFinished() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateBotSpeaking {
		return fmt.Errorf("prompt finished in %s: %w", c.state, ErrBadTransition)
	}
	c.promptEndMs = c.cfg.Now()
	c.state = StateWaitingForUser
	return nil
}

// StartRecording records the recording-start anchor on explicit user action.
func (c *Controller) StartRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateWaitingForUser {
		return fmt.Errorf("start recording in %s: %w", c.state, ErrBadTransition)
	}
	c.recStartMs = c.cfg.Now()
	c.state = StateUserRecording
	return nil
}

// RecordingDeadlineMs is the instant at which the current recording must be
// force-stopped (the turn's expected-duration ceiling). Valid only while
// recording.
func (c *Controller) RecordingDeadlineMs() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateUserRecording {
		return 0, false
	}
	ceiling := int64(c.cfg.Scenario.Turns[c.turnIdx].ExpectedSeconds) * 1000
	return c.recStartMs + ceiling, true
}

// StopRecording finalizes the capture (explicit user stop or ceiling hit),
// transcribes it, and advances the session. It returns the next prompt's
// audio while turns remain, or a zero Audio once the final turn has been
// scored. On transcription failure it reverts to waiting-for-user and
// returns ErrRetryCapture so the caller re-captures the same turn.
func (c *Controller) StopRecording(ctx context.Context, recordingRef string) (prompt.Audio, error) {
	c.mu.Lock()
	if c.state != StateUserRecording {
		c.mu.Unlock()
		return prompt.Audio{}, fmt.Errorf("stop recording in %s: %w", c.state, ErrBadTransition)
	}
	recEndMs := c.cfg.Now()
	c.state = StateProcessing
	gen := c.generation
	turn := c.turnIdx
	c.mu.Unlock()

	// Single outstanding transcription per turn; the client owns its own
	// retry/backoff policy for transient HTTP failures.
	res, err := c.cfg.Transcriber.Transcribe(ctx, recordingRef)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen || c.state != StateProcessing {
		return prompt.Audio{}, ErrSessionOver
	}

	if err != nil {
		c.retries++
		if c.retries > c.cfg.CaptureRetries {
			c.failLocked(fmt.Errorf("turn %d transcription: %w", turn+1, err))
			return prompt.Audio{}, c.err
		}
		c.log.WithError(err).WithField("turn", turn+1).Warn("transcription failed, retrying capture")
		c.state = StateWaitingForUser
		return prompt.Audio{}, ErrRetryCapture
	}
	c.retries = 0

	c.turns = append(c.turns, types.TurnCapture{
		TurnNumber:       turn + 1,
		Transcript:       res.Transcript,
		WordTimings:      res.Words,
		PromptEndMs:      c.promptEndMs,
		RecordingStartMs: c.recStartMs,
		RecordingEndMs:   recEndMs,
	})

	if turn+1 == len(c.cfg.Scenario.Turns) {
		return prompt.Audio{}, c.completeLocked()
	}

	c.turnIdx++
	return c.nextPromptLocked(ctx)
}

// Abandon discards the session. Outstanding collaborator calls are ignored
// when they return; no partial result is ever produced.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateCompleted || c.state == StateFailed {
		return
	}
	c.generation++
	c.failLocked(errors.New("session abandoned"))
}

// completeLocked runs the scoring pipeline once over the complete turn set.
func (c *Controller) completeLocked() error {
	result, err := c.cfg.Engine.Score(types.ScoreRequest{
		Turns:      c.turns,
		Tier:       c.cfg.Scenario.Tier,
		ScenarioID: c.cfg.Scenario.ID,
	})
	if err != nil {
		c.failLocked(fmt.Errorf("score session: %w", err))
		return c.err
	}
	c.result = &result
	c.state = StateCompleted
	c.log.WithFields(logrus.Fields{
		"turns": len(c.turns),
		"score": result.Scores.SpeakingConfidence0100,
	}).Info("session completed")
	return nil
}

// nextPromptLocked synthesizes the next turn's prompt. Called with the lock
// held; drops it for the collaborator call.
func (c *Controller) nextPromptLocked(ctx context.Context) (prompt.Audio, error) {
	gen := c.generation
	text := c.cfg.Scenario.Turns[c.turnIdx].Prompt
	turn := c.turnIdx
	c.mu.Unlock()

	audio, err := c.cfg.Speaker.Synthesize(ctx, text)

	c.mu.Lock()
	if c.generation != gen || c.state != StateProcessing {
		return prompt.Audio{}, ErrSessionOver
	}
	if err != nil {
		c.failLocked(fmt.Errorf("prompt for turn %d: %w", turn+1, err))
		return prompt.Audio{}, c.err
	}
	c.state = StateBotSpeaking
	c.log.WithField("turn", turn+1).Info("prompt ready, bot speaking")
	return audio, nil
}

func (c *Controller) failLocked(err error) {
	c.state = StateFailed
	c.err = err
	c.log.WithError(err).Warn("session failed")
}
