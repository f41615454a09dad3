package session

import (
	"context"
	"errors"
	"sync"

	"newsbrief/internal/domain"
)

// Phase is the controller's position in the Idle → Generating → Shown
// machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseGenerating Phase = "generating"
	PhaseShown      Phase = "shown"
)

var (
	ErrBusy       = errors.New("a summarization is already running")
	ErrNoResult   = errors.New("nothing to regenerate")
	ErrSuperseded = errors.New("input changed while generating")
)

// Runner executes the resolve → extract → summarize pipeline for one
// input.
type Runner interface {
	Run(ctx context.Context, input domain.Input) (domain.SummaryResult, error)
}

// State is a point-in-time snapshot of a controller.
type State struct {
	Phase  Phase
	Input  domain.Input
	Result *domain.SummaryResult
}

// Controller owns the state of one summarization target. A new action
// is only accepted once the previous one has completed; changing the
// input in any phase drops the stored result so a summary is never shown
// for content that no longer matches the input.
type Controller struct {
	mu     sync.Mutex
	runner Runner
	phase  Phase
	input  domain.Input
	result *domain.SummaryResult
	gen    uint64
}

func NewController(runner Runner) *Controller {
	return &Controller{runner: runner, phase: PhaseIdle}
}

// SetInput records the current input. A changed input resets the
// controller to Idle and clears any stale result; repeating the stored
// input is a no-op.
func (c *Controller) SetInput(input domain.Input) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if input == c.input {
		return
	}

	c.resetLocked(input)
}

// Generate runs the pipeline for input and stores the result. It resets
// first when input differs from the stored one, so a stale result is
// cleared even if the caller missed an input-changed event.
func (c *Controller) Generate(ctx context.Context, input domain.Input) (domain.SummaryResult, error) {
	c.mu.Lock()
	if c.phase == PhaseGenerating {
		c.mu.Unlock()
		return domain.SummaryResult{}, ErrBusy
	}

	if input != c.input {
		c.resetLocked(input)
	}

	c.phase = PhaseGenerating
	gen := c.gen
	c.mu.Unlock()

	result, err := c.runner.Run(ctx, input)

	return c.finish(gen, result, err)
}

// Regenerate re-runs the pipeline with the stored input, replacing the
// shown result.
func (c *Controller) Regenerate(ctx context.Context) (domain.SummaryResult, error) {
	c.mu.Lock()
	switch c.phase {
	case PhaseGenerating:
		c.mu.Unlock()
		return domain.SummaryResult{}, ErrBusy
	case PhaseIdle:
		c.mu.Unlock()
		return domain.SummaryResult{}, ErrNoResult
	case PhaseShown:
	}

	input := c.input
	c.phase = PhaseGenerating
	gen := c.gen
	c.mu.Unlock()

	result, err := c.runner.Run(ctx, input)

	return c.finish(gen, result, err)
}

// Home clears the stored result and input echo and returns to Idle.
func (c *Controller) Home() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked(domain.Input{})
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{Phase: c.phase, Input: c.input}
	if c.result != nil {
		result := *c.result
		state.Result = &result
	}

	return state
}

// resetLocked bumps the generation so an in-flight run that completes
// later cannot resurrect a result for a replaced input.
func (c *Controller) resetLocked(input domain.Input) {
	c.phase = PhaseIdle
	c.input = input
	c.result = nil
	c.gen++
}

// finish applies a pipeline outcome, unless the controller was reset
// while the run was in flight.
func (c *Controller) finish(gen uint64, result domain.SummaryResult, err error) (domain.SummaryResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		if err != nil {
			return domain.SummaryResult{}, err
		}

		return domain.SummaryResult{}, ErrSuperseded
	}

	if err != nil {
		c.phase = PhaseIdle
		c.result = nil

		return domain.SummaryResult{}, err
	}

	c.phase = PhaseShown
	c.result = &result

	return result, nil
}
