// Package session holds the tour step state machine: the ordered step
// list, the current step pointer, and the advance/jump/skip/complete
// operations the rest of the engine drives.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"

	"github.com/guidepost-io/guidepost/internal/domain/step"
	"github.com/guidepost-io/guidepost/internal/ports"
)

// State represents the session's lifecycle state.
type State string

const (
	// StateIdle indicates the tour has not started.
	StateIdle State = "idle"
	// StateRunning indicates a step is current.
	StateRunning State = "running"
	// StateComplete indicates the tour finished normally.
	StateComplete State = "complete"
	// StateSkipped indicates the user or a configuration error exited
	// the tour early.
	StateSkipped State = "skipped"
)

// Event types for the session state machine.
const (
	EventStart    = "START"
	EventAdvance  = "ADVANCE"
	EventJump     = "JUMP"
	EventSkip     = "SKIP"
	EventComplete = "COMPLETE"
)

// ErrNotRunning is returned by operations that require an active tour.
var ErrNotRunning = errors.New("session is not running")

// Context holds the runtime context for the session state machine.
type Context struct {
	// Index of the current step while running.
	Index int
}

// Session is the tour step state machine. At most one step is current
// at any time, and every transition is atomic under the session lock:
// observers never see a partially applied step change.
type Session struct {
	mu     sync.Mutex
	script *step.Script
	interp *statekit.Interpreter[Context]
	index  int
	log    ports.Logger

	// onStep is invoked after each committed transition with the new
	// state and, while running, the current step.
	onStep func(state State, current step.Step)
}

// New creates a session for the given script.
func New(script *step.Script, log ports.Logger) (*Session, error) {
	if script == nil {
		return nil, errors.New("script is required")
	}

	s := &Session{script: script, log: log}

	machine, err := statekit.NewMachine[Context]("guidepost-session").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(Context{}).
		State(statekit.StateID(StateIdle)).
		On(EventStart).Target(statekit.StateID(StateRunning)).
		On(EventSkip).Target(statekit.StateID(StateSkipped)).Done().
		State(statekit.StateID(StateRunning)).
		On(EventAdvance).Target(statekit.StateID(StateRunning)).
		On(EventJump).Target(statekit.StateID(StateRunning)).
		On(EventSkip).Target(statekit.StateID(StateSkipped)).
		On(EventComplete).Target(statekit.StateID(StateComplete)).Done().
		State(statekit.StateID(StateComplete)).Done().
		State(statekit.StateID(StateSkipped)).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build session machine: %w", err)
	}

	s.interp = statekit.NewInterpreter(machine)
	s.interp.Start()
	return s, nil
}

// SetStepHandler sets the callback invoked after each transition.
func (s *Session) SetStepHandler(fn func(state State, current step.Step)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStep = fn
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() State {
	return State(s.interp.State().Value)
}

// Current returns the current step while running.
func (s *Session) Current() (step.Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateRunning {
		return step.Step{}, false
	}
	return s.script.At(s.index), true
}

// Script returns the step script the session walks.
func (s *Session) Script() *step.Script {
	return s.script
}

// Start moves idle → running(first step). A no-op if the tour already
// started, per the start contract.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateIdle {
		return
	}
	s.index = 0
	s.interp.Send(statekit.Event{Type: EventStart})
	s.notify()
}

// AdvanceToNext moves to the following step, or to complete when the
// current step is the last one. A no-op when not running.
func (s *Session) AdvanceToNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateRunning {
		return
	}
	if s.script.IsLast(s.index) {
		s.interp.Send(statekit.Event{Type: EventComplete})
		s.notify()
		return
	}
	s.index++
	s.interp.Send(statekit.Event{Type: EventAdvance})
	s.notify()
}

// AdvanceTo jumps to an arbitrary step, used for conditional branches.
// An unknown ID is a configuration error: it is logged and the tour
// exits to skipped rather than crashing the host.
func (s *Session) AdvanceTo(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateRunning {
		return
	}
	i, err := s.script.IndexOf(id)
	if err != nil {
		if s.log != nil {
			s.log.Error(context.Background(), "tour jump to unknown step",
				ports.F("step", id))
		}
		s.interp.Send(statekit.Event{Type: EventSkip})
		s.notify()
		return
	}
	s.index = i
	s.interp.Send(statekit.Event{Type: EventJump})
	s.notify()
}

// Skip exits the tour. Idempotent from any state.
func (s *Session) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state() {
	case StateSkipped, StateComplete:
		return
	}
	s.interp.Send(statekit.Event{Type: EventSkip})
	s.notify()
}

// Complete finishes the tour. Idempotent.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state() {
	case StateComplete, StateSkipped:
		return
	case StateIdle:
		// Completing an unstarted tour marks it done without ever
		// showing a step.
		s.interp.Send(statekit.Event{Type: EventStart})
	}
	s.interp.Send(statekit.Event{Type: EventComplete})
	s.notify()
}

// StepNumber returns the 1-based progress number for a counted step,
// or 0 for uncounted kinds.
func (s *Session) StepNumber(id string) int {
	return s.script.StepNumber(id)
}

// TotalSteps returns the number of counted steps.
func (s *Session) TotalSteps() int {
	return s.script.TotalSteps()
}

// Stop tears down the underlying interpreter.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interp.Stop()
}

// notify invokes the step handler outside the statekit send path but
// inside the session lock, so handlers observe committed state only.
func (s *Session) notify() {
	if s.onStep == nil {
		return
	}
	st := s.state()
	var cur step.Step
	if st == StateRunning {
		cur = s.script.At(s.index)
	}
	s.onStep(st, cur)
}
