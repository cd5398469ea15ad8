// Package engine orchestrates the guided tour: it owns the step state
// machine, the transition choreographer, element resolution, and the
// watcher rules, and publishes display snapshots for the presentation
// layer to render.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guidepost-io/guidepost/internal/domain/placement"
	"github.com/guidepost-io/guidepost/internal/domain/session"
	"github.com/guidepost-io/guidepost/internal/domain/step"
	"github.com/guidepost-io/guidepost/internal/ports"
)

// Options configures a new engine.
type Options struct {
	Script   *step.Script
	Rules    []Rule
	Registry ports.Registry
	Signals  ports.Signals
	Settings ports.Settings
	Logger   ports.Logger
	Tuning   Tuning

	// Force starts the tour even when the settings store says a
	// previous session completed or skipped it.
	Force bool
}

// Engine is the tour orchestrator. All methods are safe for concurrent
// use; callers are typically the host UI loop and the engine's own
// timers.
type Engine struct {
	mu        sync.Mutex
	session   *session.Session
	choreo    *Choreographer
	watchers  *Watchers
	script    *step.Script
	settings  ports.Settings
	log       ports.Logger
	tuning    Tuning
	force     bool
	runID     string
	listeners []func(DisplayState)

	refreshDone chan struct{}
	unsubReg    func()
	started     bool
	active      bool
	closed      bool
}

// New wires up an engine from its collaborators.
func New(opts Options) (*Engine, error) {
	if opts.Script == nil {
		return nil, errors.New("script is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if opts.Signals == nil {
		return nil, errors.New("signals source is required")
	}
	for _, r := range opts.Rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, err := opts.Script.IndexOf(r.StepID); err != nil {
			return nil, fmt.Errorf("rule references %w", err)
		}
	}

	log := opts.Logger
	runID := uuid.NewString()
	if log != nil {
		log = log.With(ports.F("tour_run", runID))
	}

	tuning := opts.Tuning.normalized()

	// Rules without an explicit settle delay on a falls condition get
	// the default settle, letting dependent UI finish rendering.
	rules := make([]Rule, len(opts.Rules))
	copy(rules, opts.Rules)
	for i := range rules {
		if rules[i].Condition == CondFalls && rules[i].SettleDelay == 0 {
			rules[i].SettleDelay = tuning.SettleDelay
		}
	}

	sess, err := session.New(opts.Script, log)
	if err != nil {
		return nil, err
	}

	resolver := NewResolver(opts.Registry, tuning.PollInterval)
	choreo, err := NewChoreographer(opts.Registry, resolver, tuning, log)
	if err != nil {
		sess.Stop()
		return nil, err
	}

	e := &Engine{
		session:     sess,
		choreo:      choreo,
		watchers:    NewWatchers(rules, opts.Signals, opts.Registry, log),
		script:      opts.Script,
		settings:    opts.Settings,
		log:         log,
		tuning:      tuning,
		force:       opts.Force,
		runID:       runID,
		refreshDone: make(chan struct{}),
	}

	e.watchers.SetActions(e.AdvanceNext, e.JumpTo)
	e.choreo.SetPublisher(e.broadcast)
	e.session.SetStepHandler(e.handleSession)
	e.unsubReg = opts.Registry.OnChange(e.registryChanged)

	go e.refreshLoop()

	return e, nil
}

// RunID returns the identifier correlating this engine's log entries.
func (e *Engine) RunID() string {
	return e.runID
}

// Subscribe registers a listener for display snapshots. Must be called
// before Start.
func (e *Engine) Subscribe(fn func(DisplayState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Display returns the current display snapshot. Like broadcast, it
// folds in the session activity flag: once the tour completed or was
// skipped, Active is false regardless of what the choreographer last
// rendered.
func (e *Engine) Display() DisplayState {
	snap := e.choreo.Display()
	e.mu.Lock()
	snap.Active = e.active
	e.mu.Unlock()
	return snap
}

// SetViewport informs the engine of the host viewport geometry.
func (e *Engine) SetViewport(size placement.Size) {
	e.choreo.SetViewport(size)
}

// Start begins the tour at the first step. It is a no-op when a
// previous session already completed or skipped the tour, unless the
// engine was built with Force.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.closed || e.started {
		e.mu.Unlock()
		return
	}
	if !e.force && e.settings != nil && (e.settings.Completed() || e.settings.Skipped()) {
		e.mu.Unlock()
		if e.log != nil {
			e.log.Info(context.Background(), "tour already seen, not starting")
		}
		return
	}
	e.started = true
	e.mu.Unlock()

	if e.log != nil {
		e.log.Info(context.Background(), "tour starting",
			ports.F("steps", e.script.Len()),
			ports.F("counted", e.script.TotalSteps()))
	}
	e.session.Start()
}

// RequestAdvance handles a manual "next". The optional verify predicate
// lets the host gate the advance, e.g. comparing live input text against
// the step's suggested message. Auto steps ignore manual advances.
func (e *Engine) RequestAdvance(verify func() bool) {
	cur, ok := e.session.Current()
	if !ok {
		return
	}
	if cur.Advance == step.AdvanceAuto {
		return
	}
	if verify != nil && !verify() {
		return
	}
	e.session.AdvanceToNext()
}

// RequestSkip exits the tour at the user's request.
func (e *Engine) RequestSkip() {
	e.session.Skip()
}

// RequestComplete finishes the tour.
func (e *Engine) RequestComplete() {
	e.session.Complete()
}

// AdvanceNext moves to the following step. Exposed for watcher rules
// and hosts that drive the tour programmatically.
func (e *Engine) AdvanceNext() {
	e.session.AdvanceToNext()
}

// JumpTo moves to an arbitrary step.
func (e *Engine) JumpTo(stepID string) {
	e.session.AdvanceTo(stepID)
}

// State returns the session lifecycle state.
func (e *Engine) State() session.State {
	return e.session.State()
}

// Close tears down all timers, watchers, and subscriptions.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.refreshDone)
	unsub := e.unsubReg
	e.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	e.watchers.Deactivate()
	e.choreo.Close()
	e.session.Stop()
}

// handleSession reacts to committed session transitions. It runs with
// the session lock held and must not call back into locking session
// methods.
func (e *Engine) handleSession(state session.State, current step.Step) {
	e.mu.Lock()
	e.active = state == session.StateRunning
	e.mu.Unlock()

	switch state {
	case session.StateRunning:
		if e.log != nil {
			e.log.Debug(context.Background(), "tour step",
				ports.F("step", current.ID),
				ports.F("kind", string(current.Kind)))
		}
		e.watchers.Activate(current.ID)
		e.choreo.Begin(current,
			e.script.StepNumber(current.ID), e.script.TotalSteps())

	case session.StateComplete:
		e.finish(true)

	case session.StateSkipped:
		e.finish(false)
	}
}

// finish persists the seen flag and clears the display.
func (e *Engine) finish(completed bool) {
	e.watchers.Deactivate()
	e.choreo.Clear()

	if e.settings != nil {
		var err error
		if completed {
			err = e.settings.MarkCompleted()
		} else {
			err = e.settings.MarkSkipped()
		}
		if err != nil && e.log != nil {
			e.log.Warn(context.Background(), "failed to persist tour flag",
				ports.F("error", err))
		}
	}
	if e.log != nil {
		e.log.Info(context.Background(), "tour finished",
			ports.F("completed", completed))
	}

	e.broadcast(e.choreo.Display())
}

// registryChanged retries parked resolutions when the missing target
// finally mounts. Target loss while settled is picked up by the refresh
// tick.
func (e *Engine) registryChanged(name string) {
	if e.choreo.Phase() != PhaseParked {
		return
	}
	cur, ok := e.session.Current()
	if !ok || cur.Target != name {
		return
	}
	e.choreo.Retry()
}

// refreshLoop drives steady-state placement refresh while settled.
func (e *Engine) refreshLoop() {
	ticker := time.NewTicker(e.tuning.RefreshTick)
	defer ticker.Stop()
	for {
		select {
		case <-e.refreshDone:
			return
		case <-ticker.C:
			e.choreo.Refresh()
		}
	}
}

// broadcast forwards a display snapshot to all listeners, folding in
// the session activity flag. It must not call locking session methods:
// it can run while the session lock is held.
func (e *Engine) broadcast(snap DisplayState) {
	e.mu.Lock()
	snap.Active = e.active
	listeners := make([]func(DisplayState), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
