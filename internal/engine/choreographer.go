package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/guidepost-io/guidepost/internal/domain/placement"
	"github.com/guidepost-io/guidepost/internal/domain/step"
	"github.com/guidepost-io/guidepost/internal/ports"
)

// Event types for the choreographer state machine.
const (
	eventBegin        = "BEGIN"
	eventFadeOutNext  = "FADE_OUT_NEXT"
	eventFadeOutEmpty = "FADE_OUT_EMPTY"
	eventSwapped      = "SWAPPED"
	eventResolved     = "RESOLVED"
	eventUnresolved   = "UNRESOLVED"
	eventRetry        = "RETRY"
	eventFadeInDone   = "FADE_IN_DONE"
	eventLost         = "LOST"
)

// choreoContext is the statekit context for the transition machine. The
// authoritative display data lives on the Choreographer itself, guarded
// by its lock; the machine only enforces legal phase ordering.
type choreoContext struct{}

// pendingStep carries the next step's content through a transition.
type pendingStep struct {
	step   step.Step
	number int
	total  int
}

// Choreographer sequences hide-current → swap-content → resolve-new →
// show-new for every step change. Transitions are strictly sequential: a
// step change arriving mid-sequence restarts the fade-out from the
// current visual state instead of being queued or dropped. A generation
// counter invalidates the timers and resolutions of superseded
// transitions, so no stale callback can touch the display.
type Choreographer struct {
	mu sync.Mutex

	interp   *statekit.Interpreter[choreoContext]
	registry ports.Registry
	resolver *Resolver
	tuning   Tuning
	log      ports.Logger

	gen         int
	pending     *pendingStep
	currentStep step.Step
	fadeTimer   *time.Timer
	cancel      context.CancelFunc

	viewport placement.Size
	display  DisplayState

	publish func(DisplayState)
}

// NewChoreographer builds the transition machine.
func NewChoreographer(registry ports.Registry, resolver *Resolver, tuning Tuning, log ports.Logger) (*Choreographer, error) {
	machine, err := statekit.NewMachine[choreoContext]("guidepost-choreo").
		WithInitial(statekit.StateID(PhaseHidden)).
		WithContext(choreoContext{}).
		State(statekit.StateID(PhaseHidden)).
		On(eventBegin).Target(statekit.StateID(PhaseFadingOut)).Done().
		State(statekit.StateID(PhaseFadingOut)).
		On(eventBegin).Target(statekit.StateID(PhaseFadingOut)).
		On(eventFadeOutNext).Target(statekit.StateID(PhaseSwapping)).
		On(eventFadeOutEmpty).Target(statekit.StateID(PhaseHidden)).Done().
		State(statekit.StateID(PhaseSwapping)).
		On(eventSwapped).Target(statekit.StateID(PhaseResolving)).
		On(eventBegin).Target(statekit.StateID(PhaseFadingOut)).Done().
		State(statekit.StateID(PhaseResolving)).
		On(eventResolved).Target(statekit.StateID(PhaseFadingIn)).
		On(eventUnresolved).Target(statekit.StateID(PhaseParked)).
		On(eventBegin).Target(statekit.StateID(PhaseFadingOut)).Done().
		State(statekit.StateID(PhaseParked)).
		On(eventRetry).Target(statekit.StateID(PhaseResolving)).
		On(eventBegin).Target(statekit.StateID(PhaseFadingOut)).Done().
		State(statekit.StateID(PhaseFadingIn)).
		On(eventFadeInDone).Target(statekit.StateID(PhaseSettled)).
		On(eventLost).Target(statekit.StateID(PhaseFadingOut)).
		On(eventBegin).Target(statekit.StateID(PhaseFadingOut)).Done().
		State(statekit.StateID(PhaseSettled)).
		On(eventLost).Target(statekit.StateID(PhaseFadingOut)).
		On(eventBegin).Target(statekit.StateID(PhaseFadingOut)).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build choreographer machine: %w", err)
	}

	c := &Choreographer{
		interp:   statekit.NewInterpreter(machine),
		registry: registry,
		resolver: resolver,
		tuning:   tuning.normalized(),
		log:      log,
		display:  DisplayState{Phase: PhaseHidden},
	}
	c.interp.Start()
	return c, nil
}

// SetPublisher sets the callback that receives every display change.
// Snapshots are delivered outside the choreographer lock.
func (c *Choreographer) SetPublisher(fn func(DisplayState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publish = fn
}

// Phase returns the current transition phase.
func (c *Choreographer) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase()
}

// Display returns the current display snapshot.
func (c *Choreographer) Display() DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// SetViewport updates the viewport geometry and, when settled, reflows
// the displayed step.
func (c *Choreographer) SetViewport(size placement.Size) {
	c.mu.Lock()
	c.viewport = size
	snap, changed := c.refreshLocked()
	c.mu.Unlock()
	if changed {
		c.emit(snap)
	}
}

// Begin starts the transition to a new step. Safe to call in any phase;
// mid-transition it supersedes the previous target step.
func (c *Choreographer) Begin(st step.Step, number, total int) {
	c.mu.Lock()
	c.supersedeLocked()
	c.pending = &pendingStep{step: st, number: number, total: total}
	c.interp.Send(statekit.Event{Type: eventBegin})
	c.display.Active = true
	c.display.Phase = c.phase()
	c.startFadeOut()
	snap := c.display
	c.mu.Unlock()
	c.emit(snap)
}

// Clear fades out whatever is displayed and ends hidden, used on tour
// exit and when a settled target disappears for good.
func (c *Choreographer) Clear() {
	c.mu.Lock()
	if c.phase() == PhaseHidden && c.pending == nil {
		c.mu.Unlock()
		return
	}
	c.supersedeLocked()
	c.pending = nil
	c.interp.Send(statekit.Event{Type: eventBegin})
	c.display.Phase = c.phase()
	c.startFadeOut()
	snap := c.display
	c.mu.Unlock()
	c.emit(snap)
}

// Retry re-runs target resolution for a parked step, typically because
// the registry finally saw the target mount.
func (c *Choreographer) Retry() {
	c.mu.Lock()
	if c.phase() != PhaseParked {
		c.mu.Unlock()
		return
	}
	c.interp.Send(statekit.Event{Type: eventRetry})
	c.display.Phase = c.phase()
	snap := c.display
	c.startResolve()
	c.mu.Unlock()
	c.emit(snap)
}

// Refresh recomputes placement from live bounds. It only acts while
// settled; mid-transition updates stay frozen.
func (c *Choreographer) Refresh() {
	c.mu.Lock()
	snap, changed := c.refreshLocked()
	c.mu.Unlock()
	if changed {
		c.emit(snap)
	}
}

// Close cancels all timers and pending resolutions and stops the
// machine. The display is left as-is; the engine publishes the final
// inactive state.
func (c *Choreographer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersedeLocked()
	c.interp.Stop()
}

func (c *Choreographer) phase() Phase {
	return Phase(c.interp.State().Value)
}

// supersedeLocked invalidates outstanding timers and resolutions.
func (c *Choreographer) supersedeLocked() {
	c.gen++
	if c.fadeTimer != nil {
		c.fadeTimer.Stop()
		c.fadeTimer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Choreographer) startFadeOut() {
	gen := c.gen
	c.fadeTimer = time.AfterFunc(c.tuning.FadeOut, func() {
		c.fadeOutDone(gen)
	})
}

// fadeOutDone fires when the fade-out window elapses: either swap in the
// pending step or finish hiding.
func (c *Choreographer) fadeOutDone(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.phase() != PhaseFadingOut {
		c.mu.Unlock()
		return
	}

	if c.pending == nil {
		c.interp.Send(statekit.Event{Type: eventFadeOutEmpty})
		c.display = DisplayState{Active: c.display.Active, Phase: PhaseHidden}
		snap := c.display
		c.mu.Unlock()
		c.emit(snap)
		return
	}

	c.interp.Send(statekit.Event{Type: eventFadeOutNext})

	// The swap: every content field and both position fields change
	// together, under the lock. No frame can pair step A's content with
	// step B's position.
	p := c.pending
	c.pending = nil
	c.display = DisplayState{
		Active:           true,
		Phase:            PhaseSwapping,
		StepID:           p.step.ID,
		Kind:             p.step.Kind,
		Message:          p.step.Message,
		SuggestedValue:   p.step.SuggestedValue,
		SuggestedMessage: p.step.SuggestedMessage,
		StepNumber:       p.number,
		TotalSteps:       p.total,
	}
	c.currentStep = p.step

	c.interp.Send(statekit.Event{Type: eventSwapped})
	c.display.Phase = c.phase()
	snap := c.display
	c.startResolve()
	c.mu.Unlock()
	c.emit(snap)
}

// startResolve kicks off target resolution for the displayed step.
// Caller holds the lock and the machine is in resolving.
func (c *Choreographer) startResolve() {
	st := c.currentStep
	if st.Kind != step.KindSpotlight {
		c.finishResolveLocked(nil)
		return
	}

	gen := c.gen
	ctx, cancel := context.WithTimeout(context.Background(), c.tuning.ResolveTimeout)
	c.cancel = cancel
	go func() {
		defer cancel()
		el, ok := c.resolver.Resolve(ctx, st.Target)
		if !ok {
			el = nil
		}
		c.resolved(gen, el)
	}()
}

// resolved handles the outcome of an async resolution.
func (c *Choreographer) resolved(gen int, el ports.Element) {
	c.mu.Lock()
	if gen != c.gen || c.phase() != PhaseResolving {
		c.mu.Unlock()
		return
	}
	if el == nil {
		c.interp.Send(statekit.Event{Type: eventUnresolved})
		c.display.Phase = c.phase()
		c.display.Visible = false
		snap := c.display
		c.mu.Unlock()
		if c.log != nil {
			c.log.Warn(context.Background(), "tour target did not appear",
				ports.F("step", snap.StepID))
		}
		c.emit(snap)
		return
	}
	c.finishResolveLocked(el)
	snap := c.display
	c.mu.Unlock()
	c.emit(snap)
}

// finishResolveLocked computes placement, makes the step visible, and
// starts the fade-in. Caller holds the lock; the machine is resolving.
func (c *Choreographer) finishResolveLocked(el ports.Element) {
	st := c.currentStep
	switch st.Kind {
	case step.KindSpotlight:
		rect := el.Bounds()
		pl := placement.Place(rect, st.PreferredSide, c.tuning.TooltipSize,
			c.viewport, c.tuning.Gap, c.tuning.Padding)
		c.display.TargetRect = &rect
		c.display.Placement = &pl
	case step.KindPopup:
		pl := placement.Center(c.tuning.TooltipSize, c.viewport, c.tuning.Padding)
		c.display.Placement = &pl
		c.display.TargetRect = nil
	case step.KindWaiting:
		c.display.Placement = nil
		c.display.TargetRect = nil
	}

	c.interp.Send(statekit.Event{Type: eventResolved})
	c.display.Phase = c.phase()
	c.display.Visible = true

	gen := c.gen
	c.fadeTimer = time.AfterFunc(c.tuning.FadeIn, func() {
		c.fadeInDone(gen)
	})
}

func (c *Choreographer) fadeInDone(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.phase() != PhaseFadingIn {
		c.mu.Unlock()
		return
	}
	c.interp.Send(statekit.Event{Type: eventFadeInDone})
	c.display.Phase = c.phase()
	snap := c.display
	c.mu.Unlock()
	c.emit(snap)
}

// refreshLocked re-reads live bounds while settled. Returns the new
// snapshot and whether it changed. A vanished or zero-size target drops
// the step back to fading-out with no successor.
func (c *Choreographer) refreshLocked() (DisplayState, bool) {
	if c.phase() != PhaseSettled {
		return c.display, false
	}

	st := c.currentStep
	switch st.Kind {
	case step.KindSpotlight:
		el := c.registry.Get(st.Target)
		if el == nil || el.Bounds().Empty() {
			c.supersedeLocked()
			c.pending = nil
			c.interp.Send(statekit.Event{Type: eventLost})
			c.display.Phase = c.phase()
			c.startFadeOut()
			return c.display, true
		}
		rect := el.Bounds()
		pl := placement.Place(rect, st.PreferredSide, c.tuning.TooltipSize,
			c.viewport, c.tuning.Gap, c.tuning.Padding)
		if c.display.TargetRect != nil && rect == *c.display.TargetRect &&
			c.display.Placement != nil && pl == *c.display.Placement {
			return c.display, false
		}
		c.display.TargetRect = &rect
		c.display.Placement = &pl
		return c.display, true
	case step.KindPopup:
		pl := placement.Center(c.tuning.TooltipSize, c.viewport, c.tuning.Padding)
		if c.display.Placement != nil && pl == *c.display.Placement {
			return c.display, false
		}
		c.display.Placement = &pl
		return c.display, true
	}
	return c.display, false
}

func (c *Choreographer) emit(snap DisplayState) {
	c.mu.Lock()
	fn := c.publish
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
