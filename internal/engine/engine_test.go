package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidepost-io/guidepost/internal/adapters/signals"
	"github.com/guidepost-io/guidepost/internal/domain/placement"
	"github.com/guidepost-io/guidepost/internal/domain/session"
	"github.com/guidepost-io/guidepost/internal/domain/step"
	"github.com/guidepost-io/guidepost/internal/registry"
)

// memSettings is an in-memory ports.Settings for tests.
type memSettings struct {
	mu        sync.Mutex
	completed bool
	skipped   bool
}

func (m *memSettings) Completed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed
}

func (m *memSettings) Skipped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped
}

func (m *memSettings) MarkCompleted() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = true
	return nil
}

func (m *memSettings) MarkSkipped() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped = true
	return nil
}

func (m *memSettings) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = false
	m.skipped = false
	return nil
}

type engineFixture struct {
	eng      *Engine
	reg      *registry.Registry
	bus      *signals.Bus
	settings *memSettings
}

// tourScript is the reference four-step walk: an auto spotlight, a
// manual spotlight, a waiting step released by a signal, and a closing
// popup.
func tourScript(t *testing.T) *step.Script {
	t.Helper()
	sc, err := step.NewScript([]step.Step{
		{ID: "a", Kind: step.KindSpotlight, Target: "panel-a", Advance: step.AdvanceAuto},
		{ID: "b", Kind: step.KindSpotlight, Target: "panel-b", Advance: step.AdvanceManual},
		{ID: "c", Kind: step.KindWaiting, Message: "working"},
		{ID: "d", Kind: step.KindPopup, Message: "all done"},
	})
	require.NoError(t, err)
	return sc
}

func tourRules() []Rule {
	return []Rule{
		{StepID: "a", Condition: CondRises, Signal: "a.done", Action: ActionNext},
		{StepID: "c", Condition: CondFalls, Signal: "build.running", Action: ActionNext},
	}
}

func newEngineFixture(t *testing.T, opts Options) *engineFixture {
	t.Helper()
	f := &engineFixture{
		reg:      registry.New(),
		bus:      signals.NewBus(),
		settings: &memSettings{},
	}
	if opts.Script == nil {
		opts.Script = tourScript(t)
		opts.Rules = tourRules()
	}
	opts.Registry = f.reg
	opts.Signals = f.bus
	if opts.Settings == nil {
		opts.Settings = f.settings
	}
	if opts.Tuning == (Tuning{}) {
		opts.Tuning = fastTuning()
	}

	eng, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	f.eng = eng

	f.eng.SetViewport(placement.Size{Width: 120, Height: 40})
	f.reg.Register("panel-a", &stubElement{rect: placement.Rect{Top: 2, Left: 2, Width: 20, Height: 3}})
	f.reg.Register("panel-b", &stubElement{rect: placement.Rect{Top: 20, Left: 40, Width: 20, Height: 3}})
	return f
}

func (f *engineFixture) waitStep(t *testing.T, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		d := f.eng.Display()
		return d.StepID == id && d.Phase == PhaseSettled
	}, 2*time.Second, 2*time.Millisecond, "waiting for step %q, display %+v", id, f.eng.Display())
}

func TestEngine_New_ValidatesRules(t *testing.T) {
	reg := registry.New()
	bus := signals.NewBus()
	sc := tourScript(t)

	_, err := New(Options{
		Script:   sc,
		Rules:    []Rule{{StepID: "a", Condition: "blinks", Signal: "x", Action: ActionNext}},
		Registry: reg,
		Signals:  bus,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown condition")

	_, err = New(Options{
		Script:   sc,
		Rules:    []Rule{{StepID: "ghost", Condition: CondRises, Signal: "x", Action: ActionNext}},
		Registry: reg,
		Signals:  bus,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, step.ErrUnknownStep)
}

func TestEngine_StartHonorsSeenFlags(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.settings.completed = true

	f.eng.Start()

	assert.Equal(t, session.StateIdle, f.eng.State())
}

func TestEngine_ForceOverridesSeenFlags(t *testing.T) {
	f := newEngineFixture(t, Options{Force: true})
	f.settings.skipped = true

	f.eng.Start()

	assert.Equal(t, session.StateRunning, f.eng.State())
}

func TestEngine_FullTour(t *testing.T) {
	f := newEngineFixture(t, Options{})

	f.eng.Start()
	f.waitStep(t, "a")
	d := f.eng.Display()
	assert.True(t, d.Active)
	assert.Equal(t, 1, d.StepNumber)
	assert.Equal(t, 2, d.TotalSteps)

	// Manual advance is ignored on an auto step.
	f.eng.RequestAdvance(nil)
	assert.Equal(t, "a", f.eng.Display().StepID)

	// The rise of a.done releases step a.
	f.bus.Set("a.done", true)
	f.waitStep(t, "b")

	// A failing verify gate blocks the manual advance.
	f.eng.RequestAdvance(func() bool { return false })
	assert.Equal(t, "b", f.eng.Display().StepID)

	f.eng.RequestAdvance(func() bool { return true })
	f.waitStep(t, "c")
	d = f.eng.Display()
	assert.Equal(t, step.KindWaiting, d.Kind)
	assert.Zero(t, d.StepNumber)

	// The waiting step releases on the fall of build.running, after the
	// default settle delay.
	f.bus.Set("build.running", true)
	f.bus.Set("build.running", false)
	f.waitStep(t, "d")

	// Advancing past the last step completes the tour.
	f.eng.RequestAdvance(nil)
	require.Eventually(t, func() bool {
		return f.eng.State() == session.StateComplete
	}, 2*time.Second, 2*time.Millisecond)
	assert.True(t, f.settings.Completed())
	require.Eventually(t, func() bool {
		return !f.eng.Display().Active
	}, 2*time.Second, 2*time.Millisecond)
}

func TestEngine_EmptyRuleSkipsFirstStep(t *testing.T) {
	// The fresh-install shape: the opening step's empty rule is already
	// satisfied when the step activates, so starting the tour must move
	// straight past it instead of wedging inside Start.
	sc, err := step.NewScript([]step.Step{
		{ID: "projects", Kind: step.KindSpotlight, Target: "panel-a", Advance: step.AdvanceAuto},
		{ID: "after", Kind: step.KindPopup, Message: "moving on"},
	})
	require.NoError(t, err)
	f := newEngineFixture(t, Options{
		Script: sc,
		Rules: []Rule{
			{StepID: "projects", Condition: CondEmpty, Signal: "projects.count", Action: ActionNext},
		},
	})
	f.bus.Set("projects.count", 0)

	f.eng.Start()

	f.waitStep(t, "after")
	assert.Equal(t, session.StateRunning, f.eng.State())
}

func TestEngine_SkipPersistsAndDeactivates(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.eng.Start()
	f.waitStep(t, "a")

	f.eng.RequestSkip()

	assert.Equal(t, session.StateSkipped, f.eng.State())
	assert.True(t, f.settings.Skipped())
	assert.False(t, f.settings.Completed())

	// Polled snapshots agree with broadcast ones: the tour is inactive.
	assert.False(t, f.eng.Display().Active)

	// Watcher signals must not resurrect a skipped tour.
	f.bus.Set("a.done", true)
	assert.Equal(t, session.StateSkipped, f.eng.State())
}

func TestEngine_AdvanceAfterFinishIsNoOp(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.eng.Start()
	f.waitStep(t, "a")
	f.eng.RequestComplete()
	require.Equal(t, session.StateComplete, f.eng.State())

	f.eng.AdvanceNext()
	f.eng.JumpTo("b")
	f.eng.RequestAdvance(nil)

	assert.Equal(t, session.StateComplete, f.eng.State())
}

func TestEngine_ParkedStepWaitsForTarget(t *testing.T) {
	sc, err := step.NewScript([]step.Step{
		{ID: "late", Kind: step.KindSpotlight, Target: "late-panel", Advance: step.AdvanceManual},
	})
	require.NoError(t, err)
	f := newEngineFixture(t, Options{Script: sc})

	f.eng.Start()

	// Resolution times out; the step parks instead of being skipped.
	require.Eventually(t, func() bool {
		return f.eng.Display().Phase == PhaseParked
	}, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, session.StateRunning, f.eng.State())
	assert.False(t, f.eng.Display().Visible)

	// The target finally mounts and the step recovers.
	f.reg.Register("late-panel", laidOut())
	f.waitStep(t, "late")
	assert.True(t, f.eng.Display().Visible)
}

func TestEngine_SubscribersSeeSnapshots(t *testing.T) {
	f := newEngineFixture(t, Options{})

	log := &snapshotLog{}
	f.eng.Subscribe(log.publish)

	f.eng.Start()
	f.waitStep(t, "a")
	f.eng.RequestSkip()

	require.Eventually(t, func() bool {
		snaps := log.all()
		return len(snaps) > 0 && !snaps[len(snaps)-1].Active
	}, 2*time.Second, 2*time.Millisecond)

	sawActive := false
	for _, s := range log.all() {
		if s.Active && s.StepID == "a" {
			sawActive = true
		}
	}
	assert.True(t, sawActive)
}

func TestEngine_StartTwiceKeepsPosition(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.eng.Start()
	f.waitStep(t, "a")
	f.bus.Set("a.done", true)
	f.waitStep(t, "b")

	f.eng.Start()

	assert.Equal(t, "b", f.eng.Display().StepID)
}

func TestEngine_RunID(t *testing.T) {
	f := newEngineFixture(t, Options{})
	other := newEngineFixture(t, Options{})

	assert.NotEmpty(t, f.eng.RunID())
	assert.NotEqual(t, f.eng.RunID(), other.eng.RunID())
}
