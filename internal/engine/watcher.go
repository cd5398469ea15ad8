package engine

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/guidepost-io/guidepost/internal/ports"
)

// Condition is the observable change a rule waits for.
type Condition string

const (
	// CondRises fires on the false→true edge of a boolean signal.
	CondRises Condition = "rises"
	// CondFalls fires on the true→false edge of a boolean signal.
	CondFalls Condition = "falls"
	// CondEquals fires when the signal's value becomes the rule value.
	CondEquals Condition = "equals"
	// CondEmpty fires when the signal is empty (nil, zero, empty list),
	// checked once on activation and then on every update. It is the
	// one level-checked condition: it exists to skip steps that have
	// nothing to show.
	CondEmpty Condition = "empty"
	// CondAppears fires when the named element registers.
	CondAppears Condition = "appears"
	// CondVanishes fires when the named element unregisters.
	CondVanishes Condition = "vanishes"
)

// RuleAction is what a fired rule does to the session.
type RuleAction string

const (
	// ActionNext advances to the following step.
	ActionNext RuleAction = "next"
	// ActionJump jumps to JumpTo.
	ActionJump RuleAction = "jump"
	// ActionBranch jumps to JumpTo when CheckElement is present at fire
	// time, otherwise to JumpToElse. Used for success/failure forks.
	ActionBranch RuleAction = "branch"
)

// Rule connects one step to one external condition and the transition
// it triggers. Rules are installed only while their step is current and
// fire at most once per activation.
type Rule struct {
	StepID string `yaml:"step"`

	Condition Condition `yaml:"when"`
	Signal    string    `yaml:"signal,omitempty"`
	Element   string    `yaml:"element,omitempty"`
	Value     any       `yaml:"value,omitempty"`

	// SettleDelay postpones the action so dependent UI (a scrolling
	// log, a growing list) finishes shifting first. Zero means act
	// immediately.
	SettleDelay time.Duration `yaml:"settle_delay,omitempty"`

	Action     RuleAction `yaml:"action"`
	JumpTo     string     `yaml:"jump_to,omitempty"`
	JumpToElse string     `yaml:"jump_to_else,omitempty"`

	// CheckElement is the presence probe for ActionBranch.
	CheckElement string `yaml:"check_element,omitempty"`
}

// Validate checks a rule for structural problems.
func (r Rule) Validate() error {
	if r.StepID == "" {
		return fmt.Errorf("rule is missing a step id")
	}
	switch r.Condition {
	case CondRises, CondFalls, CondEquals, CondEmpty:
		if r.Signal == "" {
			return fmt.Errorf("rule for step %q: condition %q requires a signal", r.StepID, r.Condition)
		}
	case CondAppears, CondVanishes:
		if r.Element == "" {
			return fmt.Errorf("rule for step %q: condition %q requires an element", r.StepID, r.Condition)
		}
	default:
		return fmt.Errorf("rule for step %q: unknown condition %q", r.StepID, r.Condition)
	}
	switch r.Action {
	case ActionNext:
	case ActionJump:
		if r.JumpTo == "" {
			return fmt.Errorf("rule for step %q: jump requires jump_to", r.StepID)
		}
	case ActionBranch:
		if r.JumpTo == "" || r.JumpToElse == "" || r.CheckElement == "" {
			return fmt.Errorf("rule for step %q: branch requires check_element, jump_to and jump_to_else", r.StepID)
		}
	default:
		return fmt.Errorf("rule for step %q: unknown action %q", r.StepID, r.Action)
	}
	return nil
}

// armedRule is one installed rule plus its edge-detection state.
type armedRule struct {
	rule  Rule
	prev  bool
	fired bool
}

// Watchers installs the rules of the current step as live subscriptions
// and tears them down on step change, so nothing can fire after its
// step has been left.
type Watchers struct {
	mu       sync.Mutex
	rules    []Rule
	signals  ports.Signals
	registry ports.Registry
	log      ports.Logger

	onNext func()
	onJump func(stepID string)

	// Active step state. epoch invalidates settle timers across
	// deactivations.
	active []*armedRule
	unsubs []func()
	timers []*time.Timer
	epoch  int
}

// NewWatchers creates the watcher table. Rules must already be
// validated.
func NewWatchers(rules []Rule, signals ports.Signals, registry ports.Registry, log ports.Logger) *Watchers {
	return &Watchers{
		rules:    rules,
		signals:  signals,
		registry: registry,
		log:      log,
	}
}

// SetActions wires the session transitions the rules invoke.
func (w *Watchers) SetActions(onNext func(), onJump func(stepID string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onNext = onNext
	w.onJump = onJump
}

// Activate installs the rules for the step that just became current.
// Any previously active rules are deactivated first.
func (w *Watchers) Activate(stepID string) {
	w.mu.Lock()
	w.deactivateLocked()

	var fireNow []*armedRule
	for _, r := range w.rules {
		if r.StepID != stepID {
			continue
		}
		a := &armedRule{rule: r}
		w.active = append(w.active, a)

		switch r.Condition {
		case CondAppears:
			a.prev = w.elementPresent(r.Element)
			w.subscribeElement(a)
		case CondVanishes:
			a.prev = !w.elementPresent(r.Element)
			w.subscribeElement(a)
		case CondEmpty:
			if v, ok := w.signals.Get(r.Signal); ok && isEmpty(v) {
				fireNow = append(fireNow, a)
			} else {
				w.subscribeSignal(a)
			}
		default:
			if v, ok := w.signals.Get(r.Signal); ok {
				a.prev = w.satisfied(a.rule, v)
			} else if r.Condition == CondFalls {
				// A fall needs a preceding rise; a signal that was
				// never set counts as already low.
				a.prev = true
			}
			w.subscribeSignal(a)
		}
	}
	epoch := w.epoch
	w.mu.Unlock()

	// Rules satisfied at activation fire off the caller's goroutine:
	// Activate runs inside session transition notifications, and the
	// fired action re-enters the session.
	if len(fireNow) > 0 {
		go func() {
			for _, a := range fireNow {
				w.fire(a, epoch)
			}
		}()
	}
}

// Deactivate tears down all installed subscriptions and pending settle
// timers.
func (w *Watchers) Deactivate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deactivateLocked()
}

func (w *Watchers) deactivateLocked() {
	w.epoch++
	for _, unsub := range w.unsubs {
		unsub()
	}
	for _, t := range w.timers {
		t.Stop()
	}
	w.unsubs = nil
	w.timers = nil
	w.active = nil
}

func (w *Watchers) subscribeSignal(a *armedRule) {
	epoch := w.epoch
	unsub := w.signals.Subscribe(a.rule.Signal, func(v interface{}) {
		w.observe(a, v, epoch)
	})
	w.unsubs = append(w.unsubs, unsub)
}

func (w *Watchers) subscribeElement(a *armedRule) {
	epoch := w.epoch
	unsub := w.registry.OnChange(func(name string) {
		if name != a.rule.Element {
			return
		}
		w.observe(a, nil, epoch)
	})
	w.unsubs = append(w.unsubs, unsub)
}

// observe evaluates one update against a rule's edge state. Only a
// false→true transition of the satisfaction predicate fires; observing
// an already satisfied condition again does nothing.
func (w *Watchers) observe(a *armedRule, v interface{}, epoch int) {
	w.mu.Lock()
	if epoch != w.epoch || a.fired {
		w.mu.Unlock()
		return
	}

	var now bool
	switch a.rule.Condition {
	case CondAppears:
		now = w.elementPresent(a.rule.Element)
	case CondVanishes:
		now = !w.elementPresent(a.rule.Element)
	default:
		now = w.satisfied(a.rule, v)
	}

	rose := now && !a.prev
	a.prev = now
	if !rose {
		w.mu.Unlock()
		return
	}
	a.fired = true
	w.mu.Unlock()

	w.fire(a, epoch)
}

// fire schedules the rule's action, honoring its settle delay.
func (w *Watchers) fire(a *armedRule, epoch int) {
	act := func() { w.act(a.rule, epoch) }
	if a.rule.SettleDelay <= 0 {
		act()
		return
	}

	w.mu.Lock()
	if epoch != w.epoch {
		w.mu.Unlock()
		return
	}
	t := time.AfterFunc(a.rule.SettleDelay, act)
	w.timers = append(w.timers, t)
	w.mu.Unlock()
}

// act invokes the session transition for a fired rule.
func (w *Watchers) act(r Rule, epoch int) {
	w.mu.Lock()
	if epoch != w.epoch {
		w.mu.Unlock()
		return
	}
	onNext, onJump := w.onNext, w.onJump
	var target string
	switch r.Action {
	case ActionJump:
		target = r.JumpTo
	case ActionBranch:
		if w.elementPresent(r.CheckElement) {
			target = r.JumpTo
		} else {
			target = r.JumpToElse
		}
	}
	w.mu.Unlock()

	switch r.Action {
	case ActionNext:
		if onNext != nil {
			onNext()
		}
	case ActionJump, ActionBranch:
		if onJump != nil {
			onJump(target)
		}
	}
}

func (w *Watchers) elementPresent(name string) bool {
	el := w.registry.Get(name)
	return el != nil && !el.Bounds().Empty()
}

// satisfied evaluates a signal condition against a value.
func (w *Watchers) satisfied(r Rule, v interface{}) bool {
	switch r.Condition {
	case CondRises:
		return truthy(v)
	case CondFalls:
		return !truthy(v)
	case CondEquals:
		return fmt.Sprint(v) == fmt.Sprint(r.Value)
	case CondEmpty:
		return isEmpty(v)
	}
	return false
}

// truthy interprets a signal value as a boolean; non-boolean values are
// never truthy, so an undefined or mistyped signal simply never fires.
func truthy(v interface{}) bool {
	b, ok := v.(bool)
	return ok && b
}

// isEmpty reports whether a signal value represents "nothing to show".
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Bool:
		return !rv.Bool()
	}
	return false
}
