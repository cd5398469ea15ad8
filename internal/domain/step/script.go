package step

import (
	"errors"
	"fmt"
)

// ErrUnknownStep is returned when a step ID does not exist in the script.
var ErrUnknownStep = errors.New("unknown step id")

// Script is the immutable, ordered step list the engine walks through.
type Script struct {
	steps []Step
	index map[string]int
}

// NewScript validates the steps and builds the lookup index.
// Step IDs must be unique across the script.
func NewScript(steps []Step) (*Script, error) {
	if len(steps) == 0 {
		return nil, errors.New("script has no steps")
	}

	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate step id %q", s.ID)
		}
		index[s.ID] = i
	}

	copied := make([]Step, len(steps))
	copy(copied, steps)

	return &Script{steps: copied, index: index}, nil
}

// Len returns the number of steps in the script.
func (sc *Script) Len() int {
	return len(sc.steps)
}

// At returns the step at the given position.
func (sc *Script) At(i int) Step {
	return sc.steps[i]
}

// First returns the opening step.
func (sc *Script) First() Step {
	return sc.steps[0]
}

// IndexOf returns the position of a step by ID.
func (sc *Script) IndexOf(id string) (int, error) {
	i, ok := sc.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStep, id)
	}
	return i, nil
}

// Get returns the step with the given ID.
func (sc *Script) Get(id string) (Step, error) {
	i, err := sc.IndexOf(id)
	if err != nil {
		return Step{}, err
	}
	return sc.steps[i], nil
}

// IsLast reports whether the given position is the final step.
func (sc *Script) IsLast(i int) bool {
	return i == len(sc.steps)-1
}

// TotalSteps returns the number of counted steps, i.e. the "n" in
// "Step i of n". Waiting and popup steps are excluded.
func (sc *Script) TotalSteps() int {
	n := 0
	for _, s := range sc.steps {
		if s.Counted() {
			n++
		}
	}
	return n
}

// StepNumber returns the 1-based progress number of a counted step,
// or 0 for uncounted kinds and unknown IDs.
func (sc *Script) StepNumber(id string) int {
	i, ok := sc.index[id]
	if !ok || !sc.steps[i].Counted() {
		return 0
	}
	n := 0
	for j := 0; j <= i; j++ {
		if sc.steps[j].Counted() {
			n++
		}
	}
	return n
}
