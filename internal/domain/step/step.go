// Package step defines the externally authored tour script: the ordered
// list of steps the engine sequences, and the per-step metadata the
// presentation layer renders.
package step

import (
	"errors"
	"fmt"
)

// Kind classifies how a step is displayed.
type Kind string

const (
	// KindSpotlight highlights a named UI element with an attached tooltip.
	KindSpotlight Kind = "spotlight"
	// KindWaiting shows a blocking spinner message with no target.
	KindWaiting Kind = "waiting"
	// KindPopup shows a centered card with no target (welcome/complete).
	KindPopup Kind = "popup"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	switch k {
	case KindSpotlight, KindWaiting, KindPopup:
		return true
	}
	return false
}

// AdvanceMode determines what moves the tour past a step.
type AdvanceMode string

const (
	// AdvanceManual requires a user acknowledgment.
	AdvanceManual AdvanceMode = "manual"
	// AdvanceAuto advances when a watcher rule keyed by the step ID fires.
	AdvanceAuto AdvanceMode = "auto"
)

// Valid reports whether the advance mode is one of the known values.
func (a AdvanceMode) Valid() bool {
	return a == AdvanceManual || a == AdvanceAuto
}

// Side is the preferred tooltip side relative to the target element.
// It is advisory only; collision avoidance may override it.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Valid reports whether the side is one of the known values.
func (s Side) Valid() bool {
	switch s {
	case SideTop, SideBottom, SideLeft, SideRight:
		return true
	}
	return false
}

// Horizontal reports whether the side places the tooltip along the x axis.
func (s Side) Horizontal() bool {
	return s == SideLeft || s == SideRight
}

// Opposite returns the side across the target.
func (s Side) Opposite() Side {
	switch s {
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	}
	return s
}

// Step is a single tour entry. Steps are authored outside the engine and
// never mutated at runtime.
type Step struct {
	ID               string      `yaml:"id"`
	Kind             Kind        `yaml:"kind"`
	Target           string      `yaml:"target,omitempty"`
	Message          string      `yaml:"message,omitempty"`
	SuggestedValue   string      `yaml:"suggested_value,omitempty"`
	SuggestedMessage string      `yaml:"suggested_message,omitempty"`
	PreferredSide    Side        `yaml:"preferred_side,omitempty"`
	Advance          AdvanceMode `yaml:"advance,omitempty"`
}

// Counted reports whether the step participates in "Step i of n" progress.
// Waiting and popup steps are interstitial and do not count.
func (s Step) Counted() bool {
	return s.Kind == KindSpotlight
}

// Validate checks a single step for structural problems.
func (s Step) Validate() error {
	if s.ID == "" {
		return errors.New("step id is required")
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("step %q: unknown kind %q", s.ID, s.Kind)
	}
	if s.Kind == KindSpotlight && s.Target == "" {
		return fmt.Errorf("step %q: spotlight steps require a target", s.ID)
	}
	if s.PreferredSide != "" && !s.PreferredSide.Valid() {
		return fmt.Errorf("step %q: unknown preferred side %q", s.ID, s.PreferredSide)
	}
	if s.Advance != "" && !s.Advance.Valid() {
		return fmt.Errorf("step %q: unknown advance mode %q", s.ID, s.Advance)
	}
	return nil
}
