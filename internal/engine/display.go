package engine

import (
	"github.com/guidepost-io/guidepost/internal/domain/placement"
	"github.com/guidepost-io/guidepost/internal/domain/step"
)

// Phase is the choreographer's position in the crossfade sequence.
type Phase string

const (
	// PhaseHidden means no step is displayed.
	PhaseHidden Phase = "hidden"
	// PhaseFadingOut means the old step is animating to zero opacity.
	// Content and position updates are frozen.
	PhaseFadingOut Phase = "fading-out"
	// PhaseSwapping is the instant the displayed content is replaced.
	PhaseSwapping Phase = "swapping"
	// PhaseResolving means the new step's target is being located.
	PhaseResolving Phase = "resolving"
	// PhaseParked means resolution timed out; the step's content is
	// swapped in but nothing is visible until the target appears or the
	// user skips.
	PhaseParked Phase = "parked"
	// PhaseFadingIn means the new step is animating to full opacity.
	PhaseFadingIn Phase = "fading-in"
	// PhaseSettled means the step is fully shown and live position
	// updates are enabled.
	PhaseSettled Phase = "settled"
)

// DisplayState is everything the presentation layer needs to render one
// frame of the tour. All fields describe a single step: the content and
// the position are swapped together under the choreographer lock, so no
// observable frame mixes two steps.
type DisplayState struct {
	// Active is false once the tour completed, was skipped, or never ran.
	Active bool

	Phase Phase

	// Step content. Empty when Phase is hidden.
	StepID           string
	Kind             step.Kind
	Message          string
	SuggestedValue   string
	SuggestedMessage string

	// Progress numbering; zero for uncounted kinds.
	StepNumber int
	TotalSteps int

	// TargetRect is the spotlighted element's bounds, nil when the step
	// has no target or it is not yet resolved.
	TargetRect *placement.Rect

	// Placement is the tooltip position, nil while unresolved and for
	// waiting steps.
	Placement *placement.Placement

	// Visible is false during fade-out completion, while resolving, and
	// while parked.
	Visible bool
}
