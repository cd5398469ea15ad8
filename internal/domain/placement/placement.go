// Package placement computes collision-aware tooltip positions. It is a
// pure geometry package: callers re-invoke Place on every layout change
// while a step is displayed.
package placement

import (
	"github.com/guidepost-io/guidepost/internal/domain/step"
)

// Rect is an axis-aligned box in viewport coordinates.
type Rect struct {
	Top    int
	Left   int
	Width  int
	Height int
}

// Empty reports whether the rect has no area. Elements that are mounted
// but not yet laid out report empty bounds.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Bottom returns the y coordinate just past the rect.
func (r Rect) Bottom() int {
	return r.Top + r.Height
}

// Right returns the x coordinate just past the rect.
func (r Rect) Right() int {
	return r.Left + r.Width
}

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// Placement is a resolved tooltip position. Side records the side that
// was actually used after collision avoidance, which may differ from the
// preferred side.
type Placement struct {
	Top  int
	Left int
	Side step.Side
}

// Place computes a viewport-clamped tooltip position next to target.
//
// The preferred side is tried first; if the tooltip would overflow the
// viewport edge on that side the opposite side is tried instead, once.
// Whatever side wins, the final coordinates are clamped into
// [padding, viewport - tooltip - padding] on both axes, so the tooltip
// stays on screen even for targets touching or past the viewport edge.
func Place(target Rect, preferred step.Side, tooltip Size, viewport Size, gap, padding int) Placement {
	side := preferred
	if !side.Valid() {
		side = step.SideBottom
	}

	if overflows(target, side, tooltip, viewport, gap, padding) {
		flipped := side.Opposite()
		if !overflows(target, flipped, tooltip, viewport, gap, padding) {
			side = flipped
		}
	}

	top, left := naive(target, side, tooltip, gap)
	top = clamp(top, padding, viewport.Height-tooltip.Height-padding)
	left = clamp(left, padding, viewport.Width-tooltip.Width-padding)

	return Placement{Top: top, Left: left, Side: side}
}

// Center positions the tooltip in the middle of the viewport, used for
// popup steps that have no target.
func Center(tooltip Size, viewport Size, padding int) Placement {
	top := clamp((viewport.Height-tooltip.Height)/2, padding, viewport.Height-tooltip.Height-padding)
	left := clamp((viewport.Width-tooltip.Width)/2, padding, viewport.Width-tooltip.Width-padding)
	return Placement{Top: top, Left: left, Side: step.SideBottom}
}

// naive returns the uncorrected position for a side: offset by gap along
// the main axis, centered on the target along the cross axis.
func naive(target Rect, side step.Side, tooltip Size, gap int) (top, left int) {
	switch side {
	case step.SideTop:
		top = target.Top - gap - tooltip.Height
		left = target.Left + (target.Width-tooltip.Width)/2
	case step.SideBottom:
		top = target.Bottom() + gap
		left = target.Left + (target.Width-tooltip.Width)/2
	case step.SideLeft:
		top = target.Top + (target.Height-tooltip.Height)/2
		left = target.Left - gap - tooltip.Width
	case step.SideRight:
		top = target.Top + (target.Height-tooltip.Height)/2
		left = target.Right() + gap
	}
	return top, left
}

// overflows reports whether the naive position for a side crosses the
// padded viewport edge along that side's main axis.
func overflows(target Rect, side step.Side, tooltip Size, viewport Size, gap, padding int) bool {
	top, left := naive(target, side, tooltip, gap)
	switch side {
	case step.SideTop:
		return top < padding
	case step.SideBottom:
		return top+tooltip.Height > viewport.Height-padding
	case step.SideLeft:
		return left < padding
	case step.SideRight:
		return left+tooltip.Width > viewport.Width-padding
	}
	return false
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		// Tooltip larger than the padded viewport; pin to the near edge.
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
