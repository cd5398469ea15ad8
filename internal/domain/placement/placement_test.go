package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/guidepost-io/guidepost/internal/domain/step"
)

var (
	viewport = Size{Width: 800, Height: 600}
	tooltip  = Size{Width: 100, Height: 40}
)

func TestPlace_PreferredSideHolds(t *testing.T) {
	target := Rect{Top: 300, Left: 400, Width: 60, Height: 20}

	tests := []struct {
		side     step.Side
		wantTop  int
		wantLeft int
	}{
		// Centered on the cross axis, offset by gap on the main axis.
		{step.SideTop, 300 - 8 - 40, 400 + (60-100)/2},
		{step.SideBottom, 320 + 8, 400 + (60-100)/2},
		{step.SideLeft, 300 + (20-40)/2, 400 - 8 - 100},
		{step.SideRight, 300 + (20-40)/2, 460 + 8},
	}

	for _, tt := range tests {
		t.Run(string(tt.side), func(t *testing.T) {
			p := Place(target, tt.side, tooltip, viewport, 8, 16)
			assert.Equal(t, tt.side, p.Side)
			assert.Equal(t, tt.wantTop, p.Top)
			assert.Equal(t, tt.wantLeft, p.Left)
		})
	}
}

func TestPlace_FlipsLeftToRight(t *testing.T) {
	// The reference scenario: a target hugging the top-left corner in
	// an 800x600 viewport. Left placement would go negative, so the
	// tooltip flips to the right and stays past the padding.
	target := Rect{Top: 10, Left: 10, Width: 40, Height: 20}

	p := Place(target, step.SideLeft, tooltip, viewport, 8, 16)

	assert.Equal(t, step.SideRight, p.Side)
	assert.GreaterOrEqual(t, p.Left, 16)
	assert.Equal(t, 10+40+8, p.Left)
}

func TestPlace_FlipsBottomToTop(t *testing.T) {
	target := Rect{Top: 580, Left: 400, Width: 60, Height: 20}

	p := Place(target, step.SideBottom, tooltip, viewport, 8, 16)

	assert.Equal(t, step.SideTop, p.Side)
}

func TestPlace_NoSecondFlip(t *testing.T) {
	// A target wider than the padded viewport overflows on both sides.
	// The preferred side is kept and only clamping applies.
	wide := Rect{Top: 300, Left: -50, Width: 900, Height: 20}

	p := Place(wide, step.SideLeft, tooltip, viewport, 8, 16)

	assert.Equal(t, step.SideLeft, p.Side)
	assert.GreaterOrEqual(t, p.Left, 16)
	assert.LessOrEqual(t, p.Left, viewport.Width-tooltip.Width-16)
}

func TestPlace_ClampsNearEdges(t *testing.T) {
	// A target in the top-left corner with top placement: the naive
	// position is far off screen, the result must still be inside the
	// padded viewport.
	corner := Rect{Top: 0, Left: 0, Width: 10, Height: 10}

	p := Place(corner, step.SideTop, tooltip, viewport, 8, 16)

	assert.GreaterOrEqual(t, p.Top, 16)
	assert.GreaterOrEqual(t, p.Left, 16)
}

func TestPlace_InvalidSideDefaultsToBottom(t *testing.T) {
	target := Rect{Top: 100, Left: 100, Width: 40, Height: 20}

	p := Place(target, "", tooltip, viewport, 8, 16)

	assert.Equal(t, step.SideBottom, p.Side)
}

func TestCenter(t *testing.T) {
	p := Center(tooltip, viewport, 16)

	assert.Equal(t, (600-40)/2, p.Top)
	assert.Equal(t, (800-100)/2, p.Left)
}

func TestRect_Empty(t *testing.T) {
	assert.True(t, Rect{}.Empty())
	assert.True(t, Rect{Width: 10}.Empty())
	assert.True(t, Rect{Width: 10, Height: -1}.Empty())
	assert.False(t, Rect{Width: 1, Height: 1}.Empty())
}

// TestPlace_AlwaysOnScreen checks the clamping bound for arbitrary
// targets, including rectangles that touch or exceed the viewport
// edges.
func TestPlace_AlwaysOnScreen(t *testing.T) {
	sides := []step.Side{step.SideTop, step.SideBottom, step.SideLeft, step.SideRight}

	rapid.Check(t, func(t *rapid.T) {
		target := Rect{
			Top:    rapid.IntRange(-200, 800).Draw(t, "top"),
			Left:   rapid.IntRange(-200, 1000).Draw(t, "left"),
			Width:  rapid.IntRange(0, 1200).Draw(t, "width"),
			Height: rapid.IntRange(0, 900).Draw(t, "height"),
		}
		side := rapid.SampledFrom(sides).Draw(t, "side")
		gap := rapid.IntRange(0, 24).Draw(t, "gap")
		padding := rapid.IntRange(0, 40).Draw(t, "padding")

		p := Place(target, side, tooltip, viewport, gap, padding)

		if padding <= viewport.Height-tooltip.Height-padding {
			if p.Top < padding || p.Top > viewport.Height-tooltip.Height-padding {
				t.Fatalf("top %d outside [%d, %d]", p.Top, padding, viewport.Height-tooltip.Height-padding)
			}
		}
		if padding <= viewport.Width-tooltip.Width-padding {
			if p.Left < padding || p.Left > viewport.Width-tooltip.Width-padding {
				t.Fatalf("left %d outside [%d, %d]", p.Left, padding, viewport.Width-tooltip.Width-padding)
			}
		}
	})
}
