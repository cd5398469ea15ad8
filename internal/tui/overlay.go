package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/guidepost-io/guidepost/internal/domain/placement"
)

// canvas is a plain-text screen buffer the demo host composes its
// layout into. Keeping the base layer unstyled makes splicing styled
// overlays at column positions exact.
type canvas struct {
	width  int
	height int
	lines  [][]rune
}

func newCanvas(width, height int) *canvas {
	lines := make([][]rune, height)
	for i := range lines {
		lines[i] = []rune(strings.Repeat(" ", width))
	}
	return &canvas{width: width, height: height, lines: lines}
}

// text draws a string at a position, clipped to the canvas.
func (c *canvas) text(top, left int, s string) {
	if top < 0 || top >= c.height {
		return
	}
	for i, r := range []rune(s) {
		x := left + i
		if x < 0 || x >= c.width {
			continue
		}
		c.lines[top][x] = r
	}
}

// box draws a rounded border around a rect.
func (c *canvas) box(r placement.Rect) {
	right := r.Left + r.Width - 1
	bottom := r.Top + r.Height - 1
	c.text(r.Top, r.Left, "╭"+strings.Repeat("─", maxInt(0, r.Width-2))+"╮")
	for y := r.Top + 1; y < bottom; y++ {
		c.text(y, r.Left, "│")
		c.text(y, right, "│")
	}
	c.text(bottom, r.Left, "╰"+strings.Repeat("─", maxInt(0, r.Width-2))+"╯")
}

// frame draws a heavy border one cell outside a rect, the spotlight
// cutout around a highlighted target.
func (c *canvas) frame(r placement.Rect) {
	outer := placement.Rect{Top: r.Top - 1, Left: r.Left - 1, Width: r.Width + 2, Height: r.Height + 2}
	right := outer.Left + outer.Width - 1
	bottom := outer.Top + outer.Height - 1
	c.text(outer.Top, outer.Left, "┏"+strings.Repeat("━", maxInt(0, outer.Width-2))+"┓")
	for y := outer.Top + 1; y < bottom; y++ {
		c.text(y, outer.Left, "┃")
		c.text(y, right, "┃")
	}
	c.text(bottom, outer.Left, "┗"+strings.Repeat("━", maxInt(0, outer.Width-2))+"┛")
}

// render returns the canvas as screen lines.
func (c *canvas) render() []string {
	out := make([]string, c.height)
	for i, l := range c.lines {
		out[i] = string(l)
	}
	return out
}

// spliceCard overlays a styled, possibly multi-line card onto plain
// base lines at the given position. Base lines must be unstyled; the
// card may carry ANSI styling, its width is measured ANSI-aware.
func spliceCard(base []string, card string, top, left int) []string {
	cardLines := strings.Split(card, "\n")
	for i, cl := range cardLines {
		y := top + i
		if y < 0 || y >= len(base) {
			continue
		}
		w := lipgloss.Width(cl)
		runes := []rune(base[y])
		if left >= len(runes) {
			continue
		}
		end := left + w
		if end > len(runes) {
			end = len(runes)
		}
		base[y] = string(runes[:maxInt(0, left)]) + cl + string(runes[end:])
	}
	return base
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
