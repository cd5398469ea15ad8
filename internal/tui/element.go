package tui

import (
	"github.com/guidepost-io/guidepost/internal/domain/placement"
	"github.com/guidepost-io/guidepost/internal/ports"
)

// region is a screen-rect backed element handle. The demo host
// re-registers regions on every relayout, mirroring how a real host's
// screens register their nodes on mount.
type region struct {
	rect placement.Rect
}

func newRegion(top, left, width, height int) *region {
	return &region{rect: placement.Rect{Top: top, Left: left, Width: width, Height: height}}
}

// Bounds returns the region's current rect.
func (r *region) Bounds() placement.Rect {
	return r.rect
}

var _ ports.Element = (*region)(nil)
