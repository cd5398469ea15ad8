package engine

import (
	"time"

	"github.com/guidepost-io/guidepost/internal/domain/placement"
)

// Tuning collects the engine's timing and geometry knobs. The defaults
// match the reference behavior; none of the values are load-bearing for
// correctness, only for perceived smoothness.
type Tuning struct {
	// PollInterval is the fallback polling cadence during element
	// resolution.
	PollInterval time.Duration `toml:"poll_interval"`

	// ResolveTimeout bounds how long a spotlight step waits for its
	// target to mount before parking.
	ResolveTimeout time.Duration `toml:"resolve_timeout"`

	// FadeOut and FadeIn are the crossfade durations.
	FadeOut time.Duration `toml:"fade_out"`
	FadeIn  time.Duration `toml:"fade_in"`

	// SettleDelay is the default pause before a watcher action when a
	// rule does not set its own, letting dependent UI finish shifting.
	SettleDelay time.Duration `toml:"settle_delay"`

	// RefreshTick is the cadence of steady-state placement refresh
	// while a step is settled.
	RefreshTick time.Duration `toml:"refresh_tick"`

	// Gap is the distance between target and tooltip along the main
	// axis; Padding is the minimum distance to the viewport edge.
	Gap     int `toml:"gap"`
	Padding int `toml:"padding"`

	// TooltipSize is the box the placement math reserves for the card.
	TooltipSize placement.Size `toml:"tooltip_size"`
}

// DefaultTuning returns the reference tuning.
func DefaultTuning() Tuning {
	return Tuning{
		PollInterval:   100 * time.Millisecond,
		ResolveTimeout: 5 * time.Second,
		FadeOut:        200 * time.Millisecond,
		FadeIn:         200 * time.Millisecond,
		SettleDelay:    400 * time.Millisecond,
		RefreshTick:    500 * time.Millisecond,
		Gap:            1,
		Padding:        1,
		TooltipSize:    placement.Size{Width: 36, Height: 7},
	}
}

// normalized fills zero fields with defaults so partially specified
// tunings behave.
func (t Tuning) normalized() Tuning {
	d := DefaultTuning()
	if t.PollInterval <= 0 {
		t.PollInterval = d.PollInterval
	}
	if t.ResolveTimeout <= 0 {
		t.ResolveTimeout = d.ResolveTimeout
	}
	if t.FadeOut <= 0 {
		t.FadeOut = d.FadeOut
	}
	if t.FadeIn <= 0 {
		t.FadeIn = d.FadeIn
	}
	if t.SettleDelay <= 0 {
		t.SettleDelay = d.SettleDelay
	}
	if t.RefreshTick <= 0 {
		t.RefreshTick = d.RefreshTick
	}
	if t.Gap <= 0 {
		t.Gap = d.Gap
	}
	if t.Padding <= 0 {
		t.Padding = d.Padding
	}
	if t.TooltipSize.Width <= 0 || t.TooltipSize.Height <= 0 {
		t.TooltipSize = d.TooltipSize
	}
	return t
}
