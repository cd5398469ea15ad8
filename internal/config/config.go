// Package config loads the engine's tunable configuration from a TOML
// file. Every timing constant the engine uses lives here; absent fields
// fall back to the reference defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/guidepost-io/guidepost/internal/domain/placement"
	"github.com/guidepost-io/guidepost/internal/engine"
)

// Config is the top-level configuration file.
type Config struct {
	// Script is the path to the YAML step script.
	Script string `toml:"script"`

	// Tour holds the engine timing and geometry knobs.
	Tour Tour `toml:"tour"`
}

// Tour mirrors engine.Tuning with millisecond-valued fields, which read
// better in a config file than Go duration strings.
type Tour struct {
	PollIntervalMs   int64 `toml:"poll_interval_ms"`
	ResolveTimeoutMs int64 `toml:"resolve_timeout_ms"`
	FadeOutMs        int64 `toml:"fade_out_ms"`
	FadeInMs         int64 `toml:"fade_in_ms"`
	SettleDelayMs    int64 `toml:"settle_delay_ms"`
	RefreshTickMs    int64 `toml:"refresh_tick_ms"`
	Gap              int   `toml:"gap"`
	Padding          int   `toml:"padding"`
	TooltipWidth     int   `toml:"tooltip_width"`
	TooltipHeight    int   `toml:"tooltip_height"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{Script: "tour.yaml"}
}

// Load reads a configuration file. A missing file is not an error; the
// defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Tuning converts the file representation into engine tuning. Zero
// fields keep the engine defaults.
func (c Config) Tuning() engine.Tuning {
	t := engine.Tuning{
		PollInterval:   time.Duration(c.Tour.PollIntervalMs) * time.Millisecond,
		ResolveTimeout: time.Duration(c.Tour.ResolveTimeoutMs) * time.Millisecond,
		FadeOut:        time.Duration(c.Tour.FadeOutMs) * time.Millisecond,
		FadeIn:         time.Duration(c.Tour.FadeInMs) * time.Millisecond,
		SettleDelay:    time.Duration(c.Tour.SettleDelayMs) * time.Millisecond,
		RefreshTick:    time.Duration(c.Tour.RefreshTickMs) * time.Millisecond,
		Gap:            c.Tour.Gap,
		Padding:        c.Tour.Padding,
		TooltipSize: placement.Size{
			Width:  c.Tour.TooltipWidth,
			Height: c.Tour.TooltipHeight,
		},
	}
	return t
}
