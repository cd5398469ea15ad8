package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidepost-io/guidepost/internal/domain/placement"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "tour.yaml", cfg.Script)
	assert.Zero(t, cfg.Tour.FadeOutMs)
}

func TestLoad(t *testing.T) {
	src := `
script = "walkthrough.yaml"

[tour]
poll_interval_ms = 50
resolve_timeout_ms = 3000
fade_out_ms = 150
fade_in_ms = 250
settle_delay_ms = 300
refresh_tick_ms = 1000
gap = 2
padding = 3
tooltip_width = 40
tooltip_height = 9
`
	path := filepath.Join(t.TempDir(), "guidepost.toml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "walkthrough.yaml", cfg.Script)

	tuning := cfg.Tuning()
	assert.Equal(t, 50*time.Millisecond, tuning.PollInterval)
	assert.Equal(t, 3*time.Second, tuning.ResolveTimeout)
	assert.Equal(t, 150*time.Millisecond, tuning.FadeOut)
	assert.Equal(t, 250*time.Millisecond, tuning.FadeIn)
	assert.Equal(t, 300*time.Millisecond, tuning.SettleDelay)
	assert.Equal(t, time.Second, tuning.RefreshTick)
	assert.Equal(t, 2, tuning.Gap)
	assert.Equal(t, 3, tuning.Padding)
	assert.Equal(t, placement.Size{Width: 40, Height: 9}, tuning.TooltipSize)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	src := "[tour]\nfade_out_ms = 99\n"
	path := filepath.Join(t.TempDir(), "guidepost.toml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tour.yaml", cfg.Script)
	assert.Equal(t, 99*time.Millisecond, cfg.Tuning().FadeOut)
	// Unset fields stay zero here; the engine normalizes them to its own
	// defaults.
	assert.Zero(t, cfg.Tuning().FadeIn)
}

func TestLoad_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guidepost.toml")
	require.NoError(t, os.WriteFile(path, []byte("script = [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}
