package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoSteps() []Step {
	return []Step{
		{ID: "welcome", Kind: KindPopup},
		{ID: "new-plugin", Kind: KindSpotlight, Target: "new-plugin", Advance: AdvanceAuto},
		{ID: "chat", Kind: KindSpotlight, Target: "chat-input", Advance: AdvanceManual},
		{ID: "building", Kind: KindWaiting},
		{ID: "done", Kind: KindPopup},
	}
}

func TestNewScript(t *testing.T) {
	sc, err := NewScript(demoSteps())
	require.NoError(t, err)

	assert.Equal(t, 5, sc.Len())
	assert.Equal(t, "welcome", sc.First().ID)
	assert.Equal(t, "building", sc.At(3).ID)
}

func TestNewScript_Empty(t *testing.T) {
	_, err := NewScript(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no steps")
}

func TestNewScript_DuplicateID(t *testing.T) {
	steps := demoSteps()
	steps = append(steps, Step{ID: "welcome", Kind: KindPopup})

	_, err := NewScript(steps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate step id")
}

func TestNewScript_InvalidStep(t *testing.T) {
	_, err := NewScript([]Step{{ID: "a", Kind: "banner"}})
	assert.Error(t, err)
}

func TestScript_IndexOf(t *testing.T) {
	sc, err := NewScript(demoSteps())
	require.NoError(t, err)

	i, err := sc.IndexOf("chat")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = sc.IndexOf("nope")
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestScript_Get(t *testing.T) {
	sc, err := NewScript(demoSteps())
	require.NoError(t, err)

	st, err := sc.Get("building")
	require.NoError(t, err)
	assert.Equal(t, KindWaiting, st.Kind)

	_, err = sc.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestScript_IsLast(t *testing.T) {
	sc, err := NewScript(demoSteps())
	require.NoError(t, err)

	assert.False(t, sc.IsLast(0))
	assert.True(t, sc.IsLast(4))
}

func TestScript_Progress(t *testing.T) {
	sc, err := NewScript(demoSteps())
	require.NoError(t, err)

	// Only the two spotlight steps count.
	assert.Equal(t, 2, sc.TotalSteps())
	assert.Equal(t, 1, sc.StepNumber("new-plugin"))
	assert.Equal(t, 2, sc.StepNumber("chat"))

	// Waiting and popup steps report zero.
	assert.Equal(t, 0, sc.StepNumber("welcome"))
	assert.Equal(t, 0, sc.StepNumber("building"))
	assert.Equal(t, 0, sc.StepNumber("done"))
	assert.Equal(t, 0, sc.StepNumber("nope"))
}
