// Package tui is the demo host application for the tour engine: a fake
// "plugin studio" whose screens register their regions in the target
// registry and publish the signals the tour's watcher rules observe.
// All tour decisions come from the engine; this package only renders
// display snapshots and forwards user input.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/guidepost-io/guidepost/internal/adapters/signals"
	"github.com/guidepost-io/guidepost/internal/domain/placement"
	"github.com/guidepost-io/guidepost/internal/engine"
	"github.com/guidepost-io/guidepost/internal/ports"
	"github.com/guidepost-io/guidepost/internal/tui/ui"
)

// buildDuration is how long the demo's fake build runs.
const buildDuration = 3 * time.Second

// DisplayMsg delivers an engine display snapshot to the UI loop.
type DisplayMsg struct {
	Display engine.DisplayState
}

// buildDoneMsg ends the fake build.
type buildDoneMsg struct {
	ok bool
}

// Model is the demo host's bubbletea model.
type Model struct {
	eng      *engine.Engine
	registry ports.Registry
	bus      *signals.Bus

	styles ui.Styles
	keys   ui.KeyMap
	spin   spinner.Model

	width  int
	height int

	display engine.DisplayState

	// Demo application state.
	projects     []string
	modalOpen    bool
	building     bool
	buildCount   int
	lastBuildOK  bool
	hasBuilt     bool
	audioPlaying bool
	chatText     string
}

// NewModel creates the demo host.
func NewModel(eng *engine.Engine, reg ports.Registry, bus *signals.Bus) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		eng:      eng,
		registry: reg,
		bus:      bus,
		styles:   ui.DefaultStyles(),
		keys:     ui.DefaultKeyMap(),
		spin:     sp,
		width:    80,
		height:   24,
	}
}

// Init publishes the initial demo signals and starts the tour.
func (m Model) Init() tea.Cmd {
	m.bus.Set("projects.count", len(m.projects))
	m.bus.Set("build.running", false)
	m.bus.Set("audio.playing", false)
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		m.eng.Start()
		return nil
	})
}

// Update handles host input, layout, and engine snapshots.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
		return m, nil

	case DisplayMsg:
		m.display = msg.Display
		return m, nil

	case buildDoneMsg:
		m.building = false
		m.hasBuilt = true
		m.lastBuildOK = msg.ok
		m.relayout()
		m.bus.Set("build.running", false)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.eng.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Skip):
		m.eng.RequestSkip()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.eng.RequestAdvance(m.verifyChat())
		return m, nil

	case key.Matches(msg, m.keys.NewPlugin):
		if !m.modalOpen {
			m.modalOpen = true
			m.projects = append(m.projects, "untitled plugin")
			m.relayout()
			m.bus.Set("plugin.modal.open", true)
			m.bus.Set("projects.count", len(m.projects))
		}
		return m, nil

	case key.Matches(msg, m.keys.CloseModal):
		if m.modalOpen {
			m.modalOpen = false
			m.relayout()
			m.bus.Set("plugin.modal.open", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Build):
		if !m.building {
			m.building = true
			m.buildCount++
			m.relayout()
			m.bus.Set("build.running", true)
			ok := m.buildCount%2 == 1 // odd builds pass, even ones fail
			return m, tea.Tick(buildDuration, func(time.Time) tea.Msg {
				return buildDoneMsg{ok: ok}
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.Audio):
		m.audioPlaying = !m.audioPlaying
		m.bus.Set("audio.playing", m.audioPlaying)
		return m, nil
	}

	// Everything else types into the chat box.
	switch msg.Type {
	case tea.KeyRunes:
		m.chatText += string(msg.Runes)
	case tea.KeySpace:
		m.chatText += " "
	case tea.KeyBackspace:
		if len(m.chatText) > 0 {
			r := []rune(m.chatText)
			m.chatText = string(r[:len(r)-1])
		}
	}
	return m, nil
}

// verifyChat gates manual advance on the chat step: the live input must
// match the step's suggested message before "next" is honored.
func (m Model) verifyChat() func() bool {
	snap := m.display
	if snap.SuggestedMessage == "" {
		return nil
	}
	text := m.chatText
	return func() bool {
		return text == snap.SuggestedMessage
	}
}

// relayout recomputes the demo regions and re-registers them, the same
// motion a real host makes when its screens mount or resize.
func (m *Model) relayout() {
	w, h := m.width, m.height
	m.eng.SetViewport(placement.Size{Width: w, Height: h})

	m.registry.Register("project-list", newRegion(3, 1, 22, maxInt(1, h-8)))
	m.registry.Register("new-plugin", newRegion(h-4, 2, 16, 1))
	m.registry.Register("chat-input", newRegion(h-3, 26, maxInt(4, w-28), 1))
	m.registry.Register("build-panel", newRegion(2, w-26, 24, 4))
	m.registry.Register("audio-bar", newRegion(h-5, 26, maxInt(4, w-28), 1))

	if m.modalOpen {
		m.registry.Register("plugin-modal", newRegion(h/2-4, w/2-20, 40, 8))
	} else {
		m.registry.Unregister("plugin-modal")
	}

	if m.hasBuilt && !m.building {
		if m.lastBuildOK {
			m.registry.Register("build-success", newRegion(4, w-24, 20, 1))
			m.registry.Unregister("build-failure")
		} else {
			m.registry.Register("build-failure", newRegion(4, w-24, 20, 1))
			m.registry.Unregister("build-success")
		}
	} else {
		m.registry.Unregister("build-success")
		m.registry.Unregister("build-failure")
	}
}
