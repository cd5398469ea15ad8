package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/guidepost-io/guidepost/internal/domain/placement"
	"github.com/guidepost-io/guidepost/internal/domain/step"
	"github.com/guidepost-io/guidepost/internal/engine"
)

// View renders the demo screens with the tour overlay on top.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	base := m.renderBase()

	help := m.styles.Help.Render(
		"n new plugin • b build • a audio • enter next • s skip tour • q quit")
	base = spliceCard(base, help, m.height-1, 1)

	d := m.display
	if d.Active && d.Visible {
		base = m.overlayTour(base, d)
	}

	return strings.Join(base, "\n")
}

// renderBase composes the fake plugin studio screens as plain text.
func (m Model) renderBase() []string {
	c := newCanvas(m.width, m.height)
	w, h := m.width, m.height

	c.text(0, 1, "PLUGIN STUDIO (demo)")
	c.text(1, 0, strings.Repeat("─", w))

	// Sidebar: project list and the new-plugin button.
	c.box(placement.Rect{Top: 2, Left: 0, Width: 24, Height: h - 5})
	c.text(2, 2, " Projects ")
	if len(m.projects) == 0 {
		c.text(4, 2, "(no projects yet)")
	}
	for i, p := range m.projects {
		if 4+i >= h-6 {
			break
		}
		c.text(4+i, 2, "• "+p)
	}
	c.text(h-4, 2, "[ + New plugin (n) ]")

	// Build panel, top right.
	c.box(placement.Rect{Top: 2, Left: w - 26, Width: 24, Height: 4})
	c.text(2, w-24, " Build (b) ")
	switch {
	case m.building:
		c.text(4, w-24, "building...")
	case m.hasBuilt && m.lastBuildOK:
		c.text(4, w-24, "✓ build passed")
	case m.hasBuilt:
		c.text(4, w-24, "✗ build failed")
	default:
		c.text(4, w-24, "not built yet")
	}

	// Chat area.
	c.text(7, 26, "Assistant chat")
	c.text(h-3, 26, "> "+m.chatText)

	// Audio bar.
	if m.audioPlaying {
		c.text(h-5, 26, "♪ playing  [a to stop]")
	} else {
		c.text(h-5, 26, "· stopped  [a to play]")
	}

	// Modal.
	if m.modalOpen {
		r := placement.Rect{Top: h/2 - 4, Left: w/2 - 20, Width: 40, Height: 8}
		c.box(r)
		c.text(r.Top+1, r.Left+2, "New plugin")
		c.text(r.Top+3, r.Left+2, "Name: untitled plugin")
		c.text(r.Top+6, r.Left+2, "esc to close")
	}

	// Spotlight frame goes into the base canvas so the tooltip card can
	// be spliced over it afterwards.
	d := m.display
	if d.Active && d.Visible && d.TargetRect != nil {
		c.frame(*d.TargetRect)
	}

	return c.render()
}

// overlayTour splices the tour card for the current snapshot.
func (m Model) overlayTour(base []string, d engine.DisplayState) []string {
	card := m.renderCard(d)
	if card == "" {
		return base
	}

	var top, left int
	if d.Placement != nil {
		top, left = d.Placement.Top, d.Placement.Left
	} else {
		// Waiting steps have no placement; center the card.
		top = maxInt(0, (m.height-lipgloss.Height(card))/2)
		left = maxInt(0, (m.width-lipgloss.Width(card))/2)
	}
	return spliceCard(base, card, top, left)
}

// renderCard renders the tooltip/popup/waiting card for a snapshot.
func (m Model) renderCard(d engine.DisplayState) string {
	var b strings.Builder

	switch d.Kind {
	case step.KindWaiting:
		b.WriteString(m.styles.Waiting.Render(m.spin.View() + " " + d.Message))
	default:
		if d.StepNumber > 0 {
			b.WriteString(m.styles.CardTitle.Render(
				fmt.Sprintf("Step %d of %d", d.StepNumber, d.TotalSteps)))
			b.WriteString("\n")
		}
		b.WriteString(m.styles.CardBody.Render(d.Message))
		if d.SuggestedValue != "" {
			b.WriteString("\n" + m.styles.CardHint.Render("try: "+d.SuggestedValue))
		}
		if d.SuggestedMessage != "" {
			b.WriteString("\n" + m.styles.CardHint.Render("type: "+d.SuggestedMessage))
		}
		b.WriteString("\n" + m.styles.CardHint.Render(m.cardHint(d)))
	}

	style := m.styles.Card
	if d.Phase == engine.PhaseFadingIn || d.Phase == engine.PhaseFadingOut {
		style = m.styles.CardDim
	}

	// Border and padding take four of the reserved tooltip columns.
	return style.Width(cardInnerWidth).Render(b.String())
}

const cardInnerWidth = 32

func (m Model) cardHint(d engine.DisplayState) string {
	switch d.Kind {
	case step.KindPopup:
		return "enter to continue • s to skip"
	case step.KindSpotlight:
		return "s to skip"
	}
	return ""
}
