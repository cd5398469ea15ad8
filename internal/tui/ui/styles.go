// Package ui provides shared styles and key bindings for the tour
// presentation layer.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Catppuccin Mocha inspired).
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"} // Blue
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#cba6f7"} // Mauve
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"} // Green
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"} // Yellow
	ColorError     = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"} // Red
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"} // Overlay0
	ColorText      = lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"} // Text
)

// Styles contains the lipgloss styles the tour presentation uses.
type Styles struct {
	// Tooltip card
	Card      lipgloss.Style
	CardTitle lipgloss.Style
	CardBody  lipgloss.Style
	CardHint  lipgloss.Style

	// Card while fading in or out
	CardDim lipgloss.Style

	// Waiting screen spinner line
	Waiting lipgloss.Style

	// Help footer
	Help lipgloss.Style
}

// DefaultStyles returns the default presentation styles.
func DefaultStyles() Styles {
	return Styles{
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1),

		CardTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),

		CardBody: lipgloss.NewStyle().
			Foreground(ColorText),

		CardHint: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),

		CardDim: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Foreground(ColorMuted).
			Faint(true).
			Padding(0, 1),

		Waiting: lipgloss.NewStyle().
			Foreground(ColorSecondary),

		Help: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}
