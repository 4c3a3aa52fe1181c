// Package theme holds the colours and lipgloss styles of the preview.
package theme

import "charm.land/lipgloss/v2"

var (
	Brand     = lipgloss.Color("#2563EB")
	Highlight = lipgloss.Color("#F59E0B")
	Meter     = lipgloss.Color("#0EA5E9")
	Good      = lipgloss.Color("#16A34A")
	Bad       = lipgloss.Color("#DC2626")
	Ink       = lipgloss.Color("#E5E7EB")
	Muted     = lipgloss.Color("#9CA3AF")
	Panel     = lipgloss.Color("#111827")
	Edge      = lipgloss.Color("#374151")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(Brand)
	Body  = lipgloss.NewStyle().Foreground(Ink)
	Hint  = lipgloss.NewStyle().Foreground(Muted).Italic(true)
)

// Option states in a question.
var (
	Selected   = lipgloss.NewStyle().Bold(true).Foreground(Highlight)
	Unselected = lipgloss.NewStyle().Foreground(Ink)
	Correct    = lipgloss.NewStyle().Bold(true).Foreground(Good)
	Incorrect  = lipgloss.NewStyle().Bold(true).Foreground(Bad)
)

var (
	ProgressFilled = lipgloss.NewStyle().Background(Meter)
	ProgressEmpty  = lipgloss.NewStyle().Background(Edge)
)

// Bar is the bordered strip used for the header and footer.
func Bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(Panel).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Edge)
}
