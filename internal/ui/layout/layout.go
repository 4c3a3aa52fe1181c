// Package layout frames preview screens: a header bar, the body and a
// footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eslquiz/quizgen/internal/ui/theme"
)

// Smallest terminal the preview renders in.
const (
	MinWidth  = 60
	MinHeight = 16
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("The quiz needs at least %dx%d.\nThis terminal is %dx%d.",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Ink).Render(msg))
}

// RenderHeader lays out the app name on the left, title in the middle and
// status (model name, score) on the right.
func RenderHeader(title, status string, width int) string {
	inner := max(0, width-4)

	name := lipgloss.NewStyle().Bold(true).Foreground(theme.Brand).Render("quizgen")
	right := lipgloss.NewStyle().Foreground(theme.Highlight).Render(status)
	middle := lipgloss.NewStyle().
		Foreground(theme.Ink).
		Width(max(0, inner-lipgloss.Width(name)-lipgloss.Width(right))).
		Align(lipgloss.Center).
		Render(title)

	return theme.Bar(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, name, middle, right))
}

// RenderFooter renders key hints as "key description" pairs.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Bold(true).Foreground(theme.Ink)
	desc := lipgloss.NewStyle().Foreground(theme.Muted)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return theme.Bar(width).Render(strings.Join(parts, "   "))
}

// RenderFrame stacks header, body and footer, giving the body whatever
// height remains.
func RenderFrame(header, body, footer string, width, height int) string {
	bodyHeight := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(bodyHeight).Render(body),
		footer,
	)
}
