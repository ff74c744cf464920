package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	aliveDot = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	deadDot  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
)

// renderHelpBar renders the key help line.
func renderHelpBar(width int, confirming bool) string {
	text := "q quit · p prune stale · c clear store"
	if confirming {
		text = "clear every window record? y confirm · any other key cancels"
	}
	return helpStyle.Width(width).Render(text)
}
