// internal/tui/style.go
package tui

import "github.com/charmbracelet/lipgloss"

var (
	cyan    = lipgloss.Color("#00E5FF")
	magenta = lipgloss.Color("#FF1B6B")
	green   = lipgloss.Color("#2AFFAA")
	red     = lipgloss.Color("#FF5555")
	muted   = lipgloss.Color("#6C7280")
	text    = lipgloss.Color("#ECEFF4")
)

// Styles groups the lipgloss styles the popup view uses.
type Styles struct {
	Title     lipgloss.Style
	Symbol    lipgloss.Style
	Price     lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Sparkline lipgloss.Style
	Container lipgloss.Style
	Button    lipgloss.Style
}

// DefaultStyles returns the popup color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Foreground(cyan).Bold(true),
		Symbol:    lipgloss.NewStyle().Foreground(text).Bold(true),
		Price:     lipgloss.NewStyle().Foreground(green),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Error:     lipgloss.NewStyle().Foreground(red).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(green).Bold(true),
		Sparkline: lipgloss.NewStyle().Foreground(cyan),
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cyan).
			Padding(1, 2),
		Button: lipgloss.NewStyle().
			Foreground(text).
			Background(magenta).
			Padding(0, 1).
			Bold(true),
	}
}
