// Package themes holds the TUI color palettes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Label      lipgloss.Style
	Positive   lipgloss.Style
	Negative   lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Box        lipgloss.Style
	Header     lipgloss.Style
	Selected   lipgloss.Style
	Primary    lipgloss.Color
	Border     lipgloss.Color
	Foreground lipgloss.Color
}

// Default is the default theme.
var Default = newTheme(
	lipgloss.Color("#F7931A"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#FAFAFA"),
)

// Mono renders without color.
var Mono = Theme{
	Title:    lipgloss.NewStyle().Bold(true),
	Subtitle: lipgloss.NewStyle(),
	Label:    lipgloss.NewStyle().Width(22),
	Positive: lipgloss.NewStyle(),
	Negative: lipgloss.NewStyle(),
	Muted:    lipgloss.NewStyle(),
	Error:    lipgloss.NewStyle(),
	Box:      lipgloss.NewStyle(),
	Header:   lipgloss.NewStyle(),
	Selected: lipgloss.NewStyle(),
}

func newTheme(primary, border, fg lipgloss.Color) Theme {
	return Theme{
		Primary:    primary,
		Border:     border,
		Foreground: fg,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#A3A3A3")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A3A3A3")).Width(22),
		Positive: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		Negative: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#737373")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(primary),
	}
}
