package ui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Border   lipgloss.Style
	Hint     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Cursor   lipgloss.Style
	Done     lipgloss.Style
	Running  lipgloss.Style
	Progress lipgloss.Style
}

var DefaultTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	Label:    lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#89B4FA")),
	Value:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F2CDCD")),
	Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	Hint:     lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#CBA6F7")),
	Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
	Success:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	Cursor:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89B4FA")),
	Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
	Running:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
	Progress: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
}

// MonoTheme drops colors, for NO_COLOR terminals and the "mono" theme.
var MonoTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true),
	Label:    lipgloss.NewStyle(),
	Value:    lipgloss.NewStyle(),
	Border:   lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	Hint:     lipgloss.NewStyle(),
	Error:    lipgloss.NewStyle().Bold(true),
	Success:  lipgloss.NewStyle().Bold(true),
	Cursor:   lipgloss.NewStyle().Bold(true),
	Done:     lipgloss.NewStyle(),
	Running:  lipgloss.NewStyle().Bold(true),
	Progress: lipgloss.NewStyle(),
}

// ThemeByName maps the config theme onto a style set.
func ThemeByName(name string) Theme {
	if name == "mono" {
		return MonoTheme
	}
	return DefaultTheme
}
