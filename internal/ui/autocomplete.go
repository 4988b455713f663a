package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AutocompleteModel is a text input that completes against a fixed list,
// such as the category palette.
type AutocompleteModel struct {
	input          textinput.Model
	candidates     []string
	suggestions    []string
	showing        bool
	selected       int
	style          lipgloss.Style
	maxSuggestions int
}

// AutocompleteMsg is a message to update suggestions
type AutocompleteMsg struct {
	Suggestions []string
}

// NewAutocomplete creates a new autocomplete input model
func NewAutocomplete(placeholder string, candidates []string, maxSuggestions int) AutocompleteModel {
	input := textinput.New()
	input.Placeholder = placeholder

	return AutocompleteModel{
		input:          input,
		candidates:     candidates,
		maxSuggestions: maxSuggestions,
		style:          lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Update handles the autocomplete logic
func (m AutocompleteModel) Update(msg tea.Msg) (AutocompleteModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyTab:
			if m.showing && len(m.suggestions) > 0 {
				m.selected = (m.selected + 1) % len(m.suggestions)
				return m, nil
			}
		case tea.KeyShiftTab:
			if m.showing && len(m.suggestions) > 0 {
				m.selected = (m.selected - 1 + len(m.suggestions)) % len(m.suggestions)
				return m, nil
			}
		case tea.KeyEnter:
			if m.showing && len(m.suggestions) > 0 {
				m.input.SetValue(m.suggestions[m.selected])
				m.input.CursorEnd()
				m.showing = false
				m.selected = 0
				return m, nil
			}
		case tea.KeyEscape:
			if m.showing {
				m.showing = false
				m.selected = 0
				return m, nil
			}
		}

		oldValue := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != oldValue {
			return m, m.fetchSuggestions()
		}
		return m, cmd

	case AutocompleteMsg:
		m.suggestions = msg.Suggestions
		m.showing = len(m.suggestions) > 0 && m.input.Value() != ""
		m.selected = 0
		return m, nil

	default:
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// Match returns the candidates that start with (or else contain) query,
// ignoring case.
func (m AutocompleteModel) Match(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []string{}
	}
	var prefix, contains []string
	for _, c := range m.candidates {
		lc := strings.ToLower(c)
		switch {
		case strings.HasPrefix(lc, query):
			prefix = append(prefix, c)
		case strings.Contains(lc, query):
			contains = append(contains, c)
		}
	}
	out := append(prefix, contains...)
	if m.maxSuggestions > 0 && len(out) > m.maxSuggestions {
		out = out[:m.maxSuggestions]
	}
	return out
}

func (m AutocompleteModel) fetchSuggestions() tea.Cmd {
	suggestions := m.Match(m.input.Value())
	return func() tea.Msg {
		return AutocompleteMsg{Suggestions: suggestions}
	}
}

// View renders the autocomplete input and suggestions
func (m AutocompleteModel) View() string {
	var content strings.Builder
	content.WriteString(m.input.View())

	if m.showing && len(m.suggestions) > 0 {
		content.WriteString("\n")
		for i, suggestion := range m.suggestions {
			if i == m.selected {
				content.WriteString(m.style.Foreground(lipgloss.Color("12")).Render("▶ " + suggestion))
			} else {
				content.WriteString(m.style.Render("  " + suggestion))
			}
			content.WriteString("\n")
		}
	}
	return content.String()
}

func (m AutocompleteModel) Value() string { return m.input.Value() }

func (m *AutocompleteModel) SetValue(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
}

func (m *AutocompleteModel) Focus() tea.Cmd {
	m.showing = false
	m.selected = 0
	return m.input.Focus()
}

func (m *AutocompleteModel) Blur() {
	m.input.Blur()
	m.showing = false
	m.selected = 0
}

func (m *AutocompleteModel) SetPlaceholder(placeholder string) {
	m.input.Placeholder = placeholder
}

// Showing returns whether suggestions are currently displayed
func (m AutocompleteModel) Showing() bool { return m.showing }
