package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ramanasai/amal/internal/tracker"
)

// OutputFormat represents different output formats
type OutputFormat string

const (
	FormatDefault OutputFormat = "default"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatCompact OutputFormat = "compact"
	FormatQuiet   OutputFormat = "quiet"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatDefault, nil
	case FormatDefault, FormatTable, FormatJSON, FormatCSV, FormatCompact, FormatQuiet:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (default, table, json, csv, compact, quiet)", s)
}

// RenderConfig contains configuration for output rendering
type RenderConfig struct {
	Format        OutputFormat
	Width         int
	ShowID        bool
	ShowSubTasks  bool
	Color         bool
	Location      *time.Location
	SessionLength time.Duration
}

// DefaultRenderConfig returns a default render configuration
func DefaultRenderConfig() *RenderConfig {
	width := 100
	if colEnv := os.Getenv("COLUMNS"); colEnv != "" {
		if v, err := strconv.Atoi(colEnv); err == nil && v > 40 {
			width = v
		}
	}

	return &RenderConfig{
		Format:        FormatDefault,
		Width:         width,
		ShowID:        true,
		ShowSubTasks:  true,
		Color:         os.Getenv("NO_COLOR") == "",
		Location:      time.Local,
		SessionLength: tracker.DefaultSessionLength,
	}
}

// DayView is one day's plan as handed to the renderer.
type DayView struct {
	Day     string             `json:"day"`
	Tasks   []tracker.Task     `json:"tasks"`
	Summary tracker.DaySummary `json:"summary"`
}

// HistoryView is a page of per-day summaries.
type HistoryView struct {
	Days       []tracker.DaySummary `json:"days"`
	Streak     tracker.Streak       `json:"streak"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page,omitempty"`
	PerPage    int                  `json:"per_page,omitempty"`
	TotalPages int                  `json:"total_pages,omitempty"`
}

// Renderer handles output formatting
type Renderer struct {
	config *RenderConfig
	styles *Styles
}

// Styles contains lipgloss styles for different elements
type Styles struct {
	Title     lipgloss.Style
	Separator lipgloss.Style
	Meta      lipgloss.Style
	ID        lipgloss.Style
	Category  lipgloss.Style
	Text      lipgloss.Style
	Done      lipgloss.Style
	Running   lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
}

// NewRenderer creates a new renderer with the given config
func NewRenderer(config *RenderConfig) *Renderer {
	if config == nil {
		config = DefaultRenderConfig()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.SessionLength <= 0 {
		config.SessionLength = tracker.DefaultSessionLength
	}

	return &Renderer{
		config: config,
		styles: initStyles(config.Color),
	}
}

// Styles exposes the style set, e.g. for warnings printed by commands.
func (r *Renderer) Styles() *Styles { return r.styles }

// Config exposes the render settings for per-command tweaks.
func (r *Renderer) Config() *RenderConfig { return r.config }

// initStyles initializes the style set
func initStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{
			Title:     plain.Bold(true),
			Separator: plain,
			Meta:      plain,
			ID:        plain,
			Category:  plain.Bold(true),
			Text:      plain,
			Done:      plain,
			Running:   plain.Bold(true),
			Success:   plain,
			Error:     plain,
			Warning:   plain,
		}
	}
	return &Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Meta:      lipgloss.NewStyle().Faint(true),
		ID:        lipgloss.NewStyle().Faint(true),
		Category:  lipgloss.NewStyle().Bold(true),
		Text:      lipgloss.NewStyle(),
		Done:      lipgloss.NewStyle().Strikethrough(true).Faint(true),
		Running:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FAB387")),
	}
}

func (r *Renderer) rule() string {
	return r.styles.Separator.Render(strings.Repeat("─", min(r.config.Width, 120)))
}

// RenderDay renders one day's tasks according to the configured format
func (r *Renderer) RenderDay(view DayView, now time.Time) (string, error) {
	switch r.config.Format {
	case FormatJSON:
		return renderJSON(view)
	case FormatCSV:
		return r.renderDayCSV(view, now)
	case FormatTable:
		return r.renderDayTable(view, now), nil
	case FormatCompact:
		return r.renderDayCompact(view, now), nil
	case FormatQuiet:
		var b strings.Builder
		for _, t := range view.Tasks {
			b.WriteString(t.ID)
			b.WriteString("\n")
		}
		return b.String(), nil
	default:
		return r.renderDayDefault(view, now), nil
	}
}

func statusMark(t tracker.Task, running bool) string {
	switch {
	case running:
		return "▶"
	case t.Status == tracker.StatusCompleted:
		return "✓"
	default:
		return "•"
	}
}

func (r *Renderer) categoryLabel(c *tracker.Category) string {
	if c == nil {
		return ""
	}
	style := r.styles.Category
	if r.config.Color {
		style = style.Foreground(lipgloss.Color(c.Color))
	}
	return style.Render(c.Label)
}

func (r *Renderer) sessionsLabel(t tracker.Task, now time.Time) string {
	done := tracker.CompletedSessions(t, now, r.config.SessionLength)
	if t.TargetSessions > 0 {
		return fmt.Sprintf("%d/%d 🍅", done, t.TargetSessions)
	}
	if done > 0 {
		return fmt.Sprintf("%d 🍅", done)
	}
	return ""
}

func (r *Renderer) renderDayDefault(view DayView, now time.Time) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(view.Day))
	b.WriteString("  ")
	b.WriteString(r.styles.Meta.Render(fmt.Sprintf("%d/%d done · %d sessions · %s focus",
		view.Summary.Completed, view.Summary.Tasks, view.Summary.Sessions, FormatDuration(view.Summary.FocusTime))))
	b.WriteString("\n")
	b.WriteString(r.rule())
	b.WriteString("\n")

	if len(view.Tasks) == 0 {
		b.WriteString(r.styles.Meta.Render("  no tasks"))
		b.WriteString("\n")
		return b.String()
	}

	for i, t := range view.Tasks {
		running := tracker.Running(t, now, r.config.SessionLength)
		var parts []string
		parts = append(parts, fmt.Sprintf("%2d.", i+1), statusMark(t, running))

		title := r.styles.Text.Render(t.Title)
		switch {
		case running:
			title = r.styles.Running.Render(t.Title)
		case t.Status == tracker.StatusCompleted:
			title = r.styles.Done.Render(t.Title)
		}
		parts = append(parts, title)

		if cat := r.categoryLabel(t.Category); cat != "" {
			parts = append(parts, cat)
		}
		if s := r.sessionsLabel(t, now); s != "" {
			parts = append(parts, r.styles.Meta.Render(s))
		}
		if running {
			left := tracker.Remaining(t, now, r.config.SessionLength)
			parts = append(parts, r.styles.Running.Render(FormatClock(left)))
		}
		if r.config.ShowID {
			parts = append(parts, r.styles.ID.Render("["+shortID(t.ID)+"]"))
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteString("\n")

		if r.config.ShowSubTasks {
			for _, st := range t.SubTasks {
				box := "[ ]"
				title := r.styles.Text.Render(st.Title)
				if st.Checked {
					box = "[x]"
					title = r.styles.Done.Render(st.Title)
				}
				line := "      " + box + " " + title
				if cat := r.categoryLabel(st.Category); cat != "" {
					line += " " + cat
				}
				if r.config.ShowID {
					line += " " + r.styles.ID.Render("["+shortID(st.ID)+"]")
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func (r *Renderer) renderDayTable(view DayView, now time.Time) string {
	var b strings.Builder
	b.WriteString("#\tID\tStatus\tSessions\tTarget\tFocus\tCategory\tTitle\n")
	b.WriteString(strings.Repeat("-", r.config.Width))
	b.WriteString("\n")
	for i, t := range view.Tasks {
		cat := ""
		if t.Category != nil {
			cat = t.Category.Label
		}
		row := []string{
			strconv.Itoa(i + 1),
			shortID(t.ID),
			string(t.Status),
			strconv.Itoa(tracker.CompletedSessions(t, now, r.config.SessionLength)),
			strconv.Itoa(t.TargetSessions),
			FormatDuration(tracker.FocusTime(t, now, r.config.SessionLength)),
			cat,
			truncate(t.Title, 50),
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) renderDayCompact(view DayView, now time.Time) string {
	var b strings.Builder
	for _, t := range view.Tasks {
		running := tracker.Running(t, now, r.config.SessionLength)
		line := statusMark(t, running) + " " + truncate(t.Title, 80)
		if s := r.sessionsLabel(t, now); s != "" {
			line += " " + r.styles.Meta.Render(s)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) renderDayCSV(view DayView, now time.Time) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"day", "id", "title", "status", "sessions", "target_sessions", "focus_minutes", "category", "created_at"})
	for _, t := range view.Tasks {
		cat := ""
		if t.Category != nil {
			cat = t.Category.Label
		}
		_ = w.Write([]string{
			view.Day,
			t.ID,
			t.Title,
			string(t.Status),
			strconv.Itoa(tracker.CompletedSessions(t, now, r.config.SessionLength)),
			strconv.Itoa(t.TargetSessions),
			strconv.Itoa(int(tracker.FocusTime(t, now, r.config.SessionLength) / time.Minute)),
			cat,
			t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	return b.String(), w.Error()
}

// RenderHistory renders a page of day summaries
func (r *Renderer) RenderHistory(view HistoryView) (string, error) {
	switch r.config.Format {
	case FormatJSON:
		return renderJSON(view)
	case FormatCSV:
		var b strings.Builder
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"day", "tasks", "completed", "completion_ratio", "sessions", "target_sessions", "focus_minutes"})
		for _, d := range view.Days {
			_ = w.Write([]string{
				d.Day,
				strconv.Itoa(d.Tasks),
				strconv.Itoa(d.Completed),
				strconv.FormatFloat(d.CompletionRatio, 'f', 2, 64),
				strconv.Itoa(d.Sessions),
				strconv.Itoa(d.Target),
				strconv.Itoa(int(d.FocusTime / time.Minute)),
			})
		}
		w.Flush()
		return b.String(), w.Error()
	case FormatQuiet:
		var b strings.Builder
		for _, d := range view.Days {
			b.WriteString(d.Day)
			b.WriteString("\n")
		}
		return b.String(), nil
	}

	var b strings.Builder
	b.WriteString(r.styles.Title.Render("History"))
	b.WriteString("  ")
	b.WriteString(r.styles.Meta.Render(fmt.Sprintf("streak %d · best %d", view.Streak.Current, view.Streak.Longest)))
	b.WriteString("\n")
	b.WriteString(r.rule())
	b.WriteString("\n")
	for _, d := range view.Days {
		bar := progressBar(d.CompletionRatio, 10)
		b.WriteString(fmt.Sprintf("%s  %s %3.0f%%  %d/%d tasks  %d sessions  %s\n",
			d.Day, bar, d.CompletionRatio*100, d.Completed, d.Tasks, d.Sessions, FormatDuration(d.FocusTime)))
	}
	if view.TotalPages > 1 {
		p := NewPagination(view.Total, view.PerPage, view.Page)
		b.WriteString(r.rule())
		b.WriteString("\n")
		b.WriteString(r.styles.Meta.Render(p.FormatSummary()))
		b.WriteString("\n")
		if nav := p.FormatNavigation(); nav != "" {
			b.WriteString(r.styles.Meta.Render(nav))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// RenderStats renders a day summary with the streak.
func (r *Renderer) RenderStats(sum tracker.DaySummary, streak tracker.Streak) (string, error) {
	if r.config.Format == FormatJSON {
		return renderJSON(struct {
			Summary tracker.DaySummary `json:"summary"`
			Streak  tracker.Streak     `json:"streak"`
		}{sum, streak})
	}
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Stats for " + sum.Day))
	b.WriteString("\n")
	b.WriteString(r.rule())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Tasks        %d/%d completed  %s %.0f%%\n", sum.Completed, sum.Tasks, progressBar(sum.CompletionRatio, 20), sum.CompletionRatio*100)
	fmt.Fprintf(&b, "Sessions     %d (target %d)\n", sum.Sessions, sum.Target)
	fmt.Fprintf(&b, "Focus time   %s\n", FormatDuration(sum.FocusTime))
	fmt.Fprintf(&b, "Streak       %d days (longest %d)\n", streak.Current, streak.Longest)
	return b.String(), nil
}

func renderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func progressBar(ratio float64, width int) string {
	filled := int(ratio*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
