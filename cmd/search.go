package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/tracker"
	"github.com/ramanasai/amal/internal/utils"
)

var (
	searchPreset   string
	searchCategory string
	searchLimit    int
)

// searchCmd finds tasks and subtasks whose title contains the query.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search task and subtask titles across days",
	Long: `Examples:
	amal search report                        # every day
	amal search report --preset last30days
	amal search call --category family`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withRuntime(cmd, func(rt *runtime) error {
			from, to, err := utils.DayRange(searchPreset, rt.ctrl.Now())
			if err != nil {
				return err
			}
			if searchLimit <= 0 || searchLimit > 1000 {
				searchLimit = 200
			}
			hits := searchTasks(rt.ctrl.State(), searchFilter{
				Query: query, Category: searchCategory, From: from, To: to, Limit: searchLimit,
			})

			r, err := rt.renderer()
			if err != nil {
				return err
			}
			st := r.Styles()
			fmt.Println(st.Title.Render("Search") + "  " + st.Separator.Render("query: ") + query)
			fmt.Println(st.Separator.Render(strings.Repeat("─", min(r.Config().Width, 120))))
			for _, h := range hits {
				line := st.Meta.Render(fmt.Sprintf("%s #%d", h.Day, h.Pos)) + "  " + highlight(h.Title, query, st.Title)
				if h.Parent != "" {
					line += "  " + st.Meta.Render("in "+h.Parent)
				}
				if h.Category != "" {
					line += "  " + st.Category.Render(h.Category)
				}
				fmt.Println(line)
			}
			if len(hits) == 0 {
				fmt.Println(st.Meta.Render("no results"))
			}
			return nil
		})
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchPreset, "preset", "p", "", "Range preset: week, month, year, last7days, last30days, last90days")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "Only this category")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 200, "Max results (default 200)")
}

type searchFilter struct {
	Query    string
	Category string
	From, To string
	Limit    int
}

type searchHit struct {
	Day      string
	Pos      int // 1-based task position
	Title    string
	Parent   string // set for subtask hits
	Category string
}

// searchTasks scans days newest first, matching titles case-insensitively.
func searchTasks(s tracker.Store, f searchFilter) []searchHit {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	days := s.Days()
	var hits []searchHit
	add := func(h searchHit, cat *tracker.Category) bool {
		if !strings.Contains(strings.ToLower(h.Title), q) {
			return true
		}
		if cat != nil {
			h.Category = cat.Label
		}
		if f.Category != "" && !strings.EqualFold(h.Category, f.Category) {
			return true
		}
		hits = append(hits, h)
		return f.Limit <= 0 || len(hits) < f.Limit
	}
	for i := len(days) - 1; i >= 0; i-- {
		day := days[i]
		if !utils.InRange(day, f.From, f.To) {
			continue
		}
		for j, t := range s[day] {
			if !add(searchHit{Day: day, Pos: j + 1, Title: t.Title}, t.Category) {
				return hits
			}
			for _, st := range t.SubTasks {
				if !add(searchHit{Day: day, Pos: j + 1, Title: st.Title, Parent: t.Title}, st.Category) {
					return hits
				}
			}
		}
	}
	return hits
}

// highlight renders every case-insensitive occurrence of q in s with style.
func highlight(s, q string, style lipgloss.Style) string {
	if q == "" {
		return s
	}
	lower, lq := strings.ToLower(s), strings.ToLower(q)
	var b strings.Builder
	for {
		i := strings.Index(lower, lq)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(style.Render(s[i : i+len(q)]))
		s, lower = s[i+len(q):], lower[i+len(q):]
	}
}
