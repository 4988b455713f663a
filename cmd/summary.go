package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/tracker"
	"github.com/ramanasai/amal/internal/utils"
)

var (
	historyPreset  string
	historyPage    int
	historyPerPage int
)

// statsCmd prints one day's completion, sessions and focus time plus the streak.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Daily statistics and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			day, err := rt.day()
			if err != nil {
				return err
			}
			r, err := rt.renderer()
			if err != nil {
				return err
			}
			out, err := r.RenderStats(rt.ctrl.Summary(day), rt.ctrl.Streak())
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Per-day summaries, newest first",
	Long: `Examples:
	amal history                        # every recorded day
	amal history --preset last30days
	amal history --page 2 --per-page 7
	amal history -f csv > history.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			r, err := rt.renderer()
			if err != nil {
				return err
			}
			from, to, err := utils.DayRange(historyPreset, rt.ctrl.Now())
			if err != nil {
				return err
			}

			all := rt.ctrl.History()
			days := make([]tracker.DaySummary, 0, len(all))
			for i := len(all) - 1; i >= 0; i-- {
				if utils.InRange(all[i].Day, from, to) {
					days = append(days, all[i])
				}
			}

			p := utils.NewPagination(len(days), historyPerPage, historyPage)
			start, end := p.Bounds()
			out, err := r.RenderHistory(utils.HistoryView{
				Days:       days[start:end],
				Streak:     rt.ctrl.Streak(),
				Total:      p.Total,
				Page:       p.Current,
				PerPage:    p.PerPage,
				TotalPages: p.TotalPages,
			})
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyPreset, "preset", "p", "", "Range preset: week, month, year, last7days, last30days, last90days, all")
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "Page number")
	historyCmd.Flags().IntVar(&historyPerPage, "per-page", 14, "Days per page")
}
