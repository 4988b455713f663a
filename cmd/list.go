package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/utils"
)

var (
	listPreset string
	listNoSubs bool
	listNoIDs  bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the day's plan",
	Long: `Examples:
	amal list                          # today
	amal list --day yesterday          # another day
	amal list --preset week            # every recorded day this week
	amal list --format table           # table format
	amal list -f json                  # machine readable`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			r, err := rt.renderer()
			if err != nil {
				return err
			}
			cfg := r.Config()
			cfg.ShowSubTasks = !listNoSubs
			cfg.ShowID = !listNoIDs

			days, err := listDays(rt)
			if err != nil {
				return err
			}
			now := rt.ctrl.Now()
			for _, day := range days {
				out, err := r.RenderDay(utils.DayView{
					Day:     day,
					Tasks:   rt.ctrl.Day(day),
					Summary: rt.ctrl.Summary(day),
				}, now)
				if err != nil {
					return err
				}
				fmt.Print(out)
			}
			return nil
		})
	},
}

func init() {
	listCmd.Flags().StringVarP(&listPreset, "preset", "p", "", "Range preset: today, week, month, year, last7days, last30days, last90days, all")
	listCmd.Flags().BoolVar(&listNoSubs, "no-subtasks", false, "Hide subtasks")
	listCmd.Flags().BoolVar(&listNoIDs, "no-ids", false, "Hide task ids")
}

// listDays is the --day, or every recorded day inside --preset.
func listDays(rt *runtime) ([]string, error) {
	if listPreset == "" {
		day, err := rt.day()
		if err != nil {
			return nil, err
		}
		return []string{day}, nil
	}
	from, to, err := utils.DayRange(listPreset, rt.ctrl.Now())
	if err != nil {
		return nil, err
	}
	var days []string
	for _, d := range rt.ctrl.State().Days() {
		if utils.InRange(d, from, to) {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no recorded days in %s", listPreset)
	}
	return days, nil
}
