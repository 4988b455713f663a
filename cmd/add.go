package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/tracker"
)

var (
	addCategory string
	addTarget   int
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task to the day's plan",
	Long: `Examples:
	amal add write report                       # today
	amal add -c work -n 4 write report          # category and 4 target sessions
	amal add --day tomorrow call the bank       # plan ahead`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, _, err := parseCategory(addCategory)
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(rt *runtime) error {
			day, err := rt.day()
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			if _, err := rt.ctrl.Dispatch(tracker.AddTask{Day: day, Title: title, Category: cat, Target: addTarget}); err != nil {
				return err
			}
			tasks := rt.ctrl.Day(day)
			added := tasks[len(tasks)-1]
			fmt.Printf("Added #%d %q on %s (%s)\n", len(tasks), added.Title, day, added.ID)
			return nil
		})
	},
}

func init() {
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category: "+strings.Join(tracker.PaletteLabels(), ", "))
	addCmd.Flags().IntVarP(&addTarget, "target", "n", 0, "Target focus sessions (0-16)")
}

// parseCategory maps a --category value onto the palette. "none" clears.
func parseCategory(label string) (cat *tracker.Category, clearCat bool, err error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "":
		return nil, false, nil
	case "none", "-":
		return nil, true, nil
	}
	c, err := tracker.LookupCategory(label)
	if err != nil {
		return nil, false, err
	}
	return &c, false, nil
}

// pickTask resolves a task reference on the --day.
func pickTask(rt *runtime, ref string) (string, int, tracker.Task, error) {
	day, err := rt.day()
	if err != nil {
		return "", -1, tracker.Task{}, err
	}
	i, t, err := resolveTask(rt.ctrl.Day(day), ref)
	if err != nil {
		return "", -1, tracker.Task{}, fmt.Errorf("%s: %w", day, err)
	}
	return day, i, t, nil
}
