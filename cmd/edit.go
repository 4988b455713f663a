package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/tracker"
)

var (
	editTitle    string
	editCategory string
	editTarget   int
)

var editCmd = &cobra.Command{
	Use:   "edit <task>",
	Short: "Edit a task's title, category or target",
	Long: `The task is its position in "amal list", its id or the end of its id.

Examples:
	amal edit 2 --title "write the final report"
	amal edit 2 --category study
	amal edit 2 --category none        # clear the category
	amal edit 3f9a --target 6`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch tracker.TaskPatch
		if cmd.Flags().Changed("title") {
			t := strings.TrimSpace(editTitle)
			patch.Title = &t
		}
		if cmd.Flags().Changed("category") {
			cat, clearCat, err := parseCategory(editCategory)
			if err != nil {
				return err
			}
			patch.Category, patch.ClearCategory = cat, clearCat
		}
		if cmd.Flags().Changed("target") {
			patch.TargetSessions = &editTarget
		}
		if patch == (tracker.TaskPatch{}) {
			return fmt.Errorf("nothing to update - specify at least one field to edit")
		}

		return withRuntime(cmd, func(rt *runtime) error {
			day, _, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			if _, err := rt.ctrl.Dispatch(tracker.UpdateTask{ID: task.ID, Day: day, Patch: patch}); err != nil {
				return err
			}
			fmt.Printf("Updated %q\n", task.Title)
			return nil
		})
	},
}

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category, or none")
	editCmd.Flags().IntVarP(&editTarget, "target", "n", 0, "New target sessions (0-16)")
}
