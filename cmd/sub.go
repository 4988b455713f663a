package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/tracker"
)

var (
	subCategory     string
	subEditTitle    string
	subEditCategory string
	subCheck        bool
	subUncheck      bool
)

var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Manage a task's checklist",
	Long: `Examples:
	amal sub add 1 outline the intro
	amal sub edit 1 2 --check
	amal sub move 1 3 1
	amal sub rm 1 2`,
}

var subAddCmd = &cobra.Command{
	Use:   "add <task> <title>",
	Short: "Append a subtask",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, _, err := parseCategory(subCategory)
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(rt *runtime) error {
			day, _, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			title := strings.Join(args[1:], " ")
			if _, err := rt.ctrl.Dispatch(tracker.AddSubTask{TaskID: task.ID, Day: day, Title: title, Category: cat}); err != nil {
				return err
			}
			fmt.Printf("Added subtask %q to %q\n", title, task.Title)
			return nil
		})
	},
}

var subEditCmd = &cobra.Command{
	Use:   "edit <task> <subtask>",
	Short: "Rename, recategorize or (un)check a subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch tracker.SubTaskPatch
		if cmd.Flags().Changed("title") {
			t := strings.TrimSpace(subEditTitle)
			patch.Title = &t
		}
		if cmd.Flags().Changed("category") {
			cat, clearCat, err := parseCategory(subEditCategory)
			if err != nil {
				return err
			}
			patch.Category, patch.ClearCategory = cat, clearCat
		}
		if subCheck && subUncheck {
			return fmt.Errorf("--check and --uncheck are mutually exclusive")
		}
		if subCheck || subUncheck {
			checked := subCheck
			patch.Checked = &checked
		}
		if patch == (tracker.SubTaskPatch{}) {
			return fmt.Errorf("nothing to update - specify at least one field to edit")
		}

		return withRuntime(cmd, func(rt *runtime) error {
			day, _, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			_, st, err := resolveSubTask(task, args[1])
			if err != nil {
				return err
			}
			if _, err := rt.ctrl.Dispatch(tracker.UpdateSubTask{TaskID: task.ID, Day: day, SubID: st.ID, Patch: patch}); err != nil {
				return err
			}
			fmt.Printf("Updated subtask %q\n", st.Title)
			return nil
		})
	},
}

var subRmCmd = &cobra.Command{
	Use:   "rm <task> <subtask>",
	Short: "Delete a subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			day, _, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			_, st, err := resolveSubTask(task, args[1])
			if err != nil {
				return err
			}
			if _, err := rt.ctrl.Dispatch(tracker.DeleteSubTask{TaskID: task.ID, Day: day, SubID: st.ID}); err != nil {
				return err
			}
			fmt.Printf("Deleted subtask %q\n", st.Title)
			return nil
		})
	},
}

var subMoveCmd = &cobra.Command{
	Use:   "move <task> <subtask> <position>",
	Short: "Move a subtask to a new 1-based position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[2])
		}
		return withRuntime(cmd, func(rt *runtime) error {
			day, _, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			from, st, err := resolveSubTask(task, args[1])
			if err != nil {
				return err
			}
			if _, err := rt.ctrl.Dispatch(tracker.MoveSubTask{TaskID: task.ID, Day: day, From: from, To: pos - 1}); err != nil {
				return err
			}
			fmt.Printf("Moved subtask %q\n", st.Title)
			return nil
		})
	},
}

func init() {
	subAddCmd.Flags().StringVarP(&subCategory, "category", "c", "", "Category")
	subEditCmd.Flags().StringVarP(&subEditTitle, "title", "t", "", "New title")
	subEditCmd.Flags().StringVarP(&subEditCategory, "category", "c", "", "New category, or none")
	subEditCmd.Flags().BoolVar(&subCheck, "check", false, "Tick the subtask")
	subEditCmd.Flags().BoolVar(&subUncheck, "uncheck", false, "Untick the subtask")

	subCmd.AddCommand(subAddCmd, subEditCmd, subRmCmd, subMoveCmd)
}
