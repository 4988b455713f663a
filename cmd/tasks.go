package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/tracker"
	"github.com/ramanasai/amal/internal/utils"
)

var copyTo string

var rmCmd = &cobra.Command{
	Use:     "rm <task>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			day, _, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			if _, err := rt.ctrl.Dispatch(tracker.DeleteTask{ID: task.ID, Day: day}); err != nil {
				return err
			}
			fmt.Printf("Deleted %q\n", task.Title)
			return nil
		})
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <task>",
	Short: "Copy a task to today (or --to) as a fresh pending task",
	Long: `Examples:
	amal copy 2 --day yesterday            # carry yesterday's task over
	amal copy 2 --to tomorrow`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			day, _, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			to, err := utils.ParseDay(copyTo, rt.ctrl.Now())
			if err != nil {
				return err
			}
			if _, err := rt.ctrl.Dispatch(tracker.CopyTask{ID: task.ID, From: day, To: to}); err != nil {
				return err
			}
			fmt.Printf("Copied %q to %s\n", task.Title, to)
			return nil
		})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <task> <position>",
	Short: "Move a task to a new 1-based position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		return withRuntime(cmd, func(rt *runtime) error {
			day, from, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			if _, err := rt.ctrl.Dispatch(tracker.MoveTask{Day: day, From: from, To: pos - 1}); err != nil {
				return err
			}
			fmt.Printf("Moved %q\n", task.Title)
			return nil
		})
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <task>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskStatus(cmd, args[0], tracker.StatusCompleted)
	},
}

var undoneCmd = &cobra.Command{
	Use:   "undone <task>",
	Short: "Return a completed task to pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskStatus(cmd, args[0], tracker.StatusPending)
	},
}

func setTaskStatus(cmd *cobra.Command, ref string, st tracker.Status) error {
	return withRuntime(cmd, func(rt *runtime) error {
		day, _, task, err := pickTask(rt, ref)
		if err != nil {
			return err
		}
		if _, err := rt.ctrl.Dispatch(tracker.UpdateTask{ID: task.ID, Day: day, Patch: tracker.TaskPatch{Status: &st}}); err != nil {
			return err
		}
		fmt.Printf("%q is now %s\n", task.Title, st)
		return nil
	})
}

var targetCmd = &cobra.Command{
	Use:   "target <task> <sessions>",
	Short: "Set how many focus sessions a task should take (0-16)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid session count %q", args[1])
		}
		return withRuntime(cmd, func(rt *runtime) error {
			day, _, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			if _, err := rt.ctrl.Dispatch(tracker.UpdateTask{ID: task.ID, Day: day, Patch: tracker.TaskPatch{TargetSessions: &n}}); err != nil {
				return err
			}
			fmt.Printf("%q: target %d sessions\n", task.Title, n)
			return nil
		})
	},
}

func init() {
	copyCmd.Flags().StringVar(&copyTo, "to", "", "Destination day (default today)")
}
