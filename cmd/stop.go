package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/tracker"
	"github.com/ramanasai/amal/internal/utils"
)

var stopKeep bool

var stopCmd = &cobra.Command{
	Use:   "stop [task]",
	Short: "Stop the running focus session",
	Long: `Without --keep the session is discarded, as if it never started.
With --keep the session stays in the task's history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			var (
				day  string
				task tracker.Task
			)
			if len(args) == 1 {
				var err error
				if day, _, task, err = pickTask(rt, args[0]); err != nil {
					return err
				}
			} else {
				var ok bool
				if day, task, ok = rt.ctrl.Active(); !ok {
					return fmt.Errorf("no running session")
				}
			}

			now, length := rt.ctrl.Now(), rt.ctrl.SessionLength()
			if !tracker.Running(task, now, length) {
				return fmt.Errorf("%q has no running session", task.Title)
			}
			elapsed := length - tracker.Remaining(task, now, length)

			var a tracker.Action = tracker.UpdateSession{TaskID: task.ID, Day: day, Stamp: task.LastSession()}
			if stopKeep {
				a = tracker.CompleteSession{TaskID: task.ID, Day: day}
			}
			if _, err := rt.ctrl.Dispatch(a); err != nil {
				return err
			}
			if stopKeep {
				fmt.Printf("Stopped %q after %s, session kept\n", task.Title, utils.FormatDuration(elapsed))
			} else {
				fmt.Printf("Cancelled session on %q\n", task.Title)
			}
			return nil
		})
	},
}

func init() {
	stopCmd.Flags().BoolVarP(&stopKeep, "keep", "k", false, "Keep the session in the task's history")
}
