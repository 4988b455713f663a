package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/tracker"
)

// startCmd begins a focus session. Only one session may run at a time.
var startCmd = &cobra.Command{
	Use:   "start <task>",
	Short: "Start a focus session on a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			day, _, task, err := pickTask(rt, args[0])
			if err != nil {
				return err
			}
			if tracker.Running(task, rt.ctrl.Now(), rt.ctrl.SessionLength()) {
				return fmt.Errorf("%q already has a running session", task.Title)
			}
			_, err = rt.ctrl.Dispatch(tracker.UpdateSession{TaskID: task.ID, Day: day})
			if errors.Is(err, tracker.ErrTaskActive) {
				if _, active, ok := rt.ctrl.Active(); ok {
					return fmt.Errorf("%w: %q (stop it first with \"amal stop\")", err, active.Title)
				}
			}
			if err != nil {
				return err
			}
			now := rt.ctrl.Now()
			fmt.Printf("Focus session on %q started at %s, ends at %s\n",
				task.Title, now.Format(time.Kitchen), now.Add(rt.ctrl.SessionLength()).Format(time.Kitchen))
			return nil
		})
	},
}
