package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/ui"
)

// tuiCmd launches the Bubble Tea planner on the --day.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive planner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			day, err := rt.day()
			if err != nil {
				return err
			}
			rt.startReminder(cmd.Context())
			theme := ui.ThemeByName(rt.cfg.Theme)
			if noColorFlag {
				theme = ui.MonoTheme
			}
			return ui.Run(rt.ctrl, ui.Options{Theme: theme, Location: rt.loc, Day: day})
		})
	},
}
