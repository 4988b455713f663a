package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Println(version.GetShortVersion())
			return
		}
		fmt.Println(version.GetVersionInfo())
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "Print only the version number")
}
