package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every day's tasks as JSON (or YAML)",
	Long: `Examples:
	amal export > backup.json
	amal export -o backup.json
	amal export --as yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			var (
				data []byte
				err  error
			)
			switch strings.ToLower(exportFormat) {
			case "", "json":
				data, err = rt.ctrl.Export()
			case "yaml", "yml":
				data, err = rt.ctrl.ExportYAML()
			default:
				return fmt.Errorf("unknown export format %q (json, yaml)", exportFormat)
			}
			if err != nil {
				return err
			}
			if exportOut == "" || exportOut == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(exportOut, data, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Exported %d days to %s\n", len(rt.ctrl.State()), exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Merge an exported JSON file into the plan",
	Long: `Tasks are matched by id: fields present in the file overwrite the
existing task, subtasks are merged, unknown tasks are appended. An invalid
file is rejected as a whole. Reads stdin when no file (or "-") is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(rt *runtime) error {
			before := len(rt.ctrl.State())
			if err := rt.ctrl.Import(data); err != nil {
				return err
			}
			if importDryRun {
				rt.ctrl.Discard()
				fmt.Printf("Valid. Would record %d days (%d new)\n", len(rt.ctrl.State()), len(rt.ctrl.State())-before)
				return nil
			}
			fmt.Printf("Imported. %d days recorded (%d new)\n", len(rt.ctrl.State()), len(rt.ctrl.State())-before)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "as", "json", "Export format: json, yaml")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to file instead of stdout")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and report without saving")
}
