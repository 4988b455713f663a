package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/config"
	"github.com/ramanasai/amal/internal/encryption"
	"github.com/ramanasai/amal/internal/store"
)

var (
	resetTasks  bool
	resetHabits bool
	resetAll    bool
	resetYes    bool
)

// resetCmd works on the raw store so it also runs when the data is locked
// behind a forgotten passphrase.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe stored tasks, habits or everything",
	Long: `Without --yes only lists what would be removed.

Examples:
	amal reset                 # list stored keys
	amal reset --habits --yes
	amal reset --all --yes     # also forgets the encryption salt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dir, err := cfg.DataPath()
		if err != nil {
			return fmt.Errorf("data dir: %w", err)
		}
		db, err := store.Open(filepath.Join(dir, store.FileName))
		if err != nil {
			return err
		}
		defer db.Close()

		keys, err := resetTargets(cmd.Context(), db, resetTasks, resetHabits, resetAll)
		if err != nil {
			return err
		}
		if !resetYes {
			if len(keys) == 0 {
				fmt.Println("nothing selected; stored keys:")
				all, err := db.Keys(cmd.Context())
				if err != nil {
					return err
				}
				for _, k := range all {
					fmt.Println("  " + k)
				}
				return nil
			}
			for _, k := range keys {
				fmt.Printf("would remove %s\n", k)
			}
			fmt.Println("re-run with --yes to remove")
			return nil
		}
		return wipe(cmd.Context(), db, dir, keys, resetAll)
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetTasks, "tasks", false, "Remove every day's tasks")
	resetCmd.Flags().BoolVar(&resetHabits, "habits", false, "Remove habits and their history")
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "Remove everything, including the encryption salt")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Actually remove")
}

// resetTargets returns the stored keys selected by the flags, in store order.
func resetTargets(ctx context.Context, db *store.Store, tasks, habits, all bool) ([]string, error) {
	stored, err := db.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range stored {
		if all || (tasks && k == store.KeyTasks) || (habits && k == store.KeyHabits) {
			out = append(out, k)
		}
	}
	return out, nil
}

// wipe deletes keys and, with clearSalt, the salt in dataDir so the next
// passphrase starts fresh.
func wipe(ctx context.Context, db *store.Store, dataDir string, keys []string, clearSalt bool) error {
	for _, k := range keys {
		if err := db.Delete(ctx, k); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", k)
	}
	if clearSalt {
		if err := encryption.ClearSalt(dataDir); err != nil {
			return fmt.Errorf("clear salt: %w", err)
		}
	}
	return nil
}
