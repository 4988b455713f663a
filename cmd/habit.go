package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/habit"
	"github.com/ramanasai/amal/internal/tracker"
)

var (
	habitColor string
	habitName  string
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Track daily habits beside the plan",
	Long: `Examples:
	amal habit add "read quran" --color "#22C55E"
	amal habit check 1                 # toggle today
	amal habit check 1 --day yesterday
	amal habit ls`,
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a habit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHabits(cmd, func(rt *runtime, b habit.Book) (habit.Book, error) {
			next, h, err := b.Add("", strings.Join(args, " "), habitColor, rt.ctrl.Now())
			if err != nil {
				return b, err
			}
			fmt.Printf("Added habit %q\n", h.Name)
			return next, nil
		})
	},
}

var habitCheckCmd = &cobra.Command{
	Use:   "check <habit>",
	Short: "Toggle a habit for the --day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHabits(cmd, func(rt *runtime, b habit.Book) (habit.Book, error) {
			h, err := resolveHabit(b, args[0])
			if err != nil {
				return b, err
			}
			day, err := rt.day()
			if err != nil {
				return b, err
			}
			next, checked, err := b.Toggle(h.ID, day)
			if err != nil {
				return b, err
			}
			if checked {
				fmt.Printf("✓ %s on %s\n", h.Name, day)
			} else {
				fmt.Printf("○ %s unchecked on %s\n", h.Name, day)
			}
			return next, nil
		})
	},
}

var habitRenameCmd = &cobra.Command{
	Use:   "rename <habit>",
	Short: "Rename a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHabits(cmd, func(rt *runtime, b habit.Book) (habit.Book, error) {
			h, err := resolveHabit(b, args[0])
			if err != nil {
				return b, err
			}
			return b.Rename(h.ID, habitName)
		})
	},
}

var habitRmCmd = &cobra.Command{
	Use:   "rm <habit>",
	Short: "Delete a habit and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHabits(cmd, func(rt *runtime, b habit.Book) (habit.Book, error) {
			h, err := resolveHabit(b, args[0])
			if err != nil {
				return b, err
			}
			next, err := b.Delete(h.ID)
			if err == nil {
				fmt.Printf("Deleted habit %q\n", h.Name)
			}
			return next, err
		})
	},
}

var habitLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List habits with the last week and streaks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHabits(cmd, func(rt *runtime, b habit.Book) (habit.Book, error) {
			r, err := rt.renderer()
			if err != nil {
				return b, err
			}
			st := r.Styles()
			if len(b) == 0 {
				fmt.Println(st.Meta.Render("no habits yet - add one with \"amal habit add\""))
				return b, nil
			}
			now := rt.ctrl.Now()
			for i, h := range b {
				name := h.Name
				if h.Color != "" && r.Config().Color {
					name = lipgloss.NewStyle().Foreground(lipgloss.Color(h.Color)).Render(name)
				}
				streak := h.Streak(now)
				fmt.Printf("%2d. %s %s  %s\n", i+1, lastWeek(h, now), name,
					st.Meta.Render(fmt.Sprintf("streak %d · best %d", streak.Current, streak.Longest)))
			}
			return b, nil
		})
	},
}

func init() {
	habitAddCmd.Flags().StringVar(&habitColor, "color", "", "Display color, e.g. #22C55E")
	habitRenameCmd.Flags().StringVar(&habitName, "name", "", "New name")
	_ = habitRenameCmd.MarkFlagRequired("name")

	habitCmd.AddCommand(habitAddCmd, habitCheckCmd, habitRenameCmd, habitRmCmd, habitLsCmd)
}

// withHabits loads the habit book, runs fn and saves what it returns when it
// changed anything.
func withHabits(cmd *cobra.Command, fn func(rt *runtime, b habit.Book) (habit.Book, error)) error {
	return withRuntime(cmd, func(rt *runtime) error {
		ctx := cmd.Context()
		b, err := rt.db.LoadHabits(ctx)
		if err != nil {
			return err
		}
		next, err := fn(rt, b)
		if err != nil {
			return err
		}
		if habitsEqual(b, next) {
			return nil
		}
		return rt.db.SaveHabits(ctx, next)
	})
}

func habitsEqual(a, b habit.Book) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name || strings.Join(a[i].Done, ",") != strings.Join(b[i].Done, ",") {
			return false
		}
	}
	return true
}

func resolveHabit(b habit.Book, ref string) (habit.Habit, error) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(b) {
		return b[n-1], nil
	}
	i, err := resolveID(len(b), ref, func(i int) string { return b[i].ID })
	if err != nil {
		return habit.Habit{}, fmt.Errorf("habit %w", err)
	}
	return b[i], nil
}

// lastWeek draws the past seven days, oldest first: ● done, · missed.
func lastWeek(h habit.Habit, now time.Time) string {
	var sb strings.Builder
	for i := 6; i >= 0; i-- {
		if h.Checked(tracker.DayKey(now.AddDate(0, 0, -i))) {
			sb.WriteString("●")
		} else {
			sb.WriteString("·")
		}
	}
	return sb.String()
}
