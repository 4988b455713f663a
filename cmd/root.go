package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramanasai/amal/internal/app"
	"github.com/ramanasai/amal/internal/config"
	"github.com/ramanasai/amal/internal/encryption"
	"github.com/ramanasai/amal/internal/notify"
	"github.com/ramanasai/amal/internal/persist"
	"github.com/ramanasai/amal/internal/schedule"
	"github.com/ramanasai/amal/internal/store"
	"github.com/ramanasai/amal/internal/tracker"
	"github.com/ramanasai/amal/internal/utils"
)

var (
	dayFlag     string
	formatFlag  string
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "amal",
	Short:         "Daily plan & focus sessions",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dayFlag, "day", "D", "", "Day to work on: today, yesterday, mon, 3 days ago, 2025-03-03")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "Output format: default, table, json, csv, compact, quiet")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		addCmd, listCmd, editCmd, rmCmd, copyCmd, moveCmd, subCmd,
		startCmd, stopCmd, doneCmd, undoneCmd, targetCmd,
		statsCmd, historyCmd, searchCmd, exportCmd, importCmd,
		habitCmd, tuiCmd, serveCmd, resetCmd, versionCmd,
	)
}

// runtime is everything a command needs: config, the open database and
// the controller seeded from it.
type runtime struct {
	cfg      config.Config
	db       *store.Store
	ctrl     *app.Controller
	notifier notify.Notifier
	loc      *time.Location
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dir, err := cfg.DataPath()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	var opts []store.Option
	if pass := cfg.Passphrase(); pass != "" {
		enc, err := encryption.NewEncryptor(pass, dir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, store.WithSealer(enc))
	}
	db, err := store.Open(filepath.Join(dir, store.FileName), opts...)
	if err != nil {
		return nil, err
	}
	tasks, err := db.LoadTasks(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	var n notify.Notifier = notify.Discard{}
	if cfg.Notifications.Enabled {
		n = notify.Desktop{}
	}
	loc := cfg.Location()
	saver := persist.New[tracker.Store](cfg.Focus.SaveDelay, db.SaveTasks)
	ctrl := app.New(tasks,
		app.WithSaver(saver),
		app.WithNotifier(n),
		app.WithClock(func() time.Time { return time.Now().In(loc) }),
		app.WithSessionLength(cfg.SessionLength()),
		app.WithStreakOptions(tracker.StreakOptions{
			RestDays: config.Weekdays(cfg.Streak.RestDays),
			Holidays: cfg.Reminder.Holidays,
		}),
	)
	return &runtime{cfg: cfg, db: db, ctrl: ctrl, notifier: n, loc: loc}, nil
}

// Close flushes the pending write before closing the database.
func (rt *runtime) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := rt.ctrl.Close(ctx)
	if cerr := rt.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// withRuntime opens the runtime, runs fn and always flushes afterwards.
func withRuntime(cmd *cobra.Command, fn func(rt *runtime) error) (err error) {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(rt)
}

// day resolves --day against the configured timezone.
func (rt *runtime) day() (string, error) {
	return utils.ParseDay(dayFlag, rt.ctrl.Now())
}

func (rt *runtime) renderer() (*utils.Renderer, error) {
	f, err := utils.ParseFormat(formatFlag)
	if err != nil {
		return nil, err
	}
	rc := utils.DefaultRenderConfig()
	rc.Format = f
	rc.Location = rt.loc
	rc.SessionLength = rt.cfg.SessionLength()
	if noColorFlag {
		rc.Color = false
	}
	return utils.NewRenderer(rc), nil
}

// startReminder fires the daily reminder for as long as ctx lives.
func (rt *runtime) startReminder(ctx context.Context) {
	if os.Getenv("AMAL_NO_REMINDER") == "1" {
		return
	}
	go schedule.RunConfigured(ctx, rt.cfg, func() {
		pending := schedule.PendingToday(rt.ctrl.State(), rt.ctrl.Now())
		if pending == 0 {
			return
		}
		if err := rt.notifier.Reminder(pending); err != nil {
			log.Printf("reminder: %v", err)
		}
	})
}
