package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ReminderConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Time     string   `mapstructure:"time"`     // "17:00"
	Workdays []string `mapstructure:"workdays"` // ["Mon","Tue","Wed","Thu","Fri"]
	Holidays []string `mapstructure:"holidays"` // ["2025-01-26", "2025-08-15"]
}

type FocusConfig struct {
	SessionMinutes int           `mapstructure:"session_minutes"`
	SaveDelay      time.Duration `mapstructure:"save_delay"`
}

type StreakConfig struct {
	RestDays []string `mapstructure:"rest_days"` // ["Sat","Sun"]
}

type NotificationsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type EncryptionConfig struct {
	// PassphraseEnv names the environment variable holding the passphrase.
	// Encryption is off when that variable is empty.
	PassphraseEnv string `mapstructure:"passphrase_env"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type Config struct {
	Theme         string              `mapstructure:"theme"`
	Timezone      string              `mapstructure:"timezone"` // e.g. "Asia/Jakarta" (optional)
	DataDir       string              `mapstructure:"data_dir"`
	Focus         FocusConfig         `mapstructure:"focus"`
	Streak        StreakConfig        `mapstructure:"streak"`
	Reminder      ReminderConfig      `mapstructure:"reminder"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Encryption    EncryptionConfig    `mapstructure:"encryption"`
	Server        ServerConfig        `mapstructure:"server"`
}

func Default() Config {
	return Config{
		Theme: "default",
		Focus: FocusConfig{
			SessionMinutes: 25,
			SaveDelay:      3 * time.Second,
		},
		Streak: StreakConfig{RestDays: []string{"Sat", "Sun"}},
		Reminder: ReminderConfig{
			Enabled:  true,
			Time:     "17:00",
			Workdays: []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			Holidays: []string{},
		},
		Notifications: NotificationsConfig{Enabled: true},
		Encryption:    EncryptionConfig{PassphraseEnv: "AMAL_PASSPHRASE"},
		Server:        ServerConfig{Addr: "127.0.0.1:8787"},
	}
}

func xdgConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "amal")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads ~/.config/amal/config.yaml. A missing file yields the defaults.
func Load() (Config, error) {
	path, err := xdgConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, layered over the defaults and AMAL_*
// environment variables (AMAL_FOCUS_SESSION_MINUTES, AMAL_DATA_DIR, ...).
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix("amal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// defaults
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("focus.session_minutes", cfg.Focus.SessionMinutes)
	v.SetDefault("focus.save_delay", cfg.Focus.SaveDelay)
	v.SetDefault("streak.rest_days", cfg.Streak.RestDays)
	v.SetDefault("reminder.enabled", cfg.Reminder.Enabled)
	v.SetDefault("reminder.time", cfg.Reminder.Time)
	v.SetDefault("reminder.workdays", cfg.Reminder.Workdays)
	v.SetDefault("reminder.holidays", cfg.Reminder.Holidays)
	v.SetDefault("notifications.enabled", cfg.Notifications.Enabled)
	v.SetDefault("encryption.passphrase_env", cfg.Encryption.PassphraseEnv)
	v.SetDefault("server.addr", cfg.Server.Addr)

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			return cfg, fmt.Errorf("config read: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}

	cfg.Reminder.Workdays = normalizeDays(cfg.Reminder.Workdays)
	cfg.Streak.RestDays = normalizeDays(cfg.Streak.RestDays)
	if cfg.Focus.SessionMinutes <= 0 {
		cfg.Focus.SessionMinutes = Default().Focus.SessionMinutes
	}
	if cfg.Focus.SaveDelay < 0 {
		cfg.Focus.SaveDelay = 0
	}
	return cfg, nil
}

// normalizeDays maps "monday", " MON" etc. to "Mon" and drops junk.
func normalizeDays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if len(d) < 3 {
			continue
		}
		out = append(out, strings.ToUpper(d[:1])+d[1:3])
	}
	return out
}

func (c Config) Location() *time.Location {
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}

// SessionLength is the configured focus interval.
func (c Config) SessionLength() time.Duration {
	return time.Duration(c.Focus.SessionMinutes) * time.Minute
}

// Weekdays converts day abbreviations into time.Weekday values.
func Weekdays(days []string) []time.Weekday {
	var out []time.Weekday
	for _, d := range days {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if wd.String()[:3] == d {
				out = append(out, wd)
			}
		}
	}
	return out
}

// DataPath resolves the data directory, defaulting to ~/.local/share/amal.
func (c Config) DataPath() (string, error) {
	dir := strings.TrimSpace(c.DataDir)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "share", "amal")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// Passphrase returns the at-rest encryption passphrase, or "" when disabled.
func (c Config) Passphrase() string {
	if c.Encryption.PassphraseEnv == "" {
		return ""
	}
	return os.Getenv(c.Encryption.PassphraseEnv)
}
