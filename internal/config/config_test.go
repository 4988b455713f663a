package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Focus.SessionMinutes)
	assert.Equal(t, 25*time.Minute, cfg.SessionLength())
	assert.Equal(t, 3*time.Second, cfg.Focus.SaveDelay)
	assert.Equal(t, []string{"Sat", "Sun"}, cfg.Streak.RestDays)
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Addr)
	assert.Equal(t, "AMAL_PASSPHRASE", cfg.Encryption.PassphraseEnv)
	assert.True(t, cfg.Notifications.Enabled)
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
theme: dark
timezone: Asia/Jakarta
focus:
  session_minutes: 50
  save_delay: 500ms
streak:
  rest_days: [friday]
reminder:
  time: "08:30"
  workdays: [monday, TUE]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, 50*time.Minute, cfg.SessionLength())
	assert.Equal(t, 500*time.Millisecond, cfg.Focus.SaveDelay)
	assert.Equal(t, []string{"Fri"}, cfg.Streak.RestDays)
	assert.Equal(t, []string{"Mon", "Tue"}, cfg.Reminder.Workdays)
	assert.Equal(t, "08:30", cfg.Reminder.Time)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	t.Setenv("AMAL_SERVER_ADDR", "0.0.0.0:9000")
	t.Setenv("AMAL_FOCUS_SESSION_MINUTES", "30")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Focus.SessionMinutes)
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("focus: [unclosed"), 0o600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestWeekdays(t *testing.T) {
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, Weekdays([]string{"Sat", "Sun"}))
	assert.Empty(t, Weekdays([]string{"Xyz"}))
}

func TestPassphrase(t *testing.T) {
	cfg := Default()
	t.Setenv("AMAL_PASSPHRASE", "")
	assert.Empty(t, cfg.Passphrase())

	t.Setenv("AMAL_PASSPHRASE", "open sesame")
	assert.Equal(t, "open sesame", cfg.Passphrase())
}

func TestDataPath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested", "data")
	dir, err := cfg.DataPath()
	require.NoError(t, err)
	assert.DirExists(t, dir)
}
