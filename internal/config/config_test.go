package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"CRON_DAILY", "CRON_WEEKLY", "CRON_MONTHLY", "TRACKED_PAIRS", "TZ_NAME", "SCHEDULE_FILE", "RETRY_ATTEMPTS", "SOURCE_TIMEOUT_MS"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultCronDaily, cfg.CronDaily)
	require.Equal(t, DefaultCronWeekly, cfg.CronWeekly)
	require.Equal(t, DefaultCronMonthly, cfg.CronMonthly)
	require.Equal(t, "GBP/INR,AED/INR", cfg.TrackedPairs)
	require.Equal(t, "UTC", cfg.TZName)
	require.Equal(t, 3, cfg.RetryAttempts)
	require.Equal(t, 5*time.Second, cfg.RetryBaseDelay)
	require.Equal(t, 30*time.Second, cfg.SourceTimeout)
	require.Equal(t, "Mozilla/5.0", cfg.SourceUserAgent)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("RETRY_BASE_DELAY_MS", "10")
	t.Setenv("RETRY_MULTIPLIER", "1.5")
	t.Setenv("STORAGE", "sqlite")
	t.Setenv("RUN_ON_START", "1")
	t.Setenv("RETRY_MAX_DELAY_MS", "oops")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.RetryAttempts)
	require.Equal(t, 10*time.Millisecond, cfg.RetryBaseDelay)
	require.Equal(t, 1.5, cfg.RetryMultiplier)
	require.Equal(t, "sqlite", cfg.Storage)
	require.True(t, cfg.RunOnStart)
	require.Equal(t, 20*time.Second, cfg.RetryMaxDelay)
}

func TestLoad_ScheduleFileFillsUnsetValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timezone: Asia/Kolkata
cron:
  daily: "0 0 6 * * *"
  weekly: "0 0 6 * * SUN"
pairs: [USD/INR, EUR/INR]
`), 0o600))
	t.Setenv("SCHEDULE_FILE", path)
	t.Setenv("CRON_WEEKLY", "0 0 7 * * SAT")
	t.Setenv("CRON_DAILY", "")
	t.Setenv("CRON_MONTHLY", "")
	t.Setenv("TRACKED_PAIRS", "")
	t.Setenv("TZ_NAME", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Asia/Kolkata", cfg.TZName)
	require.Equal(t, "0 0 6 * * *", cfg.CronDaily)
	require.Equal(t, "0 0 7 * * SAT", cfg.CronWeekly)
	require.Equal(t, DefaultCronMonthly, cfg.CronMonthly)
	require.Equal(t, "USD/INR,EUR/INR", cfg.TrackedPairs)
}

func TestLoadScheduleFile_Errors(t *testing.T) {
	_, err := LoadScheduleFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cron: [unclosed"), 0o600))
	_, err = LoadScheduleFile(path)
	require.Error(t, err)
}

func TestLoad_BadScheduleFileIsAnError(t *testing.T) {
	for _, k := range []string{"CRON_DAILY", "CRON_WEEKLY", "CRON_MONTHLY", "TRACKED_PAIRS", "TZ_NAME"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte("daily: [unterminated"), 0o600))
	t.Setenv("SCHEDULE_FILE", path)

	cfg, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), path)
	require.Equal(t, DefaultCronDaily, cfg.CronDaily)

	t.Setenv("SCHEDULE_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.Error(t, err)
}
