package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// Log file rotation; empty LogFile logs to stderr only
	LogFile           string
	LogFileMaxMB      int
	LogFileMaxBackups int
	LogFileMaxAgeDays int
	// API
	Port        string
	Storage     string
	DatabaseURL string
	SQLitePath  string
	// Source
	Provider          string
	SourceURLTemplate string
	SourceTimeout     time.Duration
	SourceUserAgent   string
	SourceRPS         int
	// Scheduler
	ScheduleFile string
	CronDaily    string
	CronWeekly   string
	CronMonthly  string
	TZName       string
	TrackedPairs string
	RunOnStart   bool
	// Retry
	RetryAttempts   int
	RetryBaseDelay  time.Duration
	RetryMultiplier float64
	RetryMaxDelay   time.Duration
	// Redis (idempotency, pair lock)
	LockBackend        string
	IdempotencyBackend string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisTTL           time.Duration
	PairLockTTL        time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func atofDef(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func millis(key string, def int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(def)), def)) * time.Millisecond
}

// Load reads environment variables and applies defaults. When
// SCHEDULE_FILE names a YAML file its values fill scheduler settings that
// are not set in the environment; a file that cannot be read or parsed is
// an error. The returned Config always carries the env values and defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		LogFileMaxMB:       atoiDef(getEnv("LOG_FILE_MAX_MB", "100"), 100),
		LogFileMaxBackups:  atoiDef(getEnv("LOG_FILE_MAX_BACKUPS", "5"), 5),
		LogFileMaxAgeDays:  atoiDef(getEnv("LOG_FILE_MAX_AGE_DAYS", "30"), 30),
		Port:               getEnv("PORT", "8080"),
		Storage:            getEnv("STORAGE", "pg"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SQLitePath:         getEnv("SQLITE_PATH", "data/fxhistory.db"),
		Provider:           getEnv("PROVIDER", "yahoo"),
		SourceURLTemplate:  getEnv("SOURCE_URL_TEMPLATE", DefaultSourceURLTemplate),
		SourceTimeout:      millis("SOURCE_TIMEOUT_MS", 30000),
		SourceUserAgent:    getEnv("SOURCE_USER_AGENT", "Mozilla/5.0"),
		SourceRPS:          atoiDef(getEnv("SOURCE_RPS", "0"), 0),
		ScheduleFile:       getEnv("SCHEDULE_FILE", ""),
		CronDaily:          getEnv("CRON_DAILY", ""),
		CronWeekly:         getEnv("CRON_WEEKLY", ""),
		CronMonthly:        getEnv("CRON_MONTHLY", ""),
		TZName:             getEnv("TZ_NAME", ""),
		TrackedPairs:       getEnv("TRACKED_PAIRS", ""),
		RunOnStart:         getEnv("RUN_ON_START", "") == "1",
		RetryAttempts:      atoiDef(getEnv("RETRY_ATTEMPTS", "3"), 3),
		RetryBaseDelay:     millis("RETRY_BASE_DELAY_MS", 5000),
		RetryMultiplier:    atofDef(getEnv("RETRY_MULTIPLIER", "2"), 2),
		RetryMaxDelay:      millis("RETRY_MAX_DELAY_MS", 20000),
		LockBackend:        getEnv("LOCK_BACKEND", "local"),
		IdempotencyBackend: getEnv("IDEMPOTENCY_BACKEND", "none"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisTTL:           millis("IDEMPOTENCY_TTL_MS", 86400000),
		PairLockTTL:        millis("PAIR_LOCK_TTL_MS", 10000),
	}
	var err error
	if cfg.ScheduleFile != "" {
		var sf ScheduleFile
		if sf, err = LoadScheduleFile(cfg.ScheduleFile); err == nil {
			sf.applyTo(&cfg)
		} else {
			err = fmt.Errorf("SCHEDULE_FILE %s: %w", cfg.ScheduleFile, err)
		}
	}
	applyScheduleDefaults(&cfg)
	return cfg, err
}

const (
	DefaultSourceURLTemplate = "https://finance.yahoo.com/quote/%s/history/?period1=%d&period2=%d&frequency=%s"
	DefaultCronDaily         = "0 5 0 * * *"
	DefaultCronWeekly        = "0 15 0 * * MON"
	DefaultCronMonthly       = "0 30 0 1 * *"
	DefaultTrackedPairs      = "GBP/INR,AED/INR"
	DefaultTZName            = "UTC"
)

func applyScheduleDefaults(cfg *Config) {
	if cfg.CronDaily == "" {
		cfg.CronDaily = DefaultCronDaily
	}
	if cfg.CronWeekly == "" {
		cfg.CronWeekly = DefaultCronWeekly
	}
	if cfg.CronMonthly == "" {
		cfg.CronMonthly = DefaultCronMonthly
	}
	if cfg.TrackedPairs == "" {
		cfg.TrackedPairs = DefaultTrackedPairs
	}
	if cfg.TZName == "" {
		cfg.TZName = DefaultTZName
	}
}
