package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/config"
	httpserver "fxhistory-service/internal/infrastructure/http"
	"fxhistory-service/internal/infrastructure/provider"
	redisstore "fxhistory-service/internal/infrastructure/redis"
	"fxhistory-service/internal/infrastructure/worker"
)

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Storage:            "sqlite",
		SQLitePath:         filepath.Join(t.TempDir(), "fx.db"),
		Provider:           "fake",
		IdempotencyBackend: "none",
		LockBackend:        "local",
		CronDaily:          config.DefaultCronDaily,
		CronWeekly:         config.DefaultCronWeekly,
		CronMonthly:        config.DefaultCronMonthly,
		TrackedPairs:       config.DefaultTrackedPairs,
		TZName:             "UTC",
		RetryAttempts:      3,
	}
}

func TestBuildRepos_Sqlite(t *testing.T) {
	repos, cleanup, err := BuildRepos(context.Background(), baseConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	require.NoError(t, repos.Ping(context.Background()))
}

func TestBuildRepos_Errors(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage = "pg"
	_, _, err := BuildRepos(context.Background(), cfg, zap.NewNop())
	require.ErrorIs(t, err, ErrMissingDBURL)

	cfg.Storage = "memory"
	_, _, err = BuildRepos(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestBuildRedis(t *testing.T) {
	cfg := baseConfig(t)
	svc, cleanup, err := BuildRedis(cfg)
	require.NoError(t, err)
	cleanup()
	require.IsType(t, application.NoopIdempotency{}, svc.Idem)
	require.IsType(t, &application.LocalPairLocker{}, svc.Locker)

	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()
	cfg.IdempotencyBackend, cfg.LockBackend = "redis", "redis"
	svc, cleanup, err = BuildRedis(cfg)
	require.NoError(t, err)
	defer cleanup()
	require.IsType(t, &redisstore.Store{}, svc.Idem)
	require.IsType(t, &redisstore.PairLock{}, svc.Locker)

	cfg.LockBackend = "zookeeper"
	_, _, err = BuildRedis(cfg)
	require.Error(t, err)
}

func TestBuildSource(t *testing.T) {
	cfg := baseConfig(t)
	src, err := BuildSource(cfg)
	require.NoError(t, err)
	require.IsType(t, &provider.Fake{}, src)

	cfg.Provider = "yahoo"
	cfg.SourceURLTemplate = config.DefaultSourceURLTemplate
	src, err = BuildSource(cfg)
	require.NoError(t, err)
	require.IsType(t, &provider.YahooFetcher{}, src)

	cfg.Provider = "bloomberg"
	_, err = BuildSource(cfg)
	require.Error(t, err)
}

func TestBuildScheduler(t *testing.T) {
	cfg := baseConfig(t)
	cfg.RunOnStart = true
	s, err := BuildScheduler(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, s.Pairs, 2)
	require.True(t, s.RunOnStart)
	require.Len(t, s.Cron.Entries(), 3)

	bad := cfg
	bad.TZName = "Mars/Olympus"
	_, err = BuildScheduler(bad, nil, zap.NewNop())
	require.Error(t, err)

	bad = cfg
	bad.TrackedPairs = "GBPINR"
	_, err = BuildScheduler(bad, nil, zap.NewNop())
	require.Error(t, err)

	bad = cfg
	bad.CronDaily = "not a cron"
	_, err = BuildScheduler(bad, nil, zap.NewNop())
	require.Error(t, err)
}

func TestInitAPI_ServesReadiness(t *testing.T) {
	srv, cleanup, err := InitAPI(context.Background(), baseConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	rec := httptest.NewRecorder()
	httpserver.NewRouter(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestInitWorker(t *testing.T) {
	w, cleanup, err := InitWorker(context.Background(), baseConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	require.IsType(t, &worker.Scheduler{}, w)
}

func TestInitAPI_UnknownTimeZone(t *testing.T) {
	cfg := baseConfig(t)
	cfg.TZName = "Mars/Olympus"
	_, _, err := InitAPI(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "TZ_NAME")
}
