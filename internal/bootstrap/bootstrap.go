package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/config"
	"fxhistory-service/internal/domain"
	infraconfig "fxhistory-service/internal/infrastructure/config"
	httpserver "fxhistory-service/internal/infrastructure/http"
	"fxhistory-service/internal/infrastructure/httpx"
	"fxhistory-service/internal/infrastructure/pg"
	"fxhistory-service/internal/infrastructure/provider"
	redisstore "fxhistory-service/internal/infrastructure/redis"
	"fxhistory-service/internal/infrastructure/report"
	"fxhistory-service/internal/infrastructure/sqlite"
	"fxhistory-service/internal/infrastructure/worker"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")

type Repos struct {
	Pairs application.PairRepo
	Rates application.RateRepo
	Ping  func(ctx context.Context) error
}

type Services struct {
	Idem   application.IdempotencyStore
	Locker application.PairLocker
}

// Components are the application services shared by both processes.
type Components struct {
	Registry  *application.PairRegistry
	Scraper   *application.Scraper
	Populator *application.Populator
	Forex     *application.ForexService
	Reports   *application.ReportService
}

func noop() {}

// BuildRepos builds repositories based on cfg.Storage ("pg" or "sqlite").
func BuildRepos(ctx context.Context, cfg config.Config, log *zap.Logger) (Repos, func(), error) {
	switch cfg.Storage {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Repos{}, noop, ErrMissingDBURL
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Repos{}, noop, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return Repos{}, noop, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return Repos{Pairs: pg.NewPairRepo(db), Rates: pg.NewRateRepo(db), Ping: db.Ping}, cleanup, nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return Repos{}, noop, err
		}
		cleanup := func() {
			log.Info("closing sqlite")
			_ = db.Close()
		}
		return Repos{Pairs: sqlite.NewPairRepo(db), Rates: sqlite.NewRateRepo(db), Ping: db.Ping}, cleanup, nil
	default:
		return Repos{}, noop, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

// BuildRedis builds the idempotency store and pair locker. A redis client is
// only created when one of them is configured to use it.
func BuildRedis(cfg config.Config) (Services, func(), error) {
	svc := Services{Idem: application.NoopIdempotency{}, Locker: application.NewLocalPairLocker()}
	useIdem, useLock := cfg.IdempotencyBackend == "redis", cfg.LockBackend == "redis"
	switch {
	case cfg.IdempotencyBackend != "redis" && cfg.IdempotencyBackend != "none":
		return Services{}, noop, fmt.Errorf("unsupported IDEMPOTENCY_BACKEND=%q", cfg.IdempotencyBackend)
	case cfg.LockBackend != "redis" && cfg.LockBackend != "local":
		return Services{}, noop, fmt.Errorf("unsupported LOCK_BACKEND=%q", cfg.LockBackend)
	case !useIdem && !useLock:
		return svc, noop, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if useIdem {
		svc.Idem = redisstore.New(rdb, cfg.RedisTTL)
	}
	if useLock {
		svc.Locker = redisstore.NewPairLock(rdb, cfg.PairLockTTL)
	}
	return svc, func() { _ = rdb.Close() }, nil
}

// BuildSource returns the history page fetcher selected by cfg.Provider.
func BuildSource(cfg config.Config) (application.SourceFetcher, error) {
	switch cfg.Provider {
	case "yahoo":
		client := &httpx.Client{
			HTTP:      &http.Client{Timeout: cfg.SourceTimeout},
			UserAgent: cfg.SourceUserAgent,
			Limiter:   httpx.NewLimiter(cfg.SourceRPS),
		}
		return provider.NewYahooFetcher(cfg.SourceURLTemplate, client), nil
	case "fake":
		return provider.NewFake(infraconfig.DefaultFakePrice), nil
	default:
		return nil, fmt.Errorf("unsupported PROVIDER=%q", cfg.Provider)
	}
}

// BuildComponents wires the application services. loc decides which
// calendar day is today for queries and reports.
func BuildComponents(repos Repos, svc Services, source application.SourceFetcher, loc *time.Location, log *zap.Logger) Components {
	registry := application.NewPairRegistry(repos.Pairs, svc.Locker)
	scraper := application.NewScraper(registry, source, provider.HistoryParser{}, repos.Rates, log)
	return Components{
		Registry:  registry,
		Scraper:   scraper,
		Populator: application.NewPopulator(scraper, svc.Idem, log),
		Forex:     application.NewForexService(registry, repos.Rates, application.WithLocation(loc)),
		Reports:   application.NewReportService(registry, repos.Rates, report.NewPDFRenderer("fxhistory-service", log), application.WithLocation(loc)),
	}
}

func RetryPolicy(cfg config.Config) application.RetryPolicy {
	return application.RetryPolicy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Multiplier:  cfg.RetryMultiplier,
		MaxDelay:    cfg.RetryMaxDelay,
	}
}

// BuildScheduler parses the tracked pairs and time zone and registers the
// three cron triggers.
func BuildScheduler(cfg config.Config, scraper worker.PairScraper, log *zap.Logger) (*worker.Scheduler, error) {
	pairs, err := domain.ParsePairCodes(cfg.TrackedPairs)
	if err != nil {
		return nil, fmt.Errorf("TRACKED_PAIRS: %w", err)
	}
	loc, err := location(cfg)
	if err != nil {
		return nil, err
	}
	s := worker.NewScheduler(scraper, pairs, RetryPolicy(cfg), loc, log)
	s.RunOnStart = cfg.RunOnStart
	if err := s.Register(worker.Specs{Daily: cfg.CronDaily, Weekly: cfg.CronWeekly, Monthly: cfg.CronMonthly}); err != nil {
		return nil, err
	}
	return s, nil
}

func location(cfg config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.TZName)
	if err != nil {
		return nil, fmt.Errorf("TZ_NAME: %w", err)
	}
	return loc, nil
}

type cleanups []func()

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func buildShared(ctx context.Context, cfg config.Config, log *zap.Logger) (Repos, Components, cleanups, error) {
	var cs cleanups
	repos, closeRepos, err := BuildRepos(ctx, cfg, log)
	if err != nil {
		return Repos{}, Components{}, nil, fmt.Errorf("bootstrap repos: %w", err)
	}
	cs = append(cs, closeRepos)

	svc, closeRedis, err := BuildRedis(cfg)
	if err != nil {
		cs.run()
		return Repos{}, Components{}, nil, fmt.Errorf("bootstrap redis: %w", err)
	}
	cs = append(cs, closeRedis)

	source, err := BuildSource(cfg)
	if err != nil {
		cs.run()
		return Repos{}, Components{}, nil, fmt.Errorf("bootstrap source: %w", err)
	}
	loc, err := location(cfg)
	if err != nil {
		cs.run()
		return Repos{}, Components{}, nil, err
	}
	return repos, BuildComponents(repos, svc, source, loc, log), cs, nil
}

// InitAPI builds the HTTP server with its readiness probe bound to storage.
func InitAPI(ctx context.Context, cfg config.Config, log *zap.Logger) (*httpserver.Server, func(), error) {
	repos, c, cs, err := buildShared(ctx, cfg, log)
	if err != nil {
		return nil, noop, err
	}
	srv := httpserver.NewServer(c.Populator, c.Forex, c.Reports)
	srv.SetReadyCheck(repos.Ping)
	return srv, cs.run, nil
}

// InitWorker builds the scheduler process.
func InitWorker(ctx context.Context, cfg config.Config, log *zap.Logger) (application.Worker, func(), error) {
	_, c, cs, err := buildShared(ctx, cfg, log)
	if err != nil {
		return nil, noop, err
	}
	s, err := BuildScheduler(cfg, c.Scraper, log)
	if err != nil {
		cs.run()
		return nil, noop, fmt.Errorf("bootstrap scheduler: %w", err)
	}
	return s, cs.run, nil
}
