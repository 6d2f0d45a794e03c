package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/domain"
)

var _ application.Worker = (*Scheduler)(nil)

// PairScraper runs one scrape call for a pair at a granularity.
type PairScraper interface {
	Scrape(ctx context.Context, g domain.Granularity, from, to string, fromUnix, toUnix int64) ([]domain.ExchangeRate, error)
}

// Specs holds the cron expression (with seconds) of each trigger.
type Specs struct {
	Daily   string
	Weekly  string
	Monthly string
}

// TriggerReport summarizes one trigger firing.
type TriggerReport struct {
	Granularity domain.Granularity
	Start, End  time.Time
	Succeeded   []domain.PairCode
	Failed      []domain.PairCode
	Stored      int
}

// Scheduler fires the daily, weekly and monthly scrape triggers. Each firing
// walks the tracked pairs one after another, retrying each pair under the
// retry policy; a pair that exhausts its attempts is logged and skipped.
type Scheduler struct {
	Cron       *cron.Cron
	Scraper    PairScraper
	Pairs      []domain.PairCode
	Retry      application.RetryPolicy
	Clock      application.Clock
	Location   *time.Location
	RunOnStart bool
	Log        *zap.Logger

	mu      sync.Mutex
	runCtx  context.Context
	startup sync.WaitGroup
}

func NewScheduler(scraper PairScraper, pairs []domain.PairCode, retry application.RetryPolicy, loc *time.Location, log *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Scraper:  scraper,
		Pairs:    pairs,
		Retry:    retry,
		Location: loc,
		Log:      log,
	}
}

// Register adds the three triggers to the cron table.
func (s *Scheduler) Register(specs Specs) error {
	for _, t := range []struct {
		spec string
		g    domain.Granularity
	}{
		{specs.Daily, domain.Daily},
		{specs.Weekly, domain.Weekly},
		{specs.Monthly, domain.Monthly},
	} {
		g := t.g
		if _, err := s.Cron.AddFunc(t.spec, func() { s.RunTrigger(s.context(), g) }); err != nil {
			return fmt.Errorf("register %s trigger %q: %w", g.Name, t.spec, err)
		}
		s.Log.Info("scheduler.trigger_registered", zap.String("granularity", g.Name), zap.String("spec", t.spec))
	}
	return nil
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCtx == nil {
		return context.Background()
	}
	return s.runCtx
}

// Start runs the cron loop until ctx is canceled, then waits for running
// triggers to return.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	s.Cron.Start()
	s.Log.Info("scheduler.started", zap.Int("pairs", len(s.Pairs)), zap.String("location", s.Location.String()))

	if s.RunOnStart {
		s.startup.Add(1)
		go func() {
			defer s.startup.Done()
			for _, g := range domain.Granularities() {
				s.RunTrigger(ctx, g)
			}
		}()
	}

	<-ctx.Done()
	<-s.Cron.Stop().Done()
	s.startup.Wait()
	s.Log.Info("scheduler.stopped")
}

func (s *Scheduler) today() time.Time {
	now := time.Now()
	if s.Clock != nil {
		now = s.Clock.Now()
	}
	return domain.DateOf(now.In(s.Location))
}

// RunTrigger performs one firing for granularity g over its fixed window.
func (s *Scheduler) RunTrigger(ctx context.Context, g domain.Granularity) TriggerReport {
	start, end := application.ScrapeWindow(g, s.today())
	rep := TriggerReport{Granularity: g, Start: start, End: end}
	log := s.Log.With(
		zap.String("granularity", g.Name),
		zap.String("window_start", start.Format(time.DateOnly)),
		zap.String("window_end", end.Format(time.DateOnly)),
	)
	log.Info("scheduler.trigger_start")

	for _, p := range s.Pairs {
		if ctx.Err() != nil {
			break
		}
		plog := log.With(zap.String("pair", p.String()))
		var stored []domain.ExchangeRate
		err := s.Retry.Do(ctx, func(ctx context.Context) error {
			var err error
			stored, err = s.Scraper.Scrape(ctx, g, p.From, p.To, domain.UnixStart(start), domain.UnixStart(end))
			return err
		}, func(attempt int, err error, wait time.Duration) {
			plog.Warn("scheduler.attempt_failed", zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
		})
		if err != nil {
			plog.Error("scheduler.pair_failed", zap.Error(err))
			rep.Failed = append(rep.Failed, p)
			continue
		}
		rep.Succeeded = append(rep.Succeeded, p)
		rep.Stored += len(stored)
	}

	log.Info("scheduler.trigger_done",
		zap.Int("succeeded", len(rep.Succeeded)),
		zap.Int("failed", len(rep.Failed)),
		zap.Int("stored", rep.Stored),
	)
	return rep
}
