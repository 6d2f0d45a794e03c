package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fxhistory-service/internal/application"
	"fxhistory-service/internal/domain"
)

type scrapeCall struct {
	g                domain.Granularity
	pair             string
	fromUnix, toUnix int64
}

// fakeScraper fails a pair the number of times listed in failures, then
// returns one record per call.
type fakeScraper struct {
	mu       sync.Mutex
	failures map[string]int
	calls    []scrapeCall
}

func (f *fakeScraper) Scrape(_ context.Context, g domain.Granularity, from, to string, fromUnix, toUnix int64) ([]domain.ExchangeRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := from + "/" + to
	f.calls = append(f.calls, scrapeCall{g, key, fromUnix, toUnix})
	if f.failures[key] > 0 {
		f.failures[key]--
		return nil, &domain.TransportError{URL: key, Err: errors.New("timeout")}
	}
	return []domain.ExchangeRate{{Granularity: g}}, nil
}

func (f *fakeScraper) callsFor(pair string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.pair == pair {
			n++
		}
	}
	return n
}

var (
	gbp = domain.PairCode{From: "GBP", To: "INR"}
	aed = domain.PairCode{From: "AED", To: "INR"}
)

func fastRetry() application.RetryPolicy {
	return application.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: 4 * time.Millisecond}
}

func newTestScheduler(sc PairScraper) *Scheduler {
	s := NewScheduler(sc, []domain.PairCode{gbp, aed}, fastRetry(), time.UTC, nil)
	s.Clock = application.FixedClock{T: time.Date(2024, 10, 18, 0, 5, 0, 0, time.UTC)}
	return s
}

func TestRunTrigger_RetriesTransientFailures(t *testing.T) {
	sc := &fakeScraper{failures: map[string]int{"GBP/INR": 2}}
	rep := newTestScheduler(sc).RunTrigger(context.Background(), domain.Daily)

	require.Equal(t, []domain.PairCode{gbp, aed}, rep.Succeeded)
	require.Empty(t, rep.Failed)
	require.Equal(t, 2, rep.Stored)
	require.Equal(t, 3, sc.callsFor("GBP/INR"))
	require.Equal(t, 1, sc.callsFor("AED/INR"))

	start := time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC)
	require.Equal(t, start, rep.Start)
	require.Equal(t, end, rep.End)
	for _, c := range sc.calls {
		require.Equal(t, start.Unix(), c.fromUnix)
		require.Equal(t, end.Unix(), c.toUnix)
	}
}

func TestRunTrigger_ExhaustedPairDoesNotBlockNext(t *testing.T) {
	sc := &fakeScraper{failures: map[string]int{"GBP/INR": 10}}
	rep := newTestScheduler(sc).RunTrigger(context.Background(), domain.Weekly)

	require.Equal(t, []domain.PairCode{gbp}, rep.Failed)
	require.Equal(t, []domain.PairCode{aed}, rep.Succeeded)
	require.Equal(t, 1, rep.Stored)
	require.Equal(t, 3, sc.callsFor("GBP/INR"))
	require.Equal(t, 1, sc.callsFor("AED/INR"))
	require.Equal(t, time.Date(2024, 10, 4, 0, 0, 0, 0, time.UTC), rep.Start)
}

func TestRunTrigger_MonthlyWindow(t *testing.T) {
	sc := &fakeScraper{}
	rep := newTestScheduler(sc).RunTrigger(context.Background(), domain.Monthly)
	require.Equal(t, time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC), rep.Start)
	for _, c := range sc.calls {
		require.Equal(t, domain.Monthly, c.g)
	}
}

func TestRunTrigger_CanceledContextStops(t *testing.T) {
	sc := &fakeScraper{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep := newTestScheduler(sc).RunTrigger(ctx, domain.Daily)
	require.Empty(t, rep.Succeeded)
	require.Empty(t, sc.calls)
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := newTestScheduler(&fakeScraper{})
	err := s.Register(Specs{Daily: "0 5 0 * * *", Weekly: "not a cron", Monthly: "0 30 0 1 * *"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "weekly")
}

func TestRegister_DefaultSpecs(t *testing.T) {
	s := newTestScheduler(&fakeScraper{})
	require.NoError(t, s.Register(Specs{Daily: "0 5 0 * * *", Weekly: "0 15 0 * * MON", Monthly: "0 30 0 1 * *"}))
	require.Len(t, s.Cron.Entries(), 3)
}

func TestStart_RunOnStartAndStop(t *testing.T) {
	sc := &fakeScraper{}
	s := newTestScheduler(sc)
	s.RunOnStart = true
	require.NoError(t, s.Register(Specs{Daily: "0 5 0 * * *", Weekly: "0 15 0 * * MON", Monthly: "0 30 0 1 * *"}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return sc.callsFor("GBP/INR") == 3 && sc.callsFor("AED/INR") == 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

// blockingScraper holds every call until release is closed.
type blockingScraper struct {
	started  chan struct{}
	release  chan struct{}
	once     sync.Once
	inFlight atomic.Int32
}

func (b *blockingScraper) Scrape(ctx context.Context, g domain.Granularity, _, _ string, _, _ int64) ([]domain.ExchangeRate, error) {
	b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	b.once.Do(func() { close(b.started) })
	<-b.release
	return []domain.ExchangeRate{{Granularity: g}}, nil
}

func TestStart_WaitsForRunOnStartTrigger(t *testing.T) {
	sc := &blockingScraper{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(sc, []domain.PairCode{gbp}, fastRetry(), time.UTC, nil)
	s.RunOnStart = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	<-sc.started
	cancel()
	select {
	case <-done:
		t.Fatal("Start returned while a trigger was still scraping")
	case <-time.After(100 * time.Millisecond):
	}

	close(sc.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	require.Zero(t, sc.inFlight.Load())
}
