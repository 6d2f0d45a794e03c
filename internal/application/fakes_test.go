package application

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"
	"time"

	"fxhistory-service/internal/domain"
)

var errBoom = errors.New("boom")

type fakePairRepo struct {
	mu      sync.Mutex
	pairs   []domain.CurrencyPair
	creates int
	err     error
}

func (f *fakePairRepo) Find(_ context.Context, from, to string) (domain.CurrencyPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.CurrencyPair{}, f.err
	}
	for _, p := range f.pairs {
		if p.FromCurrency == from && p.ToCurrency == to {
			return p, nil
		}
	}
	return domain.CurrencyPair{}, ErrNotFound
}

func (f *fakePairRepo) Create(_ context.Context, from, to string) (domain.CurrencyPair, error) {
	// widen the lookup-then-insert window so unguarded callers would race
	time.Sleep(time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	p := domain.CurrencyPair{ID: int64(len(f.pairs) + 1), FromCurrency: from, ToCurrency: to}
	f.pairs = append(f.pairs, p)
	return p, nil
}

type fakeRateRepo struct {
	mu      sync.Mutex
	rows    map[string][]domain.ExchangeRate
	failFor map[string]bool // anchor dates whose append fails
	listErr error
}

func newFakeRateRepo() *fakeRateRepo {
	return &fakeRateRepo{rows: map[string][]domain.ExchangeRate{}}
}

func (f *fakeRateRepo) Append(_ context.Context, g domain.Granularity, r domain.ExchangeRate) (domain.ExchangeRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[r.Anchor.Format(time.DateOnly)] {
		return domain.ExchangeRate{}, errBoom
	}
	r.ID = int64(len(f.rows[g.Table]) + 1)
	f.rows[g.Table] = append(f.rows[g.Table], r)
	return r, nil
}

func (f *fakeRateRepo) ListBetween(_ context.Context, g domain.Granularity, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.ExchangeRate
	for _, r := range f.rows[g.Table] {
		if r.PairID == pairID && !r.Anchor.Before(from) && !r.Anchor.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRateRepo) count(g domain.Granularity) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[g.Table])
}

type fetchCall struct {
	Symbol           string
	FromUnix, ToUnix int64
	Token            string
}

// scriptedSource returns errs in order, then doc.
type scriptedSource struct {
	mu    sync.Mutex
	errs  []error
	doc   []byte
	calls []fetchCall
}

func (s *scriptedSource) Fetch(_ context.Context, symbol string, fromUnix, toUnix int64, token string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fetchCall{symbol, fromUnix, toUnix, token})
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return s.doc, nil
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// rowsParser ignores the document and yields fixed rows.
type rowsParser struct {
	rows []domain.RawRow
	err  error
}

func (p rowsParser) Parse([]byte) (iter.Seq[domain.RawRow], error) {
	if p.err != nil {
		return nil, p.err
	}
	return slices.Values(p.rows), nil
}

type fakeRenderer struct {
	got domain.Report
}

func (f *fakeRenderer) Render(_ context.Context, r domain.Report) ([]byte, error) {
	f.got = r
	return []byte("%PDF-fake"), nil
}

type fakeIdem struct{ seen map[string]bool }

func (f *fakeIdem) TryReserve(_ context.Context, k string) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[k] {
		return false, nil
	}
	f.seen[k] = true
	return true, nil
}

func ptr(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

var sampleRows = []domain.RawRow{
	{Date: "Oct 16, 2024", Open: "110.10", High: "110.50", Low: "109.90", Close: "110.20"},
	{Date: "Oct 15, 2024", Open: "109.80", High: "-", Low: "109.50", Close: "110.00"},
	{Date: "not a date", Open: "1", High: "1", Low: "1", Close: "1"},
	{Date: "Oct 14, 2024", Open: "1,109.00", High: "1,110.00", Low: "1,108.00", Close: "1,109.50"},
}
