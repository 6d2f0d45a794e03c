package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fxhistory-service/internal/domain"
)

type ForexService struct {
	registry *PairRegistry
	rates    RateRepo
	clock    Clock
}

type Option func(*options)

type options struct {
	clock Clock
	loc   *time.Location
}

func WithClock(c Clock) Option { return func(o *options) { o.clock = c } }

// WithLocation sets the zone that decides which calendar day is today.
func WithLocation(loc *time.Location) Option { return func(o *options) { o.loc = loc } }

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = realClock{}
	}
	if o.loc != nil {
		o.clock = zonedClock{Clock: o.clock, loc: o.loc}
	}
	return o
}

func NewForexService(registry *PairRegistry, rates RateRepo, opts ...Option) *ForexService {
	o := buildOptions(opts)
	return &ForexService{registry: registry, rates: rates, clock: o.clock}
}

// GetForexData returns the daily, weekly and monthly records of an existing
// pair within [today-period, today] plus close-price aggregates over the
// daily series. Unknown pairs are not created; they fail with an error
// matching both ErrInvalidArgument and ErrNotFound.
func (s *ForexService) GetForexData(ctx context.Context, from, to, period string) (domain.ForexData, error) {
	if !domain.ValidateCurrencyCode(from) || !domain.ValidateCurrencyCode(to) {
		return domain.ForexData{}, fmt.Errorf("%w: currency codes must be 3 characters", ErrInvalidArgument)
	}
	p, err := domain.ParsePeriod(period)
	if err != nil {
		return domain.ForexData{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	pair, err := s.registry.Find(ctx, from, to)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.ForexData{}, fmt.Errorf("%w: currency pair %s/%s %w", ErrInvalidArgument, from, to, ErrNotFound)
		}
		return domain.ForexData{}, err
	}

	end := today(s.clock)
	start := p.StartDate(end)
	out := domain.ForexData{
		FromCurrency: from,
		ToCurrency:   to,
		Period:       period,
		StartDate:    start,
		EndDate:      end,
	}
	series := map[domain.Granularity]*[]domain.ExchangeRate{
		domain.Daily:   &out.Daily,
		domain.Weekly:  &out.Weekly,
		domain.Monthly: &out.Monthly,
	}
	for _, g := range domain.Granularities() {
		rates, err := s.rates.ListBetween(ctx, g, pair.ID, start, end)
		if err != nil {
			return domain.ForexData{}, fmt.Errorf("list %s rates: %w", g.Name, err)
		}
		*series[g] = rates
	}
	out.Aggregates = domain.ComputeAggregates(out.Daily)
	return out, nil
}
