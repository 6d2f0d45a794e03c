package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fxhistory-service/internal/domain"
)

// Scraper is the single pipeline shared by all granularities:
// resolve pair, fetch, parse, map and append row by row.
type Scraper struct {
	registry *PairRegistry
	source   SourceFetcher
	parser   HistoryParser
	rates    RateRepo
	log      *zap.Logger
}

func NewScraper(registry *PairRegistry, source SourceFetcher, parser HistoryParser, rates RateRepo, log *zap.Logger) *Scraper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scraper{registry: registry, source: source, parser: parser, rates: rates, log: log}
}

// Scrape stores the history of from/to at granularity g between the two Unix
// timestamps and returns the records it stored. Fetch and parse failures abort
// the call; a row that cannot be mapped or stored is logged and skipped.
func (s *Scraper) Scrape(ctx context.Context, g domain.Granularity, from, to string, fromUnix, toUnix int64) ([]domain.ExchangeRate, error) {
	pair, err := s.registry.GetOrCreate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("resolve pair %s/%s: %w", from, to, err)
	}
	symbol := pair.Code().Symbol()

	doc, err := s.source.Fetch(ctx, symbol, fromUnix, toUnix, g.Token)
	if err != nil {
		return nil, err
	}
	rows, err := s.parser.Parse(doc)
	if err != nil {
		return nil, err
	}

	log := s.log.With(
		zap.String("granularity", g.Name),
		zap.String("pair", pair.Code().String()),
	)
	var stored []domain.ExchangeRate
	skipped := 0
	for row := range rows {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		rate, err := row.ToRate(g, pair.ID)
		if err == nil {
			rate, err = s.rates.Append(ctx, g, rate)
		}
		if err != nil {
			skipped++
			log.Warn("scrape.row_skipped", zap.Error(&domain.RowMappingError{Row: row, Err: err}))
			continue
		}
		stored = append(stored, rate)
	}
	log.Info("scrape.done", zap.Int("stored", len(stored)), zap.Int("skipped", skipped))
	return stored, nil
}
