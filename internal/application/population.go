package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fxhistory-service/internal/domain"
)

// Populator backfills all three granularities of a pair over a caller-chosen
// window.
type Populator struct {
	scraper *Scraper
	idem    IdempotencyStore
	log     *zap.Logger
}

func NewPopulator(scraper *Scraper, idem IdempotencyStore, log *zap.Logger) *Populator {
	if idem == nil {
		idem = NoopIdempotency{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Populator{scraper: scraper, idem: idem, log: log}
}

// Populate scrapes daily, weekly and monthly history in that order. The
// first failing granularity aborts the remaining ones. A non-empty idemKey
// that was already used returns ErrConflict.
func (p *Populator) Populate(ctx context.Context, from, to string, start, end time.Time, idemKey string) error {
	if idemKey != "" {
		ok, err := p.idem.TryReserve(ctx, "populate:"+idemKey)
		if err != nil {
			return fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !ok {
			return fmt.Errorf("populate %s/%s: %w", from, to, ErrConflict)
		}
	}
	fromUnix, toUnix := domain.UnixStart(start), domain.UnixStart(end)
	for _, g := range domain.Granularities() {
		stored, err := p.scraper.Scrape(ctx, g, from, to, fromUnix, toUnix)
		if err != nil {
			p.log.Error("populate.failed",
				zap.String("pair", from+"/"+to),
				zap.String("granularity", g.Name),
				zap.Error(err))
			return fmt.Errorf("%s: %w", g.Name, err)
		}
		p.log.Info("populate.granularity_done",
			zap.String("pair", from+"/"+to),
			zap.String("granularity", g.Name),
			zap.Int("stored", len(stored)))
	}
	return nil
}
