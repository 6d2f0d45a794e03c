package application

import (
	"context"
	"iter"
	"time"

	"fxhistory-service/internal/domain"
)

// PairRepo stores currency pairs. Find returns ErrNotFound on a miss.
type PairRepo interface {
	Find(ctx context.Context, from, to string) (domain.CurrencyPair, error)
	Create(ctx context.Context, from, to string) (domain.CurrencyPair, error)
}

// RateRepo stores the append-only record tables, one per granularity.
type RateRepo interface {
	Append(ctx context.Context, g domain.Granularity, r domain.ExchangeRate) (domain.ExchangeRate, error)
	// ListBetween returns records of pairID with anchor in [from, to], oldest first.
	ListBetween(ctx context.Context, g domain.Granularity, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error)
}

// SourceFetcher retrieves the raw history document for a symbol and window.
type SourceFetcher interface {
	Fetch(ctx context.Context, symbol string, fromUnix, toUnix int64, token string) ([]byte, error)
}

// HistoryParser extracts raw rows from a fetched document.
type HistoryParser interface {
	Parse(doc []byte) (iter.Seq[domain.RawRow], error)
}

// PairLocker serializes work on a key across callers.
type PairLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), error)
}

type ReportRenderer interface {
	Render(ctx context.Context, r domain.Report) ([]byte, error)
}
