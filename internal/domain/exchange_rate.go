package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SourceDateLayout is the textual month-day-year format used by the source table.
const SourceDateLayout = "Jan 2, 2006"

// ExchangeRate is one stored OHLC quote. Anchor is the calendar day for daily
// records, the week start for weekly and the month start for monthly records.
// Prices are nil when the source had no parseable value.
type ExchangeRate struct {
	ID          int64
	PairID      int64
	Granularity Granularity
	Anchor      time.Time
	Open        *float64
	High        *float64
	Low         *float64
	Close       *float64
}

// RawRow is a history table row as text, before any numeric parsing.
type RawRow struct {
	Date  string
	Open  string
	High  string
	Low   string
	Close string
}

// ToRate maps a raw row to a record for pair under granularity g.
// An unparseable date fails the row; an unparseable price only leaves that
// field nil.
func (r RawRow) ToRate(g Granularity, pairID int64) (ExchangeRate, error) {
	anchor, err := time.Parse(SourceDateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return ExchangeRate{}, fmt.Errorf("parse date %q: %w", r.Date, err)
	}
	return ExchangeRate{
		PairID:      pairID,
		Granularity: g,
		Anchor:      DateOf(anchor),
		Open:        ParsePrice(r.Open),
		High:        ParsePrice(r.High),
		Low:         ParsePrice(r.Low),
		Close:       ParsePrice(r.Close),
	}, nil
}

// ParsePrice strips thousands separators and parses s. Placeholders such as
// "-" and non-finite values yield nil.
func ParsePrice(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// DateOf truncates t to its calendar day at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UnixStart returns the Unix seconds of d's UTC midnight.
func UnixStart(d time.Time) int64 {
	return DateOf(d).Unix()
}
