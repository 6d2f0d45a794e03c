package domain

import "time"

// Aggregates are close-price statistics over the daily series.
type Aggregates struct {
	Max float64
	Min float64
	Avg float64
}

// ComputeAggregates returns max, min and average of the close prices.
// Records without a close price are ignored and an empty series yields zeros.
func ComputeAggregates(rates []ExchangeRate) Aggregates {
	var (
		agg   Aggregates
		sum   float64
		count int
	)
	for _, r := range rates {
		if r.Close == nil {
			continue
		}
		c := *r.Close
		if count == 0 || c > agg.Max {
			agg.Max = c
		}
		if count == 0 || c < agg.Min {
			agg.Min = c
		}
		sum += c
		count++
	}
	if count > 0 {
		agg.Avg = sum / float64(count)
	}
	return agg
}

// ForexData is the aggregated view served for a pair and lookback period.
type ForexData struct {
	FromCurrency string
	ToCurrency   string
	Period       string
	StartDate    time.Time
	EndDate      time.Time
	Aggregates   Aggregates
	Daily        []ExchangeRate
	Weekly       []ExchangeRate
	Monthly      []ExchangeRate
}

// Report is the input of the PDF renderer.
type Report struct {
	FromCurrency string
	ToCurrency   string
	GeneratedAt  time.Time
	Rates        []ExchangeRate
}
