package application

import (
	"time"

	"fxhistory-service/internal/domain"
)

// ScrapeWindow returns the fixed lookback window a scheduled trigger scrapes.
// Windows are offsets from today, so days missed during downtime are not
// backfilled.
func ScrapeWindow(g domain.Granularity, today time.Time) (start, end time.Time) {
	end = domain.DateOf(today)
	switch g {
	case domain.Weekly:
		start = end.AddDate(0, 0, -14)
	case domain.Monthly:
		start = domain.Period{Amount: 2, Unit: 'M'}.StartDate(end)
	default:
		start = end.AddDate(0, 0, -1)
	}
	return start, end
}
