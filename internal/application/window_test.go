package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fxhistory-service/internal/domain"
)

func TestScrapeWindow(t *testing.T) {
	t.Parallel()
	today := time.Date(2024, 3, 31, 0, 5, 0, 0, time.UTC)
	cases := []struct {
		g     domain.Granularity
		start time.Time
	}{
		{domain.Daily, day(2024, 3, 30)},
		{domain.Weekly, day(2024, 3, 17)},
		{domain.Monthly, day(2024, 1, 31)},
	}
	for _, c := range cases {
		start, end := ScrapeWindow(c.g, today)
		require.Equal(t, c.start, start, c.g.Name)
		require.Equal(t, day(2024, 3, 31), end, c.g.Name)
	}
}
