package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var periodRe = regexp.MustCompile(`^[1-9][0-9]*(D|W|M|Y)$`)

// Period is a lookback window such as 30D, 6M or 1Y.
type Period struct {
	Amount int
	Unit   byte
}

func ParsePeriod(s string) (Period, error) {
	if !periodRe.MatchString(s) {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return Period{Amount: n, Unit: s[len(s)-1]}, nil
}

func (p Period) String() string { return strconv.Itoa(p.Amount) + string(p.Unit) }

// StartDate subtracts the period from today using calendar arithmetic.
// Month and year steps clamp to the last day of the target month, so
// Mar 31 minus 1M is Feb 28 (or 29).
func (p Period) StartDate(today time.Time) time.Time {
	today = DateOf(today)
	switch p.Unit {
	case 'D':
		return today.AddDate(0, 0, -p.Amount)
	case 'W':
		return today.AddDate(0, 0, -7*p.Amount)
	case 'M':
		return minusMonths(today, p.Amount)
	case 'Y':
		return minusMonths(today, 12*p.Amount)
	}
	return today
}

func minusMonths(d time.Time, months int) time.Time {
	y, m, day := d.Date()
	total := y*12 + int(m-1) - months
	ty, tm := total/12, time.Month(total%12+1)
	if total < 0 {
		ty, tm = (total-11)/12, time.Month((total%12+12)%12+1)
	}
	if last := daysIn(ty, tm); day > last {
		day = last
	}
	return time.Date(ty, tm, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
