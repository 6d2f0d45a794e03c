package application

import (
	"time"

	"fxhistory-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// zonedClock reports the wrapped clock's instant in loc.
type zonedClock struct {
	Clock
	loc *time.Location
}

func (c zonedClock) Now() time.Time { return c.Clock.Now().In(c.loc) }

// today returns the clock's calendar day, in the clock's zone, as UTC midnight.
func today(c Clock) time.Time { return domain.DateOf(c.Now()) }
