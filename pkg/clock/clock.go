package clock

import (
	"time"

	"anoa.com/typingarena/internal/entity"
)

// Clock supplies the current moment and its calendar day. It is injected
// so day-bucketing logic can be tested against fixed dates.
type Clock interface {
	Now() time.Time
	Today() entity.DayDate
}

// UTC is the day-boundary policy for the whole service: a "day" is a UTC
// calendar day, everywhere, so entries never shift buckets at local midnight.
type utcClock struct{}

func UTC() Clock {
	return utcClock{}
}

func (utcClock) Now() time.Time {
	return time.Now().UTC()
}

func (utcClock) Today() entity.DayDate {
	return entity.DayOf(time.Now().UTC())
}
