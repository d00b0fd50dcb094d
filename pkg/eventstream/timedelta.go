package eventstream

import (
	"time"

	"github.com/pkg/errors"
)

// TimeUnit is a timedelta unit token.
type TimeUnit string

const (
	UnitYear        TimeUnit = "Y"
	UnitMonth       TimeUnit = "M"
	UnitWeek        TimeUnit = "W"
	UnitDay         TimeUnit = "D"
	UnitHour        TimeUnit = "h"
	UnitMinute      TimeUnit = "m"
	UnitSecond      TimeUnit = "s"
	UnitMillisecond TimeUnit = "ms"
	UnitMicrosecond TimeUnit = "us"
	UnitNanosecond  TimeUnit = "ns"
)

// TimeDelta is a duration expressed as a value and a unit token.
// Calendar units use fixed approximations: Y = 365 days, M = 30 days.
type TimeDelta struct {
	Value float64
	Unit  TimeUnit
}

func (d TimeDelta) Validate() error {
	switch d.Unit {
	case UnitYear, UnitMonth, UnitWeek, UnitDay, UnitHour, UnitMinute,
		UnitSecond, UnitMillisecond, UnitMicrosecond, UnitNanosecond:
		return nil
	default:
		return errors.Errorf("unknown time unit %q", string(d.Unit))
	}
}

// Duration converts the timedelta to a time.Duration.
func (d TimeDelta) Duration() (time.Duration, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	var unit time.Duration
	switch d.Unit {
	case UnitYear:
		unit = 365 * 24 * time.Hour
	case UnitMonth:
		unit = 30 * 24 * time.Hour
	case UnitWeek:
		unit = 7 * 24 * time.Hour
	case UnitDay:
		unit = 24 * time.Hour
	case UnitHour:
		unit = time.Hour
	case UnitMinute:
		unit = time.Minute
	case UnitSecond:
		unit = time.Second
	case UnitMillisecond:
		unit = time.Millisecond
	case UnitMicrosecond:
		unit = time.Microsecond
	case UnitNanosecond:
		unit = time.Nanosecond
	}
	return time.Duration(d.Value * float64(unit)), nil
}
