package period

import (
	"errors"
	"strings"
	"time"
)

// Unit is a calendar unit used by billing rules.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

var ErrInvalidUnit = errors.New("period: invalid unit")

// Rule is a resolved (duration, unit) pair.
type Rule struct {
	Duration int
	Unit     Unit
}

func ParseUnit(value string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(value))) {
	case UnitDay:
		return UnitDay, nil
	case UnitWeek:
		return UnitWeek, nil
	case UnitMonth:
		return UnitMonth, nil
	case UnitYear:
		return UnitYear, nil
	default:
		return "", ErrInvalidUnit
	}
}

// Add advances t by duration units. Month and year additions clamp to the
// last day of the target month, so Jan 31 + 1 month = Feb 29 on leap years
// and Feb 28 otherwise. Day and week additions are plain offsets.
func Add(t time.Time, duration int, unit Unit) time.Time {
	switch unit {
	case UnitDay:
		return t.AddDate(0, 0, duration)
	case UnitWeek:
		return t.AddDate(0, 0, 7*duration)
	case UnitMonth:
		return addMonthsClamped(t, duration)
	case UnitYear:
		return addMonthsClamped(t, 12*duration)
	default:
		return t
	}
}

// AddRule applies a rule and then an optional gift rule on top of it.
func AddRule(t time.Time, rule Rule, gift *Rule) time.Time {
	out := Add(t, rule.Duration, rule.Unit)
	if gift != nil {
		out = Add(out, gift.Duration, gift.Unit)
	}
	return out
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	targetYear := year + total/12
	targetMonth := time.Month(total%12 + 1)
	if total < 0 && total%12 != 0 {
		targetYear--
		targetMonth = time.Month(total%12 + 13)
	}

	if last := daysIn(targetYear, targetMonth); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(targetYear, targetMonth, day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
