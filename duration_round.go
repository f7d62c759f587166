package temporal

import (
	"math/big"

	"github.com/ngrash/go-temporal/errs"
)

// Round rounds d to opts.SmallestUnit and balances it up to opts.LargestUnit.
// At least one of the two units is required. LargestUnit defaults to the
// largest nonzero unit of d.
//
// Weeks, months and years need opts.RelativeTo, both in d and as units. A
// ZonedDateTime anchor rounds with the real length of each day in its time
// zone; without one a day is 24 hours.
func (d Duration) Round(opts RoundOptions) (Duration, error) {
	if opts.SmallestUnit == Auto && opts.LargestUnit == Auto {
		return Duration{}, errs.Range("smallest unit or largest unit is required")
	}
	s := settings{
		smallest:  opts.SmallestUnit,
		largest:   opts.LargestUnit,
		increment: opts.RoundingIncrement,
		mode:      opts.RoundingMode.or(RoundHalfExpand),
	}
	if s.smallest == Auto {
		s.smallest = Nanosecond
	}
	existingLargest := d.defaultLargestUnit()
	if s.largest == Auto {
		s.largest = largerUnit(existingLargest, s.smallest)
	}
	if s.increment == 0 {
		s.increment = 1
	}
	if s.smallest > s.largest {
		return Duration{}, errs.Range("smallest unit %v is larger than largest unit %v", s.smallest, s.largest)
	}
	if err := validateIncrement(s.increment, maxIncrement(s.smallest), false); err != nil {
		return Duration{}, err
	}
	if s.increment > 1 && s.largest != s.smallest && s.smallest.isDateUnit() {
		return Duration{}, errs.Range("rounding increment %d needs largest unit %v", s.increment, s.smallest)
	}

	switch rel := opts.RelativeTo.(type) {
	case ZonedDateTime:
		start := rel.inst.EpochNanoseconds()
		target, err := addZoned(start, rel.tz, rel.cal, d.internal(), OverflowConstrain)
		if err != nil {
			return Duration{}, err
		}
		id, err := differenceZonedWithRounding(start, target, rel.tz, rel.cal, s)
		if err != nil {
			return Duration{}, err
		}
		largest := s.largest
		if largest.isDateUnit() {
			largest = Hour
		}
		return durationFromInternal(id, largest)
	case nil:
	default:
		start, cal := rel.anchor()
		target, err := addDateTime(start, cal, d.internalWith24HourDays(), OverflowConstrain)
		if err != nil {
			return Duration{}, err
		}
		id, err := differencePlainWithRounding(start, target, cal, s)
		if err != nil {
			return Duration{}, err
		}
		return durationFromInternal(id, s.largest)
	}

	if existingLargest.IsCalendarUnit() || s.largest.IsCalendarUnit() {
		return Duration{}, errs.Range("relativeTo is required to round durations with %v", largerUnit(existingLargest, s.largest))
	}
	span, err := roundTimeSpan(d.internalWith24HourDays().time, bigInt(s.increment*nsPerUnit[s.smallest]), s.mode)
	if err != nil {
		return Duration{}, err
	}
	return durationFromInternal(internalDuration{time: span}, s.largest)
}

// Total returns d as a fractional number of unit. Weeks, months and years need
// relativeTo, both in d and as unit.
func (d Duration) Total(unit Unit, relativeTo RelativeTo) (float64, error) {
	if unit == Auto {
		return 0, errs.Range("unit is required")
	}
	switch rel := relativeTo.(type) {
	case ZonedDateTime:
		start := rel.inst.EpochNanoseconds()
		target, err := addZoned(start, rel.tz, rel.cal, d.internal(), OverflowConstrain)
		if err != nil {
			return 0, err
		}
		if !unit.isDateUnit() {
			return totalOf(bigSub(target, start), nsPerUnit[unit]), nil
		}
		diff, err := differenceZoned(start, target, rel.tz, rel.cal, unit)
		if err != nil {
			return 0, err
		}
		return totalRelative(diff, target, relative{start: isoDateTimeInZone(start, rel.tz), tz: rel.tz, cal: rel.cal}, unit)
	case nil:
	default:
		start, cal := rel.anchor()
		target, err := addDateTime(start, cal, d.internalWith24HourDays(), OverflowConstrain)
		if err != nil {
			return 0, err
		}
		if compareISODateTime(start, target) == 0 {
			return 0, nil
		}
		diff, err := differenceISODateTime(start, target, cal, unit)
		if err != nil {
			return 0, err
		}
		if unit == Nanosecond {
			f, _ := new(big.Float).SetInt(diff.span()).Float64()
			return f, nil
		}
		return totalRelative(diff, target.epochNs(), relative{start: start, cal: cal}, unit)
	}

	if largest := d.defaultLargestUnit(); largest.IsCalendarUnit() || unit.IsCalendarUnit() {
		return 0, errs.Range("relativeTo is required to total durations with %v", largerUnit(largest, unit))
	}
	return totalOf(d.internalWith24HourDays().time, nsPerUnit[unit]), nil
}
