package temporal

import (
	"fmt"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
)

// Unit is a unit of time, ordered from the shortest to the longest. The zero
// value Auto selects the default of the operation it is passed to.
type Unit int

const (
	Auto Unit = iota
	Nanosecond
	Microsecond
	Millisecond
	Second
	Minute
	Hour
	Day
	Week
	Month
	Year
)

var unitNames = [...]string{
	Auto:        "auto",
	Nanosecond:  "nanosecond",
	Microsecond: "microsecond",
	Millisecond: "millisecond",
	Second:      "second",
	Minute:      "minute",
	Hour:        "hour",
	Day:         "day",
	Week:        "week",
	Month:       "month",
	Year:        "year",
}

func (u Unit) String() string {
	if u < 0 || int(u) >= len(unitNames) {
		return fmt.Sprintf("<undefined unit (%d)>", int(u))
	}
	return unitNames[u]
}

// IsCalendarUnit reports whether the unit has a variable length: week, month
// or year.
func (u Unit) IsCalendarUnit() bool {
	return u >= Week
}

// isDateUnit reports whether u is day or longer.
func (u Unit) isDateUnit() bool {
	return u >= Day
}

func (u Unit) calendarUnit() calendar.Unit {
	switch u {
	case Week:
		return calendar.Week
	case Month:
		return calendar.Month
	case Year:
		return calendar.Year
	default:
		return calendar.Day
	}
}

// nsPerUnit is the fixed length of time units. A day counts 24 hours.
var nsPerUnit = [...]int64{
	Nanosecond:  1,
	Microsecond: 1_000,
	Millisecond: 1_000_000,
	Second:      1_000_000_000,
	Minute:      60_000_000_000,
	Hour:        3_600_000_000_000,
	Day:         86_400_000_000_000,
}

// maxIncrement returns the number of units in the next larger unit, or 0 when
// the unit has no upper bound for rounding increments.
func maxIncrement(u Unit) int64 {
	switch u {
	case Hour:
		return 24
	case Minute, Second:
		return 60
	case Millisecond, Microsecond, Nanosecond:
		return 1000
	default:
		return 0
	}
}

func largerUnit(a, b Unit) Unit {
	return max(a, b)
}

// RoundingMode selects how a value between two increments is rounded. The zero
// value selects the default of the operation.
type RoundingMode int

const (
	roundingModeUnset RoundingMode = iota
	// RoundCeil rounds toward positive infinity.
	RoundCeil
	// RoundFloor rounds toward negative infinity.
	RoundFloor
	// RoundExpand rounds away from zero.
	RoundExpand
	// RoundTrunc rounds toward zero.
	RoundTrunc
	RoundHalfCeil
	RoundHalfFloor
	// RoundHalfExpand rounds to the nearest increment, ties away from zero.
	RoundHalfExpand
	RoundHalfTrunc
	RoundHalfEven
)

var roundingModeNames = [...]string{
	roundingModeUnset: "unset",
	RoundCeil:         "ceil",
	RoundFloor:        "floor",
	RoundExpand:       "expand",
	RoundTrunc:        "trunc",
	RoundHalfCeil:     "halfCeil",
	RoundHalfFloor:    "halfFloor",
	RoundHalfExpand:   "halfExpand",
	RoundHalfTrunc:    "halfTrunc",
	RoundHalfEven:     "halfEven",
}

func (m RoundingMode) String() string {
	if m < 0 || int(m) >= len(roundingModeNames) {
		return fmt.Sprintf("<undefined rounding mode (%d)>", int(m))
	}
	return roundingModeNames[m]
}

func (m RoundingMode) or(def RoundingMode) RoundingMode {
	if m == roundingModeUnset {
		return def
	}
	return m
}

// negate returns the mode that rounds -x the way m rounds x.
func (m RoundingMode) negate() RoundingMode {
	switch m {
	case RoundCeil:
		return RoundFloor
	case RoundFloor:
		return RoundCeil
	case RoundHalfCeil:
		return RoundHalfFloor
	case RoundHalfFloor:
		return RoundHalfCeil
	default:
		return m
	}
}

// Disambiguation selects the instant of a wall-clock time that is skipped or
// repeated by an offset transition. The zero value is DisambiguationCompatible.
type Disambiguation int

const (
	// DisambiguationCompatible takes the earlier instant of a repeated time and
	// moves a skipped time forward by the length of the gap.
	DisambiguationCompatible Disambiguation = iota
	// DisambiguationEarlier takes the earlier instant of a repeated time and
	// moves a skipped time backward by the length of the gap.
	DisambiguationEarlier
	// DisambiguationLater takes the later instant of a repeated time and
	// moves a skipped time forward by the length of the gap.
	DisambiguationLater
	// DisambiguationReject fails with a range error for skipped and repeated times.
	DisambiguationReject
)

func (d Disambiguation) String() string {
	switch d {
	case DisambiguationCompatible:
		return "compatible"
	case DisambiguationEarlier:
		return "earlier"
	case DisambiguationLater:
		return "later"
	case DisambiguationReject:
		return "reject"
	default:
		return fmt.Sprintf("<undefined disambiguation (%d)>", int(d))
	}
}

// OffsetOption selects how an explicit UTC offset in zoned fields is
// reconciled with the time zone. The zero value selects the default of the
// operation: OffsetReject when creating from fields, OffsetPrefer in With.
type OffsetOption int

const (
	offsetUnset OffsetOption = iota
	// OffsetUse takes the offset as given and ignores the time zone.
	OffsetUse
	// OffsetIgnore ignores the offset and resolves the wall-clock time.
	OffsetIgnore
	// OffsetPrefer uses the offset if the time zone allows it and otherwise
	// resolves the wall-clock time.
	OffsetPrefer
	// OffsetReject fails with a range error unless the time zone allows the offset.
	OffsetReject
)

func (o OffsetOption) String() string {
	switch o {
	case offsetUnset:
		return "unset"
	case OffsetUse:
		return "use"
	case OffsetIgnore:
		return "ignore"
	case OffsetPrefer:
		return "prefer"
	case OffsetReject:
		return "reject"
	default:
		return fmt.Sprintf("<undefined offset option (%d)>", int(o))
	}
}

func (o OffsetOption) or(def OffsetOption) OffsetOption {
	if o == offsetUnset {
		return def
	}
	return o
}

// Overflow selects whether out-of-range fields are clamped or rejected.
type Overflow = calendar.Overflow

const (
	OverflowConstrain = calendar.Constrain
	OverflowReject    = calendar.Reject
)

// DifferenceOptions configures Until and Since.
type DifferenceOptions struct {
	// LargestUnit is the largest unit of the result.
	LargestUnit Unit
	// SmallestUnit is the unit the result is rounded to. Defaults to Nanosecond.
	SmallestUnit Unit
	// RoundingIncrement is the multiple of SmallestUnit to round to.
	// Defaults to 1.
	RoundingIncrement int64
	// RoundingMode defaults to RoundTrunc.
	RoundingMode RoundingMode
}

// RoundOptions configures Round and Duration.Round.
type RoundOptions struct {
	// SmallestUnit is the unit to round to.
	SmallestUnit Unit
	// LargestUnit is the largest unit of a rounded Duration. Ignored by the
	// other types.
	LargestUnit Unit
	// RoundingIncrement is the multiple of SmallestUnit to round to.
	// Defaults to 1.
	RoundingIncrement int64
	// RoundingMode defaults to RoundHalfExpand.
	RoundingMode RoundingMode
	// RelativeTo anchors calendar units of a Duration. Ignored by the other types.
	RelativeTo RelativeTo
}

// ZonedOptions configures how wall-clock fields resolve to an instant.
type ZonedOptions struct {
	Disambiguation Disambiguation
	Offset         OffsetOption
	Overflow       Overflow
}

// settings are resolved difference or rounding options.
type settings struct {
	largest   Unit
	smallest  Unit
	increment int64
	mode      RoundingMode
}

// validateIncrement checks an increment against the number of units in the
// next larger unit. An inclusive bound admits the bound itself.
func validateIncrement(increment, bound int64, inclusive bool) error {
	if increment < 1 || increment > 1_000_000_000 {
		return errs.Range("rounding increment %d out of range", increment)
	}
	if bound == 0 {
		return nil
	}
	limit := bound
	if !inclusive {
		limit--
	}
	if increment > limit {
		return errs.Range("rounding increment %d exceeds %d", increment, limit)
	}
	if bound%increment != 0 {
		return errs.Range("rounding increment %d does not divide %d", increment, bound)
	}
	return nil
}

// differenceSettings resolves DifferenceOptions for an operation that accepts
// units from minUnit to maxUnit.
func differenceSettings(opts DifferenceOptions, minUnit, maxUnit, defaultLargest Unit) (settings, error) {
	s := settings{
		largest:   opts.LargestUnit,
		smallest:  opts.SmallestUnit,
		increment: opts.RoundingIncrement,
		mode:      opts.RoundingMode.or(RoundTrunc),
	}
	if s.increment == 0 {
		s.increment = 1
	}
	if s.smallest == Auto {
		s.smallest = minUnit
	}
	if s.largest == Auto {
		s.largest = largerUnit(defaultLargest, s.smallest)
	}
	for _, u := range []Unit{s.smallest, s.largest} {
		if u < minUnit || u > maxUnit {
			return s, errs.Range("unit %v not allowed, want %v to %v", u, minUnit, maxUnit)
		}
	}
	if s.smallest > s.largest {
		return s, errs.Range("smallest unit %v is larger than largest unit %v", s.smallest, s.largest)
	}
	if err := validateIncrement(s.increment, maxIncrement(s.smallest), false); err != nil {
		return s, err
	}
	return s, nil
}
